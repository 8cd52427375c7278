package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string   `mapstructure:"app_name"`
	Env            string   `mapstructure:"app_env"`
	LogLevel       string   `mapstructure:"log_level"`
	SitesFile      string   `mapstructure:"sites_file"`
	SitesRaw       string   `mapstructure:"sites"`
	Sites          []string `mapstructure:"-"`
	OutputDir      string   `mapstructure:"output_dir"`
	ReuseExisting  bool     `mapstructure:"reuse_existing"`
	PublishersFile string   `mapstructure:"publishers_file"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	MaxBodyBytes       int64         `mapstructure:"max_body_bytes"`
	UserAgent          string        `mapstructure:"user_agent"`
	AcceptLanguage     string        `mapstructure:"accept_language"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "news-snapshotter")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sites_file", "")
	v.SetDefault("sites", "")
	v.SetDefault("output_dir", "./data/snapshots")
	v.SetDefault("reuse_existing", false)
	v.SetDefault("publishers_file", "")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("max_body_bytes", int64(5<<20))
	v.SetDefault("user_agent", "news-snapshotter/1.0")
	v.SetDefault("accept_language", "ru-RU,ru;q=0.9,en;q=0.8")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/history.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) finalize() error {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("invalid output_dir (must not be empty)")
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max_body_bytes (must be positive)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	cfg.Sites = splitList(cfg.SitesRaw)
	return nil
}

// DefaultHeaders returns the request headers applied to every listing fetch.
func (cfg *Config) DefaultHeaders() map[string]string {
	headers := make(map[string]string, 2)
	if v := strings.TrimSpace(cfg.UserAgent); v != "" {
		headers["User-Agent"] = v
	}
	if v := strings.TrimSpace(cfg.AcceptLanguage); v != "" {
		headers["Accept-Language"] = v
	}
	return headers
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
