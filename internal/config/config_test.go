package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputDir != "./data/snapshots" {
		t.Fatalf("unexpected output_dir %q", cfg.OutputDir)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected http timeout %v", cfg.HTTPTimeout)
	}
	if cfg.StorageType != "bbolt" {
		t.Fatalf("unexpected storage type %q", cfg.StorageType)
	}
	if len(cfg.Sites) != 0 {
		t.Fatalf("expected no explicit sites, got %v", cfg.Sites)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITES", " Mailru, nnru ,,")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("REUSE_EXISTING", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Sites) != 2 || cfg.Sites[0] != "mailru" || cfg.Sites[1] != "nnru" {
		t.Fatalf("unexpected sites %#v", cfg.Sites)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("unexpected http timeout %v", cfg.HTTPTimeout)
	}
	if !cfg.ReuseExisting {
		t.Fatalf("expected reuse_existing to be true")
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestDefaultHeadersSkipsEmpty(t *testing.T) {
	cfg := &Config{UserAgent: "UA"}
	headers := cfg.DefaultHeaders()
	if len(headers) != 1 || headers["User-Agent"] != "UA" {
		t.Fatalf("unexpected headers %#v", headers)
	}
}
