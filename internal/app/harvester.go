// Package app wires configuration, site profiles, the extraction pipeline, storage and publishers.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samvad-hq/news-snapshotter/internal/config"
	"github.com/samvad-hq/news-snapshotter/internal/crawler"
	"github.com/samvad-hq/news-snapshotter/internal/domain"
	"github.com/samvad-hq/news-snapshotter/internal/fetcher"
	"github.com/samvad-hq/news-snapshotter/internal/logger"
	"github.com/samvad-hq/news-snapshotter/internal/snapshot"
	"github.com/samvad-hq/news-snapshotter/internal/storage"
	"github.com/samvad-hq/news-snapshotter/pkg/httpclient"
	"github.com/samvad-hq/news-snapshotter/pkg/publishers"
	"github.com/samvad-hq/news-snapshotter/pkg/sites"
)

// Harvester represents the snapshotter runtime. It owns the site registry, the
// per-site orchestrator, the batch crawl service, storage and publishers.
type Harvester struct {
	cfg          *config.Config
	registry     *sites.Registry
	orchestrator *crawler.Orchestrator
	crawlService *crawler.Service
	fanout       *publishers.Fanout
	store        storage.Store
	log          logger.Logger
}

// NewHarvester builds a harvester runtime from config.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := loadSites(cfg.SitesFile)
	if err != nil {
		return nil, err
	}
	log.InfoObj("site registry loaded", "sites_meta", map[string]any{
		"count": registry.Len(),
		"ids":   registry.IDs(),
		"file":  cfg.SitesFile,
	})

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	fanout, err := buildPublishers(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		ArticleTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"article_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	pageFetcher := fetcher.New(
		httpclient.NewRestyClient(cfg.HTTPTimeout),
		fetcher.WithMaxBodyBytes(cfg.MaxBodyBytes),
		fetcher.WithLogger(log),
	)
	orchestrator := crawler.NewOrchestrator(
		registry,
		pageFetcher,
		snapshot.NewWriter(),
		cfg.OutputDir,
		cfg.DefaultHeaders(),
		log,
	)

	return &Harvester{
		cfg:          cfg,
		registry:     registry,
		orchestrator: orchestrator,
		crawlService: crawler.NewService(orchestrator, fanout, log, store),
		fanout:       fanout,
		store:        store,
		log:          log,
	}, nil
}

func loadSites(path string) (*sites.Registry, error) {
	if strings.TrimSpace(path) == "" {
		return sites.Default(), nil
	}
	reg, err := sites.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sites registry: %w", err)
	}
	return reg, nil
}

func buildPublishers(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.InfoObj("no publishers file configured; snapshot events disabled", "publishers_meta", map[string]any{"count": 0})
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Sites picks the ids to run: requested when given, else the configured list, else every registered site.
func (h *Harvester) Sites(requested []string) []string {
	var ids []string
	for _, id := range requested {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	if len(h.cfg.Sites) > 0 {
		return append([]string(nil), h.cfg.Sites...)
	}
	return h.registry.IDs()
}

// Run refreshes the snapshot of every site in siteIDs once.
func (h *Harvester) Run(ctx context.Context, siteIDs []string) error {
	if h == nil || h.crawlService == nil {
		return fmt.Errorf("harvester is not initialized")
	}

	start := time.Now()
	h.log.InfoObj("crawl started", "crawl_meta", map[string]any{
		"sites":            siteIDs,
		"publishers_count": h.fanout.Size(),
		"started_at":       start.UTC(),
	})
	err := h.crawlService.Run(ctx, siteIDs)
	h.log.InfoObj("crawl completed", "crawl_meta", map[string]any{
		"sites":      siteIDs,
		"failed":     err != nil,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

// LoadOrRun returns the stored snapshot of siteID, refreshing it only when no
// snapshot file exists yet.
func (h *Harvester) LoadOrRun(ctx context.Context, siteID string) (domain.Snapshot, error) {
	if h == nil || h.orchestrator == nil {
		return domain.Snapshot{}, fmt.Errorf("harvester is not initialized")
	}

	profile, err := h.registry.Resolve(siteID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	path := snapshot.PathFor(h.cfg.OutputDir, profile.ID)
	exists, err := snapshot.Exists(path)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if exists {
		snap, err := snapshot.Read(path)
		if err == nil {
			h.log.DebugObj("existing snapshot reused", "snapshot_meta", map[string]any{
				"site_id":       profile.ID,
				"path":          path,
				"creation_date": snap.CreationDate,
			})
			return snap, nil
		}
		h.log.WarnObj("existing snapshot unreadable; refreshing", "snapshot_error", map[string]any{
			"site_id": profile.ID,
			"path":    path,
			"error":   err.Error(),
		})
	}
	return h.orchestrator.Run(ctx, profile.ID)
}

// LastRun reports the recorded outcome of the previous run of siteID.
func (h *Harvester) LastRun(siteID string) (storage.RunRecord, bool, error) {
	if h == nil || h.store == nil {
		return storage.RunRecord{}, false, nil
	}
	return h.store.LastRun(siteID)
}

// Close releases the store and publisher clients.
func (h *Harvester) Close() error {
	if h == nil {
		return nil
	}
	var errs []error
	if err := h.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if h.store != nil {
		if err := h.store.Close(); err != nil {
			h.log.ErrorObj("storage close failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
