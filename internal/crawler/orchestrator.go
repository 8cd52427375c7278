package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
	"github.com/samvad-hq/news-snapshotter/internal/extractor"
	"github.com/samvad-hq/news-snapshotter/internal/logger"
	"github.com/samvad-hq/news-snapshotter/internal/snapshot"
	"github.com/samvad-hq/news-snapshotter/pkg/sites"
)

// Result is the outcome of a successful site run.
type Result struct {
	Profile  sites.Profile
	Path     string
	Snapshot domain.Snapshot
}

// Orchestrator composes resolve, fetch, extract and write for a single site.
type Orchestrator struct {
	registry  ProfileResolver
	fetcher   PageFetcher
	writer    SnapshotWriter
	outputDir string
	headers   map[string]string
	log       logger.Logger
}

// NewOrchestrator wires the run pipeline. defaultHeaders are sent with every
// listing request unless a profile overrides them.
func NewOrchestrator(reg ProfileResolver, fetcher PageFetcher, writer SnapshotWriter, outputDir string, defaultHeaders map[string]string, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		registry:  reg,
		fetcher:   fetcher,
		writer:    writer,
		outputDir: outputDir,
		headers:   defaultHeaders,
		log:       logger.Ensure(log),
	}
}

// Run refreshes the snapshot of siteID and returns it.
func (o *Orchestrator) Run(ctx context.Context, siteID string) (domain.Snapshot, error) {
	res, err := o.RunSite(ctx, siteID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return res.Snapshot, nil
}

// RunSite is Run that also reports the resolved profile and snapshot path.
func (o *Orchestrator) RunSite(ctx context.Context, siteID string) (Result, error) {
	if o == nil || o.registry == nil || o.fetcher == nil || o.writer == nil {
		return Result{}, fmt.Errorf("orchestrator is not initialized")
	}
	start := time.Now()

	profile, err := o.registry.Resolve(siteID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve site %s: %w", siteID, err)
	}

	doc, err := o.fetcher.Fetch(ctx, profile.ListingURL, sites.Headers(o.headers, profile))
	if err != nil {
		return Result{}, fmt.Errorf("fetch site %s: %w", profile.ID, err)
	}

	articles, err := extractor.Extract(doc, profile)
	if err != nil {
		return Result{}, fmt.Errorf("extract site %s: %w", profile.ID, err)
	}

	path := snapshot.PathFor(o.outputDir, profile.ID)
	snap, err := o.writer.Write(path, profile.ListingURL, articles)
	if err != nil {
		return Result{}, fmt.Errorf("write site %s: %w", profile.ID, err)
	}

	o.log.InfoObj("site snapshot written", "site_result", map[string]any{
		"site_id":       profile.ID,
		"url":           profile.ListingURL,
		"path":          path,
		"articles":      len(snap.Articles),
		"creation_date": snap.CreationDate,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return Result{Profile: profile, Path: path, Snapshot: snap}, nil
}
