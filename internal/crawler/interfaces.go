package crawler

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
	"github.com/samvad-hq/news-snapshotter/pkg/publishers"
	"github.com/samvad-hq/news-snapshotter/pkg/sites"
)

// ProfileResolver looks up site profiles by id.
type ProfileResolver interface {
	Resolve(id string) (sites.Profile, error)
}

// PageFetcher retrieves and parses a listing page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, headers map[string]string) (*goquery.Document, error)
}

// SnapshotWriter persists a snapshot of articles at path.
type SnapshotWriter interface {
	Write(path, url string, articles []domain.Article) (domain.Snapshot, error)
}

// SiteRunner executes one full extraction run for a site.
type SiteRunner interface {
	RunSite(ctx context.Context, siteID string) (Result, error)
}

// EventPublisher publishes snapshot events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper tracks article ids already announced.
type Deduper interface {
	SeenArticle(id string) (bool, error)
	MarkArticle(id string) error
}
