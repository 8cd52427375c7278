// Package storage keeps local run history and the index of article links already announced.
package storage

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Store tracks seen article links and the last run of every site.
type Store interface {
	Close() error
	SeenArticle(id string) (bool, error)
	MarkArticle(id string) error
	RecordRun(siteID string, rec RunRecord) error
	LastRun(siteID string) (RunRecord, bool, error)
}

// RunRecord summarizes one orchestrated run of a site.
type RunRecord struct {
	SiteID       string    `json:"site_id"`
	URL          string    `json:"url"`
	CreationDate string    `json:"creation_date,omitempty"`
	Path         string    `json:"path,omitempty"`
	ArticleCount int       `json:"article_count"`
	NewArticles  int       `json:"new_articles"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	Error        string    `json:"error,omitempty"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Succeeded reports whether the run produced a snapshot.
func (r RunRecord) Succeeded() bool { return r.ErrorKind == "" && r.Error == "" }

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ArticleTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultArticleTTL      = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// ArticleID derives the stable index key for an article link.
func ArticleID(link string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(link)))
	return hex.EncodeToString(sum[:])
}

func normalizeOptions(opts Options) Options {
	if opts.ArticleTTL <= 0 {
		opts.ArticleTTL = defaultArticleTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) SeenArticle(string) (bool, error)        { return false, nil }
func (noopStore) MarkArticle(string) error                { return nil }
func (noopStore) RecordRun(string, RunRecord) error       { return nil }
func (noopStore) LastRun(string) (RunRecord, bool, error) { return RunRecord{}, false, nil }
