// Package snapshot persists and reads per-site article snapshots as JSON files.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
)

const fileSuffix = "_articles.json"

// Writer serializes snapshots atomically.
type Writer struct {
	now func() time.Time
}

// Option customizes a Writer.
type Option func(*Writer)

// WithClock replaces the clock used to stamp creationDate.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWriter returns a Writer using the local wall clock.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PathFor returns the snapshot file location for siteID under dir.
func PathFor(dir, siteID string) string {
	return filepath.Join(dir, strings.ToLower(strings.TrimSpace(siteID))+fileSuffix)
}

// Write stamps a snapshot of articles and replaces the file at path with it.
// Readers observe either the previous file or the complete new one.
func (w *Writer) Write(path, url string, articles []domain.Article) (domain.Snapshot, error) {
	snap := domain.Snapshot{
		URL:          url,
		CreationDate: domain.FormatCreationDate(w.now().Local()),
		Articles:     copyArticles(articles),
	}

	data, err := encode(snap)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: encode snapshot for %s: %v", domain.ErrPersistFailure, url, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrPersistFailure, err)
	}
	return snap, nil
}

// Read decodes the snapshot stored at path.
func Read(path string) (domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Articles == nil {
		snap.Articles = []domain.Article{}
	}
	return snap, nil
}

func copyArticles(in []domain.Article) []domain.Article {
	out := make([]domain.Article, len(in))
	for i, a := range in {
		tags := make([]string, len(a.Tags))
		copy(tags, a.Tags)
		a.Tags = tags
		out[i] = a
	}
	return out
}

func encode(snap domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat snapshot %s: %w", path, err)
	}
}
