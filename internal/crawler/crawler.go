package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
	"github.com/samvad-hq/news-snapshotter/internal/logger"
	"github.com/samvad-hq/news-snapshotter/internal/storage"
	"github.com/samvad-hq/news-snapshotter/pkg/publishers"
)

// RunRecorder keeps the last outcome of every site.
type RunRecorder interface {
	RecordRun(siteID string, rec storage.RunRecord) error
}

// Service runs a batch of sites and announces new articles downstream.
type Service struct {
	runner    SiteRunner
	publisher EventPublisher
	deduper   Deduper
	recorder  RunRecorder
	log       logger.Logger
}

// NewService wires a crawler around runner. publisher and store may be nil.
func NewService(runner SiteRunner, publisher EventPublisher, log logger.Logger, store storage.Store) *Service {
	s := &Service{
		runner:    runner,
		publisher: publisher,
		log:       logger.Ensure(log),
	}
	if store != nil {
		s.deduper = store
		s.recorder = store
	}
	return s
}

// Run executes every site in order. A failing site does not stop the batch;
// all failures are returned joined.
func (s *Service) Run(ctx context.Context, siteIDs []string) error {
	if s == nil || s.runner == nil {
		return fmt.Errorf("crawler service is not initialized")
	}

	if len(siteIDs) == 0 {
		return fmt.Errorf("no sites requested")
	}

	errs := s.runAll(ctx, siteIDs)
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) runAll(ctx context.Context, siteIDs []string) []error {
	errs := make([]error, 0, len(siteIDs))

	for _, id := range siteIDs {
		if ctx.Err() != nil {
			s.log.WarnObj("site batch interrupted", "crawl_state", map[string]any{
				"site_id": id,
				"reason":  ctx.Err().Error(),
			})
			break
		}
		if err := s.runSite(ctx, id); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("site run failed", "site_error", map[string]any{
				"site_id": id,
				"kind":    domain.Kind(err),
				"error":   err.Error(),
			})
		}
	}

	return errs
}

func (s *Service) runSite(ctx context.Context, siteID string) error {
	res, err := s.runner.RunSite(ctx, siteID)
	if err != nil {
		s.record(siteID, storage.RunRecord{
			ErrorKind: domain.Kind(err),
			Error:     err.Error(),
		})
		return err
	}

	fresh := s.filterNewArticles(res.Profile.ID, res.Snapshot.Articles)
	rec := storage.RunRecord{
		URL:          res.Snapshot.URL,
		CreationDate: res.Snapshot.CreationDate,
		Path:         res.Path,
		ArticleCount: len(res.Snapshot.Articles),
		NewArticles:  len(fresh),
	}

	var publishErr error
	if len(fresh) > 0 {
		publishErr = s.announce(ctx, res, fresh)
	}
	s.record(res.Profile.ID, rec)
	return publishErr
}

// announce publishes fresh articles and marks them once at least one sink accepted the event.
func (s *Service) announce(ctx context.Context, res Result, fresh []domain.Article) error {
	delivered := 0
	var err error
	if s.publisher != nil {
		evt := publishers.NewEvent(res.Profile.ID, res.Profile.Name, res.Path, res.Snapshot, fresh)
		delivered, err = s.publisher.Publish(ctx, evt)
		if err != nil {
			err = fmt.Errorf("publish site %s: %w", res.Profile.ID, err)
		}
		if delivered == 0 && err != nil {
			return err
		}
	}

	for _, a := range fresh {
		if markErr := s.markArticle(a); markErr != nil {
			s.log.WarnObj("article mark failed", "dedupe_error", map[string]any{
				"site_id": res.Profile.ID,
				"link":    a.Link,
				"error":   markErr.Error(),
			})
		}
	}

	s.log.InfoObj("site articles announced", "site_publish", map[string]any{
		"site_id":      res.Profile.ID,
		"new_articles": len(fresh),
		"publishers":   delivered,
	})
	return err
}

// filterNewArticles drops articles whose links were already announced.
// Lookup failures keep the article.
func (s *Service) filterNewArticles(siteID string, articles []domain.Article) []domain.Article {
	if s.deduper == nil {
		return articles
	}

	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		seen, err := s.deduper.SeenArticle(storage.ArticleID(a.Link))
		if err != nil {
			s.log.WarnObj("article lookup failed", "dedupe_error", map[string]any{
				"site_id": siteID,
				"link":    a.Link,
				"error":   err.Error(),
			})
			out = append(out, a)
			continue
		}
		if !seen {
			out = append(out, a)
		}
	}
	return out
}

func (s *Service) markArticle(a domain.Article) error {
	if s.deduper == nil {
		return nil
	}
	return s.deduper.MarkArticle(storage.ArticleID(a.Link))
}

func (s *Service) record(siteID string, rec storage.RunRecord) {
	if s.recorder == nil {
		return
	}
	rec.FinishedAt = time.Now().UTC()
	if err := s.recorder.RecordRun(siteID, rec); err != nil {
		s.log.WarnObj("run record failed", "storage_error", map[string]any{
			"site_id": siteID,
			"error":   err.Error(),
		})
	}
}
