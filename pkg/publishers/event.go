package publishers

import (
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
)

// Event announces a freshly written snapshot downstream.
type Event struct {
	ID           string           `json:"id"`
	SiteID       string           `json:"site_id"`
	SiteName     string           `json:"site_name"`
	URL          string           `json:"url"`
	CreationDate string           `json:"creation_date"`
	Path         string           `json:"path"`
	ArticleCount int              `json:"article_count"`
	NewArticles  []domain.Article `json:"new_articles"`
	CollectedAt  time.Time        `json:"collected_at"`
}

// NewEvent builds an Event for snap written at path. fresh holds the articles
// whose links were not announced before.
func NewEvent(siteID, siteName, path string, snap domain.Snapshot, fresh []domain.Article) Event {
	if fresh == nil {
		fresh = []domain.Article{}
	}
	return Event{
		ID:           uuid.NewString(),
		SiteID:       siteID,
		SiteName:     siteName,
		URL:          snap.URL,
		CreationDate: snap.CreationDate,
		Path:         path,
		ArticleCount: len(snap.Articles),
		NewArticles:  fresh,
		CollectedAt:  time.Now().UTC(),
	}
}

// attributes are attached to queue and topic messages for subscriber filtering.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id": e.ID,
		"site_id":  e.SiteID,
	}
}
