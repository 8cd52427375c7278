package domain

import (
	"fmt"
	"time"
)

// CreationDateLayout is the fixed, locale-independent snapshot timestamp layout (DD-MM-YYYY [HH:MM:SS]).
const CreationDateLayout = "02-01-2006 [15:04:05]"

// Article is one normalized record extracted from a listing page.
type Article struct {
	Title string   `json:"title"`
	Descr string   `json:"descr"`
	Link  string   `json:"link"`
	Tags  []string `json:"tags"`
}

// Snapshot is the persisted result of one extraction run for one site.
type Snapshot struct {
	URL          string    `json:"url"`
	CreationDate string    `json:"creationDate"`
	Articles     []Article `json:"articles"`
}

// FormatCreationDate renders t with CreationDateLayout.
func FormatCreationDate(t time.Time) string {
	return t.Format(CreationDateLayout)
}

// ParseCreationDate parses a snapshot creationDate value in local time.
func ParseCreationDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(CreationDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse creation date %q: %w", s, err)
	}
	return t, nil
}
