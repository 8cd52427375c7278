package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the extraction engine. Every failure returned by the
// fetcher, registry, extractor and writer matches exactly one of these via errors.Is.
var (
	ErrInvalidURL        = errors.New("invalid url")
	ErrConnectionFailure = errors.New("connection failure")
	ErrFetchFailure      = errors.New("fetch failure")
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrUnknownSite       = errors.New("unknown site")
	ErrStructureChanged  = errors.New("structure changed")
	ErrMalformedPost     = errors.New("malformed post")
	ErrPersistFailure    = errors.New("persist failure")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidURL, "InvalidUrl"},
	{ErrConnectionFailure, "ConnectionFailure"},
	{ErrFetchFailure, "FetchFailure"},
	{ErrUnexpectedStatus, "UnexpectedStatus"},
	{ErrUnknownSite, "UnknownSite"},
	{ErrStructureChanged, "StructureChanged"},
	{ErrMalformedPost, "MalformedPost"},
	{ErrPersistFailure, "PersistFailure"},
}

// Kind names the error kind of err, or "Unknown" when it matches none.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d body: %s", e.URL, e.StatusCode, e.Snippet)
}

// Is makes StatusError match ErrUnexpectedStatus.
func (e *StatusError) Is(target error) bool { return target == ErrUnexpectedStatus }

// PostError reports a post element whose required field could not be derived.
type PostError struct {
	SiteID string
	Index  int
	Field  string
	Reason string
}

func (e *PostError) Error() string {
	return fmt.Sprintf("site %s post[%d] %s: %s", e.SiteID, e.Index, e.Field, e.Reason)
}

// Is makes PostError match ErrMalformedPost.
func (e *PostError) Is(target error) bool { return target == ErrMalformedPost }
