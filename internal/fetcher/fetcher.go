// Package fetcher validates listing URLs, performs a single GET, and parses the response into a document.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
	"github.com/samvad-hq/news-snapshotter/internal/logger"
	"github.com/samvad-hq/news-snapshotter/pkg/httpclient"
)

const defaultMaxBodyBytes = 5 << 20 // 5 MiB

// Fetcher retrieves listing pages. It never retries.
type Fetcher struct {
	client       httpclient.Client
	maxBodyBytes int64
	log          logger.Logger
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithMaxBodyBytes sets the largest response body accepted. Larger bodies fail the fetch.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(f *Fetcher) { f.log = logger.Ensure(log) }
}

// New builds a Fetcher on top of client.
func New(client httpclient.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       client,
		maxBodyBytes: defaultMaxBodyBytes,
		log:          logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: url is empty", domain.ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q must use http or https (http(s)://domain.name/[path/])", domain.ErrInvalidURL, raw)
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q has no host", domain.ErrInvalidURL, raw)
	}
	return u, nil
}

// Fetch validates rawURL, issues one GET and returns the parsed document.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, headers map[string]string) (*goquery.Document, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if f == nil || f.client == nil {
		return nil, fmt.Errorf("%w: fetcher has no http client", domain.ErrFetchFailure)
	}
	target := u.String()

	resp, err := f.client.Get(ctx, target, headers)
	if err != nil {
		return nil, classifyTransportError(target, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, &domain.StatusError{
			URL:        target,
			StatusCode: resp.StatusCode(),
			Snippet:    responseSnippet(body),
		}
	}

	if int64(len(body)) > f.maxBodyBytes {
		f.log.WarnObj("listing body exceeds limit", "fetch_meta", map[string]any{
			"url":        target,
			"body_bytes": len(body),
			"max_bytes":  f.maxBodyBytes,
		})
		return nil, fmt.Errorf("%w: body of %s is %d bytes, limit is %d", domain.ErrFetchFailure, target, len(body), f.maxBodyBytes)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html from %s: %v", domain.ErrStructureChanged, target, err)
	}

	f.log.DebugObj("listing fetched", "fetch_meta", map[string]any{
		"url":        target,
		"body_bytes": len(body),
	})
	return doc, nil
}

func classifyTransportError(target string, err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%w: cannot connect to %s: %v", domain.ErrConnectionFailure, target, err)
	}
	return fmt.Errorf("%w: get %s: %v", domain.ErrFetchFailure, target, err)
}

// isConnectionError reports DNS and connect-level failures.
func isConnectionError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
