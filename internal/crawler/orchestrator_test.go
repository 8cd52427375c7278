package crawler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
	"github.com/samvad-hq/news-snapshotter/internal/fetcher"
	"github.com/samvad-hq/news-snapshotter/internal/snapshot"
	"github.com/samvad-hq/news-snapshotter/pkg/httpclient"
	"github.com/samvad-hq/news-snapshotter/pkg/sites"
)

type stubResponse struct {
	body       []byte
	statusCode int
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.statusCode }

// fakeHTTPClient serves canned pages keyed by URL.
type fakeHTTPClient struct {
	pages   map[string]stubResponse
	err     error
	headers map[string]string
	calls   int
}

func (f *fakeHTTPClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	f.calls++
	f.headers = headers
	if f.err != nil {
		return nil, f.err
	}
	resp, ok := f.pages[url]
	if !ok {
		return stubResponse{statusCode: http.StatusNotFound}, nil
	}
	return resp, nil
}

const siteAURL = "https://a.example/news/"

func siteARegistry(t *testing.T) *sites.Registry {
	t.Helper()
	reg, err := sites.NewRegistry(sites.Profile{
		ID:         "siteA",
		Name:       "Site A",
		ListingURL: siteAURL,
		Container:  ".list",
		Posts:      sites.PostSelector{Tag: "li", Attr: "class", Value: "item"},
		Heading:    ".h",
		Descr:      sites.Placeholder{Text: "-"},
		Link:       sites.ParentAttr{Attr: "link"},
		Tags:       sites.FixedTag{Label: "A"},
		Headers:    map[string]string{"User-Agent": "site-agent"},
	})
	require.NoError(t, err)
	return reg
}

func okPage(body string) stubResponse {
	return stubResponse{statusCode: http.StatusOK, body: []byte(body)}
}

const siteABody = `<ul class="list">
<li class="item"><div link="/a"><b class="h">A</b></div></li>
<li class="item"><div link="/b"><b class="h">B</b></div></li>
</ul>`

func newTestOrchestrator(t *testing.T, client httpclient.Client, dir string) *Orchestrator {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, time.May, 1, 9, 30, 0, 0, time.Local) }
	return NewOrchestrator(
		siteARegistry(t),
		fetcher.New(client),
		snapshot.NewWriter(snapshot.WithClock(clock)),
		dir,
		map[string]string{"User-Agent": "default", "Accept-Language": "ru"},
		nil,
	)
}

func TestOrchestratorRunWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	client := &fakeHTTPClient{pages: map[string]stubResponse{siteAURL: okPage(siteABody)}}
	orch := newTestOrchestrator(t, client, dir)

	snap, err := orch.Run(context.Background(), "SITEA")
	require.NoError(t, err)

	assert.Equal(t, siteAURL, snap.URL)
	assert.Equal(t, "01-05-2024 [09:30:00]", snap.CreationDate)
	require.Len(t, snap.Articles, 2)
	assert.Equal(t, "A", snap.Articles[0].Title)
	assert.Equal(t, "https://a.example/a", snap.Articles[0].Link)
	assert.Equal(t, "B", snap.Articles[1].Title)

	assert.Equal(t, "site-agent", client.headers["User-Agent"])
	assert.Equal(t, "ru", client.headers["Accept-Language"])

	stored, err := snapshot.Read(filepath.Join(dir, "sitea_articles.json"))
	require.NoError(t, err)
	assert.Equal(t, snap, stored)
}

func TestOrchestratorUnknownSiteMakesNoRequest(t *testing.T) {
	client := &fakeHTTPClient{}
	_, err := newTestOrchestrator(t, client, t.TempDir()).Run(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrUnknownSite)
	assert.Zero(t, client.calls)
}

func TestOrchestratorPreservesErrorKinds(t *testing.T) {
	for _, tc := range []struct {
		name   string
		client *fakeHTTPClient
		want   error
	}{
		{
			name:   "status",
			client: &fakeHTTPClient{pages: map[string]stubResponse{}},
			want:   domain.ErrUnexpectedStatus,
		},
		{
			name:   "transport",
			client: &fakeHTTPClient{err: errors.New("tls: bad certificate")},
			want:   domain.ErrFetchFailure,
		},
		{
			name:   "structure",
			client: &fakeHTTPClient{pages: map[string]stubResponse{siteAURL: okPage(`<div class="other"></div>`)}},
			want:   domain.ErrStructureChanged,
		},
		{
			name:   "post",
			client: &fakeHTTPClient{pages: map[string]stubResponse{siteAURL: okPage(`<ul class="list"><li class="item"><b class="h">A</b></li></ul>`)}},
			want:   domain.ErrMalformedPost,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := newTestOrchestrator(t, tc.client, dir).Run(context.Background(), "siteA")
			require.ErrorIs(t, err, tc.want)

			entries, readErr := os.ReadDir(dir)
			require.NoError(t, readErr)
			assert.Empty(t, entries, "no snapshot may be written on failure")
		})
	}
}

func TestOrchestratorOversizedPageWritesNothing(t *testing.T) {
	dir := t.TempDir()
	client := &fakeHTTPClient{pages: map[string]stubResponse{siteAURL: okPage(siteABody)}}
	clock := func() time.Time { return time.Date(2024, time.May, 1, 9, 30, 0, 0, time.Local) }
	orch := NewOrchestrator(
		siteARegistry(t),
		fetcher.New(client, fetcher.WithMaxBodyBytes(int64(len(siteABody)/2))),
		snapshot.NewWriter(snapshot.WithClock(clock)),
		dir,
		nil,
		nil,
	)

	_, err := orch.Run(context.Background(), "siteA")
	require.ErrorIs(t, err, domain.ErrFetchFailure)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestOrchestratorPersistFailure(t *testing.T) {
	client := &fakeHTTPClient{pages: map[string]stubResponse{siteAURL: okPage(siteABody)}}
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := newTestOrchestrator(t, client, missing).Run(context.Background(), "siteA")
	assert.ErrorIs(t, err, domain.ErrPersistFailure)
}

func TestOrchestratorNotInitialized(t *testing.T) {
	var orch *Orchestrator
	_, err := orch.Run(context.Background(), "siteA")
	assert.Error(t, err)
}
