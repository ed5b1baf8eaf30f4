package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"askweb/internal/core/sitemap"

	"github.com/stretchr/testify/require"
)

func entryFor(url string) sitemap.Entry {
	return sitemap.Entry{URL: url, ContentType: "guide", Path: "/guide/a", Source: "sitemap"}
}

func TestCrawlSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><main><h1>Agents</h1><p>Agents validate model output.</p></main></body></html>`))
	}))
	defer srv.Close()

	svc := NewService()
	res := svc.Crawl(context.Background(), entryFor(srv.URL+"/guide/a"))

	require.Equal(t, StatusSuccess, res.Status)
	require.Contains(t, res.Content, "Agents validate model output.")
	require.Empty(t, res.Error)
	require.Equal(t, "guide", res.Entry.ContentType)
}

func TestCrawlHTTPErrorIsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	svc := NewService()
	res := svc.Crawl(context.Background(), entryFor(srv.URL+"/guide/missing"))

	require.Equal(t, StatusError, res.Status)
	require.NotEmpty(t, res.Error)
	require.Empty(t, res.Content)
}

func TestCrawlEmptyPageIsFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><nav>only navigation here</nav></body></html>`))
	}))
	defer srv.Close()

	svc := NewService()
	res := svc.Crawl(context.Background(), entryFor(srv.URL+"/guide/empty"))

	require.Equal(t, StatusFailed, res.Status)
	require.Equal(t, "No content extracted", res.Error)
	require.Empty(t, res.Content)
}

func TestCrawlUnreachableHostIsErrorStatus(t *testing.T) {
	svc := NewService()
	res := svc.Crawl(context.Background(), entryFor("http://127.0.0.1:1/guide/a"))

	require.Equal(t, StatusError, res.Status)
	require.NotEmpty(t, res.Error)
}

func TestContentPresentIffSuccess(t *testing.T) {
	// Invariant check across the three paths above, kept as a table for
	// the normalization helper alone.
	for _, res := range []Result{
		{Status: StatusSuccess, Content: "text"},
		{Status: StatusFailed, Error: "No content extracted"},
		{Status: StatusError, Error: "HTTP 500"},
	} {
		if res.Status == StatusSuccess {
			require.NotEmpty(t, res.Content)
		} else {
			require.Empty(t, res.Content)
		}
	}
}
