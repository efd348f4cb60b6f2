package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newRobotsServer(t *testing.T, robotsBody string, robotsStatus int) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var fetches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
			w.WriteHeader(robotsStatus)
			w.Write([]byte(robotsBody))
			return
		}
		w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	return srv, &fetches
}

func TestRobotsChecker_Disallow(t *testing.T) {
	srv, _ := newRobotsServer(t, "User-agent: *\nDisallow: /private\n", 200)

	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	rc := NewRobotsChecker(f, nil)

	allowed, err := rc.IsAllowed(context.Background(), srv.URL+"/private/data", "TestBot/1.0")
	if err != nil {
		t.Fatalf("IsAllowed failed: %v", err)
	}
	if allowed {
		t.Error("expected /private to be disallowed")
	}

	allowed, err = rc.IsAllowed(context.Background(), srv.URL+"/public", "TestBot/1.0")
	if err != nil {
		t.Fatalf("IsAllowed failed: %v", err)
	}
	if !allowed {
		t.Error("expected /public to be allowed")
	}
}

func TestRobotsChecker_CachesPerHost(t *testing.T) {
	srv, fetches := newRobotsServer(t, "User-agent: *\nDisallow:\n", 200)

	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	rc := NewRobotsChecker(f, nil)

	for i := 0; i < 3; i++ {
		if _, err := rc.IsAllowed(context.Background(), srv.URL+"/page", "TestBot/1.0"); err != nil {
			t.Fatalf("IsAllowed failed: %v", err)
		}
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("expected 1 robots.txt fetch, got %d", n)
	}
}

func TestRobotsChecker_MissingRobotsAllowsAll(t *testing.T) {
	srv, _ := newRobotsServer(t, "not found", 404)

	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	rc := NewRobotsChecker(f, nil)

	allowed, err := rc.IsAllowed(context.Background(), srv.URL+"/anything", "TestBot/1.0")
	if err != nil {
		t.Fatalf("IsAllowed failed: %v", err)
	}
	if !allowed {
		t.Error("missing robots.txt should allow everything")
	}
}

func TestRobotsChecker_Sitemaps(t *testing.T) {
	srv, _ := newRobotsServer(t, "User-agent: *\nDisallow:\nSitemap: https://acme.com/sitemap.xml\n", 200)

	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	rc := NewRobotsChecker(f, nil)

	maps, err := rc.Sitemaps(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Sitemaps failed: %v", err)
	}
	if len(maps) != 1 || maps[0] != "https://acme.com/sitemap.xml" {
		t.Errorf("unexpected sitemaps: %v", maps)
	}
}
