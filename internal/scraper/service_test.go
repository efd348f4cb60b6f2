package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/scout/internal/analyzer"
)

const fundingHTML = `<html><head><title>Acme News</title></head><body>
<p>Acme Corp announced today that it raised $5m in a series a funding round,
bringing the total investment to date well past expectations.</p>
</body></html>`

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	det, err := analyzer.NewDetector(analyzer.DefaultRules(), analyzer.DefaultScoring())
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = time.Millisecond
	}
	svc := NewService(cfg, f, det, nil, nil)
	t.Cleanup(svc.Close)
	return svc
}

func TestScrapeTargets_ExtractsAndDetects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, fundingHTML)
	}))
	defer srv.Close()

	svc := newTestService(t, Config{})
	contents, err := svc.ScrapeTargets(context.Background(), []Target{
		{URL: srv.URL, Type: "news_section", Keywords: []string{"acme"}},
	})
	if err != nil {
		t.Fatalf("ScrapeTargets failed: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 result, got %d", len(contents))
	}

	c := contents[0]
	if c.Title != "Acme News" {
		t.Errorf("title = %q", c.Title)
	}
	if !strings.Contains(c.Content, "raised $5m") {
		t.Errorf("content not extracted: %q", c.Content)
	}
	if len(c.Signals) == 0 {
		t.Fatal("expected funding signals to be detected")
	}
	if c.Signals[0].Type != "funding" {
		t.Errorf("top signal type = %q", c.Signals[0].Type)
	}
	if c.ID == "" || c.StatusCode != 200 || c.ScrapedAt.IsZero() {
		t.Errorf("result envelope incomplete: %+v", c)
	}
	if c.Metadata["target_type"] != "news_section" {
		t.Errorf("metadata target_type = %q", c.Metadata["target_type"])
	}
}

func TestScrapeTargets_SkipsNon200(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	svc := newTestService(t, Config{})
	contents, err := svc.ScrapeTargets(context.Background(), []Target{
		{URL: srv.URL, Type: "company_page"},
	})
	if err != nil {
		t.Fatalf("a 404 target should not fail the batch: %v", err)
	}
	if len(contents) != 0 {
		t.Errorf("expected no content from a 404, got %d", len(contents))
	}
}

func TestScrapeTargets_SkipsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"not": "html"}`)
	}))
	defer srv.Close()

	svc := newTestService(t, Config{})
	contents, err := svc.ScrapeTargets(context.Background(), []Target{
		{URL: srv.URL, Type: "company_page"},
	})
	if err != nil {
		t.Fatalf("ScrapeTargets failed: %v", err)
	}
	if len(contents) != 0 {
		t.Errorf("expected JSON responses to be skipped, got %d results", len(contents))
	}
}

func TestScrapeTargets_SkipsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "<html>Attention Required! | Cloudflare</html>")
	}))
	defer srv.Close()

	svc := newTestService(t, Config{})
	contents, err := svc.ScrapeTargets(context.Background(), []Target{
		{URL: srv.URL, Type: "company_page"},
	})
	if err != nil {
		t.Fatalf("ScrapeTargets failed: %v", err)
	}
	if len(contents) != 0 {
		t.Errorf("expected blocked pages to be skipped, got %d results", len(contents))
	}
}

func TestScrapeTargets_PartialBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, fundingHTML)
	})
	mux.HandleFunc("/bad", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newTestService(t, Config{Concurrency: 2})
	contents, err := svc.ScrapeTargets(context.Background(), []Target{
		{URL: srv.URL + "/good", Type: "news_section"},
		{URL: srv.URL + "/bad", Type: "news_section"},
	})
	if err != nil {
		t.Fatalf("one bad target should not fail the batch: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 result, got %d", len(contents))
	}
	if contents[0].URL != srv.URL+"/good" {
		t.Errorf("unexpected surviving URL %s", contents[0].URL)
	}
}

func TestScrapeTargets_FollowLinks(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
			<p>The company news index page lists recent announcements below.</p>
			<a href="/news/item-1">one</a>
			<a href="/news/item-2">two</a>
		</body></html>`)
	})
	for _, p := range []string{"/news/item-1", "/news/item-2"} {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, fundingHTML)
		})
	}
	srv = httptest.NewServer(mux)
	defer srv.Close()

	svc := newTestService(t, Config{})
	contents, err := svc.ScrapeTargets(context.Background(), []Target{
		{URL: srv.URL + "/news", Type: "news_section", FollowLinks: true, MaxDepth: 1},
	})
	if err != nil {
		t.Fatalf("ScrapeTargets failed: %v", err)
	}
	if len(contents) != 3 {
		t.Fatalf("expected index plus 2 followed pages, got %d", len(contents))
	}
}

func TestScrapeTargets_RespectRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, fundingHTML)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newTestService(t, Config{RespectRobots: true})
	contents, err := svc.ScrapeTargets(context.Background(), []Target{
		{URL: srv.URL + "/private/report", Type: "company_page"},
		{URL: srv.URL + "/public", Type: "company_page"},
	})
	if err != nil {
		t.Fatalf("ScrapeTargets failed: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected only the allowed page, got %d results", len(contents))
	}
	if contents[0].URL != srv.URL+"/public" {
		t.Errorf("wrong page survived: %s", contents[0].URL)
	}
}

func TestScrapeTargets_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer srv.Close()

	svc := newTestService(t, Config{Concurrency: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Fetch errors are tolerated per target, but an expired context must
	// surface once the limiter or semaphore observes it.
	targets := make([]Target, 20)
	for i := range targets {
		targets[i] = Target{URL: fmt.Sprintf("%s/%d", srv.URL, i), Type: "company_page"}
	}
	if _, err := svc.ScrapeTargets(ctx, targets); err == nil {
		t.Fatal("expected context cancellation to abort the batch")
	}
}
