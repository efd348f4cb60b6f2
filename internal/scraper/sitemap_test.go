package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sitemapXML(urls ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, u := range urls {
		body += "<url><loc>" + u + "</loc></url>"
	}
	return body + "</urlset>"
}

func TestFetchSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sitemapXML("https://acme.com/news/a", "https://acme.com/about"))
	}))
	defer srv.Close()

	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	sf := NewSitemapFetcher(f, nil)

	urls, err := sf.FetchSitemap(context.Background(), srv.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("FetchSitemap failed: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
}

func TestFetchSitemap_FollowsIndex(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		switch r.URL.Path {
		case "/sitemap.xml":
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
				<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
					<sitemap><loc>%s/sitemap-news.xml</loc></sitemap>
				</sitemapindex>`, srv.URL)
		case "/sitemap-news.xml":
			fmt.Fprint(w, sitemapXML("https://acme.com/news/a", "https://acme.com/news/b"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	sf := NewSitemapFetcher(f, nil)

	urls, err := sf.FetchSitemap(context.Background(), srv.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("FetchSitemap failed: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls from child sitemap, got %d: %v", len(urls), urls)
	}
}

func TestFetchSitemap_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	sf := NewSitemapFetcher(f, nil)

	if _, err := sf.FetchSitemap(context.Background(), srv.URL+"/sitemap.xml"); err == nil {
		t.Fatal("expected an error for a 404 sitemap")
	}
}

func TestDiscoverContentURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sitemapXML(
			"https://acme.com/news/funding-round",
			"https://acme.com/about",
			"https://acme.com/press/launch",
			"https://acme.com/blog/culture",
			"https://acme.com/products",
		))
	}))
	defer srv.Close()

	f, err := NewFetcher(FetchConfig{MaxRedirects: 5})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	sf := NewSitemapFetcher(f, nil)

	urls, err := sf.DiscoverContentURLs(context.Background(), srv.URL, 10)
	if err != nil {
		t.Fatalf("DiscoverContentURLs failed: %v", err)
	}
	if len(urls) != 3 {
		t.Fatalf("expected 3 content urls, got %d: %v", len(urls), urls)
	}

	limited, err := sf.DiscoverContentURLs(context.Background(), srv.URL, 1)
	if err != nil {
		t.Fatalf("DiscoverContentURLs failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to cap results, got %d", len(limited))
	}
}
