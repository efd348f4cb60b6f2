package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	sitemap "github.com/oxffaa/gopher-parse-sitemap"
)

// contentPathHints mark URL paths likely to carry announcements or articles.
var contentPathHints = []string{"/news", "/press", "/blog", "/media", "/stories"}

// SitemapFetcher retrieves and parses sitemap files, following sitemap
// indexes one level deep.
type SitemapFetcher struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

func NewSitemapFetcher(fetcher *Fetcher, logger *slog.Logger) *SitemapFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapFetcher{fetcher: fetcher, logger: logger}
}

// FetchSitemap downloads a sitemap and returns the page URLs it lists. If the
// document is a sitemap index, each referenced sitemap is fetched in turn.
func (s *SitemapFetcher) FetchSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	res := s.fetcher.Fetch(ctx, sitemapURL)
	if res.Error != "" {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %s", sitemapURL, res.Error)
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("sitemap %s returned status %d", sitemapURL, res.StatusCode)
	}

	var urls []string
	err := sitemap.Parse(bytes.NewReader(res.Body), func(e sitemap.Entry) error {
		urls = append(urls, e.GetLocation())
		return nil
	})
	if err == nil && len(urls) > 0 {
		return urls, nil
	}

	// Maybe a sitemap index
	var children []string
	idxErr := sitemap.ParseIndex(bytes.NewReader(res.Body), func(e sitemap.IndexEntry) error {
		children = append(children, e.GetLocation())
		return nil
	})
	if idxErr != nil || len(children) == 0 {
		if err != nil {
			return nil, fmt.Errorf("failed to parse sitemap %s: %w", sitemapURL, err)
		}
		return urls, nil
	}

	for _, child := range children {
		childURLs, err := s.FetchSitemap(ctx, child)
		if err != nil {
			s.logger.Debug("skipping child sitemap", "url", child, "error", err)
			continue
		}
		urls = append(urls, childURLs...)
	}
	return urls, nil
}

// DiscoverContentURLs fetches the site's sitemap and keeps URLs whose path
// suggests news or press content, up to limit entries.
func (s *SitemapFetcher) DiscoverContentURLs(ctx context.Context, siteURL string, limit int) ([]string, error) {
	urls, err := s.FetchSitemap(ctx, siteURL+"/sitemap.xml")
	if err != nil {
		return nil, err
	}

	var out []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		path := strings.ToLower(u.Path)
		for _, hint := range contentPathHints {
			if strings.HasPrefix(path, hint) {
				out = append(out, raw)
				break
			}
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
