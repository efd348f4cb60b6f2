package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker fetches and caches robots.txt per host and answers whether a
// URL may be crawled. Hosts whose robots.txt cannot be fetched or parsed are
// treated as allowing everything.
type RobotsChecker struct {
	fetcher *Fetcher
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]*robotstxt.RobotsData // nil entry means fetch failed, allow all
}

func NewRobotsChecker(fetcher *Fetcher, logger *slog.Logger) *RobotsChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsChecker{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// IsAllowed reports whether userAgent may fetch targetURL according to the
// host's robots.txt.
func (r *RobotsChecker) IsAllowed(ctx context.Context, targetURL, userAgent string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid url %q: %w", targetURL, err)
	}

	data, err := r.getOrFetch(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return false, err
	}
	if data == nil {
		return true, nil
	}

	group := data.FindGroup(userAgent)
	if group == nil {
		return true, nil
	}
	return group.Test(u.Path), nil
}

// Sitemaps returns the sitemap URLs declared in the host's robots.txt.
func (r *RobotsChecker) Sitemaps(ctx context.Context, baseURL string) ([]string, error) {
	data, err := r.getOrFetch(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return data.Sitemaps, nil
}

func (r *RobotsChecker) getOrFetch(ctx context.Context, baseURL string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.cache[baseURL]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := baseURL + "/robots.txt"
	res := r.fetcher.Fetch(ctx, robotsURL)

	var parsed *robotstxt.RobotsData
	switch {
	case res.Error != "":
		r.logger.Debug("robots.txt fetch failed, allowing all", "url", robotsURL, "error", res.Error)
	case res.StatusCode != 200:
		r.logger.Debug("robots.txt unavailable, allowing all", "url", robotsURL, "status", res.StatusCode)
	default:
		parsed, _ = robotstxt.FromBytes(res.Body)
		if parsed == nil {
			r.logger.Debug("robots.txt unparseable, allowing all", "url", robotsURL)
		}
	}

	r.mu.Lock()
	r.cache[baseURL] = parsed
	r.mu.Unlock()

	return parsed, nil
}
