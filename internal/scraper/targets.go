package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/FranksOps/scout/internal/serp"
)

// Target describes a single URL to scrape along with the extraction hints and
// detection keywords that apply to it.
type Target struct {
	URL         string
	Type        string
	Selectors   map[string]string
	Keywords    []string
	MaxDepth    int
	FollowLinks bool
}

// companyPages is the fixed set of paths probed on a company's own domain.
// Selectors are intentionally loose; most corporate sites fall into one of a
// handful of layouts.
var companyPages = []struct {
	path      string
	pageType  string
	selectors map[string]string
}{
	{"/", "company_page", map[string]string{
		"title":   "title",
		"content": "main, .content, article",
	}},
	{"/about", "company_page", map[string]string{
		"title":   "h1, .page-title",
		"content": "main, .content",
	}},
	{"/news", "news_section", map[string]string{
		"title":   "h1",
		"content": ".news-item, article",
	}},
	{"/press", "press_section", map[string]string{
		"title":   "h1",
		"content": ".press-release, article",
	}},
	{"/careers", "careers_page", map[string]string{
		"title":   "h1",
		"content": ".job-listing, .career-content",
	}},
}

var discoveredSelectors = map[string]string{
	"title":   "h1, title",
	"content": "main, article, .content",
}

// TargetBuilder assembles scrape target lists from a company domain, search
// providers, and optional sitemap discovery.
type TargetBuilder struct {
	Providers    []serp.Provider
	Sitemaps     *SitemapFetcher // nil disables sitemap discovery
	SitemapLimit int             // max discovered URLs per domain, default 10
	Logger       *slog.Logger
}

// NewTargetBuilder returns a builder over the default search providers.
func NewTargetBuilder(logger *slog.Logger) *TargetBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &TargetBuilder{
		Providers:    serp.DefaultProviders(),
		SitemapLimit: 10,
		Logger:       logger,
	}
}

// CompanyTargets builds the target list for researching a single company:
// the standard pages on its own domain, one search target per provider, and
// any content URLs discovered from the domain's sitemap.
func (b *TargetBuilder) CompanyTargets(ctx context.Context, company, domain string, keywords []string) []Target {
	base := "https://" + domain

	targets := make([]Target, 0, len(companyPages)+len(b.Providers))
	for _, page := range companyPages {
		targets = append(targets, Target{
			URL:       base + page.path,
			Type:      page.pageType,
			Selectors: page.selectors,
			Keywords:  keywords,
		})
	}

	query := company
	if len(keywords) > 0 {
		kw := keywords
		if len(kw) > 3 {
			kw = kw[:3]
		}
		query += " " + strings.Join(kw, " ")
	}
	for _, p := range b.Providers {
		targets = append(targets, Target{
			URL:       p.SearchURL(query),
			Type:      p.TargetType(),
			Selectors: p.Selectors(),
			Keywords:  keywords,
		})
	}

	if b.Sitemaps != nil {
		limit := b.SitemapLimit
		if limit <= 0 {
			limit = 10
		}
		urls, err := b.Sitemaps.DiscoverContentURLs(ctx, base, limit)
		if err != nil {
			b.Logger.Debug("sitemap discovery failed", "domain", domain, "error", err)
		}
		for _, u := range urls {
			targets = append(targets, Target{
				URL:       u,
				Type:      "news_article",
				Selectors: discoveredSelectors,
				Keywords:  keywords,
			})
		}
	}

	return targets
}

// NewsTargets builds one search target per provider for a keyword-driven news
// sweep. timeRange is passed through as a search operator ("7d", "1m"); empty
// means no recency restriction.
func (b *TargetBuilder) NewsTargets(keywords []string, timeRange string) []Target {
	kw := keywords
	if len(kw) > 5 {
		kw = kw[:5]
	}
	query := strings.Join(kw, " ")
	if timeRange != "" {
		query += " when:" + timeRange
	}

	targets := make([]Target, 0, len(b.Providers))
	for _, p := range b.Providers {
		targets = append(targets, Target{
			URL:       p.SearchURL(query),
			Type:      p.TargetType(),
			Selectors: p.Selectors(),
			Keywords:  keywords,
		})
	}
	return targets
}
