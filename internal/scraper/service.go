package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/FranksOps/scout/internal/analyzer"
	"github.com/FranksOps/scout/internal/bypass"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/storage"
	"github.com/FranksOps/scout/pkg/ratelimit"
	"github.com/FranksOps/scout/pkg/useragent"
)

// Config holds the batch-level scrape settings.
type Config struct {
	Concurrency    int           // max in-flight fetches, default 10
	RequestDelay   time.Duration // min spacing between request starts, default 1s
	Jitter         float64       // fractional jitter on RequestDelay
	MaxLinkFollows int           // links followed per page when enabled, default 5
	RespectRobots  bool
	RobotsAgent    string          // user agent presented to robots.txt, default useragent.BotAgent
	Backend        storage.Backend // optional, saves extracted pages
}

// Service scrapes batches of targets concurrently, extracting content and
// detecting signals on each page. Failures on individual targets are logged
// and skipped; a batch only fails when the context is cancelled.
type Service struct {
	cfg      Config
	fetcher  *Fetcher
	detector *analyzer.Detector
	builder  *TargetBuilder
	robots   *RobotsChecker
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
}

// NewService wires the scrape pipeline together. fetcher and detector are
// required; builder defaults to the standard provider set.
func NewService(cfg Config, fetcher *Fetcher, detector *analyzer.Detector, builder *TargetBuilder, logger *slog.Logger) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = time.Second
	}
	if cfg.MaxLinkFollows <= 0 {
		cfg.MaxLinkFollows = 5
	}
	if cfg.RobotsAgent == "" {
		cfg.RobotsAgent = useragent.BotAgent
	}
	if builder == nil {
		builder = NewTargetBuilder(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		fetcher:  fetcher,
		detector: detector,
		builder:  builder,
		robots:   NewRobotsChecker(fetcher, logger),
		limiter:  ratelimit.New(cfg.RequestDelay, cfg.Jitter),
		logger:   logger,
	}
}

// Close releases the service's rate limiter.
func (s *Service) Close() {
	s.limiter.Stop()
}

// ScrapeCompany scrapes the standard research targets for one company and
// returns the results ordered by priority.
func (s *Service) ScrapeCompany(ctx context.Context, company, domain string, keywords []string) ([]*storage.ScrapedContent, error) {
	targets := s.builder.CompanyTargets(ctx, company, domain, keywords)

	contents, err := s.ScrapeTargets(ctx, targets)
	if err != nil {
		return nil, err
	}

	s.logger.Info("company scrape complete",
		"company", company,
		"targets", len(targets),
		"pages", len(contents))

	return Prioritize(contents, keywords), nil
}

// ScrapeNews runs a keyword news sweep across the search providers and
// returns only the relevant results.
func (s *Service) ScrapeNews(ctx context.Context, keywords []string, timeRange string) ([]*storage.ScrapedContent, error) {
	targets := s.builder.NewsTargets(keywords, timeRange)

	contents, err := s.ScrapeTargets(ctx, targets)
	if err != nil {
		return nil, err
	}

	relevant := FilterRelevant(contents, keywords)
	s.logger.Info("news scrape complete",
		"keywords", strings.Join(keywords, ","),
		"pages", len(contents),
		"relevant", len(relevant))

	return relevant, nil
}

// ScrapeTargets fetches every target concurrently, bounded by the configured
// concurrency and request spacing. Results arrive in completion order.
func (s *Service) ScrapeTargets(ctx context.Context, targets []Target) ([]*storage.ScrapedContent, error) {
	b := &scrapeBatch{
		svc:     s,
		sem:     semaphore.NewWeighted(int64(s.cfg.Concurrency)),
		visited: make(map[string]struct{}, len(targets)),
	}
	for _, t := range targets {
		b.visited[t.URL] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			return b.run(gctx, t, 0)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b.contents, nil
}

// scrapeBatch carries the shared state of one ScrapeTargets call.
type scrapeBatch struct {
	svc *Service
	sem *semaphore.Weighted

	mu       sync.Mutex
	contents []*storage.ScrapedContent
	visited  map[string]struct{}
}

func (b *scrapeBatch) run(ctx context.Context, t Target, depth int) error {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := b.svc.limiter.Wait(ctx); err != nil {
		b.sem.Release(1)
		return err
	}

	content, links := b.svc.scrapeTarget(ctx, t)
	b.sem.Release(1)

	if content != nil {
		b.mu.Lock()
		b.contents = append(b.contents, content)
		b.mu.Unlock()
	}

	if !t.FollowLinks || depth >= t.MaxDepth {
		return nil
	}

	followed := 0
	for _, link := range links {
		if followed >= b.svc.cfg.MaxLinkFollows {
			break
		}
		b.mu.Lock()
		_, seen := b.visited[link]
		if !seen {
			b.visited[link] = struct{}{}
		}
		b.mu.Unlock()
		if seen {
			continue
		}
		followed++

		child := Target{
			URL:       link,
			Type:      t.Type,
			Selectors: t.Selectors,
			Keywords:  t.Keywords,
		}
		if err := b.run(ctx, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// scrapeTarget fetches one URL and extracts its content. A nil content return
// means the target was skipped (blocked, non-200, not HTML, disallowed, or a
// transport failure); links are only returned for successfully parsed pages.
func (s *Service) scrapeTarget(ctx context.Context, t Target) (*storage.ScrapedContent, []string) {
	domain := hostOf(t.URL)
	start := time.Now()

	if s.cfg.RespectRobots {
		allowed, err := s.robots.IsAllowed(ctx, t.URL, s.cfg.RobotsAgent)
		if err != nil {
			s.logger.Warn("robots.txt check failed", "url", t.URL, "error", err)
			return nil, nil
		}
		if !allowed {
			s.logger.Info("skipping disallowed url", "url", t.URL)
			return nil, nil
		}
	}

	res := s.fetcher.Fetch(ctx, t.URL)

	if res.Error != "" {
		s.logger.Warn("fetch failed", "url", t.URL, "error", res.Error)
		metrics.RecordFetch(domain, res.StatusCode, res.Error, false, "", res.Duration)
		return nil, nil
	}

	blocked, blockSrc := bypass.Analyze(res.StatusCode, res.Headers, res.Body, bypass.DefaultDetectors())
	if blocked {
		s.logger.Warn("blocked by bot protection", "url", t.URL, "source", blockSrc, "status", res.StatusCode)
		metrics.RecordFetch(domain, res.StatusCode, "", true, blockSrc, res.Duration)
		return nil, nil
	}

	if res.StatusCode != 200 {
		s.logger.Debug("skipping non-200 response", "url", t.URL, "status", res.StatusCode)
		metrics.RecordFetch(domain, res.StatusCode, "", false, "", res.Duration)
		return nil, nil
	}

	if ct := res.Headers.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		s.logger.Debug("skipping non-html response", "url", t.URL, "content_type", ct)
		metrics.RecordFetch(domain, res.StatusCode, "", false, "", res.Duration)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		s.logger.Warn("failed to parse html", "url", t.URL, "error", err)
		metrics.RecordFetch(domain, res.StatusCode, err.Error(), false, "", res.Duration)
		return nil, nil
	}

	content := extractContent(doc, t)
	signals := s.detector.Detect(content, t.Keywords, t.Type)

	sc := &storage.ScrapedContent{
		ID:         uuid.New().String(),
		URL:        t.URL,
		TargetType: t.Type,
		Title:      extractTitle(doc, t),
		Content:    content,
		Metadata:   extractMetadata(doc, t, t.URL),
		Signals:    signals,
		StatusCode: res.StatusCode,
		ScrapedAt:  start.UTC(),
		Duration:   time.Since(start),
	}

	metrics.RecordFetch(domain, res.StatusCode, "", false, "", sc.Duration)
	metrics.RecordContent(domain, sc)

	if s.cfg.Backend != nil {
		if err := s.cfg.Backend.Save(ctx, sc); err != nil {
			s.logger.Error("failed to persist content", "url", t.URL, "error", err)
		}
	}

	var links []string
	if t.FollowLinks {
		links = extractLinks(t.URL, doc)
	}
	return sc, links
}
