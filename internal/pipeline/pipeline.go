package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FranksOps/scout/internal/scraper"
	"github.com/FranksOps/scout/internal/storage"
	"github.com/FranksOps/scout/internal/synth"
)

// Scraper is the subset of the scrape service the pipeline depends on.
type Scraper interface {
	ScrapeCompany(ctx context.Context, company, domain string, keywords []string) ([]*storage.ScrapedContent, error)
	ScrapeNews(ctx context.Context, keywords []string, timeRange string) ([]*storage.ScrapedContent, error)
}

// Synthesizer is the subset of the synthesis client the pipeline depends on.
type Synthesizer interface {
	SynthesizeResearch(ctx context.Context, company string, contents []*storage.ScrapedContent, objectives []string) (*synth.ResearchSummary, error)
}

// statically check the concrete implementations still fit
var (
	_ Scraper     = (*scraper.Service)(nil)
	_ Synthesizer = (*synth.Client)(nil)
)

// IntelRequest describes one company research run.
type IntelRequest struct {
	Company    string
	Domain     string
	Keywords   []string
	Objectives []string
	MaxSources int // pages passed to synthesis, default 10
}

// Intel bundles the raw scraped pages with the synthesized briefing.
type Intel struct {
	Contents []*storage.ScrapedContent
	Summary  *synth.ResearchSummary
}

// Pipeline runs the scrape-then-synthesize flow end to end.
type Pipeline struct {
	Scraper Scraper
	Synth   Synthesizer
	Logger  *slog.Logger
}

func New(s Scraper, sy Synthesizer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Scraper: s, Synth: sy, Logger: logger}
}

// CompanyIntel scrapes the company's research targets and synthesizes a
// briefing from the highest-priority pages. If scraping succeeds but
// synthesis fails, the scraped pages are returned alongside the error so the
// caller keeps the partial result.
func (p *Pipeline) CompanyIntel(ctx context.Context, req IntelRequest) (*Intel, error) {
	if req.Company == "" || req.Domain == "" {
		return nil, fmt.Errorf("pipeline: company and domain are required")
	}
	maxSources := req.MaxSources
	if maxSources <= 0 {
		maxSources = 10
	}

	contents, err := p.Scraper.ScrapeCompany(ctx, req.Company, req.Domain, req.Keywords)
	if err != nil {
		return nil, fmt.Errorf("pipeline: scrape failed: %w", err)
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("pipeline: no content scraped for %s", req.Company)
	}

	top := contents
	if len(top) > maxSources {
		top = top[:maxSources]
	}

	summary, err := p.Synth.SynthesizeResearch(ctx, req.Company, top, req.Objectives)
	if err != nil {
		p.Logger.Error("synthesis failed, returning scraped content only",
			"company", req.Company, "error", err)
		return &Intel{Contents: contents}, fmt.Errorf("pipeline: synthesis failed: %w", err)
	}

	p.Logger.Info("company intel complete",
		"company", req.Company,
		"pages", len(contents),
		"signals", countSignals(contents),
		"cost", summary.Cost)

	return &Intel{Contents: contents, Summary: summary}, nil
}

// NewsSweep runs a keyword news scan without synthesis.
func (p *Pipeline) NewsSweep(ctx context.Context, keywords []string, timeRange string) ([]*storage.ScrapedContent, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("pipeline: at least one keyword is required")
	}
	contents, err := p.Scraper.ScrapeNews(ctx, keywords, timeRange)
	if err != nil {
		return nil, fmt.Errorf("pipeline: news scrape failed: %w", err)
	}
	return contents, nil
}

func countSignals(contents []*storage.ScrapedContent) int {
	n := 0
	for _, c := range contents {
		n += len(c.Signals)
	}
	return n
}
