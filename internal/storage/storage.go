package storage

import (
	"context"
	"time"
)

// Signal is a regex- or keyword-detected indicator of a business event
// (funding round, hiring push, expansion, ...) found in scraped text.
type Signal struct {
	Type       string  `json:"type"`
	Pattern    string  `json:"pattern"`
	Match      string  `json:"match"`
	Confidence float64 `json:"confidence"` // always within [0, 1]
	Context    string  `json:"context"`    // sentence surrounding the match, truncated
}

// ScrapedContent is the outcome of scraping a single target: extracted text
// plus any signals detected in it.
type ScrapedContent struct {
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	TargetType string            `json:"target_type"` // e.g. "company_page", "press_section"
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Signals    []Signal          `json:"signals"`
	StatusCode int               `json:"status_code"`
	Blocked    bool              `json:"blocked"`
	BlockSrc   string            `json:"block_src"` // e.g. "Cloudflare", "Akamai"
	ScrapedAt  time.Time         `json:"scraped_at"`
	Duration   time.Duration     `json:"duration"`
}

// Filter allows querying for specific scraped content.
type Filter struct {
	URL        string
	TargetType string
	Blocked    *bool
	Since      *time.Time
	Limit      int
	Offset     int
}

// Backend defines the interface for persisting and querying scraped content.
type Backend interface {
	Save(ctx context.Context, content *ScrapedContent) error
	Query(ctx context.Context, filter Filter) ([]*ScrapedContent, error)
	Close() error
}
