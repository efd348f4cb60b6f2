package scraper

import (
	"testing"
	"time"

	"github.com/FranksOps/scout/internal/storage"
)

func TestPriorityScore(t *testing.T) {
	c := &storage.ScrapedContent{
		Signals: []storage.Signal{
			{Type: "funding", Pattern: `raised\s+\$?\d+`, Confidence: 0.7},
			{Type: "hiring", Pattern: `hiring`, Confidence: 0.6},
		},
		Duration: time.Second,
	}

	// 0.7 + 0.6 signals, 0.5 requested-pattern bonus, 0.2 fast fetch
	got := PriorityScore(c, []string{`raised\s+\$?\d+`})
	want := 2.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected score %v, got %v", want, got)
	}

	slow := &storage.ScrapedContent{Duration: 5 * time.Second}
	if s := PriorityScore(slow, nil); s != 0 {
		t.Errorf("expected zero score for slow signal-free page, got %v", s)
	}
}

func TestPrioritize_Ordering(t *testing.T) {
	low := &storage.ScrapedContent{URL: "low", Duration: 5 * time.Second}
	mid := &storage.ScrapedContent{
		URL:      "mid",
		Duration: 5 * time.Second,
		Signals:  []storage.Signal{{Confidence: 0.6}},
	}
	high := &storage.ScrapedContent{
		URL:      "high",
		Duration: time.Second,
		Signals:  []storage.Signal{{Confidence: 0.7}, {Confidence: 0.7}},
	}

	got := Prioritize([]*storage.ScrapedContent{low, mid, high}, nil)
	wantOrder := []string{"high", "mid", "low"}
	for i, w := range wantOrder {
		if got[i].URL != w {
			t.Errorf("position %d: expected %s, got %s", i, w, got[i].URL)
		}
	}
}

func TestFilterRelevant(t *testing.T) {
	withSignal := &storage.ScrapedContent{
		URL:     "signal",
		Signals: []storage.Signal{{Type: "funding", Confidence: 0.7}},
	}
	withKeyword := &storage.ScrapedContent{
		URL:   "keyword",
		Title: "Acme announces new product line",
	}
	irrelevant := &storage.ScrapedContent{
		URL:     "noise",
		Title:   "Unrelated page",
		Content: "nothing of interest",
	}

	got := FilterRelevant([]*storage.ScrapedContent{withSignal, withKeyword, irrelevant}, []string{"acme"})
	if len(got) != 2 {
		t.Fatalf("expected 2 relevant pages, got %d", len(got))
	}
	for _, c := range got {
		if c.URL == "noise" {
			t.Error("irrelevant page survived the filter")
		}
	}
}
