package scraper

import (
	"sort"
	"strings"
	"time"

	"github.com/FranksOps/scout/internal/storage"
)

// PriorityScore ranks a scraped page: the sum of its signal confidences, a
// 0.5 bonus per signal that matched a caller-requested pattern, and a small
// responsiveness bonus for pages that fetched quickly.
func PriorityScore(c *storage.ScrapedContent, requested []string) float64 {
	score := 0.0
	for _, sig := range c.Signals {
		score += sig.Confidence
		for _, r := range requested {
			if sig.Pattern == r {
				score += 0.5
				break
			}
		}
	}
	if c.Duration < 2*time.Second {
		score += 0.2
	}
	return score
}

// Prioritize orders the results highest-score first. The sort is stable so
// equal-score pages keep their scrape order.
func Prioritize(contents []*storage.ScrapedContent, requested []string) []*storage.ScrapedContent {
	sort.SliceStable(contents, func(i, j int) bool {
		return PriorityScore(contents[i], requested) > PriorityScore(contents[j], requested)
	})
	return contents
}

// FilterRelevant keeps pages that either carry detected signals or mention
// one of the keywords in their title or body.
func FilterRelevant(contents []*storage.ScrapedContent, keywords []string) []*storage.ScrapedContent {
	var out []*storage.ScrapedContent
	for _, c := range contents {
		if len(c.Signals) > 0 {
			out = append(out, c)
			continue
		}
		haystack := strings.ToLower(c.Title + " " + c.Content)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
