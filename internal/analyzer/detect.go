package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/FranksOps/scout/internal/storage"
)

// maxSignals caps the number of signals returned per content piece.
const maxSignals = 10

// contextLimit truncates the surrounding sentence kept with each signal.
const contextLimit = 200

// Detector scans extracted page text for business signals. It is immutable
// after construction and safe for concurrent use.
type Detector struct {
	rules   []compiledRule
	scoring Scoring
}

type compiledRule struct {
	signalType string
	patterns   []*regexp.Regexp
}

// NewDetector compiles the given rules. Pattern matching is case-insensitive;
// content is lowercased once per Detect call, so patterns should be written in
// lowercase.
func NewDetector(rules []Rule, scoring Scoring) (*Detector, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr := compiledRule{signalType: r.Type}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("analyzer: rule %q pattern %q: %w", r.Type, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		compiled = append(compiled, cr)
	}

	return &Detector{rules: compiled, scoring: scoring}, nil
}

// Detect scans content for all configured signal patterns plus any
// caller-supplied keywords (flat substring match). Results are deduplicated by
// (type, match) keeping the highest-confidence instance, sorted by confidence
// descending, and truncated to the top 10.
func (d *Detector) Detect(content string, keywords []string, targetType string) []storage.Signal {
	if content == "" {
		return nil
	}

	lower := strings.ToLower(content)
	sentences := splitSentences(content)

	var signals []storage.Signal

	for _, rule := range d.rules {
		for _, re := range rule.patterns {
			for _, match := range re.FindAllString(lower, -1) {
				signals = append(signals, storage.Signal{
					Type:       rule.signalType,
					Pattern:    re.String(),
					Match:      match,
					Confidence: d.confidence(rule.signalType, match, targetType),
					Context:    sentenceContext(sentences, match),
				})
			}
		}
	}

	for _, kw := range keywords {
		lkw := strings.ToLower(kw)
		if lkw == "" || !strings.Contains(lower, lkw) {
			continue
		}
		signals = append(signals, storage.Signal{
			Type:       "custom",
			Pattern:    kw,
			Match:      kw,
			Confidence: d.scoring.KeywordConfidence,
			Context:    sentenceContext(sentences, lkw),
		})
	}

	return dedupe(signals)
}

// confidence applies the bonus table: base + target-type bonus + magnitude
// bonus, capped at 1.0.
func (d *Detector) confidence(signalType, match, targetType string) float64 {
	c := d.scoring.Base

	if targetType == "careers_page" {
		if signalType == "hiring" {
			c += d.scoring.CareersHiringBonus
		}
	} else if bonus, ok := d.scoring.TypeBonus[targetType]; ok {
		c += bonus
	}

	lowerMatch := strings.ToLower(match)
	for _, w := range d.scoring.MagnitudeWords {
		if strings.Contains(lowerMatch, w) {
			c += d.scoring.MagnitudeBonus
			break
		}
	}

	if c > 1.0 {
		c = 1.0
	}
	return c
}

// dedupe keeps the highest-confidence signal per (type, match) pair, orders by
// confidence descending with a deterministic tie-break, and truncates.
func dedupe(signals []storage.Signal) []storage.Signal {
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Confidence != signals[j].Confidence {
			return signals[i].Confidence > signals[j].Confidence
		}
		if signals[i].Type != signals[j].Type {
			return signals[i].Type < signals[j].Type
		}
		return signals[i].Match < signals[j].Match
	})

	seen := make(map[string]struct{}, len(signals))
	unique := signals[:0]
	for _, s := range signals {
		key := s.Type + ":" + s.Match
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, s)
		if len(unique) == maxSignals {
			break
		}
	}

	return unique
}

// sentenceContext returns the first sentence containing the match, truncated
// to contextLimit characters. Falls back to the match itself.
func sentenceContext(sentences []sentence, match string) string {
	lowerMatch := strings.ToLower(match)
	for _, s := range sentences {
		if strings.Contains(s.lower, lowerMatch) {
			if len(s.original) > contextLimit {
				return s.original[:contextLimit]
			}
			return s.original
		}
	}
	return match
}
