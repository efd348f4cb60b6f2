package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Rule groups the regex patterns that indicate one category of business event.
type Rule struct {
	Type     string   `json:"type"`
	Patterns []string `json:"patterns"`
}

// Scoring holds the confidence bonus table applied to detected signals.
// Keeping it as data rather than inline literals lets callers substitute
// their own weighting without code changes.
type Scoring struct {
	// Base confidence assigned to every pattern match.
	Base float64 `json:"base"`
	// TypeBonus is added based on the type of the scraped target.
	TypeBonus map[string]float64 `json:"type_bonus"`
	// CareersHiringBonus applies only to hiring signals found on careers pages.
	CareersHiringBonus float64 `json:"careers_hiring_bonus"`
	// MagnitudeWords boost a match that mentions a financial magnitude.
	MagnitudeWords []string `json:"magnitude_words"`
	MagnitudeBonus float64  `json:"magnitude_bonus"`
	// KeywordConfidence is the flat confidence for caller-supplied keywords.
	KeywordConfidence float64 `json:"keyword_confidence"`
}

// DefaultRules returns the built-in signal categories.
func DefaultRules() []Rule {
	return []Rule{
		{Type: "funding", Patterns: []string{
			`raised \$[\d\.]+[mb]?`,
			`series [abc] funding`,
			`investment round`,
			`venture capital`,
			`seed funding`,
		}},
		{Type: "hiring", Patterns: []string{
			`hiring \d+ people`,
			`expanding team`,
			`new positions`,
			`job openings`,
			`recruitment drive`,
		}},
		{Type: "expansion", Patterns: []string{
			`opening new office`,
			`expanding to`,
			`international expansion`,
			`new market`,
			`geographic expansion`,
		}},
		{Type: "product_launch", Patterns: []string{
			`launching new`,
			`product release`,
			`new feature`,
			`beta launch`,
			`coming soon`,
		}},
		{Type: "partnership", Patterns: []string{
			`partnership with`,
			`strategic alliance`,
			`collaboration`,
			`joint venture`,
			`announces deal`,
		}},
		{Type: "leadership", Patterns: []string{
			`new ceo`,
			`executive appointment`,
			`leadership change`,
			`promoted to`,
			`joins as`,
		}},
	}
}

// DefaultScoring returns the standard bonus table. Press releases carry the
// strongest boost since they are first-party announcements.
func DefaultScoring() Scoring {
	return Scoring{
		Base: 0.6,
		TypeBonus: map[string]float64{
			"press_release": 0.3,
			"press_section": 0.3,
			"news_article":  0.2,
			"news_section":  0.2,
			"news_search":   0.2,
			"industry_news": 0.2,
			"company_page":  0.1,
		},
		CareersHiringBonus: 0.2,
		MagnitudeWords:     []string{"million", "billion", "series", "round"},
		MagnitudeBonus:     0.1,
		KeywordConfidence:  0.7,
	}
}

// rulesFile is the on-disk shape of an external rules file.
type rulesFile struct {
	Rules   []Rule   `json:"rules"`
	Scoring *Scoring `json:"scoring"`
}

// LoadRules reads signal rules (and an optional scoring override) from a JSON
// file. Missing scoring falls back to DefaultScoring.
func LoadRules(path string) ([]Rule, Scoring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Scoring{}, fmt.Errorf("analyzer: read rules file: %w", err)
	}

	var f rulesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, Scoring{}, fmt.Errorf("analyzer: parse rules file: %w", err)
	}

	if len(f.Rules) == 0 {
		return nil, Scoring{}, fmt.Errorf("analyzer: rules file %s contains no rules", path)
	}

	scoring := DefaultScoring()
	if f.Scoring != nil {
		scoring = *f.Scoring
	}

	return f.Rules, scoring, nil
}
