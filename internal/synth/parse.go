package synth

import (
	"regexp"
	"strconv"
	"strings"
)

// Completion models mostly follow the requested section layout, but heading
// numbering, casing and bullet markers drift. The parsers here accept that
// drift and fall back to conservative defaults rather than failing.

var (
	headingPrefixRe = regexp.MustCompile(`^[#*\d\.\)\s]+`)
	floatRe         = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// sectionHeading normalizes a line into a heading key, or returns "" when the
// line is ordinary prose.
func sectionHeading(line string, known []string) string {
	trimmed := strings.TrimSpace(line)
	trimmed = headingPrefixRe.ReplaceAllString(trimmed, "")
	trimmed = strings.TrimSuffix(trimmed, ":")
	upper := strings.ToUpper(strings.TrimSpace(trimmed))
	for _, h := range known {
		if strings.HasPrefix(upper, h) {
			return h
		}
	}
	return ""
}

// splitSections groups the text's lines under the known headings. Lines
// before the first heading are discarded.
func splitSections(text string, known []string) map[string][]string {
	sections := make(map[string][]string)
	current := ""
	for _, line := range strings.Split(text, "\n") {
		if h := sectionHeading(line, known); h != "" {
			current = h
			continue
		}
		if current == "" {
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			sections[current] = append(sections[current], trimmed)
		}
	}
	return sections
}

// bullets strips list markers from the lines of one section.
func bullets(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = strings.TrimLeft(line, "-*• \t")
		line = headingPrefixRe.ReplaceAllString(line, "")
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// parseConfidence extracts the first number from the section and clamps it to
// [0, 1]. Values quoted as percentages are scaled down.
func parseConfidence(lines []string, fallback float64) float64 {
	for _, line := range lines {
		m := floatRe.FindString(line)
		if m == "" {
			continue
		}
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		if v > 1 && v <= 100 {
			v /= 100
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return v
	}
	return fallback
}

var researchHeadings = []string{
	"EXECUTIVE SUMMARY",
	"KEY FINDINGS",
	"BUSINESS SIGNALS",
	"RECOMMENDED ACTIONS",
	"CONFIDENCE SCORE",
}

func parseResearch(text string) *ResearchSummary {
	sections := splitSections(text, researchHeadings)

	summary := &ResearchSummary{
		ExecutiveSummary:   strings.Join(sections["EXECUTIVE SUMMARY"], " "),
		KeyFindings:        bullets(sections["KEY FINDINGS"]),
		BusinessSignals:    bullets(sections["BUSINESS SIGNALS"]),
		RecommendedActions: bullets(sections["RECOMMENDED ACTIONS"]),
		Confidence:         parseConfidence(sections["CONFIDENCE SCORE"], 0.5),
	}

	// A response with none of the expected sections still carries content
	if summary.ExecutiveSummary == "" && len(sections) == 0 {
		summary.ExecutiveSummary = strings.TrimSpace(text)
	}
	return summary
}

var signalHeadings = []string{
	"URGENCY",
	"OPPORTUNITY",
	"OUTREACH APPROACH",
	"TALKING POINTS",
}

func parseSignalAnalysis(text string) *SignalAnalysis {
	sections := splitSections(text, signalHeadings)

	// First level mentioned wins; later prose in the section must not
	// overwrite it.
	urgency := "medium"
scan:
	for _, line := range sections["URGENCY"] {
		lower := strings.ToLower(line)
		for _, level := range []string{"high", "medium", "low"} {
			if strings.Contains(lower, level) {
				urgency = level
				break scan
			}
		}
	}

	return &SignalAnalysis{
		Urgency:       urgency,
		Opportunity:   strings.Join(sections["OPPORTUNITY"], " "),
		Outreach:      strings.Join(sections["OUTREACH APPROACH"], " "),
		TalkingPoints: bullets(sections["TALKING POINTS"]),
	}
}

func parseEmail(text string) *EmailContent {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	email := &EmailContent{}
	bodyStart := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		if strings.HasPrefix(upper, "SUBJECT:") {
			email.Subject = strings.TrimSpace(trimmed[len("SUBJECT:"):])
			bodyStart = i + 1
			break
		}
	}
	if email.Subject == "" && len(lines) > 0 {
		// No marker; treat the first line as the subject
		email.Subject = strings.TrimSpace(lines[0])
		bodyStart = 1
	}

	email.Body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	return email
}
