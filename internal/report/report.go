package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/template"
	"time"

	"github.com/FranksOps/scout/internal/storage"
)

// TopSignal is one high-confidence signal surfaced in the report.
type TopSignal struct {
	Type       string
	Match      string
	Confidence float64
	URL        string
}

// Summary contains aggregated metrics about one research session.
type Summary struct {
	TotalPages    int
	TotalBlocked  int
	BlockedBySrc  map[string]int
	TotalSignals  int
	SignalsByType map[string]int
	ContentBytes  int64
	AvgConfidence float64
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TopSignals    []TopSignal
}

// maxTopSignals bounds the highlighted signals in a report.
const maxTopSignals = 5

// GenerateSummary aggregates a slice of scraped pages into session metrics.
func GenerateSummary(contents []*storage.ScrapedContent) Summary {
	s := Summary{
		BlockedBySrc:  make(map[string]int),
		SignalsByType: make(map[string]int),
	}

	if len(contents) == 0 {
		return s
	}

	s.StartTime = contents[0].ScrapedAt
	s.EndTime = contents[0].ScrapedAt

	var confidenceSum float64
	var all []TopSignal

	for _, c := range contents {
		s.TotalPages++
		if c.Blocked {
			s.TotalBlocked++
			s.BlockedBySrc[c.BlockSrc]++
		}
		s.ContentBytes += int64(len(c.Content))

		for _, sig := range c.Signals {
			s.TotalSignals++
			s.SignalsByType[sig.Type]++
			confidenceSum += sig.Confidence
			all = append(all, TopSignal{
				Type:       sig.Type,
				Match:      sig.Match,
				Confidence: sig.Confidence,
				URL:        c.URL,
			})
		}

		if c.ScrapedAt.Before(s.StartTime) {
			s.StartTime = c.ScrapedAt
		}
		if c.ScrapedAt.After(s.EndTime) {
			s.EndTime = c.ScrapedAt
		}
	}

	if s.TotalSignals > 0 {
		s.AvgConfidence = confidenceSum / float64(s.TotalSignals)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})
	if len(all) > maxTopSignals {
		all = all[:maxTopSignals]
	}
	s.TopSignals = all

	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Scout Research Summary
----------------------
Time:           {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:       {{.Duration}}
Pages Scraped:  {{.TotalPages}}
Content Bytes:  {{.ContentBytes}}
Blocked:        {{.TotalBlocked}}
{{- range $src, $count := .BlockedBySrc}}
  {{$src}}: {{$count}}
{{- end}}

Signals: {{.TotalSignals}} (avg confidence {{printf "%.2f" .AvgConfidence}})
{{- range $type, $count := .SignalsByType}}
  {{$type}}: {{$count}}
{{- else}}
  None
{{- end}}

Top Signals:
{{- range .TopSignals}}
  [{{printf "%.2f" .Confidence}}] {{.Type}}: {{.Match}} ({{.URL}})
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Scout Research Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Scout Research Report</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Pages Scraped</div>
    <div class="stat-val">{{.TotalPages}}</div>
  </div>
  <div class="stat-card">
    <div>Blocked</div>
    <div class="stat-val" style="color: {{if gt .TotalBlocked 0}}red{{else}}green{{end}};">{{.TotalBlocked}}</div>
  </div>
  <div class="stat-card">
    <div>Signals</div>
    <div class="stat-val">{{.TotalSignals}}</div>
  </div>
  <div class="stat-card">
    <div>Avg Confidence</div>
    <div class="stat-val">{{printf "%.2f" .AvgConfidence}}</div>
  </div>

  <h3>Signals By Type</h3>
  <table>
    <tr><th>Type</th><th>Count</th></tr>
    {{- range $type, $count := .SignalsByType}}
    <tr><td>{{$type}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Top Signals</h3>
  <table>
    <tr><th>Confidence</th><th>Type</th><th>Match</th><th>Source</th></tr>
    {{- range .TopSignals}}
    <tr><td>{{printf "%.2f" .Confidence}}</td><td>{{.Type}}</td><td>{{.Match}}</td><td>{{.URL}}</td></tr>
    {{- else}}
    <tr><td colspan="4">None</td></tr>
    {{- end}}
  </table>

  <h3>Blocks By Source</h3>
  <table>
    <tr><th>Source</th><th>Count</th></tr>
    {{- range $src, $count := .BlockedBySrc}}
    <tr><td>{{$src}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}
