package synth

// Source records which scraped page contributed to a synthesis result.
type Source struct {
	URL     string `json:"url"`
	Type    string `json:"type"`
	Excerpt string `json:"excerpt"`
}

// ResearchSummary is the structured result of synthesizing scraped company
// research into an analyst-style briefing.
type ResearchSummary struct {
	Company            string   `json:"company"`
	ExecutiveSummary   string   `json:"executive_summary"`
	KeyFindings        []string `json:"key_findings"`
	BusinessSignals    []string `json:"business_signals"`
	RecommendedActions []string `json:"recommended_actions"`
	Confidence         float64  `json:"confidence"`
	Sources            []Source `json:"sources"`
	Model              string   `json:"model"`
	TokensUsed         int      `json:"tokens_used"`
	Cost               float64  `json:"cost"`
}

// SignalAnalysis interprets a single detected business signal for outreach.
type SignalAnalysis struct {
	SignalType    string   `json:"signal_type"`
	Urgency       string   `json:"urgency"` // low, medium, high
	Opportunity   string   `json:"opportunity"`
	Outreach      string   `json:"outreach"`
	TalkingPoints []string `json:"talking_points"`
	Model         string   `json:"model"`
	TokensUsed    int      `json:"tokens_used"`
	Cost          float64  `json:"cost"`
}

// EmailContent is a generated outreach email.
type EmailContent struct {
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	Model      string  `json:"model"`
	TokensUsed int     `json:"tokens_used"`
	Cost       float64 `json:"cost"`
}

// ConsultantProfile describes who the outreach is written on behalf of.
type ConsultantProfile struct {
	Name             string   `json:"name"`
	Expertise        []string `json:"expertise"`
	Services         []string `json:"services"`
	ValueProposition string   `json:"value_proposition"`
}

// CompanyContext carries the background passed alongside a signal.
type CompanyContext struct {
	Name       string `json:"name"`
	Industry   string `json:"industry"`
	RecentNews string `json:"recent_news"`
}

// Prospect identifies the recipient of a generated email.
type Prospect struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Company string `json:"company"`
}
