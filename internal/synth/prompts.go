package synth

import (
	"fmt"
	"strings"

	"github.com/FranksOps/scout/internal/storage"
)

const researchSystemPrompt = `You are a business research analyst. Synthesize the provided sources into a concise briefing.
Structure your response with these exact sections:
1. EXECUTIVE SUMMARY
2. KEY FINDINGS
3. BUSINESS SIGNALS
4. RECOMMENDED ACTIONS
5. CONFIDENCE SCORE (a number between 0.0 and 1.0)
Use bullet points inside sections 2 through 4. Be factual; do not speculate beyond the sources.`

func researchUserPrompt(company string, objectives []string, sources []Source) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company: %s\n", company)
	if len(objectives) > 0 {
		fmt.Fprintf(&sb, "Research objectives: %s\n", strings.Join(objectives, "; "))
	}
	sb.WriteString("\nSources:\n")
	for i, s := range sources {
		fmt.Fprintf(&sb, "%d. [%s] %s\n%s\n\n", i+1, s.Type, s.URL, s.Excerpt)
	}
	return sb.String()
}

const signalSystemPrompt = `You are a business development advisor. Given a detected business signal, assess the consulting opportunity.
Structure your response with these exact sections:
1. URGENCY (one of: low, medium, high)
2. OPPORTUNITY
3. OUTREACH APPROACH
4. TALKING POINTS
Use bullet points for talking points.`

func signalUserPrompt(signal storage.Signal, company CompanyContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Signal type: %s\n", signal.Type)
	fmt.Fprintf(&sb, "Matched text: %s\n", signal.Match)
	if signal.Context != "" {
		fmt.Fprintf(&sb, "Surrounding context: %s\n", signal.Context)
	}
	fmt.Fprintf(&sb, "Confidence: %.2f\n\n", signal.Confidence)
	fmt.Fprintf(&sb, "Company: %s\n", company.Name)
	if company.Industry != "" {
		fmt.Fprintf(&sb, "Industry: %s\n", company.Industry)
	}
	if company.RecentNews != "" {
		fmt.Fprintf(&sb, "Recent news: %s\n", company.RecentNews)
	}
	return sb.String()
}

const emailSystemPrompt = `You are writing a short, personalized business development email on behalf of a consultant.
Keep it under 150 words, reference the prospect's recent activity, and end with a low-pressure call to action.
Format your response as:
SUBJECT: <subject line>
<blank line>
<email body>`

func emailUserPrompt(profile ConsultantProfile, prospect Prospect, research *ResearchSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Consultant: %s\n", profile.Name)
	if len(profile.Expertise) > 0 {
		fmt.Fprintf(&sb, "Expertise: %s\n", strings.Join(profile.Expertise, ", "))
	}
	if len(profile.Services) > 0 {
		fmt.Fprintf(&sb, "Services: %s\n", strings.Join(profile.Services, ", "))
	}
	if profile.ValueProposition != "" {
		fmt.Fprintf(&sb, "Value proposition: %s\n", profile.ValueProposition)
	}
	fmt.Fprintf(&sb, "\nProspect: %s, %s at %s\n", prospect.Name, prospect.Role, prospect.Company)
	if research != nil {
		fmt.Fprintf(&sb, "\nResearch summary:\n%s\n", research.ExecutiveSummary)
		if len(research.BusinessSignals) > 0 {
			fmt.Fprintf(&sb, "Notable signals: %s\n", strings.Join(research.BusinessSignals, "; "))
		}
	}
	return sb.String()
}
