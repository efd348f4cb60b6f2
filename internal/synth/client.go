package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/storage"
	"github.com/FranksOps/scout/pkg/httpclient"
)

// APIError is a non-success status from the completion API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion api returned status %d: %s", e.StatusCode, e.Message)
}

// retryable reports whether the request may succeed on another attempt.
// Client errors other than rate limiting never will.
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ExternalServiceError wraps failures of an upstream dependency so callers can
// distinguish them from local errors.
type ExternalServiceError struct {
	Service string
	Message string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Config holds the completion API settings.
type Config struct {
	BaseURL       string        // default https://api.openai.com/v1
	APIKey        string        // required
	ResearchModel string        // default gpt-4
	EmailModel    string        // default gpt-3.5-turbo
	MaxRetries    int           // retries after the first attempt, default 3
	RetryDelay    time.Duration // base backoff delay, doubled per attempt, default 1s
	Timeout       time.Duration // per-request timeout, default 60s
}

// Client calls a chat-completion API to synthesize scraped research into
// briefings, signal analyses and outreach emails. Every call accounts for
// token usage and estimated cost.
type Client struct {
	cfg    Config
	http   *httpclient.Client
	logger *slog.Logger

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// New creates a synthesis client. The API key is the only required setting.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ResearchModel == "" {
		cfg.ResearchModel = "gpt-4"
	}
	if cfg.EmailModel == "" {
		cfg.EmailModel = "gpt-3.5-turbo"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Cannot fail without the cookie jar enabled
	hc, _ := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: 3,
	})

	return &Client{
		cfg:    cfg,
		http:   hc,
		logger: logger,
		sleep:  time.Sleep,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage chatUsage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// complete sends one chat request, retrying rate limits and server errors
// with exponential backoff. It returns the completion text, the reported
// usage, and how many retries were spent.
func (c *Client) complete(ctx context.Context, model, system, user string, temperature float64, maxTokens int) (string, chatUsage, int, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", chatUsage{}, 0, fmt.Errorf("failed to encode request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		text, usage, err := c.doRequest(ctx, body)
		if err == nil {
			return text, usage, attempt, nil
		}

		// Only rate limits and server errors are worth another attempt.
		apiErr, ok := err.(*APIError)
		transient := ok && apiErr.retryable()
		if ctx.Err() != nil {
			transient = false
		}
		if !transient || attempt >= c.cfg.MaxRetries {
			return "", chatUsage{}, attempt, &ExternalServiceError{
				Service: "completion_api",
				Message: fmt.Sprintf("request failed after %d attempts", attempt+1),
				Err:     err,
			}
		}

		wait := c.cfg.RetryDelay * (1 << attempt)
		c.logger.Warn("completion request failed, retrying",
			"model", model,
			"attempt", attempt+1,
			"wait", wait,
			"error", err)
		c.sleep(wait)
	}
}

func (c *Client) doRequest(ctx context.Context, body []byte) (string, chatUsage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", chatUsage{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", chatUsage{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", chatUsage{}, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if jsonErr := json.Unmarshal(data, &parsed); jsonErr != nil && resp.StatusCode == http.StatusOK {
		return "", chatUsage{}, fmt.Errorf("failed to decode response: %w", jsonErr)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return "", chatUsage{}, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(parsed.Choices) == 0 {
		return "", chatUsage{}, &APIError{StatusCode: resp.StatusCode, Message: "response contained no choices"}
	}

	return parsed.Choices[0].Message.Content, parsed.Usage, nil
}

// maxSourcesPerPrompt bounds how much scraped text goes into one prompt.
const maxSourcesPerPrompt = 10

// SynthesizeResearch condenses scraped pages about a company into a
// structured research briefing.
func (c *Client) SynthesizeResearch(ctx context.Context, company string, contents []*storage.ScrapedContent, objectives []string) (*ResearchSummary, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("no content to synthesize for %s", company)
	}

	sources := buildSources(contents)
	text, usage, retries, err := c.complete(ctx,
		c.cfg.ResearchModel,
		researchSystemPrompt,
		researchUserPrompt(company, objectives, sources),
		0.3, 1500)
	if err != nil {
		return nil, err
	}

	summary := parseResearch(text)
	summary.Company = company
	summary.Sources = sources
	summary.Model = c.cfg.ResearchModel
	summary.TokensUsed = usage.TotalTokens
	summary.Cost = EstimateCost(c.cfg.ResearchModel, usage.TotalTokens)

	metrics.RecordSynthesis(summary.Model, summary.TokensUsed, summary.Cost, retries)
	c.logger.Info("research synthesized",
		"company", company,
		"sources", len(sources),
		"tokens", summary.TokensUsed,
		"cost", summary.Cost)

	return summary, nil
}

// AnalyzeSignal interprets one detected signal in the company's context and
// recommends an outreach approach.
func (c *Client) AnalyzeSignal(ctx context.Context, signal storage.Signal, company CompanyContext) (*SignalAnalysis, error) {
	text, usage, retries, err := c.complete(ctx,
		c.cfg.ResearchModel,
		signalSystemPrompt,
		signalUserPrompt(signal, company),
		0.3, 800)
	if err != nil {
		return nil, err
	}

	analysis := parseSignalAnalysis(text)
	analysis.SignalType = signal.Type
	analysis.Model = c.cfg.ResearchModel
	analysis.TokensUsed = usage.TotalTokens
	analysis.Cost = EstimateCost(c.cfg.ResearchModel, usage.TotalTokens)

	metrics.RecordSynthesis(analysis.Model, analysis.TokensUsed, analysis.Cost, retries)
	return analysis, nil
}

// GenerateEmail drafts a personalized outreach email from the consultant's
// profile and the research summary. Uses the cheaper email model.
func (c *Client) GenerateEmail(ctx context.Context, profile ConsultantProfile, prospect Prospect, research *ResearchSummary) (*EmailContent, error) {
	text, usage, retries, err := c.complete(ctx,
		c.cfg.EmailModel,
		emailSystemPrompt,
		emailUserPrompt(profile, prospect, research),
		0.7, 600)
	if err != nil {
		return nil, err
	}

	email := parseEmail(text)
	email.Model = c.cfg.EmailModel
	email.TokensUsed = usage.TotalTokens
	email.Cost = EstimateCost(c.cfg.EmailModel, usage.TotalTokens)

	metrics.RecordSynthesis(email.Model, email.TokensUsed, email.Cost, retries)
	return email, nil
}

// buildSources takes the top pages and trims each to a short excerpt.
func buildSources(contents []*storage.ScrapedContent) []Source {
	n := len(contents)
	if n > maxSourcesPerPrompt {
		n = maxSourcesPerPrompt
	}
	sources := make([]Source, 0, n)
	for _, c := range contents[:n] {
		excerpt := c.Content
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		sources = append(sources, Source{
			URL:     c.URL,
			Type:    c.TargetType,
			Excerpt: excerpt,
		})
	}
	return sources
}
