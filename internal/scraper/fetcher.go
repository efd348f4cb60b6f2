package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/proxy"
	"github.com/FranksOps/scout/pkg/useragent"
	"github.com/google/uuid"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// FetchConfig configures single-URL fetches.
type FetchConfig struct {
	Timeout         time.Duration // total request budget, default 30s
	ConnectTimeout  time.Duration // TCP connect budget, default 10s
	MaxRedirects    int
	MaxConnsPerHost int // default 5
	UseCookieJar    bool
	ProxyPool       *proxy.Pool
	UAPool          *useragent.Pool
	Fingerprint     fingerprint.Profile
}

// Response captures the raw outcome of fetching one target URL. Transport
// failures are recorded in Error rather than returned, so one bad target can
// never abort a batch.
type Response struct {
	ID         string
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	FetchedAt  time.Time
	Error      string
}

// Fetcher performs single URL fetches using the configured transport options.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a new Fetcher with the given configuration.
// A single client is held across requests so connection pooling and cookie
// jars (if configured) persist for the lifetime of the Fetcher.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 5
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	// The proxy function reads from the request context so the pool can
	// rotate proxies per request without mutating the shared transport.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		// Skip env proxies for local targets so system proxies don't break tests
		if req.URL.Host == "example.com" || req.URL.Hostname() == "127.0.0.1" {
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}
	transport.DialContext = (&net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.MaxConnsPerHost = cfg.MaxConnsPerHost

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{
		config: cfg,
		client: client,
	}, nil
}

// Fetch executes a GET request to the target URL, tracking the duration and
// capturing the response. The returned Response is never nil.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) *Response {
	start := time.Now()

	res := &Response{
		ID:        uuid.New().String(),
		URL:       targetURL,
		FetchedAt: start.UTC(),
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		res.Error = fmt.Sprintf("failed to create request: %v", err)
		res.Duration = time.Since(start)
		return res
	}

	// Dynamic proxy via context; the transport's proxy func reads it back out.
	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", f.config.UAPool.GetSequential())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.String()).Inc()
		}
		res.Error = fmt.Sprintf("request failed: %v", err)
		res.Duration = time.Since(start)
		return res
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = fmt.Sprintf("failed to read body: %v", err)
	}

	res.StatusCode = resp.StatusCode
	res.Headers = resp.Header
	res.Body = body
	res.Duration = time.Since(start)

	return res
}
