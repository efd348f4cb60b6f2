package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/FranksOps/scout/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_scrape_requests_total",
			Help: "Total number of scrape requests executed",
		},
		[]string{"domain", "status", "blocked", "block_src"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scout_scrape_duration_seconds",
			Help:    "Duration of scrape requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	ContentBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_content_bytes_total",
			Help: "Total bytes of extracted text across all scrapes",
		},
		[]string{"domain"},
	)

	SignalsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_signals_detected_total",
			Help: "Total business signals detected, by signal type",
		},
		[]string{"type"},
	)

	SynthesisTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_synthesis_tokens_total",
			Help: "Total tokens consumed by synthesis calls",
		},
		[]string{"model"},
	)

	SynthesisCostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_synthesis_cost_usd_total",
			Help: "Estimated USD cost of synthesis calls",
		},
		[]string{"model"},
	)

	SynthesisRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_synthesis_retries_total",
			Help: "Retries performed against the completion API",
		},
		[]string{"model"},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_proxy_failures_total",
			Help: "Total number of proxy failures during scrapes",
		},
		[]string{"proxy_url"},
	)
)

// RecordFetch updates the scrape metrics for a single target attempt,
// including attempts that produced no content.
func RecordFetch(domain string, statusCode int, fetchErr string, blocked bool, blockSrc string, duration time.Duration) {
	statusStr := strconv.Itoa(statusCode)
	if fetchErr != "" {
		statusStr = "error"
	}

	blockedStr := "false"
	if blocked {
		blockedStr = "true"
	}

	ScrapeRequestsTotal.WithLabelValues(domain, statusStr, blockedStr, blockSrc).Inc()
	ScrapeDuration.WithLabelValues(domain).Observe(duration.Seconds())
}

// RecordContent updates the metrics for a successfully extracted page.
func RecordContent(domain string, content *storage.ScrapedContent) {
	if content == nil {
		return
	}
	ContentBytesTotal.WithLabelValues(domain).Add(float64(len(content.Content)))
	for _, s := range content.Signals {
		SignalsDetectedTotal.WithLabelValues(s.Type).Inc()
	}
}

// RecordSynthesis updates token and cost accounting for one completion call.
func RecordSynthesis(model string, tokens int, cost float64, retries int) {
	SynthesisTokensTotal.WithLabelValues(model).Add(float64(tokens))
	SynthesisCostTotal.WithLabelValues(model).Add(cost)
	if retries > 0 {
		SynthesisRetriesTotal.WithLabelValues(model).Add(float64(retries))
	}
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
