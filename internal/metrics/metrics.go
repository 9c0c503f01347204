// Package metrics exposes Prometheus collectors for HTTP traffic, model
// requests and worksheet generation chunks.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/mathdaily/internal/llm"
)

const namespace = "mathdaily"

// Metrics owns a registry and the collectors registered on it. It
// implements llm.Observer and problemgen.ChunkObserver.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	LLMRequests *prometheus.CounterVec
	LLMLatency  *prometheus.HistogramVec
	LLMTokens   *prometheus.CounterVec

	Chunks         *prometheus.CounterVec
	ProblemsMissed prometheus.Counter
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "endpoint"},
		),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Model requests by purpose, model and result",
			},
			[]string{"purpose", "model", "result"},
		),
		LLMLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "Latency of model requests",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"purpose"},
		),
		LLMTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_tokens_total",
				Help:      "Tokens consumed by direction",
			},
			[]string{"purpose", "direction"},
		),
		Chunks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_chunks_total",
				Help:      "Worksheet generation chunks by outcome",
			},
			[]string{"outcome"},
		),
		ProblemsMissed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_problems_missing_total",
				Help:      "Planned problems that were not produced",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.LLMRequests,
		m.LLMLatency,
		m.LLMTokens,
		m.Chunks,
		m.ProblemsMissed,
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLLMRequest records one model request.
func (m *Metrics) ObserveLLMRequest(purpose, model string, elapsed time.Duration, usage llm.Usage, errKind string) {
	if purpose == "" {
		purpose = "unknown"
	}
	m.LLMRequests.WithLabelValues(purpose, model, errKind).Inc()
	m.LLMLatency.WithLabelValues(purpose).Observe(elapsed.Seconds())
	if usage.InputTokens > 0 {
		m.LLMTokens.WithLabelValues(purpose, "input").Add(float64(usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		m.LLMTokens.WithLabelValues(purpose, "output").Add(float64(usage.OutputTokens))
	}
}

// ObserveChunk records one finished generation chunk.
func (m *Metrics) ObserveChunk(outcome string, requested, produced int) {
	m.Chunks.WithLabelValues(outcome).Inc()
	if missing := requested - produced; missing > 0 {
		m.ProblemsMissed.Add(float64(missing))
	}
}

// Middleware counts and times every request by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinHandler adapts Handler for a gin route.
func (m *Metrics) GinHandler() gin.HandlerFunc {
	h := m.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
