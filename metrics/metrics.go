// Package metrics holds the Prometheus collectors for the audit service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Audit outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeCacheHit = "cache_hit"
	OutcomeError    = "error"
)

// Metrics holds all collectors, registered on a private registry so several
// instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuditsTotal        *prometheus.CounterVec
	AuditDuration      prometheus.Histogram
	OracleDuration     *prometheus.HistogramVec
	OracleTokens       *prometheus.CounterVec
	ContractViolations prometheus.Counter
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	WebhookDeliveries  *prometheus.CounterVec
}

// New creates a Metrics instance. An empty namespace defaults to "aeoaudit".
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "aeoaudit"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),

		AuditsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audits_total",
				Help:      "Total number of audits by outcome",
			},
			[]string{"outcome", "code"},
		),
		AuditDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "audit_duration_seconds",
				Help:      "End-to-end audit duration in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40, 80},
			},
		),
		OracleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "oracle_request_duration_seconds",
				Help:      "Scoring oracle call duration in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"status"},
		),
		OracleTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oracle_tokens_total",
				Help:      "Tokens consumed by the scoring oracle",
			},
			[]string{"model", "type"},
		),
		ContractViolations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oracle_contract_violations_total",
				Help:      "Oracle payload values rejected during validation",
			},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_hits_total",
				Help:      "Report cache hits",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_misses_total",
				Help:      "Report cache misses",
			},
		),
		WebhookDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_deliveries_total",
				Help:      "Webhook deliveries by final status",
			},
			[]string{"status"},
		),
	}
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordAudit counts a finished audit. code is empty on success.
func (m *Metrics) RecordAudit(outcome, code string, duration time.Duration) {
	m.AuditsTotal.WithLabelValues(outcome, code).Inc()
	if outcome != OutcomeCacheHit {
		m.AuditDuration.Observe(duration.Seconds())
	}
}

// RecordOracle observes one oracle call.
func (m *Metrics) RecordOracle(status string, duration time.Duration) {
	m.OracleDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordTokens counts prompt and completion tokens for model.
func (m *Metrics) RecordTokens(model string, prompt, completion int) {
	m.OracleTokens.WithLabelValues(model, "prompt").Add(float64(prompt))
	m.OracleTokens.WithLabelValues(model, "completion").Add(float64(completion))
}

// RecordViolations adds n contract violations.
func (m *Metrics) RecordViolations(n int) {
	if n > 0 {
		m.ContractViolations.Add(float64(n))
	}
}

// RecordCache counts a cache lookup.
func (m *Metrics) RecordCache(hit bool) {
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}

// RecordWebhook counts a webhook delivery result.
func (m *Metrics) RecordWebhook(delivered bool) {
	status := "delivered"
	if !delivered {
		status = "failed"
	}
	m.WebhookDeliveries.WithLabelValues(status).Inc()
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
