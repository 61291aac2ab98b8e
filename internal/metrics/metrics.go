// Package metrics exposes Prometheus collectors for the HTTP layer, the
// search flow and the upstream generation calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes
const (
	OutcomeSuccess          = "success"
	OutcomeInvalid          = "invalid"
	OutcomeQuotaExceeded    = "quota_exceeded"
	OutcomeStoreFailed      = "store_failed"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeParseFailed      = "parse_failed"
)

// Metrics handles Prometheus metrics collection. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	searchesTotal       *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
	imageCache          *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headcook_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "headcook_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		searchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headcook_searches_total",
				Help: "Recipe searches by outcome",
			},
			[]string{"outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "headcook_upstream_request_duration_seconds",
				Help:    "Duration of calls to the text and image generation APIs",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"upstream", "outcome"},
		),
		imageCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headcook_image_cache_lookups_total",
				Help: "Image URL cache lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.searchesTotal,
		m.upstreamDuration,
		m.imageCache,
	)
	return m
}

// RecordSearch counts a finished search.
func (m *Metrics) RecordSearch(outcome string) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the duration of one upstream call.
func (m *Metrics) ObserveUpstream(upstream string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstreamDuration.WithLabelValues(upstream, outcome).Observe(time.Since(start).Seconds())
}

// RecordImageCache counts an image cache hit or miss.
func (m *Metrics) RecordImageCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.imageCache.WithLabelValues(result).Inc()
}

// Middleware records request counts and latencies per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
