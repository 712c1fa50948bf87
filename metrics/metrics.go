// Package metrics exposes Prometheus metrics for upstream model calls and
// the HTTP surface.
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

const namespace = "nutrisnap"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	recipesGenerated prometheus.Counter
	itemsDetected    prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of generateContent calls",
			},
			[]string{"operation", "model", "status"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "generateContent call duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"operation", "model"},
		),
		recipesGenerated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recipes_generated_total",
				Help:      "Total number of validated recipes returned",
			},
		),
		itemsDetected: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "food_items_detected_total",
				Help:      "Total number of food items detected in photos",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// ObserveUpstream records one model call. status is "ok" or an error class.
func (m *Metrics) ObserveUpstream(operation, model, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(operation, model, status).Inc()
	m.upstreamDuration.WithLabelValues(operation, model).Observe(elapsed.Seconds())
}

// AddRecipes counts validated recipes handed back to a client
func (m *Metrics) AddRecipes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recipesGenerated.Add(float64(n))
}

// AddDetectedItems counts food items found by the vision call
func (m *Metrics) AddDetectedItems(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.itemsDetected.Add(float64(n))
}

// Middleware records request counts and latency per route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
