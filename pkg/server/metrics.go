package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one server. Each server owns its registry
// so that several can run in one process, as in tests.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	formats  *prometheus.CounterVec
	fetches  *prometheus.CounterVec
	panics   prometheus.Counter
}

// NewMetrics creates and registers the server collectors
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_formatter_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)
	m.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_formatter_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	m.formats = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_formatter_formats_total",
			Help: "Formatted inputs by output format and path (annotate or convert)",
		},
		[]string{"format", "path"},
	)
	m.fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_formatter_fetches_total",
			Help: "Remote fetches by result code",
		},
		[]string{"result"},
	)
	m.panics = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_formatter_handler_panics_total",
		Help: "Handler panics recovered",
	})

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.formats,
		m.fetches,
		m.panics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry of the server
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeRequest(route, method string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) observeFormat(format, path string) {
	m.formats.WithLabelValues(format, path).Inc()
}

func (m *Metrics) observeFetch(result string) {
	m.fetches.WithLabelValues(result).Inc()
}
