package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. Each instance owns its
// registry so several servers can live in one process.
type Metrics struct {
	registry       *prometheus.Registry
	handler        http.Handler
	requestsTotal  *prometheus.CounterVec
	activeRequests prometheus.Gauge
	fillDuration   *prometheus.HistogramVec
	cellsTotal     *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lcscalc_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lcscalc_active_requests",
			Help: "HTTP requests currently being served.",
		}),
		fillDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lcscalc_fill_duration_seconds",
			Help:    "Time spent filling and reconstructing, by strategy.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"strategy"}),
		cellsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lcscalc_cells_total",
			Help: "Table cells computed, by strategy.",
		}, []string{"strategy"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lcscalc_cache_lookups_total",
			Help: "Result cache lookups by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.requestsTotal,
		m.activeRequests,
		m.fillDuration,
		m.cellsTotal,
		m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

// IncrementActiveRequests increments the in-flight gauge.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests decrements the in-flight gauge.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest counts a finished request.
func (m *Metrics) ObserveRequest(method, route string, code int) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// ObserveFill records one strategy run over cells table cells.
func (m *Metrics) ObserveFill(strategy string, cells int64, d time.Duration) {
	m.fillDuration.WithLabelValues(strategy).Observe(d.Seconds())
	m.cellsTotal.WithLabelValues(strategy).Add(float64(cells))
}

// ObserveCache counts a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// WritePrometheus serves the registry in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
