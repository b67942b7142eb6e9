// Package metrics exposes Prometheus collectors for layout runs and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "patchwall"

// Default buckets.
var (
	DefaultLayoutDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultFillRatioBuckets      = []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1}
)

// Metrics holds all application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	LayoutRunsTotal     *prometheus.CounterVec
	LayoutDuration      *prometheus.HistogramVec
	LayoutFillRatio     *prometheus.HistogramVec
	LayoutPlacedPanels  *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.LayoutRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "layout_runs_total", Help: "Layout runs by strategy and outcome.",
	}, []string{"strategy", "outcome"})
	m.LayoutDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "layout_duration_seconds", Help: "Time spent packing and partitioning gaps.",
		Buckets: DefaultLayoutDurationBuckets,
	}, []string{"strategy"})
	m.LayoutFillRatio = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "layout_fill_ratio", Help: "Share of the wall covered by placed panels.",
		Buckets: DefaultFillRatioBuckets,
	}, []string{"strategy"})
	m.LayoutPlacedPanels = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "layout_placed_panels", Help: "Panels placed per layout run.",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	}, []string{"strategy"})
	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests.",
	}, []string{"method", "path", "status_code"})
	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request duration.",
		Buckets: DefaultHTTPDurationBuckets,
	}, []string{"method", "path"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LayoutRunsTotal,
		m.LayoutDuration,
		m.LayoutFillRatio,
		m.LayoutPlacedPanels,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLayout records one layout run. Failed runs only count towards
// layout_runs_total.
func (m *Metrics) ObserveLayout(strategy string, d time.Duration, fillRatio float64, placed int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.LayoutRunsTotal.WithLabelValues(strategy, "error").Inc()
		return
	}
	m.LayoutRunsTotal.WithLabelValues(strategy, "ok").Inc()
	m.LayoutDuration.WithLabelValues(strategy).Observe(d.Seconds())
	m.LayoutFillRatio.WithLabelValues(strategy).Observe(fillRatio)
	m.LayoutPlacedPanels.WithLabelValues(strategy).Observe(float64(placed))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
