// Package metrics exposes Prometheus collectors for the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "drivenpass"

// HTTPMetrics holds request counters, latencies and the in-flight gauge.
type HTTPMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	InFlightGauge   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewHTTPMetrics creates the collectors and registers them on reg. reg must
// also be a Gatherer for Handler to serve its contents.
func NewHTTPMetrics(reg interface {
	prometheus.Registerer
	prometheus.Gatherer
}) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being processed.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.InFlightGauge)
	return m
}

// Middleware records every request except /metrics and /health. The route
// label is the chi pattern, so ids in the path do not blow up cardinality.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		m.InFlightGauge.Inc()
		defer m.InFlightGauge.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := RoutePattern(r)
		status := strconv.Itoa(statusOf(ww))
		m.RequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.RequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RoutePattern returns the matched chi route, or "unmatched" when the
// request did not hit any route.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
