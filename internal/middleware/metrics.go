package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records basic HTTP metrics:
//
//   - club_roster_http_request_duration_seconds{method,path,status} histogram
//   - club_roster_http_requests_inflight gauge
//   - club_roster_http_request_errors_total{method,path,status} counter (4xx/5xx)
//
// path is the chi route pattern ("/coaches/{id}"), not the raw URL, so ids do
// not blow up label cardinality.
type Metrics struct {
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. The server
// passes its own registry; tests pass a fresh one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "club_roster",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "club_roster",
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "club_roster",
			Name:      "http_request_errors_total",
			Help:      "HTTP requests answered with a 4xx or 5xx status.",
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(m.reqDuration, m.reqInflight, m.reqErrors)
	return m
}

// Handler is the middleware. Add it with router.Use.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.reqInflight.Inc()
		defer m.reqInflight.Dec()

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		// chi fills the route context while routing, so the pattern is only
		// known after next has run.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := strconv.Itoa(wrapped.statusCode)

		m.reqDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		if wrapped.statusCode >= 400 {
			m.reqErrors.WithLabelValues(r.Method, path, status).Inc()
		}
	})
}
