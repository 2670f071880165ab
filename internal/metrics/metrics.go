// Package metrics exposes Prometheus instrumentation for the stream
// lifecycle and the HTTP surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry           *prometheus.Registry
	requestsTotal      prometheus.Counter
	errorsTotal        prometheus.Counter
	keysGeneratedTotal prometheus.Counter
	transitionsTotal   *prometheus.CounterVec
	liveLessons        prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lessoncast_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lessoncast_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	keysGeneratedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lessoncast_stream_keys_generated_total",
		Help: "Total number of stream keys generated",
	})
	transitionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lessoncast_stream_transitions_total",
		Help: "Total number of stream status transitions, by target status",
	}, []string{"to"})
	liveLessons := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lessoncast_live_lessons",
		Help: "Number of lessons currently reporting live status",
	})

	registry.MustRegister(requestsTotal, errorsTotal, keysGeneratedTotal, transitionsTotal, liveLessons)

	return &Metrics{
		registry:           registry,
		requestsTotal:      requestsTotal,
		errorsTotal:        errorsTotal,
		keysGeneratedTotal: keysGeneratedTotal,
		transitionsTotal:   transitionsTotal,
		liveLessons:        liveLessons,
	}
}

func (m *Metrics) IncKeysGenerated() {
	m.keysGeneratedTotal.Inc()
}

func (m *Metrics) IncTransition(to string) {
	m.transitionsTotal.WithLabelValues(to).Inc()
}

func (m *Metrics) SetLiveLessons(n int) {
	m.liveLessons.Set(float64(n))
}

// Handler serves the metrics endpoint. updateGauges, if non-nil, runs
// before each scrape so gauge values reflect current state.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware counts requests and error responses.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsTotal.Inc()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status >= 400 {
			m.errorsTotal.Inc()
		}
	})
}
