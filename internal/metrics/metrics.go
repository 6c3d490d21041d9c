// Package metrics exposes Prometheus instrumentation for the verification flows and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flow outcome labels.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidImage   = "invalid_image"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeNoFace         = "no_face"
	OutcomeNotFound       = "not_found"
	OutcomeDuplicateEmail = "duplicate_email"
	OutcomeError          = "error"
)

// Recorder is the instrumentation surface used by the flows and the web layer.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	flowTotal     *prometheus.CounterVec
	oracleSeconds prometheus.Histogram
	httpTotal     *prometheus.CounterVec
	candidates    prometheus.Gauge
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		flowTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "face_verifier_flow_total",
			Help: "Registration, verification and comparison outcomes",
		}, []string{"flow", "outcome"}),
		oracleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "face_verifier_oracle_seconds",
			Help:    "Embedding oracle call duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "face_verifier_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		}, []string{"method", "route", "status"}),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "face_verifier_candidates_scanned",
			Help: "Number of candidates scanned by the last verification",
		}),
	}
	r.registry.MustRegister(r.flowTotal, r.oracleSeconds, r.httpTotal, r.candidates)
	return r
}

// IncFlow counts one flow outcome.
func (r *Recorder) IncFlow(flow, outcome string) {
	if r == nil {
		return
	}
	r.flowTotal.WithLabelValues(flow, outcome).Inc()
}

// TimeOracle starts a timer; call the returned func when the oracle call returns.
func (r *Recorder) TimeOracle() func() {
	start := time.Now()
	return func() {
		if r == nil {
			return
		}
		r.oracleSeconds.Observe(time.Since(start).Seconds())
	}
}

// SetScanned records how many candidates the last verification compared against.
func (r *Recorder) SetScanned(n int) {
	if r == nil {
		return
	}
	r.candidates.Set(float64(n))
}

// IncHTTP counts a finished HTTP request.
func (r *Recorder) IncHTTP(method, route string, status int) {
	if r == nil {
		return
	}
	r.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry(), promhttp.HandlerOpts{})
}

// Registry returns the underlying registry. A nil Recorder yields an empty one.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}
