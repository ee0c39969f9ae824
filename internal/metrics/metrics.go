// Package metrics exposes Prometheus collectors for goal evaluation, the
// derailment sweeper and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pledgeline"

var (
	// safetyEvaluations counts safety status computations.
	// Labels: level (overdue, critical, urgent, soon, safe, buffer)
	safetyEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "safety",
		Name:      "evaluations_total",
		Help:      "Safety status evaluations by resulting level",
	}, []string{"level"})

	// settlements counts goals settled by the sweeper.
	// Labels: outcome (derailed, completed)
	settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sweep",
		Name:      "settlements_total",
		Help:      "Goals settled by the derailment sweeper",
	}, []string{"outcome"})

	sweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sweep",
		Name:      "errors_total",
		Help:      "Goals the sweeper failed to evaluate",
	})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sweep",
		Name:      "duration_seconds",
		Help:      "Time taken by one derailment sweep",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// httpRequests counts API requests.
	// Labels: method, route (the mux pattern), status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

const (
	OutcomeDerailed  = "derailed"
	OutcomeCompleted = "completed"
)

func RecordSafety(level string) {
	safetyEvaluations.WithLabelValues(level).Inc()
}

func RecordSettlement(outcome string) {
	settlements.WithLabelValues(outcome).Inc()
}

func RecordSweepError() {
	sweepErrors.Inc()
}

func ObserveSweep(d time.Duration) {
	sweepDuration.Observe(d.Seconds())
}

func ObserveRequest(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
