package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	quotationTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotation_transitions_total",
			Help: "Quotation lifecycle operations by action",
		},
		[]string{"action"}, // create, submit, approve, reject, clone, convert
	)

	costRecomputeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quotation_cost_recompute_total",
			Help: "Full cost recomputations written to quotations",
		},
	)

	costRecomputeConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quotation_cost_recompute_conflicts_total",
			Help: "Cost recomputations rejected by the optimistic revision check",
		},
	)

	projectConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_conversions_total",
			Help: "Quotation to project conversion attempts by result",
		},
		[]string{"result"}, // created, already_converted, rejected
	)
)

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(quotationTransitionsTotal)
	prometheus.MustRegister(costRecomputeTotal)
	prometheus.MustRegister(costRecomputeConflicts)
	prometheus.MustRegister(projectConversionsTotal)
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records one served request. path should be the route pattern, not the raw URL.
func RecordAPIRequest(method, path string, status int, seconds float64) {
	apiRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordTransition(action string) {
	quotationTransitionsTotal.WithLabelValues(action).Inc()
}

func RecordRecompute() {
	costRecomputeTotal.Inc()
}

func RecordRecomputeConflict() {
	costRecomputeConflicts.Inc()
}

func RecordConversion(result string) {
	projectConversionsTotal.WithLabelValues(result).Inc()
}
