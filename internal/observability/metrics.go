package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	apiRequestsTotal        *prometheus.CounterVec
	apiLatencySeconds       *prometheus.HistogramVec
	apiErrorsTotal          *prometheus.CounterVec
	auditEntriesTotal       *prometheus.CounterVec
	auditWriteFailuresTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flota_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flota_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flota_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		auditEntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flota_audit_entries_total",
			Help: "Total number of audit entries written.",
		}, []string{"action", "entity"})

		auditWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flota_audit_write_failures_total",
			Help: "Total number of audit entries that could not be written.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			auditEntriesTotal,
			auditWriteFailuresTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AuditEntries exposes the counter for written audit entries.
func AuditEntries() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEntriesTotal
}

// AuditWriteFailures exposes the counter for failed audit writes.
func AuditWriteFailures() prometheus.Counter {
	RegisterMetrics()
	return auditWriteFailuresTotal
}
