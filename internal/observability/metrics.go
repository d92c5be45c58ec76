package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	ratingSubmissionsVec  *prometheus.CounterVec
	moderationSeverity    prometheus.Histogram
	auditPagesVec         *prometheus.CounterVec
	auditReportsVec       *prometheus.CounterVec
	submissionLatencyHist prometheus.Histogram
	requestsTotalVec      *prometheus.CounterVec
	requestLatencyVec     *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		ratingSubmissionsVec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rating_submissions_total",
			Help: "Rating submissions by outcome (accepted, rejected, error).",
		}, []string{"outcome"})

		moderationSeverity = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "moderation_composite_severity",
			Help:    "Violation scores produced by the moderation engine.",
			Buckets: []float64{0.25, 0.5, 1.0, 1.5, 2.0, 3.0, 4.0},
		})

		auditPagesVec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_pages_processed_total",
			Help: "Audit pages processed, by detector.",
		}, []string{"detector"})

		auditReportsVec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_reports_emitted_total",
			Help: "Reports emitted by batch audits, by detector.",
		}, []string{"detector"})

		submissionLatencyHist = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rating_submission_latency_seconds",
			Help:    "End-to-end latency of the submission pipeline.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		})

		requestsTotalVec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"})

		requestLatencyVec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "Latency distribution of HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(ratingSubmissionsVec, moderationSeverity, auditPagesVec, auditReportsVec, submissionLatencyHist, requestsTotalVec, requestLatencyVec)
	})
}

// Requests exposes the HTTP request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotalVec
}

// RequestLatency exposes the HTTP latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencyVec
}

// RatingSubmissions exposes the submission outcome counter.
func RatingSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return ratingSubmissionsVec
}

// ModerationSeverity exposes the composite severity histogram.
func ModerationSeverity() prometheus.Histogram {
	RegisterMetrics()
	return moderationSeverity
}

// AuditPages exposes the processed-pages counter.
func AuditPages() *prometheus.CounterVec {
	RegisterMetrics()
	return auditPagesVec
}

// AuditReports exposes the emitted-reports counter.
func AuditReports() *prometheus.CounterVec {
	RegisterMetrics()
	return auditReportsVec
}

// SubmissionLatency exposes the pipeline latency histogram.
func SubmissionLatency() prometheus.Histogram {
	RegisterMetrics()
	return submissionLatencyHist
}
