// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Gateway metrics
	ProposalsSubmitted *prometheus.CounterVec
	Executions         *prometheus.CounterVec
	GuardRejections    *prometheus.CounterVec
	OperationLatency   *prometheus.HistogramVec

	// Supply metrics
	TotalSupply prometheus.Gauge
	MaxSupply   prometheus.Gauge

	// Event metrics
	EventsPublished *prometheus.CounterVec
	EventSinkErrors *prometheus.CounterVec
	StreamClients   prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "coin_guardian"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ProposalsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "proposals_submitted_total",
			Help:      "Total number of proposals submitted by operation",
		}, []string{"operation"}),
		Executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "executions_total",
			Help:      "Total number of proposal executions by operation and outcome",
		}, []string{"operation", "outcome"}),
		GuardRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "rejections_total",
			Help:      "Total number of refused gateway calls by reason",
		}, []string{"reason"}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "operation_latency_seconds",
			Help:      "Gateway operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		TotalSupply: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "supply",
			Name:      "total_base_units",
			Help:      "Current total supply in base units",
		}),
		MaxSupply: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "supply",
			Name:      "max_base_units",
			Help:      "Current supply cap in base units",
		}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of events emitted by kind",
		}, []string{"kind"}),
		EventSinkErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "sink_errors_total",
			Help:      "Total number of event sink failures by sink",
		}, []string{"sink"}),
		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "stream_clients",
			Help:      "Number of connected websocket stream clients",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordProposalSubmitted increments the proposals submitted counter.
func RecordProposalSubmitted(operation string) {
	DefaultMetrics.ProposalsSubmitted.WithLabelValues(operation).Inc()
}

// RecordExecution records a completed execution ("approved" or "rejected").
func RecordExecution(operation, outcome string) {
	DefaultMetrics.Executions.WithLabelValues(operation, outcome).Inc()
}

// RecordRejection records a refused gateway call.
func RecordRejection(reason string) {
	DefaultMetrics.GuardRejections.WithLabelValues(reason).Inc()
}

// RecordOperationLatency records gateway operation latency.
func RecordOperationLatency(operation string, seconds float64) {
	DefaultMetrics.OperationLatency.WithLabelValues(operation).Observe(seconds)
}

// UpdateSupply updates the supply gauges.
func UpdateSupply(total, maxSupply uint64) {
	DefaultMetrics.TotalSupply.Set(float64(total))
	DefaultMetrics.MaxSupply.Set(float64(maxSupply))
}

// RecordEventPublished increments the events counter.
func RecordEventPublished(kind string) {
	DefaultMetrics.EventsPublished.WithLabelValues(kind).Inc()
}

// RecordSinkError records a failed event delivery.
func RecordSinkError(sink string) {
	DefaultMetrics.EventSinkErrors.WithLabelValues(sink).Inc()
}

// SetStreamClients updates the websocket client gauge.
func SetStreamClients(n int) {
	DefaultMetrics.StreamClients.Set(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
