package dialog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for dialogue execution.
//
// Metrics exposed (namespaced "dialtree"):
//
//  1. turns_total (counter): completed engine turns.
//     Labels: flow_id, outcome (ok/error).
//
//  2. oracle_latency_ms (histogram): oracle call duration per node type.
//     Labels: node_type, status (success/error).
//
//  3. oracle_fallbacks_total (counter): turns where an oracle failure or
//     undeclared target degraded to a safe default.
//     Labels: reason (error/undeclared/no_progress).
//
//  4. validation_failures_total (counter): user values routed to on_fail.
//     Labels: node_id.
//
//  5. precache_paths_total (counter): candidate reply paths produced by
//     the reachability enumerator for TTS pre-warming.
//     Labels: flow_id.
//
// Expose via HTTP for scraping:
//
//	registry := prometheus.NewRegistry()
//	metrics := dialog.NewMetrics(registry)
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// A nil *Metrics is valid and records nothing, so engine call sites never
// have to nil-check.
type Metrics struct {
	turns              *prometheus.CounterVec
	oracleLatency      *prometheus.HistogramVec
	oracleFallbacks    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	precachePaths      *prometheus.CounterVec
}

// NewMetrics creates and registers all dialogue metrics with the given
// registry. A nil registry uses prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dialtree",
			Name:      "turns_total",
			Help:      "Completed dialogue engine turns",
		}, []string{"flow_id", "outcome"}),

		oracleLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dialtree",
			Name:      "oracle_latency_ms",
			Help:      "Oracle classification duration in milliseconds",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"node_type", "status"}),

		oracleFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dialtree",
			Name:      "oracle_fallbacks_total",
			Help:      "Turns degraded to a safe default after an oracle failure or undeclared target",
		}, []string{"reason"}),

		validationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dialtree",
			Name:      "validation_failures_total",
			Help:      "User-supplied values rejected by a validation node",
		}, []string{"node_id"}),

		precachePaths: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dialtree",
			Name:      "precache_paths_total",
			Help:      "Candidate reply paths enumerated for TTS pre-warming",
		}, []string{"flow_id"}),
	}
}

// RecordTurn counts one completed turn with its outcome ("ok" or "error").
func (m *Metrics) RecordTurn(flowID, outcome string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(flowID, outcome).Inc()
}

// RecordOracleLatency records one oracle call's duration.
func (m *Metrics) RecordOracleLatency(nodeType string, latency time.Duration, status string) {
	if m == nil {
		return
	}
	m.oracleLatency.WithLabelValues(nodeType, status).Observe(float64(latency.Milliseconds()))
}

// RecordOracleFallback counts a degraded oracle outcome.
// Reasons: "error", "undeclared", "no_progress".
func (m *Metrics) RecordOracleFallback(reason string) {
	if m == nil {
		return
	}
	m.oracleFallbacks.WithLabelValues(reason).Inc()
}

// RecordValidationFailure counts a value routed to a node's on_fail branch.
func (m *Metrics) RecordValidationFailure(nodeID string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(nodeID).Inc()
}

// RecordPrecachePaths counts paths produced by one enumerator run.
func (m *Metrics) RecordPrecachePaths(flowID string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.precachePaths.WithLabelValues(flowID).Add(float64(n))
}
