package graph

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics provides Prometheus-compatible metrics for graph
// execution monitoring.
//
// Metrics exposed (all namespaced with "footagents_graph_"):
//
// 1. step_latency_ms (histogram): Node execution duration in milliseconds.
// Labels: graph_id, node_id, status (success/error).
//
// 2. node_errors_total (counter): Node failures that aborted a run.
// Labels: graph_id, node_id.
//
// 3. routing_decisions_total (counter): Transitions taken after a node.
// Labels: graph_id, from, to.
//
// 4. runs_total (counter): Completed runs by outcome.
// Labels: graph_id, outcome (success/error).
//
// 5. inflight_runs (gauge): Runs currently executing.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewPrometheusMetrics(registry)
//	engine := graph.New(reduce, nil, emitter, graph.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// Thread-safe: all methods may be called from concurrent runs.
type PrometheusMetrics struct {
	stepLatency *prometheus.HistogramVec
	nodeErrors  *prometheus.CounterVec
	routes      *prometheus.CounterVec
	runs        *prometheus.CounterVec
	inflight    prometheus.Gauge

	registry prometheus.Registerer

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers all graph execution metrics
// with the provided Prometheus registry. A nil registry selects
// prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{
		registry: registry,
		enabled:  true,
	}

	pm.stepLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "footagents",
		Subsystem: "graph",
		Name:      "step_latency_ms",
		Help:      "Node execution duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000},
	}, []string{"graph_id", "node_id", "status"})

	pm.nodeErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footagents",
		Subsystem: "graph",
		Name:      "node_errors_total",
		Help:      "Node failures that aborted a run",
	}, []string{"graph_id", "node_id"})

	pm.routes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footagents",
		Subsystem: "graph",
		Name:      "routing_decisions_total",
		Help:      "Transitions taken between nodes",
	}, []string{"graph_id", "from", "to"})

	pm.runs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footagents",
		Subsystem: "graph",
		Name:      "runs_total",
		Help:      "Completed workflow runs by outcome",
	}, []string{"graph_id", "outcome"})

	pm.inflight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "footagents",
		Subsystem: "graph",
		Name:      "inflight_runs",
		Help:      "Workflow runs currently executing",
	})

	return pm
}

func (pm *PrometheusMetrics) isEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// RecordStepLatency records the execution duration of a node.
func (pm *PrometheusMetrics) RecordStepLatency(graphID, nodeID string, latency time.Duration, status string) {
	if !pm.isEnabled() {
		return
	}
	pm.stepLatency.WithLabelValues(graphID, nodeID, status).Observe(float64(latency.Milliseconds()))
}

// IncrementNodeErrors counts a node failure.
func (pm *PrometheusMetrics) IncrementNodeErrors(graphID, nodeID string) {
	if !pm.isEnabled() {
		return
	}
	pm.nodeErrors.WithLabelValues(graphID, nodeID).Inc()
}

// RecordRoute counts a transition from one node to the next (or END).
func (pm *PrometheusMetrics) RecordRoute(graphID, from, to string) {
	if !pm.isEnabled() {
		return
	}
	pm.routes.WithLabelValues(graphID, from, to).Inc()
}

// RecordRun counts a finished run.
func (pm *PrometheusMetrics) RecordRun(graphID, outcome string) {
	if !pm.isEnabled() {
		return
	}
	pm.runs.WithLabelValues(graphID, outcome).Inc()
}

// trackRun increments the inflight gauge and returns the matching decrement.
func (pm *PrometheusMetrics) trackRun() func() {
	if !pm.isEnabled() {
		return func() {}
	}
	pm.inflight.Inc()
	return pm.inflight.Dec
}

// Disable temporarily disables metric recording (useful for testing).
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable().
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}
