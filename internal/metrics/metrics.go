// Package metrics exposes optional Prometheus instrumentation for tagger
// sessions. All Collector methods are safe on a nil receiver, so callers
// that don't configure a registry pay nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "nersdk"
	subsystem = "session"
)

// Collector holds the per-session metrics.
type Collector struct {
	queueDepth prometheus.Gauge
	inFlight   prometheus.Gauge
	dispatched prometheus.Counter
	completed  prometheus.Counter
	timeouts   prometheus.Counter
	failures   prometheus.Counter
}

// NewCollector creates and registers the session metrics against reg.
// Returns nil if reg is nil.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		return nil
	}

	factory := promauto.With(reg)

	return &Collector{
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Number of requests waiting behind the in-flight request.",
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "in_flight",
			Help:      "Number of requests currently dispatched to the worker (0 or 1).",
		}),
		dispatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_dispatched_total",
			Help:      "Total requests written to the worker.",
		}),
		completed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_completed_total",
			Help:      "Total requests resolved with a result.",
		}),
		timeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_timed_out_total",
			Help:      "Total requests abandoned by timeout or cancellation.",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_failed_total",
			Help:      "Total requests resolved with an error.",
		}),
	}
}

// SetQueueDepth records the current wait-queue length.
func (c *Collector) SetQueueDepth(n int) {
	if c == nil {
		return
	}

	c.queueDepth.Set(float64(n))
}

// SetInFlight records whether a request is currently dispatched.
func (c *Collector) SetInFlight(n int) {
	if c == nil {
		return
	}

	c.inFlight.Set(float64(n))
}

// IncDispatched counts a request written to the worker.
func (c *Collector) IncDispatched() {
	if c == nil {
		return
	}

	c.dispatched.Inc()
}

// IncCompleted counts a request resolved with a result.
func (c *Collector) IncCompleted() {
	if c == nil {
		return
	}

	c.completed.Inc()
}

// IncTimeouts counts a request abandoned by timeout or cancellation.
func (c *Collector) IncTimeouts() {
	if c == nil {
		return
	}

	c.timeouts.Inc()
}

// IncFailures counts a request resolved with an error.
func (c *Collector) IncFailures() {
	if c == nil {
		return
	}

	c.failures.Inc()
}
