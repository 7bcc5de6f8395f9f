// Package report keeps boring counters for bounded calls. Every counter is
// a projection of one finished call; no interpretation happens here. The
// same numbers back the /stats snapshot and the Prometheus exposition.
package report

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds call lifecycle counters.
type Metrics struct {
	CallsStarted   atomic.Uint64 // incremented when a worker is spawned
	CallsCompleted atomic.Uint64 // worker returned a value in time
	CallsFailed    atomic.Uint64 // worker crashed or the operation errored
	CallsTimedOut  atomic.Uint64 // deadline hit, worker killed

	// BusyNanos accumulates wall time of completed calls only; timed-out
	// and failed calls have no meaningful duration.
	BusyNanos atomic.Uint64
}

var (
	globalMetrics = &Metrics{}

	promCallsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timedop_calls_started_total",
		Help: "Total bounded calls that spawned a worker",
	})
	promCallsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timedop_calls_completed_total",
		Help: "Total bounded calls that returned a value within the deadline",
	})
	promCallsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timedop_calls_failed_total",
		Help: "Total bounded calls whose worker crashed or returned an error",
	})
	promCallsTimedOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timedop_calls_timed_out_total",
		Help: "Total bounded calls killed at the deadline",
	})
	promCallDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timedop_call_duration_seconds",
		Help:    "Wall time of completed bounded calls",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
)

func init() {
	prometheus.MustRegister(promCallsStarted)
	prometheus.MustRegister(promCallsCompleted)
	prometheus.MustRegister(promCallsFailed)
	prometheus.MustRegister(promCallsTimedOut)
	prometheus.MustRegister(promCallDuration)
}

// Global returns the process-wide metrics instance.
func Global() *Metrics {
	return globalMetrics
}

// CallStarted records a spawned worker.
func (m *Metrics) CallStarted() {
	m.CallsStarted.Add(1)
	promCallsStarted.Inc()
}

// CallCompleted records a call that returned a value, with its wall time.
func (m *Metrics) CallCompleted(d time.Duration) {
	m.CallsCompleted.Add(1)
	m.BusyNanos.Add(uint64(d))
	promCallsCompleted.Inc()
	promCallDuration.Observe(d.Seconds())
}

// CallFailed records a worker crash or operation error.
func (m *Metrics) CallFailed() {
	m.CallsFailed.Add(1)
	promCallsFailed.Inc()
}

// CallTimedOut records a call killed at its deadline.
func (m *Metrics) CallTimedOut() {
	m.CallsTimedOut.Add(1)
	promCallsTimedOut.Inc()
}
