// Package metrics provides Prometheus instrumentation for connector
// operations: query counts, latency distributions, connection state and
// health probe outcomes.
//
// Metric vectors are registered once at package load and carry a
// "connector" label; each connector instance binds its own Collector to
// that label.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "connector",
		Name:      "queries_total",
		Help:      "Total queries executed, by operation and outcome",
	}, []string{"connector", "operation", "status"})

	queryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "connector",
		Name:      "query_latency_seconds",
		Help:      "Query latency distribution by operation",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"connector", "operation"})

	connectionState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "connector",
		Name:      "connected",
		Help:      "1 when the connector believes it holds a live connection",
	}, []string{"connector"})

	healthChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "connector",
		Name:      "health_checks_total",
		Help:      "Health probes executed, by outcome",
	}, []string{"connector", "status"})
)

// Collector records operation metrics for a single connector instance
type Collector struct {
	connector string
	startTime time.Time
}

// NewCollector creates a collector bound to the given connector name
func NewCollector(connector string) *Collector {
	return &Collector{
		connector: connector,
		startTime: time.Now(),
	}
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// RecordQuery records one executed query with its outcome and duration
func (c *Collector) RecordQuery(operation string, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	queriesTotal.WithLabelValues(c.connector, operation, status).Inc()
	queryLatency.WithLabelValues(c.connector, operation).Observe(elapsed.Seconds())
}

// RecordHealthCheck records one health probe outcome
func (c *Collector) RecordHealthCheck(healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	healthChecks.WithLabelValues(c.connector, status).Inc()
}

// SetConnected updates the connection state gauge
func (c *Collector) SetConnected(connected bool) {
	v := 0.0
	if connected {
		v = 1.0
	}
	connectionState.WithLabelValues(c.connector).Set(v)
}

// Timer measures the duration of a single operation
type Timer struct {
	collector *Collector
	operation string
	start     time.Time
}

// NewTimer starts a timer for the given operation
func (c *Collector) NewTimer(operation string) *Timer {
	return &Timer{
		collector: c,
		operation: operation,
		start:     time.Now(),
	}
}

// Stop records the elapsed time and outcome for the timed operation
func (t *Timer) Stop(err error) time.Duration {
	elapsed := time.Since(t.start)
	t.collector.RecordQuery(t.operation, err, elapsed)
	return elapsed
}
