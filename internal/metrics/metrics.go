// Package metrics exposes Prometheus metrics for the session engine and websocket transport.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the engine and transport report to
type Recorder interface {
	ObserveOperation(op string, elapsed time.Duration, err error)
	MutationRejected(op string, reason string)
	SessionCreated()
	ConnectionOpened()
	ConnectionClosed()
	MessageDropped(reason string)
}

// Collector is the Prometheus-backed Recorder
type Collector struct {
	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	rejected         *prometheus.CounterVec
	sessionsCreated  prometheus.Counter
	connections      prometheus.Gauge
	dropped          *prometheus.CounterVec
}

// Ensure Collector implements Recorder
var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardboard_operations_total",
			Help: "Engine operations handled, by operation and outcome",
		}, []string{"op", "outcome"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cardboard_operation_duration_seconds",
			Help:    "Time spent executing engine operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardboard_mutations_rejected_total",
			Help: "Mutations dropped by the authorization policy",
		}, []string{"op", "reason"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardboard_sessions_created_total",
			Help: "Sessions created",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cardboard_connections",
			Help: "Open websocket connections",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardboard_messages_dropped_total",
			Help: "Websocket messages dropped, by reason",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.operations,
		c.operationLatency,
		c.rejected,
		c.sessionsCreated,
		c.connections,
		c.dropped,
	)

	return c
}

// ObserveOperation records one engine operation and how long it took
func (c *Collector) ObserveOperation(op string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.operations.WithLabelValues(op, outcome).Inc()
	c.operationLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// MutationRejected records a mutation dropped by policy
func (c *Collector) MutationRejected(op string, reason string) {
	c.rejected.WithLabelValues(op, reason).Inc()
}

func (c *Collector) SessionCreated() {
	c.sessionsCreated.Inc()
}

func (c *Collector) ConnectionOpened() {
	c.connections.Inc()
}

func (c *Collector) ConnectionClosed() {
	c.connections.Dec()
}

// MessageDropped records an inbound or outbound message that was discarded
func (c *Collector) MessageDropped(reason string) {
	c.dropped.WithLabelValues(reason).Inc()
}

// Handler returns the HTTP handler for Prometheus scraping
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) ObserveOperation(string, time.Duration, error) {}
func (Nop) MutationRejected(string, string)               {}
func (Nop) SessionCreated()                               {}
func (Nop) ConnectionOpened()                             {}
func (Nop) ConnectionClosed()                             {}
func (Nop) MessageDropped(string)                         {}
