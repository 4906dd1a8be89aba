package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Mutations          *prometheus.CounterVec
	AuditEvents        *prometheus.CounterVec
	AuditWriteFailures prometheus.Counter
	Logins             prometheus.Counter
	AuthFailures       prometheus.Counter
	EndpointLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shopkeep_mutations_total",
			Help: "Total number of successful mutations, labeled by entity and action",
		}, []string{"entity", "action"}),
		AuditEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shopkeep_audit_events_total",
			Help: "Total number of audit events recorded, labeled by action",
		}, []string{"action"}),
		AuditWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopkeep_audit_write_failures_total",
			Help: "Total number of audit events lost to storage faults",
		}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopkeep_logins_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopkeep_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopkeep_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// IncrementMutation increments the mutation counter for an entity/action pair.
func (m *Metrics) IncrementMutation(entity, action string) {
	if m != nil {
		m.Mutations.WithLabelValues(entity, action).Inc()
	}
}

// IncrementAuditEvent increments the audit event counter for an action.
func (m *Metrics) IncrementAuditEvent(action string) {
	if m != nil {
		m.AuditEvents.WithLabelValues(action).Inc()
	}
}

// IncrementAuditWriteFailure increments the audit write failure counter.
func (m *Metrics) IncrementAuditWriteFailure() {
	if m != nil {
		m.AuditWriteFailures.Inc()
	}
}

// IncrementLogins increments the successful login counter.
func (m *Metrics) IncrementLogins() {
	if m != nil {
		m.Logins.Inc()
	}
}

// IncrementAuthFailures increments the authentication failure counter.
func (m *Metrics) IncrementAuthFailures() {
	if m != nil {
		m.AuthFailures.Inc()
	}
}
