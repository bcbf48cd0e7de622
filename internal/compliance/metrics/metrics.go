package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit record outcomes.
const (
	RecordRemote = "remote"
	RecordQueued = "queued"
)

// Flush results.
const (
	FlushSuccess = "success"
	FlushFailure = "failure"
	FlushPartial = "partial"
	FlushEmpty   = "empty"
)

// Metrics holds Prometheus collectors for the compliance gateway. All methods
// are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	Classifications    *prometheus.CounterVec
	BlockedByRule      *prometheus.CounterVec
	Outcomes           *prometheus.CounterVec
	AuditRecords       *prometheus.CounterVec
	QueueDepth         prometheus.Gauge
	QueueEvictions     prometheus.Counter
	FlushResults       *prometheus.CounterVec
	FlushBatchSize     prometheus.Histogram
	ResponderLatency   prometheus.Histogram
	Escalations        *prometheus.CounterVec
	HistorySubscribers prometheus.Gauge
}

// New registers and returns compliance metrics collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "miniminds_classifications_total",
			Help: "Total number of classified queries, labeled by category",
		}, []string{"category"}),
		BlockedByRule: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "miniminds_blocked_queries_total",
			Help: "Total number of blocked queries, labeled by the rule that matched",
		}, []string{"rule"}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "miniminds_gateway_outcomes_total",
			Help: "Total number of gateway requests, labeled by terminal state",
		}, []string{"state"}),
		AuditRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "miniminds_audit_records_total",
			Help: "Total number of audit records, labeled by where they were persisted",
		}, []string{"outcome"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "miniminds_audit_queue_depth",
			Help: "Current number of audit entries awaiting remote confirmation",
		}),
		QueueEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "miniminds_audit_queue_evictions_total",
			Help: "Total number of queued audit entries dropped because the queue was full",
		}),
		FlushResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "miniminds_audit_flush_total",
			Help: "Total number of audit queue flush attempts, labeled by result",
		}, []string{"result"}),
		FlushBatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "miniminds_audit_flush_batch_size",
			Help:    "Number of entries sent per flush attempt",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		ResponderLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "miniminds_responder_latency_seconds",
			Help:    "Latency of AI responder calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "miniminds_escalations_total",
			Help: "Total number of escalation submissions, labeled by outcome",
		}, []string{"outcome"}),
		HistorySubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "miniminds_history_subscribers",
			Help: "Current number of live conversation history subscriptions",
		}),
	}
}

func (m *Metrics) IncrementClassification(category string) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(category).Inc()
}

func (m *Metrics) IncrementBlocked(rule string) {
	if m == nil {
		return
	}
	m.BlockedByRule.WithLabelValues(rule).Inc()
}

func (m *Metrics) IncrementOutcome(state string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(state).Inc()
}

func (m *Metrics) IncrementAuditRecord(outcome string) {
	if m == nil {
		return
	}
	m.AuditRecords.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

func (m *Metrics) IncrementQueueEvictions() {
	if m == nil {
		return
	}
	m.QueueEvictions.Inc()
}

// ObserveFlush records the result and size of one flush attempt.
func (m *Metrics) ObserveFlush(result string, batchSize int) {
	if m == nil {
		return
	}
	m.FlushResults.WithLabelValues(result).Inc()
	if batchSize > 0 {
		m.FlushBatchSize.Observe(float64(batchSize))
	}
}

func (m *Metrics) ObserveResponderLatency(durationSeconds float64) {
	if m == nil {
		return
	}
	m.ResponderLatency.Observe(durationSeconds)
}

func (m *Metrics) IncrementEscalation(outcome string) {
	if m == nil {
		return
	}
	m.Escalations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddHistorySubscribers(delta int) {
	if m == nil {
		return
	}
	m.HistorySubscribers.Add(float64(delta))
}
