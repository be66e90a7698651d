package outbox

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a dead-letter pass over one entry.
const (
	dlqOutcomeRequeued    = "requeued"
	dlqOutcomeRetry       = "retry_scheduled"
	dlqOutcomeQuarantined = "quarantined"
)

var (
	dlqEntriesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "dlq",
		Name:      "entries_total",
		Help:      "Dead-lettered feed activities and achievements handled by the DLQ manager, by outcome.",
	}, []string{"aggregate", "event_type", "outcome"})

	dlqBacklogGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "dlq",
		Name:      "backlog_entries",
		Help:      "Unquarantined DLQ entries per aggregate; feed items or achievements not yet visible downstream.",
	}, []string{"aggregate"})

	dlqRetryAttempts = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "dlq",
		Name:      "retry_attempts",
		Help:      "Retry count an entry carried when it was requeued or quarantined.",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
	}, []string{"aggregate"})
)

func init() {
	prometheus.MustRegister(dlqEntriesCounter, dlqBacklogGauge, dlqRetryAttempts)
}

func recordDLQOutcome(entry dlqEntry, outcome string) {
	dlqEntriesCounter.WithLabelValues(entry.AggregateType, entry.EventType, outcome).Inc()
	if outcome != dlqOutcomeRetry {
		dlqRetryAttempts.WithLabelValues(entry.AggregateType).Observe(float64(entry.RetryCount))
	}
}

type aggregateBacklog struct {
	Aggregate string
	Count     int64
}

func updateBacklogGauge(ctx context.Context, pool *pgxpool.Pool) {
	rows, err := pool.Query(ctx,
		`SELECT aggregate_type, COUNT(*) FROM outbox_dlq WHERE quarantined_at IS NULL GROUP BY aggregate_type`)
	if err != nil {
		return
	}
	backlog, err := pgx.CollectRows(rows, pgx.RowToStructByPos[aggregateBacklog])
	if err != nil {
		return
	}
	setBacklog(backlog)
}

// setBacklog replaces the gauge so drained aggregates report zero.
func setBacklog(backlog []aggregateBacklog) {
	dlqBacklogGauge.Reset()
	for _, aggregate := range []string{"activity", "achievement"} {
		dlqBacklogGauge.WithLabelValues(aggregate).Set(0)
	}
	for _, b := range backlog {
		dlqBacklogGauge.WithLabelValues(b.Aggregate).Set(float64(b.Count))
	}
}
