package consumer

import (
	"encoding/json"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/events"
)

var (
	consumedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "events_consumed_total",
		Help:      "Fitness events written to the event log, by event type and activity kind.",
	}, []string{"event_type", "kind"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Fitness events the event log rejected and left uncommitted for redelivery.",
	}, []string{"event_type"})

	rejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "records_rejected_total",
		Help:      "Records skipped because they were not outbox-framed fitness events, by reason.",
	}, []string{"topic", "reason"})

	lastEventGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "last_event_timestamp_seconds",
		Help:      "Unix timestamp of the most recent consumed event per event type.",
	}, []string{"event_type"})
)

func init() {
	prometheus.MustRegister(consumedCounter, handlerErrorCounter, rejectedCounter, lastEventGauge)
}

// Reasons a record is rejected before it reaches the handler.
const (
	reasonTruncated        = "truncated"
	reasonMagicByte        = "magic_byte"
	reasonMissingEventType = "missing_event_type"
	reasonInvalidJSON      = "invalid_json"
)

type decodeError struct {
	reason string
	err    error
}

func (e *decodeError) Error() string { return e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

func rejectReason(err error) string {
	var de *decodeError
	if errors.As(err, &de) {
		return de.reason
	}
	return "unknown"
}

// eventKind labels an event by what the user did: the activity type for feed
// activities and "achievement" for earned achievements.
func eventKind(msg Message) string {
	switch msg.EventType {
	case events.TypeAchievementEarned:
		return "achievement"
	case events.TypeActivityRecorded:
		var body struct {
			Type domain.ActivityType `json:"type"`
		}
		if err := json.Unmarshal(msg.Payload, &body); err == nil && body.Type.Valid() {
			return string(body.Type)
		}
	}
	return "other"
}

func recordConsumed(msg Message) {
	consumedCounter.WithLabelValues(msg.EventType, eventKind(msg)).Inc()
	if !msg.Timestamp.IsZero() {
		lastEventGauge.WithLabelValues(msg.EventType).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.EventType).Inc()
}

func recordRejected(topic string, err error) {
	rejectedCounter.WithLabelValues(topic, rejectReason(err)).Inc()
}
