package consumer

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PersistenceHandler appends consumed events to the event_log audit table.
// Redelivered records are ignored by their (topic, partition, offset).
type PersistenceHandler struct {
	pool *pgxpool.Pool
}

// NewPersistenceHandler constructs a handler backed by pool.
func NewPersistenceHandler(pool *pgxpool.Pool) *PersistenceHandler {
	return &PersistenceHandler{pool: pool}
}

// Handle stores msg.
func (h *PersistenceHandler) Handle(ctx context.Context, msg Message) error {
	_, err := h.pool.Exec(ctx,
		`INSERT INTO event_log (event_type, schema_id, schema_subject, topic, partition, record_offset, user_id, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
         ON CONFLICT (topic, partition, record_offset) DO NOTHING`,
		msg.EventType,
		msg.SchemaID,
		msg.SchemaSubject,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		userID(msg.Payload),
		msg.Payload,
		msg.Timestamp,
	)
	return err
}

// userID extracts the owning user of an event payload, nil when absent.
func userID(payload json.RawMessage) *int64 {
	var body struct {
		UserID *int64 `json:"user_id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}
	return body.UserID
}
