// Package outbox implements the transactional outbox: integration events
// are inserted in the same database transaction that persists the aggregate
// change, and a relay publishes them to the broker afterwards. Publishing
// therefore always happens after the local commit, never before.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopflow/internal/events"
)

type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

// FromEnvelope prepares an envelope for insertion, keyed by the aggregate id.
func FromEnvelope(key string, env events.Envelope) (Record, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return Record{}, fmt.Errorf("marshal envelope %s: %w", env.Type, err)
	}
	return Record{EventID: env.EventID, Topic: env.Type, Key: key, Payload: data}, nil
}

// Insert stores records inside the caller's transaction.
func Insert(ctx context.Context, tx pgx.Tx, records ...Record) error {
	for _, rec := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO outbox(event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
			rec.EventID, rec.Topic, rec.Key, rec.Payload)
		if err != nil {
			return fmt.Errorf("insert outbox %s: %w", rec.Topic, err)
		}
	}
	return nil
}

// FetchPending returns unsent records in insertion order.
func FetchPending(ctx context.Context, pool *pgxpool.Pool, limit int) ([]Record, error) {
	rows, err := pool.Query(ctx,
		`SELECT id, event_id, topic, key, payload, created_at, sent_at
		 FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkSent stamps a record after a successful publish.
func MarkSent(ctx context.Context, pool *pgxpool.Pool, id int64) error {
	_, err := pool.Exec(ctx, `UPDATE outbox SET sent_at = now() WHERE id = $1`, id)
	return err
}
