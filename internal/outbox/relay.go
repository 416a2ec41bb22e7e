package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"shopflow/internal/events"
)

// Relay polls pending outbox rows and publishes them to the broker.
// A row is only marked sent after the write is acknowledged, so a crash
// between publish and mark re-sends the event; consumers dedupe.
type Relay struct {
	pool     *pgxpool.Pool
	client   *events.Client
	logger   *zap.Logger
	interval time.Duration
	batch    int

	writers map[string]*kafka.Writer
}

func NewRelay(pool *pgxpool.Pool, client *events.Client, logger *zap.Logger, interval time.Duration) *Relay {
	return &Relay{
		pool:     pool,
		client:   client,
		logger:   logger,
		interval: interval,
		batch:    100,
		writers:  make(map[string]*kafka.Writer),
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer r.closeWriters()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drain(ctx); err != nil {
				r.logger.Warn("outbox drain failed", zap.Error(err))
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context) error {
	pending, err := FetchPending(ctx, r.pool, r.batch)
	if err != nil {
		return err
	}
	for _, rec := range pending {
		var env events.Envelope
		if err := json.Unmarshal(rec.Payload, &env); err != nil {
			// A row that cannot decode will never publish; mark it sent
			// so it stops blocking the queue.
			r.logger.Error("outbox record undecodable, skipping",
				zap.Int64("outbox_id", rec.ID), zap.Error(err))
			if err := MarkSent(ctx, r.pool, rec.ID); err != nil {
				return err
			}
			continue
		}
		if err := events.PublishEnvelope(ctx, r.writer(rec.Topic), rec.Key, env); err != nil {
			return err
		}
		if err := MarkSent(ctx, r.pool, rec.ID); err != nil {
			return err
		}
		r.logger.Info("event published",
			zap.String("topic", rec.Topic),
			zap.String("event_id", rec.EventID),
			zap.String("key", rec.Key))
	}
	return nil
}

func (r *Relay) writer(topic string) *kafka.Writer {
	w, ok := r.writers[topic]
	if !ok {
		w = r.client.NewWriter(topic)
		r.writers[topic] = w
	}
	return w
}

func (r *Relay) closeWriters() {
	for _, w := range r.writers {
		_ = w.Close()
	}
}
