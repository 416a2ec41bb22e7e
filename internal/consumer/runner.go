package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"shopflow/internal/events"
	"shopflow/internal/idempotency"
	"shopflow/internal/observability"
)

// Handler reacts to one decoded envelope. Returning an error leaves the
// offset uncommitted so the broker redelivers the message.
type Handler func(ctx context.Context, env events.Envelope) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type dedupStore interface {
	Seen(ctx context.Context, group, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, group, eventID string) (bool, error)
}

// Runner drives one consumer group over one topic. The dedup marker is
// written only after the handler succeeds: a crash mid-handler leaves no
// marker, so the redelivered message is handled again. The rare duplicate
// that slips past the pre-check is absorbed by the aggregate guards.
type Runner struct {
	newReader func() messageReader
	topic     string
	group     string
	handler   Handler
	dedup     dedupStore
	metrics   *observability.ConsumerMetrics
	logger    *zap.Logger
}

func NewRunner(client *events.Client, topic, group string, handler Handler, dedup *idempotency.Store, metrics *observability.ConsumerMetrics, logger *zap.Logger) *Runner {
	return &Runner{
		newReader: func() messageReader { return client.NewReader(topic, group) },
		topic:     topic,
		group:     group,
		handler:   handler,
		dedup:     dedup,
		metrics:   metrics,
		logger:    logger.With(zap.String("topic", topic), zap.String("group", group)),
	}
}

// Run consumes until ctx is cancelled or a handler fails. A handler
// failure returns so the caller can restart the runner; the uncommitted
// offset makes the broker hand the message back.
func (r *Runner) Run(ctx context.Context) error {
	reader := r.newReader()
	defer reader.Close()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		var env events.Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			r.logger.Warn("dropping undecodable message", zap.Error(err), zap.Int64("offset", msg.Offset))
			if err := reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		seen, err := r.dedup.Seen(ctx, r.group, env.EventID)
		if err != nil {
			r.logger.Warn("dedup store unavailable, relying on aggregate guards", zap.Error(err))
		}
		if seen {
			r.metrics.Duplicates.WithLabelValues(r.topic).Inc()
			if err := reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		if err := r.handler(ctx, env); err != nil {
			r.metrics.Failed.WithLabelValues(r.topic).Inc()
			r.logger.Error("handler failed, leaving offset for redelivery",
				zap.Error(err), zap.String("event_id", env.EventID), zap.String("type", env.Type))
			return err
		}
		if _, err := r.dedup.MarkProcessed(ctx, r.group, env.EventID); err != nil {
			r.logger.Warn("failed to record processed event", zap.Error(err), zap.String("event_id", env.EventID))
		}
		r.metrics.Processed.WithLabelValues(r.topic).Inc()
		r.metrics.LatencyMS.WithLabelValues(r.topic).Observe(float64(time.Since(start).Milliseconds()))

		if err := reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// RunForever restarts Run with a fixed backoff until ctx is cancelled.
func (r *Runner) RunForever(ctx context.Context, backoff time.Duration) {
	for {
		err := r.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			r.logger.Warn("consumer stopped, restarting", zap.Error(err), zap.Duration("backoff", backoff))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}
