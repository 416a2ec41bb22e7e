// Package idempotency deduplicates at-least-once event deliveries. The
// Redis marker is an optimization only: when it is cold the state-machine
// guards still make redelivered transitions no-ops or clean failures.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 7 * 24 * time.Hour

// Store marks processed event ids per consumer group.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, ttl: defaultTTL}
}

// Seen reports whether the event id already carries a marker. Read-only:
// callers mark the event processed only after their work succeeded, so a
// crash between the two leaves the event replayable.
func (s *Store) Seen(ctx context.Context, group, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, key(group, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency exists: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the event id and reports whether it was seen
// before. The SetNX is atomic, so two workers racing on the same delivery
// get exactly one false.
func (s *Store) MarkProcessed(ctx context.Context, group, eventID string) (seen bool, err error) {
	ok, err := s.client.SetNX(ctx, key(group, eventID), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency setnx: %w", err)
	}
	return !ok, nil
}

func key(group, eventID string) string {
	return "processed:" + group + ":" + eventID
}
