package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"shopflow/internal/domain"
)

// SimulatedGateway stands in for a real payment provider. It authorizes
// anything under the configured limit after a short delay; failures and
// provider selection stay behind the Capturer boundary.
type SimulatedGateway struct {
	MaxAmountCents int64
	Delay          time.Duration
}

var ErrAmountTooLarge = errors.New("amount exceeds capture limit")

// DefaultGateway returns a simulated gateway with a generous limit for
// local runs.
func DefaultGateway() *SimulatedGateway {
	return &SimulatedGateway{MaxAmountCents: 10_000_00, Delay: 50 * time.Millisecond}
}

func (g *SimulatedGateway) Capture(ctx context.Context, p domain.Payment) (string, error) {
	if g.MaxAmountCents > 0 && p.TotalCents > g.MaxAmountCents {
		return "", ErrAmountTooLarge
	}
	if g.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.Delay):
		}
	}
	return fmt.Sprintf("sim-%d-%04d", time.Now().UnixNano(), rand.Intn(10000)), nil
}
