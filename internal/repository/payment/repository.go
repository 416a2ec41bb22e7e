package payment

import (
	"context"

	"shopflow/internal/domain"
	"shopflow/internal/outbox"
)

type Repository interface {
	// Create inserts the payment; a second payment for the same order
	// fails with domain.ErrConflict (one payment per order).
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	// Update saves under version compare-and-swap and inserts the outbox
	// records in the same transaction.
	Update(ctx context.Context, p *domain.Payment, evts ...outbox.Record) error
}
