package order

import (
	"context"

	"shopflow/internal/domain"
	"shopflow/internal/outbox"
)

type Repository interface {
	Create(ctx context.Context, o *domain.Order, evts ...outbox.Record) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByCartID(ctx context.Context, cartID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	CountPendingByUser(ctx context.Context, userID string) (int, error)
	// Update saves the order guarded by its version (compare-and-swap) and
	// inserts the outbox records in the same transaction. Returns
	// domain.ErrConflict when a concurrent writer won.
	Update(ctx context.Context, o *domain.Order, evts ...outbox.Record) error
}
