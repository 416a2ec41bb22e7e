package stock

import (
	"context"

	"shopflow/internal/domain"
	"shopflow/internal/outbox"
)

type Repository interface {
	Upsert(ctx context.Context, s *domain.StockLevel) error
	Get(ctx context.Context, productID, variantID string) (*domain.StockLevel, error)
	// Update saves under version compare-and-swap and inserts the outbox
	// records in the same transaction.
	Update(ctx context.Context, s *domain.StockLevel, evts ...outbox.Record) error
}
