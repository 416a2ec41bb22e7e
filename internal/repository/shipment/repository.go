package shipment

import (
	"context"

	"shopflow/internal/domain"
	"shopflow/internal/outbox"
)

type Repository interface {
	// Create inserts the shipment; a second shipment for the same order
	// fails with domain.ErrConflict (one shipment per order).
	Create(ctx context.Context, s *domain.Shipment, evts ...outbox.Record) error
	GetByID(ctx context.Context, id string) (*domain.Shipment, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Shipment, error)
	// Update saves under version compare-and-swap and inserts the outbox
	// records in the same transaction.
	Update(ctx context.Context, s *domain.Shipment, evts ...outbox.Record) error
}
