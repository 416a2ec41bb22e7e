package inventory

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"shopflow/internal/domain"
	"shopflow/internal/events"
	"shopflow/internal/outbox"
	stockrepo "shopflow/internal/repository/stock"
)

// Service owns stock levels. Stock is advisory in the fulfilment flow:
// it reacts to order and payment facts and publishes its own, but a
// shortage never blocks an order.
type Service struct {
	repo   stockRepo
	logger *zap.Logger
}

type stockRepo interface {
	Upsert(ctx context.Context, s *domain.StockLevel) error
	Get(ctx context.Context, productID, variantID string) (*domain.StockLevel, error)
	Update(ctx context.Context, s *domain.StockLevel, evts ...outbox.Record) error
}

func New(repo stockrepo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the stock level for a variant.
func (s *Service) Get(ctx context.Context, productID, variantID string) (*domain.StockLevel, error) {
	return s.repo.Get(ctx, productID, variantID)
}

// SetLevel seeds or corrects a stock level.
func (s *Service) SetLevel(ctx context.Context, productID, variantID string, available int, when time.Time) error {
	return s.repo.Upsert(ctx, &domain.StockLevel{
		ProductID: productID,
		VariantID: variantID,
		Available: available,
		UpdatedAt: when,
	})
}

// ReserveForOrder decrements stock for each ordered item and publishes
// stock.level_changed per touched variant. Unknown variants and shortages
// are logged, floored at zero, and never fail the order.
func (s *Service) ReserveForOrder(ctx context.Context, items []domain.OrderItem, when time.Time) error {
	return s.adjust(ctx, items, -1, when)
}

// ReleaseForOrder returns stock after a cancelled payment.
func (s *Service) ReleaseForOrder(ctx context.Context, items []domain.OrderItem, when time.Time) error {
	return s.adjust(ctx, items, 1, when)
}

func (s *Service) adjust(ctx context.Context, items []domain.OrderItem, direction int, when time.Time) error {
	for _, item := range items {
		if err := s.adjustOne(ctx, item, direction, when); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) adjustOne(ctx context.Context, item domain.OrderItem, direction int, when time.Time) error {
	for {
		level, err := s.repo.Get(ctx, item.ProductID, item.VariantID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("stock level missing for ordered variant",
					zap.String("product_id", item.ProductID),
					zap.String("variant_id", item.VariantID))
				return nil
			}
			return err
		}

		level.Available += direction * item.Quantity
		if level.Available < 0 {
			s.logger.Warn("stock went below zero, flooring",
				zap.String("product_id", item.ProductID),
				zap.String("variant_id", item.VariantID),
				zap.Int("short_by", -level.Available))
			level.Available = 0
		}
		level.UpdatedAt = when

		env, err := events.NewEnvelope(events.TopicStockLevelChanged, when, events.StockLevelChanged{
			ProductID: level.ProductID,
			VariantID: level.VariantID,
			InStock:   level.InStock(),
			Level:     level.Available,
		})
		if err != nil {
			return err
		}
		rec, err := outbox.FromEnvelope(level.ProductID, env)
		if err != nil {
			return err
		}

		err = s.repo.Update(ctx, level, rec)
		if errors.Is(err, domain.ErrConflict) {
			continue // lost the CAS race, reload and retry
		}
		return err
	}
}
