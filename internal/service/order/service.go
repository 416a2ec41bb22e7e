package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopflow/internal/domain"
	"shopflow/internal/events"
	"shopflow/internal/outbox"
	orderrepo "shopflow/internal/repository/order"
)

// Service owns the Order aggregate. Every transition validates against the
// order status table first; on a guard failure the stored order is left
// untouched and the error surfaces to the caller unchanged.
type Service struct {
	repo orderRepo
}

type orderRepo interface {
	Create(ctx context.Context, o *domain.Order, evts ...outbox.Record) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByCartID(ctx context.Context, cartID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	CountPendingByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, o *domain.Order, evts ...outbox.Record) error
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

// CreateFromCheckout creates a Pending order from a checked-out cart and
// announces order.created. Re-delivery of the same checkout is a no-op:
// the cart already has an order.
func (s *Service) CreateFromCheckout(ctx context.Context, checkout events.CartCheckedOut, when time.Time) (*domain.Order, error) {
	if existing, err := s.repo.GetByCartID(ctx, checkout.CartID); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		CartID:          checkout.CartID,
		UserID:          checkout.UserID,
		SubtotalCents:   checkout.SubtotalCents,
		TaxCents:        checkout.TaxCents,
		DiscountCents:   checkout.DiscountCents,
		TotalCents:      checkout.TotalCents,
		Currency:        checkout.Currency,
		DeliveryAddress: checkout.DeliveryAddress,
		Items:           checkout.Items,
		Status:          domain.OrderStatusPending,
		CreatedAt:       when,
		UpdatedAt:       when,
	}

	env, err := events.NewEnvelope(events.TopicOrderCreated, when, events.OrderCreated{
		OrderID:    order.ID,
		CartID:     order.CartID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		TaxCents:   order.TaxCents,
		Currency:   order.Currency,
		Items:      order.Items,
	})
	if err != nil {
		return nil, err
	}
	rec, err := outbox.FromEnvelope(order.ID, env)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order, rec); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race against a duplicate delivery; the winner's
			// order is the order.
			return s.repo.GetByCartID(ctx, checkout.CartID)
		}
		return nil, err
	}
	return order, nil
}

// Get returns the order if it exists.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOwned returns the order only to its owning user.
func (s *Service) GetOwned(ctx context.Context, userID, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return order, nil
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkAsPaid transitions the order to Paid.
func (s *Service) MarkAsPaid(ctx context.Context, orderID, paymentID string, when time.Time) (*domain.Order, error) {
	return s.transition(ctx, orderID, func(o *domain.Order) error {
		return o.MarkAsPaid(paymentID, when)
	})
}

// MarkAsPaymentFailed transitions the order to PaymentFailed.
func (s *Service) MarkAsPaymentFailed(ctx context.Context, orderID, paymentID string, when time.Time) (*domain.Order, error) {
	return s.transition(ctx, orderID, func(o *domain.Order) error {
		return o.MarkAsPaymentFailed(paymentID, when)
	})
}

// MarkAsProcessing records that fulfilment started for the order.
func (s *Service) MarkAsProcessing(ctx context.Context, orderID, shipmentID string, when time.Time) (*domain.Order, error) {
	return s.transition(ctx, orderID, func(o *domain.Order) error {
		return o.MarkAsProcessing(shipmentID, when)
	})
}

// MarkAsShipped mirrors the shipment's departure onto the order.
func (s *Service) MarkAsShipped(ctx context.Context, orderID, shipmentID string, when time.Time) (*domain.Order, error) {
	return s.transition(ctx, orderID, func(o *domain.Order) error {
		return o.MarkAsShipped(shipmentID, when)
	})
}

// MarkAsDelivered mirrors the shipment's arrival onto the order.
func (s *Service) MarkAsDelivered(ctx context.Context, orderID string, when time.Time) (*domain.Order, error) {
	return s.transition(ctx, orderID, func(o *domain.Order) error {
		return o.MarkAsDelivered(when)
	})
}

// MarkAsCompleted closes out a delivered order on behalf of its owner.
func (s *Service) MarkAsCompleted(ctx context.Context, userID, orderID string, when time.Time) (*domain.Order, error) {
	order, err := s.GetOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.MarkAsCompleted(when); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkAsReturned records a return of a delivered order.
func (s *Service) MarkAsReturned(ctx context.Context, userID, orderID string, when time.Time) (*domain.Order, error) {
	order, err := s.GetOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.MarkAsReturned(when); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkAsCancelled cancels the order on behalf of its owner.
func (s *Service) MarkAsCancelled(ctx context.Context, userID, orderID string, when time.Time) (*domain.Order, error) {
	order, err := s.GetOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.MarkAsCancelled(when); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkAsRefunded refunds a paid order.
func (s *Service) MarkAsRefunded(ctx context.Context, orderID string, when time.Time) (*domain.Order, error) {
	return s.transition(ctx, orderID, func(o *domain.Order) error {
		return o.MarkAsRefunded(when)
	})
}

// Delete soft-deletes the order. The zero-pending-orders precondition is
// checked here against the user's other orders and handed to the aggregate.
func (s *Service) Delete(ctx context.Context, userID, orderID string, when time.Time) error {
	order, err := s.GetOwned(ctx, userID, orderID)
	if err != nil {
		return err
	}

	pending, err := s.repo.CountPendingByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("count pending orders: %w", err)
	}
	if order.Status == domain.OrderStatusPending {
		pending-- // the order being deleted does not block itself
	}

	if err := order.MarkAsDeleted(when, pending); err != nil {
		return err
	}
	return s.repo.Update(ctx, order)
}

func (s *Service) transition(ctx context.Context, orderID string, mutate func(*domain.Order) error) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := mutate(order); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
