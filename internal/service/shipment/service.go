package shipment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"shopflow/internal/domain"
	"shopflow/internal/events"
	"shopflow/internal/outbox"
	shipmentrepo "shopflow/internal/repository/shipment"
)

type Service struct {
	repo shipmentRepo
}

type shipmentRepo interface {
	Create(ctx context.Context, s *domain.Shipment, evts ...outbox.Record) error
	GetByID(ctx context.Context, id string) (*domain.Shipment, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Shipment, error)
	Update(ctx context.Context, s *domain.Shipment, evts ...outbox.Record) error
}

func New(repo shipmentrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the shipment by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByOrder returns the order's shipment.
func (s *Service) GetByOrder(ctx context.Context, orderID string) (*domain.Shipment, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// CreateForOrder creates the shipment once the order's payment is
// fulfilled. Re-delivery finds the existing shipment and does nothing.
func (s *Service) CreateForOrder(ctx context.Context, orderID string, address domain.Address, when time.Time) (*domain.Shipment, error) {
	if existing, err := s.repo.GetByOrderID(ctx, orderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	shipment := &domain.Shipment{
		ID:              uuid.NewString(),
		OrderID:         orderID,
		ShippingAddress: address,
		TrackingCode:    newTrackingCode(when),
		Status:          domain.ShipmentStatusPending,
		CreatedAt:       when,
		UpdatedAt:       when,
	}

	env, err := events.NewEnvelope(events.TopicShipmentCreated, when, events.ShipmentCreated{
		ShipmentID:   shipment.ID,
		OrderID:      shipment.OrderID,
		TrackingCode: shipment.TrackingCode,
	})
	if err != nil {
		return nil, err
	}
	rec, err := outbox.FromEnvelope(orderID, env)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, shipment, rec); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.repo.GetByOrderID(ctx, orderID)
		}
		return nil, err
	}
	return shipment, nil
}

// MarkAsShipped moves the shipment out the door and announces the change.
func (s *Service) MarkAsShipped(ctx context.Context, shipmentID string, when time.Time) (*domain.Shipment, error) {
	return s.transition(ctx, shipmentID, when, (*domain.Shipment).MarkAsShipped)
}

// MarkAsDelivered completes the shipment and announces the change.
func (s *Service) MarkAsDelivered(ctx context.Context, shipmentID string, when time.Time) (*domain.Shipment, error) {
	return s.transition(ctx, shipmentID, when, (*domain.Shipment).MarkAsDelivered)
}

// PutOnHold parks the shipment and announces the change.
func (s *Service) PutOnHold(ctx context.Context, shipmentID string, when time.Time) (*domain.Shipment, error) {
	return s.transition(ctx, shipmentID, when, (*domain.Shipment).PutOnHold)
}

// Cancel aborts the shipment and announces the change.
func (s *Service) Cancel(ctx context.Context, shipmentID string, when time.Time) (*domain.Shipment, error) {
	return s.transition(ctx, shipmentID, when, (*domain.Shipment).Cancel)
}

func (s *Service) transition(ctx context.Context, shipmentID string, when time.Time, mutate func(*domain.Shipment, time.Time) error) (*domain.Shipment, error) {
	shipment, err := s.repo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := mutate(shipment, when); err != nil {
		return nil, err
	}

	env, err := events.NewEnvelope(events.TopicShipmentStatusChanged, when, events.ShipmentStatusChanged{
		ShipmentID:      shipment.ID,
		OrderID:         shipment.OrderID,
		Status:          shipment.Status,
		StatusChangedAt: when,
	})
	if err != nil {
		return nil, err
	}
	rec, err := outbox.FromEnvelope(shipment.OrderID, env)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, shipment, rec); err != nil {
		return nil, err
	}
	return shipment, nil
}

// newTrackingCode is deterministic-enough to avoid collisions; a duplicate
// is a data-quality wart, not a guarded invariant.
func newTrackingCode(when time.Time) string {
	return fmt.Sprintf("SF-%d-%04d", when.UnixNano(), rand.Intn(10000))
}
