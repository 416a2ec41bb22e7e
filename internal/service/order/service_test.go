package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"shopflow/internal/domain"
	"shopflow/internal/events"
	"shopflow/internal/outbox"
)

type stubRepo struct {
	byID          map[string]*domain.Order
	byCart        map[string]*domain.Order
	pending       int
	createCalls   int
	createErr     error
	createRecords []outbox.Record
	updateCalls   int
	updateErr     error
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: map[string]*domain.Order{}, byCart: map[string]*domain.Order{}}
}

func (s *stubRepo) Create(_ context.Context, o *domain.Order, evts ...outbox.Record) error {
	s.createCalls++
	s.createRecords = append(s.createRecords, evts...)
	if s.createErr != nil {
		return s.createErr
	}
	s.byID[o.ID] = o
	s.byCart[o.CartID] = o
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if o, ok := s.byID[id]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) GetByCartID(_ context.Context, cartID string) (*domain.Order, error) {
	if o, ok := s.byCart[cartID]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubRepo) CountPendingByUser(_ context.Context, userID string) (int, error) {
	return s.pending, nil
}

func (s *stubRepo) Update(_ context.Context, o *domain.Order, _ ...outbox.Record) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.byID[o.ID] = o
	return nil
}

func checkout(cartID string) events.CartCheckedOut {
	return events.CartCheckedOut{
		CartID:        cartID,
		UserID:        "u1",
		Currency:      "EUR",
		Items:         []domain.OrderItem{{ProductID: "p1", SKU: "SKU-1", Quantity: 1, UnitPriceCents: 4500}},
		SubtotalCents: 4500,
		TaxCents:      450,
		TotalCents:    4950,
	}
}

func TestCreateFromCheckoutEmitsOrderCreated(t *testing.T) {
	repo := newStubRepo()
	svc := &Service{repo: repo}

	when := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	order, err := svc.CreateFromCheckout(context.Background(), checkout("cart1"), when)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("status = %s, want pending", order.Status)
	}
	if len(repo.createRecords) != 1 || repo.createRecords[0].Topic != events.TopicOrderCreated {
		t.Fatalf("unexpected outbox records: %+v", repo.createRecords)
	}

	var env events.Envelope
	if err := json.Unmarshal(repo.createRecords[0].Payload, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	var payload events.OrderCreated
	if err := env.Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.OrderID != order.ID || payload.TotalCents != 4950 || payload.TaxCents != 450 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestCreateFromCheckoutIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := &Service{repo: repo}

	first, err := svc.CreateFromCheckout(context.Background(), checkout("cart1"), time.Now().UTC())
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.CreateFromCheckout(context.Background(), checkout("cart1"), time.Now().UTC())
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("duplicate delivery created a second order: %s vs %s", first.ID, second.ID)
	}
	if repo.createCalls != 1 {
		t.Fatalf("create calls = %d, want 1", repo.createCalls)
	}
}

func TestMarkAsShippedRequiresProcessing(t *testing.T) {
	repo := newStubRepo()
	repo.byID["o1"] = &domain.Order{ID: "o1", Status: domain.OrderStatusPending}
	svc := &Service{repo: repo}

	_, err := svc.MarkAsShipped(context.Background(), "o1", "s1", time.Now().UTC())
	var transition *domain.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatal("guard failure must not persist")
	}
	if repo.byID["o1"].Status != domain.OrderStatusPending {
		t.Fatal("order mutated despite guard failure")
	}
}

func TestPaymentMirrorFlow(t *testing.T) {
	repo := newStubRepo()
	svc := &Service{repo: repo}

	order, err := svc.CreateFromCheckout(context.Background(), checkout("cart1"), time.Now().UTC())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	if _, err := svc.MarkAsPaid(context.Background(), order.ID, "pay1", now); err != nil {
		t.Fatalf("paid: %v", err)
	}
	if _, err := svc.MarkAsProcessing(context.Background(), order.ID, "ship1", now); err != nil {
		t.Fatalf("processing: %v", err)
	}
	if _, err := svc.MarkAsShipped(context.Background(), order.ID, "ship1", now); err != nil {
		t.Fatalf("shipped: %v", err)
	}
	if _, err := svc.MarkAsDelivered(context.Background(), order.ID, now); err != nil {
		t.Fatalf("delivered: %v", err)
	}

	got := repo.byID[order.ID]
	if got.Status != domain.OrderStatusDelivered {
		t.Fatalf("status = %s, want delivered", got.Status)
	}
	if got.PaymentID == nil || *got.PaymentID != "pay1" {
		t.Errorf("payment id not recorded")
	}
	if got.ShipmentID == nil || *got.ShipmentID != "ship1" {
		t.Errorf("shipment id not recorded")
	}
}

func TestDeleteBlockedByPendingOrders(t *testing.T) {
	repo := newStubRepo()
	repo.byID["o1"] = &domain.Order{ID: "o1", UserID: "u1", Status: domain.OrderStatusCancelled}
	repo.pending = 2
	svc := &Service{repo: repo}

	err := svc.Delete(context.Background(), "u1", "o1", time.Now().UTC())
	var opErr *domain.InvalidOperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}
}

func TestDeleteOwnPendingOrder(t *testing.T) {
	repo := newStubRepo()
	repo.byID["o1"] = &domain.Order{ID: "o1", UserID: "u1", Status: domain.OrderStatusPending}
	repo.pending = 1 // only the order being deleted
	svc := &Service{repo: repo}

	if err := svc.Delete(context.Background(), "u1", "o1", time.Now().UTC()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !repo.byID["o1"].Deleted {
		t.Fatal("order not soft-deleted")
	}
}

func TestGetOwnedRejectsOtherUser(t *testing.T) {
	repo := newStubRepo()
	repo.byID["o1"] = &domain.Order{ID: "o1", UserID: "u1"}
	svc := &Service{repo: repo}

	if _, err := svc.GetOwned(context.Background(), "intruder", "o1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
