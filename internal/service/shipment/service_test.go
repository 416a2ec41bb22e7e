package shipment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shopflow/internal/domain"
	"shopflow/internal/events"
	"shopflow/internal/outbox"
)

type stubRepo struct {
	byID        map[string]*domain.Shipment
	byOrder     map[string]*domain.Shipment
	createCalls int
	records     []outbox.Record
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: map[string]*domain.Shipment{}, byOrder: map[string]*domain.Shipment{}}
}

func (s *stubRepo) Create(_ context.Context, sh *domain.Shipment, evts ...outbox.Record) error {
	s.createCalls++
	s.byID[sh.ID] = sh
	s.byOrder[sh.OrderID] = sh
	s.records = append(s.records, evts...)
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Shipment, error) {
	if sh, ok := s.byID[id]; ok {
		return sh, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) GetByOrderID(_ context.Context, orderID string) (*domain.Shipment, error) {
	if sh, ok := s.byOrder[orderID]; ok {
		return sh, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) Update(_ context.Context, sh *domain.Shipment, evts ...outbox.Record) error {
	s.byID[sh.ID] = sh
	s.records = append(s.records, evts...)
	return nil
}

func TestCreateForOrderIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := &Service{repo: repo}

	when := time.Now().UTC()
	first, err := svc.CreateForOrder(context.Background(), "o1", domain.Address{City: "Vilnius"}, when)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(first.TrackingCode, "SF-") {
		t.Errorf("tracking code = %q", first.TrackingCode)
	}
	if len(repo.records) != 1 || repo.records[0].Topic != events.TopicShipmentCreated {
		t.Fatalf("unexpected records: %+v", repo.records)
	}

	second, err := svc.CreateForOrder(context.Background(), "o1", domain.Address{}, when)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if second.ID != first.ID || repo.createCalls != 1 {
		t.Fatalf("duplicate delivery created a second shipment")
	}
}

func TestLifecycleAnnouncesEveryChange(t *testing.T) {
	repo := newStubRepo()
	svc := &Service{repo: repo}
	when := time.Now().UTC()

	shipment, err := svc.CreateForOrder(context.Background(), "o1", domain.Address{}, when)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.MarkAsShipped(context.Background(), shipment.ID, when.Add(time.Hour)); err != nil {
		t.Fatalf("ship: %v", err)
	}
	if _, err := svc.MarkAsDelivered(context.Background(), shipment.ID, when.Add(2*time.Hour)); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// shipment.created plus two shipment.status_changed
	if len(repo.records) != 3 {
		t.Fatalf("records = %d, want 3", len(repo.records))
	}
	if repo.records[1].Topic != events.TopicShipmentStatusChanged || repo.records[2].Topic != events.TopicShipmentStatusChanged {
		t.Fatalf("unexpected topics: %s, %s", repo.records[1].Topic, repo.records[2].Topic)
	}
}

func TestDeliverRequiresShipped(t *testing.T) {
	repo := newStubRepo()
	svc := &Service{repo: repo}

	shipment, err := svc.CreateForOrder(context.Background(), "o1", domain.Address{}, time.Now().UTC())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.MarkAsDelivered(context.Background(), shipment.ID, time.Now().UTC())
	var transition *domain.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if repo.byID[shipment.ID].Status != domain.ShipmentStatusPending {
		t.Fatal("shipment mutated despite guard failure")
	}
}

func TestHoldAndResume(t *testing.T) {
	repo := newStubRepo()
	svc := &Service{repo: repo}
	when := time.Now().UTC()

	shipment, err := svc.CreateForOrder(context.Background(), "o1", domain.Address{}, when)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.PutOnHold(context.Background(), shipment.ID, when); err != nil {
		t.Fatalf("hold: %v", err)
	}
	got, err := svc.MarkAsShipped(context.Background(), shipment.ID, when.Add(time.Hour))
	if err != nil {
		t.Fatalf("resume ship: %v", err)
	}
	if got.Status != domain.ShipmentStatusShipped {
		t.Fatalf("status = %s, want shipped", got.Status)
	}
}
