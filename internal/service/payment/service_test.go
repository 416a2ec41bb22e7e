package payment

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
	byID        map[string]*domain.Payment
	byOrder     map[string]*domain.Payment
	createErr   error
	records     []outbox.Record
	updateCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: map[string]*domain.Payment{}, byOrder: map[string]*domain.Payment{}}
}

func (s *stubRepo) Create(_ context.Context, p *domain.Payment) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.byID[p.ID] = p
	s.byOrder[p.OrderID] = p
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) GetByOrderID(_ context.Context, orderID string) (*domain.Payment, error) {
	if p, ok := s.byOrder[orderID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) Update(_ context.Context, p *domain.Payment, evts ...outbox.Record) error {
	s.updateCalls++
	s.byID[p.ID] = p
	s.byOrder[p.OrderID] = p
	s.records = append(s.records, evts...)
	return nil
}

type stubGateway struct {
	txID  string
	err   error
	calls int
}

func (g *stubGateway) Capture(_ context.Context, _ domain.Payment) (string, error) {
	g.calls++
	return g.txID, g.err
}

func orderCreated() events.OrderCreated {
	return events.OrderCreated{
		OrderID:    "o1",
		CartID:     "c1",
		UserID:     "u1",
		TotalCents: 4950,
		TaxCents:   450,
		Currency:   "EUR",
		Items:      []domain.OrderItem{{ProductID: "p1", SKU: "SKU-1", Quantity: 1, UnitPriceCents: 4500}},
	}
}

func lastTopic(t *testing.T, repo *stubRepo) string {
	t.Helper()
	if len(repo.records) == 0 {
		t.Fatal("no outbox records")
	}
	return repo.records[len(repo.records)-1].Topic
}

func TestCreateAndCaptureSuccess(t *testing.T) {
	repo := newStubRepo()
	gateway := &stubGateway{txID: "tx-1"}
	svc := &Service{repo: repo, gateway: gateway, captureTimeout: time.Second}

	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payment, err := svc.CreateAndCapture(context.Background(), orderCreated(), "card", when)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if payment.Status != domain.PaymentStatusPaid {
		t.Fatalf("status = %s, want paid", payment.Status)
	}
	if payment.TransactionID != "tx-1" {
		t.Errorf("transaction id = %q", payment.TransactionID)
	}
	if payment.PaidAt == nil || !payment.PaidAt.Equal(when) {
		t.Errorf("paidAt = %v", payment.PaidAt)
	}
	if got := lastTopic(t, repo); got != events.TopicPaymentFulfilled {
		t.Fatalf("topic = %s, want payment.fulfilled", got)
	}
}

func TestCreateAndCaptureFailure(t *testing.T) {
	repo := newStubRepo()
	gateway := &stubGateway{err: ErrAmountTooLarge}
	svc := &Service{repo: repo, gateway: gateway, captureTimeout: time.Second}

	payment, err := svc.CreateAndCapture(context.Background(), orderCreated(), "card", time.Now().UTC())
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if payment.Status != domain.PaymentStatusFailed {
		t.Fatalf("status = %s, want failed", payment.Status)
	}
	if got := lastTopic(t, repo); got != events.TopicPaymentCancelled {
		t.Fatalf("topic = %s, want payment.cancelled", got)
	}

	var env events.Envelope
	if err := json.Unmarshal(repo.records[len(repo.records)-1].Payload, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	var payload events.PaymentCancelled
	if err := env.Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Reason == "" {
		t.Error("cancellation reason missing")
	}
}

func TestCreateAndCaptureDuplicateLeavesTerminalPayment(t *testing.T) {
	repo := newStubRepo()
	paidAt := time.Now().UTC()
	existing := &domain.Payment{ID: "pay1", OrderID: "o1", Status: domain.PaymentStatusPaid, PaidAt: &paidAt}
	repo.byOrder["o1"] = existing
	repo.byID["pay1"] = existing
	gateway := &stubGateway{txID: "tx-2"}
	svc := &Service{repo: repo, gateway: gateway, captureTimeout: time.Second}

	payment, err := svc.CreateAndCapture(context.Background(), orderCreated(), "card", time.Now().UTC())
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if payment.ID != "pay1" {
		t.Fatalf("created a second payment: %s", payment.ID)
	}
	if gateway.calls != 0 {
		t.Fatal("gateway must not be called for a settled payment")
	}
}

func TestInterruptedCaptureIsResumed(t *testing.T) {
	// A payment stuck in processing means a worker died between the
	// processing save and the gateway call. Redelivery must finish the
	// capture instead of treating the payment as settled.
	repo := newStubRepo()
	existing := &domain.Payment{ID: "pay1", OrderID: "o1", CartID: "c1", UserID: "u1",
		TotalCents: 4950, Currency: "EUR", Status: domain.PaymentStatusProcessing}
	repo.byOrder["o1"] = existing
	repo.byID["pay1"] = existing
	gateway := &stubGateway{txID: "tx-7"}
	svc := &Service{repo: repo, gateway: gateway, captureTimeout: time.Second}

	payment, err := svc.CreateAndCapture(context.Background(), orderCreated(), "card", time.Now().UTC())
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if gateway.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", gateway.calls)
	}
	if payment.Status != domain.PaymentStatusPaid {
		t.Fatalf("status = %s, want paid", payment.Status)
	}
	if got := lastTopic(t, repo); got != events.TopicPaymentFulfilled {
		t.Fatalf("topic = %s, want payment.fulfilled", got)
	}
}

func TestInterruptedCaptureResolvesToFailed(t *testing.T) {
	repo := newStubRepo()
	existing := &domain.Payment{ID: "pay1", OrderID: "o1", CartID: "c1", UserID: "u1",
		TotalCents: 4950, Currency: "EUR", Status: domain.PaymentStatusProcessing}
	repo.byOrder["o1"] = existing
	repo.byID["pay1"] = existing
	gateway := &stubGateway{err: errors.New("declined")}
	svc := &Service{repo: repo, gateway: gateway, captureTimeout: time.Second}

	payment, err := svc.CreateAndCapture(context.Background(), orderCreated(), "card", time.Now().UTC())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if payment.Status != domain.PaymentStatusFailed {
		t.Fatalf("status = %s, want failed", payment.Status)
	}
	if got := lastTopic(t, repo); got != events.TopicPaymentCancelled {
		t.Fatalf("topic = %s, want payment.cancelled", got)
	}
}

func TestFailedPaymentIsRetried(t *testing.T) {
	repo := newStubRepo()
	failedAt := time.Now().UTC()
	existing := &domain.Payment{ID: "pay1", OrderID: "o1", Status: domain.PaymentStatusFailed, FailedAt: &failedAt}
	repo.byOrder["o1"] = existing
	repo.byID["pay1"] = existing
	gateway := &stubGateway{txID: "tx-3"}
	svc := &Service{repo: repo, gateway: gateway, captureTimeout: time.Second}

	payment, err := svc.CreateAndCapture(context.Background(), orderCreated(), "card", time.Now().UTC())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if payment.Status != domain.PaymentStatusPaid {
		t.Fatalf("status = %s, want paid after retry", payment.Status)
	}
	if gateway.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", gateway.calls)
	}
}

func TestWebhookFulfillIdempotent(t *testing.T) {
	repo := newStubRepo()
	p := &domain.Payment{ID: "pay1", OrderID: "o1", Status: domain.PaymentStatusAuthorized}
	repo.byID["pay1"] = p
	repo.byOrder["o1"] = p
	svc := &Service{repo: repo}

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := svc.MarkAsFulfilled(context.Background(), "pay1", "card", first); err != nil {
		t.Fatalf("first fulfil: %v", err)
	}
	updatesAfterFirst := repo.updateCalls

	got, err := svc.MarkAsFulfilled(context.Background(), "pay1", "card", first.Add(time.Hour))
	if err != nil {
		t.Fatalf("repeat fulfil: %v", err)
	}
	if repo.updateCalls != updatesAfterFirst {
		t.Fatal("repeat fulfil must not persist")
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(first) {
		t.Errorf("paidAt moved on repeat: %v", got.PaidAt)
	}
}

func TestRefundRequiresPaid(t *testing.T) {
	repo := newStubRepo()
	p := &domain.Payment{ID: "pay1", OrderID: "o1", Status: domain.PaymentStatusPending}
	repo.byID["pay1"] = p
	svc := &Service{repo: repo}

	_, err := svc.Refund(context.Background(), "pay1", time.Now().UTC())
	var transition *domain.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}
