package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"shopflow/internal/domain"
	"shopflow/internal/events"
	"shopflow/internal/outbox"
	paymentrepo "shopflow/internal/repository/payment"
)

// Capturer is the boundary to the payment provider. Capture must respect
// ctx cancellation; the service imposes its own deadline so a slow
// provider resolves into the failure path instead of staying pending.
type Capturer interface {
	Capture(ctx context.Context, p domain.Payment) (transactionID string, err error)
}

type Service struct {
	repo           paymentRepo
	gateway        Capturer
	captureTimeout time.Duration
}

type paymentRepo interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment, evts ...outbox.Record) error
}

func New(repo paymentrepo.Repository, gateway Capturer, captureTimeout time.Duration) *Service {
	return &Service{repo: repo, gateway: gateway, captureTimeout: captureTimeout}
}

// Get returns the payment by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByOrder returns the order's payment.
func (s *Service) GetByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// CreateAndCapture creates the order's payment and runs one capture
// attempt. Exactly one of payment.fulfilled / payment.cancelled is
// emitted per attempt. Re-delivery of the same order.created finds the
// existing payment and retries only if it is still capturable.
func (s *Service) CreateAndCapture(ctx context.Context, created events.OrderCreated, method string, when time.Time) (*domain.Payment, error) {
	payment, err := s.repo.GetByOrderID(ctx, created.OrderID)
	switch {
	case err == nil:
		// Duplicate delivery. A terminal payment is left alone; a
		// processing payment belongs to a worker that died mid-capture
		// and must be resolved, not skipped, or the order stays pending.
		switch payment.Status {
		case domain.PaymentStatusPending, domain.PaymentStatusFailed, domain.PaymentStatusProcessing:
		default:
			return payment, nil
		}
	case errors.Is(err, domain.ErrNotFound):
		payment = &domain.Payment{
			ID:         uuid.NewString(),
			OrderID:    created.OrderID,
			CartID:     created.CartID,
			UserID:     created.UserID,
			TotalCents: created.TotalCents,
			TaxCents:   created.TaxCents,
			Currency:   created.Currency,
			Status:     domain.PaymentStatusPending,
			CreatedAt:  when,
			UpdatedAt:  when,
		}
		if err := s.repo.Create(ctx, payment); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Another worker created it first.
				return s.repo.GetByOrderID(ctx, created.OrderID)
			}
			return nil, err
		}
	default:
		return nil, err
	}

	return s.capture(ctx, payment, created.Items, method, when)
}

func (s *Service) capture(ctx context.Context, p *domain.Payment, items []domain.OrderItem, method string, when time.Time) (*domain.Payment, error) {
	if p.Status == domain.PaymentStatusFailed {
		// Failed -> Pending reopens the payment for another attempt.
		if err := p.Status.CanTransitionTo(domain.PaymentStatusPending); err != nil {
			return nil, err
		}
		p.Status = domain.PaymentStatusPending
		p.UpdatedAt = when
	}
	// A payment already in processing is an interrupted attempt; resume
	// the capture instead of re-entering the state.
	if p.Status != domain.PaymentStatusProcessing {
		if err := p.MarkAsProcessing(when); err != nil {
			return nil, err
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, err
		}
	}

	captureCtx, cancel := context.WithTimeout(ctx, s.captureTimeout)
	defer cancel()

	txID, captureErr := s.gateway.Capture(captureCtx, *p)
	if captureErr != nil {
		return s.failCapture(ctx, p, items, method, captureErr, when)
	}

	if err := p.MarkAsAuthorized(txID, when); err != nil {
		return nil, err
	}
	if err := p.MarkAsFulfilled(method, when); err != nil {
		return nil, err
	}

	env, err := events.NewEnvelope(events.TopicPaymentFulfilled, when, events.PaymentFulfilled{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		CartID:        p.CartID,
		TransactionID: p.TransactionID,
		PaidAt:        *p.PaidAt,
		Items:         items,
	})
	if err != nil {
		return nil, err
	}
	rec, err := outbox.FromEnvelope(p.OrderID, env)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p, rec); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) failCapture(ctx context.Context, p *domain.Payment, items []domain.OrderItem, method string, cause error, when time.Time) (*domain.Payment, error) {
	if err := p.MarkAsFailed(method, when); err != nil {
		return nil, err
	}

	env, err := events.NewEnvelope(events.TopicPaymentCancelled, when, events.PaymentCancelled{
		PaymentID:   p.ID,
		OrderID:     p.OrderID,
		UserID:      p.UserID,
		CartID:      p.CartID,
		CancelledAt: when,
		Reason:      cause.Error(),
		Items:       items,
	})
	if err != nil {
		return nil, err
	}
	rec, err := outbox.FromEnvelope(p.OrderID, env)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p, rec); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkAsFulfilled applies the fulfilment transition directly, e.g. from a
// provider webhook. Idempotent under retry.
func (s *Service) MarkAsFulfilled(ctx context.Context, paymentID, method string, when time.Time) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	before := payment.Status
	if err := payment.MarkAsFulfilled(method, when); err != nil {
		return nil, err
	}
	if payment.Status == before {
		return payment, nil // no-op retry, nothing to persist
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkAsFailed applies the failure transition directly. Idempotent under
// retry.
func (s *Service) MarkAsFailed(ctx context.Context, paymentID, method string, when time.Time) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	before := payment.Status
	if err := payment.MarkAsFailed(method, when); err != nil {
		return nil, err
	}
	if payment.Status == before {
		return payment, nil
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Refund refunds a captured payment.
func (s *Service) Refund(ctx context.Context, paymentID string, when time.Time) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.MarkAsRefunded(when); err != nil {
		return nil, err
	}
	env, err := events.NewEnvelope(events.TopicPaymentRefunded, when, events.PaymentRefunded{
		PaymentID:  payment.ID,
		OrderID:    payment.OrderID,
		UserID:     payment.UserID,
		RefundedAt: when,
	})
	if err != nil {
		return nil, err
	}
	rec, err := outbox.FromEnvelope(payment.ID, env)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, payment, rec); err != nil {
		return nil, err
	}
	return payment, nil
}
