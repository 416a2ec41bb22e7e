package domain

import "time"

// Payment is the single payment record of an order (1:1, referenced by id).
type Payment struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"orderId"`
	CartID        string        `json:"cartId"`
	UserID        string        `json:"userId"`
	TotalCents    int64         `json:"totalCents"`
	TaxCents      int64         `json:"taxCents"`
	Currency      string        `json:"currency"`
	Method        string        `json:"paymentMethod,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Status        PaymentStatus `json:"status"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	FailedAt      *time.Time    `json:"failedAt,omitempty"`
	RefundedAt    *time.Time    `json:"refundedAt,omitempty"`
	Version       int           `json:"version"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// MarkAsProcessing starts a capture attempt.
func (p *Payment) MarkAsProcessing(when time.Time) error {
	if err := p.Status.CanTransitionTo(PaymentStatusProcessing); err != nil {
		return err
	}
	p.Status = PaymentStatusProcessing
	p.UpdatedAt = when
	return nil
}

// MarkAsAuthorized records a successful authorization from the gateway.
func (p *Payment) MarkAsAuthorized(transactionID string, when time.Time) error {
	if err := p.Status.CanTransitionTo(PaymentStatusAuthorized); err != nil {
		return err
	}
	p.Status = PaymentStatusAuthorized
	p.TransactionID = transactionID
	p.UpdatedAt = when
	return nil
}

// MarkAsFulfilled captures the payment. It is idempotent under retry:
// marking an already-paid payment is a no-op success so duplicate event
// deliveries do not fail, and paidAt keeps its first value.
func (p *Payment) MarkAsFulfilled(method string, when time.Time) error {
	if p.Status == PaymentStatusPaid {
		return nil
	}
	if err := p.Status.CanTransitionTo(PaymentStatusPaid); err != nil {
		return err
	}
	p.Status = PaymentStatusPaid
	p.Method = method
	p.PaidAt = &when
	p.UpdatedAt = when
	return nil
}

// MarkAsFailed fails the capture attempt. Idempotent the same way
// MarkAsFulfilled is.
func (p *Payment) MarkAsFailed(method string, when time.Time) error {
	if p.Status == PaymentStatusFailed {
		return nil
	}
	if err := p.Status.CanTransitionTo(PaymentStatusFailed); err != nil {
		return err
	}
	p.Status = PaymentStatusFailed
	p.Method = method
	p.FailedAt = &when
	p.UpdatedAt = when
	return nil
}

// MarkAsCancelled cancels a payment that never reached the gateway.
func (p *Payment) MarkAsCancelled(when time.Time) error {
	if err := p.Status.CanTransitionTo(PaymentStatusCancelled); err != nil {
		return err
	}
	p.Status = PaymentStatusCancelled
	p.UpdatedAt = when
	return nil
}

// MarkAsRefunded refunds a captured payment.
func (p *Payment) MarkAsRefunded(when time.Time) error {
	if err := p.Status.CanTransitionTo(PaymentStatusRefunded); err != nil {
		return err
	}
	p.Status = PaymentStatusRefunded
	p.RefundedAt = &when
	p.UpdatedAt = when
	return nil
}
