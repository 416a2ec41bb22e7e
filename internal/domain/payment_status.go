package domain

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusVoided     PaymentStatus = "voided"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// Cancelled, Refunded and Voided are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusCancelled},
	PaymentStatusProcessing: {PaymentStatusAuthorized, PaymentStatusFailed},
	PaymentStatusAuthorized: {PaymentStatusPaid, PaymentStatusVoided},
	PaymentStatusPaid:       {PaymentStatusRefunded},
	PaymentStatusFailed:     {PaymentStatusPending},
}

// CanTransitionTo reports whether the jump from s to target is legal.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) error {
	return canTransition("payment", paymentTransitions, s, target)
}
