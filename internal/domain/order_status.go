package domain

type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
	OrderStatusPaid          OrderStatus = "paid"
	OrderStatusProcessing    OrderStatus = "processing"
	OrderStatusShipped       OrderStatus = "shipped"
	OrderStatusDelivered     OrderStatus = "delivered"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusCancelled     OrderStatus = "cancelled"
	OrderStatusRefunded      OrderStatus = "refunded"
	OrderStatusReturned      OrderStatus = "returned"
	OrderStatusOnHold        OrderStatus = "on_hold"
)

// orderTransitions is the full lifecycle graph. Completed, Cancelled,
// Refunded, Returned and OnHold have no successors.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:       {OrderStatusPaid, OrderStatusPaymentFailed, OrderStatusCancelled},
	OrderStatusPaid:          {OrderStatusProcessing, OrderStatusRefunded, OrderStatusCancelled},
	OrderStatusProcessing:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:       {OrderStatusDelivered},
	OrderStatusDelivered:     {OrderStatusCompleted, OrderStatusReturned},
	OrderStatusPaymentFailed: {OrderStatusPending, OrderStatusCancelled},
}

// CanTransitionTo reports whether the jump from s to target is legal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) error {
	return canTransition("order", orderTransitions, s, target)
}
