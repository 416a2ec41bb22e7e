package domain

import "time"

// OrderItem is an immutable snapshot of a cart line taken at checkout time.
type OrderItem struct {
	ProductID      string `json:"productId"`
	VariantID      string `json:"variantId,omitempty"`
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// Order is the sole owner of its status. All cross-aggregate effects reach it
// through consumed integration events that call one of the MarkAs methods.
type Order struct {
	ID              string      `json:"id"`
	CartID          string      `json:"cartId"`
	UserID          string      `json:"userId"`
	SubtotalCents   int64       `json:"subtotalCents"`
	TaxCents        int64       `json:"taxCents"`
	DiscountCents   int64       `json:"discountCents"`
	TotalCents      int64       `json:"totalCents"`
	Currency        string      `json:"currency"`
	DeliveryAddress Address     `json:"deliveryAddress"`
	Items           []OrderItem `json:"items"`
	Status          OrderStatus `json:"status"`
	PaymentID       *string     `json:"paymentId,omitempty"`
	ShipmentID      *string     `json:"shipmentId,omitempty"`
	PaidAt          *time.Time  `json:"paidAt,omitempty"`
	ShippedAt       *time.Time  `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time  `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time  `json:"cancelledAt,omitempty"`
	RefundedAt      *time.Time  `json:"refundedAt,omitempty"`
	Deleted         bool        `json:"-"`
	DeletedAt       *time.Time  `json:"-"`
	Version         int         `json:"version"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// MarkAsPaid records the payment reference and moves the order to Paid.
func (o *Order) MarkAsPaid(paymentID string, when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusPaid); err != nil {
		return err
	}
	o.Status = OrderStatusPaid
	o.PaymentID = &paymentID
	o.PaidAt = &when
	o.UpdatedAt = when
	return nil
}

// MarkAsPaymentFailed moves the order to PaymentFailed. The order keeps the
// payment reference so a retried capture can find its way back.
func (o *Order) MarkAsPaymentFailed(paymentID string, when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusPaymentFailed); err != nil {
		return err
	}
	o.Status = OrderStatusPaymentFailed
	o.PaymentID = &paymentID
	o.UpdatedAt = when
	return nil
}

// MarkAsProcessing records the shipment reference once fulfilment has started.
func (o *Order) MarkAsProcessing(shipmentID string, when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusProcessing); err != nil {
		return err
	}
	o.Status = OrderStatusProcessing
	o.ShipmentID = &shipmentID
	o.UpdatedAt = when
	return nil
}

// MarkAsShipped mirrors the shipment leaving the warehouse.
func (o *Order) MarkAsShipped(shipmentID string, when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusShipped); err != nil {
		return err
	}
	o.Status = OrderStatusShipped
	o.ShipmentID = &shipmentID
	o.ShippedAt = &when
	o.UpdatedAt = when
	return nil
}

// MarkAsDelivered mirrors the shipment arriving at the customer.
func (o *Order) MarkAsDelivered(when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusDelivered); err != nil {
		return err
	}
	o.Status = OrderStatusDelivered
	o.DeliveredAt = &when
	o.UpdatedAt = when
	return nil
}

// MarkAsCompleted closes out a delivered order.
func (o *Order) MarkAsCompleted(when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusCompleted); err != nil {
		return err
	}
	o.Status = OrderStatusCompleted
	o.UpdatedAt = when
	return nil
}

// MarkAsReturned records a return of a delivered order.
func (o *Order) MarkAsReturned(when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusReturned); err != nil {
		return err
	}
	o.Status = OrderStatusReturned
	o.UpdatedAt = when
	return nil
}

// MarkAsCancelled cancels the order.
func (o *Order) MarkAsCancelled(when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusCancelled); err != nil {
		return err
	}
	o.Status = OrderStatusCancelled
	o.CancelledAt = &when
	o.UpdatedAt = when
	return nil
}

// MarkAsRefunded refunds a paid order.
func (o *Order) MarkAsRefunded(when time.Time) error {
	if err := o.Status.CanTransitionTo(OrderStatusRefunded); err != nil {
		return err
	}
	o.Status = OrderStatusRefunded
	o.RefundedAt = &when
	o.UpdatedAt = when
	return nil
}

// MarkAsDeleted soft-deletes the order. pendingRefs is the count of pending
// references held elsewhere, supplied by the caller; deletion is refused
// while any remain.
func (o *Order) MarkAsDeleted(when time.Time, pendingRefs int) error {
	if o.Deleted {
		return &InvalidOperationError{Op: "order.delete", Reason: "order already deleted"}
	}
	if pendingRefs > 0 {
		return &InvalidOperationError{Op: "order.delete", Reason: "order has pending references"}
	}
	o.Deleted = true
	o.DeletedAt = &when
	o.UpdatedAt = when
	return nil
}
