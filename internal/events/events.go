package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopflow/internal/domain"
)

// Topic names double as event types. One topic per fact keeps consumer
// groups independent per reaction.
const (
	TopicCartCheckedOut        = "cart.checked_out"
	TopicOrderCreated          = "order.created"
	TopicPaymentFulfilled      = "payment.fulfilled"
	TopicPaymentCancelled      = "payment.cancelled"
	TopicPaymentRefunded       = "payment.refunded"
	TopicShipmentCreated       = "shipment.created"
	TopicShipmentStatusChanged = "shipment.status_changed"
	TopicStockLevelChanged     = "stock.level_changed"
)

// Envelope wraps every integration event on the wire. EventID is the
// dedupe key for at-least-once consumers.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload for publication under the given type.
func NewEnvelope(eventType string, occurredAt time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: occurredAt,
		Payload:    data,
	}, nil
}

// Decode unmarshals the payload into out.
func (e Envelope) Decode(out any) error {
	if err := json.Unmarshal(e.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

type CartCheckedOut struct {
	CartID          string             `json:"cartId"`
	UserID          string             `json:"userId"`
	Currency        string             `json:"currency"`
	DeliveryAddress domain.Address     `json:"deliveryAddress"`
	Items           []domain.OrderItem `json:"items"`
	CouponIDs       []string           `json:"couponIds,omitempty"`
	SubtotalCents   int64              `json:"subtotalCents"`
	TaxCents        int64              `json:"taxCents"`
	DiscountCents   int64              `json:"discountCents"`
	TotalCents      int64              `json:"totalCents"`
	CheckedOutAt    time.Time          `json:"checkedOutAt"`
}

type OrderCreated struct {
	OrderID    string             `json:"orderId"`
	CartID     string             `json:"cartId"`
	UserID     string             `json:"userId"`
	TotalCents int64              `json:"total"`
	TaxCents   int64              `json:"tax"`
	Currency   string             `json:"currency"`
	Items      []domain.OrderItem `json:"items"`
}

type PaymentFulfilled struct {
	PaymentID     string             `json:"paymentId"`
	OrderID       string             `json:"orderId"`
	UserID        string             `json:"userId"`
	CartID        string             `json:"cartId"`
	TransactionID string             `json:"transactionId"`
	PaidAt        time.Time          `json:"paidAt"`
	Items         []domain.OrderItem `json:"items"`
}

type PaymentCancelled struct {
	PaymentID   string             `json:"paymentId"`
	OrderID     string             `json:"orderId"`
	UserID      string             `json:"userId"`
	CartID      string             `json:"cartId"`
	CancelledAt time.Time          `json:"cancelledAt"`
	Reason      string             `json:"reason,omitempty"`
	Items       []domain.OrderItem `json:"items"`
}

type PaymentRefunded struct {
	PaymentID  string    `json:"paymentId"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	RefundedAt time.Time `json:"refundedAt"`
}

type ShipmentCreated struct {
	ShipmentID   string `json:"shipmentId"`
	OrderID      string `json:"orderId"`
	TrackingCode string `json:"trackingCode"`
}

type ShipmentStatusChanged struct {
	ShipmentID      string                `json:"shipmentId"`
	OrderID         string                `json:"orderId"`
	Status          domain.ShipmentStatus `json:"status"`
	StatusChangedAt time.Time             `json:"statusChangedAt"`
}

type StockLevelChanged struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	InStock   bool   `json:"inStock"`
	Level     int    `json:"level"`
}
