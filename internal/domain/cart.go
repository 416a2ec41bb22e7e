package domain

import "time"

type CartState string

const (
	CartStateActive     CartState = "active"
	CartStateCheckedOut CartState = "checked_out"
)

// Cart is mutable until checkout; checkout archives it and snapshots its
// lines into an order.
type Cart struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Currency         string     `json:"currency"`
	State            CartState  `json:"state"`
	Lines            []CartLine `json:"lineItems,omitempty"`
	AppliedCouponIDs []string   `json:"appliedCouponIds,omitempty"`
	SubtotalCents    int64      `json:"subtotalCents"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type CartLine struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	VariantID      string    `json:"variantId,omitempty"`
	SKU            string    `json:"sku"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TotalCents     int64     `json:"totalCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CheckOut archives the cart. Only an active cart can be checked out.
func (c *Cart) CheckOut(when time.Time) error {
	if c.State != CartStateActive {
		return &InvalidOperationError{Op: "cart.checkout", Reason: "cart is not active"}
	}
	if len(c.Lines) == 0 {
		return &InvalidOperationError{Op: "cart.checkout", Reason: "cart is empty"}
	}
	c.State = CartStateCheckedOut
	c.UpdatedAt = when
	return nil
}
