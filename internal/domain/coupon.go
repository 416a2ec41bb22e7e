package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Discount is the value object describing what a coupon is worth.
type Discount struct {
	Type  DiscountType `json:"type"`
	Value int64        `json:"value"` // percent for percentage, cents for fixed
}

// AmountCents computes the discount for a subtotal, capped at the subtotal.
func (d Discount) AmountCents(subtotalCents int64) int64 {
	var amount int64
	switch d.Type {
	case DiscountTypePercentage:
		amount = decimal.NewFromInt(subtotalCents).
			Mul(decimal.NewFromInt(d.Value)).
			Div(decimal.NewFromInt(100)).
			Round(0).IntPart()
	case DiscountTypeFixed:
		amount = d.Value
	}
	if amount > subtotalCents {
		return subtotalCents
	}
	return amount
}

type Coupon struct {
	ID               string       `json:"id"`
	Code             string       `json:"code"`
	Discount         Discount     `json:"discount"`
	Status           CouponStatus `json:"status"`
	CartID           *string      `json:"cartId,omitempty"`
	UserID           *string      `json:"userId,omitempty"`
	ExpiryDate       time.Time    `json:"expiryDate"`
	MinPurchaseCents int64        `json:"minimumPurchaseAmountCents"`
	Deleted          bool         `json:"-"`
	Version          int          `json:"version"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// AssignToUser reserves an active coupon for a single user.
func (c *Coupon) AssignToUser(userID string, when time.Time) error {
	if err := c.Status.CanTransitionTo(CouponStatusAssignedToUser); err != nil {
		return err
	}
	c.Status = CouponStatusAssignedToUser
	c.UserID = &userID
	c.UpdatedAt = when
	return nil
}

// ApplyToCart attaches the coupon to a cart. A coupon past its expiry date
// is refused even if the expiry sweep has not flagged it yet.
func (c *Coupon) ApplyToCart(cartID, userID string, when time.Time) error {
	if !when.Before(c.ExpiryDate) {
		return &InvalidOperationError{Op: "coupon.apply", Reason: "coupon expired"}
	}
	if c.UserID != nil && *c.UserID != userID {
		return &InvalidOperationError{Op: "coupon.apply", Reason: "coupon assigned to another user"}
	}
	if err := c.Status.CanTransitionTo(CouponStatusApplied); err != nil {
		return err
	}
	c.Status = CouponStatusApplied
	c.CartID = &cartID
	c.UserID = &userID
	c.UpdatedAt = when
	return nil
}

// MarkAsRedeemed consumes an applied coupon at checkout.
func (c *Coupon) MarkAsRedeemed(when time.Time) error {
	if err := c.Status.CanTransitionTo(CouponStatusRedeemed); err != nil {
		return err
	}
	c.Status = CouponStatusRedeemed
	c.UpdatedAt = when
	return nil
}

// SetExpired expires the coupon. Re-expiring fails so a stale sweeper
// notices it lost the race.
func (c *Coupon) SetExpired(when time.Time) error {
	if c.Status == CouponStatusExpired {
		return &InvalidOperationError{Op: "coupon.expire", Reason: "coupon already expired"}
	}
	if err := c.Status.CanTransitionTo(CouponStatusExpired); err != nil {
		return err
	}
	c.Status = CouponStatusExpired
	c.UpdatedAt = when
	return nil
}

// Delete removes the coupon. Refused while the coupon is reserved for a
// user or sitting in a cart.
func (c *Coupon) Delete(when time.Time) error {
	if c.Deleted {
		return &InvalidOperationError{Op: "coupon.delete", Reason: "coupon already deleted"}
	}
	if c.Status == CouponStatusAssignedToUser || c.Status == CouponStatusApplied {
		return &InvalidOperationError{Op: "coupon.delete", Reason: "coupon is in use"}
	}
	c.Deleted = true
	c.UpdatedAt = when
	return nil
}
