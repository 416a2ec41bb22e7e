package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCartCheckOut(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cart := &Cart{
		ID:    "c1",
		State: CartStateActive,
		Lines: []CartLine{{ID: "l1", Quantity: 1, UnitPriceCents: 500, TotalCents: 500}},
	}

	if err := cart.CheckOut(now); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if cart.State != CartStateCheckedOut {
		t.Fatalf("state = %s, want checked_out", cart.State)
	}
	if !cart.UpdatedAt.Equal(now) {
		t.Fatalf("updatedAt = %v, want %v", cart.UpdatedAt, now)
	}
}

func TestCartCheckOutEmpty(t *testing.T) {
	cart := &Cart{ID: "c1", State: CartStateActive}
	var opErr *InvalidOperationError
	if err := cart.CheckOut(time.Now()); !errors.As(err, &opErr) {
		t.Fatalf("checkout of empty cart = %v, want InvalidOperationError", err)
	}
}

func TestCartCheckOutTwice(t *testing.T) {
	cart := &Cart{
		ID:    "c1",
		State: CartStateCheckedOut,
		Lines: []CartLine{{ID: "l1", Quantity: 1}},
	}
	var opErr *InvalidOperationError
	if err := cart.CheckOut(time.Now()); !errors.As(err, &opErr) {
		t.Fatalf("second checkout = %v, want InvalidOperationError", err)
	}
}
