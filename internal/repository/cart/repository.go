package cart

import (
	"context"

	"shopflow/internal/domain"
	"shopflow/internal/outbox"
)

type CreateCartInput struct {
	UserID   string
	Currency string
}

type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID string, product domain.Product, variantID string, quantity int) error
	// ChangeLineQuantity updates the line; a quantity of zero or less
	// removes it.
	ChangeLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	ApplyCoupon(ctx context.Context, cartID, couponID string) error
	// CheckOut archives the cart under version compare-and-swap and
	// inserts the outbox records in the same transaction.
	CheckOut(ctx context.Context, c *domain.Cart, evts ...outbox.Record) error
	// DeleteHard removes the cart and its lines entirely.
	DeleteHard(ctx context.Context, cartID string) error
}
