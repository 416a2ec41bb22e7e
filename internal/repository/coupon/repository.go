package coupon

import (
	"context"
	"time"

	"shopflow/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c *domain.Coupon) error
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	// ListExpiring returns non-terminal coupons whose expiry date is in
	// the past relative to now, for the expiry sweep.
	ListExpiring(ctx context.Context, now time.Time, limit int) ([]domain.Coupon, error)
	// Update saves under version compare-and-swap; domain.ErrConflict when
	// a concurrent writer won.
	Update(ctx context.Context, c *domain.Coupon) error
}
