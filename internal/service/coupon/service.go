package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopflow/internal/domain"
	couponrepo "shopflow/internal/repository/coupon"
)

type Service struct {
	repo   couponRepo
	logger *zap.Logger
}

type couponRepo interface {
	Create(ctx context.Context, c *domain.Coupon) error
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	ListExpiring(ctx context.Context, now time.Time, limit int) ([]domain.Coupon, error)
	Update(ctx context.Context, c *domain.Coupon) error
}

func New(repo couponrepo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type CreateInput struct {
	Code             string
	Discount         domain.Discount
	ExpiryDate       time.Time
	MinPurchaseCents int64
}

// Create registers an active coupon.
func (s *Service) Create(ctx context.Context, in CreateInput, when time.Time) (*domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, &domain.InvalidOperationError{Op: "coupon.create", Reason: "code required"}
	}
	if in.Discount.Value <= 0 {
		return nil, &domain.InvalidOperationError{Op: "coupon.create", Reason: "discount value must be positive"}
	}

	coupon := &domain.Coupon{
		ID:               uuid.NewString(),
		Code:             code,
		Discount:         in.Discount,
		Status:           domain.CouponStatusActive,
		ExpiryDate:       in.ExpiryDate,
		MinPurchaseCents: in.MinPurchaseCents,
		CreatedAt:        when,
		UpdatedAt:        when,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Get returns the coupon by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

// ApplyToCart attaches the coupon named by code to the cart, enforcing
// expiry, status and minimum-purchase guards.
func (s *Service) ApplyToCart(ctx context.Context, code, cartID, userID string, cartSubtotalCents int64, when time.Time) (*domain.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if cartSubtotalCents < coupon.MinPurchaseCents {
		return nil, &domain.InvalidOperationError{Op: "coupon.apply", Reason: "minimum purchase amount not met"}
	}
	if err := coupon.ApplyToCart(cartID, userID, when); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// AssignToUser reserves the coupon for one user.
func (s *Service) AssignToUser(ctx context.Context, couponID, userID string, when time.Time) (*domain.Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if err := coupon.AssignToUser(userID, when); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// MarkAsRedeemed consumes an applied coupon after its cart checked out.
func (s *Service) MarkAsRedeemed(ctx context.Context, couponID string, when time.Time) (*domain.Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if err := coupon.MarkAsRedeemed(when); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// SetExpired expires one coupon. Expiring an already-expired coupon fails
// so a stale caller notices.
func (s *Service) SetExpired(ctx context.Context, couponID string, when time.Time) (*domain.Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if err := coupon.SetExpired(when); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// ExpireDue sweeps past-due coupons. Individual losses to concurrent
// sweepers are logged and skipped, not fatal.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListExpiring(ctx, now, 100)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range due {
		coupon := &due[i]
		if err := coupon.SetExpired(now); err != nil {
			s.logger.Warn("coupon expiry skipped",
				zap.String("coupon_id", coupon.ID), zap.Error(err))
			continue
		}
		if err := s.repo.Update(ctx, coupon); err != nil {
			s.logger.Warn("coupon expiry lost the save",
				zap.String("coupon_id", coupon.ID), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

// Delete removes the coupon unless it is reserved or applied.
func (s *Service) Delete(ctx context.Context, couponID string, when time.Time) error {
	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return err
	}
	if err := coupon.Delete(when); err != nil {
		return err
	}
	return s.repo.Update(ctx, coupon)
}
