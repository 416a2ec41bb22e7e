package cart

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"shopflow/internal/domain"
	"shopflow/internal/events"
	"shopflow/internal/outbox"
	cartrepo "shopflow/internal/repository/cart"
)

// Service owns the Cart aggregate up to checkout. Checkout snapshots the
// cart into a cart.checked_out fact; everything downstream (order,
// payment, shipment) reacts to events, the request never waits on them.
type Service struct {
	repo      cartRepo
	products  productRepo
	coupons   couponPort
	taxRateBP int64 // basis points, e.g. 825 = 8.25%
}

type cartRepo interface {
	Create(ctx context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID string, product domain.Product, variantID string, quantity int) error
	ChangeLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	ApplyCoupon(ctx context.Context, cartID, couponID string) error
	CheckOut(ctx context.Context, c *domain.Cart, evts ...outbox.Record) error
	DeleteHard(ctx context.Context, cartID string) error
}

type productRepo interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

// couponPort is the cart's view of the coupon service. The coupon service
// stays the sole writer of coupon records.
type couponPort interface {
	ApplyToCart(ctx context.Context, code, cartID, userID string, cartSubtotalCents int64, when time.Time) (*domain.Coupon, error)
	Get(ctx context.Context, id string) (*domain.Coupon, error)
}

func New(repo cartrepo.Repository, products productRepo, coupons couponPort, taxRateBP int64) *Service {
	return &Service{repo: repo, products: products, coupons: coupons, taxRateBP: taxRateBP}
}

// Create opens a new active cart for the user.
func (s *Service) Create(ctx context.Context, userID, currency string) (*domain.Cart, error) {
	if strings.TrimSpace(currency) == "" {
		return nil, &domain.InvalidOperationError{Op: "cart.create", Reason: "currency required"}
	}
	return s.repo.Create(ctx, cartrepo.CreateCartInput{UserID: userID, Currency: currency})
}

// Get returns the cart to its owner.
func (s *Service) Get(ctx context.Context, userID, cartID string) (*domain.Cart, error) {
	return s.getOwned(ctx, userID, cartID)
}

// GetActive returns the user's newest active cart.
func (s *Service) GetActive(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.repo.GetActiveByUser(ctx, userID)
}

// AddLineItem adds quantity of the SKU to the cart, merging with an
// existing line for the same variant.
func (s *Service) AddLineItem(ctx context.Context, userID, cartID, sku, variantID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, &domain.InvalidOperationError{Op: "cart.add_line", Reason: "quantity must be positive"}
	}
	cart, err := s.getOwned(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}
	if cart.State != domain.CartStateActive {
		return nil, &domain.InvalidOperationError{Op: "cart.add_line", Reason: "cart is not active"}
	}

	product, err := s.products.GetBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddLine(ctx, cart.ID, *product, variantID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// ChangeLineItemQuantity sets a line's quantity; zero removes the line.
func (s *Service) ChangeLineItemQuantity(ctx context.Context, userID, cartID, lineID string, quantity int) (*domain.Cart, error) {
	cart, err := s.getOwned(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}
	if cart.State != domain.CartStateActive {
		return nil, &domain.InvalidOperationError{Op: "cart.change_line", Reason: "cart is not active"}
	}
	if err := s.repo.ChangeLineQuantity(ctx, cart.ID, lineID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// ApplyCoupon validates the coupon against the cart and records it on
// both sides.
func (s *Service) ApplyCoupon(ctx context.Context, userID, cartID, code string, when time.Time) (*domain.Cart, error) {
	cart, err := s.getOwned(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}
	if cart.State != domain.CartStateActive {
		return nil, &domain.InvalidOperationError{Op: "cart.apply_coupon", Reason: "cart is not active"}
	}

	coupon, err := s.coupons.ApplyToCart(ctx, code, cart.ID, userID, cart.SubtotalCents, when)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ApplyCoupon(ctx, cart.ID, coupon.ID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// Checkout archives the cart and publishes cart.checked_out with the
// priced snapshot. The order, payment and shipment aggregates react to
// the event asynchronously.
func (s *Service) Checkout(ctx context.Context, userID, cartID string, address domain.Address, when time.Time) (*domain.Cart, error) {
	cart, err := s.getOwned(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.CheckOut(when); err != nil {
		return nil, err
	}

	subtotal := cart.SubtotalCents
	discount := s.discountCents(ctx, cart, subtotal)
	tax := taxCents(subtotal-discount, s.taxRateBP)
	total := subtotal - discount + tax

	items := lo.Map(cart.Lines, func(line domain.CartLine, _ int) domain.OrderItem {
		return domain.OrderItem{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			SKU:            line.SKU,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		}
	})

	env, err := events.NewEnvelope(events.TopicCartCheckedOut, when, events.CartCheckedOut{
		CartID:          cart.ID,
		UserID:          cart.UserID,
		Currency:        cart.Currency,
		DeliveryAddress: address,
		Items:           items,
		CouponIDs:       cart.AppliedCouponIDs,
		SubtotalCents:   subtotal,
		TaxCents:        tax,
		DiscountCents:   discount,
		TotalCents:      total,
		CheckedOutAt:    when,
	})
	if err != nil {
		return nil, err
	}
	rec, err := outbox.FromEnvelope(cart.ID, env)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CheckOut(ctx, cart, rec); err != nil {
		return nil, err
	}
	return cart, nil
}

// Delete hard-deletes an active cart owned by the caller. Checked-out
// carts are part of the order history and stay.
func (s *Service) Delete(ctx context.Context, userID, cartID string) error {
	cart, err := s.getOwned(ctx, userID, cartID)
	if err != nil {
		return err
	}
	if cart.State != domain.CartStateActive {
		return &domain.InvalidOperationError{Op: "cart.delete", Reason: "cart already checked out"}
	}
	return s.repo.DeleteHard(ctx, cart.ID)
}

func (s *Service) getOwned(ctx context.Context, userID, cartID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return cart, nil
}

// discountCents sums the discounts of coupons still applied to this cart.
// A coupon that moved on (expired, redeemed elsewhere) simply stops
// counting.
func (s *Service) discountCents(ctx context.Context, cart *domain.Cart, subtotal int64) int64 {
	var discount int64
	for _, id := range cart.AppliedCouponIDs {
		coupon, err := s.coupons.Get(ctx, id)
		if err != nil {
			continue
		}
		if coupon.Status != domain.CouponStatusApplied || coupon.CartID == nil || *coupon.CartID != cart.ID {
			continue
		}
		discount += coupon.Discount.AmountCents(subtotal)
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}

func taxCents(taxableCents, rateBP int64) int64 {
	if taxableCents <= 0 || rateBP <= 0 {
		return 0
	}
	return decimal.NewFromInt(taxableCents).
		Mul(decimal.NewFromInt(rateBP)).
		Div(decimal.NewFromInt(10000)).
		Round(0).IntPart()
}
