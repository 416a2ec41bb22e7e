package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeCoupon(expiry time.Time) *Coupon {
	return &Coupon{
		ID:         "c1",
		Code:       "SPRING20",
		Discount:   Discount{Type: DiscountTypePercentage, Value: 20},
		Status:     CouponStatusActive,
		ExpiryDate: expiry,
	}
}

func TestCouponApplyExpiredByDate(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon(now.Add(-time.Hour))

	err := coupon.ApplyToCart("cart1", "user1", now)

	var invalidOp *InvalidOperationError
	require.ErrorAs(t, err, &invalidOp)
	assert.Equal(t, "coupon expired", invalidOp.Reason)
	assert.Equal(t, CouponStatusActive, coupon.Status, "coupon must be unchanged")
}

func TestCouponApplyThenRedeem(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon(now.Add(24 * time.Hour))

	require.NoError(t, coupon.ApplyToCart("cart1", "user1", now))
	assert.Equal(t, CouponStatusApplied, coupon.Status)
	assert.Equal(t, "cart1", *coupon.CartID)

	require.NoError(t, coupon.MarkAsRedeemed(now.Add(time.Minute)))
	assert.Equal(t, CouponStatusRedeemed, coupon.Status)
}

func TestCouponRedeemWithoutApplyRejected(t *testing.T) {
	coupon := activeCoupon(time.Now().Add(time.Hour))

	err := coupon.MarkAsRedeemed(time.Now())

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestCouponApplyAssignedToOtherUser(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon(now.Add(time.Hour))
	require.NoError(t, coupon.AssignToUser("user1", now))

	err := coupon.ApplyToCart("cart1", "user2", now)

	var invalidOp *InvalidOperationError
	require.ErrorAs(t, err, &invalidOp)
}

func TestCouponReExpireRejected(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon(now.Add(-time.Hour))

	require.NoError(t, coupon.SetExpired(now))

	// Unlike payment fulfilment, expiring twice is an error: it tells a
	// stale sweeper that another run already won.
	err := coupon.SetExpired(now.Add(time.Minute))
	var invalidOp *InvalidOperationError
	require.ErrorAs(t, err, &invalidOp)
}

func TestCouponDeleteBlockedWhileInUse(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon(now.Add(time.Hour))
	require.NoError(t, coupon.ApplyToCart("cart1", "user1", now))

	var invalidOp *InvalidOperationError
	require.ErrorAs(t, coupon.Delete(now), &invalidOp)
	assert.False(t, coupon.Deleted)

	require.NoError(t, coupon.MarkAsRedeemed(now))
	require.NoError(t, coupon.Delete(now))
	require.ErrorAs(t, coupon.Delete(now), &invalidOp)
}

func TestDiscountAmount(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		subtotal int64
		want     int64
	}{
		{"percentage", Discount{Type: DiscountTypePercentage, Value: 20}, 10000, 2000},
		{"percentage rounds", Discount{Type: DiscountTypePercentage, Value: 15}, 999, 150},
		{"fixed", Discount{Type: DiscountTypeFixed, Value: 500}, 10000, 500},
		{"fixed capped at subtotal", Discount{Type: DiscountTypeFixed, Value: 5000}, 1200, 1200},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.discount.AmountCents(tc.subtotal))
		})
	}
}
