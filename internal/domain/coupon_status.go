package domain

type CouponStatus string

const (
	CouponStatusUnknown        CouponStatus = "unknown"
	CouponStatusActive         CouponStatus = "active"
	CouponStatusAssignedToUser CouponStatus = "assigned_to_user"
	CouponStatusApplied        CouponStatus = "applied"
	CouponStatusExpired        CouponStatus = "expired"
	CouponStatusRedeemed       CouponStatus = "redeemed"
)

// Expired and Redeemed are terminal.
var couponTransitions = map[CouponStatus][]CouponStatus{
	CouponStatusUnknown:        {CouponStatusActive},
	CouponStatusActive:         {CouponStatusAssignedToUser, CouponStatusApplied, CouponStatusExpired},
	CouponStatusAssignedToUser: {CouponStatusApplied, CouponStatusExpired},
	CouponStatusApplied:        {CouponStatusRedeemed, CouponStatusExpired},
}

// CanTransitionTo reports whether the jump from s to target is legal.
func (s CouponStatus) CanTransitionTo(target CouponStatus) error {
	return canTransition("coupon", couponTransitions, s, target)
}
