package coupons

import (
	"context"
	"fmt"
	"time"

	"evently/db"
	"evently/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Validation failure reasons, in check order. The first violated rule wins so
// error messages stay deterministic when several rules fail at once.
const (
	ReasonInactive            = "INACTIVE"
	ReasonNotStarted          = "NOT_STARTED"
	ReasonExpired             = "EXPIRED"
	ReasonLimitReached        = "LIMIT_REACHED"
	ReasonEventNotEligible    = "EVENT_NOT_ELIGIBLE"
	ReasonBelowMinimum        = "BELOW_MINIMUM"
	ReasonPerUserLimitReached = "PER_USER_LIMIT_REACHED"
)

// CouponError is a recoverable, user-facing policy violation (HTTP 400).
type CouponError struct {
	Reason  string
	Message string
}

func (e *CouponError) Error() string {
	return e.Message
}

// PaidUses counts completed payments by a user that redeemed the given code.
type PaidUses func(ctx context.Context, userID, code string) (int64, error)

// Validate checks a coupon's eligibility for a user, event, and amount at the
// given time. All checks are pure except the per-user cap, which needs the
// injected redemption lookup.
func Validate(ctx context.Context, c models.Coupon, userID, eventID string, amount float64, now time.Time, paidUses PaidUses) error {
	if !c.Active {
		return &CouponError{ReasonInactive, "This coupon is not active"}
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return &CouponError{ReasonNotStarted, "This coupon is not valid yet"}
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return &CouponError{ReasonExpired, "This coupon has expired"}
	}
	if c.UsageLimit > 0 && c.TotalRedemptions >= c.UsageLimit {
		return &CouponError{ReasonLimitReached, "This coupon has reached its usage limit"}
	}
	if len(c.AllowedEvents) > 0 && !contains(c.AllowedEvents, eventID) {
		return &CouponError{ReasonEventNotEligible, "This coupon is not valid for this event"}
	}
	if c.MinAmount > 0 && amount < c.MinAmount {
		return &CouponError{ReasonBelowMinimum, fmt.Sprintf("Minimum order amount for this coupon is %.2f", c.MinAmount)}
	}
	if c.PerUserLimit > 0 {
		used, err := paidUses(ctx, userID, c.Code)
		if err != nil {
			return err
		}
		if used >= int64(c.PerUserLimit) {
			return &CouponError{ReasonPerUserLimitReached, "You have already used this coupon the maximum number of times"}
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// CountPaidUses is the production PaidUses lookup: completed payments by the
// user carrying the coupon code.
func CountPaidUses(ctx context.Context, userID, code string) (int64, error) {
	return db.PaymentsCollection.CountDocuments(ctx, bson.M{
		"userid":     userID,
		"couponcode": code,
		"status":     models.PayPaid,
	})
}
