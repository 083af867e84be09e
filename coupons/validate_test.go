package coupons

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"evently/models"
)

func noUses(ctx context.Context, userID, code string) (int64, error) {
	return 0, nil
}

func fixedUses(n int64) PaidUses {
	return func(ctx context.Context, userID, code string) (int64, error) {
		return n, nil
	}
}

func activeCoupon() models.Coupon {
	return models.Coupon{
		Code:          "SAVE20",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 20,
		Active:        true,
	}
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()
	var ce *CouponError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CouponError, got %v", err)
	}
	if ce.Reason != reason {
		t.Fatalf("expected reason %s, got %s (%s)", reason, ce.Reason, ce.Message)
	}
}

func TestValidateHappyPath(t *testing.T) {
	err := Validate(context.Background(), activeCoupon(), "u1", "e1", 500, time.Now(), noUses)
	if err != nil {
		t.Fatalf("expected valid coupon, got %v", err)
	}
}

func TestValidateInactive(t *testing.T) {
	c := activeCoupon()
	c.Active = false
	err := Validate(context.Background(), c, "u1", "e1", 500, time.Now(), noUses)
	assertReason(t, err, ReasonInactive)
}

func TestValidateNotStarted(t *testing.T) {
	c := activeCoupon()
	start := time.Now().Add(time.Hour)
	c.StartDate = &start
	err := Validate(context.Background(), c, "u1", "e1", 500, time.Now(), noUses)
	assertReason(t, err, ReasonNotStarted)
}

func TestValidateExpired(t *testing.T) {
	c := activeCoupon()
	end := time.Now().Add(-time.Hour)
	c.EndDate = &end
	err := Validate(context.Background(), c, "u1", "e1", 500, time.Now(), noUses)
	assertReason(t, err, ReasonExpired)
}

func TestValidateUsageLimit(t *testing.T) {
	c := activeCoupon()
	c.UsageLimit = 10
	c.TotalRedemptions = 10
	err := Validate(context.Background(), c, "u1", "e1", 500, time.Now(), noUses)
	assertReason(t, err, ReasonLimitReached)
}

func TestValidateEventEligibility(t *testing.T) {
	c := activeCoupon()
	c.AllowedEvents = []string{"e1", "e2"}

	if err := Validate(context.Background(), c, "u1", "e2", 500, time.Now(), noUses); err != nil {
		t.Fatalf("expected e2 to be eligible, got %v", err)
	}

	err := Validate(context.Background(), c, "u1", "e3", 500, time.Now(), noUses)
	assertReason(t, err, ReasonEventNotEligible)
}

func TestValidateMinAmount(t *testing.T) {
	c := activeCoupon()
	c.MinAmount = 250

	err := Validate(context.Background(), c, "u1", "e1", 200, time.Now(), noUses)
	assertReason(t, err, ReasonBelowMinimum)

	var ce *CouponError
	errors.As(err, &ce)
	if !strings.Contains(ce.Message, "250") {
		t.Fatalf("expected message to name the minimum, got %q", ce.Message)
	}

	if err := Validate(context.Background(), c, "u1", "e1", 250, time.Now(), noUses); err != nil {
		t.Fatalf("amount equal to minimum should pass, got %v", err)
	}
}

func TestValidatePerUserLimit(t *testing.T) {
	c := activeCoupon()
	c.PerUserLimit = 2

	if err := Validate(context.Background(), c, "u1", "e1", 500, time.Now(), fixedUses(1)); err != nil {
		t.Fatalf("one use under a limit of two should pass, got %v", err)
	}

	err := Validate(context.Background(), c, "u1", "e1", 500, time.Now(), fixedUses(2))
	assertReason(t, err, ReasonPerUserLimitReached)
}

func TestValidatePerUserLookupError(t *testing.T) {
	c := activeCoupon()
	c.PerUserLimit = 1
	boom := errors.New("lookup down")
	err := Validate(context.Background(), c, "u1", "e1", 500, time.Now(),
		func(ctx context.Context, userID, code string) (int64, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error to surface, got %v", err)
	}
}

// When several rules fail at once the earlier check wins.
func TestValidateFailFastOrder(t *testing.T) {
	c := activeCoupon()
	c.Active = false
	end := time.Now().Add(-time.Hour)
	c.EndDate = &end
	c.MinAmount = 1000

	err := Validate(context.Background(), c, "u1", "e1", 200, time.Now(), noUses)
	assertReason(t, err, ReasonInactive)

	c.Active = true
	err = Validate(context.Background(), c, "u1", "e1", 200, time.Now(), noUses)
	assertReason(t, err, ReasonExpired)
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  save20 "); got != "SAVE20" {
		t.Fatalf("expected SAVE20, got %q", got)
	}
}
