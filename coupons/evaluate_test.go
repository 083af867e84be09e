package coupons

import (
	"testing"

	"evently/models"
)

func TestEvaluatePercentage(t *testing.T) {
	c := models.Coupon{
		Code:          "SAVE20",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 20,
		MaxDiscount:   80,
	}

	// 20% of 300 is 60, under the cap.
	if got := Evaluate(c, 300); got != 60 {
		t.Fatalf("expected 60, got %v", got)
	}

	// 20% of 500 is 100, capped at 80.
	if got := Evaluate(c, 500); got != 80 {
		t.Fatalf("expected 80, got %v", got)
	}
}

func TestEvaluatePercentageNoCap(t *testing.T) {
	c := models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 50}
	if got := Evaluate(c, 1000); got != 500 {
		t.Fatalf("expected 500, got %v", got)
	}
}

func TestEvaluateFixed(t *testing.T) {
	c := models.Coupon{DiscountType: models.DiscountFixed, DiscountValue: 150}

	if got := Evaluate(c, 500); got != 150 {
		t.Fatalf("expected 150, got %v", got)
	}

	// Fixed discount larger than the amount clamps to the amount.
	if got := Evaluate(c, 100); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestEvaluateZeroAndNegativeAmount(t *testing.T) {
	c := models.Coupon{DiscountType: models.DiscountFixed, DiscountValue: 50}

	if got := Evaluate(c, 0); got != 0 {
		t.Fatalf("expected 0 for zero amount, got %v", got)
	}
	if got := Evaluate(c, -10); got != 0 {
		t.Fatalf("expected 0 for negative amount, got %v", got)
	}
}

func TestEvaluateRounding(t *testing.T) {
	// 12.5% of 199.99 = 24.99875 -> 25.00
	c := models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 12.5}
	if got := Evaluate(c, 199.99); got != 25.00 {
		t.Fatalf("expected 25.00, got %v", got)
	}
}

func TestEvaluateUnknownTypeGivesNothing(t *testing.T) {
	c := models.Coupon{DiscountType: "bogus", DiscountValue: 50}
	if got := Evaluate(c, 500); got != 0 {
		t.Fatalf("expected 0 for unknown discount type, got %v", got)
	}
}

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.006, 1.01},
		{1.004, 1.00},
		{0, 0},
		{99.999, 100},
	}
	for _, tc := range cases {
		if got := RoundMoney(tc.in); got != tc.want {
			t.Errorf("RoundMoney(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
