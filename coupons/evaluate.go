package coupons

import (
	"math"

	"evently/models"
)

// Evaluate computes the discount a coupon grants on a base amount.
// Percentage coupons are clamped to MaxDiscount when set; every result is
// clamped to [0, amount] and rounded half away from zero to 2 decimals, so a
// discount can never exceed what is being charged.
func Evaluate(c models.Coupon, amount float64) float64 {
	if amount <= 0 {
		return 0
	}

	var discount float64
	switch c.DiscountType {
	case models.DiscountPercentage:
		discount = amount * c.DiscountValue / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case models.DiscountFixed:
		discount = c.DiscountValue
	}

	if discount < 0 {
		discount = 0
	}
	if discount > amount {
		discount = amount
	}
	return RoundMoney(discount)
}

// RoundMoney rounds to 2 decimal places, half away from zero.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
