package pay

import "math"

// GatewayFloor is the minimum transactable amount in major currency units.
// The gateway rejects charges below one whole unit, so post-discount totals
// are clamped up to this single constant rather than varying per environment.
const GatewayFloor = 1.00

// ToMinorUnits converts a major-unit amount to minor units (e.g. INR to
// paise). This is the only place the x100 conversion happens.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ClampToFloor raises a non-positive or sub-floor amount to the gateway floor.
func ClampToFloor(amount float64) float64 {
	if amount < GatewayFloor {
		return GatewayFloor
	}
	return amount
}
