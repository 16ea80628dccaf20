// Package money holds the small arithmetic helpers shared by the cart and
// the checkout orchestrator.
package money

import "math"

// MinorUnits converts a major-unit amount to the provider's minor unit
// (e.g. rupees to paise). Rounded, not truncated.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// LineTotal returns the price of a quantity of one line item.
func LineTotal(unitPrice float64, quantity int) float64 {
	return unitPrice * float64(quantity)
}

// Round2 rounds an amount to two decimal places. Used when deriving fees.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
