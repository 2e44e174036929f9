// Package money converts processor amounts, which arrive in minor currency
// units, into the store's major-unit decimal representation.
package money

import "github.com/shopspring/decimal"

// DefaultExponent is the minor-unit exponent for the currencies the platform
// charges in (2 for cents-based currencies).
const DefaultExponent = 2

// FromMinorUnits converts an integer minor-unit amount into a major-unit
// decimal. The conversion is a base-10 exponent shift, exact for every int64
// input.
func FromMinorUnits(amount int64, exponent int32) decimal.Decimal {
	return decimal.New(amount, -exponent)
}

// ToMinorUnits converts a major-unit decimal back into minor units. It
// reports ok=false when the amount carries more precision than the exponent
// allows, so callers never silently round money.
func ToMinorUnits(amount decimal.Decimal, exponent int32) (int64, bool) {
	shifted := amount.Shift(exponent)
	if !shifted.IsInteger() {
		return 0, false
	}
	return shifted.IntPart(), true
}
