// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/co2-budget/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a kilotonne value to the display precision (one decimal).
// Rounding goes through a decimal so that values such as 476.35 round the way
// they read instead of the way they are stored in binary.
func Round(val float64) float64 {
	return RoundTo(val, constants.DisplayPrecision)
}

// RoundTo rounds val half away from zero to the given number of decimals.
func RoundTo(val float64, places int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	f, _ := decimal.NewFromFloat(val).Round(places).Float64()
	return f
}

// RoundInt rounds val to the nearest integer, half away from zero.
func RoundInt(val float64) int {
	return int(decimal.NewFromFloat(val).Round(0).IntPart())
}

// IsZero reports whether a kilotonne value displays as zero.
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.KtTolerance
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}
