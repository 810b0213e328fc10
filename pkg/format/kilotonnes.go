// Package format renders budget values for display.
package format

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/co2-budget/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// NotExhaustedLabel is shown instead of a year for budgets that last beyond the
// modeled horizon.
const NotExhaustedLabel = "will not be exhausted"

// Kilotonnes returns a kilotonne value with one decimal and thousands separators (e.g., "-1,234.5").
func Kilotonnes(amount float64) string {
	// Values that round to zero lose their sign.
	if mathutil.IsZero(amount) {
		amount = 0
	}
	return printer.Sprintf("%.1f", amount)
}

// Threshold returns the label of a temperature threshold (e.g., "1.5°C").
func Threshold(celsius float64) string {
	return fmt.Sprintf("%.1f°C", celsius)
}

// ExhaustionYear returns the year as text, or NotExhaustedLabel for year 0.
func ExhaustionYear(year int) string {
	if year == 0 {
		return NotExhaustedLabel
	}
	return strconv.Itoa(year)
}

// Optional formats a scenario value; ended trajectories render empty.
func Optional(value *float64) string {
	if value == nil {
		return ""
	}
	return Kilotonnes(*value)
}
