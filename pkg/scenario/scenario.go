// Package scenario generates illustrative year-by-year emission trajectories
// that use up a reference budget in different ways. They are descriptive
// comparisons, not fitted or optimized paths.
package scenario

import (
	"errors"
	"fmt"

	"github.com/iwvelando/co2-budget/pkg/mathutil"
)

var (
	// ErrEmptyWindow is returned when no years are given.
	ErrEmptyWindow = errors.New("scenario window is empty")

	// ErrNonPositiveInput is returned when the starting emission or the
	// reference budget is not positive, e.g. because the budget is used up.
	ErrNonPositiveInput = errors.New("starting emission and reference budget must be positive")
)

// Table holds three parallel trajectories over Years. A nil value means the
// trajectory has ended.
type Table struct {
	Years           []int
	Percentage      []*float64
	Linear          []*float64
	BusinessAsUsual []*float64

	// PercentageRate is the yearly decay in whole percent.
	PercentageRate int
	// LinearRate is the yearly decrease in kilotonnes.
	LinearRate float64
	// LinearYears is the number of years the linear trajectory lasts.
	LinearYears int
}

// Simulate steps all three trajectories from startKt over years.
//
// Percentage decay multiplies by (1 - start/budget) each year, so the
// geometric series sums to roughly budget. Linear decay lasts
// round(2·budget/start) years, the length of an arithmetic sequence from start
// to zero with area budget. Business as usual keeps emitting start until the
// running total would exceed budget, reports 0 for that year and ends.
func Simulate(years []int, startKt, referenceBudgetKt float64) (Table, error) {
	if len(years) == 0 {
		return Table{}, ErrEmptyWindow
	}
	if startKt <= 0 || referenceBudgetKt <= 0 {
		return Table{}, fmt.Errorf("%w: start %.1f kt, budget %.1f kt", ErrNonPositiveInput, startKt, referenceBudgetKt)
	}

	table := Table{
		Years:           append([]int(nil), years...),
		Percentage:      make([]*float64, len(years)),
		Linear:          make([]*float64, len(years)),
		BusinessAsUsual: make([]*float64, len(years)),
	}

	share := startKt / referenceBudgetKt
	factor := 1 - share
	if factor < 0 {
		factor = 0
	}
	table.PercentageRate = mathutil.RoundInt(mathutil.CalculatePercentage(startKt, referenceBudgetKt))

	linearYears := mathutil.RoundInt(2 * referenceBudgetKt / startKt)
	if linearYears < 2 {
		linearYears = 2
	}
	step := startKt / float64(linearYears-1)
	table.LinearYears = linearYears
	table.LinearRate = step

	// Residue below this is floating-point noise from repeated subtraction.
	endEpsilon := startKt * 1e-9

	percentage, linear, total := startKt, startKt, startKt
	linearEnded, budgetExceeded := false, false
	table.Percentage[0] = value(startKt)
	table.Linear[0] = value(startKt)
	table.BusinessAsUsual[0] = value(startKt)

	for i := 1; i < len(years); i++ {
		percentage *= factor
		table.Percentage[i] = value(percentage)

		linear -= step
		if !linearEnded && linear > endEpsilon {
			table.Linear[i] = value(linear)
		} else {
			linearEnded = true
		}

		total += startKt
		switch {
		case budgetExceeded:
		case total > referenceBudgetKt:
			table.BusinessAsUsual[i] = value(0)
			budgetExceeded = true
		default:
			table.BusinessAsUsual[i] = value(startKt)
		}
	}

	return table, nil
}

func value(v float64) *float64 {
	return &v
}
