// Package pathsolver fits polynomial emission trajectories that use up a
// budget exactly by the net-zero year.
//
// The cubic model f(x) = a·x³ + b·x² + c·x + d is constrained by
//
//	f(pledge) = emission at the pledge year
//	f(zero)   = 0
//	f'(zero)  = 0
//	∫ f dx over [pledge, zero] = budget
//
// All four constraints are linear in the coefficients, so the fit is a single
// dense linear solve. The quadratic model drops the slope constraint.
// Coefficients are solved in t = x - pledge, which describes the same
// polynomial but keeps the system well conditioned (years cubed are ~1e10).
package pathsolver

import (
	"errors"
	"fmt"

	"github.com/iwvelando/co2-budget/pkg/budget"
	"github.com/iwvelando/co2-budget/pkg/constants"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDegenerateHorizon is returned when pledge year and zero year coincide.
	ErrDegenerateHorizon = errors.New("pledge year equals zero year")

	// ErrSingularSystem is returned when the constraint system cannot be solved.
	ErrSingularSystem = errors.New("constraint system is singular")

	// ErrUnknownModel is returned for a model other than cubic or quadratic.
	ErrUnknownModel = errors.New("unknown reduction path model")

	// ErrBudgetNotFound is returned when the budget table lacks a required
	// threshold/probability combination.
	ErrBudgetNotFound = errors.New("budget not found for threshold")

	// ErrInvalidCeiling is returned when the forecast ceiling precedes the pledge year.
	ErrInvalidCeiling = errors.New("forecast ceiling precedes pledge year")
)

// Polynomial holds coefficients in ascending powers of (x - Origin).
type Polynomial struct {
	Origin float64
	Coeffs []float64
}

// Eval evaluates the polynomial at x.
func (p Polynomial) Eval(x float64) float64 {
	t := x - p.Origin
	result := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		result = result*t + p.Coeffs[i]
	}
	return result
}

// Derivative evaluates the first derivative at x.
func (p Polynomial) Derivative(x float64) float64 {
	t := x - p.Origin
	result := 0.0
	for i := len(p.Coeffs) - 1; i >= 1; i-- {
		result = result*t + float64(i)*p.Coeffs[i]
	}
	return result
}

// Integral returns the definite integral over [a, b].
func (p Polynomial) Integral(a, b float64) float64 {
	return p.antiderivative(b-p.Origin) - p.antiderivative(a-p.Origin)
}

func (p Polynomial) antiderivative(t float64) float64 {
	result := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		result = result*t + p.Coeffs[i]/float64(i+1)
	}
	return result * t
}

// Solve fits the polynomial of the given model to the boundary conditions.
func Solve(budgetKt, emissionKt float64, pledgeYear, zeroYear int, model string) (Polynomial, error) {
	if pledgeYear == zeroYear {
		return Polynomial{}, fmt.Errorf("%w: %d", ErrDegenerateHorizon, pledgeYear)
	}
	T := float64(zeroYear - pledgeYear)

	var rows []float64
	var rhs []float64
	switch model {
	case constants.ModelCubic:
		rows = []float64{
			1, 0, 0, 0,
			1, T, T * T, T * T * T,
			0, 1, 2 * T, 3 * T * T,
			T, T * T / 2, T * T * T / 3, T * T * T * T / 4,
		}
		rhs = []float64{emissionKt, 0, 0, budgetKt}
	case constants.ModelQuadratic:
		rows = []float64{
			1, 0, 0,
			1, T, T * T,
			T, T * T / 2, T * T * T / 3,
		}
		rhs = []float64{emissionKt, 0, budgetKt}
	default:
		return Polynomial{}, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	n := len(rhs)
	a := mat.NewDense(n, n, rows)
	b := mat.NewVecDense(n, rhs)

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return Polynomial{}, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}

	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = x.AtVec(i)
	}
	return Polynomial{Origin: float64(pledgeYear), Coeffs: coeffs}, nil
}

// Point is one year of a reduction path.
type Point struct {
	Year int
	Kt   float64
}

// Path is a fitted reduction trajectory for one temperature threshold.
type Path struct {
	ThresholdC  float64
	Probability string
	BudgetKt    float64
	Polynomial  Polynomial
	Points      []Point
}

// Evaluate samples the polynomial at every integer year in [from, to].
func Evaluate(poly Polynomial, from, to int) []Point {
	if to < from {
		return nil
	}
	points := make([]Point, 0, to-from+1)
	for year := from; year <= to; year++ {
		points = append(points, Point{Year: year, Kt: poly.Eval(float64(year))})
	}
	return points
}

// Paths fits and evaluates one path per threshold, using the pledge-year
// budget of the row with the given probability. Points span the pledge year
// through ceiling, independent of the zero year.
func Paths(rows []budget.CityRow, thresholds []float64, probability string, emissionKt float64, params budget.Params, ceiling int, model string) ([]Path, error) {
	if ceiling < params.PledgeYear {
		return nil, fmt.Errorf("%w: ceiling %d, pledge %d", ErrInvalidCeiling, ceiling, params.PledgeYear)
	}

	paths := make([]Path, 0, len(thresholds))
	for _, threshold := range thresholds {
		row, ok := budget.Find(rows, threshold, probability)
		if !ok {
			return nil, fmt.Errorf("%w %.1f°C at %s", ErrBudgetNotFound, threshold, probability)
		}

		poly, err := Solve(row.PledgeBudgetKt, emissionKt, params.PledgeYear, params.ZeroYear, model)
		if err != nil {
			return nil, fmt.Errorf("reduction path for %.1f°C: %w", threshold, err)
		}

		paths = append(paths, Path{
			ThresholdC:  threshold,
			Probability: probability,
			BudgetKt:    row.PledgeBudgetKt,
			Polynomial:  poly,
			Points:      Evaluate(poly, params.PledgeYear, ceiling),
		})
	}
	return paths, nil
}
