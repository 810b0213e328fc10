// Package budget downscales global CO2 budgets to the scale of a single city.
//
// A global budget is published as "remaining from the estimate year onwards".
// Allocation adds back what was emitted globally between the pledge year and
// the estimate year, takes the city's population share of the total and
// corrects it by the share of per-capita emissions the local accounting
// standard captures.
package budget

import (
	"errors"
	"fmt"

	"github.com/iwvelando/co2-budget/pkg/constants"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidStandardFactor is returned when the standard-accounting
	// conversion factor is not strictly between 0 and 1.
	ErrInvalidStandardFactor = errors.New("standard-accounting factor must be strictly between 0 and 1")

	// ErrInvalidPopulationShare is returned for a non-positive or >1 population share.
	ErrInvalidPopulationShare = errors.New("population share must be in (0, 1]")

	// ErrMissingGlobalYear is returned when the global emissions table does not
	// cover a year between the pledge year and the estimate year.
	ErrMissingGlobalYear = errors.New("global emissions missing for year")

	// ErrInvalidHorizon is returned when the estimate year precedes the pledge year.
	ErrInvalidHorizon = errors.New("estimate year must not precede pledge year")
)

// Params holds the budget accounting parameters. Values are immutable once
// built; see Validate for the preconditions.
type Params struct {
	GlobalPopulation int64
	PledgeYear       int
	EstimateYear     int
	ZeroYear         int
	StandardFactor   float64
}

// Validate checks the configuration preconditions of an allocation.
func (p Params) Validate() error {
	if !(p.StandardFactor > 0 && p.StandardFactor < 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidStandardFactor, p.StandardFactor)
	}
	if p.EstimateYear < p.PledgeYear {
		return fmt.Errorf("%w: pledge %d, estimate %d", ErrInvalidHorizon, p.PledgeYear, p.EstimateYear)
	}
	return nil
}

// StandardShare describes the year in which both the standard-accounted
// emissions and the mean true per-capita emissions of a city are known.
type StandardShare struct {
	Year               int
	Population         int64
	StandardEmissionsT float64
	MeanPerCapitaT     float64
}

// Factor returns the fraction of true per-capita emissions covered by the
// accounting standard: standard emissions per person over mean emissions per person.
func (s StandardShare) Factor() float64 {
	if s.Population <= 0 || s.MeanPerCapitaT == 0 {
		return 0
	}
	return s.StandardEmissionsT / float64(s.Population) / s.MeanPerCapitaT
}

// GlobalRow is one entry of the global budget table.
type GlobalRow struct {
	ThresholdC  float64
	Probability string
	BudgetKt    float64
}

// CityRow is the city-scale budget for one threshold/probability combination.
type CityRow struct {
	GlobalRow
	PledgeBudgetKt  float64
	CurrentBudgetKt float64
	// ExhaustionYear is the first year cumulative emissions exceed the pledge
	// year budget, or 0 when the budget lasts beyond the known horizon.
	ExhaustionYear int
}

// Exhausted reports whether an exhaustion year was found.
func (r CityRow) Exhausted() bool {
	return r.ExhaustionYear != 0
}

// YearValue is a yearly amount, e.g. global emissions in tonnes.
type YearValue struct {
	Year  int
	Value float64
}

// PopulationShare returns city population over global population.
func PopulationShare(cityPopulation, globalPopulation int64) (float64, error) {
	if cityPopulation <= 0 || globalPopulation <= 0 || cityPopulation > globalPopulation {
		return 0, fmt.Errorf("%w: city %d, global %d", ErrInvalidPopulationShare, cityPopulation, globalPopulation)
	}
	return float64(cityPopulation) / float64(globalPopulation), nil
}

// EmittedSincePledge sums global emissions in tonnes over
// [pledgeYear, estimateYear-1] and returns the total in kilotonnes.
func EmittedSincePledge(globalEmissions []YearValue, pledgeYear, estimateYear int) (float64, error) {
	byYear := make(map[int]float64, len(globalEmissions))
	for _, e := range globalEmissions {
		byYear[e.Year] = e.Value
	}

	values := make([]float64, 0, estimateYear-pledgeYear)
	for year := pledgeYear; year < estimateYear; year++ {
		v, ok := byYear[year]
		if !ok {
			return 0, fmt.Errorf("%w %d", ErrMissingGlobalYear, year)
		}
		values = append(values, v)
	}
	return floats.Sum(values) / constants.TonnesPerKilotonne, nil
}

// Allocate computes the pledge-year budget of a city for every row of the
// global budget table. Rows keep the order of globals. CurrentBudgetKt and
// ExhaustionYear are left to the emissions ledger.
func Allocate(globals []GlobalRow, globalEmissions []YearValue, params Params, popShare float64) ([]CityRow, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !(popShare > 0 && popShare <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPopulationShare, popShare)
	}

	emitted, err := EmittedSincePledge(globalEmissions, params.PledgeYear, params.EstimateYear)
	if err != nil {
		return nil, err
	}

	rows := make([]CityRow, 0, len(globals))
	for _, g := range globals {
		sincePledge := g.BudgetKt + emitted
		rows = append(rows, CityRow{
			GlobalRow:      g,
			PledgeBudgetKt: sincePledge * popShare * params.StandardFactor,
		})
	}
	return rows, nil
}

// Find returns the row matching the threshold and probability.
func Find(rows []CityRow, thresholdC float64, probability string) (CityRow, bool) {
	for _, r := range rows {
		if r.ThresholdC == thresholdC && r.Probability == probability {
			return r, true
		}
	}
	return CityRow{}, false
}

// Filter returns the rows with the given probability, in order.
func Filter(rows []CityRow, probability string) []CityRow {
	var filtered []CityRow
	for _, r := range rows {
		if r.Probability == probability {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
