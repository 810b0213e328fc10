// Package adapters provides adapter implementations between the configuration
// and dataset types and the calculation packages.
package adapters

import (
	"github.com/iwvelando/co2-budget/internal/config"
	"github.com/iwvelando/co2-budget/internal/dataset"
	"github.com/iwvelando/co2-budget/pkg/budget"
	"github.com/iwvelando/co2-budget/pkg/ledger"
)

// StandardShare converts the dataset record of a city.
func StandardShare(share dataset.StandardShare) budget.StandardShare {
	return budget.StandardShare{
		Year:               share.Year,
		Population:         share.Population,
		StandardEmissionsT: share.StandardEmissionsT,
		MeanPerCapitaT:     share.MeanPerCapitaT,
	}
}

// BudgetParams builds the allocation parameters for a city. A configured
// standard factor takes precedence over the one derived from the dataset.
func BudgetParams(conf config.BudgetConfig, city dataset.City) budget.Params {
	factor := conf.StandardFactor
	if factor == 0 {
		factor = StandardShare(city.StandardShare).Factor()
	}
	return budget.Params{
		GlobalPopulation: conf.GlobalPopulation,
		PledgeYear:       conf.PledgeYear,
		EstimateYear:     conf.EstimateYear,
		ZeroYear:         conf.ZeroYear,
		StandardFactor:   factor,
	}
}

// GlobalRows converts the global budget table.
func GlobalRows(budgets []dataset.GlobalBudget) []budget.GlobalRow {
	if budgets == nil {
		return nil
	}

	rows := make([]budget.GlobalRow, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, budget.GlobalRow{
			ThresholdC:  b.ThresholdC,
			Probability: b.Probability,
			BudgetKt:    b.BudgetKt,
		})
	}
	return rows
}

// GlobalEmissions converts the global emissions table (tonnes).
func GlobalEmissions(emissions []dataset.GlobalEmission) []budget.YearValue {
	if emissions == nil {
		return nil
	}

	values := make([]budget.YearValue, 0, len(emissions))
	for _, e := range emissions {
		values = append(values, budget.YearValue{Year: e.Year, Value: e.Tonnes})
	}
	return values
}

// LedgerRows splits the city emissions into historical and projected rows.
func LedgerRows(city dataset.City) (historical, projected []ledger.Row) {
	for _, e := range city.EmissionsByCategory(dataset.CategoryHistorical) {
		historical = append(historical, ledger.Row{Year: e.Year, Kt: e.Kt})
	}
	for _, e := range city.EmissionsByCategory(dataset.CategoryProjected) {
		projected = append(projected, ledger.Row{Year: e.Year, Kt: e.Kt})
	}
	return historical, projected
}
