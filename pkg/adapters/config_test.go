package adapters

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/co2-budget/internal/config"
	"github.com/iwvelando/co2-budget/internal/dataset"
	"github.com/iwvelando/co2-budget/pkg/budget"
	"github.com/iwvelando/co2-budget/pkg/ledger"
)

func testCity() dataset.City {
	return dataset.City{
		ID:         "heidelberg",
		Name:       "Heidelberg",
		Population: 158741,
		StandardShare: dataset.StandardShare{
			Year:               2018,
			Population:         156267,
			StandardEmissionsT: 1117433,
			MeanPerCapitaT:     11.2,
		},
		Emissions: []dataset.Emission{
			{Year: 2016, Kt: 1085, Category: dataset.CategoryHistorical},
			{Year: 2023, Kt: 782.4, Category: dataset.CategoryProjected},
			{Year: 2017, Kt: 1091, Category: dataset.CategoryHistorical},
		},
	}
}

func TestBudgetParams(t *testing.T) {
	conf := config.BudgetConfig{
		GlobalPopulation: 7840000000,
		PledgeYear:       2016,
		EstimateYear:     2020,
		ZeroYear:         2040,
	}

	params := BudgetParams(conf, testCity())
	if params.GlobalPopulation != 7840000000 || params.PledgeYear != 2016 ||
		params.EstimateYear != 2020 || params.ZeroYear != 2040 {
		t.Errorf("BudgetParams() copied wrong years or population: %+v", params)
	}
	if diff := params.StandardFactor - 0.6384637; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("BudgetParams() derived factor = %v, expected about 0.6384637", params.StandardFactor)
	}

	conf.StandardFactor = 0.5
	if got := BudgetParams(conf, testCity()).StandardFactor; got != 0.5 {
		t.Errorf("BudgetParams() with override = %v, expected 0.5", got)
	}
}

func TestBudgetParamsWithoutShare(t *testing.T) {
	city := testCity()
	city.StandardShare = dataset.StandardShare{}

	params := BudgetParams(config.BudgetConfig{PledgeYear: 2016, EstimateYear: 2020}, city)
	if params.StandardFactor != 0 {
		t.Errorf("expected factor 0 for a missing share, got %v", params.StandardFactor)
	}
	if params.Validate() == nil {
		t.Error("expected the zero factor to fail validation")
	}
}

func TestGlobalConversions(t *testing.T) {
	rows := GlobalRows([]dataset.GlobalBudget{{ThresholdC: 2.0, Probability: "83%", BudgetKt: 900000000}})
	want := []budget.GlobalRow{{ThresholdC: 2.0, Probability: "83%", BudgetKt: 900000000}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("GlobalRows() mismatch (-want +got):\n%s", diff)
	}

	values := GlobalEmissions([]dataset.GlobalEmission{{Year: 2016, Tonnes: 35460026000}})
	wantValues := []budget.YearValue{{Year: 2016, Value: 35460026000}}
	if diff := cmp.Diff(wantValues, values); diff != "" {
		t.Errorf("GlobalEmissions() mismatch (-want +got):\n%s", diff)
	}

	if GlobalRows(nil) != nil || GlobalEmissions(nil) != nil {
		t.Error("expected nil for nil input")
	}
}

func TestLedgerRows(t *testing.T) {
	historical, projected := LedgerRows(testCity())

	wantHistorical := []ledger.Row{{Year: 2016, Kt: 1085}, {Year: 2017, Kt: 1091}}
	if diff := cmp.Diff(wantHistorical, historical); diff != "" {
		t.Errorf("historical mismatch (-want +got):\n%s", diff)
	}
	wantProjected := []ledger.Row{{Year: 2023, Kt: 782.4}}
	if diff := cmp.Diff(wantProjected, projected); diff != "" {
		t.Errorf("projected mismatch (-want +got):\n%s", diff)
	}
}
