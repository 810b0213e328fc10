// Package report defines the data structures of a city CO2 budget report and
// includes functions for computing them from the reference dataset.
package report

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/co2-budget/internal/config"
	"github.com/iwvelando/co2-budget/internal/dataset"
	"github.com/iwvelando/co2-budget/pkg/adapters"
	"github.com/iwvelando/co2-budget/pkg/budget"
	"github.com/iwvelando/co2-budget/pkg/constants"
	"github.com/iwvelando/co2-budget/pkg/format"
	"github.com/iwvelando/co2-budget/pkg/ledger"
	"github.com/iwvelando/co2-budget/pkg/mathutil"
	"github.com/iwvelando/co2-budget/pkg/pathsolver"
	"github.com/iwvelando/co2-budget/pkg/scenario"
	"github.com/iwvelando/co2-budget/pkg/validation"
	"github.com/iwvelando/co2-budget/pkg/years"
	"go.uber.org/zap"
)

// Labels of the non-budget comparison bars.
const (
	LabelEmitted   = "emitted so far"
	LabelProjected = "projected"
)

// Artifact names per level of detail.
const (
	ArtifactMethodology            = "methodology"
	ArtifactMethodologySimple      = "methodology_simple"
	ArtifactBudgetTable            = "budget_table"
	ArtifactBudgetTableSimple      = "budget_table_simple"
	ArtifactComparisonChart        = "comparison_chart"
	ArtifactTimeChart              = "time_chart"
	ArtifactCumulativeChart        = "cumulative_chart"
	ArtifactEmissionReductionChart = "emission_reduction_chart"
)

// UserError is an error caused by the request rather than by the data or the
// configuration.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Request selects what a report is computed for. NowYear is the reference
// year of the current budgets and is never derived from the clock here.
type Request struct {
	City          string `json:"city"`
	LevelOfDetail string `json:"levelOfDetail"`
	NowYear       int    `json:"nowYear"`
}

// BudgetRow is one row of the full budget table.
type BudgetRow struct {
	ThresholdC      float64 `json:"thresholdC"`
	Probability     string  `json:"probability"`
	GlobalBudgetKt  float64 `json:"globalBudgetKt"`
	PledgeBudgetKt  float64 `json:"pledgeBudgetKt"`
	CurrentBudgetKt float64 `json:"currentBudgetKt"`
	// ExhaustionYear is 0 when the budget is not exhausted.
	ExhaustionYear int `json:"exhaustionYear"`
}

// SimpleRow is one row of the brief budget table.
type SimpleRow struct {
	ThresholdC      float64 `json:"thresholdC"`
	CurrentBudgetKt float64 `json:"currentBudgetKt"`
	ExhaustionYear  int     `json:"exhaustionYear"`
}

// ComparisonBar compares a pledge-year budget with emitted and projected totals.
type ComparisonBar struct {
	Label string  `json:"label"`
	Kt    float64 `json:"kt"`
}

// EmissionRow is one year of the city emissions series.
type EmissionRow struct {
	Year         int     `json:"year"`
	Kt           float64 `json:"kt"`
	Category     string  `json:"category"`
	CumulativeKt float64 `json:"cumulativeKt"`
}

// PathPoint is one year of a reduction path.
type PathPoint struct {
	Year int     `json:"year"`
	Kt   float64 `json:"kt"`
}

// ReductionPath is a fitted reduction trajectory.
type ReductionPath struct {
	ThresholdC  float64     `json:"thresholdC"`
	Probability string      `json:"probability"`
	BudgetKt    float64     `json:"budgetKt"`
	Model       string      `json:"model"`
	Points      []PathPoint `json:"points"`
}

// At returns the path value of the given year.
func (p ReductionPath) At(year int) (float64, bool) {
	for _, pt := range p.Points {
		if pt.Year == year {
			return pt.Kt, true
		}
	}
	return 0, false
}

// ScenarioRow is one year of the scenario table; nil marks an ended trajectory.
type ScenarioRow struct {
	Year            int      `json:"year"`
	Percentage      *float64 `json:"percentage"`
	Linear          *float64 `json:"linear"`
	BusinessAsUsual *float64 `json:"businessAsUsual"`
}

// Scenarios is the scenario table with its calibration.
type Scenarios struct {
	ThresholdC        float64       `json:"thresholdC"`
	ReferenceBudgetKt float64       `json:"referenceBudgetKt"`
	StartKt           float64       `json:"startKt"`
	PercentageRate    int           `json:"percentageRate"`
	LinearRate        float64       `json:"linearRate"`
	LinearYears       int           `json:"linearYears"`
	Rows              []ScenarioRow `json:"rows"`
}

// At returns the scenario row of the given year. A nil table has no rows.
func (s *Scenarios) At(year int) (ScenarioRow, bool) {
	if s == nil {
		return ScenarioRow{}, false
	}
	for _, row := range s.Rows {
		if row.Year == year {
			return row, true
		}
	}
	return ScenarioRow{}, false
}

// Report holds everything computed for one city.
type Report struct {
	ID              string          `json:"id"`
	City            string          `json:"city"`
	CityName        string          `json:"cityName"`
	NowYear         int             `json:"nowYear"`
	PledgeYear      int             `json:"pledgeYear"`
	LevelOfDetail   string          `json:"levelOfDetail"`
	PopulationShare float64         `json:"populationShare"`
	StandardFactor  float64         `json:"standardFactor"`
	Budgets         []BudgetRow     `json:"budgets"`
	SimpleBudgets   []SimpleRow     `json:"simpleBudgets"`
	Comparison      []ComparisonBar `json:"comparison"`
	Emissions       []EmissionRow   `json:"emissions"`
	ReductionPaths  []ReductionPath `json:"reductionPaths"`
	Scenarios       *Scenarios      `json:"scenarios"`
	Artifacts       []string        `json:"artifacts"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// Artifacts returns the artifact names produced for a level of detail.
func Artifacts(detail string) []string {
	if detail == constants.DetailFull {
		return []string{
			ArtifactMethodology,
			ArtifactBudgetTable,
			ArtifactComparisonChart,
			ArtifactTimeChart,
			ArtifactCumulativeChart,
			ArtifactEmissionReductionChart,
		}
	}
	return []string{
		ArtifactMethodologySimple,
		ArtifactBudgetTableSimple,
		ArtifactTimeChart,
	}
}

// GetReport computes the report of one city.
func GetReport(logger *zap.Logger, snapshot *dataset.Snapshot, conf config.Configuration, request Request) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	const op = "report.GetReport"

	if request.LevelOfDetail == "" {
		request.LevelOfDetail = constants.DetailBrief
	}
	if err := validation.ValidateDetailLevel(request.LevelOfDetail); err != nil {
		return nil, &UserError{Message: err.Error(), Err: err}
	}

	city, err := snapshot.City(request.City)
	if err != nil {
		if errors.Is(err, dataset.ErrUnsupportedCity) {
			return nil, &UserError{Message: err.Error(), Err: err}
		}
		return nil, err
	}

	report := &Report{
		ID:            uuid.NewString(),
		City:          city.ID,
		CityName:      city.Name,
		NowYear:       request.NowYear,
		LevelOfDetail: request.LevelOfDetail,
		Artifacts:     Artifacts(request.LevelOfDetail),
	}
	logger.Debug(fmt.Sprintf("computing report %s for %s", report.ID, city.Name),
		zap.String("op", op),
		zap.Int("nowYear", request.NowYear),
		zap.String("detail", request.LevelOfDetail),
	)

	params := adapters.BudgetParams(conf.Budget, city)
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("budget parameters of %s: %w", city.Name, err)
	}
	report.StandardFactor = params.StandardFactor
	report.PledgeYear = params.PledgeYear

	popShare, err := budget.PopulationShare(city.Population, params.GlobalPopulation)
	if err != nil {
		return nil, fmt.Errorf("population share of %s: %w", city.Name, err)
	}
	report.PopulationShare = popShare

	rows, err := budget.Allocate(
		adapters.GlobalRows(snapshot.GlobalBudgets()),
		adapters.GlobalEmissions(snapshot.GlobalEmissions()),
		params,
		popShare,
	)
	if err != nil {
		return nil, fmt.Errorf("allocating budgets of %s: %w", city.Name, err)
	}

	series, err := ledger.Build(adapters.LedgerRows(city))
	if err != nil {
		return nil, fmt.Errorf("emissions of %s: %w", city.Name, err)
	}
	for _, year := range series.Overrides() {
		warning := fmt.Sprintf("projected emissions replace historical emissions for %d", year)
		logger.Warn(warning, zap.String("op", op), zap.String("city", city.ID))
		report.Warnings = append(report.Warnings, warning)
	}

	for i := range rows {
		rows[i].CurrentBudgetKt, err = ledger.CurrentBudget(series, rows[i].PledgeBudgetKt, request.NowYear)
		if err != nil {
			return nil, fmt.Errorf("current budget of %s: %w", city.Name, err)
		}
		rows[i].ExhaustionYear = ledger.YearBudgetExhausted(series, rows[i].PledgeBudgetKt)
	}

	report.Budgets = budgetRows(rows)
	report.SimpleBudgets = simpleRows(rows, conf.Report.ReferenceProbability)
	report.Emissions = emissionRows(series)
	report.Comparison = comparisonBars(rows, series, conf.Report.ReferenceProbability)

	pledgeEmission, err := series.Value(params.PledgeYear)
	if err != nil {
		return nil, fmt.Errorf("pledge year emission of %s: %w", city.Name, err)
	}
	paths, err := pathsolver.Paths(rows, conf.Report.PathThresholds, conf.Report.ReferenceProbability,
		pledgeEmission, params, conf.Report.ForecastCeiling, conf.Report.PathModel)
	if err != nil {
		return nil, fmt.Errorf("reduction paths of %s: %w", city.Name, err)
	}
	report.ReductionPaths = reductionPaths(paths, conf.Report.PathModel)

	scenarios, warning, err := scenarioTable(rows, series, conf.Report)
	if err != nil {
		return nil, fmt.Errorf("scenarios of %s: %w", city.Name, err)
	}
	if warning != "" {
		logger.Warn(warning, zap.String("op", op), zap.String("city", city.ID))
		report.Warnings = append(report.Warnings, warning)
	}
	report.Scenarios = scenarios

	logger.Debug(fmt.Sprintf("computed report %s for %s", report.ID, city.Name),
		zap.String("op", op),
		zap.Int("budgets", len(report.Budgets)),
		zap.Int("paths", len(report.ReductionPaths)),
	)
	return report, nil
}

func budgetRows(rows []budget.CityRow) []BudgetRow {
	out := make([]BudgetRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, BudgetRow{
			ThresholdC:      row.ThresholdC,
			Probability:     row.Probability,
			GlobalBudgetKt:  row.BudgetKt,
			PledgeBudgetKt:  row.PledgeBudgetKt,
			CurrentBudgetKt: row.CurrentBudgetKt,
			ExhaustionYear:  row.ExhaustionYear,
		})
	}
	return out
}

func simpleRows(rows []budget.CityRow, probability string) []SimpleRow {
	var out []SimpleRow
	for _, row := range budget.Filter(rows, probability) {
		out = append(out, SimpleRow{
			ThresholdC:      row.ThresholdC,
			CurrentBudgetKt: mathutil.RoundTo(row.CurrentBudgetKt, constants.DisplayPrecision),
			ExhaustionYear:  row.ExhaustionYear,
		})
	}
	return out
}

func comparisonBars(rows []budget.CityRow, series ledger.Series, probability string) []ComparisonBar {
	var bars []ComparisonBar
	for _, row := range budget.Filter(rows, probability) {
		bars = append(bars, ComparisonBar{Label: format.Threshold(row.ThresholdC), Kt: row.PledgeBudgetKt})
	}
	historical, projected := series.Totals()
	return append(bars,
		ComparisonBar{Label: LabelEmitted, Kt: historical},
		ComparisonBar{Label: LabelProjected, Kt: projected},
	)
}

func emissionRows(series ledger.Series) []EmissionRow {
	entries := series.Entries()
	out := make([]EmissionRow, 0, len(entries))
	for _, e := range entries {
		out = append(out, EmissionRow{
			Year:         e.Year,
			Kt:           e.Kt,
			Category:     string(e.Category),
			CumulativeKt: e.CumulativeKt,
		})
	}
	return out
}

func reductionPaths(paths []pathsolver.Path, model string) []ReductionPath {
	out := make([]ReductionPath, 0, len(paths))
	for _, p := range paths {
		points := make([]PathPoint, 0, len(p.Points))
		for _, pt := range p.Points {
			points = append(points, PathPoint{Year: pt.Year, Kt: pt.Kt})
		}
		out = append(out, ReductionPath{
			ThresholdC:  p.ThresholdC,
			Probability: p.Probability,
			BudgetKt:    p.BudgetKt,
			Model:       model,
			Points:      points,
		})
	}
	return out
}

// scenarioTable returns a warning instead of a table when the reference
// budget is used up; missing coverage of the window start is an error.
func scenarioTable(rows []budget.CityRow, series ledger.Series, conf config.ReportConfig) (*Scenarios, string, error) {
	row, ok := budget.Find(rows, conf.ScenarioThreshold, conf.ReferenceProbability)
	if !ok {
		return nil, "", fmt.Errorf("%w %.1f°C at %s", pathsolver.ErrBudgetNotFound, conf.ScenarioThreshold, conf.ReferenceProbability)
	}

	window, err := years.Range(conf.ScenarioStartYear, conf.ScenarioEndYear)
	if err != nil {
		return nil, "", err
	}
	startKt, err := series.Value(conf.ScenarioStartYear)
	if err != nil {
		return nil, "", err
	}

	table, err := scenario.Simulate(window, startKt, row.CurrentBudgetKt)
	if errors.Is(err, scenario.ErrNonPositiveInput) {
		if row.CurrentBudgetKt <= 0 {
			return nil, fmt.Sprintf("no reduction scenarios: the %s budget at %s is exhausted (%s kt left)",
				format.Threshold(row.ThresholdC), row.Probability, format.Kilotonnes(row.CurrentBudgetKt)), nil
		}
		return nil, fmt.Sprintf("no reduction scenarios: emissions in %d are %s kt, there is nothing to reduce",
			conf.ScenarioStartYear, format.Kilotonnes(startKt)), nil
	}
	if err != nil {
		return nil, "", err
	}

	out := &Scenarios{
		ThresholdC:        row.ThresholdC,
		ReferenceBudgetKt: row.CurrentBudgetKt,
		StartKt:           startKt,
		PercentageRate:    table.PercentageRate,
		LinearRate:        table.LinearRate,
		LinearYears:       table.LinearYears,
		Rows:              make([]ScenarioRow, 0, len(table.Years)),
	}
	for i, year := range table.Years {
		out.Rows = append(out.Rows, ScenarioRow{
			Year:            year,
			Percentage:      table.Percentage[i],
			Linear:          table.Linear[i],
			BusinessAsUsual: table.BusinessAsUsual[i],
		})
	}
	return out, "", nil
}
