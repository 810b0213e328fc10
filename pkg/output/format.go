// Package output provides utilities for formatting and displaying budget reports.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/iwvelando/co2-budget/internal/report"
	"github.com/iwvelando/co2-budget/pkg/constants"
	"github.com/iwvelando/co2-budget/pkg/format"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
// The sections follow the artifacts of the report's level of detail.
func PrettyFormat(w io.Writer, r *report.Report) error {
	pw := &prettyWriter{w: w}

	pw.printf("--- CO2 budget report for %s (%d) ---\n", r.CityName, r.NowYear)
	if r.LevelOfDetail == constants.DetailFull {
		pw.printf("Standard factor: %.4f | Population share: %.8f\n", r.StandardFactor, r.PopulationShare)
	}
	pw.printf("\n")

	if r.LevelOfDetail == constants.DetailFull {
		pw.printf("Threshold | Probability | Budget %d (kt) | Budget %d (kt) | Exhausted\n", r.PledgeYear, r.NowYear)
		pw.printf("_________ | ___________ | ________________ | ________________ | _________\n")
		for _, row := range r.Budgets {
			pw.printf("%s | %s | %s | %s | %s\n",
				format.Threshold(row.ThresholdC), row.Probability,
				format.Kilotonnes(row.PledgeBudgetKt), format.Kilotonnes(row.CurrentBudgetKt),
				format.ExhaustionYear(row.ExhaustionYear))
		}
		pw.printf("\n")

		pw.printf("Comparison | Amount (kt)\n")
		pw.printf("__________ | ___________\n")
		for _, bar := range r.Comparison {
			pw.printf("%s | %s\n", bar.Label, format.Kilotonnes(bar.Kt))
		}
		pw.printf("\n")
	} else {
		pw.printf("Threshold | Budget %d (kt) | Exhausted\n", r.NowYear)
		pw.printf("_________ | ________________ | _________\n")
		for _, row := range r.SimpleBudgets {
			pw.printf("%s | %s | %s\n",
				format.Threshold(row.ThresholdC), format.Kilotonnes(row.CurrentBudgetKt),
				format.ExhaustionYear(row.ExhaustionYear))
		}
		pw.printf("\n")
	}

	pw.printf("Year | Emissions (kt) | Cumulative (kt)")
	for _, path := range r.ReductionPaths {
		pw.printf(" | Path %s (kt)", format.Threshold(path.ThresholdC))
	}
	pw.printf("\n")
	for _, year := range timeline(r) {
		emission, ok := emissionAt(r, year)
		emissionText, cumulativeText := "", ""
		if ok {
			emissionText = format.Kilotonnes(emission.Kt) + " (" + emission.Category + ")"
			cumulativeText = format.Kilotonnes(emission.CumulativeKt)
		}
		pw.printf("%d | %s | %s", year, emissionText, cumulativeText)
		for _, path := range r.ReductionPaths {
			pw.printf(" | %s", format.Optional(pathAt(path, year)))
		}
		pw.printf("\n")
	}

	if r.LevelOfDetail == constants.DetailFull && r.Scenarios != nil {
		s := r.Scenarios
		pw.printf("\nScenarios for %s, %s kt from %d on\n",
			format.Threshold(s.ThresholdC), format.Kilotonnes(s.ReferenceBudgetKt), r.NowYear)
		pw.printf("Year | -%d%% per year | -%s kt per year | Business as usual\n",
			s.PercentageRate, format.Kilotonnes(s.LinearRate))
		for _, row := range s.Rows {
			pw.printf("%d | %s | %s | %s\n", row.Year,
				format.Optional(row.Percentage), format.Optional(row.Linear), format.Optional(row.BusinessAsUsual))
		}
	}

	for _, warning := range r.Warnings {
		pw.printf("\nWarning: %s", warning)
	}
	if len(r.Warnings) > 0 {
		pw.printf("\n")
	}
	return pw.err
}

type prettyWriter struct {
	w   io.Writer
	err error
}

func (pw *prettyWriter) printf(layout string, args ...interface{}) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, layout, args...)
}

// CsvFormat writes the budget table followed by a blank line and the yearly
// table in comma-separated value format.
func CsvFormat(w io.Writer, r *report.Report) error {
	cw := csv.NewWriter(w)

	records := [][]string{{"threshold_c", "probability", "global_budget_kt", "pledge_budget_kt", "current_budget_kt", "exhaustion_year"}}
	for _, row := range r.Budgets {
		exhaustion := ""
		if row.ExhaustionYear != 0 {
			exhaustion = strconv.Itoa(row.ExhaustionYear)
		}
		records = append(records, []string{
			number(row.ThresholdC), row.Probability, number(row.GlobalBudgetKt),
			number(row.PledgeBudgetKt), number(row.CurrentBudgetKt), exhaustion,
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	header := []string{"year", "emissions_kt", "category", "cumulative_kt"}
	for _, path := range r.ReductionPaths {
		header = append(header, fmt.Sprintf("path_%s_kt", number(path.ThresholdC)))
	}
	header = append(header, "percentage_kt", "linear_kt", "business_as_usual_kt")
	records = [][]string{header}

	for _, year := range timeline(r) {
		record := []string{strconv.Itoa(year), "", "", ""}
		if emission, ok := emissionAt(r, year); ok {
			record[1] = number(emission.Kt)
			record[2] = emission.Category
			record[3] = number(emission.CumulativeKt)
		}
		for _, path := range r.ReductionPaths {
			record = append(record, optionalNumber(pathAt(path, year)))
		}
		var percentage, linear, bau *float64
		if row, ok := r.Scenarios.At(year); ok {
			percentage, linear, bau = row.Percentage, row.Linear, row.BusinessAsUsual
		}
		record = append(record, optionalNumber(percentage), optionalNumber(linear), optionalNumber(bau))
		records = append(records, record)
	}
	return cw.WriteAll(records)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return number(*v)
}

// timeline returns every year that any yearly table of the report covers.
func timeline(r *report.Report) []int {
	seen := make(map[int]bool)
	for _, e := range r.Emissions {
		seen[e.Year] = true
	}
	for _, path := range r.ReductionPaths {
		for _, pt := range path.Points {
			seen[pt.Year] = true
		}
	}
	if r.Scenarios != nil {
		for _, row := range r.Scenarios.Rows {
			seen[row.Year] = true
		}
	}

	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

func emissionAt(r *report.Report, year int) (report.EmissionRow, bool) {
	for _, e := range r.Emissions {
		if e.Year == year {
			return e, true
		}
	}
	return report.EmissionRow{}, false
}

func pathAt(path report.ReductionPath, year int) *float64 {
	if v, ok := path.At(year); ok {
		return &v
	}
	return nil
}
