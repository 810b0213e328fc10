// Package validation provides configuration validation utilities.
package validation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/co2-budget/pkg/budget"
	"github.com/iwvelando/co2-budget/pkg/constants"
)

// ConfigValidator holds the settings that are checked for suspicious but
// usable combinations.
type ConfigValidator struct {
	PledgeYear           int
	EstimateYear         int
	ZeroYear             int
	ReferenceProbability string
	PathThresholds       []float64
	ForecastCeiling      int
	ScenarioThreshold    float64
	ScenarioStartYear    int
	ScenarioEndYear      int
}

// ValidateAll validates the configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if cv.ReferenceProbability != constants.ProbabilityLikely && cv.ReferenceProbability != constants.ProbabilityVeryLikely {
		warnings = append(warnings, fmt.Sprintf("Reference probability %q is not one of %s or %s",
			cv.ReferenceProbability, constants.ProbabilityLikely, constants.ProbabilityVeryLikely))
	}

	if len(cv.PathThresholds) == 0 {
		warnings = append(warnings, "No path thresholds configured - reports will contain no reduction paths")
	}
	seen := make(map[float64]bool)
	for _, threshold := range cv.PathThresholds {
		if seen[threshold] {
			warnings = append(warnings, fmt.Sprintf("Path threshold %.1f°C is listed more than once", threshold))
		}
		seen[threshold] = true
	}

	if cv.ZeroYear > cv.ForecastCeiling {
		warnings = append(warnings, fmt.Sprintf("Forecast ceiling %d precedes net-zero year %d - paths stop before reaching zero",
			cv.ForecastCeiling, cv.ZeroYear))
	}
	if cv.ZeroYear < cv.ForecastCeiling {
		warnings = append(warnings, fmt.Sprintf("Forecast ceiling %d follows net-zero year %d - path values after %d are extrapolated",
			cv.ForecastCeiling, cv.ZeroYear, cv.ZeroYear))
	}

	if cv.ScenarioStartYear <= cv.EstimateYear {
		warnings = append(warnings, fmt.Sprintf("Scenario window starts in %d, not after the estimate year %d",
			cv.ScenarioStartYear, cv.EstimateYear))
	}
	if cv.ScenarioStartYear < cv.PledgeYear {
		warnings = append(warnings, fmt.Sprintf("Scenario window starts in %d, before the pledge year %d",
			cv.ScenarioStartYear, cv.PledgeYear))
	}

	return warnings
}

// ErrInvalidBudgetTable is returned for global budget tables that contradict
// the published estimates.
var ErrInvalidBudgetTable = errors.New("invalid global budget table")

// ValidateThreshold checks that a temperature threshold is one of the
// published global budget thresholds.
func ValidateThreshold(thresholdC float64) error {
	for _, known := range constants.GlobalThresholds {
		if math.Abs(known-thresholdC) < 1e-9 {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown threshold %.2f°C", ErrInvalidBudgetTable, thresholdC)
}

// NormalizeProbability returns the canonical form of a probability label,
// e.g. "83%" for "83 %".
func NormalizeProbability(label string) (string, error) {
	value, err := parseProbability(label)
	if err != nil {
		return "", fmt.Errorf("%w: unreadable probability %q", ErrInvalidBudgetTable, label)
	}
	canonical := strconv.FormatFloat(value, 'f', -1, 64) + "%"
	if canonical != constants.ProbabilityLikely && canonical != constants.ProbabilityVeryLikely {
		return "", fmt.Errorf("%w: unknown probability %q", ErrInvalidBudgetTable, label)
	}
	return canonical, nil
}

// ValidateGlobalBudgets checks a global budget table. Every row must use a
// published threshold and probability, budgets must strictly grow with the
// threshold and strictly shrink as the probability rises.
func ValidateGlobalBudgets(rows []budget.GlobalRow) error {
	var errs []error

	byProbability := make(map[string][]budget.GlobalRow)
	byThreshold := make(map[float64][]budget.GlobalRow)
	for _, row := range rows {
		if err := ValidateThreshold(row.ThresholdC); err != nil {
			errs = append(errs, err)
			continue
		}
		probability, err := NormalizeProbability(row.Probability)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		row.Probability = probability
		byProbability[probability] = append(byProbability[probability], row)
		byThreshold[row.ThresholdC] = append(byThreshold[row.ThresholdC], row)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, probability := range sortedKeys(byProbability) {
		group := byProbability[probability]
		sort.Slice(group, func(i, j int) bool { return group[i].ThresholdC < group[j].ThresholdC })
		for i := 1; i < len(group); i++ {
			if group[i].BudgetKt <= group[i-1].BudgetKt {
				errs = append(errs, fmt.Errorf("%w: budget at %s does not grow from %.1f°C to %.1f°C",
					ErrInvalidBudgetTable, probability, group[i-1].ThresholdC, group[i].ThresholdC))
			}
		}
	}

	thresholds := make([]float64, 0, len(byThreshold))
	for threshold := range byThreshold {
		thresholds = append(thresholds, threshold)
	}
	sort.Float64s(thresholds)
	for _, threshold := range thresholds {
		group := byThreshold[threshold]
		// Labels are canonical here, so "67%" sorts before "83%".
		sort.Slice(group, func(i, j int) bool { return group[i].Probability < group[j].Probability })
		for i := 1; i < len(group); i++ {
			if group[i].BudgetKt >= group[i-1].BudgetKt {
				errs = append(errs, fmt.Errorf("%w: budget at %.1f°C is not smaller for %s than for %s",
					ErrInvalidBudgetTable, threshold, group[i].Probability, group[i-1].Probability))
			}
		}
	}

	return errors.Join(errs...)
}

func parseProbability(label string) (float64, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), "%"))
	return strconv.ParseFloat(trimmed, 64)
}

func sortedKeys(m map[string][]budget.GlobalRow) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
