// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/co2-budget/internal/report"
)

// FindBudget finds a budget row by threshold and probability.
// Returns a pointer to the row if found, nil otherwise.
func FindBudget(r *report.Report, thresholdC float64, probability string) *report.BudgetRow {
	for i := range r.Budgets {
		if r.Budgets[i].ThresholdC == thresholdC && r.Budgets[i].Probability == probability {
			return &r.Budgets[i]
		}
	}
	return nil
}

// FindPath finds a reduction path by threshold.
func FindPath(r *report.Report, thresholdC float64) *report.ReductionPath {
	for i := range r.ReductionPaths {
		if r.ReductionPaths[i].ThresholdC == thresholdC {
			return &r.ReductionPaths[i]
		}
	}
	return nil
}

// Ptr returns a pointer to v, for building scenario rows.
func Ptr(v float64) *float64 {
	return &v
}
