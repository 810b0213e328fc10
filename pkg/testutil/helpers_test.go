package testutil

import (
	"testing"

	"github.com/iwvelando/co2-budget/internal/report"
)

func TestFindBudget(t *testing.T) {
	r := &report.Report{
		Budgets: []report.BudgetRow{
			{ThresholdC: 1.5, Probability: "67%", PledgeBudgetKt: 1},
			{ThresholdC: 1.5, Probability: "83%", PledgeBudgetKt: 2},
			{ThresholdC: 2.0, Probability: "83%", PledgeBudgetKt: 3},
		},
	}

	tests := []struct {
		name        string
		threshold   float64
		probability string
		expected    float64
		expectFound bool
	}{
		{"first row", 1.5, "67%", 1, true},
		{"same threshold other probability", 1.5, "83%", 2, true},
		{"last row", 2.0, "83%", 3, true},
		{"missing probability", 2.0, "67%", 0, false},
		{"missing threshold", 1.7, "83%", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := FindBudget(r, tt.threshold, tt.probability)
			if !tt.expectFound {
				if row != nil {
					t.Errorf("FindBudget() = %+v, expected nil", row)
				}
				return
			}
			if row == nil {
				t.Fatal("FindBudget() returned nil")
			}
			if row.PledgeBudgetKt != tt.expected {
				t.Errorf("FindBudget() budget = %v, expected %v", row.PledgeBudgetKt, tt.expected)
			}
		})
	}
}

func TestFindBudgetReturnsReference(t *testing.T) {
	r := &report.Report{Budgets: []report.BudgetRow{{ThresholdC: 2.0, Probability: "83%"}}}

	FindBudget(r, 2.0, "83%").ExhaustionYear = 2033
	if r.Budgets[0].ExhaustionYear != 2033 {
		t.Error("FindBudget() should return a pointer into the report")
	}
}

func TestFindPath(t *testing.T) {
	r := &report.Report{ReductionPaths: []report.ReductionPath{{ThresholdC: 1.7}, {ThresholdC: 2.0, Model: "cubic"}}}

	if p := FindPath(r, 2.0); p == nil || p.Model != "cubic" {
		t.Errorf("FindPath(2.0) = %+v", p)
	}
	if p := FindPath(r, 1.5); p != nil {
		t.Errorf("FindPath(1.5) = %+v, expected nil", p)
	}
}

func TestPtr(t *testing.T) {
	p := Ptr(700)
	if p == nil || *p != 700 {
		t.Errorf("Ptr(700) = %v", p)
	}
}
