package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 476.35, 476.4},
		{"Round down below midpoint", 5756.4489, 5756.4},
		{"No rounding needed", 577.5, 577.5},
		{"Large number", 13512.8542, 13512.9},
		{"Negative number round up", -1.25, -1.3},
		{"Negative number round down", -1.24, -1.2},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.01, 0.0},
		{"Very small negative", -0.01, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundToKeepsNonFinite(t *testing.T) {
	if !math.IsNaN(RoundTo(math.NaN(), 1)) {
		t.Error("RoundTo(NaN) should stay NaN")
	}
	if !math.IsInf(RoundTo(math.Inf(1), 1), 1) {
		t.Error("RoundTo(+Inf) should stay +Inf")
	}
}

func TestRoundInt(t *testing.T) {
	tests := []struct {
		input    float64
		expected int
	}{
		{17.5, 18},
		{17.49, 17},
		{14.2857, 14},
		{-2.5, -3},
		{0, 0},
	}

	for _, tt := range tests {
		if result := RoundInt(tt.input); result != tt.expected {
			t.Errorf("RoundInt(%v) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small positive", 0.001, true},
		{"Very small negative", -0.001, true},
		{"Above tolerance", 0.2, false},
		{"Below negative tolerance", -0.2, false},
		{"Large positive", 100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	if got := CalculatePercentage(700, 4000); math.Abs(got-17.5) > 1e-9 {
		t.Errorf("CalculatePercentage(700, 4000) = %v, expected 17.5", got)
	}
	if got := CalculatePercentage(1, 0); got != 0 {
		t.Errorf("CalculatePercentage(1, 0) = %v, expected 0", got)
	}
}
