// Package years provides helpers for the calendar years used as series keys.
package years

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FromTime returns the calendar year of t. This is the only place where a
// wall-clock value becomes a "now" year; callers pass the result explicitly.
func FromTime(t time.Time) int {
	return t.Year()
}

// Range returns every year from start to end inclusive.
func Range(start, end int) ([]int, error) {
	if end < start {
		return nil, fmt.Errorf("invalid year range %d-%d: end before start", start, end)
	}
	list := make([]int, 0, end-start+1)
	for year := start; year <= end; year++ {
		list = append(list, year)
	}
	return list, nil
}

// MustRange is Range for literal ranges known to be valid; it panics on error.
// This is intended for use in tests.
func MustRange(start, end int) []int {
	list, err := Range(start, end)
	if err != nil {
		panic(err)
	}
	return list
}

// ParseRange parses a "START-END" string such as "2025-2050".
func ParseRange(value string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid year range %q: expected START-END", value)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start year in %q: %w", value, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end year in %q: %w", value, err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("invalid year range %q: end before start", value)
	}
	return start, end, nil
}
