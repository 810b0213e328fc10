// Package ledger concatenates historical and projected city emissions into a
// single chronological series with running cumulative totals.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// NotExhausted is returned by YearBudgetExhausted when cumulative emissions
// never exceed the budget within the series.
const NotExhausted = 0

var (
	// ErrYearNotInSeries is returned when a year the caller depends on is not
	// covered by the series.
	ErrYearNotInSeries = errors.New("year not in emissions series")

	// ErrInvalidValue is returned for NaN or infinite emission values.
	ErrInvalidValue = errors.New("invalid emission value")
)

// Category tags a row as measured/estimated or as planned.
type Category string

const (
	Historical Category = "historical"
	Projected  Category = "projected"
)

// Row is a yearly emission in kilotonnes.
type Row struct {
	Year int
	Kt   float64
}

// Entry is a row of the built series.
type Entry struct {
	Year         int
	Kt           float64
	Category     Category
	CumulativeKt float64
}

// Series is an immutable, chronologically ordered emissions series with unique
// years.
type Series struct {
	entries   []Entry
	index     map[int]int
	overrides []int
}

// Build concatenates the historical segment and then the projected segment.
// When a year appears more than once the last-listed row wins, so a projected
// row replaces a historical one for the same year; replaced years are reported
// by Overrides.
func Build(historical, projected []Row) (Series, error) {
	byYear := make(map[int]Entry, len(historical)+len(projected))
	var overrides []int

	add := func(rows []Row, category Category) error {
		for _, r := range rows {
			if math.IsNaN(r.Kt) || math.IsInf(r.Kt, 0) {
				return fmt.Errorf("%w for %s year %d", ErrInvalidValue, category, r.Year)
			}
			if _, exists := byYear[r.Year]; exists {
				overrides = append(overrides, r.Year)
			}
			byYear[r.Year] = Entry{Year: r.Year, Kt: r.Kt, Category: category}
		}
		return nil
	}
	if err := add(historical, Historical); err != nil {
		return Series{}, err
	}
	if err := add(projected, Projected); err != nil {
		return Series{}, err
	}

	entries := make([]Entry, 0, len(byYear))
	for _, e := range byYear {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Year < entries[j].Year })

	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Kt
	}
	cumulative := make([]float64, len(values))
	if len(values) > 0 {
		floats.CumSum(cumulative, values)
	}

	index := make(map[int]int, len(entries))
	for i := range entries {
		entries[i].CumulativeKt = cumulative[i]
		index[entries[i].Year] = i
	}
	sort.Ints(overrides)

	return Series{entries: entries, index: index, overrides: overrides}, nil
}

// Len returns the number of years in the series.
func (s Series) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the series rows in year order.
func (s Series) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Overrides returns the years whose earlier row was replaced during Build.
func (s Series) Overrides() []int {
	return append([]int(nil), s.overrides...)
}

// Entry returns the row of the given year.
func (s Series) Entry(year int) (Entry, bool) {
	i, ok := s.index[year]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Value returns the emission of the given year.
func (s Series) Value(year int) (float64, error) {
	e, ok := s.Entry(year)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrYearNotInSeries, year)
	}
	return e.Kt, nil
}

// Cumulative returns the cumulative emissions up to and including year.
func (s Series) Cumulative(year int) (float64, error) {
	e, ok := s.Entry(year)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrYearNotInSeries, year)
	}
	return e.CumulativeKt, nil
}

// Totals returns the summed historical and projected emissions.
func (s Series) Totals() (historical, projected float64) {
	for _, e := range s.entries {
		switch e.Category {
		case Historical:
			historical += e.Kt
		case Projected:
			projected += e.Kt
		}
	}
	return historical, projected
}

// CurrentBudget returns the pledge-year budget minus cumulative emissions at
// nowYear. nowYear must be part of the series.
func CurrentBudget(s Series, pledgeBudgetKt float64, nowYear int) (float64, error) {
	cumulative, err := s.Cumulative(nowYear)
	if err != nil {
		return 0, fmt.Errorf("current budget for %d: %w", nowYear, err)
	}
	return pledgeBudgetKt - cumulative, nil
}

// YearBudgetExhausted returns the first year whose cumulative emissions
// strictly exceed budgetKt, or NotExhausted.
func YearBudgetExhausted(s Series, budgetKt float64) int {
	for _, e := range s.entries {
		if e.CumulativeKt > budgetKt {
			return e.Year
		}
	}
	return NotExhausted
}
