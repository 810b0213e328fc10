package ledger

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCumulative(t *testing.T) {
	s, err := Build(
		[]Row{{Year: 2016, Kt: 1}, {Year: 2017, Kt: 1}},
		[]Row{{Year: 2018, Kt: 1}, {Year: 2019, Kt: 1}},
	)
	require.NoError(t, err)

	expected := []Entry{
		{Year: 2016, Kt: 1, Category: Historical, CumulativeKt: 1},
		{Year: 2017, Kt: 1, Category: Historical, CumulativeKt: 2},
		{Year: 2018, Kt: 1, Category: Projected, CumulativeKt: 3},
		{Year: 2019, Kt: 1, Category: Projected, CumulativeKt: 4},
	}
	if diff := cmp.Diff(expected, s.Entries()); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, s.Overrides())
}

func TestBuildSortsByYear(t *testing.T) {
	s, err := Build(
		[]Row{{Year: 2017, Kt: 2}, {Year: 2016, Kt: 1}},
		[]Row{{Year: 2019, Kt: 4}, {Year: 2018, Kt: 3}},
	)
	require.NoError(t, err)

	var years []int
	var cumulative []float64
	for _, e := range s.Entries() {
		years = append(years, e.Year)
		cumulative = append(cumulative, e.CumulativeKt)
	}
	assert.Equal(t, []int{2016, 2017, 2018, 2019}, years)
	assert.Equal(t, []float64{1, 3, 6, 10}, cumulative)
}

func TestBuildDuplicateYearProjectedWins(t *testing.T) {
	s, err := Build(
		[]Row{{Year: 2021, Kt: 938}, {Year: 2022, Kt: 998}},
		[]Row{{Year: 2022, Kt: 815.6}, {Year: 2023, Kt: 782.4}},
	)
	require.NoError(t, err)

	require.Equal(t, 3, s.Len())
	entry, ok := s.Entry(2022)
	require.True(t, ok)
	assert.Equal(t, Projected, entry.Category)
	assert.Equal(t, 815.6, entry.Kt)
	assert.Equal(t, []int{2022}, s.Overrides())

	cumulative, err := s.Cumulative(2023)
	require.NoError(t, err)
	assert.InDelta(t, 938+815.6+782.4, cumulative, 1e-9)
}

func TestBuildRejectsInvalidValues(t *testing.T) {
	_, err := Build([]Row{{Year: 2016, Kt: math.NaN()}}, nil)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Build(nil, []Row{{Year: 2030, Kt: math.Inf(1)}})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestBuildEmpty(t *testing.T) {
	s, err := Build(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, s.Len())
	assert.Equal(t, NotExhausted, YearBudgetExhausted(s, 0))
}

func TestCurrentBudget(t *testing.T) {
	s, err := Build(nil, []Row{{Year: 2023, Kt: 1}, {Year: 2024, Kt: 1}})
	require.NoError(t, err)

	tests := []struct {
		pledge   float64
		expected float64
	}{
		{2, 0}, {1, -1}, {4, 2}, {3, 1},
	}
	for _, tt := range tests {
		got, err := CurrentBudget(s, tt.pledge, 2024)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}

	_, err = CurrentBudget(s, 2, 2031)
	assert.ErrorIs(t, err, ErrYearNotInSeries)
}

func TestYearBudgetExhausted(t *testing.T) {
	tests := []struct {
		name     string
		kt       float64
		budget   float64
		expected int
	}{
		{name: "exceeded in third year", kt: 500, budget: 1250, expected: 2018},
		{name: "never exceeded", kt: 200, budget: 1250, expected: NotExhausted},
		{name: "equal is not exceeded", kt: 500, budget: 2000, expected: NotExhausted},
		{name: "exceeded in first year", kt: 500, budget: 100, expected: 2016},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Build([]Row{
				{Year: 2016, Kt: tt.kt}, {Year: 2017, Kt: tt.kt},
				{Year: 2018, Kt: tt.kt}, {Year: 2019, Kt: tt.kt},
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, YearBudgetExhausted(s, tt.budget))
		})
	}
}

func TestYearBudgetExhaustedIsFirstCrossing(t *testing.T) {
	rows := make([]Row, 0, 30)
	for year := 2016; year < 2046; year++ {
		rows = append(rows, Row{Year: year, Kt: float64(year - 2010)})
	}
	s, err := Build(rows, nil)
	require.NoError(t, err)

	for _, budget := range []float64{0, 5, 6, 100, 250, 1000} {
		year := YearBudgetExhausted(s, budget)
		if year == NotExhausted {
			last := s.Entries()[s.Len()-1]
			assert.LessOrEqual(t, last.CumulativeKt, budget)
			continue
		}
		cumulative, err := s.Cumulative(year)
		require.NoError(t, err)
		assert.Greater(t, cumulative, budget)
		if previous, err := s.Cumulative(year - 1); err == nil {
			assert.LessOrEqual(t, previous, budget)
		}
	}
}

func TestTotalsAndValue(t *testing.T) {
	s, err := Build(
		[]Row{{Year: 2016, Kt: 1085}, {Year: 2017, Kt: 1091}},
		[]Row{{Year: 2018, Kt: 500.5}},
	)
	require.NoError(t, err)

	historical, projected := s.Totals()
	assert.Equal(t, 2176.0, historical)
	assert.Equal(t, 500.5, projected)

	v, err := s.Value(2017)
	require.NoError(t, err)
	assert.Equal(t, 1091.0, v)

	_, err = s.Value(2000)
	assert.ErrorIs(t, err, ErrYearNotInSeries)
}

func TestEntriesReturnsCopy(t *testing.T) {
	s, err := Build([]Row{{Year: 2016, Kt: 1}}, nil)
	require.NoError(t, err)

	entries := s.Entries()
	entries[0].Kt = 99
	v, err := s.Value(2016)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}
