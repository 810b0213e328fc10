// Package dataset loads the reference tables used by every report: global
// budgets, global emissions and the per-city population and emissions data.
// A Snapshot is built once and never mutated; accessors return copies.
package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/iwvelando/co2-budget/pkg/budget"
	"github.com/iwvelando/co2-budget/pkg/validation"
	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultData []byte

// Emission categories.
const (
	CategoryHistorical = "historical"
	CategoryProjected  = "projected"
)

var (
	// ErrUnsupportedCity is returned when a city is not part of the dataset.
	ErrUnsupportedCity = errors.New("unsupported city")

	// ErrInvalidDataset is returned for structurally broken reference data.
	ErrInvalidDataset = errors.New("invalid reference dataset")
)

// GlobalBudget is a global remaining budget in kilotonnes.
type GlobalBudget struct {
	ThresholdC  float64 `yaml:"thresholdC"`
	Probability string  `yaml:"probability"`
	BudgetKt    float64 `yaml:"budgetKt"`
}

// GlobalEmission is the global emission of one year in tonnes.
type GlobalEmission struct {
	Year   int     `yaml:"year"`
	Tonnes float64 `yaml:"tonnes"`
}

// StandardShare holds the figures from which the standard-accounting factor
// of a city is derived.
type StandardShare struct {
	Year               int     `yaml:"year"`
	Population         int64   `yaml:"population"`
	StandardEmissionsT float64 `yaml:"standardEmissionsT"`
	MeanPerCapitaT     float64 `yaml:"meanPerCapitaT"`
}

// Emission is a city emission of one year in kilotonnes.
type Emission struct {
	Year     int     `yaml:"year"`
	Kt       float64 `yaml:"kt"`
	Category string  `yaml:"category"`
}

// City is the reference data of one supported city.
type City struct {
	ID             string        `yaml:"id"`
	Name           string        `yaml:"name"`
	Aliases        []string      `yaml:"aliases,omitempty"`
	Population     int64         `yaml:"population"`
	PopulationYear int           `yaml:"populationYear"`
	LatestDataYear int           `yaml:"latestDataYear"`
	StandardShare  StandardShare `yaml:"standardShare"`
	Emissions      []Emission    `yaml:"emissions"`
}

func (c City) clone() City {
	c.Aliases = append([]string(nil), c.Aliases...)
	c.Emissions = append([]Emission(nil), c.Emissions...)
	return c
}

// EmissionsByCategory returns the emissions of one category in listed order.
func (c City) EmissionsByCategory(category string) []Emission {
	var rows []Emission
	for _, e := range c.Emissions {
		if e.Category == category {
			rows = append(rows, e)
		}
	}
	return rows
}

type document struct {
	GlobalBudgets   []GlobalBudget   `yaml:"globalBudgets"`
	GlobalEmissions []GlobalEmission `yaml:"globalEmissions"`
	Cities          []City           `yaml:"cities"`
}

// Snapshot is the immutable reference dataset.
type Snapshot struct {
	globalBudgets   []GlobalBudget
	globalEmissions []GlobalEmission
	cities          []City
	lookup          map[string]int
}

// Default returns the embedded dataset.
func Default() (*Snapshot, error) {
	return Parse(defaultData)
}

// Load reads a YAML dataset from path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a YAML dataset.
func Parse(data []byte) (*Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if err := doc.check(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		globalBudgets:   doc.GlobalBudgets,
		globalEmissions: doc.GlobalEmissions,
		cities:          doc.Cities,
		lookup:          make(map[string]int),
	}
	sort.Slice(snap.globalEmissions, func(i, j int) bool {
		return snap.globalEmissions[i].Year < snap.globalEmissions[j].Year
	})
	for i, city := range snap.cities {
		for _, key := range append([]string{city.ID, city.Name}, city.Aliases...) {
			if key == "" {
				continue
			}
			normalized := normalize(key)
			if existing, ok := snap.lookup[normalized]; ok && existing != i {
				return nil, fmt.Errorf("%w: city key %q used by %s and %s", ErrInvalidDataset, key, snap.cities[existing].ID, city.ID)
			}
			snap.lookup[normalized] = i
		}
	}
	return snap, nil
}

func (d *document) check() error {
	if len(d.GlobalBudgets) == 0 {
		return fmt.Errorf("%w: no global budgets", ErrInvalidDataset)
	}
	seenBudget := make(map[string]bool)
	rows := make([]budget.GlobalRow, 0, len(d.GlobalBudgets))
	for i, b := range d.GlobalBudgets {
		if b.BudgetKt <= 0 {
			return fmt.Errorf("%w: global budget %+v", ErrInvalidDataset, b)
		}
		if err := validation.ValidateThreshold(b.ThresholdC); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
		probability, err := validation.NormalizeProbability(b.Probability)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
		d.GlobalBudgets[i].Probability = probability

		key := fmt.Sprintf("%.2f/%s", b.ThresholdC, probability)
		if seenBudget[key] {
			return fmt.Errorf("%w: duplicate global budget %s", ErrInvalidDataset, key)
		}
		seenBudget[key] = true
		rows = append(rows, budget.GlobalRow{ThresholdC: b.ThresholdC, Probability: probability, BudgetKt: b.BudgetKt})
	}
	if err := validation.ValidateGlobalBudgets(rows); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	if len(d.GlobalEmissions) == 0 {
		return fmt.Errorf("%w: no global emissions", ErrInvalidDataset)
	}
	seenYear := make(map[int]bool)
	for _, e := range d.GlobalEmissions {
		if seenYear[e.Year] {
			return fmt.Errorf("%w: duplicate global emission year %d", ErrInvalidDataset, e.Year)
		}
		seenYear[e.Year] = true
	}

	if len(d.Cities) == 0 {
		return fmt.Errorf("%w: no cities", ErrInvalidDataset)
	}
	for _, c := range d.Cities {
		if c.ID == "" {
			return fmt.Errorf("%w: city without id", ErrInvalidDataset)
		}
		if c.Population <= 0 {
			return fmt.Errorf("%w: city %s has no population", ErrInvalidDataset, c.ID)
		}
		seen := map[string]map[int]bool{
			CategoryHistorical: {},
			CategoryProjected:  {},
		}
		for _, e := range c.Emissions {
			years, ok := seen[e.Category]
			if !ok {
				return fmt.Errorf("%w: city %s year %d has unknown category %q", ErrInvalidDataset, c.ID, e.Year, e.Category)
			}
			if years[e.Year] {
				return fmt.Errorf("%w: city %s lists %s year %d twice", ErrInvalidDataset, c.ID, e.Category, e.Year)
			}
			years[e.Year] = true
		}
	}
	return nil
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// GlobalBudgets returns the global budget table in listed order.
func (s *Snapshot) GlobalBudgets() []GlobalBudget {
	return append([]GlobalBudget(nil), s.globalBudgets...)
}

// GlobalEmissions returns the global emissions ordered by year.
func (s *Snapshot) GlobalEmissions() []GlobalEmission {
	return append([]GlobalEmission(nil), s.globalEmissions...)
}

// City looks a city up by id, name or alias, ignoring case.
func (s *Snapshot) City(key string) (City, error) {
	i, ok := s.lookup[normalize(key)]
	if !ok {
		return City{}, fmt.Errorf("%w %q: the CO2 budget report currently supports %s",
			ErrUnsupportedCity, key, strings.Join(s.CityNames(), ", "))
	}
	return s.cities[i].clone(), nil
}

// Cities returns all cities in listed order.
func (s *Snapshot) Cities() []City {
	cities := make([]City, 0, len(s.cities))
	for _, c := range s.cities {
		cities = append(cities, c.clone())
	}
	return cities
}

// CityNames returns the display names of all cities.
func (s *Snapshot) CityNames() []string {
	names := make([]string, 0, len(s.cities))
	for _, c := range s.cities {
		names = append(names, c.Name)
	}
	return names
}
