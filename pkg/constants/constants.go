// Package constants provides shared constants for the co2-budget application.
package constants

// Budget accounting defaults. These are policy conventions, not measurements.
const (
	// DefaultGlobalPopulation is the global population in 2020, the year of the
	// most recent global CO2 budget estimate.
	DefaultGlobalPopulation = 7840000000

	// DefaultPledgeYear is the first year after the Paris agreement was adopted
	// (end of 2015); budgets are accounted from here.
	DefaultPledgeYear = 2016

	// DefaultEstimateYear is the year of the most recent global budget estimate.
	DefaultEstimateYear = 2020

	// DefaultZeroYear is the year in which net-zero emissions should be reached.
	DefaultZeroYear = 2040

	// DefaultForecastCeiling is the last year evaluated for reduction paths.
	DefaultForecastCeiling = 2040

	// DefaultScenarioStartYear and DefaultScenarioEndYear bound the reduction
	// scenario window.
	DefaultScenarioStartYear = 2025
	DefaultScenarioEndYear   = 2050

	// TonnesPerKilotonne converts global emissions (t) into budget units (kt).
	TonnesPerKilotonne = 1000.0
)

// Probability labels of the global budget table.
const (
	// ProbabilityLikely is the 67% probability of staying below a threshold.
	ProbabilityLikely = "67%"

	// ProbabilityVeryLikely is the 83% probability of staying below a threshold.
	ProbabilityVeryLikely = "83%"

	// DefaultReferenceProbability selects the rows used for paths, scenarios and
	// the brief table.
	DefaultReferenceProbability = ProbabilityVeryLikely
)

// GlobalThresholds are the temperature thresholds (°C) of the global budget
// table.
var GlobalThresholds = []float64{1.5, 1.7, 2.0}

// DefaultPathThresholds are the temperature thresholds (°C) that get a fitted
// reduction path. The 1.5°C budget is typically exhausted already.
var DefaultPathThresholds = []float64{1.7, 2.0}

// DefaultScenarioThreshold is the threshold (°C) whose current budget calibrates
// the reduction scenarios.
const DefaultScenarioThreshold = 2.0

// Reduction path models.
const (
	// ModelCubic fits value, terminal value, terminal slope and area.
	ModelCubic = "cubic"

	// ModelQuadratic fits value, terminal value and area.
	ModelQuadratic = "quadratic"
)

// Level of detail values.
const (
	// DetailBrief selects the short set of artifacts.
	DetailBrief = "brief"

	// DetailFull selects the complete set of artifacts.
	DetailFull = "full"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum JSON request body (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024
)

// Numeric constants
const (
	// DisplayPrecision is the number of decimals shown for kilotonne values
	DisplayPrecision = 1

	// KtTolerance is the tolerance for kilotonne comparisons
	KtTolerance = 0.05

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
