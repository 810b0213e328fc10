// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/co2-budget/pkg/constants"
	"github.com/iwvelando/co2-budget/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CO2_BUDGET_BUDGET_ZEROYEAR.
const EnvPrefix = "CO2_BUDGET"

// Configuration holds all configuration for co2-budget.
type Configuration struct {
	Budget  BudgetConfig  `yaml:"budget,omitempty"`
	Report  ReportConfig  `yaml:"report,omitempty"`
	Dataset DatasetConfig `yaml:"dataset,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
}

// BudgetConfig holds the accounting conventions used to allocate a city
// budget.
type BudgetConfig struct {
	GlobalPopulation int64 `yaml:"globalPopulation,omitempty"`
	PledgeYear       int   `yaml:"pledgeYear,omitempty"`
	EstimateYear     int   `yaml:"estimateYear,omitempty"`
	ZeroYear         int   `yaml:"zeroYear,omitempty"`
	// StandardFactor overrides the factor derived from the city's standard
	// share when set.
	StandardFactor float64 `yaml:"standardFactor,omitempty"`
}

// ReportConfig holds what a report computes beyond the budget table.
type ReportConfig struct {
	ReferenceProbability string    `yaml:"referenceProbability,omitempty"`
	PathThresholds       []float64 `yaml:"pathThresholds,omitempty"`
	PathModel            string    `yaml:"pathModel,omitempty"` // cubic, quadratic
	ForecastCeiling      int       `yaml:"forecastCeiling,omitempty"`
	ScenarioThreshold    float64   `yaml:"scenarioThreshold,omitempty"`
	ScenarioStartYear    int       `yaml:"scenarioStartYear,omitempty"`
	ScenarioEndYear      int       `yaml:"scenarioEndYear,omitempty"`
}

// DatasetConfig points to an alternative reference dataset.
type DatasetConfig struct {
	Path string `yaml:"path,omitempty"` // empty uses the embedded dataset
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("budget.globalPopulation", constants.DefaultGlobalPopulation)
	v.SetDefault("budget.pledgeYear", constants.DefaultPledgeYear)
	v.SetDefault("budget.estimateYear", constants.DefaultEstimateYear)
	v.SetDefault("budget.zeroYear", constants.DefaultZeroYear)
	v.SetDefault("budget.standardFactor", 0.0)

	v.SetDefault("report.referenceProbability", constants.DefaultReferenceProbability)
	v.SetDefault("report.pathThresholds", constants.DefaultPathThresholds)
	v.SetDefault("report.pathModel", constants.ModelCubic)
	v.SetDefault("report.forecastCeiling", constants.DefaultForecastCeiling)
	v.SetDefault("report.scenarioThreshold", constants.DefaultScenarioThreshold)
	v.SetDefault("report.scenarioStartYear", constants.DefaultScenarioStartYear)
	v.SetDefault("report.scenarioEndYear", constants.DefaultScenarioEndYear)

	v.SetDefault("dataset.path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}

	return decode(v)
}

// Default returns the configuration with every default applied.
func Default() (*Configuration, error) {
	return decode(newViper())
}

// Validate returns an error for settings no report can be computed with.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if err := validation.ValidateModel(c.Report.PathModel); err != nil {
		return err
	}
	if c.Budget.GlobalPopulation <= 0 {
		return fmt.Errorf("budget.globalPopulation must be positive, got %d", c.Budget.GlobalPopulation)
	}
	if c.Budget.EstimateYear < c.Budget.PledgeYear {
		return fmt.Errorf("budget.estimateYear (%d) precedes budget.pledgeYear (%d)", c.Budget.EstimateYear, c.Budget.PledgeYear)
	}
	if c.Budget.ZeroYear <= c.Budget.PledgeYear {
		return fmt.Errorf("budget.zeroYear (%d) must follow budget.pledgeYear (%d)", c.Budget.ZeroYear, c.Budget.PledgeYear)
	}
	if c.Budget.StandardFactor < 0 || c.Budget.StandardFactor >= 1 {
		return fmt.Errorf("budget.standardFactor must be in (0,1) or unset, got %v", c.Budget.StandardFactor)
	}
	if c.Report.ScenarioEndYear < c.Report.ScenarioStartYear {
		return fmt.Errorf("report.scenarioEndYear (%d) precedes report.scenarioStartYear (%d)", c.Report.ScenarioEndYear, c.Report.ScenarioStartYear)
	}
	if c.Report.ForecastCeiling < c.Budget.PledgeYear {
		return fmt.Errorf("report.forecastCeiling (%d) precedes budget.pledgeYear (%d)", c.Report.ForecastCeiling, c.Budget.PledgeYear)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		PledgeYear:           c.Budget.PledgeYear,
		EstimateYear:         c.Budget.EstimateYear,
		ZeroYear:             c.Budget.ZeroYear,
		ReferenceProbability: c.Report.ReferenceProbability,
		PathThresholds:       c.Report.PathThresholds,
		ForecastCeiling:      c.Report.ForecastCeiling,
		ScenarioThreshold:    c.Report.ScenarioThreshold,
		ScenarioStartYear:    c.Report.ScenarioStartYear,
		ScenarioEndYear:      c.Report.ScenarioEndYear,
	}
	return validator.ValidateAll()
}
