package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/co2-budget/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		expectErr bool
	}{
		{name: "defaults", config: config.LoggingConfig{}},
		{name: "console debug", config: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override", config: config.LoggingConfig{Level: "debug"}, override: "warn"},
		{name: "invalid level", config: config.LoggingConfig{Level: "loud"}, expectErr: true},
		{name: "invalid format", config: config.LoggingConfig{Format: "xml"}, expectErr: true},
		{name: "output file", config: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "co2.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			_ = logger.Sync()
		})
	}
}

func TestReportCommandPretty(t *testing.T) {
	out, err := run(t, "report", "--city", "heidelberg", "--now-year", "2026")
	require.NoError(t, err)

	assert.Contains(t, out, "--- CO2 budget report for Heidelberg (2026) ---")
	assert.Contains(t, out, "Threshold | Budget 2026 (kt) | Exhausted")
	assert.Contains(t, out, "2.0°C | 3,492.5 | 2033")
}

func TestReportCommandCSV(t *testing.T) {
	out, err := run(t, "report", "--city", "Heidelberg", "--detail", "full", "--now-year", "2026", "--output-format", "csv")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "threshold_c,probability,"))
	assert.Contains(t, out, "\n\nyear,emissions_kt,category,cumulative_kt,path_1.7_kt,path_2_kt,")
}

func TestReportCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing city", []string{"report", "--now-year", "2026"}},
		{"unsupported city", []string{"report", "--city", "Atlantis", "--now-year", "2026"}},
		{"invalid output format", []string{"report", "--city", "heidelberg", "--output-format", "json"}},
		{"year outside data", []string{"report", "--city", "heidelberg", "--now-year", "1990"}},
		{"invalid scenario window", []string{"report", "--city", "heidelberg", "--scenario-years", "2050-2025"}},
		{"missing explicit config", []string{"--config", "does-not-exist.yaml", "cities"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestReportCommandScenarioYears(t *testing.T) {
	out, err := run(t, "report", "--city", "heidelberg", "--detail", "full", "--now-year", "2026", "--scenario-years", "2030-2031")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenarios for 2.0°C")
}

func TestReportCommandWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: csv\nlogging:\n  level: error\n"), 0600))

	out, err := run(t, "--config", path, "report", "--city", "heidelberg", "--now-year", "2026")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "threshold_c,"))
}

func TestInvalidConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("budget:\n  zeroYear: 2010\n"), 0600))

	_, err := run(t, "--config", path, "cities")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zeroYear")
}

func TestCitiesCommand(t *testing.T) {
	out, err := run(t, "cities")
	require.NoError(t, err)
	assert.Equal(t, "heidelberg | Heidelberg | population 158741 | data until 2022\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}
