package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/co2-budget/internal/config"
	"github.com/iwvelando/co2-budget/internal/dataset"
	"github.com/iwvelando/co2-budget/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const alternateDataset = `
globalBudgets:
  - {thresholdC: 1.7, probability: "83%", budgetKt: 550000000}
  - {thresholdC: 2.0, probability: "83%", budgetKt: 900000000}
globalEmissions:
  - {year: 2016, tonnes: 35000000000}
  - {year: 2017, tonnes: 35000000000}
  - {year: 2018, tonnes: 35000000000}
  - {year: 2019, tonnes: 35000000000}
cities:
  - id: testville
    name: Testville
    population: 100000
    standardShare: {year: 2018, population: 100000, standardEmissionsT: 500000, meanPerCapitaT: 8}
    emissions:
      - {year: 2016, kt: 600, category: historical}
      - {year: 2017, kt: 580, category: historical}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testApp(t *testing.T, logger *zap.Logger) *app {
	t.Helper()
	conf, err := config.Default()
	require.NoError(t, err)
	snapshot, err := dataset.Default()
	require.NoError(t, err)
	return &app{conf: conf, snapshot: snapshot, logger: logger, stdout: &bytes.Buffer{}}
}

func cityIDs(t *testing.T, handler http.Handler) []string {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cities", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var cities []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cities))
	ids := make([]string, 0, len(cities))
	for _, c := range cities {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestNewServerUsesRootConfiguration(t *testing.T) {
	a := testApp(t, zap.NewNop())
	serverConf, err := server.LoadConfig("")
	require.NoError(t, err)

	srv, logger, err := a.newServer(serverConf)
	require.NoError(t, err)
	assert.Same(t, a.logger, logger)
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, []string{"heidelberg"}, cityIDs(t, srv.Handler))
}

func TestNewServerReportConfiguration(t *testing.T) {
	dir := t.TempDir()
	datasetPath := writeFile(t, dir, "dataset.yaml", alternateDataset)
	reportPath := writeFile(t, dir, "report.yaml",
		"dataset:\n  path: "+datasetPath+"\nreport:\n  forecastCeiling: 2045\n")
	serverPath := writeFile(t, dir, "server.yaml",
		"address: 127.0.0.1:9090\nmaxRequestSize: 1K\nreportConfig: "+reportPath+"\n")

	core, logs := observer.New(zapcore.WarnLevel)
	a := testApp(t, zap.New(core))

	serverConf, err := server.LoadConfig(serverPath)
	require.NoError(t, err)
	srv, _, err := a.newServer(serverConf)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", srv.Addr)
	assert.Equal(t, []string{"testville"}, cityIDs(t, srv.Handler))

	warnings := logs.FilterMessageSnippet("Report configuration warning").All()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "follows net-zero year")

	rec := httptest.NewRecorder()
	body := `{"city":"testville","nowYear":2017,"levelOfDetail":"` + strings.Repeat("x", 2048) + `"}`
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestNewServerReportConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		report string
	}{
		{"missing report configuration", filepath.Join(dir, "missing.yaml")},
		{"invalid report configuration", writeFile(t, dir, "invalid.yaml", "budget:\n  zeroYear: 2000\n")},
		{"missing dataset", writeFile(t, dir, "nodata.yaml", "dataset:\n  path: "+filepath.Join(dir, "none.yaml")+"\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testApp(t, zap.NewNop())
			serverConf, err := server.LoadConfig("")
			require.NoError(t, err)
			serverConf.ReportConfig = tt.report

			_, _, err = a.newServer(serverConf)
			assert.Error(t, err)
		})
	}
}

func TestApplyServeOverrides(t *testing.T) {
	serverConf, err := server.LoadConfig("")
	require.NoError(t, err)

	require.NoError(t, applyServeOverrides(serverConf, ":9999", "2K"))
	assert.Equal(t, ":9999", serverConf.Address)
	assert.Equal(t, int64(2048), serverConf.RequestSizeBytes())

	require.NoError(t, applyServeOverrides(serverConf, "", ""))
	assert.Equal(t, ":9999", serverConf.Address)
	assert.Equal(t, int64(2048), serverConf.RequestSizeBytes())

	assert.Error(t, applyServeOverrides(serverConf, "", "2X"))
}
