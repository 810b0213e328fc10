// Package server exposes budget reports over a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/co2-budget/internal/config"
	"github.com/iwvelando/co2-budget/internal/dataset"
	"github.com/iwvelando/co2-budget/internal/report"
	"github.com/iwvelando/co2-budget/pkg/constants"
	"github.com/iwvelando/co2-budget/pkg/ledger"
	"github.com/iwvelando/co2-budget/pkg/output"
	"github.com/iwvelando/co2-budget/pkg/years"
	"go.uber.org/zap"
)

type handler struct {
	logger         *zap.Logger
	snapshot       *dataset.Snapshot
	conf           config.Configuration
	maxRequestSize int64
	version        string
	nowYear        func() int
}

// NewHandler constructs the HTTP handler that serves the report API. The
// snapshot and configuration are shared read-only by all requests.
func NewHandler(logger *zap.Logger, snapshot *dataset.Snapshot, conf config.Configuration, maxRequestSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		snapshot:       snapshot,
		conf:           conf,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
		nowYear:        func() int { return years.FromTime(time.Now()) },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/cities", h.handleCities)
	mux.HandleFunc("/api/version", h.handleVersion)
	return mux
}

// reportRequest is a report request with an optional YAML configuration
// whose budget and report sections replace the server's for this request.
type reportRequest struct {
	report.Request
	Config string `json:"config,omitempty"`
}

type reportResponse struct {
	*report.Report
	CSV      string `json:"csv"`
	Duration string `json:"duration"`
}

type cityResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Aliases        []string `json:"aliases,omitempty"`
	Population     int64    `json:"population"`
	LatestDataYear int      `json:"latestDataYear"`
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return
	}

	var request reportRequest
	decoder := json.NewDecoder(&buf)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err), op)
		return
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		h.respondErrorWithOp(w, http.StatusBadRequest, "invalid request: unexpected content after JSON object", op)
		return
	}
	if request.NowYear == 0 {
		request.NowYear = h.nowYear()
	}

	conf := h.conf
	if request.Config != "" {
		override, err := h.requestConfiguration(request.Config)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		conf.Budget = override.Budget
		conf.Report = override.Report
	}

	result, err := report.GetReport(h.logger, h.snapshot, conf, request.Request)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	if r.URL.Query().Get("format") == constants.OutputFormatCSV {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		if err := output.CsvFormat(w, result); err != nil {
			h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
		}
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, result); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	duration := time.Since(start)
	h.logger.Info("report computed",
		zap.String("op", op),
		zap.String("id", result.ID),
		zap.String("city", result.City),
		zap.Int("nowYear", result.NowYear),
		zap.Duration("duration", duration),
	)

	h.writeJSON(w, http.StatusOK, reportResponse{
		Report:   result,
		CSV:      csvBuf.String(),
		Duration: duration.String(),
	})
}

// requestConfiguration loads the configuration sent with a report request.
// Only its budget and report sections are used; the dataset and logging stay
// with the server.
func (h *handler) requestConfiguration(body string) (*config.Configuration, error) {
	const op = "server.requestConfiguration"

	conf, err := config.LoadConfigurationFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, warning := range conf.ValidateConfiguration() {
		h.logger.Warn("Request configuration warning: "+warning, zap.String("op", op))
	}
	return conf, nil
}

// statusFor maps report errors: bad requests are the caller's fault, missing
// data coverage is unprocessable, everything else is a server problem.
func statusFor(err error) int {
	var userErr *report.UserError
	switch {
	case errors.As(err, &userErr):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrYearNotInSeries):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) handleCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	cities := h.snapshot.Cities()
	payload := make([]cityResponse, 0, len(cities))
	for _, c := range cities {
		payload = append(payload, cityResponse{
			ID:             c.ID,
			Name:           c.Name,
			Aliases:        c.Aliases,
			Population:     c.Population,
			LatestDataYear: c.LatestDataYear,
		})
	}
	h.writeJSON(w, http.StatusOK, payload)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Error
	if status < http.StatusInternalServerError {
		level = h.logger.Warn
	}
	level("report request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
