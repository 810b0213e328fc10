package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/co2-budget/internal/config"
	"github.com/iwvelando/co2-budget/internal/server"
	"github.com/iwvelando/co2-budget/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		serverConfigPath string
		address          string
		maxRequestSize   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "main.serve"

			serverConf, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if err := applyServeOverrides(serverConf, address, maxRequestSize); err != nil {
				return err
			}

			srv, logger, err := a.newServer(serverConf)
			if err != nil {
				return err
			}
			if logger != a.logger {
				defer func() { _ = logger.Sync() }()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening",
					zap.String("op", op),
					zap.String("address", serverConf.Address),
					zap.Int64("maxRequestSize", serverConf.RequestSizeBytes()),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down", zap.String("op", op))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().StringVar(&maxRequestSize, "max-request-size", "", "request body limit override (e.g., 64K, 1M)")
	return cmd
}

// applyServeOverrides applies the command line flags on top of the server
// configuration file.
func applyServeOverrides(serverConf *server.Config, address, maxRequestSize string) error {
	if address != "" {
		serverConf.Address = address
	}
	if maxRequestSize != "" {
		size, err := server.ParseSize(maxRequestSize)
		if err != nil {
			return fmt.Errorf("invalid --max-request-size: %w", err)
		}
		serverConf.SetRequestSizeBytes(size)
	}
	return nil
}

// newServer builds the HTTP server. A report configuration named by the
// server configuration replaces the root configuration, dataset included.
func (a *app) newServer(serverConf *server.Config) (*http.Server, *zap.Logger, error) {
	const op = "main.newServer"

	logger := a.logger
	if serverConf.Logging != (config.LoggingConfig{}) {
		serverLogger, err := initializeLogger(serverConf.Logging, a.logLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize server logger: %w", err)
		}
		logger = serverLogger
	}

	conf, snapshot := a.conf, a.snapshot
	if serverConf.ReportConfig != "" {
		var err error
		conf, err = config.LoadConfiguration(serverConf.ReportConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load report configuration: %w", err)
		}
		if err := conf.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid report configuration: %w", err)
		}
		for _, warning := range conf.ValidateConfiguration() {
			logger.Warn("Report configuration warning: "+warning,
				zap.String("op", op),
				zap.String("config", serverConf.ReportConfig),
			)
		}
		snapshot, err = loadDataset(conf.Dataset)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load report dataset: %w", err)
		}
		logger.Debug("report configuration loaded",
			zap.String("op", op),
			zap.String("config", serverConf.ReportConfig),
			zap.Strings("cities", snapshot.CityNames()),
		)
	}

	return &http.Server{
		Addr:              serverConf.Address,
		Handler:           server.NewHandler(logger, snapshot, *conf, serverConf.RequestSizeBytes(), version),
		ReadHeaderTimeout: 5 * time.Second,
	}, logger, nil
}
