package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"capitaline/internal/config"
	"capitaline/internal/infrastructure"
	"capitaline/pkg/contracts"
	"capitaline/pkg/contracts/domain"
)

// shutdownTimeout bounds telemetry flushing at exit
const shutdownTimeout = 10 * time.Second

// Application wires configuration, logging and telemetry around a Consolidator
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Consolidator  *Consolidator
}

// NewApplication creates a new application instance from a loaded config
func NewApplication(cfg *config.Config) (*Application, error) {
	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	return newApplication(cfg, paths)
}

func newApplication(cfg *config.Config, paths *config.Paths) (*Application, error) {
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.FilePath = paths.LogFile
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Debug("Application starting",
		slog.String("name", contracts.AppName),
		slog.String("version", contracts.GetVersionString()))
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry, paths), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Consolidator:  NewConsolidator(cfg, paths, logger, providers),
	}, nil
}

// Run consolidates once. An interrupt cancels loading in progress.
func (a *Application) Run(ctx context.Context) (*domain.RunSummary, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Consolidator.Run(ctx)
}

// Close flushes telemetry and closes the log file
func (a *Application) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Error("Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			firstErr = err
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
