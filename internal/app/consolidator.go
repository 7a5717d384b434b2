package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"capitaline/internal/config"
	"capitaline/internal/dataprocessing"
	"capitaline/internal/exporter"
	"capitaline/internal/files"
	"capitaline/internal/infrastructure"
	"capitaline/internal/validation"
	"capitaline/pkg/contracts/domain"
)

// Consolidator runs one pass from the input directory to the output workbook
type Consolidator struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.RunMetrics
	discovery *files.Discovery
	validator *validation.FileValidator
}

// NewConsolidator wires a consolidator. Without telemetry, or with providers
// lacking a tracer, spans and metrics go to no-op implementations.
func NewConsolidator(cfg *config.Config, paths *config.Paths, logger *slog.Logger, telemetry *infrastructure.OTelProviders) *Consolidator {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopOTelProviders(logger)
	}
	tracer := telemetry.Tracer
	if tracer == nil {
		tracer = infrastructure.NoopOTelProviders(logger).Tracer
	}

	logger = infrastructure.WithComponent(logger, "consolidator")
	return &Consolidator{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		tracer:    tracer,
		metrics:   telemetry.Metrics,
		discovery: files.NewDiscovery(paths.BaseDir),
		validator: validation.NewFileValidator(logger),
	}
}

// fileResult is what loading one input produced
type fileResult struct {
	file   files.FileInfo
	result dataprocessing.ParseResult
	err    error
}

// Run executes the consolidation and returns a summary of what was written
func (c *Consolidator) Run(ctx context.Context) (summary *domain.RunSummary, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "consolidate")
	defer span.End()

	logger := infrastructure.LoggerWithContext(ctx, c.logger)
	logger.InfoContext(ctx, "Consolidation started",
		slog.String("run_id", infrastructure.GetTraceID(ctx)),
		slog.String("assets", c.paths.AssetsDir),
		slog.Int("workers", c.cfg.Processing.Workers))

	defer func() {
		c.metrics.RecordRun(ctx, time.Since(start), err == nil)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	summary = &domain.RunSummary{OutputPath: c.paths.OutputFile}

	if err := c.validator.ValidateInputDirectory(c.paths.AssetsDir); err != nil {
		return summary, err
	}
	if err := c.validator.ValidateOutputFile(c.paths.OutputFile); err != nil {
		return summary, err
	}

	inputs, err := c.discover(ctx)
	if err != nil {
		return summary, err
	}
	summary.FilesFound = len(inputs)

	results, err := c.loadAll(ctx, inputs)
	if err != nil {
		return summary, err
	}

	var observations []domain.Observation
	for _, r := range results {
		if r.err != nil {
			infrastructure.WithError(logger, r.err).WarnContext(ctx, "Skipping file",
				slog.String("file", r.file.Name))
			summary.FilesSkipped = append(summary.FilesSkipped, r.file.Name)
			c.metrics.RecordFile(ctx, "skipped")
			continue
		}
		summary.FilesLoaded++
		c.metrics.RecordFile(ctx, "loaded")
		observations = append(observations, r.result.Observations...)
	}

	if len(observations) == 0 {
		logger.ErrorContext(ctx, "No valid data")
		return summary, ErrNoValidData
	}
	summary.RowsMerged = len(observations)
	c.metrics.RecordRows(ctx, "valid", len(observations))

	rows := c.reconcile(ctx, observations)
	if len(rows) == 0 {
		logger.ErrorContext(ctx, "Empty result, check column mapping")
		return summary, ErrEmptyResult
	}
	summary.RowsOutput = len(rows)

	tables := dataprocessing.PivotAll(rows)
	summary.Companies = len(tables[0].Companies)
	summary.Dates = len(tables[0].Dates)

	if err := c.write(ctx, tables, summary); err != nil {
		return summary, err
	}

	summary.ElapsedSecs = time.Since(start).Seconds()
	logSummary(ctx, logger, summary)

	return summary, nil
}

func (c *Consolidator) discover(ctx context.Context) ([]files.FileInfo, error) {
	ctx, span := c.tracer.Start(ctx, "discover")
	defer span.End()

	inputs, err := c.discovery.FindInputFiles(c.paths.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", c.paths.AssetsDir, err)
	}
	span.SetAttributes(attribute.Int("files", len(inputs)))

	if len(inputs) == 0 {
		c.logger.ErrorContext(ctx, "No files in "+c.paths.AssetsDir,
			slog.Any("extensions", files.InputExtensions))
		return nil, fmt.Errorf("%w in %s", ErrNoInputFiles, c.paths.AssetsDir)
	}

	c.logger.InfoContext(ctx, "Input files discovered",
		slog.Int("count", len(inputs)),
		slog.Any("files", files.Names(inputs)))

	return inputs, nil
}

// loadAll loads every input with bounded concurrency. Results keep the
// order of inputs so later files win ties during reconciliation.
func (c *Consolidator) loadAll(ctx context.Context, inputs []files.FileInfo) ([]fileResult, error) {
	results := make([]fileResult, len(inputs))

	workers := c.cfg.Processing.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := c.loadFile(gctx, file)
			results[i] = fileResult{file: file, result: result, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading cancelled: %w", err)
	}
	return results, nil
}

func (c *Consolidator) loadFile(ctx context.Context, file files.FileInfo) (dataprocessing.ParseResult, error) {
	ctx, span := c.tracer.Start(ctx, "load", trace.WithAttributes(attribute.String("file", file.Name)))
	defer span.End()

	if err := c.validator.ValidateInputFile(file.Path); err != nil {
		infrastructure.RecordError(ctx, err)
		return dataprocessing.ParseResult{}, dataprocessing.NewFileError(file.Path, dataprocessing.StageLoad, err)
	}

	table, err := dataprocessing.LoadTable(file.Path, c.cfg.Processing.HeaderRow)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return dataprocessing.ParseResult{}, dataprocessing.NewFileError(file.Path, dataprocessing.StageLoad, err)
	}

	mapping := dataprocessing.NormalizeColumns(table.Headers, table.Source)
	if len(mapping.Missing) > 0 {
		c.logger.DebugContext(ctx, "Columns not found",
			slog.String("file", file.Name),
			slog.Any("missing", mapping.MissingNames()))
	}
	if mapping.Inferred != "" {
		c.logger.DebugContext(ctx, "Exchange inferred from file name",
			slog.String("file", file.Name),
			slog.String("exchange", string(mapping.Inferred)))
	}

	result := dataprocessing.ParseTable(table, mapping)
	span.SetAttributes(
		attribute.Int("rows.total", result.Total),
		attribute.Int("rows.valid", result.Valid))
	c.metrics.RecordRows(ctx, "read", result.Total)

	c.logger.InfoContext(ctx, fmt.Sprintf("%s: %d rows -> %d valid", file.Name, result.Total, result.Valid),
		slog.String("file", file.Name),
		slog.Int("dropped_no_date", result.DroppedNoDate),
		slog.Int("dropped_no_company", result.DroppedNoCompany))

	return result, nil
}

func (c *Consolidator) reconcile(ctx context.Context, observations []domain.Observation) []domain.Reconciled {
	ctx, span := c.tracer.Start(ctx, "reconcile")
	defer span.End()

	reconciler := dataprocessing.NewReconciler()
	rows := reconciler.Reconcile(observations)
	stats := reconciler.GetStatistics(observations, rows)

	span.SetAttributes(
		attribute.Int("rows.input", stats.InputRows),
		attribute.Int("rows.output", stats.OutputRows))
	c.metrics.RecordRows(ctx, "reconciled", stats.OutputRows)

	c.logger.DebugContext(ctx, "Reconciled",
		slog.Int("input_rows", stats.InputRows),
		slog.Int("output_rows", stats.OutputRows),
		slog.Int("companies", stats.Companies),
		slog.Int("dates", stats.Dates),
		slog.Int("price_from_bse", stats.PriceFromBSE),
		slog.Int("return_from_bse", stats.ReturnFromBSE),
		slog.Int("mcap_averaged", stats.McapAveraged))

	return rows
}

func (c *Consolidator) write(ctx context.Context, tables []*dataprocessing.WideTable, summary *domain.RunSummary) error {
	ctx, span := c.tracer.Start(ctx, "write")
	defer span.End()

	sheets := exporter.BuildSheets(tables, c.cfg.SheetNames())

	writer := exporter.NewWorkbookWriter(exporter.OptionsFromConfig(c.cfg.Output))
	if err := writer.Write(c.paths.OutputFile, sheets); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.paths.OutputFile, err)
	}

	if c.paths.CSVDir != "" {
		csvWriter := exporter.NewCSVWriter(c.paths.CSVDir, c.cfg.Output.DateFormat)
		written, err := csvWriter.WriteSheets(sheets, c.cfg.Output.IndexHeader)
		if err != nil {
			return fmt.Errorf("failed to export csv: %w", err)
		}
		summary.CSVFiles = written
	}

	c.logger.InfoContext(ctx, "Saved "+c.paths.OutputFile)
	return nil
}

func logSummary(ctx context.Context, logger *slog.Logger, s *domain.RunSummary) {
	logger.InfoContext(ctx, "Consolidation complete",
		slog.Int("files_found", s.FilesFound),
		slog.Int("files_loaded", s.FilesLoaded),
		slog.Int("files_skipped", len(s.FilesSkipped)),
		slog.Int("rows_merged", s.RowsMerged),
		slog.Int("rows_output", s.RowsOutput),
		slog.Int("companies", s.Companies),
		slog.Int("dates", s.Dates),
		slog.String("output", s.OutputPath),
		slog.String("elapsed", fmt.Sprintf("%.1fs", s.ElapsedSecs)))
}
