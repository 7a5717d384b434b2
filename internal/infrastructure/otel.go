package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"capitaline/internal/config"
	"capitaline/pkg/contracts"
)

const (
	MeterName = "capitaline"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
	// TraceFile receives JSON spans when tracing is enabled
	TraceFile string
	// MetricsFile receives a Prometheus text exposition on Shutdown
	MetricsFile string
	SampleRatio float64
}

// OTelProviders holds the OpenTelemetry providers for one run.
// Tracer and Meter are always usable; they are no-ops when disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *RunMetrics
	Logger         *slog.Logger

	traceFile   *os.File
	metricsFile string
}

// DefaultOTelConfig returns a configuration with all telemetry disabled
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    contracts.AppName,
		ServiceVersion: contracts.Version,
		Environment:    "development",
		SampleRatio:    1.0,
	}
}

// NewOTelConfig maps the application telemetry settings onto an OTelConfig
func NewOTelConfig(tc config.TelemetryConfig, paths *config.Paths) *OTelConfig {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = tc.TracingEnabled
	cfg.EnableMetrics = tc.MetricsEnabled
	if tc.Environment != "" {
		cfg.Environment = tc.Environment
	}
	if paths != nil {
		cfg.TraceFile = paths.TraceFile
		cfg.MetricsFile = paths.MetricsFile
	}
	return cfg
}

// NoopOTelProviders returns providers whose tracer and meter record nothing
func NoopOTelProviders(logger *slog.Logger) *OTelProviders {
	if logger == nil {
		logger = GetLogger()
	}

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}
	// RunMetrics methods are nil-safe, so a failed registration only loses counts
	if metrics, err := NewRunMetrics(providers.Meter); err == nil {
		providers.Metrics = metrics
	}
	return providers
}

// InitializeOTel initializes tracing and metrics for a run. Disabled parts
// keep the no-op implementations from NoopOTelProviders.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	providers := NoopOTelProviders(logger)

	if cfg.EnableTracing || cfg.EnableMetrics {
		res, err := createResource(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}

		if cfg.EnableTracing {
			if err := initializeTracing(ctx, cfg, res, providers); err != nil {
				return nil, fmt.Errorf("failed to initialize tracing: %w", err)
			}
		}

		if cfg.EnableMetrics {
			if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
				providers.closeTraceFile()
				return nil, fmt.Errorf("failed to initialize metrics: %w", err)
			}
		}
	}

	metrics, err := NewRunMetrics(providers.Meter)
	if err != nil {
		providers.closeTraceFile()
		return nil, fmt.Errorf("failed to create run metrics: %w", err)
	}
	providers.Metrics = metrics

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up span export into the trace file
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	if cfg.TraceFile == "" {
		return fmt.Errorf("trace file is required when tracing is enabled")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	file, err := os.Create(cfg.TraceFile)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// A batch run is short; export synchronously so nothing is lost on exit.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	providers.traceFile = file

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("trace_file", cfg.TraceFile),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up an OTel meter provider backed by a private
// Prometheus registry that is dumped to a textfile on Shutdown
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	if cfg.MetricsFile == "" {
		return fmt.Errorf("metrics file is required when metrics are enabled")
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Registry = registry
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	providers.metricsFile = cfg.MetricsFile

	providers.Logger.DebugContext(ctx, "Metrics initialized",
		slog.String("metrics_file", cfg.MetricsFile))

	return nil
}

// RunMetrics holds the instruments recorded during a consolidation run
type RunMetrics struct {
	FilesTotal  metric.Int64Counter
	RowsTotal   metric.Int64Counter
	RunDuration metric.Float64Histogram
}

// NewRunMetrics creates the consolidator instruments on meter
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	filesTotal, err := meter.Int64Counter(
		"consolidator_files",
		metric.WithDescription("Input files seen by the consolidator, by status"),
	)
	if err != nil {
		return nil, err
	}

	rowsTotal, err := meter.Int64Counter(
		"consolidator_rows",
		metric.WithDescription("Rows handled per processing stage"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"consolidator_run_duration",
		metric.WithDescription("Consolidation run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		FilesTotal:  filesTotal,
		RowsTotal:   rowsTotal,
		RunDuration: runDuration,
	}, nil
}

// RecordFile counts one input file with the given status (loaded, skipped)
func (m *RunMetrics) RecordFile(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.FilesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordRows counts rows for a stage (read, valid, reconciled)
func (m *RunMetrics) RecordRows(ctx context.Context, stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordRun records the total run duration and outcome
func (m *RunMetrics) RecordRun(ctx context.Context, d time.Duration, success bool) {
	if m == nil {
		return
	}
	m.RunDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}

// Shutdown flushes spans, writes the metrics textfile and releases files
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	p.closeTraceFile()

	if p.Registry != nil && p.metricsFile != "" {
		if err := os.MkdirAll(filepath.Dir(p.metricsFile), 0755); err != nil {
			errs = append(errs, fmt.Errorf("metrics directory: %w", err))
		} else if err := prometheus.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	if p.Logger != nil {
		p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	}
	return nil
}

func (p *OTelProviders) closeTraceFile() {
	if p.traceFile != nil {
		p.traceFile.Close()
		p.traceFile = nil
	}
}

// generateInstanceID identifies this process in exported telemetry
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext returns the OTel trace ID of the active span, if any
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError marks the span in ctx as failed
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
