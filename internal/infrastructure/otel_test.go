package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelDisabledUsesNoop(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Metrics)

	ctx, span := providers.Tracer.Start(context.Background(), "noop")
	providers.Metrics.RecordFile(ctx, "loaded")
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestNoopOTelProviders(t *testing.T) {
	providers := NoopOTelProviders(nil)

	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Metrics)
	require.NotNil(t, providers.Logger)

	ctx, span := providers.Tracer.Start(context.Background(), "consolidate")
	assert.Empty(t, TraceIDFromContext(ctx))
	providers.Metrics.RecordRows(ctx, "valid", 1)
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelWritesTraceAndMetricsFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.EnableMetrics = true
	cfg.TraceFile = filepath.Join(dir, "trace.json")
	cfg.MetricsFile = filepath.Join(dir, "metrics", "metrics.prom")

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "consolidate")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	providers.Metrics.RecordFile(ctx, "loaded")
	providers.Metrics.RecordFile(ctx, "skipped")
	providers.Metrics.RecordRows(ctx, "valid", 42)
	providers.Metrics.RecordRun(ctx, 1500*time.Millisecond, true)
	RecordError(ctx, errors.New("boom"))
	span.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(shutdownCtx))

	trace, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(trace), `"Name": "consolidate"`)

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "consolidator_files_total")
	assert.Contains(t, string(metrics), `status="skipped"`)
	assert.Contains(t, string(metrics), "consolidator_rows_total")
	assert.Contains(t, string(metrics), "consolidator_run_duration_seconds")
}

func TestOTelRequiresFiles(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true

	_, err := InitializeOTel(cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trace file")
}

func TestRunMetricsNilSafe(t *testing.T) {
	var m *RunMetrics
	ctx := context.Background()
	m.RecordFile(ctx, "loaded")
	m.RecordRows(ctx, "read", 3)
	m.RecordRun(ctx, time.Second, false)
}
