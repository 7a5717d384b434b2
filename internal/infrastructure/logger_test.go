package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitaline/internal/config"
)

// readLogLines parses every JSON line of the log file
func readLogLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var console bytes.Buffer
	consoleWriter = &console

	logFile := filepath.Join(t.TempDir(), "logs", "consolidation.log")
	cfg := config.LoggingConfig{
		Level:     "info",
		Format:    "text",
		Output:    "both",
		FilePath:  logFile,
		FileLevel: "debug",
		Truncate:  true,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Debug("debug detail", "key", "value")
	logger.Info("Reading file", "file", "a.xlsx")

	require.NoError(t, CloseLogFile())

	// console honours info level
	out := console.String()
	assert.NotContains(t, out, "debug detail")
	assert.Equal(t, "[INFO] Reading file file=a.xlsx\n", out)

	// file always records debug
	entries := readLogLines(t, logFile)
	require.Len(t, entries, 2)
	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, "debug detail", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "INFO", entries[1]["level"])
	assert.Equal(t, "a.xlsx", entries[1]["file"])
}

func TestConsoleHandlerFormat(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(newConsoleHandler(&out, "text", slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("Saved consolidated.xlsx")
	logger.With("component", "consolidator").Warn("Skipping file", "file", "broken file.xlsx")
	logger.WithGroup("stats").Error("No valid data", "rows", 0)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[INFO] Saved consolidated.xlsx", lines[0])
	assert.Equal(t, `[WARN] Skipping file component=consolidator file="broken file.xlsx"`, lines[1])
	assert.Equal(t, "[ERROR] No valid data stats.rows=0", lines[2])
	assert.NotContains(t, out.String(), "level=")
	assert.NotContains(t, out.String(), "msg=")
}

func TestConsoleHandlerJSON(t *testing.T) {
	var out bytes.Buffer
	slog.New(newConsoleHandler(&out, "json", slog.LevelInfo)).Info("Saved", "rows", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Saved", entry["msg"])
}

func TestLoggerWithContext(t *testing.T) {
	var out bytes.Buffer
	base := slog.New(newConsoleHandler(&out, "text", slog.LevelInfo))

	// no span, nothing added
	LoggerWithContext(context.Background(), base).Info("plain")

	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   "test",
		EnableTracing: true,
		TraceFile:     filepath.Join(t.TempDir(), "trace.json"),
		SampleRatio:   1,
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "consolidate")
	defer span.End()
	LoggerWithContext(ctx, base).Info("traced")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[INFO] plain", lines[0])
	assert.Equal(t, "[INFO] traced otel_trace_id="+TraceIDFromContext(ctx), lines[1])
}

func TestWithError(t *testing.T) {
	var out bytes.Buffer
	base := slog.New(newConsoleHandler(&out, "text", slog.LevelInfo))

	assert.Same(t, base, WithError(base, nil))
	WithError(base, errors.New("no header row")).Warn("Skipping file")
	assert.Equal(t, "[WARN] Skipping file error=\"no header row\"\n", out.String())
}

func TestLogFileTruncatedEachRun(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	cfg := config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logFile, Truncate: true}

	for i := 0; i < 2; i++ {
		ResetLoggerForTesting()
		logger, err := InitializeLogger(cfg)
		require.NoError(t, err)
		logger.Info("run", "n", i)
		require.NoError(t, CloseLogFile())
	}
	ResetLoggerForTesting()

	entries := readLogLines(t, logFile)
	require.Len(t, entries, 1)
	assert.Equal(t, float64(1), entries[0]["n"])
}

func TestLogFileAppendWhenNotTruncating(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	cfg := config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logFile}

	for i := 0; i < 2; i++ {
		ResetLoggerForTesting()
		logger, err := InitializeLogger(cfg)
		require.NoError(t, err)
		logger.Info("run", "n", i)
		require.NoError(t, CloseLogFile())
	}
	ResetLoggerForTesting()

	assert.Len(t, readLogLines(t, logFile), 2)
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")
	_, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	GetLogger().InfoContext(ctx, "test with trace")
	require.NoError(t, CloseLogFile())

	entries := readLogLines(t, logFile)
	require.NotEmpty(t, entries)
	assert.Equal(t, "test-trace-123", entries[len(entries)-1]["trace_id"])
}

func TestCreateLoggerErrors(t *testing.T) {
	_, err := createLogger(config.LoggingConfig{Level: "info", Output: "file"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file path")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input).String())
		})
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	// existing IDs are kept
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
}
