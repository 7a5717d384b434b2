package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"capitaline/internal/config"
)

var (
	// globalLogger holds the application-wide logger instance
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
	// globalLogFile holds the open log file for cleanup
	globalLogFile *os.File
	// logFileMu protects globalLogFile
	logFileMu sync.Mutex

	// consoleWriter is where console records go; tests swap it
	consoleWriter io.Writer = os.Stdout
)

// contextKey is a type for context keys
type contextKey string

const (
	// TraceIDContextKey is the key for storing the run's trace ID in context
	TraceIDContextKey contextKey = "trace_id"
)

// InitializeLogger creates and configures the global slog logger instance.
// This should be called once during application startup.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	globalLoggerOnce.Do(func() {
		globalLogger, err = createLogger(cfg)
		if globalLogger != nil {
			slog.SetDefault(globalLogger)
		}
	})
	return globalLogger, err
}

// GetLogger returns the global logger instance.
// If not initialized, returns the default slog logger.
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// createLogger creates a new slog logger based on configuration.
// Console and file sinks filter independently: the console follows cfg.Level
// while the file follows cfg.FileLevel (debug unless configured).
func createLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var handlers []slog.Handler

	output := strings.ToLower(cfg.Output)
	if output == "" {
		output = "console"
	}

	if output == "console" || output == "both" {
		handlers = append(handlers, newConsoleHandler(consoleWriter, cfg.Format, parseLogLevel(cfg.Level)))
	}

	if output == "file" || output == "both" {
		if cfg.FilePath == "" {
			return nil, errors.New("log file path is required for file output")
		}
		file, err := openLogFile(cfg.FilePath, cfg.Truncate)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logFileMu.Lock()
		globalLogFile = file
		logFileMu.Unlock()

		fileLevel := slog.LevelDebug
		if cfg.FileLevel != "" {
			fileLevel = parseLogLevel(cfg.FileLevel)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{
			AddSource: true,
			Level:     fileLevel,
		}))
	}

	if len(handlers) == 0 {
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = &fanoutHandler{handlers: handlers}
	}

	return slog.New(&traceHandler{Handler: handler}), nil
}

// newConsoleHandler builds the user-facing handler. Text output reads like a
// progress log: "[INFO] message key=value".
func newConsoleHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	buf := &bytes.Buffer{}
	return &consoleHandler{
		mu:  &sync.Mutex{},
		w:   w,
		buf: buf,
		attrs: slog.NewTextHandler(buf, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: dropBuiltinAttrs,
		}),
	}
}

// consoleHandler prefixes each line with the bracketed level and message.
// Attributes are rendered by a TextHandler so quoting and groups follow slog.
type consoleHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	buf   *bytes.Buffer
	attrs slog.Handler
}

func (h *consoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.attrs.Enabled(ctx, level)
}

func (h *consoleHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.attrs.Handle(ctx, r); err != nil {
		return err
	}

	line := "[" + r.Level.String() + "] " + r.Message
	if rest := bytes.TrimSpace(h.buf.Bytes()); len(rest) > 0 {
		line += " " + string(rest)
	}
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{mu: h.mu, w: h.w, buf: h.buf, attrs: h.attrs.WithAttrs(attrs)}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	return &consoleHandler{mu: h.mu, w: h.w, buf: h.buf, attrs: h.attrs.WithGroup(name)}
}

// dropBuiltinAttrs removes time, level and message; consoleHandler writes
// level and message itself
func dropBuiltinAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch a.Key {
		case slog.TimeKey, slog.LevelKey, slog.MessageKey:
			return slog.Attr{}
		}
	}
	return a
}

// fanoutHandler dispatches every record to each handler that accepts its level
type fanoutHandler struct {
	handlers []slog.Handler
}

// Enabled reports whether any sink wants the record
func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every enabled sink
func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, hh := range h.handlers {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		next[i] = hh.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		next[i] = hh.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// traceHandler wraps a slog.Handler to automatically inject trace_id from context
type traceHandler struct {
	slog.Handler
}

// Handle adds trace_id to the record if present in context
func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}

	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a new Handler with additional attributes
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup returns a new Handler with the given group name
func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// CloseLogFile closes the global log file if open.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if globalLogFile != nil {
		err := globalLogFile.Close()
		globalLogFile = nil
		return err
	}
	return nil
}

// ResetLoggerForTesting resets the global logger state.
// This should only be called in tests.
func ResetLoggerForTesting() {
	CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
	consoleWriter = os.Stdout
}

// openLogFile opens or creates a log file, truncating it when asked
func openLogFile(filePath string, truncate bool) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	return file, nil
}
