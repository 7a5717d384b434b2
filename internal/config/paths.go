package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds every file system location a run touches, resolved to
// absolute paths.
type Paths struct {
	BaseDir     string
	AssetsDir   string
	LogsDir     string
	OutputFile  string
	CSVDir      string
	LogFile     string
	TraceFile   string
	MetricsFile string
}

// GetPaths resolves the configured paths against the current working directory
func GetPaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return ResolvePaths(cfg, wd), nil
}

// ResolvePaths resolves the configured paths against baseDir
func ResolvePaths(cfg *Config, baseDir string) *Paths {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	return &Paths{
		BaseDir:     baseDir,
		AssetsDir:   resolve(cfg.Paths.AssetsDir),
		LogsDir:     resolve(cfg.Paths.LogsDir),
		OutputFile:  resolve(cfg.Paths.OutputFile),
		CSVDir:      resolve(cfg.Paths.CSVDir),
		LogFile:     resolve(cfg.Logging.FilePath),
		TraceFile:   resolve(cfg.Telemetry.TraceFile),
		MetricsFile: resolve(cfg.Telemetry.MetricsFile),
	}
}

// EnsureDirectories creates the output-side directories if they don't exist.
// The assets directory is input and is never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.LogsDir,
		filepath.Dir(p.OutputFile),
	}
	if p.CSVDir != "" {
		directories = append(directories, p.CSVDir)
	}

	logger := slog.Default()
	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FileExists reports whether path can be stat'ed
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("assets", p.AssetsDir),
			slog.String("logs", p.LogsDir),
			slog.String("csv", p.CSVDir),
		),
		slog.Group("files",
			slog.String("output", p.OutputFile),
			slog.String("log", p.LogFile),
			slog.String("trace", p.TraceFile),
			slog.String("metrics", p.MetricsFile),
		))
}
