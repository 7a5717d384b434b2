package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "CAPITALINE"

// Config represents the complete application configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration.
// Console records honour Level; the log file always records at FileLevel.
type LoggingConfig struct {
	Level     string `yaml:"level" envconfig:"LEVEL" validate:"required,oneof=debug info warn warning error"`
	Format    string `yaml:"format" envconfig:"FORMAT" validate:"required,oneof=text json"`
	Output    string `yaml:"output" envconfig:"OUTPUT" validate:"required,oneof=console file both"`
	FilePath  string `yaml:"file_path" envconfig:"FILE_PATH"`
	FileLevel string `yaml:"file_level" envconfig:"FILE_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	// Truncate the log file on every run instead of appending
	Truncate bool `yaml:"truncate" envconfig:"TRUNCATE"`
}

// PathsConfig contains file system paths configuration.
// Relative paths are resolved against the working directory.
type PathsConfig struct {
	AssetsDir  string `yaml:"assets_dir" envconfig:"ASSETS_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	OutputFile string `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`
	CSVDir     string `yaml:"csv_dir" envconfig:"CSV_DIR"`
}

// OutputConfig controls the layout of the consolidated workbook
type OutputConfig struct {
	PriceSheet       string  `yaml:"price_sheet" envconfig:"PRICE_SHEET" validate:"required,max=31"`
	ReturnSheet      string  `yaml:"return_sheet" envconfig:"RETURN_SHEET" validate:"required,max=31"`
	MarketCapSheet   string  `yaml:"market_cap_sheet" envconfig:"MARKET_CAP_SHEET" validate:"required,max=31"`
	IndexHeader      string  `yaml:"index_header" envconfig:"INDEX_HEADER" validate:"required"`
	DateFormat       string  `yaml:"date_format" envconfig:"DATE_FORMAT" validate:"required"`
	FirstColumnWidth float64 `yaml:"first_column_width" envconfig:"FIRST_COLUMN_WIDTH" validate:"gt=0,lte=255"`
	FreezePanes      bool    `yaml:"freeze_panes" envconfig:"FREEZE_PANES"`
}

// ProcessingConfig tunes input loading
type ProcessingConfig struct {
	// HeaderRow is the 1-based row that carries column names
	HeaderRow int `yaml:"header_row" envconfig:"HEADER_ROW" validate:"min=1"`
	Workers   int `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
}

// TelemetryConfig toggles OpenTelemetry tracing and metrics output
type TelemetryConfig struct {
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TraceFile      string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile    string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An empty configFile means
// the well-known locations are searched; a missing explicit file is an error.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags, so only variables that are actually set
	// override what the defaults and the file provided.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct tags and the cross-field rules tags cannot express
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	sheets := []string{c.Output.PriceSheet, c.Output.ReturnSheet, c.Output.MarketCapSheet}
	seen := make(map[string]bool, len(sheets))
	for _, name := range sheets {
		if strings.ContainsAny(name, `[]:*?/\`) {
			return fmt.Errorf("sheet name %q contains a character Excel does not allow", name)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("duplicate sheet name %q", name)
		}
		seen[key] = true
	}

	if c.Logging.FileLevel == "" {
		c.Logging.FileLevel = "debug"
	}

	return nil
}

// SheetNames returns the output sheet names in workbook order
func (c *Config) SheetNames() []string {
	return []string{c.Output.PriceSheet, c.Output.ReturnSheet, c.Output.MarketCapSheet}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			Output:    "both",
			FilePath:  "logs/consolidation.log",
			FileLevel: "debug",
			Truncate:  true,
		},
		Paths: PathsConfig{
			AssetsDir:  "assets",
			LogsDir:    "logs",
			OutputFile: "consolidated_output.xlsx",
		},
		Output: OutputConfig{
			PriceSheet:       "Div Adj Close Price",
			ReturnSheet:      "Daily Total Return (%)",
			MarketCapSheet:   "Average Marketcap",
			IndexHeader:      "company_name",
			DateFormat:       "yyyy-mm-dd",
			FirstColumnWidth: 28,
			FreezePanes:      true,
		},
		Processing: ProcessingConfig{
			HeaderRow: 2,
			Workers:   4,
		},
		Telemetry: TelemetryConfig{
			TraceFile:   "logs/trace.json",
			MetricsFile: "logs/metrics.prom",
			Environment: "production",
		},
	}
}
