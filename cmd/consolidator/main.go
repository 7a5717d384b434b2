package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"capitaline/internal/app"
	"capitaline/internal/config"
	"capitaline/pkg/contracts"
)

// options are the command-line overrides applied on top of the loaded config
type options struct {
	configFile string
	inDir      string
	outFile    string
	csvDir     string
	debug      bool
	version    bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet(contracts.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "path to a YAML config file (defaults to config.yaml or configs/config.yaml if present)")
	fs.StringVar(&opts.inDir, "in", "", "input directory with Capitaline .xlsx/.xls/.csv exports (default assets)")
	fs.StringVar(&opts.outFile, "out", "", "output workbook path (default consolidated_output.xlsx)")
	fs.StringVar(&opts.csvDir, "csv", "", "also write one CSV per sheet into this directory")
	fs.BoolVar(&opts.debug, "debug", false, "log debug messages to the console")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// apply copies set flags over cfg and revalidates it
func (o *options) apply(cfg *config.Config) error {
	if o.inDir != "" {
		cfg.Paths.AssetsDir = o.inDir
	}
	if o.outFile != "" {
		cfg.Paths.OutputFile = o.outFile
	}
	if o.csvDir != "" {
		cfg.Paths.CSVDir = o.csvDir
	}
	if o.debug {
		cfg.Logging.Level = "debug"
	}
	return cfg.Validate()
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintln(stderr, contracts.GetVersionString())
		return 0
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	if err := opts.apply(cfg); err != nil {
		slog.Error("Invalid command-line options", "error", err)
		return 1
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		return 1
	}
	defer application.Close()

	if _, err := application.Run(ctx); err != nil {
		application.Logger.Error("Consolidation failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
