package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitaline/internal/config"
	"capitaline/internal/infrastructure"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-in", "data", "-out", "out/x.xlsx", "-csv", "csv", "-debug"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := config.Default()
	require.NoError(t, opts.apply(cfg))

	assert.Equal(t, "data", cfg.Paths.AssetsDir)
	assert.Equal(t, "out/x.xlsx", cfg.Paths.OutputFile)
	assert.Equal(t, "csv", cfg.Paths.CSVDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParseFlagsKeepsConfigWhenUnset(t *testing.T) {
	opts, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := config.Default()
	require.NoError(t, opts.apply(cfg))
	assert.Equal(t, config.Default(), cfg)
}

func TestRunExitCodes(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
		args  []string
		want  int
	}{
		{
			name: "consolidates csv exports",
			setup: func(t *testing.T, dir string) {
				assets := filepath.Join(dir, "assets")
				require.NoError(t, os.MkdirAll(assets, 0755))
				content := "NSE banner\nCompany Name,Trading Date,NSE Div Adj Close Price\nInfosys,2024-01-15,1523.45\n"
				require.NoError(t, os.WriteFile(filepath.Join(assets, "nse.csv"), []byte(content), 0644))
			},
			want: 0,
		},
		{
			name: "empty input directory",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0755))
			},
			want: 1,
		},
		{
			name:  "missing explicit config",
			setup: func(t *testing.T, dir string) {},
			args:  []string{"-config", "nope.yaml"},
			want:  1,
		},
		{
			name:  "unknown flag",
			setup: func(t *testing.T, dir string) {},
			args:  []string{"-bogus"},
			want:  2,
		},
		{
			name:  "version",
			setup: func(t *testing.T, dir string) {},
			args:  []string{"-version"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infrastructure.ResetLoggerForTesting()
			t.Setenv("CAPITALINE_LOGGING_OUTPUT", "file")

			dir := t.TempDir()
			chdir(t, dir)
			tt.setup(t, dir)

			code := run(context.Background(), tt.args, &bytes.Buffer{})
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRunWritesOutput(t *testing.T) {
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	t.Setenv("CAPITALINE_LOGGING_OUTPUT", "file")

	dir := t.TempDir()
	chdir(t, dir)

	in := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(in, 0755))
	content := "BSE banner\nCompany Name,Trading Date,BSE MarketCap\nTCS,15/01/2024,1350000\n"
	require.NoError(t, os.WriteFile(filepath.Join(in, "bse.csv"), []byte(content), 0644))

	out := filepath.Join(dir, "reports", "merged.xlsx")
	code := run(context.Background(), []string{"-in", in, "-out", out, "-csv", "csv"}, &bytes.Buffer{})
	require.Equal(t, 0, code)

	assert.FileExists(t, out)
	assert.FileExists(t, filepath.Join(dir, "csv", "average_marketcap.csv"))
	assert.FileExists(t, filepath.Join(dir, "logs", "consolidation.log"))
}
