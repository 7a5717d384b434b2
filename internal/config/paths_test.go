package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.CSVDir = "csv"
	cfg.Paths.OutputFile = "/abs/out.xlsx"

	base := filepath.Join(string(filepath.Separator), "work")
	paths := ResolvePaths(cfg, base)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "assets"), paths.AssetsDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
	assert.Equal(t, "/abs/out.xlsx", paths.OutputFile)
	assert.Equal(t, filepath.Join(base, "csv"), paths.CSVDir)
	assert.Equal(t, filepath.Join(base, "logs", "consolidation.log"), paths.LogFile)
	assert.Equal(t, filepath.Join(base, "logs", "trace.json"), paths.TraceFile)
	assert.Equal(t, filepath.Join(base, "logs", "metrics.prom"), paths.MetricsFile)
}

func TestResolvePathsEmptyCSVDir(t *testing.T) {
	paths := ResolvePaths(Default(), "/work")
	assert.Empty(t, paths.CSVDir)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputFile = "out/nested/result.xlsx"
	cfg.Paths.CSVDir = "csv"

	paths := ResolvePaths(cfg, dir)
	require.NoError(t, paths.EnsureDirectories())

	for _, d := range []string{"logs", "out/nested", "csv"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir(), d)
	}

	// assets is input only
	assert.False(t, FileExists(filepath.Join(dir, "assets")))
}
