package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedSlogHandler(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.With("component", "consolidator").Warn("Skipping file", slog.String("file", "broken.xlsx"))
	logger.Info("Consolidation complete")

	records := handler.Records()
	assert.Len(t, records, 2)

	r := AssertLogContains(t, handler, slog.LevelWarn, "Skipping")
	assert.Equal(t, "consolidator", r.Attrs["component"])
	assert.Equal(t, "broken.xlsx", r.Attrs["file"])

	_, ok := handler.Find(slog.LevelError, "Skipping")
	assert.False(t, ok)
	AssertNoErrors(t, handler)
}

func TestExportFixtures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")
	fx := NewExportFixtures(t, dir)
	fx.WriteSampleExports()

	for _, name := range []string{"nse.xlsx", "bse.csv", "broken.xlsx", "~$nse.xlsx"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}
