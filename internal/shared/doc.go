// Package shared holds helpers used by more than one package.
//
// The testutil subpackage builds Capitaline export fixtures (xlsx and csv
// files with the banner row and header on row 2) and captures slog records
// for assertions:
//
//	fx := testutil.NewExportFixtures(t, filepath.Join(t.TempDir(), "assets"))
//	fx.WriteSampleExports()
//
//	logger, handler := testutil.NewTestLogger(t)
//	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Skipping file")
package shared
