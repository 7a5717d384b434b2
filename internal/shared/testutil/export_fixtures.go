package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ExportFixtures writes Capitaline-style exports into a directory
type ExportFixtures struct {
	t   *testing.T
	Dir string
}

// NewExportFixtures creates dir if needed and returns a fixture writer for it
func NewExportFixtures(t *testing.T, dir string) *ExportFixtures {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	return &ExportFixtures{t: t, Dir: dir}
}

// Path returns the location of name inside the fixture directory
func (f *ExportFixtures) Path(name string) string {
	return filepath.Join(f.Dir, name)
}

// WriteWorkbook saves rows to the first sheet of a new .xlsx, row 1 first
func (f *ExportFixtures) WriteWorkbook(name string, rows ...[]interface{}) string {
	f.t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(f.t, err)
		require.NoError(f.t, wb.SetSheetRow(sheet, cell, &row))
	}

	path := f.Path(name)
	require.NoError(f.t, wb.SaveAs(path))
	return path
}

// WriteCSV writes lines joined by newlines
func (f *ExportFixtures) WriteCSV(name string, lines ...string) string {
	f.t.Helper()
	return f.WriteRaw(name, strings.Join(lines, "\n")+"\n")
}

// WriteRaw writes content verbatim, for corrupt or non-export files
func (f *ExportFixtures) WriteRaw(name, content string) string {
	f.t.Helper()
	path := f.Path(name)
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteSampleExports lays out an NSE workbook, a BSE CSV, a corrupt
// workbook and an Excel lock file. Reconciled they give three companies
// over two dates.
func (f *ExportFixtures) WriteSampleExports() {
	f.t.Helper()

	f.WriteWorkbook("nse.xlsx",
		[]interface{}{"Capitaline NSE export"},
		[]interface{}{"Company Name", "Trading Date", "NSE Div Adj Close Price", "NSE Daily Total Return (%)", "NSE MarketCap"},
		[]interface{}{"Infosys", "2024-01-15", 100, 1.25, 1000},
		[]interface{}{"TCS", "2024-01-15", "", "", 2000},
	)

	f.WriteCSV("bse.csv",
		"Capitaline BSE export",
		"Company Name,Trading Date,BSE Div Adj Close Price,BSE Daily Total Return (%),BSE MarketCap",
		"Infosys,2024-01-15,99,0.9,3000",
		"TCS,2024-01-15,50,0.5,4000",
		"Wipro,2024-01-16,10,,",
	)

	f.WriteRaw("broken.xlsx", "not a workbook")
	f.WriteRaw("~$nse.xlsx", "lock")
}
