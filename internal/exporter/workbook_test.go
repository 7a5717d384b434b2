package exporter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"capitaline/internal/config"
	"capitaline/internal/dataprocessing"
	"capitaline/pkg/contracts/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRows() []domain.Reconciled {
	return []domain.Reconciled{
		{Company: "Infosys", Date: day(2024, 1, 15), Price: domain.Float(1523.45), Return: domain.Float(0.5), AvgMcap: domain.Float(630000)},
		{Company: "Infosys", Date: day(2024, 1, 16), Price: domain.Float(1530)},
		{Company: "TCS", Date: day(2024, 1, 16), Price: domain.Float(3700.5), AvgMcap: domain.Float(1350000)},
	}
}

func TestWorkbookWriterWrite(t *testing.T) {
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "out", "consolidated_output.xlsx")

	sheets := BuildSheets(dataprocessing.PivotAll(sampleRows()), cfg.SheetNames())
	writer := NewWorkbookWriter(OptionsFromConfig(cfg.Output))
	require.NoError(t, writer.Write(path, sheets))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{domain.SheetPrice, domain.SheetReturn, domain.SheetMarketCap}, f.GetSheetList())

	price := domain.SheetPrice
	a1, err := f.GetCellValue(price, "A1")
	require.NoError(t, err)
	assert.Equal(t, "company_name", a1)

	b1, err := f.GetCellValue(price, "B1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", b1)

	c1, err := f.GetCellValue(price, "C1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16", c1)

	styleID, err := f.GetCellStyle(price, "C1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, "yyyy-mm-dd", *style.CustomNumFmt)

	rows, err := f.GetRows(price, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Infosys", "1523.45", "1530"}, rows[1])
	// Missing values stay empty
	assert.Equal(t, []string{"TCS", "", "3700.5"}, rows[2])

	mcap, err := f.GetRows(domain.SheetMarketCap, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, mcap, 3)
	assert.Equal(t, []string{"Infosys", "630000"}, mcap[1])

	width, err := f.GetColWidth(price, "A")
	require.NoError(t, err)
	assert.Equal(t, 28.0, width)

	panes, err := f.GetPanes(price)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.XSplit)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "B2", panes.TopLeftCell)
}

func TestWorkbookWriterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	sheets := BuildSheets(dataprocessing.PivotAll(sampleRows()), nil)
	require.NoError(t, NewWorkbookWriter(WorkbookOptions{FirstColumnWidth: 28}).Write(path, sheets))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 3)
}

func TestWorkbookWriterNoSheets(t *testing.T) {
	err := NewWorkbookWriter(WorkbookOptions{}).Write(filepath.Join(t.TempDir(), "x.xlsx"), nil)
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestBuildSheetsNames(t *testing.T) {
	tables := dataprocessing.PivotAll(sampleRows())

	sheets := BuildSheets(tables, []string{"Prices", ""})
	require.Len(t, sheets, 3)
	assert.Equal(t, "Prices", sheets[0].Name)
	assert.Equal(t, domain.SheetReturn, sheets[1].Name)
	assert.Equal(t, domain.SheetMarketCap, sheets[2].Name)
	assert.Equal(t, domain.MetricMarketCap, sheets[2].Table.Metric)
}
