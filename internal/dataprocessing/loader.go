package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// DefaultHeaderRow is the 1-based row Capitaline exports put column names on;
// row 1 carries a report banner.
const DefaultHeaderRow = 2

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a loaded sheet: the header row plus every row below it
type Table struct {
	// Source is the base file name, used in log lines and exchange inference
	Source  string
	Sheet   string
	Headers []string
	Rows    [][]string
	// SerialDates is set for workbook formats, where a bare number in the
	// date column is an Excel serial
	SerialDates bool
}

// Cell returns the trimmed value at row i, column j, or "" when the row is
// shorter than j.
func (t *Table) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 {
		return ""
	}
	row := t.Rows[i]
	if j >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[j])
}

// LoadTable reads the first sheet of an .xlsx, .xls or .csv file using
// headerRow (1-based) as the column names.
func LoadTable(path string, headerRow int) (*Table, error) {
	if headerRow < 1 {
		headerRow = DefaultHeaderRow
	}

	var (
		rows    [][]string
		sheet   string
		err     error
		serials bool
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, sheet, err = readXLSX(path)
		serials = true
	case ".xls":
		rows, sheet, err = readXLS(path)
		serials = true
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < headerRow {
		return nil, fmt.Errorf("%w: expected header on row %d, file has %d rows", ErrNoHeaderRow, headerRow, len(rows))
	}

	headers := make([]string, len(rows[headerRow-1]))
	for i, h := range rows[headerRow-1] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Table{
		Source:      filepath.Base(path),
		Sheet:       sheet,
		Headers:     headers,
		Rows:        rows[headerRow:],
		SerialDates: serials,
	}, nil
}

// readXLSX returns the raw cell values of the first worksheet. Raw values
// keep numbers unformatted and dates as Excel serials.
func readXLSX(path string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, "", ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}

	return rows, sheets[0], nil
}

// readXLS reads the first worksheet of a legacy BIFF workbook. Numbers come
// back unformatted; date-formatted numeric cells come back as RFC 3339 text.
func readXLS(path string) ([][]string, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	wb, err := xls.OpenReader(file, "utf-8")
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, "", ErrEmptyWorkbook
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, "", ErrEmptyWorkbook
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}

	return rows, sheet.Name, nil
}

// xlsRow returns row i, or nil for a row the sheet stores no record for.
// WorkSheet.Row dereferences the missing entry, so blank rows would panic.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// readCSV reads every record; ragged rows are allowed
func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return parseCSV(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}
