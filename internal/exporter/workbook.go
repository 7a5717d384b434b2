package exporter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"capitaline/internal/config"
	"capitaline/internal/dataprocessing"
)

// ErrNoSheets is returned when Write is called without any sheet data
var ErrNoSheets = errors.New("no sheets to write")

// SheetData pairs an output sheet title with its table
type SheetData struct {
	Name  string
	Table *dataprocessing.WideTable
}

// WorkbookOptions controls the layout of every sheet
type WorkbookOptions struct {
	IndexHeader      string
	DateFormat       string
	FirstColumnWidth float64
	FreezePanes      bool
}

// OptionsFromConfig builds workbook options from the output settings
func OptionsFromConfig(cfg config.OutputConfig) WorkbookOptions {
	return WorkbookOptions{
		IndexHeader:      cfg.IndexHeader,
		DateFormat:       cfg.DateFormat,
		FirstColumnWidth: cfg.FirstColumnWidth,
		FreezePanes:      cfg.FreezePanes,
	}
}

// WorkbookWriter writes wide tables to an .xlsx workbook, one sheet each
type WorkbookWriter struct {
	opts WorkbookOptions
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(opts WorkbookOptions) *WorkbookWriter {
	if opts.IndexHeader == "" {
		opts.IndexHeader = "company_name"
	}
	if opts.DateFormat == "" {
		opts.DateFormat = "yyyy-mm-dd"
	}
	return &WorkbookWriter{opts: opts}
}

// Write builds the workbook and saves it to path, replacing any existing
// file. Sheets are written in the order given.
func (w *WorkbookWriter) Write(path string, sheets []SheetData) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := w.newStyles(f)
	if err != nil {
		return err
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("failed to rename sheet to %s: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}

		if err := w.writeSheet(f, sheet, styles); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Workbook saved",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)))

	return nil
}

type sheetStyles struct {
	header int
	date   int
}

func (w *WorkbookWriter) newStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	numFmt := w.opts.DateFormat
	date, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &numFmt,
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create date style: %w", err)
	}

	return sheetStyles{header: header, date: date}, nil
}

func (w *WorkbookWriter) writeSheet(f *excelize.File, sheet SheetData, styles sheetStyles) error {
	name := sheet.Name
	table := sheet.Table

	if err := f.SetCellValue(name, "A1", w.opts.IndexHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", "A1", styles.header); err != nil {
		return err
	}

	for j, d := range table.Dates {
		cell, err := excelize.CoordinatesToCellName(j+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, d); err != nil {
			return err
		}
	}
	if len(table.Dates) > 0 {
		last, err := excelize.CoordinatesToCellName(len(table.Dates)+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "B1", last, styles.date); err != nil {
			return err
		}
	}

	for i, company := range table.Companies {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, company); err != nil {
			return err
		}

		// nil values leave the cell empty
		for j, v := range table.Values[i] {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+2, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, *v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(name, "A", "A", w.opts.FirstColumnWidth); err != nil {
		return err
	}

	if w.opts.FreezePanes {
		if err := f.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			XSplit:      1,
			YSplit:      1,
			TopLeftCell: "B2",
			ActivePane:  "bottomRight",
		}); err != nil {
			return err
		}
	}

	return nil
}

// BuildSheets pairs each wide table with the title at the same position in
// names, falling back to the metric's default title.
func BuildSheets(tables []*dataprocessing.WideTable, names []string) []SheetData {
	sheets := make([]SheetData, 0, len(tables))
	for i, t := range tables {
		name := t.Metric.DefaultSheetName()
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		sheets = append(sheets, SheetData{Name: name, Table: t})
	}
	return sheets
}
