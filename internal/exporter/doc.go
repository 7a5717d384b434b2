// Package exporter writes the consolidated series to disk.
//
// WorkbookWriter produces the .xlsx output: one sheet per metric, company
// names down column A, one date column per trading day, header row frozen.
//
// CSVWriter optionally mirrors each sheet as a UTF-8 CSV with a BOM so Excel
// opens it with the right encoding.
//
// Example usage:
//
//	sheets := exporter.BuildSheets(dataprocessing.PivotAll(rows), cfg.SheetNames())
//	writer := exporter.NewWorkbookWriter(exporter.OptionsFromConfig(cfg.Output))
//	if err := writer.Write("consolidated_output.xlsx", sheets); err != nil {
//	    return err
//	}
package exporter
