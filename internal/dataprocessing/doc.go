// Package dataprocessing turns Capitaline exchange exports into the three
// consolidated series written by the exporter.
//
// # Architecture
//
// The package is organized into four steps:
//
// 1. Loader: reads the first sheet of an .xlsx, .xls or .csv file, taking row 2 as the header
// 2. Columns: maps header text to canonical keys and works out which exchange a file covers
// 3. Parser: coerces dates and numbers, dropping rows without a date or company
// 4. Reconciler and Pivot: one row per (company, date), then one wide table per metric
//
// # Usage
//
//	table, err := dataprocessing.LoadTable("assets/nse_prices.xlsx", dataprocessing.DefaultHeaderRow)
//	if err != nil {
//	    return err
//	}
//	mapping := dataprocessing.NormalizeColumns(table.Headers, table.Source)
//	result := dataprocessing.ParseTable(table, mapping)
//
//	rows := dataprocessing.Reconcile(result.Observations)
//	for _, wide := range dataprocessing.PivotAll(rows) {
//	    // one sheet per metric
//	}
//
// # Reconciliation
//
// Within a (company, date) group the last non-empty value of each column
// wins. Price and return prefer NSE over BSE; market cap averages the
// exchanges that reported one.
package dataprocessing
