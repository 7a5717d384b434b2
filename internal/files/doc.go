// Package files discovers the spreadsheet exports a consolidation run reads.
//
// Discovery scans a single directory (no recursion) for .csv, .xlsx and .xls
// files, ignoring the "~$" owner files Excel creates beside open workbooks.
//
//	discovery := files.NewDiscovery(baseDir)
//	inputs, err := discovery.FindInputFiles("assets")
package files
