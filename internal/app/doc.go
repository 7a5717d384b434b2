// Package app runs a consolidation: it validates the input and output
// locations, discovers exports, loads them concurrently, reconciles the
// rows and writes the workbook.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, an optional YAML file and the environment
//	2. Resolve paths and create the output side directories
//	3. Initialize logging and, when enabled, tracing and metrics
//	4. Run the Consolidator once
//	5. Flush telemetry and close the log file
//
// # Errors
//
// Run returns ErrNoInputFiles, ErrNoValidData or ErrEmptyResult when there is
// nothing to write. Files that fail to load are logged and skipped.
package app
