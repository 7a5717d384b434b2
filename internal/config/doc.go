// Package config loads the consolidator configuration.
//
// Values are layered, lowest precedence first:
//
//	1. Default()
//	2. YAML file (explicit path, or config.yaml / configs/config.yaml)
//	3. Environment variables prefixed CAPITALINE_
//
// Environment variables follow the struct layout, for example:
//
//	CAPITALINE_LOGGING_LEVEL=debug
//	CAPITALINE_PATHS_ASSETS_DIR=/data/capitaline
//	CAPITALINE_OUTPUT_FIRST_COLUMN_WIDTH=32
//	CAPITALINE_PROCESSING_WORKERS=8
//	CAPITALINE_TELEMETRY_METRICS_ENABLED=true
//
// The loaded struct is checked with validator tags and a few cross-field
// rules (unique, Excel-legal sheet names).
//
// Paths are resolved to absolute locations by GetPaths, relative to the
// working directory the command was started from.
package config
