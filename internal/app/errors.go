package app

import "errors"

var (
	// ErrNoInputFiles is returned when the input directory has no exports
	ErrNoInputFiles = errors.New("no input files")
	// ErrNoValidData is returned when no file produced a usable row
	ErrNoValidData = errors.New("no valid data")
	// ErrEmptyResult is returned when reconciliation yields nothing
	ErrEmptyResult = errors.New("empty result, check column mapping")
)
