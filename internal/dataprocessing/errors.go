package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHeaderRow is returned when a sheet has fewer rows than the header position
	ErrNoHeaderRow = errors.New("no header row")
	// ErrUnsupportedFormat is returned for file extensions the loader cannot read
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyWorkbook is returned when a workbook has no worksheets
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
)

// Stage names the step a FileError happened in
type Stage string

const (
	StageLoad  Stage = "load"
	StageParse Stage = "parse"
)

// FileError records which input failed and at what stage
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

// Error implements the error interface
func (e *FileError) Error() string {
	if e == nil {
		return "unknown file error"
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewFileError wraps err with the file path and stage
func NewFileError(path string, stage Stage, err error) *FileError {
	return &FileError{Path: path, Stage: stage, Err: err}
}
