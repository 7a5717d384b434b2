package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter exports wide tables as CSV files into one directory
type CSVWriter struct {
	dir        string
	dateFormat string
}

// NewCSVWriter creates a new CSV writer instance. dateFormat is an Excel
// style format used for the date header cells.
func NewCSVWriter(dir, dateFormat string) *CSVWriter {
	return &CSVWriter{dir: dir, dateFormat: dateFormat}
}

// WriteSheets writes one CSV file per sheet and returns the paths written
func (w *CSVWriter) WriteSheets(sheets []SheetData, indexHeader string) ([]string, error) {
	paths := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		path, err := w.WriteSheet(sheet, indexHeader)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteSheet writes a single wide table with the index column first
func (w *CSVWriter) WriteSheet(sheet SheetData, indexHeader string) (string, error) {
	path := filepath.Join(w.dir, CSVFileName(sheet.Name))
	table := sheet.Table

	headers := make([]string, 0, len(table.Dates)+1)
	headers = append(headers, indexHeader)
	for _, d := range table.Dates {
		headers = append(headers, formatDate(d, w.dateFormat))
	}

	stream, err := w.CreateStreamWriter(path, headers)
	if err != nil {
		return "", err
	}

	for i, company := range table.Companies {
		record := make([]string, 0, len(table.Dates)+1)
		record = append(record, company)
		for _, v := range table.Values[i] {
			record = append(record, formatFloat(v))
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	slog.Debug("Wrote CSV file",
		slog.String("sheet", sheet.Name),
		slog.String("path", path),
		slog.Int("rows", len(table.Companies)))

	return path, nil
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates the file, writes the UTF-8 BOM and the header row
func (w *CSVWriter) CreateStreamWriter(path string, headers []string) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	// BOM lets Excel detect UTF-8
	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
