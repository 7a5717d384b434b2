package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"capitaline/pkg/contracts/domain"
)

// maxExcelSerial is 9999-12-31 in the 1900 date system
const maxExcelSerial = 2958465

// dateLayouts are tried in order. Numeric day/month dates are read
// month-first, falling back to day-first when the month is out of range, for
// both slashes and dashes. Single-digit fields match the same layouts.
var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006/1/2",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"1/2/2006",
	"2/1/2006",
	"1/2/2006 15:04:05",
	"2/1/2006 15:04:05",
	"1/2/2006 15:04",
	"2/1/2006 15:04",
	"1-2-2006",
	"2-1-2006",
	"1-2-2006 15:04:05",
	"2-1-2006 15:04:05",
	"1-2-2006 15:04",
	"2-1-2006 15:04",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

var nullTokens = map[string]bool{
	"":     true,
	"-":    true,
	"--":   true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// ParseTable converts the rows of t into observations using the column
// positions in m. Rows without a usable date or company are dropped.
func ParseTable(t *Table, m *Mapping) ParseResult {
	result := ParseResult{
		Source:    t.Source,
		Total:     len(t.Rows),
		Exchanges: m.Exchanges(),
		Missing:   m.MissingNames(),
	}

	companyIdx, hasCompany := m.Index(KeyCompany)
	dateIdx, hasDate := m.Index(KeyDate)

	parseDate := ParseDate
	if t.SerialDates {
		parseDate = ParseWorkbookDate
	}

	for i := range t.Rows {
		if !hasDate {
			result.DroppedNoDate++
			continue
		}
		date, ok := parseDate(t.Cell(i, dateIdx))
		if !ok {
			result.DroppedNoDate++
			continue
		}

		company := ""
		if hasCompany {
			company = t.Cell(i, companyIdx)
		}
		if company == "" {
			result.DroppedNoCompany++
			continue
		}

		result.Observations = append(result.Observations, domain.Observation{
			Company:   company,
			Date:      date,
			NSEPrice:  numberAt(t, m, i, KeyNSEPrice),
			BSEPrice:  numberAt(t, m, i, KeyBSEPrice),
			NSEReturn: numberAt(t, m, i, KeyNSEReturn),
			BSEReturn: numberAt(t, m, i, KeyBSEReturn),
			NSEMcap:   numberAt(t, m, i, KeyNSEMcap),
			BSEMcap:   numberAt(t, m, i, KeyBSEMcap),
			Source:    t.Source,
		})
	}

	result.Valid = len(result.Observations)
	return result
}

func numberAt(t *Table, m *Mapping, row int, key ColumnKey) *float64 {
	idx, ok := m.Index(key)
	if !ok {
		return nil
	}
	return ParseNumber(t.Cell(row, idx))
}

// ParseDate coerces a text cell to a calendar date (UTC midnight) using the
// layouts in dateLayouts. Bare numbers are not dates here: a CSV "2024" is a
// year, not an Excel serial.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}

	return time.Time{}, false
}

// ParseWorkbookDate is ParseDate for cells read from .xlsx and .xls files,
// where dates usually arrive as raw Excel serial numbers (1900 system).
func ParseWorkbookDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	// Serials beyond the Excel range fall through so yyyymmdd still parses
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return truncateDay(t), true
	}

	return ParseDate(s)
}

// ParseNumber coerces a cell to a float. Thousands separators and a trailing
// percent sign are removed; placeholders such as "-" or "NA" give nil.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if nullTokens[strings.ToLower(s)] {
		return nil
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
