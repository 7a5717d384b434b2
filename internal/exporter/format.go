package exporter

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// formatFloat formats a value for CSV output at full precision. nil gives "".
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// formatDate renders t with an Excel style date format such as yyyy-mm-dd
func formatDate(t time.Time, excelFormat string) string {
	return t.Format(goDateLayout(excelFormat))
}

// goDateLayout translates the date tokens of an Excel number format into a
// Go time layout. Unknown characters are copied as literals.
func goDateLayout(excelFormat string) string {
	tokens := []struct {
		excel  string
		layout string
	}{
		{"yyyy", "2006"},
		{"mmmm", "January"},
		{"mmm", "Jan"},
		{"mm", "01"},
		{"dd", "02"},
		{"yy", "06"},
		{"m", "1"},
		{"d", "2"},
	}

	lower := strings.ToLower(excelFormat)
	var b strings.Builder
	for i := 0; i < len(lower); {
		matched := false
		for _, tok := range tokens {
			if strings.HasPrefix(lower[i:], tok.excel) {
				b.WriteString(tok.layout)
				i += len(tok.excel)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(excelFormat[i])
			i++
		}
	}
	return b.String()
}

// CSVFileName derives a file name from a sheet title, e.g.
// "Daily Total Return (%)" becomes "daily_total_return.csv".
func CSVFileName(sheet string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(sheet) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		b.WriteString("sheet")
	}
	return b.String() + ".csv"
}
