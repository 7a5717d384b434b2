package dataprocessing

import (
	"sort"
	"time"

	"capitaline/pkg/contracts/domain"
)

// WideTable is one metric laid out with companies as rows and dates as columns
type WideTable struct {
	Metric    domain.Metric
	Companies []string
	Dates     []time.Time
	// Values[i][j] is the value for Companies[i] on Dates[j], nil when absent
	Values [][]*float64
}

// Pivot lays out one metric of the reconciled rows. Companies and dates are
// the union over all rows, so every metric pivots to the same shape.
func Pivot(rows []domain.Reconciled, metric domain.Metric) *WideTable {
	companies, dates := axes(rows)

	companyIdx := make(map[string]int, len(companies))
	for i, c := range companies {
		companyIdx[c] = i
	}
	dateIdx := make(map[time.Time]int, len(dates))
	for j, d := range dates {
		dateIdx[d] = j
	}

	values := make([][]*float64, len(companies))
	for i := range values {
		values[i] = make([]*float64, len(dates))
	}
	for _, r := range rows {
		values[companyIdx[r.Company]][dateIdx[r.Date]] = r.Value(metric)
	}

	return &WideTable{
		Metric:    metric,
		Companies: companies,
		Dates:     dates,
		Values:    values,
	}
}

// PivotAll pivots every output metric in sheet order
func PivotAll(rows []domain.Reconciled) []*WideTable {
	tables := make([]*WideTable, 0, len(domain.Metrics))
	for _, m := range domain.Metrics {
		tables = append(tables, Pivot(rows, m))
	}
	return tables
}

func axes(rows []domain.Reconciled) ([]string, []time.Time) {
	seenCompany := make(map[string]bool)
	seenDate := make(map[time.Time]bool)
	var companies []string
	var dates []time.Time

	for _, r := range rows {
		if !seenCompany[r.Company] {
			seenCompany[r.Company] = true
			companies = append(companies, r.Company)
		}
		if !seenDate[r.Date] {
			seenDate[r.Date] = true
			dates = append(dates, r.Date)
		}
	}

	sort.Strings(companies)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return companies, dates
}
