package domain

import (
	"time"
)

// Observation represents one company's row for one trading date as read from
// a single Capitaline export. Metric fields are nil when the source cell was
// missing, blank or not numeric.
type Observation struct {
	Company string    `json:"company_name"`
	Date    time.Time `json:"trading_date"`

	NSEPrice  *float64 `json:"nse_price,omitempty"`
	BSEPrice  *float64 `json:"bse_price,omitempty"`
	NSEReturn *float64 `json:"nse_return,omitempty"`
	BSEReturn *float64 `json:"bse_return,omitempty"`
	NSEMcap   *float64 `json:"nse_mcap,omitempty"`
	BSEMcap   *float64 `json:"bse_mcap,omitempty"`

	// Source is the base name of the file the row came from
	Source string `json:"source,omitempty"`
}

// Reconciled is the per (company, date) result after exchange fallback and
// averaging have been applied.
type Reconciled struct {
	Company string    `json:"company_name"`
	Date    time.Time `json:"trading_date"`

	Price   *float64 `json:"final_price,omitempty"`
	Return  *float64 `json:"final_return,omitempty"`
	AvgMcap *float64 `json:"avg_mcap,omitempty"`
}

// Value returns the reconciled value for the given metric.
func (r Reconciled) Value(m Metric) *float64 {
	switch m {
	case MetricPrice:
		return r.Price
	case MetricReturn:
		return r.Return
	case MetricMarketCap:
		return r.AvgMcap
	}
	return nil
}

// Float returns a pointer to v. Used when building observations.
func Float(v float64) *float64 {
	return &v
}
