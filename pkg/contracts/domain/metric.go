package domain

// Exchange identifies one of the two data sources
type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// Metric is one of the three derived output series.
type Metric string

const (
	MetricPrice     Metric = "price"
	MetricReturn    Metric = "return"
	MetricMarketCap Metric = "mcap"
)

// Default output sheet names, one per metric.
const (
	SheetPrice     = "Div Adj Close Price"
	SheetReturn    = "Daily Total Return (%)"
	SheetMarketCap = "Average Marketcap"
)

// Metrics lists the output metrics in sheet order.
var Metrics = []Metric{MetricPrice, MetricReturn, MetricMarketCap}

// DefaultSheetName returns the default sheet title for a metric.
func (m Metric) DefaultSheetName() string {
	switch m {
	case MetricPrice:
		return SheetPrice
	case MetricReturn:
		return SheetReturn
	case MetricMarketCap:
		return SheetMarketCap
	}
	return string(m)
}

// RunSummary describes the outcome of a consolidation run.
type RunSummary struct {
	FilesFound   int      `json:"files_found"`
	FilesLoaded  int      `json:"files_loaded"`
	FilesSkipped []string `json:"files_skipped,omitempty"`
	RowsMerged   int      `json:"rows_merged"`
	RowsOutput   int      `json:"rows_output"`
	Companies    int      `json:"companies"`
	Dates        int      `json:"dates"`
	OutputPath   string   `json:"output_path"`
	CSVFiles     []string `json:"csv_files,omitempty"`
	ElapsedSecs  float64  `json:"elapsed_seconds"`
}
