package dataprocessing

import (
	"capitaline/pkg/contracts/domain"
)

// ParseResult is the outcome of turning one table into observations
type ParseResult struct {
	Source       string
	Observations []domain.Observation

	// Total is the number of data rows before filtering
	Total int
	// Valid is the number of rows kept
	Valid            int
	DroppedNoDate    int
	DroppedNoCompany int

	Exchanges []domain.Exchange
	Missing   []string
}

// ReconcileStatistics summarises a reconciliation pass
type ReconcileStatistics struct {
	InputRows  int `json:"input_rows"`
	OutputRows int `json:"output_rows"`
	Companies  int `json:"companies"`
	Dates      int `json:"dates"`

	// Groups with a price or return only from BSE
	PriceFromBSE  int `json:"price_from_bse"`
	ReturnFromBSE int `json:"return_from_bse"`
	// Groups where both exchanges supplied a market cap
	McapAveraged int `json:"mcap_averaged"`
}
