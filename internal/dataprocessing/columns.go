package dataprocessing

import (
	"sort"
	"strings"
	"unicode"

	"capitaline/pkg/contracts/domain"
)

// ColumnKey is the canonical name a recognised header is mapped to
type ColumnKey string

const (
	KeyCompany   ColumnKey = "company_name"
	KeyDate      ColumnKey = "trading_date"
	KeyNSEPrice  ColumnKey = "nse_price"
	KeyBSEPrice  ColumnKey = "bse_price"
	KeyNSEReturn ColumnKey = "nse_return"
	KeyBSEReturn ColumnKey = "bse_return"
	KeyNSEMcap   ColumnKey = "nse_mcap"
	KeyBSEMcap   ColumnKey = "bse_mcap"
)

// CanonicalKeys lists every key in matching order
var CanonicalKeys = []ColumnKey{
	KeyCompany, KeyDate,
	KeyNSEPrice, KeyBSEPrice,
	KeyNSEReturn, KeyBSEReturn,
	KeyNSEMcap, KeyBSEMcap,
}

// HeaderSynonyms maps each key to the lower-cased header spellings seen in
// Capitaline exports.
var HeaderSynonyms = map[ColumnKey][]string{
	KeyCompany:   {"company name", "company", "stock name"},
	KeyDate:      {"trading date", "date"},
	KeyNSEPrice:  {"nse div adj close price", "nse price"},
	KeyBSEPrice:  {"bse div adj close price", "bse price"},
	KeyNSEReturn: {"nse daily total return (%)", "nse return"},
	KeyBSEReturn: {"bse daily total return (%)", "bse return"},
	KeyNSEMcap:   {"nse marketcap", "nse market cap"},
	KeyBSEMcap:   {"bse marketcap", "bse market cap"},
}

// genericSynonyms are exchange-less metric headers, used when the exchange
// can be taken from the file name instead.
var genericSynonyms = map[domain.Metric][]string{
	domain.MetricPrice:     {"div adj close price", "price"},
	domain.MetricReturn:    {"daily total return (%)", "return"},
	domain.MetricMarketCap: {"marketcap", "market cap"},
}

var exchangeKeys = map[domain.Exchange]map[domain.Metric]ColumnKey{
	domain.ExchangeNSE: {
		domain.MetricPrice:     KeyNSEPrice,
		domain.MetricReturn:    KeyNSEReturn,
		domain.MetricMarketCap: KeyNSEMcap,
	},
	domain.ExchangeBSE: {
		domain.MetricPrice:     KeyBSEPrice,
		domain.MetricReturn:    KeyBSEReturn,
		domain.MetricMarketCap: KeyBSEMcap,
	},
}

// Mapping records where each canonical column sits in a table
type Mapping struct {
	Columns map[ColumnKey]int
	// Inferred is set when exchange-less metric headers were attributed to
	// an exchange found in the file name
	Inferred domain.Exchange
	Missing  []ColumnKey
}

// Index returns the column position for key
func (m *Mapping) Index(key ColumnKey) (int, bool) {
	idx, ok := m.Columns[key]
	return idx, ok
}

// Has reports whether key was found
func (m *Mapping) Has(key ColumnKey) bool {
	_, ok := m.Columns[key]
	return ok
}

// Exchanges reports which exchanges the table carries metric data for
func (m *Mapping) Exchanges() []domain.Exchange {
	var out []domain.Exchange
	for _, ex := range []domain.Exchange{domain.ExchangeNSE, domain.ExchangeBSE} {
		for _, key := range exchangeKeys[ex] {
			if m.Has(key) {
				out = append(out, ex)
				break
			}
		}
	}
	return out
}

// NormalizeColumns maps headers to canonical keys. For each key the first
// matching header from the left wins and a header serves at most one key.
// source is the file name, consulted only for exchange-less metric headers.
func NormalizeColumns(headers []string, source string) *Mapping {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	m := &Mapping{Columns: make(map[ColumnKey]int)}
	claimed := make(map[int]bool)

	claim := func(key ColumnKey, variants []string) {
		for i, h := range lower {
			if claimed[i] {
				continue
			}
			if containsString(variants, h) {
				m.Columns[key] = i
				claimed[i] = true
				return
			}
		}
	}

	for _, key := range CanonicalKeys {
		claim(key, HeaderSynonyms[key])
	}

	if len(m.Exchanges()) == 0 {
		if ex := ExchangeFromFileName(source); ex != "" {
			for _, metric := range domain.Metrics {
				claim(exchangeKeys[ex][metric], genericSynonyms[metric])
			}
			if len(m.Exchanges()) > 0 {
				m.Inferred = ex
			}
		}
	}

	for _, key := range CanonicalKeys {
		if !m.Has(key) {
			m.Missing = append(m.Missing, key)
		}
	}

	return m
}

// ExchangeFromFileName returns NSE or BSE when exactly one of them appears
// as a word in the file name
func ExchangeFromFileName(name string) domain.Exchange {
	base := strings.ToLower(strings.TrimSuffix(name, fileExt(name)))
	tokens := strings.FieldsFunc(base, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var nse, bse bool
	for _, tok := range tokens {
		switch tok {
		case "nse":
			nse = true
		case "bse":
			bse = true
		}
	}

	switch {
	case nse && !bse:
		return domain.ExchangeNSE
	case bse && !nse:
		return domain.ExchangeBSE
	}
	return ""
}

// MissingNames returns the missing keys as sorted strings for logging
func (m *Mapping) MissingNames() []string {
	names := make([]string, len(m.Missing))
	for i, k := range m.Missing {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func fileExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
