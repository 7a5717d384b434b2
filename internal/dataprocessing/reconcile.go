package dataprocessing

import (
	"sort"
	"time"

	"capitaline/pkg/contracts/domain"
)

type groupKey struct {
	company string
	date    time.Time
}

// Reconciler merges observations into one row per (company, date)
type Reconciler struct{}

// NewReconciler creates a new reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile groups observations by company and date. Within a group the last
// non-nil value of each column wins, in input order. Price and return take
// NSE and fall back to BSE; market cap is the mean of whichever exchange
// values are present. Output is sorted by company then date.
func (r *Reconciler) Reconcile(observations []domain.Observation) []domain.Reconciled {
	merged := mergeGroups(observations)

	keys := make([]groupKey, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].company != keys[j].company {
			return keys[i].company < keys[j].company
		}
		return keys[i].date.Before(keys[j].date)
	})

	result := make([]domain.Reconciled, 0, len(keys))
	for _, k := range keys {
		obs := merged[k]
		result = append(result, domain.Reconciled{
			Company: obs.Company,
			Date:    obs.Date,
			Price:   coalesce(obs.NSEPrice, obs.BSEPrice),
			Return:  coalesce(obs.NSEReturn, obs.BSEReturn),
			AvgMcap: mean(obs.NSEMcap, obs.BSEMcap),
		})
	}
	return result
}

// GetStatistics reports how a reconciliation pass resolved its input
func (r *Reconciler) GetStatistics(observations []domain.Observation, reconciled []domain.Reconciled) ReconcileStatistics {
	stats := ReconcileStatistics{
		InputRows:  len(observations),
		OutputRows: len(reconciled),
	}

	companies := make(map[string]bool)
	dates := make(map[time.Time]bool)
	for _, rec := range reconciled {
		companies[rec.Company] = true
		dates[rec.Date] = true
	}
	stats.Companies = len(companies)
	stats.Dates = len(dates)

	for _, acc := range mergeGroups(observations) {
		if acc.NSEPrice == nil && acc.BSEPrice != nil {
			stats.PriceFromBSE++
		}
		if acc.NSEReturn == nil && acc.BSEReturn != nil {
			stats.ReturnFromBSE++
		}
		if acc.NSEMcap != nil && acc.BSEMcap != nil {
			stats.McapAveraged++
		}
	}

	return stats
}

// Reconcile is a convenience wrapper around Reconciler.Reconcile
func Reconcile(observations []domain.Observation) []domain.Reconciled {
	return NewReconciler().Reconcile(observations)
}

// mergeGroups folds observations into one accumulator per (company, date)
func mergeGroups(observations []domain.Observation) map[groupKey]*domain.Observation {
	merged := make(map[groupKey]*domain.Observation)
	for i := range observations {
		obs := &observations[i]
		key := groupKey{company: obs.Company, date: obs.Date}

		acc, ok := merged[key]
		if !ok {
			acc = &domain.Observation{Company: obs.Company, Date: obs.Date}
			merged[key] = acc
		}
		lastNonNil(&acc.NSEPrice, obs.NSEPrice)
		lastNonNil(&acc.BSEPrice, obs.BSEPrice)
		lastNonNil(&acc.NSEReturn, obs.NSEReturn)
		lastNonNil(&acc.BSEReturn, obs.BSEReturn)
		lastNonNil(&acc.NSEMcap, obs.NSEMcap)
		lastNonNil(&acc.BSEMcap, obs.BSEMcap)
	}
	return merged
}

func lastNonNil(dst **float64, v *float64) {
	if v != nil {
		*dst = v
	}
}

func coalesce(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func mean(values ...*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return domain.Float(sum / float64(n))
}
