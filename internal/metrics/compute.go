// Package metrics computes trading statistics over the reconstructed trade
// stream. All functions are pure and treat the input as read-only.
package metrics

import (
	"sort"

	"eos-swap-lab/internal/domain"
)

// VWAP is the volume-weighted average ratio, weighting each trade's ratio by
// its EFX amount. Returns 0 when the total EFX volume is zero.
func VWAP(trades []*domain.Trade) float64 {
	var weighted, volume float64
	for _, t := range trades {
		weighted += t.Ratio * t.EFXAmount
		volume += t.EFXAmount
	}
	if volume == 0 {
		return 0
	}
	return weighted / volume
}

// SimpleMean is the unweighted mean ratio. Returns 0 for an empty stream.
func SimpleMean(trades []*domain.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	var sum float64
	for _, t := range trades {
		sum += t.Ratio
	}
	return sum / float64(len(trades))
}

// DailyAverage is the mean over distinct calendar dates of that date's mean
// ratio. This is not the global simple mean: a heavy trading day contributes
// one data point, same as a quiet one.
func DailyAverage(trades []*domain.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}

	daySums := make(map[string]float64)
	dayCounts := make(map[string]int)
	for _, t := range trades {
		d := tradeDate(t)
		daySums[d] += t.Ratio
		dayCounts[d]++
	}

	var sum float64
	for d, total := range daySums {
		sum += total / float64(dayCounts[d])
	}
	return sum / float64(len(daySums))
}

// tradeDate is the trade's calendar date in UTC.
func tradeDate(t *domain.Trade) string {
	return t.Timestamp.UTC().Format("2006-01-02")
}

// sortedDates returns the distinct trade dates in ascending order.
func sortedDates(trades []*domain.Trade) []string {
	seen := make(map[string]struct{})
	for _, t := range trades {
		seen[tradeDate(t)] = struct{}{}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
