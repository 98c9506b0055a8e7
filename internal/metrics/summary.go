package metrics

import (
	"eos-swap-lab/internal/domain"
)

// Summarize computes the headline statistics over the full trade stream.
// Returns the zero Summary for an empty stream.
func Summarize(trades []*domain.Trade) domain.Summary {
	if len(trades) == 0 {
		return domain.Summary{}
	}

	s := domain.Summary{
		FirstTrade:     trades[0].Timestamp,
		LastTrade:      trades[0].Timestamp,
		TotalTrades:    len(trades),
		VWAPRatio:      VWAP(trades),
		SimpleAvgRatio: SimpleMean(trades),
		DailyAvgRatio:  DailyAverage(trades),
		MinRatio:       trades[0].Ratio,
		MaxRatio:       trades[0].Ratio,
	}

	traders := make(map[string]struct{})
	for _, t := range trades {
		traders[t.Trader] = struct{}{}
		s.TotalEFXVolume += t.EFXAmount
		s.TotalNFXVolume += t.NFXAmount

		if t.Timestamp.Before(s.FirstTrade) {
			s.FirstTrade = t.Timestamp
		}
		if t.Timestamp.After(s.LastTrade) {
			s.LastTrade = t.Timestamp
		}
		if t.Ratio < s.MinRatio {
			s.MinRatio = t.Ratio
		}
		if t.Ratio > s.MaxRatio {
			s.MaxRatio = t.Ratio
		}

		switch t.Direction {
		case domain.DirectionEFXToNFX:
			s.EFXToNFXTrades++
		case domain.DirectionNFXToEFX:
			s.NFXToEFXTrades++
		}
	}
	s.UniqueTraders = len(traders)

	return s
}

// DailyStats rolls the trade stream up per UTC calendar date, in ascending
// date order. Dates with no trades are absent, not zero-filled.
func DailyStats(trades []*domain.Trade) []domain.DailyStat {
	if len(trades) == 0 {
		return nil
	}

	byDate := make(map[string][]*domain.Trade)
	for _, t := range trades {
		d := tradeDate(t)
		byDate[d] = append(byDate[d], t)
	}

	stats := make([]domain.DailyStat, 0, len(byDate))
	for _, d := range sortedDates(trades) {
		ts := byDate[d]
		stat := domain.DailyStat{
			Date:       d,
			TradeCount: len(ts),
			MinRatio:   ts[0].Ratio,
			MaxRatio:   ts[0].Ratio,
			VWAP:       VWAP(ts),
		}

		traders := make(map[string]struct{})
		var ratioSum float64
		for _, t := range ts {
			traders[t.Trader] = struct{}{}
			ratioSum += t.Ratio
			stat.EFXVolume += t.EFXAmount
			stat.NFXVolume += t.NFXAmount
			if t.Ratio < stat.MinRatio {
				stat.MinRatio = t.Ratio
			}
			if t.Ratio > stat.MaxRatio {
				stat.MaxRatio = t.Ratio
			}
		}
		stat.UniqueTraders = len(traders)
		stat.MeanRatio = ratioSum / float64(len(ts))

		stats = append(stats, stat)
	}

	return stats
}
