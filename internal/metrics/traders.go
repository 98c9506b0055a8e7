package metrics

import (
	"sort"

	"eos-swap-lab/internal/domain"
)

// TraderRankings aggregates trades per trader, sorted by EFX volume
// descending with ties broken by trader identifier ascending for
// deterministic output.
func TraderRankings(trades []*domain.Trade) []domain.TraderStats {
	if len(trades) == 0 {
		return nil
	}

	byTrader := make(map[string][]*domain.Trade)
	var totalEFX float64
	for _, t := range trades {
		byTrader[t.Trader] = append(byTrader[t.Trader], t)
		totalEFX += t.EFXAmount
	}

	rankings := make([]domain.TraderStats, 0, len(byTrader))
	for trader, ts := range byTrader {
		stats := domain.TraderStats{
			Trader:     trader,
			TradeCount: len(ts),
			MinRatio:   ts[0].Ratio,
			MaxRatio:   ts[0].Ratio,
		}

		var ratioSum, weighted float64
		for _, t := range ts {
			stats.EFXVolume += t.EFXAmount
			stats.NFXVolume += t.NFXAmount
			ratioSum += t.Ratio
			weighted += t.Ratio * t.EFXAmount
			if t.Ratio < stats.MinRatio {
				stats.MinRatio = t.Ratio
			}
			if t.Ratio > stats.MaxRatio {
				stats.MaxRatio = t.Ratio
			}
		}

		stats.SimpleMeanRatio = ratioSum / float64(len(ts))
		if stats.EFXVolume > 0 {
			wm := weighted / stats.EFXVolume
			stats.WeightedMeanRatio = &wm
		}
		if totalEFX > 0 {
			stats.VolumePct = stats.EFXVolume / totalEFX * 100
		}

		rankings = append(rankings, stats)
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].EFXVolume != rankings[j].EFXVolume {
			return rankings[i].EFXVolume > rankings[j].EFXVolume
		}
		return rankings[i].Trader < rankings[j].Trader
	})

	return rankings
}
