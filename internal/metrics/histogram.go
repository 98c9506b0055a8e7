package metrics

import (
	"math"

	"eos-swap-lab/internal/domain"
)

// PriceRangeHistogram buckets trades into unit-width ratio bins [i, i+1)
// starting at 0. Every trade lands in exactly one bucket, including a trade
// whose ratio equals the integer maximum, so bucket volume percentages sum to
// 100. Empty buckets below the maximum are included with zero counts. A
// bucket with zero EFX volume has a nil weighted mean: undefined, not an
// error. Returns nil for an empty stream.
func PriceRangeHistogram(trades []*domain.Trade) []domain.PriceBucket {
	if len(trades) == 0 {
		return nil
	}

	var maxRatio float64
	for _, t := range trades {
		if t.Ratio > maxRatio {
			maxRatio = t.Ratio
		}
	}

	numBuckets := int(math.Ceil(maxRatio))
	if numBuckets == 0 {
		numBuckets = 1
	}
	// A ratio equal to the integer maximum sits on the top bin boundary;
	// grow the range so it is still covered by a half-open bin.
	if maxRatio == math.Trunc(maxRatio) {
		numBuckets = int(maxRatio) + 1
	}

	type bucketAcc struct {
		count     int
		traders   map[string]struct{}
		efxVolume float64
		nfxVolume float64
		ratioSum  float64
		weighted  float64
	}

	accs := make([]bucketAcc, numBuckets)
	var totalEFX float64

	for _, t := range trades {
		idx := int(math.Floor(t.Ratio))
		acc := &accs[idx]

		if acc.traders == nil {
			acc.traders = make(map[string]struct{})
		}
		acc.count++
		acc.traders[t.Trader] = struct{}{}
		acc.efxVolume += t.EFXAmount
		acc.nfxVolume += t.NFXAmount
		acc.ratioSum += t.Ratio
		acc.weighted += t.Ratio * t.EFXAmount
		totalEFX += t.EFXAmount
	}

	buckets := make([]domain.PriceBucket, numBuckets)
	for i, acc := range accs {
		b := domain.PriceBucket{
			Low:           float64(i),
			High:          float64(i + 1),
			TradeCount:    acc.count,
			UniqueTraders: len(acc.traders),
			EFXVolume:     acc.efxVolume,
			NFXVolume:     acc.nfxVolume,
		}

		if acc.count > 0 {
			b.SimpleMean = acc.ratioSum / float64(acc.count)
		}
		if acc.efxVolume > 0 {
			wm := acc.weighted / acc.efxVolume
			b.WeightedMean = &wm
		}
		if totalEFX > 0 {
			b.VolumePct = acc.efxVolume / totalEFX * 100
		}

		buckets[i] = b
	}

	return buckets
}
