package domain

import "time"

// PriceBucket is one unit-width ratio bin [Low, High) of the price-range
// histogram.
type PriceBucket struct {
	Low           float64
	High          float64
	TradeCount    int
	UniqueTraders int
	EFXVolume     float64
	NFXVolume     float64
	SimpleMean    float64  // 0 when the bucket is empty
	WeightedMean  *float64 // nil when the bucket's EFX volume is zero
	VolumePct     float64  // share of total EFX volume, percent
}

// TraderStats aggregates all trades of a single trader.
type TraderStats struct {
	Trader            string
	TradeCount        int
	EFXVolume         float64
	NFXVolume         float64
	MinRatio          float64
	MaxRatio          float64
	SimpleMeanRatio   float64
	WeightedMeanRatio *float64 // nil when the trader's EFX volume is zero
	VolumePct         float64
}

// DailyStat is the per-calendar-date rollup of the trade stream.
type DailyStat struct {
	Date          string // YYYY-MM-DD, UTC
	TradeCount    int
	UniqueTraders int
	MeanRatio     float64
	MinRatio      float64
	MaxRatio      float64
	EFXVolume     float64
	NFXVolume     float64
	VWAP          float64
}

// Summary holds the headline statistics over the full trade collection.
type Summary struct {
	FirstTrade      time.Time
	LastTrade       time.Time
	TotalTrades     int
	UniqueTraders   int
	TotalEFXVolume  float64
	TotalNFXVolume  float64
	VWAPRatio       float64
	SimpleAvgRatio  float64
	DailyAvgRatio   float64
	MinRatio        float64
	MaxRatio        float64
	EFXToNFXTrades  int
	NFXToEFXTrades  int
}
