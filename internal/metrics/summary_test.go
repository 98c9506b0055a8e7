package metrics

import (
	"testing"
	"time"

	"eos-swap-lab/internal/domain"
)

func TestSummarize(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	sell := mkTrade(day2, "bob", 300, 100)
	sell.Direction = domain.DirectionNFXToEFX

	trades := []*domain.Trade{
		mkTrade(day1, "alice", 100, 50), // ratio 2.0
		sell,                            // ratio 3.0
	}

	s := Summarize(trades)
	if s.TotalTrades != 2 {
		t.Errorf("TotalTrades = %d, want 2", s.TotalTrades)
	}
	if s.UniqueTraders != 2 {
		t.Errorf("UniqueTraders = %d, want 2", s.UniqueTraders)
	}
	if !s.FirstTrade.Equal(day1) || !s.LastTrade.Equal(day2) {
		t.Errorf("trade span = [%v, %v], want [%v, %v]", s.FirstTrade, s.LastTrade, day1, day2)
	}
	if !almostEqual(s.TotalEFXVolume, 400) || !almostEqual(s.TotalNFXVolume, 150) {
		t.Errorf("volumes = %v EFX, %v NFX, want 400, 150", s.TotalEFXVolume, s.TotalNFXVolume)
	}
	if !almostEqual(s.VWAPRatio, 2.75) {
		t.Errorf("VWAPRatio = %v, want 2.75", s.VWAPRatio)
	}
	if !almostEqual(s.SimpleAvgRatio, 2.5) {
		t.Errorf("SimpleAvgRatio = %v, want 2.5", s.SimpleAvgRatio)
	}
	if !almostEqual(s.MinRatio, 2.0) || !almostEqual(s.MaxRatio, 3.0) {
		t.Errorf("ratio range = [%v,%v], want [2,3]", s.MinRatio, s.MaxRatio)
	}
	if s.EFXToNFXTrades != 1 || s.NFXToEFXTrades != 1 {
		t.Errorf("direction counts = %d buy, %d sell, want 1, 1", s.EFXToNFXTrades, s.NFXToEFXTrades)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalTrades != 0 || !s.FirstTrade.IsZero() {
		t.Fatalf("Summarize(nil) = %+v, want zero value", s)
	}
}

func TestDailyStats(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	trades := []*domain.Trade{
		mkTrade(day2, "bob", 300, 100),    // 3.0
		mkTrade(day1, "alice", 100, 50),   // 2.0
		mkTrade(day1, "carol", 400, 100),  // 4.0
		mkTrade(day1, "alice", 200, 100),  // 2.0
	}

	stats := DailyStats(trades)
	if len(stats) != 2 {
		t.Fatalf("got %d daily stats, want 2", len(stats))
	}

	d1 := stats[0]
	if d1.Date != "2024-03-01" {
		t.Fatalf("first date = %s, want 2024-03-01", d1.Date)
	}
	if d1.TradeCount != 3 || d1.UniqueTraders != 2 {
		t.Errorf("day 1 = %d trades, %d traders, want 3, 2", d1.TradeCount, d1.UniqueTraders)
	}
	if !almostEqual(d1.MeanRatio, 8.0/3.0) {
		t.Errorf("day 1 mean ratio = %v, want %v", d1.MeanRatio, 8.0/3.0)
	}
	if !almostEqual(d1.MinRatio, 2.0) || !almostEqual(d1.MaxRatio, 4.0) {
		t.Errorf("day 1 ratio range = [%v,%v], want [2,4]", d1.MinRatio, d1.MaxRatio)
	}
	if !almostEqual(d1.EFXVolume, 700) {
		t.Errorf("day 1 EFX volume = %v, want 700", d1.EFXVolume)
	}

	if stats[1].Date != "2024-03-02" || stats[1].TradeCount != 1 {
		t.Errorf("day 2 = %s with %d trades, want 2024-03-02 with 1", stats[1].Date, stats[1].TradeCount)
	}
}

func TestDailyStatsEmpty(t *testing.T) {
	if got := DailyStats(nil); got != nil {
		t.Fatalf("DailyStats(nil) = %v, want nil", got)
	}
}
