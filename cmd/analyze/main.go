package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"eos-swap-lab/internal/domain"
	"eos-swap-lab/internal/metrics"
	chstore "eos-swap-lab/internal/storage/clickhouse"
	"eos-swap-lab/internal/storage/migrations"
	pgstore "eos-swap-lab/internal/storage/postgres"
	"eos-swap-lab/internal/trades"
)

func main() {
	// Parse flags
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for the trade archive (empty to skip archiving)")
	feeCollector := flag.String("fee-collector", trades.DefaultFeeCollector, "Account receiving the fee leg of a swap")
	startTime := flag.String("start-time", "", "Ledger block time lower bound, e.g. 2024-03-01T00:00:00.000")
	endTime := flag.String("end-time", "", "Ledger block time upper bound")
	topTraders := flag.Int("top", 20, "Number of traders to list in the rankings")
	showDaily := flag.Bool("daily", true, "Print the per-day rollup")
	showHistogram := flag.Bool("histogram", true, "Print the price-range histogram")

	flag.Parse()

	logger := log.New(os.Stderr, "[analyze] ", log.LstdFlags)

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required")
		os.Exit(1)
	}

	ctx := context.Background()

	if err := run(ctx, logger, *postgresDSN, *clickhouseDSN, *feeCollector, *startTime, *endTime, *topTraders, *showDaily, *showHistogram); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, postgresDSN, clickhouseDSN, feeCollector, startTime, endTime string, topTraders int, showDaily, showHistogram bool) error {
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	reconstructor := trades.NewReconstructor(trades.ReconstructorOptions{
		ActionStore:  pgstore.NewActionStore(pool),
		FeeCollector: feeCollector,
		Logger:       logger,
	})

	filter := trades.DefaultFilter()
	filter.FeeCollector = feeCollector
	filter.StartTime = startTime
	filter.EndTime = endTime

	result, err := reconstructor.Reconstruct(ctx, filter)
	if err != nil {
		return err
	}

	if len(result.Trades) == 0 {
		fmt.Println("No trades found.")
		return nil
	}

	if clickhouseDSN != "" {
		if err := archiveTrades(ctx, logger, clickhouseDSN, result.Trades); err != nil {
			return err
		}
	}

	printSummary(metrics.Summarize(result.Trades), result)

	if showDaily {
		printDailyStats(metrics.DailyStats(result.Trades))
	}
	if showHistogram {
		printHistogram(metrics.PriceRangeHistogram(result.Trades))
	}
	printTraderRankings(metrics.TraderRankings(result.Trades), topTraders)

	return nil
}

// archiveTrades writes the reconstructed trades to the ClickHouse archive.
func archiveTrades(ctx context.Context, logger *log.Logger, dsn string, ts []*domain.Trade) error {
	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to clickhouse: %w", err)
	}
	defer conn.Close()

	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		return fmt.Errorf("run clickhouse migrations: %w", err)
	}

	if err := chstore.NewTradeStore(conn).InsertBulk(ctx, ts); err != nil {
		return fmt.Errorf("archive trades: %w", err)
	}

	logger.Printf("Archived %d trades to ClickHouse", len(ts))
	return nil
}

func printSummary(s domain.Summary, result *trades.ReconstructResult) {
	fmt.Println("=== Swap Trade Summary ===")
	fmt.Printf("Period:            %s to %s\n",
		s.FirstTrade.Format(time.RFC3339), s.LastTrade.Format(time.RFC3339))
	fmt.Printf("Total trades:      %d (%d EFX->NFX, %d NFX->EFX)\n",
		s.TotalTrades, s.EFXToNFXTrades, s.NFXToEFXTrades)
	fmt.Printf("Unique traders:    %d\n", s.UniqueTraders)
	fmt.Printf("EFX volume:        %.4f\n", s.TotalEFXVolume)
	fmt.Printf("NFX volume:        %.4f\n", s.TotalNFXVolume)
	fmt.Printf("VWAP ratio:        %.6f\n", s.VWAPRatio)
	fmt.Printf("Simple avg ratio:  %.6f\n", s.SimpleAvgRatio)
	fmt.Printf("Daily avg ratio:   %.6f\n", s.DailyAvgRatio)
	fmt.Printf("Ratio range:       %.6f - %.6f\n", s.MinRatio, s.MaxRatio)

	if len(result.Rejected) > 0 {
		fmt.Printf("Rejected groups:   %d of %d", result.GroupsSeen-len(result.Trades), result.GroupsSeen)
		for reason, n := range result.Rejected {
			fmt.Printf(" %s=%d", reason, n)
		}
		fmt.Println()
	}
	fmt.Println()
}

func printDailyStats(stats []domain.DailyStat) {
	fmt.Println("=== Daily Rollup ===")
	fmt.Printf("%-12s %7s %8s %10s %10s %10s %14s\n",
		"Date", "Trades", "Traders", "Mean", "Min", "Max", "EFX Volume")
	for _, d := range stats {
		fmt.Printf("%-12s %7d %8d %10.6f %10.6f %10.6f %14.4f\n",
			d.Date, d.TradeCount, d.UniqueTraders, d.MeanRatio, d.MinRatio, d.MaxRatio, d.EFXVolume)
	}
	fmt.Println()
}

func printHistogram(buckets []domain.PriceBucket) {
	fmt.Println("=== Price Range Histogram ===")
	fmt.Printf("%-12s %7s %8s %14s %12s %8s\n",
		"Ratio", "Trades", "Traders", "EFX Volume", "W.Mean", "Vol%")
	for _, b := range buckets {
		wm := "-"
		if b.WeightedMean != nil {
			wm = fmt.Sprintf("%.6f", *b.WeightedMean)
		}
		fmt.Printf("%5.0f-%-6.0f %7d %8d %14.4f %12s %7.2f%%\n",
			b.Low, b.High, b.TradeCount, b.UniqueTraders, b.EFXVolume, wm, b.VolumePct)
	}
	fmt.Println()
}

func printTraderRankings(rankings []domain.TraderStats, top int) {
	if top > 0 && len(rankings) > top {
		rankings = rankings[:top]
	}

	fmt.Printf("=== Top %d Traders by EFX Volume ===\n", len(rankings))
	fmt.Printf("%-4s %-13s %7s %14s %10s %8s\n",
		"#", "Trader", "Trades", "EFX Volume", "Mean", "Vol%")
	for i, r := range rankings {
		fmt.Printf("%-4d %-13s %7d %14.4f %10.6f %7.2f%%\n",
			i+1, r.Trader, r.TradeCount, r.EFXVolume, r.SimpleMeanRatio, r.VolumePct)
	}
}
