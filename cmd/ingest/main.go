// ingest は1回のバー収集を実行するワンショットコマンドです。
// スケジューラからの定期実行とは別に、手動での再実行やバックフィルに使います。
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"stock_collector/internal/app/di"
	"stock_collector/internal/feature/marketdata/usecase"
	"stock_collector/internal/platform/db"
	"stock_collector/internal/platform/dblog"
)

func main() {
	var (
		symbolsFlag  = flag.String("symbols", "", "comma-separated tickers; empty means all active symbols")
		lookbackFlag = flag.Duration("lookback", 24*time.Hour, "time range to fetch per symbol")
		workersFlag  = flag.Int("workers", 4, "concurrent symbol pipelines")
		timeoutFlag  = flag.Duration("timeout", 15*time.Minute, "overall run timeout")
	)
	flag.Parse()

	gdb := db.OpenDB()

	// WARN以上はDBにも残す
	logger := slog.New(dblog.NewHandler(slog.NewTextHandler(os.Stdout, nil), gdb, slog.LevelWarn))
	slog.SetDefault(logger)

	uc := di.NewIngestUsecase(gdb, nil, nil)
	uc.SetWorkers(*workersFlag)
	uc.SetLookback(*lookbackFlag)

	var only []string
	if *symbolsFlag != "" {
		for _, s := range strings.Split(*symbolsFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				only = append(only, s)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	res, err := uc.Run(ctx, only)
	if err != nil {
		log.Fatal("ingest run failed:", err)
	}
	if res.Status() == usecase.StatusFailed {
		log.Fatal("ingest run failed for all symbols: ", strings.Join(res.FailedSymbols(), ","))
	}
	log.Println("ingest ok:", string(res.Status()))
}
