// scheduler はバー収集と企業情報リフレッシュを定期実行する常駐プロセスです。
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock_collector/internal/app/di"
	"stock_collector/internal/platform/db"
	"stock_collector/internal/platform/dblog"
	"stock_collector/internal/platform/metrics"
	"stock_collector/internal/shared/markethours"
)

func main() {
	gdb := db.OpenDB()

	logger := slog.New(dblog.NewHandler(slog.NewTextHandler(os.Stdout, nil), gdb, slog.LevelWarn))
	slog.SetDefault(logger)

	rec := metrics.NewRecorder(nil)
	ingestUC := di.NewIngestUsecase(gdb, nil, rec)
	refreshUC := di.NewCompanyRefreshUsecase(gdb)

	s := gocron.NewScheduler(time.UTC)

	// 毎時5分: 直近のバーを収集。取引時間外はスキップ。
	_, err := s.Cron("5 * * * *").Do(func() {
		if !markethours.IsTradingSession(time.Now()) {
			slog.Info("outside trading session, skipping ingest")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		if _, err := ingestUC.Run(ctx, nil); err != nil {
			slog.Error("scheduled ingest failed", "error", err)
		}
	})
	if err != nil {
		log.Fatal("failed to schedule ingest job:", err)
	}

	// 毎日 05:00 UTC: 企業プロフィールの洗い替え
	_, err = s.Cron("0 5 * * *").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		res, err := refreshUC.Refresh(ctx)
		if err != nil {
			slog.Error("company refresh failed", "error", err)
			return
		}
		slog.Info("company refresh completed",
			"succeeded", len(res.Succeeded), "failed", len(res.Failed))
	})
	if err != nil {
		log.Fatal("failed to schedule company refresh job:", err)
	}

	// メトリクス公開用の簡易HTTPサーバー
	go func() {
		addr := os.Getenv("METRICS_ADDR")
		if addr == "" {
			addr = ":9090"
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()

	s.StartAsync()
	slog.Info("scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("scheduler shutting down")
	s.Stop()
}
