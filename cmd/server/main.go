// server は銘柄レジストリの管理APIと保存済みバーの照会APIを提供します。
package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"stock_collector/internal/app/di"
	"stock_collector/internal/app/router"
	mdadapters "stock_collector/internal/feature/marketdata/adapters"
	mdhandler "stock_collector/internal/feature/marketdata/transport/handler"
	mdusecase "stock_collector/internal/feature/marketdata/usecase"
	symbolhandler "stock_collector/internal/feature/symbols/transport/handler"
	"stock_collector/internal/platform/cache"
	infradb "stock_collector/internal/platform/db"
	"stock_collector/internal/platform/dblog"
	infraredis "stock_collector/internal/platform/redis"
)

func main() {
	// db
	db := infradb.OpenDB()

	logger := slog.New(dblog.NewHandler(slog.NewTextHandler(os.Stdout, nil), db, slog.LevelWarn))
	slog.SetDefault(logger)

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	barRepo := mdadapters.NewBarRepository(db)

	// Redisキャッシュでラップ。1時間足の収集なので次の正時まで有効。
	ttl := cache.TimeUntilNextHour(time.Now())
	cachedBarRepo := cache.NewCachingBarRepository(rdb, ttl, barRepo, "bars")

	// Usecase
	registryUC := di.NewRegistryUsecase(db)
	barsUC := mdusecase.NewBarsUsecase(cachedBarRepo)

	// Handler
	symbolH := symbolhandler.NewSymbolHandler(registryUC)
	barsH := mdhandler.NewBarsHandler(barsUC)

	// ルータ生成
	r := router.NewRouter(db, symbolH, barsH)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
