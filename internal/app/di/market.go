// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"gorm.io/gorm"

	companyadapters "stock_collector/internal/feature/company/adapters"
	companyusecase "stock_collector/internal/feature/company/usecase"
	mdadapters "stock_collector/internal/feature/marketdata/adapters"
	mdusecase "stock_collector/internal/feature/marketdata/usecase"
	symboladapters "stock_collector/internal/feature/symbols/adapters"
	symbolusecase "stock_collector/internal/feature/symbols/usecase"
	"stock_collector/internal/platform/externalapi/alpaca"
	"stock_collector/internal/platform/externalapi/yahoo"
	infrahttp "stock_collector/internal/platform/http"
	"stock_collector/internal/shared/ratelimiter"
	"stock_collector/internal/shared/retry"
)

// NewMarket creates a fully configured AlpacaMarket with HTTP client.
func NewMarket() *alpaca.AlpacaMarket {
	cfg := alpaca.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return alpaca.NewAlpacaMarket(cfg, httpClient)
}

// NewCompanyProvider creates a fully configured YahooCompany with HTTP client.
func NewCompanyProvider() *yahoo.YahooCompany {
	cfg := yahoo.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return yahoo.NewYahooCompany(cfg, httpClient)
}

// NewRegistryUsecase assembles the symbol registry on top of the database.
func NewRegistryUsecase(db *gorm.DB) *symbolusecase.RegistryUsecase {
	return symbolusecase.NewRegistryUsecase(symboladapters.NewSymbolRepository(db))
}

// NewIngestUsecase assembles the full bar ingestion pipeline:
// registry snapshot → provider fetch → normalize → idempotent upsert.
// バー書き込みの BarWriter は writer 引数で差し替え可能にし、
// キャッシュデコレータ付きのリポジトリも渡せるようにしています。
func NewIngestUsecase(db *gorm.DB, writer mdusecase.BarWriter, rec mdusecase.RunRecorder) *mdusecase.IngestUsecase {
	if writer == nil {
		writer = mdadapters.NewBarRepository(db)
	}
	// Alpacaの無料プランは200req/minなので少し余裕を残す
	rl := ratelimiter.NewRateLimiter(190, time.Minute)
	return mdusecase.NewIngestUsecase(
		NewRegistryUsecase(db),
		NewMarket(),
		writer,
		rl,
		retry.DefaultPolicy(),
		rec,
	)
}

// NewCompanyRefreshUsecase assembles the daily company profile refresher.
func NewCompanyRefreshUsecase(db *gorm.DB) *companyusecase.RefreshUsecase {
	rl := ratelimiter.NewRateLimiter(60, time.Minute)
	return companyusecase.NewRefreshUsecase(
		NewRegistryUsecase(db),
		NewCompanyProvider(),
		companyadapters.NewCompanyRepository(db),
		rl,
		retry.DefaultPolicy(),
	)
}
