// Package router はHTTPルーティングの組み立てを提供します。
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	mdhandler "stock_collector/internal/feature/marketdata/transport/handler"
	symbolhandler "stock_collector/internal/feature/symbols/transport/handler"
	"stock_collector/internal/platform/http/handler"
	jwtmw "stock_collector/internal/platform/jwt"
)

func NewRouter(db *gorm.DB, symbols *symbolhandler.SymbolHandler, bars *mdhandler.BarsHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認・監視用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 認証必須のルート
	// 銘柄レジストリの変更は収集対象を直接左右するため、参照系も含めて
	// JWTを要求する
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/symbols", symbols.List)
		auth.GET("/symbols/:ticker", symbols.Get)
		auth.POST("/symbols", symbols.Add)
		auth.DELETE("/symbols/:ticker", symbols.Deactivate)
		auth.POST("/symbols/:ticker/reactivate", symbols.Reactivate)
		auth.GET("/bars/:ticker", bars.GetBarsHandler)
	}

	return r
}
