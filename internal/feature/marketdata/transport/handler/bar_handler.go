// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_collector/internal/feature/marketdata/domain/entity"
	"stock_collector/internal/feature/marketdata/transport/http/dto"
)

// BarsUsecase はバー照会のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type BarsUsecase interface {
	GetBars(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error)
}

// BarsHandler は保存済みOHLCVバーのHTTPリクエストを処理します。
type BarsHandler struct {
	uc BarsUsecase
}

// NewBarsHandler は指定されたusecaseでBarsHandlerの新しいインスタンスを生成します。
func NewBarsHandler(uc BarsUsecase) *BarsHandler {
	return &BarsHandler{uc: uc}
}

// GetBarsHandler は銘柄のバーを新しい順にJSONで返します。
//
// エンドポイント例:
// GET /bars/:ticker?outputsize=200
func (h *BarsHandler) GetBarsHandler(c *gin.Context) {
	ticker := c.Param("ticker")
	outputsizeStr := c.DefaultQuery("outputsize", "200")
	// 不正な値はusecase側でデフォルトに丸められる
	outputsize, _ := strconv.Atoi(outputsizeStr)

	bars, err := h.uc.GetBars(c.Request.Context(), ticker, outputsize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.BarResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, dto.BarResponse{
			Timestamp: b.Timestamp.UTC().Format(time.RFC3339),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}
