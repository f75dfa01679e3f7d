// Package handler はsymbolsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_collector/internal/feature/symbols/domain/entity"
	"stock_collector/internal/feature/symbols/transport/http/dto"
	"stock_collector/internal/feature/symbols/usecase"
)

// SymbolRegistry は銘柄レジストリ操作のユースケースインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolRegistry interface {
	ActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
	Add(ctx context.Context, ticker, name string) (*entity.Symbol, error)
	Deactivate(ctx context.Context, ticker, reason string) error
	Reactivate(ctx context.Context, ticker string) error
	Get(ctx context.Context, ticker string) (*entity.Symbol, error)
}

// SymbolHandler は銘柄レジストリのHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolRegistry
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolRegistry) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は追跡中の銘柄一覧を返します。
//
// エンドポイント例:
// GET /symbols
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.uc.ActiveSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, toItem(s))
	}
	c.JSON(http.StatusOK, out)
}

// Get は1銘柄の詳細を返します。未登録なら404です。
//
// GET /symbols/:ticker
func (h *SymbolHandler) Get(c *gin.Context) {
	s, err := h.uc.Get(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownSymbol) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toItem(*s))
}

// Add は銘柄を新規登録します。
// ティッカーが不正なら400、既に登録済みなら409を返します。
//
// POST /symbols
func (h *SymbolHandler) Add(c *gin.Context) {
	var req dto.AddSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.Add(c.Request.Context(), req.Ticker, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidTicker):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrDuplicateSymbol):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, toItem(*s))
}

// Deactivate は銘柄の追跡を停止します。履歴データは保持されます。
//
// DELETE /symbols/:ticker
func (h *SymbolHandler) Deactivate(c *gin.Context) {
	var req dto.DeactivateSymbolRequest
	// bodyは任意
	_ = c.ShouldBindJSON(&req)

	err := h.uc.Deactivate(c.Request.Context(), c.Param("ticker"), req.Reason)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownSymbol) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivate は停止中の銘柄の追跡を明示的に再開します。
//
// POST /symbols/:ticker/reactivate
func (h *SymbolHandler) Reactivate(c *gin.Context) {
	err := h.uc.Reactivate(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownSymbol) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func toItem(s entity.Symbol) dto.SymbolItem {
	item := dto.SymbolItem{
		Ticker:    s.Ticker,
		Name:      s.Name,
		IsActive:  s.IsActive,
		StartDate: s.StartDate.UTC().Format("2006-01-02"),
	}
	if s.EndDate != nil {
		end := s.EndDate.UTC().Format("2006-01-02")
		item.EndDate = &end
	}
	return item
}
