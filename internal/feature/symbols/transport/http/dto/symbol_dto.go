// Package dto はsymbolsフィーチャーのリクエスト/レスポンスDTOを定義します。
package dto

// SymbolItem は銘柄1件のレスポンスDTOです。
type SymbolItem struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	IsActive  bool    `json:"is_active"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
}

// AddSymbolRequest は銘柄登録リクエストです。
type AddSymbolRequest struct {
	Ticker string `json:"ticker" binding:"required"`
	Name   string `json:"name"`
}

// DeactivateSymbolRequest は上場廃止・追跡停止リクエストです。
type DeactivateSymbolRequest struct {
	Reason string `json:"reason"`
}
