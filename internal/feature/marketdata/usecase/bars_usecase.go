package usecase

import (
	"context"

	"stock_collector/internal/feature/marketdata/domain/entity"
)

const (
	// DefaultOutputSize はバー照会のデフォルト返却件数です。
	DefaultOutputSize = 200
	// MaxOutputSize はバーの最大返却件数です。
	MaxOutputSize = 5000
)

// BarReader はバーの読み取りレイヤーを抽象化します。
type BarReader interface {
	// Find は新しい順に最大 outputsize 件のバーを返します。
	Find(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error)
}

// BarRepository は読み取りと書き込みの両方を提供するストアです。
// キャッシュデコレータが内側のストアを包むときに使用します。
type BarRepository interface {
	BarReader
	BarWriter
}

// barsUsecase は保存済みバーの照会ユースケースです。
type barsUsecase struct {
	bars BarReader
}

// NewBarsUsecase は barsUsecase の新しいインスタンスを生成します。
func NewBarsUsecase(bars BarReader) *barsUsecase {
	return &barsUsecase{bars: bars}
}

// GetBars は指定された銘柄のバーを新しい順に返します。
func (bu *barsUsecase) GetBars(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error) {
	if outputsize <= 0 || outputsize > MaxOutputSize {
		outputsize = DefaultOutputSize
	}
	return bu.bars.Find(ctx, symbol, outputsize)
}
