// Package adapters provides the storage implementations for the marketdata
// feature.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_collector/internal/feature/marketdata/domain/entity"
	"stock_collector/internal/feature/marketdata/usecase"
)

type barPostgres struct {
	db *gorm.DB
}

var _ usecase.BarWriter = (*barPostgres)(nil)
var _ usecase.BarReader = (*barPostgres)(nil)
var _ usecase.BarRepository = (*barPostgres)(nil)

// NewBarRepository は指定されたDB接続でバーのリポジトリを生成します。
func NewBarRepository(db *gorm.DB) *barPostgres {
	return &barPostgres{db: db}
}

// BarModel is the persistence model for the market_data table.
// The (symbol, timestamp) unique index is the dedup key for the upsert.
type BarModel struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:10;not null;uniqueIndex:market_data_sym_time,priority:1"`
	Timestamp time.Time `gorm:"not null;uniqueIndex:market_data_sym_time,priority:2"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume int64   `gorm:"not null;default:0"`
}

// TableName maps the model to the market_data table.
func (BarModel) TableName() string {
	return "market_data"
}

func toModel(e entity.Bar) BarModel {
	return BarModel{
		Symbol:    e.Symbol,
		Timestamp: e.Timestamp,
		Open:      e.Open,
		High:      e.High,
		Low:       e.Low,
		Close:     e.Close,
		Volume:    e.Volume,
	}
}

// UpsertBatch は1銘柄分のバッチを単一トランザクションで冪等に書き込みます。
// (symbol, timestamp) の衝突時は既存行を上書きします（訂正データの
// last-write-wins）。銘柄がレジストリに存在しない場合はバッチ全体を
// ErrOrphanRecord で拒否し、部分的な履歴は一切コミットしません。
// 接続はこのバッチの間だけ占有され、リトライのバックオフを跨いで保持されません。
func (r *barPostgres) UpsertBatch(ctx context.Context, bars []entity.Bar) (usecase.WriteResult, error) {
	if len(bars) == 0 {
		return usecase.WriteResult{}, nil
	}

	// バッチ内の同一キーは折り畳む（後勝ち）。プロバイダは同じバーを
	// 重複して返すことがある。
	type key struct {
		symbol string
		ts     int64
	}
	deduped := make([]entity.Bar, 0, len(bars))
	index := make(map[key]int, len(bars))
	skipped := 0
	for _, b := range bars {
		k := key{b.Symbol, b.Timestamp.UnixNano()}
		if i, ok := index[k]; ok {
			deduped[i] = b
			skipped++
			continue
		}
		index[k] = len(deduped)
		deduped = append(deduped, b)
	}

	var result usecase.WriteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// シンボルの存在確認（market_data のFKはアプリケーション境界で担保する）
		symbols := map[string]struct{}{}
		for _, b := range deduped {
			symbols[b.Symbol] = struct{}{}
		}
		for sym := range symbols {
			var n int64
			if err := tx.Table("symbols").Where("symbol = ?", sym).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", usecase.ErrOrphanRecord, sym)
			}
		}

		// 既存キーを数えて inserted/updated の内訳を確定する。
		// (symbol, timestamp) の組で照合しないと、別銘柄の同時刻行を
		// 既存扱いして内訳が崩れる。
		timestamps := make([]time.Time, 0, len(deduped))
		symbolList := make([]string, 0, len(symbols))
		for _, b := range deduped {
			timestamps = append(timestamps, b.Timestamp)
		}
		for sym := range symbols {
			symbolList = append(symbolList, sym)
		}
		var rows []BarModel
		err := tx.Model(&BarModel{}).
			Select("symbol", "timestamp").
			Where("symbol IN ?", symbolList).
			Where("timestamp IN ?", timestamps).
			Find(&rows).Error
		if err != nil {
			return err
		}
		existing := 0
		for _, row := range rows {
			if _, ok := index[key{row.Symbol, row.Timestamp.UnixNano()}]; ok {
				existing++
			}
		}

		ms := make([]BarModel, 0, len(deduped))
		for _, b := range deduped {
			ms = append(ms, toModel(b))
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "timestamp"}},
			DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
		}).Create(&ms).Error; err != nil {
			return err
		}

		result = usecase.WriteResult{
			Inserted: len(deduped) - existing,
			Updated:  existing,
			Skipped:  skipped,
		}
		return nil
	})
	if err != nil {
		return usecase.WriteResult{}, classifyStorageError(err)
	}
	return result, nil
}

// Find は指定された銘柄のバーを新しい順に返します。
func (r *barPostgres) Find(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error) {
	var rows []BarModel
	q := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp DESC")
	if outputsize > 0 {
		q = q.Limit(outputsize)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, classifyStorageError(err)
	}
	out := make([]entity.Bar, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Bar{
			Symbol:    m.Symbol,
			Timestamp: m.Timestamp,
			Open:      m.Open,
			High:      m.High,
			Low:       m.Low,
			Close:     m.Close,
			Volume:    m.Volume,
		})
	}
	return out, nil
}

// classifyStorageError はドライバのエラーをパイプラインのエラー種別に対応付けます。
// 接続断のみがリトライ対象です。
func classifyStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, usecase.ErrOrphanRecord) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503": // foreign_key_violation
			return fmt.Errorf("%w: %v", usecase.ErrOrphanRecord, err)
		case pgErr.Code == "23505" || pgErr.Code == "23514": // unique / check violation
			return fmt.Errorf("%w: %v", usecase.ErrConstraintViolation, err)
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08": // connection exception class
			return fmt.Errorf("%w: %v", usecase.ErrConnectionLost, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", usecase.ErrConnectionLost, err)
	}
	return err
}
