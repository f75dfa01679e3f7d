// Package adapters はsymbolsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stock_collector/internal/feature/symbols/domain/entity"
	"stock_collector/internal/feature/symbols/usecase"
)

// symbolPostgres はSymbolRepositoryインターフェースのリレーショナルDB実装です。
type symbolPostgres struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolPostgres)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolPostgresリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolPostgres {
	return &symbolPostgres{db: db}
}

// ListActive は有効な銘柄（is_active かつ end_date 未設定）をティッカー昇順で返します。
// 順序を固定することで、インジェスト実行のスナップショットが決定的になります。
func (r *symbolPostgres) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND end_date IS NULL", true).
		Order("symbol ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// FindByTicker はティッカーで銘柄を1件検索します。見つからない場合は (nil, nil) を返します。
func (r *symbolPostgres) FindByTicker(ctx context.Context, ticker string) (*entity.Symbol, error) {
	var s entity.Symbol
	err := r.db.WithContext(ctx).Where("symbol = ?", ticker).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create は新しい銘柄行を挿入します。ティッカーの一意性はスキーマの
// ユニーク制約で保証されます。
func (r *symbolPostgres) Create(ctx context.Context, s *entity.Symbol) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Update は銘柄行の全フィールドを保存します。end_date を NULL に戻す更新を
// 含むため、ゼロ値を無視する Updates ではなく Save を使います。
func (r *symbolPostgres) Update(ctx context.Context, s *entity.Symbol) error {
	return r.db.WithContext(ctx).Model(s).
		Select("name", "is_active", "start_date", "end_date").
		Updates(map[string]interface{}{
			"name":       s.Name,
			"is_active":  s.IsActive,
			"start_date": s.StartDate,
			"end_date":   s.EndDate,
		}).Error
}
