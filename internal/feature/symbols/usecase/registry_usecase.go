package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"stock_collector/internal/feature/symbols/domain/entity"
)

// tickerPattern is the accepted ticker shape: uppercase alphanumeric, at most
// 10 characters.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// SymbolRepository は銘柄レジストリの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SymbolRepository interface {
	// ListActive は有効（is_active かつ end_date 未設定）の銘柄を
	// ティッカーの昇順で返します。
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	// FindByTicker は銘柄を1件検索します。存在しない場合は (nil, nil) を返します。
	FindByTicker(ctx context.Context, ticker string) (*entity.Symbol, error)
	Create(ctx context.Context, s *entity.Symbol) error
	Update(ctx context.Context, s *entity.Symbol) error
}

// RegistryUsecase は銘柄のライフサイクル（登録・停止・再開）を管理します。
// MarketDataやCompanyのパイプラインは、ここで読んだ有効銘柄のスナップショットを
// 1回の実行の間 不変のものとして扱います。
type RegistryUsecase struct {
	repo SymbolRepository
	now  func() time.Time
}

// NewRegistryUsecase は新しい RegistryUsecase を作成します。
func NewRegistryUsecase(repo SymbolRepository) *RegistryUsecase {
	return &RegistryUsecase{repo: repo, now: time.Now}
}

// ActiveSymbols は有効な銘柄の一覧をティッカー昇順で返します。
func (u *RegistryUsecase) ActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ActiveTickers は有効な銘柄のティッカーのみを返します。
// インジェスト実行の開始時に1度だけ読まれるスナップショットです。
func (u *RegistryUsecase) ActiveTickers(ctx context.Context) ([]string, error) {
	symbols, err := u.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	tickers := make([]string, 0, len(symbols))
	for _, s := range symbols {
		tickers = append(tickers, s.Ticker)
	}
	return tickers, nil
}

// Add は新しい銘柄を登録します。既存ティッカーの場合は有効・無効を問わず
// ErrDuplicateSymbol を返します。停止済み銘柄の復帰は Reactivate で行います。
func (u *RegistryUsecase) Add(ctx context.Context, ticker, name string) (*entity.Symbol, error) {
	if !tickerPattern.MatchString(ticker) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}

	existing, err := u.repo.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, ticker)
	}

	s := &entity.Symbol{
		Ticker:    ticker,
		Name:      name,
		IsActive:  true,
		StartDate: u.now().UTC(),
	}
	if err := u.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	slog.Info("symbol registered", "symbol", ticker, "name", name)
	return s, nil
}

// Deactivate は銘柄を停止します（上場廃止など）。end_date に現在時刻を設定し、
// is_active を false にします。既に停止済みの場合は何もせず成功を返します。
// 収集済みの過去データは保持されます。
func (u *RegistryUsecase) Deactivate(ctx context.Context, ticker, reason string) error {
	s, err := u.repo.FindByTicker(ctx, ticker)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, ticker)
	}
	if !s.IsActive && s.EndDate != nil {
		// 冪等: 停止済みの再停止は no-op
		return nil
	}

	end := u.now().UTC()
	s.IsActive = false
	s.EndDate = &end
	if err := u.repo.Update(ctx, s); err != nil {
		return err
	}
	slog.Info("symbol deactivated", "symbol", ticker, "reason", reason)
	return nil
}

// Reactivate は停止済みの銘柄の追跡を明示的に再開します。
// end_date をクリアし is_active を true に戻します。有効な銘柄に対しては no-op です。
func (u *RegistryUsecase) Reactivate(ctx context.Context, ticker string) error {
	s, err := u.repo.FindByTicker(ctx, ticker)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, ticker)
	}
	if s.IsActive && s.EndDate == nil {
		return nil
	}

	s.IsActive = true
	s.EndDate = nil
	s.StartDate = u.now().UTC()
	if err := u.repo.Update(ctx, s); err != nil {
		return err
	}
	slog.Info("symbol reactivated", "symbol", ticker)
	return nil
}

// Get は銘柄を1件返します。存在しない場合は ErrUnknownSymbol を返します。
func (u *RegistryUsecase) Get(ctx context.Context, ticker string) (*entity.Symbol, error) {
	s, err := u.repo.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, ticker)
	}
	return s, nil
}
