package usecase

import (
	"context"
	"log/slog"
	"time"

	"stock_collector/internal/feature/company/domain/entity"
	"stock_collector/internal/shared/provider"
	"stock_collector/internal/shared/ratelimiter"
	"stock_collector/internal/shared/retry"
)

const (
	// chunkSize 件ごとに chunkPause だけ休止し、プロバイダへの連続アクセスを抑える。
	chunkSize  = 50
	chunkPause = 5 * time.Second
)

// CompanyProvider fetches a company profile from the external source.
type CompanyProvider interface {
	FetchCompany(ctx context.Context, symbol string) (entity.CompanyReference, error)
}

// CompanyWriter replaces the stored profile for one symbol atomically.
type CompanyWriter interface {
	Replace(ctx context.Context, ref entity.CompanyReference) error
}

// SymbolSource yields the tickers whose profiles should be refreshed.
type SymbolSource interface {
	ActiveTickers(ctx context.Context) ([]string, error)
}

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	Succeeded []string
	Failed    map[string]error
}

// RefreshUsecase walks the active registry and rewrites each symbol's
// company profile. One symbol failing never stops the walk.
type RefreshUsecase struct {
	symbols SymbolSource
	prov    CompanyProvider
	writer  CompanyWriter
	rl      ratelimiter.RateLimiterInterface
	policy  retry.Policy
	pause   time.Duration
}

func NewRefreshUsecase(symbols SymbolSource, prov CompanyProvider, writer CompanyWriter, rl ratelimiter.RateLimiterInterface, policy retry.Policy) *RefreshUsecase {
	return &RefreshUsecase{
		symbols: symbols,
		prov:    prov,
		writer:  writer,
		rl:      rl,
		policy:  policy,
		pause:   chunkPause,
	}
}

// Refresh fetches and replaces the profile of every active symbol in
// registry order. Cancellation stops before the next symbol; the profile
// in flight is finished first.
func (u *RefreshUsecase) Refresh(ctx context.Context) (RefreshResult, error) {
	tickers, err := u.symbols.ActiveTickers(ctx)
	if err != nil {
		return RefreshResult{}, err
	}

	res := RefreshResult{Failed: map[string]error{}}
	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			for _, rest := range tickers[i:] {
				res.Failed[rest] = err
			}
			break
		}
		if i > 0 && i%chunkSize == 0 {
			select {
			case <-time.After(u.pause):
			case <-ctx.Done():
			}
		}

		if err := u.refreshOne(ctx, ticker); err != nil {
			slog.Warn("company refresh failed", "symbol", ticker, "error", err)
			res.Failed[ticker] = err
			continue
		}
		res.Succeeded = append(res.Succeeded, ticker)
	}
	return res, nil
}

func (u *RefreshUsecase) refreshOne(ctx context.Context, ticker string) error {
	var ref entity.CompanyReference
	err := retry.Do(ctx, u.policy, provider.IsRetryable, func(ctx context.Context) error {
		if u.rl != nil {
			u.rl.WaitIfNeeded(ctx)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var ferr error
		ref, ferr = u.prov.FetchCompany(ctx, ticker)
		return ferr
	})
	if err != nil {
		return err
	}
	ref.Symbol = ticker
	return u.writer.Replace(ctx, ref)
}
