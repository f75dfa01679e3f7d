package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"stock_collector/internal/feature/marketdata/domain/entity"
	"stock_collector/internal/shared/provider"
	"stock_collector/internal/shared/ratelimiter"
	"stock_collector/internal/shared/retry"
)

const (
	// defaultWorkers は銘柄パイプラインを同時に実行するワーカー数の既定値です。
	// プロバイダのレートリミットを尊重するため、銘柄数とは独立に固定します。
	defaultWorkers = 4
	// defaultLookback は1回の実行で取得する時間範囲の既定値です。
	defaultLookback = 24 * time.Hour
)

// Outcome の状態。
const (
	StateDone   = "done"
	StateFailed = "failed"
)

// RunStatus は実行全体の集約結果です。
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded" // 全銘柄が Done
	StatusPartial   RunStatus = "partial"   // 一部の銘柄が Failed
	StatusFailed    RunStatus = "failed"    // 全銘柄が Failed
)

// Outcome は1銘柄のパイプライン結果です。
type Outcome struct {
	State    string
	Inserted int
	Updated  int
	Skipped  int // バリデーションで破棄された件数 + バッチ内重複
	Err      error
}

// RunResult は1回のインジェスト実行の結果です。
// オーケストレーター以外のコンポーネントは実行全体の結果を参照しません。
type RunResult struct {
	PerSymbol   map[string]Outcome
	StartedAt   time.Time
	CompletedAt time.Time
}

// Status は実行全体の集約ステータスを返します。
func (r RunResult) Status() RunStatus {
	if len(r.PerSymbol) == 0 {
		return StatusSucceeded
	}
	failed := 0
	for _, o := range r.PerSymbol {
		if o.State == StateFailed {
			failed++
		}
	}
	switch failed {
	case 0:
		return StatusSucceeded
	case len(r.PerSymbol):
		return StatusFailed
	default:
		return StatusPartial
	}
}

// FailedSymbols は失敗した銘柄をティッカー昇順で返します。
// 呼び出し元はこのリストをアラートや再実行の判断材料にします。
func (r RunResult) FailedSymbols() []string {
	var out []string
	for sym, o := range r.PerSymbol {
		if o.State == StateFailed {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// SymbolSource は実行開始時に読む有効銘柄のスナップショットを提供します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider.
type SymbolSource interface {
	ActiveTickers(ctx context.Context) ([]string, error)
}

// BarProvider は外部プロバイダから生のバーレコードを取得するアダプタのインターフェースです。
type BarProvider interface {
	FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]entity.RawBar, error)
}

// BarWriter はバーのバッチを銘柄ごとの単一トランザクションで冪等に書き込みます。
type BarWriter interface {
	UpsertBatch(ctx context.Context, bars []entity.Bar) (WriteResult, error)
}

// WriteResult は1バッチの書き込み結果の内訳です。
type WriteResult struct {
	Inserted int
	Updated  int
	Skipped  int // バッチ内で同一 (symbol, timestamp) が重複し、折り畳まれた件数
}

// RunRecorder は実行結果を観測系へ記録します。nil の場合は記録しません。
type RunRecorder interface {
	RecordRun(status string)
	RecordSymbol(state string)
	RecordBars(inserted, updated, skipped int)
}

// IngestUsecase は1回のインジェスト実行を編成します:
// レジストリのスナップショット取得 → 銘柄ごとに 取得→正規化→書き込み。
// 銘柄パイプラインは有界のワーカープールで並行実行され、1銘柄の失敗が
// 他の銘柄や実行全体を中断することはありません。
type IngestUsecase struct {
	symbols SymbolSource
	market  BarProvider
	bars    BarWriter
	rl      ratelimiter.RateLimiterInterface
	policy  retry.Policy
	rec     RunRecorder

	workers  int
	lookback time.Duration
	now      func() time.Time
}

// NewIngestUsecase は新しい IngestUsecase を作成します。rec は nil でも構いません。
func NewIngestUsecase(symbols SymbolSource, market BarProvider, bars BarWriter,
	rl ratelimiter.RateLimiterInterface, policy retry.Policy, rec RunRecorder) *IngestUsecase {
	return &IngestUsecase{
		symbols:  symbols,
		market:   market,
		bars:     bars,
		rl:       rl,
		policy:   policy,
		rec:      rec,
		workers:  defaultWorkers,
		lookback: defaultLookback,
		now:      time.Now,
	}
}

// SetWorkers は銘柄パイプラインの並行度を変更します。0以下は無視されます。
func (iu *IngestUsecase) SetWorkers(n int) {
	if n > 0 {
		iu.workers = n
	}
}

// SetLookback は1回の実行で取得する時間範囲を変更します。0以下は無視されます。
func (iu *IngestUsecase) SetLookback(d time.Duration) {
	if d > 0 {
		iu.lookback = d
	}
}

// isRetryable はリトライ対象のエラー種別を判定します。プロバイダの
// RateLimited/Transient とストレージの接続断のみが対象です。
func isRetryable(err error) bool {
	return provider.IsRetryable(err) || errors.Is(err, ErrConnectionLost)
}

// Run は1回のインジェスト実行を行います。only が空の場合はレジストリの
// 有効銘柄スナップショットが対象になります。有効銘柄の取得失敗のみが
// 実行全体の失敗であり、それ以外のエラーはすべて銘柄単位に隔離されます。
func (iu *IngestUsecase) Run(ctx context.Context, only []string) (RunResult, error) {
	startedAt := iu.now().UTC()

	tickers := only
	if len(tickers) == 0 {
		var err error
		tickers, err = iu.symbols.ActiveTickers(ctx)
		if err != nil {
			return RunResult{}, fmt.Errorf("load active symbols: %w", err)
		}
	}
	if len(tickers) == 0 {
		slog.Warn("no active symbols, nothing to ingest")
		return RunResult{PerSymbol: map[string]Outcome{}, StartedAt: startedAt, CompletedAt: iu.now().UTC()}, nil
	}

	end := startedAt
	start := end.Add(-iu.lookback)

	outcomes := make([]Outcome, len(tickers))
	sem := make(chan struct{}, iu.workers)
	var wg sync.WaitGroup

	for i, sym := range tickers {
		// キャンセル後は新しい銘柄パイプラインを開始しない。
		// 実行中のパイプラインは自身の書き込みを完了させてから終了する。
		if err := ctx.Err(); err != nil {
			outcomes[i] = Outcome{State: StateFailed, Err: err}
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = iu.ingestSymbol(ctx, sym, start, end)
		}(i, sym)
	}
	wg.Wait()

	res := RunResult{
		PerSymbol:   make(map[string]Outcome, len(tickers)),
		StartedAt:   startedAt,
		CompletedAt: iu.now().UTC(),
	}
	for i, sym := range tickers {
		res.PerSymbol[sym] = outcomes[i]
	}

	iu.record(res)
	slog.Info("ingestion run completed",
		"status", string(res.Status()),
		"symbols", len(tickers),
		"failed", res.FailedSymbols(),
		"duration", res.CompletedAt.Sub(res.StartedAt))
	return res, nil
}

// ingestSymbol は1銘柄のパイプライン（取得→正規化→書き込み）を順に実行します。
// 各ステージ内のリトライは retry.Do が担い、ここでは段階を跨いだリトライはしません。
func (iu *IngestUsecase) ingestSymbol(ctx context.Context, sym string, start, end time.Time) Outcome {
	var raws []entity.RawBar
	err := retry.Do(ctx, iu.policy, isRetryable, func(ctx context.Context) error {
		if iu.rl != nil {
			iu.rl.WaitIfNeeded(ctx)
		}
		rs, ferr := iu.market.FetchBars(ctx, sym, start, end)
		if ferr != nil {
			return ferr
		}
		raws = rs
		return nil
	})
	if err != nil {
		slog.Error("fetch failed", "symbol", sym, "error", err)
		return Outcome{State: StateFailed, Err: err}
	}

	bars := make([]entity.Bar, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		bar, verr := Normalize(raw, sym)
		if verr != nil {
			// バリデーション失敗は決定的なので破棄のみ（リトライしない）
			skipped++
			slog.Warn("record dropped", "symbol", sym, "field", verr.Field, "reason", verr.Reason)
			continue
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return Outcome{State: StateDone, Skipped: skipped}
	}

	var wr WriteResult
	err = retry.Do(ctx, iu.policy, isRetryable, func(ctx context.Context) error {
		res, werr := iu.bars.UpsertBatch(ctx, bars)
		if werr != nil {
			return werr
		}
		wr = res
		return nil
	})
	if err != nil {
		slog.Error("write failed", "symbol", sym, "error", err)
		return Outcome{State: StateFailed, Err: err}
	}

	return Outcome{
		State:    StateDone,
		Inserted: wr.Inserted,
		Updated:  wr.Updated,
		Skipped:  skipped + wr.Skipped,
	}
}

func (iu *IngestUsecase) record(res RunResult) {
	if iu.rec == nil {
		return
	}
	iu.rec.RecordRun(string(res.Status()))
	for _, o := range res.PerSymbol {
		iu.rec.RecordSymbol(o.State)
		iu.rec.RecordBars(o.Inserted, o.Updated, o.Skipped)
	}
}
