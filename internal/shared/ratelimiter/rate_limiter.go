// Package ratelimiter は固定ウィンドウ方式の呼び出し頻度制限を提供します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface は、外部プロバイダ呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded(ctx context.Context)
}

// RateLimiter は一定時間あたりの呼び出し回数を制限します。
// 複数のワーカーから同時に呼ばれるため、内部状態はミューテックスで保護します。
type RateLimiter struct {
	limit    int           // interval あたりの呼び出し上限
	interval time.Duration // カウントをリセットする単位

	mu          sync.Mutex
	count       int
	windowStart time.Time
}

var _ RateLimiterInterface = (*RateLimiter)(nil)

// NewRateLimiter は新しい RateLimiter のインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		interval:    interval,
		windowStart: time.Now(),
	}
}

// WaitIfNeeded は上限に達している場合、現在のウィンドウが閉じるまで待機します。
// windowStart は常に実際のウィンドウ開始時刻を指す。待機中に到着した
// 呼び出しも同じウィンドウ終端を待つため、設定レートを超えることはない。
// ctx が先に終了した場合は即座に戻ります（呼び出し元が ctx.Err を確認します）。
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) {
	for {
		rl.mu.Lock()
		now := time.Now()
		if now.Sub(rl.windowStart) >= rl.interval {
			rl.count = 0
			rl.windowStart = now
		}
		if rl.count < rl.limit {
			rl.count++
			rl.mu.Unlock()
			return
		}
		sleep := rl.interval - now.Sub(rl.windowStart)
		rl.mu.Unlock()

		slog.Info("rate limit reached, waiting", "limit", rl.limit, "wait", sleep)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
