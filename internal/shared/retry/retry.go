// Package retry はプロバイダ呼び出しとストレージ書き込みを包む
// 有界リトライ制御を提供します。
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy はリトライ回数とバックオフ遅延を定義します。
// 試行 n と n+1 の間の遅延は BaseDelay * Multiplier^(n-1) で、
// ランダムジッターを加えた上で MaxDelay を上限とします。
type Policy struct {
	MaxAttempts int           // 最大試行回数（初回を含む）
	BaseDelay   time.Duration // 初回リトライまでの基準遅延
	Multiplier  float64       // 遅延の指数係数
	MaxDelay    time.Duration // 遅延の上限
	Jitter      float64       // 遅延に対するジッターの割合（0..1）
}

// DefaultPolicy は保守的なデフォルト値を返します。
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    60 * time.Second,
		Jitter:      0.2,
	}
}

// Delay は attempt 回目（1始まり）の失敗後に待つ時間を返します。
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	max := p.MaxDelay
	if max <= 0 {
		max = 60 * time.Second
	}
	factor := p.Multiplier
	if factor < 1 {
		factor = 2.0
	}

	wait := base
	for i := 1; i < attempt; i++ {
		next := time.Duration(float64(wait) * factor)
		if next > max {
			wait = max
			break
		}
		wait = next
	}
	if wait > max {
		wait = max
	}

	jitter := p.Jitter
	if jitter <= 0 {
		return wait
	}
	if jitter > 1 {
		jitter = 1
	}
	delta := float64(wait) * jitter
	return wait - time.Duration(delta) + time.Duration(rand.Float64()*2*delta)
}

// Do は op を最大 MaxAttempts 回実行します。retryable が true を返す
// エラーのみ再試行の対象になります。試行を使い切った場合は最後のエラーを
// そのまま返します（呼び出し元が根本原因を判定できるよう、ラップしません）。
// バックオフ待機中に ctx が終了した場合も最後のエラーを返します。
func Do(ctx context.Context, p Policy, retryable func(error) bool, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= attempts || retryable == nil || !retryable(err) {
			return err
		}

		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
