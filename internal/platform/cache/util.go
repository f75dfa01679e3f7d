package cache

import "time"

// TimeUntilNextHour は次の正時までの期間を返します。
// バーは1時間足で収集されるため、キャッシュは次のバーが到着しうる
// タイミングで自然に切れるのが望ましい。
func TimeUntilNextHour(now time.Time) time.Duration {
	next := now.Truncate(time.Hour).Add(time.Hour)
	return next.Sub(now)
}
