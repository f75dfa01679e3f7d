// Package metrics はPrometheusメトリクスによる実行結果の記録を提供します。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stock_collector/internal/feature/marketdata/usecase"
)

// Recorder はインジェスト実行をPrometheusカウンターへ記録します。
type Recorder struct {
	runs    *prometheus.CounterVec
	symbols *prometheus.CounterVec
	bars    *prometheus.CounterVec
}

var _ usecase.RunRecorder = (*Recorder)(nil)

// NewRecorder はカウンターをregistererに登録したRecorderを生成します。
// registererがnilの場合はデフォルトレジストリを使用します。
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Completed ingestion runs by aggregate status.",
		}, []string{"status"}),
		symbols: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_symbols_total",
			Help: "Per-symbol ingestion outcomes by state.",
		}, []string{"state"}),
		bars: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_bars_total",
			Help: "Bars written or skipped during ingestion.",
		}, []string{"op"}),
	}
}

func (r *Recorder) RecordRun(status string) {
	r.runs.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordSymbol(state string) {
	r.symbols.WithLabelValues(state).Inc()
}

func (r *Recorder) RecordBars(inserted, updated, skipped int) {
	r.bars.WithLabelValues("inserted").Add(float64(inserted))
	r.bars.WithLabelValues("updated").Add(float64(updated))
	r.bars.WithLabelValues("skipped").Add(float64(skipped))
}
