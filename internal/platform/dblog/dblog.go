// Package dblog はログレコードをデータベースへ永続化するslogハンドラーを提供します。
package dblog

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"gorm.io/gorm"
)

// LogModel は logs テーブルのレコードです。
type LogModel struct {
	ID         uint      `gorm:"primaryKey"`
	Timestamp  time.Time `gorm:"index"`
	Level      string    `gorm:"size:10"`
	Message    string    `gorm:"type:text"`
	Module     string    `gorm:"size:255"`
	Function   string    `gorm:"size:255"`
	LineNumber int
	CreatedAt  time.Time
}

func (LogModel) TableName() string { return "logs" }

// Handler は別のslog.Handlerをデコレートし、minLevel以上のレコードを
// データベースにも書き込みます。挿入失敗でロギング自体は止めません。
type Handler struct {
	next     slog.Handler
	db       *gorm.DB
	minLevel slog.Level
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler はDBへの永続化付きハンドラーを生成します。
func NewHandler(next slog.Handler, db *gorm.DB, minLevel slog.Level) *Handler {
	return &Handler{next: next, db: db, minLevel: minLevel}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if h.db != nil && r.Level >= h.minLevel {
		row := LogModel{
			Timestamp: r.Time,
			Level:     r.Level.String(),
			Message:   r.Message,
		}
		if r.PC != 0 {
			frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
			row.Module = frame.File
			row.Function = frame.Function
			row.LineNumber = frame.Line
		}
		// ここでctxを使うと、キャンセル済みジョブの失敗ログが落ちるため使わない
		if err := h.db.Create(&row).Error; err != nil {
			// 標準出力側のログは生かす
			_ = err
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{next: h.next.WithAttrs(attrs), db: h.db, minLevel: h.minLevel}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), db: h.db, minLevel: h.minLevel}
}
