// Package entity defines the domain models for the marketdata feature.
package entity

import "time"

// Bar represents one validated OHLCV observation for a symbol.
// Timestamp is the bar start, normalized to UTC.
type Bar struct {
	Symbol    string    // Ticker of the instrument this bar belongs to
	Timestamp time.Time // Bar start, UTC
	Open      float64   // Opening price
	High      float64   // Highest price during this period
	Low       float64   // Lowest price during this period
	Close     float64   // Closing price
	Volume    int64     // Trading volume
}

// RawBar is the canonical raw record shape produced by provider adapters
// before validation. Fields keep the provider's textual representation so the
// normalizer owns all numeric and timestamp coercion.
type RawBar struct {
	Timestamp string
	Open      string
	High      string
	Low       string
	Close     string
	Volume    string
}
