package usecase

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stock_collector/internal/feature/marketdata/domain/entity"
)

// timestampLayouts are the layouts providers have been observed to use,
// tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a raw provider record into a validated Bar for the given
// symbol. It parses the timestamp (normalized to UTC), coerces the numeric
// fields, and enforces the OHLC consistency invariant. On failure it returns
// a ValidationError naming the offending field; the record is dropped, never
// retried. Pure function over its inputs.
func Normalize(raw entity.RawBar, symbol string) (entity.Bar, *ValidationError) {
	ts, verr := parseTimestamp(raw.Timestamp)
	if verr != nil {
		return entity.Bar{}, verr
	}

	open, verr := parsePrice("open", raw.Open)
	if verr != nil {
		return entity.Bar{}, verr
	}
	high, verr := parsePrice("high", raw.High)
	if verr != nil {
		return entity.Bar{}, verr
	}
	low, verr := parsePrice("low", raw.Low)
	if verr != nil {
		return entity.Bar{}, verr
	}
	closing, verr := parsePrice("close", raw.Close)
	if verr != nil {
		return entity.Bar{}, verr
	}

	volume, err := strconv.ParseInt(raw.Volume, 10, 64)
	if err != nil {
		return entity.Bar{}, &ValidationError{Field: "volume", Reason: "not an integer: " + raw.Volume}
	}
	if volume < 0 {
		return entity.Bar{}, &ValidationError{Field: "volume", Reason: "negative volume"}
	}

	// high >= max(open, close), low <= min(open, close)
	if high.LessThan(decimal.Max(open, closing)) {
		return entity.Bar{}, &ValidationError{Field: "high", Reason: "high below max(open, close)"}
	}
	if low.GreaterThan(decimal.Min(open, closing)) {
		return entity.Bar{}, &ValidationError{Field: "low", Reason: "low above min(open, close)"}
	}

	return entity.Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      open.InexactFloat64(),
		High:      high.InexactFloat64(),
		Low:       low.InexactFloat64(),
		Close:     closing.InexactFloat64(),
		Volume:    volume,
	}, nil
}

// parseTimestamp tries the known provider layouts and normalizes to UTC.
// Layouts without a zone are taken as UTC.
func parseTimestamp(s string) (time.Time, *ValidationError) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{Field: "timestamp", Reason: "unparseable timestamp: " + s}
}

// parsePrice coerces one price field. Prices must be positive and finite;
// decimal parsing rejects NaN and infinities outright.
func parsePrice(field, s string) (decimal.Decimal, *ValidationError) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &ValidationError{Field: field, Reason: "not a number: " + s}
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, &ValidationError{Field: field, Reason: "price must be positive"}
	}
	return d, nil
}
