// Package provider defines the error taxonomy shared by all external data
// provider adapters. Adapters translate transport-level failures (HTTP status
// codes, network errors, undecodable payloads) into a single typed error so
// the ingestion pipeline never branches on provider-specific details.
package provider

import (
	"errors"
	"fmt"
)

// Kind classifies a provider failure.
type Kind int

const (
	// KindRateLimited indicates the provider rejected the call due to rate
	// limiting (HTTP 429). Retryable.
	KindRateLimited Kind = iota + 1
	// KindUnauthorized indicates the credentials were rejected (HTTP 401/403).
	// Terminal for the symbol in this run.
	KindUnauthorized
	// KindNotFound indicates the provider does not know the symbol (HTTP 404).
	// Terminal for the symbol in this run.
	KindNotFound
	// KindTransient indicates a temporary failure (5xx, network error).
	// Retryable.
	KindTransient
	// KindMalformed indicates the response could not be parsed at all.
	// Terminal; logged for manual inspection.
	KindMalformed
)

// String returns the lowercase name of the kind for logging.
func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is a classified provider failure for one symbol.
type Error struct {
	Kind   Kind
	Symbol string
	Err    error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s (%s): %v", e.Kind, e.Symbol, e.Err)
	}
	return fmt.Sprintf("provider %s (%s)", e.Kind, e.Symbol)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified provider error.
func NewError(kind Kind, symbol string, cause error) *Error {
	return &Error{Kind: kind, Symbol: symbol, Err: cause}
}

// IsRetryable reports whether err is a provider error whose kind is eligible
// for retry. Only RateLimited and Transient qualify; everything else is
// terminal for the symbol in the current run.
func IsRetryable(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindRateLimited || k == KindTransient)
}

// KindOf extracts the provider error kind from err, if any.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
