// Package usecase implements the business logic for the symbol registry.
package usecase

import "errors"

var (
	// ErrDuplicateSymbol is returned by Add when the ticker already exists in
	// the registry, whether active or deactivated. Bringing back a deactivated
	// ticker is an explicit Reactivate call, never an implicit side effect of
	// Add.
	ErrDuplicateSymbol = errors.New("symbol already registered")

	// ErrUnknownSymbol is returned when the ticker does not exist in the
	// registry.
	ErrUnknownSymbol = errors.New("symbol not found")

	// ErrInvalidTicker is returned by Add when the ticker is not uppercase
	// alphanumeric of at most 10 characters.
	ErrInvalidTicker = errors.New("invalid ticker format")
)
