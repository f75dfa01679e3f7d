package usecase

import "errors"

var (
	// ErrUnregisteredSymbol is returned when a company profile arrives for a
	// symbol the registry does not know.
	ErrUnregisteredSymbol = errors.New("symbol is not registered")
)
