// Package usecase implements the market data ingestion pipeline: the
// normalizer, the ingestion orchestrator and the read path for stored bars.
package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrOrphanRecord is returned by the writer when a batch references a
	// symbol that is not present in the registry. The whole batch for that
	// symbol is rejected; partial histories are never committed.
	ErrOrphanRecord = errors.New("batch references unregistered symbol")

	// ErrConstraintViolation is returned by the writer for storage constraint
	// failures other than the upsert key. Not retryable.
	ErrConstraintViolation = errors.New("storage constraint violation")

	// ErrConnectionLost is returned by the writer when the storage connection
	// dropped mid-operation. Retryable.
	ErrConnectionLost = errors.New("storage connection lost")
)

// ValidationError describes why the normalizer rejected a raw record.
// Validation failures are deterministic, so the record is dropped rather than
// retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
