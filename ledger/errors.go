/*
errors.go - Centralized error types for the stock ledger

PURPOSE:
  All ledger error types in one place. The engine itself never errors on
  data-quality issues (unknown references, missing prices, odd kinds) -
  those degrade to placeholders and zero contributions. The errors here
  belong to the persistence boundary.

USAGE:
  if errors.Is(err, ledger.ErrDuplicateID) {
      // retry-safe: the movement is already recorded
  }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateID is returned when appending a movement whose ID is
	// already in the ledger. Expected behavior for retries.
	ErrDuplicateID = errors.New("duplicate movement id")

	// ErrEmptyBatch is returned when an atomic append receives no movements.
	ErrEmptyBatch = errors.New("empty movement batch")

	// ErrUnknownKind is returned at the write boundary for a kind outside
	// the classification table. Reads never produce it.
	ErrUnknownKind = errors.New("unknown movement kind")

	// ErrNegativeQuantity is returned at the write boundary for negative
	// magnitudes. Direction is expressed by the kind, not the sign.
	ErrNegativeQuantity = errors.New("negative quantity")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidMovementError reports which movement failed boundary validation.
type InvalidMovementError struct {
	MovementID string
	Reason     error
}

func (e *InvalidMovementError) Error() string {
	return fmt.Sprintf("invalid movement %s: %v", e.MovementID, e.Reason)
}

func (e *InvalidMovementError) Unwrap() error { return e.Reason }

// ValidateMovement is the write-boundary check. Reads tolerate anything;
// writes reject unknown kinds and negative magnitudes so the ledger only
// ever accumulates well-formed records.
func ValidateMovement(m Movement) error {
	if !m.Kind.Known() {
		return &InvalidMovementError{MovementID: m.ID, Reason: ErrUnknownKind}
	}
	if m.Quantity.Kg.IsNegative() || m.Quantity.Units.IsNegative() {
		return &InvalidMovementError{MovementID: m.ID, Reason: ErrNegativeQuantity}
	}
	return nil
}
