/*
store.go - Persistence interface for the movement ledger

PURPOSE:
  Defines the interface between the ledger engine and the database.
  The store maintains append-only semantics: movements are never updated
  or deleted; corrections are recorded as adjustment movements.

APPEND-ONLY CONTRACT:
  - AppendMovement():  single movement write, rejects duplicate IDs
  - AppendMovements(): atomic multi-movement write (pressing slips record
                       a consumption and a production movement as one unit)
  - NO Update() or Delete() methods exist

IMPLEMENTATIONS:
  - store/sqlite:  production SQLite
  - store/memory:  in-memory for tests and development

SEE ALSO:
  - balance.go, history.go: pure computations over the loaded movements
*/
package ledger

import "context"

// Store handles movement persistence. Append-only; corrections are made
// via adjustment movements, not edits.
type Store interface {
	// AppendMovement persists one movement. Returns ErrDuplicateID if the
	// ID is already recorded.
	AppendMovement(ctx context.Context, m Movement) error

	// AppendMovements persists several movements atomically. Either all
	// are written or none are. Used for paired pressing movements.
	AppendMovements(ctx context.Context, ms []Movement) error

	// Movements returns all movements passing the filter. No ordering is
	// guaranteed; callers needing chronology use RunningHistory.
	Movements(ctx context.Context, f Filter) ([]Movement, error)
}
