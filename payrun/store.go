/*
store.go - Persistence interfaces for payment runs

PURPOSE:
  Defines how the payment run engine loads its input snapshot and how a
  confirmed run is settled. ApplyRun is the one transaction boundary in
  the system: the whole RunResult lands atomically or not at all.

DOUBLE-SETTLEMENT:
  ApplyRun stamps the run ID only on records that are still unsettled.
  A record that somehow arrives already settled is skipped rather than
  restamped - it never corrupts the run.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite, settlement in one SQL transaction
  - store/memory: in-memory, validates whole batches before writing
*/
package payrun

import (
	"context"
	"errors"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
)

var (
	// ErrEmptyRun is returned when ApplyRun receives a batch with no
	// payments, repayments, or settlements.
	ErrEmptyRun = errors.New("empty payment run")

	// ErrPaymentNotFound is returned when a status update references an
	// unknown payment.
	ErrPaymentNotFound = errors.New("payment not found")
)

// Store loads run inputs and settles confirmed runs.
type Store interface {
	// Snapshot returns the full data snapshot for building payee rows.
	Snapshot(ctx context.Context) (Snapshot, error)

	// ApplyRun persists a confirmed run atomically: payments, repayments
	// and settlement stamps all land together or not at all. Records
	// already settled are skipped, never restamped.
	ApplyRun(ctx context.Context, res RunResult) error

	// Payments returns all recorded monthly payments.
	Payments(ctx context.Context) ([]MonthlyPayment, error)

	// UpdatePaymentStatus transitions a payment's status.
	UpdatePaymentStatus(ctx context.Context, paymentID string, status PaymentStatus) error
}

// ReferenceStore persists the reference and source records created by
// data-entry flows. Writes are simple inserts; the engine never mutates
// these records except through ApplyRun settlement stamps.
type ReferenceStore interface {
	SaveFarmer(ctx context.Context, f Farmer) error
	SaveSite(ctx context.Context, s Site) error
	SaveSeaweedType(ctx context.Context, st SeaweedType) error
	SaveProvider(ctx context.Context, p ServiceProvider) error
	SaveEmployee(ctx context.Context, e Employee) error

	SaveCycle(ctx context.Context, c HarvestCycle) error
	SaveDelivery(ctx context.Context, d Delivery) error
	SaveOperation(ctx context.Context, op CuttingOperation) error

	SaveCredit(ctx context.Context, c credit.Credit) error
	SaveRepayment(ctx context.Context, r credit.Repayment) error
}
