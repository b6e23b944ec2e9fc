package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payrun"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/store/memory"
)

func testMovement(id string, kind ledger.Kind, kg float64) ledger.Movement {
	return ledger.Movement{
		ID:            id,
		Date:          ledger.NewTimePoint(2025, time.March, 1),
		SiteID:        "site-1",
		SeaweedTypeID: "cottonii",
		Kind:          kind,
		Quantity:      ledger.NewQuantity(kg, 0),
	}
}

func TestAppendMovement_RejectsDuplicateID(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	require.NoError(t, s.AppendMovement(ctx, testMovement("m1", ledger.KindFarmerDelivery, 100)))

	err := s.AppendMovement(ctx, testMovement("m1", ledger.KindFarmerDelivery, 50))
	assert.ErrorIs(t, err, ledger.ErrDuplicateID)

	movements, err := s.Movements(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Len(t, movements, 1, "rejected movement must not be stored")
}

func TestAppendMovement_RejectsUnknownKindAndNegatives(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	err := s.AppendMovement(ctx, testMovement("m1", ledger.Kind("MYSTERY"), 100))
	assert.ErrorIs(t, err, ledger.ErrUnknownKind)

	bad := testMovement("m2", ledger.KindFarmerDelivery, 10)
	bad.Quantity.Kg = decimal.NewFromInt(-10)
	err = s.AppendMovement(ctx, bad)
	assert.ErrorIs(t, err, ledger.ErrNegativeQuantity)
}

func TestAppendMovements_BatchIsAllOrNothing(t *testing.T) {
	// A pressing pair with one invalid member must leave no trace.
	s := memory.New()
	ctx := context.Background()

	batch := []ledger.Movement{
		testMovement("m1", ledger.KindPressingConsumption, 600),
		testMovement("m2", ledger.Kind("MYSTERY"), 540),
	}
	err := s.AppendMovements(ctx, batch)
	require.Error(t, err)

	movements, err := s.Movements(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, movements, "partial batch must not be visible")

	assert.ErrorIs(t, s.AppendMovements(ctx, nil), ledger.ErrEmptyBatch)
}

func TestAppendMovements_RejectsDuplicateWithinBatch(t *testing.T) {
	// Two batch members sharing one ID must fail with nothing written.
	s := memory.New()
	ctx := context.Background()

	batch := []ledger.Movement{
		testMovement("dup", ledger.KindFarmerDelivery, 100),
		testMovement("dup", ledger.KindFarmerDelivery, 200),
	}
	err := s.AppendMovements(ctx, batch)
	assert.ErrorIs(t, err, ledger.ErrDuplicateID)

	movements, err := s.Movements(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, movements, "failed batch must not be visible")
}

func TestApplyRun_StampsOnlyUnsettledRecords(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	require.NoError(t, s.SaveCycle(ctx, payrun.HarvestCycle{
		ID: "c1", FarmerID: "f1", SeaweedTypeID: "cottonii",
		HarvestDate: ledger.NewTimePoint(2025, time.April, 10),
		HarvestedKg: decimal.NewFromInt(100),
	}))
	require.NoError(t, s.SaveCycle(ctx, payrun.HarvestCycle{
		ID: "c2", FarmerID: "f1", SeaweedTypeID: "cottonii",
		HarvestDate: ledger.NewTimePoint(2025, time.April, 12),
		HarvestedKg: decimal.NewFromInt(50), PaymentRunID: "pr-old",
	}))

	err := s.ApplyRun(ctx, payrun.RunResult{
		RunID:           "pr-new",
		Date:            ledger.NewTimePoint(2025, time.April, 30),
		SettledCycleIDs: []string{"c1", "c2"},
	})
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	for _, c := range snap.Cycles {
		switch c.ID {
		case "c1":
			assert.Equal(t, "pr-new", c.PaymentRunID)
		case "c2":
			assert.Equal(t, "pr-old", c.PaymentRunID, "settled cycles are never restamped")
		}
	}
}

func TestApplyRun_EmptyBatchRejected(t *testing.T) {
	s := memory.New()
	err := s.ApplyRun(context.Background(), payrun.RunResult{RunID: "pr-x"})
	assert.ErrorIs(t, err, payrun.ErrEmptyRun)
}

func TestUpdatePaymentStatus(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	require.NoError(t, s.ApplyRun(ctx, payrun.RunResult{
		RunID: "pr-1",
		Date:  ledger.NewTimePoint(2025, time.April, 30),
		Payments: []payrun.MonthlyPayment{{
			ID: "mp-1", RecipientType: payrun.RecipientFarmer, RecipientID: "f1",
			Amount: decimal.NewFromInt(7000), Method: "cash",
			PaymentRunID: "pr-1", Status: payrun.StatusPending,
		}},
	}))

	require.NoError(t, s.UpdatePaymentStatus(ctx, "mp-1", payrun.StatusCompleted))

	payments, err := s.Payments(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, payrun.StatusCompleted, payments[0].Status)

	err = s.UpdatePaymentStatus(ctx, "missing", payrun.StatusFailed)
	assert.ErrorIs(t, err, payrun.ErrPaymentNotFound)
}

func TestSnapshot_IsACopy(t *testing.T) {
	// Mutating a snapshot must not leak back into the store.
	s := memory.New()
	ctx := context.Background()

	require.NoError(t, s.SaveFarmer(ctx, payrun.Farmer{ID: "f1", Name: "Rakoto"}))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	snap.Farmers[0].Name = "mutated"

	again, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rakoto", again.Farmers[0].Name)
}
