package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
)

func TestRunningHistory_SortedByDateThenID(t *testing.T) {
	// GIVEN: Movements inserted out of chronological order, two on the same day
	// WHEN: Building the history
	// THEN: Rows come back date ascending with ID as the tie-break

	movements := []ledger.Movement{
		mv("m3", 10, "s", "t", ledger.KindPressingConsumption, 100, 0),
		mv("m1", 1, "s", "t", ledger.KindFarmerDelivery, 500, 0),
		mv("m2b", 5, "s", "t", ledger.KindFarmerDelivery, 50, 0),
		mv("m2a", 5, "s", "t", ledger.KindFarmerDelivery, 200, 0),
	}

	rows := ledger.RunningHistory(movements, ledger.Filter{})

	wantOrder := []string{"m1", "m2a", "m2b", "m3"}
	if len(rows) != len(wantOrder) {
		t.Fatalf("expected %d rows, got %d", len(wantOrder), len(rows))
	}
	for i, id := range wantOrder {
		if rows[i].Movement.ID != id {
			t.Errorf("row %d: expected %s, got %s", i, id, rows[i].Movement.ID)
		}
	}
}

func TestRunningHistory_RunningBalance(t *testing.T) {
	// GIVEN: A delivery, a second delivery, then a pressing consumption
	// WHEN: Building the history
	// THEN: Each row's balance is the fold of everything up to and including it

	movements := []ledger.Movement{
		mv("m1", 1, "s", "t", ledger.KindFarmerDelivery, 500, 10),
		mv("m2", 5, "s", "t", ledger.KindFarmerDelivery, 250, 5),
		mv("m3", 10, "s", "t", ledger.KindPressingConsumption, 100, 2),
	}

	rows := ledger.RunningHistory(movements, ledger.Filter{})

	wantKg := []int64{500, 750, 650}
	for i, want := range wantKg {
		if !rows[i].Balance.Kg.Equal(decimal.NewFromInt(want)) {
			t.Errorf("row %d: expected running balance %d, got %v", i, want, rows[i].Balance.Kg)
		}
	}

	// In/out columns carry gross magnitudes on the matching side only.
	if !rows[0].Out.Kg.IsZero() || !rows[2].In.Kg.IsZero() {
		t.Error("in/out columns must be zero on the opposite side")
	}
	if !rows[2].Out.Kg.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected out 100 on row 3, got %v", rows[2].Out.Kg)
	}
}

func TestRunningHistory_FinalRowMatchesComputeBalance(t *testing.T) {
	// GIVEN: Any movement set
	// WHEN: Comparing the last history row with ComputeBalance
	// THEN: The two agree - one fold, two views

	movements := []ledger.Movement{
		mv("m1", 1, "s", "t", ledger.KindFarmerDelivery, 300, 6),
		mv("m2", 3, "s", "t", ledger.KindSiteTransferOut, 120, 2),
		mv("m3", 7, "s", "t", ledger.KindFarmerDelivery, 45, 1),
	}

	f := ledger.Filter{}
	rows := ledger.RunningHistory(movements, f)
	bal := ledger.ComputeBalance(movements, f)

	last := rows[len(rows)-1]
	if !last.Balance.Kg.Equal(bal.Kg) || !last.Balance.Units.Equal(bal.Units) {
		t.Errorf("history tail %v disagrees with balance %v", last.Balance, bal)
	}
}

func TestRunningHistory_DoesNotMutateInput(t *testing.T) {
	// GIVEN: An unsorted movement slice
	// WHEN: Building the history
	// THEN: The caller's slice keeps its original order

	movements := []ledger.Movement{
		mv("m2", 5, "s", "t", ledger.KindFarmerDelivery, 1, 0),
		mv("m1", 1, "s", "t", ledger.KindFarmerDelivery, 1, 0),
	}

	ledger.RunningHistory(movements, ledger.Filter{})

	if movements[0].ID != "m2" || movements[1].ID != "m1" {
		t.Error("input slice was reordered")
	}
}
