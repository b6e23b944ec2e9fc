/*
confirm.go - Run confirmation

PURPOSE:
  Turns the selected payee rows into the persisted output batch: one
  MonthlyPayment per positive net amount, one Repayment per farmer
  credit deduction, and the full list of source record IDs to settle,
  all tagged with a single shared run ID.

ATOMICITY:
  ConfirmRun is pure - it builds the complete batch without touching
  storage. The store's ApplyRun then persists the batch in one
  transaction, so partial settlement (payments written but settlement
  flags dropped) cannot occur.
*/
package payrun

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
)

// ConfirmRun builds the output batch for the selected rows. Rows that
// are unselected, or whose net amount and deduction are both
// non-positive, are skipped. The returned batch shares one freshly
// generated run ID across payments, repayments and settlement flags.
func ConfirmRun(rows []PayeeRow, cfg RunConfig, date ledger.TimePoint) RunResult {
	res := RunResult{
		RunID: "pr-" + uuid.NewString(),
		Date:  date,
	}
	notes := fmt.Sprintf("Payment for period: %s to %s", cfg.Period.Start, cfg.Period.End)

	for _, r := range rows {
		if !r.Selected {
			continue
		}
		if !r.Net.IsPositive() && !r.Deduction.IsPositive() {
			continue
		}

		if r.Net.IsPositive() {
			res.Payments = append(res.Payments, MonthlyPayment{
				ID:            "mp-" + uuid.NewString(),
				Date:          date,
				Period:        cfg.PeriodName,
				RecipientType: r.Recipient,
				RecipientID:   r.RecipientID,
				Amount:        r.Net,
				Method:        "cash",
				Notes:         notes,
				PaymentRunID:  res.RunID,
				Status:        StatusPending,
			})
		}

		if r.Recipient == RecipientFarmer && r.Deduction.IsPositive() {
			res.Repayments = append(res.Repayments, credit.Repayment{
				ID:           "rp-" + uuid.NewString(),
				FarmerID:     r.RecipientID,
				Date:         date,
				Amount:       r.Deduction,
				Method:       credit.MethodHarvestDeduction,
				Notes:        "Deduction from payment run: " + cfg.PeriodName,
				PaymentRunID: res.RunID,
			})
		}

		res.SettledCycleIDs = append(res.SettledCycleIDs, r.CycleIDs...)
		res.SettledDeliveryIDs = append(res.SettledDeliveryIDs, r.DeliveryIDs...)
		res.SettledOperationIDs = append(res.SettledOperationIDs, r.OperationIDs...)
	}
	return res
}
