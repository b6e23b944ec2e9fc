/*
Package credit computes farmer credit balances.

PURPOSE:
  Farmers receive advances (cash or in-kind: rope, seed, equipment) that
  are repaid from future harvest payments. This package holds the credit
  and repayment records and the balance calculation used both for status
  display and as the upper bound on payment-time deductions.

KEY INVARIANT:
  balance(farmer) = sum of credits.TotalAmount - sum of repayments.Amount

  The balance is a signed number for reporting (over-repayment shows as
  negative); clamping at zero happens only where the balance is used as
  a deduction bound (see payrun.DeductionPolicy).

SEE ALSO:
  - payrun: applies the balance as a deduction cap during payment runs
*/
package credit

import (
	"github.com/shopspring/decimal"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
)

// =============================================================================
// RECORDS
// =============================================================================

// CreditType describes how a category of credit is priced. A type with
// both a quantity and a unit price derives the total; otherwise the
// total is entered directly.
type CreditType struct {
	ID           string
	Name         string
	HasQuantity  bool
	Unit         string
	HasUnitPrice bool
}

// Credit is an advance extended to a farmer. Append-only.
type Credit struct {
	ID           string
	FarmerID     string
	SiteID       string
	Date         ledger.TimePoint
	CreditTypeID string
	Quantity     decimal.Decimal // zero when the type has no quantity
	UnitPrice    decimal.Decimal
	TotalAmount  decimal.Decimal
	Notes        string
}

// Amount returns the credit's effective total: the stored total when
// present, otherwise quantity x unit price.
func (c Credit) Amount() decimal.Decimal {
	if !c.TotalAmount.IsZero() {
		return c.TotalAmount
	}
	return c.Quantity.Mul(c.UnitPrice)
}

// RepaymentMethod distinguishes cash repayments from deductions withheld
// during a payment run.
type RepaymentMethod string

const (
	MethodCash             RepaymentMethod = "cash"
	MethodHarvestDeduction RepaymentMethod = "harvest_deduction"
)

// Repayment reduces a farmer's credit balance. Append-only; repayments
// created by a payment run carry that run's ID.
type Repayment struct {
	ID           string
	FarmerID     string
	Date         ledger.TimePoint
	Amount       decimal.Decimal
	Method       RepaymentMethod
	Notes        string
	PaymentRunID string
}

// =============================================================================
// BALANCE
// =============================================================================

// Balance returns the farmer's outstanding credit: credits extended minus
// repayments received. Pure, O(n), inputs are not mutated.
func Balance(farmerID string, credits []Credit, repayments []Repayment) decimal.Decimal {
	total := decimal.Zero
	for _, c := range credits {
		if c.FarmerID == farmerID {
			total = total.Add(c.Amount())
		}
	}
	for _, r := range repayments {
		if r.FarmerID == farmerID {
			total = total.Sub(r.Amount)
		}
	}
	return total
}

// OutstandingOrZero is Balance clamped at zero, the form used when the
// balance bounds a deduction.
func OutstandingOrZero(farmerID string, credits []Credit, repayments []Repayment) decimal.Decimal {
	b := Balance(farmerID, credits, repayments)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}
