/*
Package payrun builds and settles batch payment runs.

PURPOSE:
  A payment run selects unsettled source records (harvest cycles, dry
  deliveries, cutting operations, employee wages) for a period, computes
  a net payable amount per beneficiary, and settles the batch atomically:
  payments and credit repayments are recorded and every consumed source
  record is stamped with the run ID so it can never be paid twice.

ROW SHAPES:
  - Farmers: ONE row per farmer, aggregating all qualified records
  - Service providers: one row PER operation - providers are paid per
    discrete job, each with its own line count and unit price
  - Employees: one row per employee, carrying the full payroll breakdown

LIFECYCLE:
  PayeeRows are ephemeral view-model values: built, edited (selection,
  manual adjustment), recomputed synchronously, then discarded once the
  run is confirmed. Only MonthlyPayment and Repayment records persist.

SEE ALSO:
  - engine.go:  row construction and deduction recomputation
  - confirm.go: run confirmation (the atomic batch)
  - store.go:   persistence interfaces
*/
package payrun

import (
	"github.com/shopspring/decimal"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payroll"
)

// =============================================================================
// RUN CONFIGURATION
// =============================================================================

// PaymentType selects which source records a run consumes.
type PaymentType string

const (
	PaymentFarmerWet       PaymentType = "farmer_wet"
	PaymentFarmerDry       PaymentType = "farmer_dry"
	PaymentServiceProvider PaymentType = "service_provider"
	PaymentEmployeePayroll PaymentType = "employee_payroll"
)

// RunConfig bounds a payment run: type, inclusive period, and optional
// site / seaweed-type narrowing ("" matches all).
type RunConfig struct {
	Type          PaymentType
	Period        ledger.Period
	SiteID        string
	SeaweedTypeID string
	PeriodName    string
	Country       string // payroll country code for employee runs
}

// DeductionMode selects how a credit deduction is sized.
type DeductionMode string

const (
	DeductPercentage DeductionMode = "percentage"
	DeductFixed      DeductionMode = "fixed"
)

// DeductionPolicy governs how much of a farmer's credit balance is
// withheld from a payment. Percentage mode takes Value percent of the
// payable amount; fixed mode takes Value outright. Both are clamped.
type DeductionPolicy struct {
	Enabled bool
	Mode    DeductionMode
	Value   decimal.Decimal
}

// Deduction returns the amount withheld given the payable amount
// (base + adjustment) and the farmer's outstanding credit. The result
// is always within [0, min(payable, creditBalance)] - never more than
// owed, available credit, or the payment itself.
func (p DeductionPolicy) Deduction(payable, creditBalance decimal.Decimal) decimal.Decimal {
	if !p.Enabled || !creditBalance.IsPositive() || !payable.IsPositive() {
		return decimal.Zero
	}
	var raw decimal.Decimal
	if p.Mode == DeductPercentage {
		raw = payable.Mul(p.Value).Div(decimal.NewFromInt(100))
	} else {
		raw = p.Value
	}
	if raw.IsNegative() {
		return decimal.Zero
	}
	if raw.GreaterThan(payable) {
		raw = payable
	}
	if raw.GreaterThan(creditBalance) {
		raw = creditBalance
	}
	return raw
}

// =============================================================================
// SOURCE RECORDS
// =============================================================================

// HarvestCycle is a completed cultivation cycle awaiting wet payment.
// Net payable weight = harvested - cuttings taken for replanting.
type HarvestCycle struct {
	ID            string
	ModuleID      string
	FarmerID      string
	SeaweedTypeID string
	HarvestDate   ledger.TimePoint
	HarvestedKg   decimal.Decimal
	CuttingsKg    decimal.Decimal
	PaymentRunID  string // set once settled
}

// NetWeightKg is the payable harvest weight, floored at zero.
func (c HarvestCycle) NetWeightKg() decimal.Decimal {
	net := c.HarvestedKg.Sub(c.CuttingsKg)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// Delivery is a dried-seaweed delivery awaiting dry payment.
type Delivery struct {
	ID            string
	SlipNo        string
	FarmerID      string
	SiteID        string
	SeaweedTypeID string
	Date          ledger.TimePoint
	WeightKg      decimal.Decimal
	Bags          int
	PaymentRunID  string
}

// CuttingOperation is a service job (cutting lines on modules) awaiting
// provider payment. Paid per operation, not aggregated.
type CuttingOperation struct {
	ID            string
	Date          ledger.TimePoint
	SiteID        string
	ProviderID    string
	SeaweedTypeID string
	LinesCut      int
	UnitPrice     decimal.Decimal
	TotalAmount   decimal.Decimal
	Paid          bool
	PaymentRunID  string
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

type Farmer struct {
	ID     string
	Name   string
	SiteID string
}

type Site struct {
	ID   string
	Name string
}

type SeaweedType struct {
	ID       string
	Name     string
	WetPrice decimal.Decimal
	DryPrice decimal.Decimal
}

type ServiceProvider struct {
	ID   string
	Name string
}

type Employee struct {
	ID        string
	Name      string
	SiteID    string
	GrossWage decimal.Decimal
}

// Snapshot is the full input to a payment run: source records plus the
// reference data needed for grouping, pricing and labels. The engine
// assumes exclusive access to the snapshot for one computation.
type Snapshot struct {
	Farmers      []Farmer
	Sites        []Site
	SeaweedTypes []SeaweedType
	Providers    []ServiceProvider
	Employees    []Employee

	Cycles     []HarvestCycle
	Deliveries []Delivery
	Operations []CuttingOperation

	Credits    []credit.Credit
	Repayments []credit.Repayment
}

// SiteName resolves a site ID for display, with the ledger's placeholder
// for unknown references.
func (s Snapshot) SiteName(id string) string {
	for _, site := range s.Sites {
		if site.ID == id {
			return site.Name
		}
	}
	return ledger.PlaceholderLabel
}

// =============================================================================
// PAYEE ROW - Ephemeral computed view-model
// =============================================================================

// RecipientType tags who a payment goes to.
type RecipientType string

const (
	RecipientFarmer          RecipientType = "FARMER"
	RecipientEmployee        RecipientType = "EMPLOYEE"
	RecipientServiceProvider RecipientType = "SERVICE_PROVIDER"
)

// PayeeRow is one line of a payment run preview.
// Invariant: Net = Base + Adjustment - Deduction, with Deduction clamped
// to min(computed, Base+Adjustment, CreditBalance) for farmer rows.
type PayeeRow struct {
	ID          string // farmer/employee ID, or operation ID for providers
	Recipient   RecipientType
	RecipientID string
	Name        string
	SiteName    string

	// Quantity context (farmers)
	HarvestedKg decimal.Decimal
	CuttingsKg  decimal.Decimal
	WeightKg    decimal.Decimal
	Bags        int
	UnitPrice   decimal.Decimal

	// Operation context (providers)
	Date     ledger.TimePoint
	LinesCut int

	// Money
	Base          decimal.Decimal
	Adjustment    decimal.Decimal
	Deduction     decimal.Decimal
	Net           decimal.Decimal
	CreditBalance decimal.Decimal

	// Payroll breakdown (employees)
	Payroll *payroll.Result

	Selected bool

	// Consumed source records, settled on confirmation.
	CycleIDs     []string
	DeliveryIDs  []string
	OperationIDs []string
}

// Payable is the amount the deduction is applied against.
func (r PayeeRow) Payable() decimal.Decimal {
	return r.Base.Add(r.Adjustment)
}

// =============================================================================
// PERSISTED OUTPUT
// =============================================================================

// PaymentStatus tracks a recorded payment's lifecycle.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusCompleted  PaymentStatus = "COMPLETED"
	StatusFailed     PaymentStatus = "FAILED"
)

// MonthlyPayment is the persisted result of a confirmed run: one record
// per beneficiary with a positive net amount. Immutable after creation
// except for the status transition.
type MonthlyPayment struct {
	ID            string
	Date          ledger.TimePoint
	Period        string
	RecipientType RecipientType
	RecipientID   string
	Amount        decimal.Decimal
	Method        string
	Notes         string
	PaymentRunID  string
	Status        PaymentStatus
}

// RunResult is the full output batch of a confirmed run. It is built
// completely before any persistence side effect so settlement can be
// applied all-or-nothing.
type RunResult struct {
	RunID      string
	Date       ledger.TimePoint
	Payments   []MonthlyPayment
	Repayments []credit.Repayment

	SettledCycleIDs     []string
	SettledDeliveryIDs  []string
	SettledOperationIDs []string
}
