/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

NUMERIC BOUNDARY:
  Clients speak float64; the core speaks decimal. Every inbound float
  crosses through ledger.DecimalFromFloat, which maps NaN and infinities
  to zero so malformed client numbers degrade to zero contributions
  instead of poisoning a balance. Outbound decimals are rendered with
  InexactFloat64.

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  the validator before touching the domain.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: DecimalFromFloat
*/
package api

import (
	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payroll"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payrun"
)

// =============================================================================
// STOCK LEDGER
// =============================================================================

// CreateMovementRequest appends one stock movement. The kind determines
// both the stock category (bulk/pressed) and the direction; quantities
// are non-negative magnitudes.
type CreateMovementRequest struct {
	ID            string  `json:"id"`
	Date          string  `json:"date" validate:"required"`
	SiteID        string  `json:"site_id" validate:"required"`
	SeaweedTypeID string  `json:"seaweed_type_id" validate:"required"`
	Kind          string  `json:"kind" validate:"required"`
	Kg            float64 `json:"kg" validate:"gte=0"`
	Units         float64 `json:"units" validate:"gte=0"`
	Designation   string  `json:"designation"`
	RelatedID     string  `json:"related_id"`
}

// PressingRequest records one pressing operation: bulk consumed and
// pressed product produced, appended as an atomic movement pair.
type PressingRequest struct {
	SlipNo        string  `json:"slip_no"`
	Date          string  `json:"date" validate:"required"`
	SiteID        string  `json:"site_id" validate:"required"`
	SeaweedTypeID string  `json:"seaweed_type_id" validate:"required"`
	ConsumedKg    float64 `json:"consumed_kg" validate:"gte=0"`
	ConsumedBags  float64 `json:"consumed_bags" validate:"gte=0"`
	ProducedKg    float64 `json:"produced_kg" validate:"gte=0"`
	ProducedBales float64 `json:"produced_bales" validate:"gte=0"`
}

// MovementDTO represents a movement in API responses.
type MovementDTO struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	SiteID        string  `json:"site_id"`
	SeaweedTypeID string  `json:"seaweed_type_id"`
	Kind          string  `json:"kind"`
	Kg            float64 `json:"kg"`
	Units         float64 `json:"units"`
	Designation   string  `json:"designation,omitempty"`
	RelatedID     string  `json:"related_id,omitempty"`
}

// BalanceDTO is the net stock position for a filtered movement set.
type BalanceDTO struct {
	Kg         float64 `json:"kg"`
	Units      float64 `json:"units"`
	TotalInKg  float64 `json:"total_in_kg"`
	TotalOutKg float64 `json:"total_out_kg"`
	Value      float64 `json:"value"`
}

// HistoryRowDTO is one line of the chronological ledger view.
type HistoryRowDTO struct {
	Movement  MovementDTO `json:"movement"`
	InKg      float64     `json:"in_kg"`
	OutKg     float64     `json:"out_kg"`
	InUnits   float64     `json:"in_units"`
	OutUnits  float64     `json:"out_units"`
	BalanceKg float64     `json:"balance_kg"`
}

func toMovementDTO(m ledger.Movement) MovementDTO {
	return MovementDTO{
		ID:            m.ID,
		Date:          m.Date.String(),
		SiteID:        m.SiteID,
		SeaweedTypeID: m.SeaweedTypeID,
		Kind:          string(m.Kind),
		Kg:            m.Quantity.Kg.InexactFloat64(),
		Units:         m.Quantity.Units.InexactFloat64(),
		Designation:   m.Designation,
		RelatedID:     m.RelatedID,
	}
}

// =============================================================================
// CREDITS
// =============================================================================

// CreateCreditRequest records an advance to a farmer. Total is optional
// when quantity and unit price are given.
type CreateCreditRequest struct {
	ID           string  `json:"id"`
	FarmerID     string  `json:"farmer_id" validate:"required"`
	SiteID       string  `json:"site_id"`
	Date         string  `json:"date" validate:"required"`
	CreditTypeID string  `json:"credit_type_id"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	UnitPrice    float64 `json:"unit_price" validate:"gte=0"`
	TotalAmount  float64 `json:"total_amount" validate:"gte=0"`
	Notes        string  `json:"notes"`
}

// CreateRepaymentRequest records a cash repayment against a farmer's
// credit balance. Run-generated repayments never come through here.
type CreateRepaymentRequest struct {
	ID       string  `json:"id"`
	FarmerID string  `json:"farmer_id" validate:"required"`
	Date     string  `json:"date" validate:"required"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Notes    string  `json:"notes"`
}

// CreditBalanceDTO is a farmer's outstanding credit position.
type CreditBalanceDTO struct {
	FarmerID    string  `json:"farmer_id"`
	Balance     float64 `json:"balance"`
	Outstanding float64 `json:"outstanding"` // balance clamped at zero
}

// =============================================================================
// PAYROLL
// =============================================================================

// PayrollRequest computes one gross-to-net breakdown.
type PayrollRequest struct {
	Country           string   `json:"country"`
	BaseSalary        float64  `json:"base_salary" validate:"gte=0"`
	Bonuses           float64  `json:"bonuses" validate:"gte=0"`
	Overtime          float64  `json:"overtime" validate:"gte=0"`
	OtherDeductions   float64  `json:"other_deductions" validate:"gte=0"`
	AppliedDeductions []string `json:"applied_deductions"` // nil = all
}

// DeductionLineDTO is one labeled statutory deduction.
type DeductionLineDTO struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// PayrollResultDTO is the full gross-to-net breakdown.
type PayrollResultDTO struct {
	BaseSalary      float64            `json:"base_salary"`
	Bonuses         float64            `json:"bonuses"`
	Overtime        float64            `json:"overtime"`
	TotalGross      float64            `json:"total_gross"`
	Deductions      []DeductionLineDTO `json:"deductions"`
	OtherDeductions float64            `json:"other_deductions"`
	TotalDeductions float64            `json:"total_deductions"`
	NetPay          float64            `json:"net_pay"`
}

func toPayrollResultDTO(res payroll.Result) PayrollResultDTO {
	dto := PayrollResultDTO{
		BaseSalary:      res.BaseSalary.InexactFloat64(),
		Bonuses:         res.Bonuses.InexactFloat64(),
		Overtime:        res.Overtime.InexactFloat64(),
		TotalGross:      res.TotalGross.InexactFloat64(),
		Deductions:      make([]DeductionLineDTO, 0, len(res.Deductions)),
		OtherDeductions: res.OtherDeductions.InexactFloat64(),
		TotalDeductions: res.TotalDeductions.InexactFloat64(),
		NetPay:          res.NetPay.InexactFloat64(),
	}
	for _, d := range res.Deductions {
		dto.Deductions = append(dto.Deductions, DeductionLineDTO{
			Label:  d.Label,
			Amount: d.Amount.InexactFloat64(),
		})
	}
	return dto
}

// =============================================================================
// PAYMENT RUNS
// =============================================================================

// RunRequest bounds a payment run preview or confirmation.
type RunRequest struct {
	Type          string `json:"type" validate:"required,oneof=farmer_wet farmer_dry service_provider employee_payroll"`
	PeriodStart   string `json:"period_start" validate:"required"`
	PeriodEnd     string `json:"period_end" validate:"required"`
	SiteID        string `json:"site_id"`
	SeaweedTypeID string `json:"seaweed_type_id"`
	PeriodName    string `json:"period_name"`
	Country       string `json:"country"`

	Deduction DeductionPolicyDTO `json:"deduction"`
}

// DeductionPolicyDTO mirrors payrun.DeductionPolicy.
type DeductionPolicyDTO struct {
	Enabled bool    `json:"enabled"`
	Mode    string  `json:"mode"` // "percentage" or "fixed"
	Value   float64 `json:"value"`
}

// RowEditDTO carries per-row edits a user made in the preview: selection
// toggles and manual adjustments, keyed by row ID.
type RowEditDTO struct {
	ID         string  `json:"id" validate:"required"`
	Selected   bool    `json:"selected"`
	Adjustment float64 `json:"adjustment"`
}

// ConfirmRunRequest confirms a run: the same bounds as the preview plus
// the user's row edits. The server rebuilds the rows from current data,
// so a record settled between preview and confirm is silently excluded.
type ConfirmRunRequest struct {
	Run   RunRequest   `json:"run" validate:"required"`
	Date  string       `json:"date"`
	Edits []RowEditDTO `json:"edits" validate:"dive"`
}

// PayeeRowDTO is one line of a payment run preview.
type PayeeRowDTO struct {
	ID          string `json:"id"`
	Recipient   string `json:"recipient"`
	RecipientID string `json:"recipient_id"`
	Name        string `json:"name"`
	SiteName    string `json:"site_name"`

	HarvestedKg float64 `json:"harvested_kg,omitempty"`
	CuttingsKg  float64 `json:"cuttings_kg,omitempty"`
	WeightKg    float64 `json:"weight_kg,omitempty"`
	Bags        int     `json:"bags,omitempty"`
	UnitPrice   float64 `json:"unit_price,omitempty"`
	Date        string  `json:"date,omitempty"`
	LinesCut    int     `json:"lines_cut,omitempty"`

	Base          float64 `json:"base"`
	Adjustment    float64 `json:"adjustment"`
	Deduction     float64 `json:"deduction"`
	Net           float64 `json:"net"`
	CreditBalance float64 `json:"credit_balance"`

	Payroll *PayrollResultDTO `json:"payroll,omitempty"`

	Selected bool `json:"selected"`
}

func toPayeeRowDTO(r payrun.PayeeRow) PayeeRowDTO {
	dto := PayeeRowDTO{
		ID:            r.ID,
		Recipient:     string(r.Recipient),
		RecipientID:   r.RecipientID,
		Name:          r.Name,
		SiteName:      r.SiteName,
		HarvestedKg:   r.HarvestedKg.InexactFloat64(),
		CuttingsKg:    r.CuttingsKg.InexactFloat64(),
		WeightKg:      r.WeightKg.InexactFloat64(),
		Bags:          r.Bags,
		UnitPrice:     r.UnitPrice.InexactFloat64(),
		LinesCut:      r.LinesCut,
		Base:          r.Base.InexactFloat64(),
		Adjustment:    r.Adjustment.InexactFloat64(),
		Deduction:     r.Deduction.InexactFloat64(),
		Net:           r.Net.InexactFloat64(),
		CreditBalance: r.CreditBalance.InexactFloat64(),
		Selected:      r.Selected,
	}
	if !r.Date.IsZero() {
		dto.Date = r.Date.String()
	}
	if r.Payroll != nil {
		p := toPayrollResultDTO(*r.Payroll)
		dto.Payroll = &p
	}
	return dto
}

// RunResultDTO summarizes a confirmed run.
type RunResultDTO struct {
	RunID             string       `json:"run_id"`
	Date              string       `json:"date"`
	Payments          []PaymentDTO `json:"payments"`
	RepaymentsTotal   float64      `json:"repayments_total"`
	SettledCycles     int          `json:"settled_cycles"`
	SettledDeliveries int          `json:"settled_deliveries"`
	SettledOperations int          `json:"settled_operations"`
}

// PaymentDTO represents a recorded payment.
type PaymentDTO struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Period        string  `json:"period,omitempty"`
	RecipientType string  `json:"recipient_type"`
	RecipientID   string  `json:"recipient_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Notes         string  `json:"notes,omitempty"`
	PaymentRunID  string  `json:"payment_run_id"`
	Status        string  `json:"status"`
}

func toPaymentDTO(p payrun.MonthlyPayment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		Date:          p.Date.String(),
		Period:        p.Period,
		RecipientType: string(p.RecipientType),
		RecipientID:   p.RecipientID,
		Amount:        p.Amount.InexactFloat64(),
		Method:        p.Method,
		Notes:         p.Notes,
		PaymentRunID:  p.PaymentRunID,
		Status:        string(p.Status),
	}
}

// UpdatePaymentStatusRequest transitions a payment's status.
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSING COMPLETED FAILED"`
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

type CreateFarmerRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required"`
	SiteID string `json:"site_id"`
}

type CreateSiteRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

type CreateSeaweedTypeRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name" validate:"required"`
	WetPrice float64 `json:"wet_price" validate:"gte=0"`
	DryPrice float64 `json:"dry_price" validate:"gte=0"`
}

type CreateProviderRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

type CreateEmployeeRequest struct {
	ID        string  `json:"id"`
	Name      string  `json:"name" validate:"required"`
	SiteID    string  `json:"site_id"`
	GrossWage float64 `json:"gross_wage" validate:"gte=0"`
}

type CreateCycleRequest struct {
	ID            string  `json:"id"`
	ModuleID      string  `json:"module_id"`
	FarmerID      string  `json:"farmer_id" validate:"required"`
	SeaweedTypeID string  `json:"seaweed_type_id" validate:"required"`
	HarvestDate   string  `json:"harvest_date" validate:"required"`
	HarvestedKg   float64 `json:"harvested_kg" validate:"gte=0"`
	CuttingsKg    float64 `json:"cuttings_kg" validate:"gte=0"`
}

type CreateDeliveryRequest struct {
	ID            string  `json:"id"`
	SlipNo        string  `json:"slip_no"`
	FarmerID      string  `json:"farmer_id" validate:"required"`
	SiteID        string  `json:"site_id"`
	SeaweedTypeID string  `json:"seaweed_type_id" validate:"required"`
	Date          string  `json:"date" validate:"required"`
	WeightKg      float64 `json:"weight_kg" validate:"gte=0"`
	Bags          int     `json:"bags" validate:"gte=0"`
}

type CreateOperationRequest struct {
	ID            string  `json:"id"`
	Date          string  `json:"date" validate:"required"`
	SiteID        string  `json:"site_id"`
	ProviderID    string  `json:"provider_id" validate:"required"`
	SeaweedTypeID string  `json:"seaweed_type_id"`
	LinesCut      int     `json:"lines_cut" validate:"gte=0"`
	UnitPrice     float64 `json:"unit_price" validate:"gte=0"`
	TotalAmount   float64 `json:"total_amount" validate:"gte=0"`
}

// CreatedDTO acknowledges a created record.
type CreatedDTO struct {
	ID string `json:"id"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func (r RunRequest) toConfig() payrun.RunConfig {
	return payrun.RunConfig{
		Type: payrun.PaymentType(r.Type),
		Period: ledger.Period{
			Start: ledger.ParseDate(r.PeriodStart),
			End:   ledger.ParseDate(r.PeriodEnd),
		},
		SiteID:        r.SiteID,
		SeaweedTypeID: r.SeaweedTypeID,
		PeriodName:    r.PeriodName,
		Country:       r.Country,
	}
}

func (d DeductionPolicyDTO) toPolicy() payrun.DeductionPolicy {
	mode := payrun.DeductionMode(d.Mode)
	if mode != payrun.DeductFixed {
		mode = payrun.DeductPercentage
	}
	return payrun.DeductionPolicy{
		Enabled: d.Enabled,
		Mode:    mode,
		Value:   ledger.DecimalFromFloat(d.Value),
	}
}

func (r CreateCreditRequest) toCredit(id string) credit.Credit {
	return credit.Credit{
		ID:           id,
		FarmerID:     r.FarmerID,
		SiteID:       r.SiteID,
		Date:         ledger.ParseDate(r.Date),
		CreditTypeID: r.CreditTypeID,
		Quantity:     ledger.DecimalFromFloat(r.Quantity),
		UnitPrice:    ledger.DecimalFromFloat(r.UnitPrice),
		TotalAmount:  ledger.DecimalFromFloat(r.TotalAmount),
		Notes:        r.Notes,
	}
}
