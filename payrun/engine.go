/*
engine.go - Payee row construction and recomputation

PURPOSE:
  Builds the preview rows for a payment run from a data snapshot, and
  recomputes them synchronously when the operator edits an adjustment or
  changes the deduction policy.

SETTLEMENT FILTERING:
  Records already carrying a payment run ID (or marked paid) are excluded
  before a row is ever built. Building rows twice over the same unsettled
  data yields identical rows; building after a confirm excludes the
  now-settled records.

DEDUCTIONS:
  Credit deductions apply to farmer rows only, bounded by the payable
  amount and the farmer's outstanding credit (see DeductionPolicy).
  Employee deductions are statutory and come from the payroll calculator.
*/
package payrun

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payroll"
)

// Engine builds payment run previews. Payroll holds the country
// configurations used for employee runs.
type Engine struct {
	Payroll *payroll.Registry
}

func NewEngine(reg *payroll.Registry) *Engine {
	return &Engine{Payroll: reg}
}

// BuildRows constructs the payee rows for cfg from the snapshot and
// applies the deduction policy. The snapshot is not mutated. Rows come
// back sorted by name (providers by date then name) with every row
// selected and zero adjustment.
func (e *Engine) BuildRows(cfg RunConfig, snap Snapshot, policy DeductionPolicy) []PayeeRow {
	var rows []PayeeRow
	switch cfg.Type {
	case PaymentFarmerWet:
		rows = e.buildFarmerWet(cfg, snap)
	case PaymentFarmerDry:
		rows = e.buildFarmerDry(cfg, snap)
	case PaymentServiceProvider:
		rows = e.buildProviders(cfg, snap)
	case PaymentEmployeePayroll:
		rows = e.buildEmployees(cfg, snap)
	}
	ApplyPolicy(rows, policy)
	return rows
}

func (e *Engine) buildFarmerWet(cfg RunConfig, snap Snapshot) []PayeeRow {
	prices := make(map[string]decimal.Decimal, len(snap.SeaweedTypes))
	for _, st := range snap.SeaweedTypes {
		prices[st.ID] = st.WetPrice
	}

	var rows []PayeeRow
	for _, farmer := range snap.Farmers {
		if cfg.SiteID != "" && farmer.SiteID != cfg.SiteID {
			continue
		}
		var cycles []HarvestCycle
		for _, c := range snap.Cycles {
			if c.FarmerID != farmer.ID || c.PaymentRunID != "" {
				continue
			}
			if c.HarvestDate.IsZero() || !cfg.Period.Contains(c.HarvestDate) {
				continue
			}
			if cfg.SeaweedTypeID != "" && c.SeaweedTypeID != cfg.SeaweedTypeID {
				continue
			}
			cycles = append(cycles, c)
		}
		if len(cycles) == 0 {
			continue
		}

		base := decimal.Zero
		harvested := decimal.Zero
		cuttings := decimal.Zero
		net := decimal.Zero
		ids := make([]string, 0, len(cycles))
		for _, c := range cycles {
			base = base.Add(c.NetWeightKg().Mul(priceOrZero(prices, c.SeaweedTypeID)))
			harvested = harvested.Add(c.HarvestedKg)
			cuttings = cuttings.Add(c.CuttingsKg)
			net = net.Add(c.NetWeightKg())
			ids = append(ids, c.ID)
		}
		if !base.IsPositive() {
			continue
		}

		// Average price across mixed seaweed types, for display only.
		avgPrice := decimal.Zero
		if net.IsPositive() {
			avgPrice = base.Div(net)
		}

		rows = append(rows, PayeeRow{
			ID:            farmer.ID,
			Recipient:     RecipientFarmer,
			RecipientID:   farmer.ID,
			Name:          farmer.Name,
			SiteName:      snap.SiteName(farmer.SiteID),
			HarvestedKg:   harvested,
			CuttingsKg:    cuttings,
			WeightKg:      net,
			UnitPrice:     avgPrice,
			Base:          base,
			Net:           base,
			CreditBalance: credit.OutstandingOrZero(farmer.ID, snap.Credits, snap.Repayments),
			Selected:      true,
			CycleIDs:      ids,
		})
	}
	sortRowsByName(rows)
	return rows
}

func (e *Engine) buildFarmerDry(cfg RunConfig, snap Snapshot) []PayeeRow {
	prices := make(map[string]decimal.Decimal, len(snap.SeaweedTypes))
	for _, st := range snap.SeaweedTypes {
		prices[st.ID] = st.DryPrice
	}

	var rows []PayeeRow
	for _, farmer := range snap.Farmers {
		if cfg.SiteID != "" && farmer.SiteID != cfg.SiteID {
			continue
		}
		var deliveries []Delivery
		for _, d := range snap.Deliveries {
			if d.FarmerID != farmer.ID || d.PaymentRunID != "" {
				continue
			}
			if !cfg.Period.Contains(d.Date) {
				continue
			}
			if cfg.SeaweedTypeID != "" && d.SeaweedTypeID != cfg.SeaweedTypeID {
				continue
			}
			deliveries = append(deliveries, d)
		}
		if len(deliveries) == 0 {
			continue
		}

		base := decimal.Zero
		weight := decimal.Zero
		bags := 0
		ids := make([]string, 0, len(deliveries))
		for _, d := range deliveries {
			base = base.Add(d.WeightKg.Mul(priceOrZero(prices, d.SeaweedTypeID)))
			weight = weight.Add(d.WeightKg)
			bags += d.Bags
			ids = append(ids, d.ID)
		}
		if !base.IsPositive() {
			continue
		}

		avgPrice := decimal.Zero
		if weight.IsPositive() {
			avgPrice = base.Div(weight)
		}

		rows = append(rows, PayeeRow{
			ID:            farmer.ID,
			Recipient:     RecipientFarmer,
			RecipientID:   farmer.ID,
			Name:          farmer.Name,
			SiteName:      snap.SiteName(farmer.SiteID),
			WeightKg:      weight,
			Bags:          bags,
			UnitPrice:     avgPrice,
			Base:          base,
			Net:           base,
			CreditBalance: credit.OutstandingOrZero(farmer.ID, snap.Credits, snap.Repayments),
			Selected:      true,
			DeliveryIDs:   ids,
		})
	}
	sortRowsByName(rows)
	return rows
}

// buildProviders emits one row per operation: providers are paid per
// discrete job, never aggregated.
func (e *Engine) buildProviders(cfg RunConfig, snap Snapshot) []PayeeRow {
	names := make(map[string]string, len(snap.Providers))
	for _, p := range snap.Providers {
		names[p.ID] = p.Name
	}

	var rows []PayeeRow
	for _, op := range snap.Operations {
		if op.Paid || op.PaymentRunID != "" {
			continue
		}
		if !cfg.Period.Contains(op.Date) {
			continue
		}
		if cfg.SiteID != "" && op.SiteID != cfg.SiteID {
			continue
		}
		if cfg.SeaweedTypeID != "" && op.SeaweedTypeID != cfg.SeaweedTypeID {
			continue
		}
		if !op.TotalAmount.IsPositive() {
			continue
		}

		name := names[op.ProviderID]
		if name == "" {
			name = ledger.PlaceholderLabel
		}
		rows = append(rows, PayeeRow{
			ID:           op.ID,
			Recipient:    RecipientServiceProvider,
			RecipientID:  op.ProviderID,
			Name:         name,
			SiteName:     snap.SiteName(op.SiteID),
			Date:         op.Date,
			LinesCut:     op.LinesCut,
			UnitPrice:    op.UnitPrice,
			Base:         op.TotalAmount,
			Net:          op.TotalAmount,
			Selected:     true,
			OperationIDs: []string{op.ID},
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func (e *Engine) buildEmployees(cfg RunConfig, snap Snapshot) []PayeeRow {
	var cfgCountry *payroll.CountryConfig
	if e.Payroll != nil {
		cfgCountry = e.Payroll.ConfigFor(cfg.Country)
	}

	var rows []PayeeRow
	for _, emp := range snap.Employees {
		if cfg.SiteID != "" && emp.SiteID != cfg.SiteID {
			continue
		}
		calc := payroll.Calculate(emp.GrossWage, decimal.Zero, decimal.Zero, decimal.Zero, cfgCountry, payroll.Options{})
		res := calc
		rows = append(rows, PayeeRow{
			ID:          emp.ID,
			Recipient:   RecipientEmployee,
			RecipientID: emp.ID,
			Name:        emp.Name,
			SiteName:    snap.SiteName(emp.SiteID),
			Base:        calc.TotalGross,
			Deduction:   calc.TotalDeductions,
			Net:         calc.NetPay,
			Payroll:     &res,
			Selected:    true,
		})
	}
	sortRowsByName(rows)
	return rows
}

// =============================================================================
// SYNCHRONOUS RECOMPUTATION
// =============================================================================

// ApplyPolicy recomputes deductions and net amounts for farmer rows in
// place. Called whenever the deduction policy or an adjustment changes.
func ApplyPolicy(rows []PayeeRow, policy DeductionPolicy) {
	for i := range rows {
		recompute(&rows[i], policy)
	}
}

// SetAdjustment updates a row's manual adjustment and recomputes its net
// amount. No-op when the row ID is absent.
func SetAdjustment(rows []PayeeRow, id string, adjustment decimal.Decimal, policy DeductionPolicy) {
	for i := range rows {
		if rows[i].ID == id {
			rows[i].Adjustment = adjustment
			recompute(&rows[i], policy)
			return
		}
	}
}

// RecalculateEmployee replaces an employee row's payroll inputs and
// refreshes the row from the new breakdown.
func (e *Engine) RecalculateEmployee(row *PayeeRow, country string, bonuses, overtime, otherDeductions decimal.Decimal) {
	if row.Recipient != RecipientEmployee || row.Payroll == nil {
		return
	}
	var cfgCountry *payroll.CountryConfig
	if e.Payroll != nil {
		cfgCountry = e.Payroll.ConfigFor(country)
	}
	calc := payroll.Calculate(row.Payroll.BaseSalary, bonuses, overtime, otherDeductions, cfgCountry, payroll.Options{})
	row.Payroll = &calc
	row.Base = calc.TotalGross
	row.Deduction = calc.TotalDeductions
	row.Net = calc.NetPay
}

func recompute(r *PayeeRow, policy DeductionPolicy) {
	if r.Recipient == RecipientEmployee {
		return // employee deductions are statutory, not credit-based
	}
	r.Deduction = decimal.Zero
	if r.Recipient == RecipientFarmer {
		r.Deduction = policy.Deduction(r.Payable(), r.CreditBalance)
	}
	r.Net = r.Payable().Sub(r.Deduction)
}

func priceOrZero(prices map[string]decimal.Decimal, typeID string) decimal.Decimal {
	if p, ok := prices[typeID]; ok {
		return p
	}
	return decimal.Zero
}

func sortRowsByName(rows []PayeeRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
}
