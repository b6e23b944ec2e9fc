package payrun_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payroll"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payrun"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestEngine() *payrun.Engine {
	return payrun.NewEngine(payroll.DefaultRegistry())
}

func april(d int) ledger.TimePoint {
	return ledger.NewTimePoint(2025, time.April, d)
}

func aprilRun(typ payrun.PaymentType) payrun.RunConfig {
	return payrun.RunConfig{
		Type:       typ,
		Period:     ledger.Period{Start: april(1), End: april(30)},
		PeriodName: "April 2025",
		Country:    "MG",
	}
}

func cycle(id, farmerID string, d int, harvested, cuttings float64) payrun.HarvestCycle {
	return payrun.HarvestCycle{
		ID:            id,
		FarmerID:      farmerID,
		SeaweedTypeID: "cottonii",
		HarvestDate:   april(d),
		HarvestedKg:   decimal.NewFromFloat(harvested),
		CuttingsKg:    decimal.NewFromFloat(cuttings),
	}
}

func baseSnapshot() payrun.Snapshot {
	return payrun.Snapshot{
		Farmers: []payrun.Farmer{
			{ID: "f1", Name: "Rakoto", SiteID: "site-1"},
			{ID: "f2", Name: "Soa", SiteID: "site-1"},
		},
		Sites: []payrun.Site{{ID: "site-1", Name: "Ambanifony"}},
		SeaweedTypes: []payrun.SeaweedType{
			{ID: "cottonii", Name: "Cottonii", WetPrice: decimal.NewFromInt(100), DryPrice: decimal.NewFromInt(700)},
		},
	}
}

func pct(v int64) payrun.DeductionPolicy {
	return payrun.DeductionPolicy{
		Enabled: true,
		Mode:    payrun.DeductPercentage,
		Value:   decimal.NewFromInt(v),
	}
}

// =============================================================================
// FARMER WET RUNS
// =============================================================================

func TestBuildRows_FarmerWet_NetWeightTimesPrice(t *testing.T) {
	// GIVEN: One cycle of 120 kg harvested with 20 kg kept as cuttings
	// WHEN: Building a wet run at 100/kg
	// THEN: Base = (120 - 20) x 100 = 10,000

	snap := baseSnapshot()
	snap.Cycles = []payrun.HarvestCycle{cycle("c1", "f1", 10, 120, 20)}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentFarmerWet), snap, payrun.DeductionPolicy{})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if !r.Base.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected base 10,000, got %v", r.Base)
	}
	if !r.Net.Equal(r.Base) {
		t.Errorf("no deduction policy: net equals base, got %v", r.Net)
	}
	if !r.Selected {
		t.Error("rows start selected")
	}
	if r.SiteName != "Ambanifony" {
		t.Errorf("expected resolved site name, got %q", r.SiteName)
	}
}

func TestBuildRows_FarmerWet_AggregatesCyclesPerFarmer(t *testing.T) {
	// GIVEN: Two unsettled cycles for the same farmer in the period
	// WHEN: Building the wet run
	// THEN: One row sums both cycles and records both IDs

	snap := baseSnapshot()
	snap.Cycles = []payrun.HarvestCycle{
		cycle("c1", "f1", 5, 100, 0),
		cycle("c2", "f1", 20, 50, 10),
	}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentFarmerWet), snap, payrun.DeductionPolicy{})

	if len(rows) != 1 {
		t.Fatalf("expected one aggregated row, got %d", len(rows))
	}
	if !rows[0].Base.Equal(decimal.NewFromInt(14000)) {
		t.Errorf("expected base 14,000, got %v", rows[0].Base)
	}
	if len(rows[0].CycleIDs) != 2 {
		t.Errorf("expected 2 consumed cycles, got %v", rows[0].CycleIDs)
	}
}

func TestBuildRows_FarmerWet_SkipsSettledAndOutOfPeriod(t *testing.T) {
	// GIVEN: A settled cycle and one outside the period
	// WHEN: Building the run
	// THEN: Neither produces a row

	settled := cycle("c1", "f1", 10, 100, 0)
	settled.PaymentRunID = "pr-old"
	outside := cycle("c2", "f2", 10, 100, 0)
	outside.HarvestDate = ledger.NewTimePoint(2025, time.May, 2)

	snap := baseSnapshot()
	snap.Cycles = []payrun.HarvestCycle{settled, outside}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentFarmerWet), snap, payrun.DeductionPolicy{})
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestBuildRows_FarmerWet_CuttingsExceedHarvest(t *testing.T) {
	// GIVEN: A cycle where cuttings exceed the harvest
	// WHEN: Building the run
	// THEN: Net weight floors at zero and the row is dropped

	snap := baseSnapshot()
	snap.Cycles = []payrun.HarvestCycle{cycle("c1", "f1", 10, 30, 50)}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentFarmerWet), snap, payrun.DeductionPolicy{})
	if len(rows) != 0 {
		t.Fatalf("non-positive base must not pay, got %d rows", len(rows))
	}
}

// =============================================================================
// CREDIT DEDUCTIONS
// =============================================================================

func TestBuildRows_DeductionBoundedByCreditBalance(t *testing.T) {
	// GIVEN: Farmer owes 3,000 (5,000 credit - 2,000 repaid), payable 10,000
	// WHEN: Building with a 100% deduction policy
	// THEN: Deduction stops at the outstanding 3,000; net is 7,000

	snap := baseSnapshot()
	snap.Cycles = []payrun.HarvestCycle{cycle("c1", "f1", 10, 100, 0)}
	snap.Credits = []credit.Credit{
		{ID: "cr1", FarmerID: "f1", Date: april(1), TotalAmount: decimal.NewFromInt(5000)},
	}
	snap.Repayments = []credit.Repayment{
		{ID: "rp1", FarmerID: "f1", Date: april(2), Amount: decimal.NewFromInt(2000), Method: credit.MethodCash},
	}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentFarmerWet), snap, pct(100))

	r := rows[0]
	if !r.CreditBalance.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected outstanding 3,000, got %v", r.CreditBalance)
	}
	if !r.Deduction.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected deduction 3,000, got %v", r.Deduction)
	}
	if !r.Net.Equal(decimal.NewFromInt(7000)) {
		t.Errorf("expected net 7,000, got %v", r.Net)
	}
}

func TestBuildRows_PercentagePolicyBelowBalance(t *testing.T) {
	// GIVEN: Outstanding credit 8,000, payable 10,000
	// WHEN: Applying a 30% policy
	// THEN: Deduction is 3,000 (30% of payable, under both bounds)

	snap := baseSnapshot()
	snap.Cycles = []payrun.HarvestCycle{cycle("c1", "f1", 10, 100, 0)}
	snap.Credits = []credit.Credit{
		{ID: "cr1", FarmerID: "f1", Date: april(1), TotalAmount: decimal.NewFromInt(8000)},
	}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentFarmerWet), snap, pct(30))

	if !rows[0].Deduction.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected deduction 3,000, got %v", rows[0].Deduction)
	}
}

func TestDeductionPolicy_FixedModeClamped(t *testing.T) {
	// Fixed deductions are clamped the same way as percentages: never
	// above the payable amount and never above the outstanding credit.
	policy := payrun.DeductionPolicy{
		Enabled: true,
		Mode:    payrun.DeductFixed,
		Value:   decimal.NewFromInt(50000),
	}

	got := policy.Deduction(decimal.NewFromInt(10000), decimal.NewFromInt(3000))
	if !got.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected clamp to 3,000, got %v", got)
	}

	got = policy.Deduction(decimal.NewFromInt(2000), decimal.NewFromInt(9000))
	if !got.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected clamp to payable 2,000, got %v", got)
	}
}

func TestDeductionPolicy_DisabledOrNoCredit(t *testing.T) {
	enabled := pct(100)
	if !enabled.Deduction(decimal.NewFromInt(1000), decimal.Zero).IsZero() {
		t.Error("no outstanding credit: zero deduction")
	}

	disabled := payrun.DeductionPolicy{}
	if !disabled.Deduction(decimal.NewFromInt(1000), decimal.NewFromInt(500)).IsZero() {
		t.Error("disabled policy: zero deduction")
	}
}

func TestSetAdjustment_RecomputesNet(t *testing.T) {
	// GIVEN: A wet row with base 10,000 and outstanding credit 3,000
	// WHEN: Adding a +2,000 manual adjustment under a 100% policy
	// THEN: Payable becomes 12,000, deduction stays 3,000, net 9,000

	snap := baseSnapshot()
	snap.Cycles = []payrun.HarvestCycle{cycle("c1", "f1", 10, 100, 0)}
	snap.Credits = []credit.Credit{
		{ID: "cr1", FarmerID: "f1", Date: april(1), TotalAmount: decimal.NewFromInt(3000)},
	}

	policy := pct(100)
	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentFarmerWet), snap, policy)
	payrun.SetAdjustment(rows, "f1", decimal.NewFromInt(2000), policy)

	r := rows[0]
	if !r.Payable().Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected payable 12,000, got %v", r.Payable())
	}
	if !r.Net.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("expected net 9,000, got %v", r.Net)
	}
}

// =============================================================================
// DRY RUNS
// =============================================================================

func TestBuildRows_FarmerDry_WeightTimesDryPrice(t *testing.T) {
	// GIVEN: Two deliveries of 40 kg and 10 kg at 700/kg dry price
	// WHEN: Building a dry run
	// THEN: One row with base 35,000, both deliveries consumed

	snap := baseSnapshot()
	snap.Deliveries = []payrun.Delivery{
		{ID: "d1", FarmerID: "f1", SeaweedTypeID: "cottonii", Date: april(3), WeightKg: decimal.NewFromInt(40), Bags: 4},
		{ID: "d2", FarmerID: "f1", SeaweedTypeID: "cottonii", Date: april(9), WeightKg: decimal.NewFromInt(10), Bags: 1},
	}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentFarmerDry), snap, payrun.DeductionPolicy{})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].Base.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("expected base 35,000, got %v", rows[0].Base)
	}
	if rows[0].Bags != 5 {
		t.Errorf("expected 5 bags, got %d", rows[0].Bags)
	}
	if len(rows[0].DeliveryIDs) != 2 {
		t.Errorf("expected 2 consumed deliveries, got %v", rows[0].DeliveryIDs)
	}
}

// =============================================================================
// PROVIDER RUNS
// =============================================================================

func TestBuildRows_Providers_OneRowPerOperation(t *testing.T) {
	// GIVEN: Two unpaid operations for the same provider plus one paid
	// WHEN: Building a provider run
	// THEN: Two rows, one per unpaid operation - never aggregated

	snap := baseSnapshot()
	snap.Providers = []payrun.ServiceProvider{{ID: "p1", Name: "Jean"}}
	snap.Operations = []payrun.CuttingOperation{
		{ID: "op1", Date: april(2), ProviderID: "p1", LinesCut: 10, UnitPrice: decimal.NewFromInt(200), TotalAmount: decimal.NewFromInt(2000)},
		{ID: "op2", Date: april(8), ProviderID: "p1", LinesCut: 5, UnitPrice: decimal.NewFromInt(200), TotalAmount: decimal.NewFromInt(1000)},
		{ID: "op3", Date: april(9), ProviderID: "p1", TotalAmount: decimal.NewFromInt(500), Paid: true},
	}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentServiceProvider), snap, payrun.DeductionPolicy{})

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "op1" || rows[1].ID != "op2" {
		t.Errorf("expected date order op1, op2; got %s, %s", rows[0].ID, rows[1].ID)
	}
	for _, r := range rows {
		if r.RecipientID != "p1" || r.Name != "Jean" {
			t.Errorf("unexpected recipient on row %s: %s/%s", r.ID, r.RecipientID, r.Name)
		}
	}
}

func TestBuildRows_Providers_UnknownProviderGetsPlaceholder(t *testing.T) {
	// GIVEN: An operation referencing a provider absent from reference data
	// WHEN: Building the run
	// THEN: The row still pays, with a placeholder display name

	snap := baseSnapshot()
	snap.Operations = []payrun.CuttingOperation{
		{ID: "op1", Date: april(2), ProviderID: "ghost", TotalAmount: decimal.NewFromInt(1500)},
	}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentServiceProvider), snap, payrun.DeductionPolicy{})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Name != ledger.PlaceholderLabel {
		t.Errorf("expected placeholder name, got %q", rows[0].Name)
	}
	if !rows[0].Net.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected net 1,500, got %v", rows[0].Net)
	}
}

// =============================================================================
// EMPLOYEE RUNS
// =============================================================================

func TestBuildRows_Employees_PayrollBreakdown(t *testing.T) {
	// GIVEN: An employee with a 100,000 gross wage under Madagascar rules
	// WHEN: Building an employee run
	// THEN: The row carries the statutory breakdown: net 95,000

	snap := baseSnapshot()
	snap.Employees = []payrun.Employee{
		{ID: "e1", Name: "Hery", SiteID: "site-1", GrossWage: decimal.NewFromInt(100000)},
	}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentEmployeePayroll), snap, payrun.DeductionPolicy{})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Payroll == nil {
		t.Fatal("employee row must carry the payroll breakdown")
	}
	if !r.Net.Equal(decimal.NewFromInt(95000)) {
		t.Errorf("expected net 95,000, got %v", r.Net)
	}
	if !r.Deduction.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected statutory deductions 5,000, got %v", r.Deduction)
	}
}

func TestBuildRows_Employees_CreditPolicyDoesNotApply(t *testing.T) {
	// GIVEN: An employee who also happens to carry farmer credit records
	// WHEN: Applying an aggressive deduction policy
	// THEN: The employee's statutory deductions are untouched

	snap := baseSnapshot()
	snap.Employees = []payrun.Employee{
		{ID: "e1", Name: "Hery", GrossWage: decimal.NewFromInt(100000)},
	}
	snap.Credits = []credit.Credit{
		{ID: "cr1", FarmerID: "e1", Date: april(1), TotalAmount: decimal.NewFromInt(99999)},
	}

	rows := newTestEngine().BuildRows(aprilRun(payrun.PaymentEmployeePayroll), snap, pct(100))

	if !rows[0].Net.Equal(decimal.NewFromInt(95000)) {
		t.Errorf("credit policy leaked into employee row: net %v", rows[0].Net)
	}
}

func TestRecalculateEmployee_WithBonusesAndOvertime(t *testing.T) {
	// GIVEN: An employee row built from base wage only
	// WHEN: Recalculating with bonuses and overtime
	// THEN: The row reflects the new gross and net

	snap := baseSnapshot()
	snap.Employees = []payrun.Employee{
		{ID: "e1", Name: "Hery", GrossWage: decimal.NewFromInt(90000)},
	}

	engine := newTestEngine()
	rows := engine.BuildRows(aprilRun(payrun.PaymentEmployeePayroll), snap, payrun.DeductionPolicy{})
	engine.RecalculateEmployee(&rows[0], "MG", decimal.NewFromInt(8000), decimal.NewFromInt(2000), decimal.Zero)

	if !rows[0].Base.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected gross 100,000, got %v", rows[0].Base)
	}
	if !rows[0].Net.Equal(decimal.NewFromInt(95000)) {
		t.Errorf("expected net 95,000, got %v", rows[0].Net)
	}
}
