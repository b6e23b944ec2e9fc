package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/payroll"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func deductionByLabel(res payroll.Result, label string) (decimal.Decimal, bool) {
	for _, l := range res.Deductions {
		if l.Label == label {
			return l.Amount, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// MADAGASCAR GROSS-TO-NET
// =============================================================================

func TestCalculate_Madagascar_LowWage_MinimumPerception(t *testing.T) {
	// 100,000 gross: both 1% contributions below the cap, taxable base
	// 98,000 lands entirely in the 0% bracket, so IRSA is raised to the
	// 3,000 floor. Net = 100,000 - 1,000 - 1,000 - 3,000 = 95,000.
	res := payroll.Calculate(d(100000), d(0), d(0), d(0), payroll.Madagascar(), payroll.Options{})

	cnaps, ok := deductionByLabel(res, "CNaPS")
	require.True(t, ok)
	assert.True(t, cnaps.Equal(d(1000)), "CNaPS = 1%% of 100,000, got %v", cnaps)

	sanitary, ok := deductionByLabel(res, "OSTIE / SANITAIRE")
	require.True(t, ok)
	assert.True(t, sanitary.Equal(d(1000)))

	irsa, ok := deductionByLabel(res, "IRSA")
	require.True(t, ok, "minimum perception must appear as a deduction line")
	assert.True(t, irsa.Equal(d(3000)), "computed tax 0 raised to the floor, got %v", irsa)

	assert.True(t, res.TotalDeductions.Equal(d(5000)))
	assert.True(t, res.NetPay.Equal(d(95000)), "expected net 95,000, got %v", res.NetPay)
}

func TestCalculate_Madagascar_MidWage_ProgressiveBrackets(t *testing.T) {
	// 500,000 gross: contributions 5,000 + 5,000, taxable 490,000.
	// IRSA = 50,000 x 5% + 90,000 x 10% = 2,500 + 9,000 = 11,500.
	res := payroll.Calculate(d(500000), d(0), d(0), d(0), payroll.Madagascar(), payroll.Options{})

	irsa, ok := deductionByLabel(res, "IRSA")
	require.True(t, ok)
	assert.True(t, irsa.Equal(d(11500)), "expected IRSA 11,500, got %v", irsa)
	assert.True(t, res.NetPay.Equal(d(478500)), "expected net 478,500, got %v", res.NetPay)
}

func TestCalculate_Madagascar_NetMonotonicInGross(t *testing.T) {
	// Ramp gross across every bracket edge and the contribution cap: a
	// raise must never lower the net, and the net must never grow by
	// more than the raise.
	grosses := []int64{
		50000, 100000,
		349000, 350000, 351000,
		399000, 400000, 401000,
		499000, 500000, 501000,
		599000, 600000, 601000,
		2000000, 2041600, 2100000, 3000000,
	}

	cfg := payroll.Madagascar()
	prevGross := d(grosses[0])
	prevNet := payroll.Calculate(prevGross, d(0), d(0), d(0), cfg, payroll.Options{}).NetPay
	for _, g := range grosses[1:] {
		gross := d(g)
		net := payroll.Calculate(gross, d(0), d(0), d(0), cfg, payroll.Options{}).NetPay

		raise := gross.Sub(prevGross)
		delta := net.Sub(prevNet)
		assert.False(t, delta.IsNegative(),
			"gross %v -> %v: net dropped from %v to %v", prevGross, gross, prevNet, net)
		assert.True(t, delta.LessThanOrEqual(raise),
			"gross %v -> %v: net gained %v, more than the raise %v", prevGross, gross, delta, raise)

		prevGross, prevNet = gross, net
	}
}

func TestCalculate_Madagascar_HighWage_ContributionCap(t *testing.T) {
	// 3,000,000 gross is above the 2,041,600 cap: each contribution is
	// 1% of the cap (20,416), not of the gross.
	res := payroll.Calculate(d(3000000), d(0), d(0), d(0), payroll.Madagascar(), payroll.Options{})

	cnaps, ok := deductionByLabel(res, "CNaPS")
	require.True(t, ok)
	assert.True(t, cnaps.Equal(d(20416)), "capped contribution, got %v", cnaps)

	// Taxable 3,000,000 - 40,832 = 2,959,168.
	// IRSA = 2,500 + 10,000 + 15,000 + (2,959,168 - 600,000) x 20%
	//      = 27,500 + 471,833.6 = 499,333.6
	irsa, ok := deductionByLabel(res, "IRSA")
	require.True(t, ok)
	assert.True(t, irsa.Equal(decimal.NewFromFloat(499333.6)), "got %v", irsa)
}

func TestCalculate_BonusesAndOvertimeEnterGross(t *testing.T) {
	res := payroll.Calculate(d(90000), d(8000), d(2000), d(0), payroll.Madagascar(), payroll.Options{})

	assert.True(t, res.TotalGross.Equal(d(100000)))
	// Same totals as the 100,000 base case.
	assert.True(t, res.NetPay.Equal(d(95000)), "got %v", res.NetPay)
}

func TestCalculate_OtherDeductionsReduceNetOnly(t *testing.T) {
	// Other deductions (advances, penalties) come off after the statutory
	// lines and never shrink the taxable base.
	with := payroll.Calculate(d(100000), d(0), d(0), d(10000), payroll.Madagascar(), payroll.Options{})
	without := payroll.Calculate(d(100000), d(0), d(0), d(0), payroll.Madagascar(), payroll.Options{})

	irsaWith, _ := deductionByLabel(with, "IRSA")
	irsaWithout, _ := deductionByLabel(without, "IRSA")
	assert.True(t, irsaWith.Equal(irsaWithout), "tax unchanged by other deductions")
	assert.True(t, with.NetPay.Equal(without.NetPay.Sub(d(10000))))
}

// =============================================================================
// APPLIED DEDUCTION SELECTION
// =============================================================================

func TestCalculate_AppliedDeductionsSubset(t *testing.T) {
	// Selecting only CNaPS: sanitary is skipped and the taxable base grows
	// accordingly.
	res := payroll.Calculate(d(100000), d(0), d(0), d(0), payroll.Madagascar(),
		payroll.Options{AppliedDeductions: []string{"cnaps"}})

	_, hasSanitary := deductionByLabel(res, "OSTIE / SANITAIRE")
	assert.False(t, hasSanitary)

	cnaps, ok := deductionByLabel(res, "CNaPS")
	require.True(t, ok)
	assert.True(t, cnaps.Equal(d(1000)))

	// Taxable 99,000 still in the zero bracket, floor still applies.
	assert.True(t, res.NetPay.Equal(d(96000)), "got %v", res.NetPay)
}

func TestCalculate_EmptyAppliedListSkipsAll(t *testing.T) {
	// nil means all, an empty non-nil list means none.
	res := payroll.Calculate(d(100000), d(0), d(0), d(0), payroll.Madagascar(),
		payroll.Options{AppliedDeductions: []string{}})

	_, hasCnaps := deductionByLabel(res, "CNaPS")
	assert.False(t, hasCnaps)
}

// =============================================================================
// FALLBACK AND EDGE CASES
// =============================================================================

func TestCalculate_NilConfig_NoStatutoryDeductions(t *testing.T) {
	res := payroll.Calculate(d(100000), d(0), d(0), d(4000), nil, payroll.Options{})

	assert.Empty(t, res.Deductions)
	assert.True(t, res.TotalDeductions.Equal(d(4000)))
	assert.True(t, res.NetPay.Equal(d(96000)))
}

func TestCalculate_ZeroGross_NoMinimumPerception(t *testing.T) {
	// The floor only applies to a strictly positive taxable base.
	res := payroll.Calculate(d(0), d(0), d(0), d(0), payroll.Madagascar(), payroll.Options{})

	_, hasIRSA := deductionByLabel(res, "IRSA")
	assert.False(t, hasIRSA)
	assert.True(t, res.NetPay.IsZero())
}

// =============================================================================
// REGISTRY
// =============================================================================

func TestRegistry_UnknownCountryFallsBack(t *testing.T) {
	reg := payroll.DefaultRegistry()

	cfg := reg.ConfigFor("ZZ")
	require.NotNil(t, cfg, "unknown code falls back to the default country")
	assert.Equal(t, "MG", cfg.Code)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := payroll.DefaultRegistry()
	reg.Register(&payroll.CountryConfig{Code: "TZ"})

	cfg := reg.ConfigFor("TZ")
	require.NotNil(t, cfg)
	assert.Equal(t, "TZ", cfg.Code)
}

// =============================================================================
// JSON CONFIGURATION
// =============================================================================

func TestParseConfig_RoundTrip(t *testing.T) {
	src := payroll.Madagascar()
	data, err := src.MarshalJSON()
	require.NoError(t, err)

	parsed, err := payroll.ParseConfig(data)
	require.NoError(t, err)

	// A config that survives the round trip computes the same payroll.
	want := payroll.Calculate(d(500000), d(0), d(0), d(0), src, payroll.Options{})
	got := payroll.Calculate(d(500000), d(0), d(0), d(0), parsed, payroll.Options{})
	assert.True(t, want.NetPay.Equal(got.NetPay), "want %v, got %v", want.NetPay, got.NetPay)
	assert.Equal(t, len(want.Deductions), len(got.Deductions))
}
