/*
calc.go - Gross-to-net payroll computation

PURPOSE:
  The single calculation answering "what does this employee take home?"

ALGORITHM:
  1. totalGross = base + bonuses + overtime
  2. Each applied social contribution: amount = min(gross, cap) x rate
  3. taxableBase = totalGross - sum of contributions
  4. Progressive tax: each bracket overlapping [0, taxableBase] accrues
     (min(to, taxableBase) - from) x rate
  5. Minimum perception: when configured and taxableBase > 0, computed
     tax below the floor is raised to it. A strictly positive taxable
     base therefore always yields at least the floor.
  6. netPay = totalGross - statutory deductions - other deductions

NO-CONFIG FALLBACK:
  With a nil configuration the statutory deductions are skipped entirely
  and netPay = totalGross - otherDeductions. Never an error.

PRECISION:
  All sub-computations carry full decimal precision. Rounding for
  display is the presentation layer's job; doing it here would compound
  error across bracket sums.
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// RESULT
// =============================================================================

// DeductionLine is one labeled statutory deduction in a payroll result.
type DeductionLine struct {
	Label  string
	Amount decimal.Decimal
}

// Result is the full gross-to-net breakdown for one employee and period.
// Ephemeral: recomputed on demand, never stored.
type Result struct {
	BaseSalary      decimal.Decimal
	Bonuses         decimal.Decimal
	Overtime        decimal.Decimal
	TotalGross      decimal.Decimal
	Deductions      []DeductionLine
	OtherDeductions decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
}

// Options tunes a calculation. AppliedDeductions selects which social
// contribution keys apply; nil means all of them.
type Options struct {
	AppliedDeductions []string
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate computes the gross-to-net breakdown under cfg. A nil cfg
// degrades to the no-statutory-deduction fallback; it never fails.
// Output depends only on the inputs.
func Calculate(baseSalary, bonuses, overtime, otherDeductions decimal.Decimal, cfg *CountryConfig, opts Options) Result {
	totalGross := baseSalary.Add(bonuses).Add(overtime)

	res := Result{
		BaseSalary:      baseSalary,
		Bonuses:         bonuses,
		Overtime:        overtime,
		TotalGross:      totalGross,
		OtherDeductions: otherDeductions,
	}

	if cfg == nil {
		res.TotalDeductions = otherDeductions
		res.NetPay = totalGross.Sub(otherDeductions)
		return res
	}

	applied := func(key string) bool {
		if opts.AppliedDeductions == nil {
			return true
		}
		for _, k := range opts.AppliedDeductions {
			if k == key {
				return true
			}
		}
		return false
	}

	contributionsTotal := decimal.Zero
	for _, sc := range cfg.SocialContributions {
		if !applied(sc.Key) {
			continue
		}
		base := totalGross
		if sc.Cap != nil && base.GreaterThan(*sc.Cap) {
			base = *sc.Cap
		}
		amount := base.Mul(sc.Rate)
		contributionsTotal = contributionsTotal.Add(amount)
		res.Deductions = append(res.Deductions, DeductionLine{Label: sc.Label, Amount: amount})
	}

	taxableBase := totalGross.Sub(contributionsTotal)
	tax := progressiveTax(taxableBase, cfg.IncomeTax.Brackets)

	// Minimum perception applies whenever the taxable base is positive,
	// even when every bracket rate is zero.
	if cfg.IncomeTax.MinimumPerception != nil &&
		taxableBase.IsPositive() &&
		tax.LessThan(*cfg.IncomeTax.MinimumPerception) {
		tax = *cfg.IncomeTax.MinimumPerception
	}
	if tax.IsPositive() {
		res.Deductions = append(res.Deductions, DeductionLine{Label: cfg.IncomeTax.Label, Amount: tax})
	}

	statutory := decimal.Zero
	for _, d := range res.Deductions {
		statutory = statutory.Add(d.Amount)
	}
	res.TotalDeductions = statutory.Add(otherDeductions)
	res.NetPay = totalGross.Sub(res.TotalDeductions)
	return res
}

// progressiveTax accrues marginal tax over the brackets overlapping
// [0, taxableBase]. A non-positive base yields zero; the result is never
// negative.
func progressiveTax(taxableBase decimal.Decimal, brackets []Bracket) decimal.Decimal {
	tax := decimal.Zero
	if !taxableBase.IsPositive() {
		return tax
	}
	for _, b := range brackets {
		if !taxableBase.GreaterThan(b.From) {
			continue
		}
		upper := taxableBase
		if b.To != nil && b.To.LessThan(upper) {
			upper = *b.To
		}
		span := upper.Sub(b.From)
		if span.IsPositive() {
			tax = tax.Add(span.Mul(b.Rate))
		}
	}
	return tax
}
