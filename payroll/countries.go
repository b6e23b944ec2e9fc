package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// BUILT-IN COUNTRY CONFIGURATIONS
// =============================================================================

// Madagascar payroll constants (2024 scale):
//   CNaPS            1% of gross, capped at 2,041,600 MGA
//   OSTIE/SANITAIRE  1% of gross, capped at 2,041,600 MGA
//   IRSA             progressive 0/5/10/15/20%, minimum perception 3,000 MGA
func Madagascar() *CountryConfig {
	cap := decimal.NewFromInt(2041600)
	onePct := decimal.NewFromFloat(0.01)
	minPerception := decimal.NewFromInt(3000)

	return &CountryConfig{
		Code: "MG",
		SocialContributions: []SocialContribution{
			{Key: "cnaps", Label: "CNaPS", Rate: onePct, Cap: &cap},
			{Key: "sanitary", Label: "OSTIE / SANITAIRE", Rate: onePct, Cap: &cap},
		},
		IncomeTax: IncomeTax{
			Label: "IRSA",
			Brackets: []Bracket{
				bracket(0, 350000, 0),
				bracket(350000, 400000, 0.05),
				bracket(400000, 500000, 0.10),
				bracket(500000, 600000, 0.15),
				openBracket(600000, 0.20),
			},
			MinimumPerception: &minPerception,
		},
	}
}

// DefaultRegistry returns the registry shipped with the application:
// Madagascar as the only (and fallback) configuration. Additional
// countries are registered from JSON at startup.
func DefaultRegistry() *Registry {
	return NewRegistry("MG", Madagascar())
}

func bracket(from, to int64, rate float64) Bracket {
	t := decimal.NewFromInt(to)
	return Bracket{From: decimal.NewFromInt(from), To: &t, Rate: decimal.NewFromFloat(rate)}
}

func openBracket(from int64, rate float64) Bracket {
	return Bracket{From: decimal.NewFromInt(from), Rate: decimal.NewFromFloat(rate)}
}
