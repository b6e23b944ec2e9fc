/*
Package payroll implements gross-to-net salary calculation.

PURPOSE:
  Computes statutory deductions (capped social contributions, progressive
  income tax with a minimum-perception floor) for a country described
  entirely by data. The calculator has no hidden state: same inputs,
  same result.

WHY DATA-DRIVEN?
  Tax tables change yearly and differ per country. Shipping them as data
  (Go values or JSON) means a rate change is a config edit, not a code
  change. The calculator only knows the shape: contributions with
  optional caps, brackets with marginal rates, an optional tax floor.

JSON SCHEMA:
  {
    "code": "MG",
    "social_contributions": [
      {"key": "cnaps", "label": "CNaPS", "rate": "0.01", "cap": "2041600"}
    ],
    "income_tax": {
      "label": "IRSA",
      "brackets": [
        {"from": "0", "to": "350000", "rate": "0"},
        {"from": "600000", "rate": "0.20"}
      ],
      "minimum_perception": "3000"
    }
  }
  Omitting "to" makes a bracket unbounded; rates and amounts are decimal
  strings to avoid float drift in config files.

SEE ALSO:
  - countries.go: built-in configurations (Madagascar)
  - calc.go: the gross-to-net computation
*/
package payroll

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIGURATION TYPES
// =============================================================================

// SocialContribution is one statutory deduction: rate applied to gross,
// optionally capped (base = min(gross, cap)).
type SocialContribution struct {
	Key   string
	Label string
	Rate  decimal.Decimal
	Cap   *decimal.Decimal // nil = uncapped
}

// Bracket is a progressive income-tax range [From, To) with a marginal
// rate. A nil To means the bracket is unbounded above.
type Bracket struct {
	From decimal.Decimal
	To   *decimal.Decimal
	Rate decimal.Decimal
}

// IncomeTax describes a country's progressive income tax.
type IncomeTax struct {
	Label             string
	Brackets          []Bracket // sorted ascending by From
	MinimumPerception *decimal.Decimal
}

// CountryConfig is the complete payroll ruleset for one country.
type CountryConfig struct {
	Code                string
	SocialContributions []SocialContribution
	IncomeTax           IncomeTax
}

// =============================================================================
// REGISTRY - Lookup by country code with fallback
// =============================================================================

// Registry holds country configurations. Lookup for an unknown code
// falls back to the default country; a registry with no match at all
// returns nil, which the calculator handles without failing.
type Registry struct {
	configs  map[string]*CountryConfig
	fallback string
}

func NewRegistry(fallbackCode string, configs ...*CountryConfig) *Registry {
	r := &Registry{configs: make(map[string]*CountryConfig), fallback: fallbackCode}
	for _, c := range configs {
		r.configs[c.Code] = c
	}
	return r
}

// Register adds or replaces a country configuration.
func (r *Registry) Register(cfg *CountryConfig) {
	r.configs[cfg.Code] = cfg
}

// ConfigFor returns the configuration for the given country code, the
// fallback country's configuration when the code is unknown, or nil when
// neither exists.
func (r *Registry) ConfigFor(code string) *CountryConfig {
	if cfg, ok := r.configs[code]; ok {
		return cfg
	}
	return r.configs[r.fallback]
}

// =============================================================================
// JSON CODEC - Configs ship as data
// =============================================================================

type contributionJSON struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Rate  string  `json:"rate"`
	Cap   *string `json:"cap,omitempty"`
}

type bracketJSON struct {
	From string  `json:"from"`
	To   *string `json:"to,omitempty"`
	Rate string  `json:"rate"`
}

type incomeTaxJSON struct {
	Label             string        `json:"label"`
	Brackets          []bracketJSON `json:"brackets"`
	MinimumPerception *string       `json:"minimum_perception,omitempty"`
}

type configJSON struct {
	Code                string             `json:"code"`
	SocialContributions []contributionJSON `json:"social_contributions"`
	IncomeTax           incomeTaxJSON      `json:"income_tax"`
}

// ParseConfig decodes a country configuration from JSON.
func ParseConfig(data []byte) (*CountryConfig, error) {
	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse payroll config: %w", err)
	}
	if raw.Code == "" {
		return nil, fmt.Errorf("parse payroll config: missing country code")
	}

	cfg := &CountryConfig{Code: raw.Code}
	for _, sc := range raw.SocialContributions {
		rate, err := decimal.NewFromString(sc.Rate)
		if err != nil {
			return nil, fmt.Errorf("contribution %q: bad rate %q", sc.Key, sc.Rate)
		}
		out := SocialContribution{Key: sc.Key, Label: sc.Label, Rate: rate}
		if sc.Cap != nil {
			cap, err := decimal.NewFromString(*sc.Cap)
			if err != nil {
				return nil, fmt.Errorf("contribution %q: bad cap %q", sc.Key, *sc.Cap)
			}
			out.Cap = &cap
		}
		cfg.SocialContributions = append(cfg.SocialContributions, out)
	}

	cfg.IncomeTax.Label = raw.IncomeTax.Label
	for i, b := range raw.IncomeTax.Brackets {
		from, err := decimal.NewFromString(b.From)
		if err != nil {
			return nil, fmt.Errorf("bracket %d: bad lower bound %q", i, b.From)
		}
		rate, err := decimal.NewFromString(b.Rate)
		if err != nil {
			return nil, fmt.Errorf("bracket %d: bad rate %q", i, b.Rate)
		}
		out := Bracket{From: from, Rate: rate}
		if b.To != nil {
			to, err := decimal.NewFromString(*b.To)
			if err != nil {
				return nil, fmt.Errorf("bracket %d: bad upper bound %q", i, *b.To)
			}
			out.To = &to
		}
		cfg.IncomeTax.Brackets = append(cfg.IncomeTax.Brackets, out)
	}
	if raw.IncomeTax.MinimumPerception != nil {
		mp, err := decimal.NewFromString(*raw.IncomeTax.MinimumPerception)
		if err != nil {
			return nil, fmt.Errorf("bad minimum perception %q", *raw.IncomeTax.MinimumPerception)
		}
		cfg.IncomeTax.MinimumPerception = &mp
	}
	return cfg, nil
}

// MarshalJSON round-trips a CountryConfig through the data schema above.
func (c *CountryConfig) MarshalJSON() ([]byte, error) {
	raw := configJSON{Code: c.Code}
	for _, sc := range c.SocialContributions {
		out := contributionJSON{Key: sc.Key, Label: sc.Label, Rate: sc.Rate.String()}
		if sc.Cap != nil {
			s := sc.Cap.String()
			out.Cap = &s
		}
		raw.SocialContributions = append(raw.SocialContributions, out)
	}
	raw.IncomeTax.Label = c.IncomeTax.Label
	for _, b := range c.IncomeTax.Brackets {
		out := bracketJSON{From: b.From.String(), Rate: b.Rate.String()}
		if b.To != nil {
			s := b.To.String()
			out.To = &s
		}
		raw.IncomeTax.Brackets = append(raw.IncomeTax.Brackets, out)
	}
	if c.IncomeTax.MinimumPerception != nil {
		s := c.IncomeTax.MinimumPerception.String()
		raw.IncomeTax.MinimumPerception = &s
	}
	return json.Marshal(raw)
}
