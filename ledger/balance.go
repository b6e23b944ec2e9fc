/*
balance.go - Balance computation and stock valuation

PURPOSE:
  Computes the running stock balance from a movement list. This is the
  central calculation that answers "how much seaweed is at this site?"

KEY INSIGHT:
  Balance is a commutative fold: each movement contributes its signed
  quantity, so the order of the input list never changes the result.
  Chronological ordering only matters when a per-row running balance is
  displayed; that lives in history.go.

FILTERING:
  A Filter narrows the movement set by site, seaweed type, stock
  category (bulk/pressed, derived from the kind table) and an inclusive
  as-of date. Empty filter fields match everything.

FAILURE SEMANTICS:
  Data-quality issues never abort the computation. Unknown kinds
  contribute zero, missing prices value at zero, and unresolvable
  references are a display concern (see Labels in types.go).
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// FILTER - Narrows the movement set for a balance or history query
// =============================================================================

// Filter selects movements by site, seaweed type, category and date.
// Zero-valued fields match all movements.
type Filter struct {
	SiteID        string
	SeaweedTypeID string
	Category      Category
	AsOf          *TimePoint // inclusive upper bound on Date
}

// Matches reports whether m passes the filter.
func (f Filter) Matches(m Movement) bool {
	if f.SiteID != "" && m.SiteID != f.SiteID {
		return false
	}
	if f.SeaweedTypeID != "" && m.SeaweedTypeID != f.SeaweedTypeID {
		return false
	}
	if f.Category != "" {
		cat, ok := m.Kind.Classify()
		if !ok || cat != f.Category {
			return false
		}
	}
	if f.AsOf != nil && m.Date.After(*f.AsOf) {
		return false
	}
	return true
}

// =============================================================================
// BALANCE - Accumulated stock position
// =============================================================================

// Balance is the net stock position for a filtered movement set.
// TotalIn and TotalOut are the gross magnitudes; Kg/Units the net.
type Balance struct {
	Kg       decimal.Decimal
	Units    decimal.Decimal
	TotalIn  Quantity
	TotalOut Quantity
}

// Value returns the stock value at the given price per kilogram.
// A zero price (missing or stale) simply values the stock at zero.
func (b Balance) Value(pricePerKg decimal.Decimal) decimal.Decimal {
	return b.Kg.Mul(pricePerKg)
}

// ValueWith looks up the price for the given seaweed type in the price
// book and values the balance with it.
func (b Balance) ValueWith(pb PriceBook, seaweedTypeID string) decimal.Decimal {
	return b.Value(pb.PriceFor(seaweedTypeID))
}

// =============================================================================
// BALANCE COMPUTATION
// =============================================================================

// ComputeBalance folds the filtered movements into a net balance.
// The fold is commutative: shuffling the input does not change the
// result. No movement is counted twice; unknown kinds contribute zero.
func ComputeBalance(movements []Movement, f Filter) Balance {
	bal := Balance{
		Kg:       decimal.Zero,
		Units:    decimal.Zero,
		TotalIn:  ZeroQuantity(),
		TotalOut: ZeroQuantity(),
	}

	for _, m := range movements {
		if !f.Matches(m) {
			continue
		}
		dir, ok := m.Kind.Direction()
		if !ok {
			continue
		}
		if dir == DirectionIn {
			bal.TotalIn = bal.TotalIn.Add(m.Quantity)
			bal.Kg = bal.Kg.Add(m.Quantity.Kg)
			bal.Units = bal.Units.Add(m.Quantity.Units)
		} else {
			bal.TotalOut = bal.TotalOut.Add(m.Quantity)
			bal.Kg = bal.Kg.Sub(m.Quantity.Kg)
			bal.Units = bal.Units.Sub(m.Quantity.Units)
		}
	}
	return bal
}
