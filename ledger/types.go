/*
Package ledger provides the stock ledger engine.

PURPOSE:
  This package contains the types and algorithms for tracking physical
  seaweed stock across sites and the pressing warehouse. Whether the goods
  are raw bulk seaweed (kilograms and bags) or pressed seaweed (kilograms
  and bales), the same engine handles movement recording, running balances
  and stock valuation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantity: A weight (kg) paired with a discrete unit count (bags/bales)
  - Movement: An immutable ledger entry recording stock in or out
  - PriceBook: Unit prices per seaweed type, for valuation

DESIGN PRINCIPLES:
  1. Immutability: Movements are never modified once recorded; the only
     soft mutation is stamping a payment/export run reference
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Closed enumeration: MovementKind is a fixed set with a central
     classification table (kinds.go) - no scattered switches
  4. Graceful degradation: unknown references resolve to placeholders and
     zero contributions, never to an error

USAGE:
  m := ledger.Movement{
      ID:       "mv-001",
      Date:     ledger.NewTimePoint(2026, time.March, 4),
      SiteID:   "site-ambanifony",
      Kind:     ledger.KindFarmerDelivery,
      Quantity: ledger.NewQuantity(120, 4),
  }
  bal := ledger.ComputeBalance(movements, ledger.Filter{SiteID: "site-ambanifony"})

SEE ALSO:
  - kinds.go: Movement kind classification (bulk/pressed, in/out)
  - balance.go: Balance computation and valuation
  - history.go: Chronological running-balance history
*/
package ledger

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITY - Weight plus discrete units (bags for bulk, bales for pressed)
// =============================================================================

type Quantity struct {
	Kg    decimal.Decimal
	Units decimal.Decimal
}

func NewQuantity(kg, units float64) Quantity {
	return Quantity{Kg: DecimalFromFloat(kg), Units: DecimalFromFloat(units)}
}

func ZeroQuantity() Quantity {
	return Quantity{Kg: decimal.Zero, Units: decimal.Zero}
}

func (q Quantity) Add(o Quantity) Quantity {
	return Quantity{Kg: q.Kg.Add(o.Kg), Units: q.Units.Add(o.Units)}
}

func (q Quantity) Sub(o Quantity) Quantity {
	return Quantity{Kg: q.Kg.Sub(o.Kg), Units: q.Units.Sub(o.Units)}
}

func (q Quantity) Neg() Quantity {
	return Quantity{Kg: q.Kg.Neg(), Units: q.Units.Neg()}
}

func (q Quantity) IsZero() bool { return q.Kg.IsZero() && q.Units.IsZero() }

// DecimalFromFloat converts a float64 to decimal, substituting zero for
// NaN and infinities. All float input crosses this boundary so the engine
// never propagates NaN through sums.
func DecimalFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// =============================================================================
// MOVEMENT - Atomic stock transaction
// =============================================================================

// Movement is a single signed stock transaction for a site/seaweed-type
// pair. Direction and stock category (bulk vs pressed) are derived from
// Kind via the classification table in kinds.go, never stored.
//
// Movements are append-only. Corrections are made with adjustment
// movements; the original record is never edited.
type Movement struct {
	ID            string
	Date          TimePoint
	SiteID        string
	SeaweedTypeID string
	Kind          Kind
	Quantity      Quantity // non-negative magnitudes; sign comes from Kind
	Designation   string
	RelatedID     string // soft link to a pressing slip, export doc or payment run
}

// Signed returns the movement's contribution to a running balance:
// positive for inbound kinds, negative for outbound. Unknown kinds
// contribute zero.
func (m Movement) Signed() Quantity {
	spec, ok := kindTable[m.Kind]
	if !ok {
		return ZeroQuantity()
	}
	if spec.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// =============================================================================
// PRICE BOOK - Unit prices per seaweed type, for stock valuation
// =============================================================================

// PriceBook maps seaweed type IDs to a price per kilogram. A missing
// entry values at zero; valuation never fails.
type PriceBook map[string]decimal.Decimal

func (pb PriceBook) PriceFor(seaweedTypeID string) decimal.Decimal {
	if pb == nil {
		return decimal.Zero
	}
	if p, ok := pb[seaweedTypeID]; ok {
		return p
	}
	return decimal.Zero
}

// =============================================================================
// REFERENCE LABELS - Display names with placeholder fallback
// =============================================================================

// PlaceholderLabel is shown when a site or seaweed type reference cannot
// be resolved. Missing references never abort a computation.
const PlaceholderLabel = "unknown"

// Labels resolves site and seaweed-type IDs to display names.
type Labels struct {
	Sites        map[string]string
	SeaweedTypes map[string]string
}

func (l Labels) Site(id string) string {
	if name, ok := l.Sites[id]; ok && name != "" {
		return name
	}
	return PlaceholderLabel
}

func (l Labels) SeaweedType(id string) string {
	if name, ok := l.SeaweedTypes[id]; ok && name != "" {
		return name
	}
	return PlaceholderLabel
}
