/*
kinds.go - Movement kind classification

PURPOSE:
  Central classification of every movement kind: which stock category it
  affects (bulk vs pressed) and which direction it moves (in vs out).
  Adding a kind is a one-place change to the table below.

BULK vs PRESSED:
  Bulk is raw seaweed before pressing (tracked in kg and bags), pressed
  is the post-pressing product (kg and bales). The two categories share
  one movement stream; membership is inferred purely from the kind, so
  the table here is load-bearing for every balance computation.

PRESSING:
  A pressing operation is the bridge between the two ledgers: it records
  a PRESSING_CONSUMPTION (bulk out) paired with a PRESSING_IN (pressed
  in). The pair is appended atomically; see store implementations.
*/
package ledger

// Kind identifies the business meaning of a stock movement. The set is
// closed; the engine treats kinds outside the table as zero contributions.
type Kind string

const (
	KindInitialStock        Kind = "INITIAL_STOCK"
	KindFarmerDelivery      Kind = "FARMER_DELIVERY"
	KindBulkInFromSite      Kind = "BULK_IN_FROM_SITE"
	KindPressingConsumption Kind = "PRESSING_CONSUMPTION"
	KindPressingIn          Kind = "PRESSING_IN"
	KindPressingOut         Kind = "PRESSING_OUT"
	KindExportOut           Kind = "EXPORT_OUT"
	KindReturnToSite        Kind = "RETURN_TO_SITE"
	KindBaggingTransfer     Kind = "BAGGING_TRANSFER"
	KindSiteTransferIn      Kind = "SITE_TRANSFER_IN"
	KindSiteTransferOut     Kind = "SITE_TRANSFER_OUT"
	KindAdjustmentIn        Kind = "ADJUSTMENT_IN"
	KindAdjustmentOut       Kind = "ADJUSTMENT_OUT"
)

// Category is the stock ledger a movement contributes to.
type Category string

const (
	CategoryBulk    Category = "bulk"
	CategoryPressed Category = "pressed"
)

// Direction is the sign of a movement's contribution.
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
)

type kindSpec struct {
	Category  Category
	Direction Direction
}

// kindTable is the single source of truth for kind classification.
var kindTable = map[Kind]kindSpec{
	// Bulk ledger: raw seaweed at sites and in the warehouse bulk area.
	KindFarmerDelivery:      {CategoryBulk, DirectionIn},
	KindBulkInFromSite:      {CategoryBulk, DirectionIn},
	KindBaggingTransfer:     {CategoryBulk, DirectionIn},
	KindSiteTransferIn:      {CategoryBulk, DirectionIn},
	KindPressingConsumption: {CategoryBulk, DirectionOut},
	KindPressingOut:         {CategoryBulk, DirectionOut},
	KindSiteTransferOut:     {CategoryBulk, DirectionOut},

	// Pressed ledger: finished bales in the warehouse.
	KindInitialStock:  {CategoryPressed, DirectionIn},
	KindPressingIn:    {CategoryPressed, DirectionIn},
	KindAdjustmentIn:  {CategoryPressed, DirectionIn},
	KindExportOut:     {CategoryPressed, DirectionOut},
	KindReturnToSite:  {CategoryPressed, DirectionOut},
	KindAdjustmentOut: {CategoryPressed, DirectionOut},
}

// Known reports whether k is part of the closed kind set.
func (k Kind) Known() bool {
	_, ok := kindTable[k]
	return ok
}

// Classify returns the stock category for k; ok is false for unknown kinds.
func (k Kind) Classify() (Category, bool) {
	spec, ok := kindTable[k]
	return spec.Category, ok
}

// Direction returns the sign of contribution for k; ok is false for
// unknown kinds.
func (k Kind) Direction() (Direction, bool) {
	spec, ok := kindTable[k]
	return spec.Direction, ok
}

// Kinds returns every known kind. Order is unspecified.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindTable))
	for k := range kindTable {
		out = append(out, k)
	}
	return out
}
