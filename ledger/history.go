/*
history.go - Chronological running-balance history

PURPOSE:
  Produces the per-row ledger view: each movement with its in/out
  quantities and the balance after it. Unlike ComputeBalance, the row
  order here is load-bearing - the display requires a monotonic running
  balance, so movements are explicitly sorted by date ascending with ID
  as the tie-break before folding.

ORDERING:
  The sort is an explicit, documented step, not an accidental property
  of insertion order. Two histories over the same movement set are
  always identical regardless of how the input slice was arranged.
*/
package ledger

import "sort"

// HistoryRow is one line of the ledger display: the movement's gross
// in/out quantities and the running balance after applying it.
type HistoryRow struct {
	Movement Movement
	In       Quantity // zero for outbound movements
	Out      Quantity // zero for inbound movements
	Balance  Quantity // running net after this row
}

// RunningHistory returns the filtered movements in chronological order
// (date ascending, ID ascending as tie-break) with a running balance per
// row. The input slice is not mutated.
func RunningHistory(movements []Movement, f Filter) []HistoryRow {
	selected := make([]Movement, 0, len(movements))
	for _, m := range movements {
		if f.Matches(m) {
			selected = append(selected, m)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if !selected[i].Date.Equal(selected[j].Date) {
			return selected[i].Date.Before(selected[j].Date)
		}
		return selected[i].ID < selected[j].ID
	})

	rows := make([]HistoryRow, 0, len(selected))
	running := ZeroQuantity()
	for _, m := range selected {
		row := HistoryRow{Movement: m, In: ZeroQuantity(), Out: ZeroQuantity()}
		dir, ok := m.Kind.Direction()
		if ok {
			if dir == DirectionIn {
				row.In = m.Quantity
				running = running.Add(m.Quantity)
			} else {
				row.Out = m.Quantity
				running = running.Sub(m.Quantity)
			}
		}
		row.Balance = running
		rows = append(rows, row)
	}
	return rows
}
