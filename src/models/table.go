// backend/src/models/table.go
package models

import "time"

// Table is one sheet of an uploaded export, already split into rows of
// cells. The core never opens files itself; workbook loading lives with
// the callers (CLI / HTTP handler) and hands Tables in. Tables are owned
// by the single reconciliation call and must not be retained anywhere
// with its own lifetime.
type Table struct {
	Sheet string
	Rows  [][]string
}

// Cell returns the cell at (row, col) or "" when the row is ragged.
// xlsx readers drop trailing empty cells, so short rows are normal.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Period is the requested reconciliation range, closed at both ends.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts falls inside the period, boundaries included.
func (p Period) Contains(ts time.Time) bool {
	return !ts.Before(p.Start) && !ts.After(p.End)
}

// ContainsDate reports whether the calendar date of ts falls inside the
// period at date-only granularity. POS exports carry dates, not times,
// so a day partially covered by the period still counts as in range.
func (p Period) ContainsDate(ts time.Time) bool {
	d := truncateToDay(ts)
	return !d.Before(truncateToDay(p.Start)) && !d.After(truncateToDay(p.End))
}

func truncateToDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
