package metrics

import (
	"sort"
	"strconv"
)

// Row is one ranked line of a report table. Cells[0] is the place.
type Row struct {
	TeamID string   `json:"team_id"`
	Cells  []string `json:"cells"`
}

// Table is a ranked metric table as handed to the renderer.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	// NumTies counts tied pairs before any tie break: the sum of n(n-1)/2
	// over tie groups of size n > 1.
	NumTies int `json:"num_ties"`
}

// Row returns the row for teamID, or nil.
func (t *Table) Row(teamID string) *Row {
	for i := range t.Rows {
		if t.Rows[i].TeamID == teamID {
			return &t.Rows[i]
		}
	}
	return nil
}

// Positions maps each team id to its 1-based row position.
func (t Table) Positions() map[string]int {
	out := make(map[string]int, len(t.Rows))
	for i, r := range t.Rows {
		out[r.TeamID] = i + 1
	}
	return out
}

// StarredRows counts rows whose place carries the tie marker.
func (t Table) StarredRows() int {
	n := 0
	for _, r := range t.Rows {
		if len(r.Cells) > 0 && len(r.Cells[0]) > 0 && r.Cells[0][len(r.Cells[0])-1] == '*' {
			n++
		}
	}
	return n
}

// AddColumn appends a column; value returns the cell for each row.
func (t *Table) AddColumn(name string, value func(Row) string) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i].Cells = append(t.Rows[i].Cells, value(t.Rows[i]))
	}
}

// Filter keeps the rows for which keep returns true and renumbers nothing.
func (t *Table) Filter(keep func(Row) bool) {
	rows := t.Rows[:0]
	for _, r := range t.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	t.Rows = rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
