package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SeasonSeries holds each team's weekly values for one metric. A nil value
// (no data, or a DQ week) is left out of the aggregate.
type SeasonSeries map[string][]*float64

// Append records one week's value for a team.
func (s SeasonSeries) Append(teamID string, v *float64) {
	s[teamID] = append(s[teamID], v)
}

// AppendValue records a plain value.
func (s SeasonSeries) AppendValue(teamID string, v float64) {
	s.Append(teamID, &v)
}

// values returns the non-nil weekly values for a team.
func (s SeasonSeries) values(teamID string) []float64 {
	var out []float64
	for _, v := range s[teamID] {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// SeasonAverageOptions controls a season aggregate column.
type SeasonAverageOptions struct {
	Column string
	// Percent appends "%" to the value.
	Percent bool
	// Ascending ranks lower aggregates first.
	Ascending bool
	// Total sums the weeks instead of averaging them.
	Total bool
}

// SeasonAverage returns the mean of the non-nil values and whether any
// existed.
func (s SeasonSeries) SeasonAverage(teamID string) (float64, bool) {
	vals := s.values(teamID)
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}

// SeasonTotal returns the sum of the non-nil values.
func (s SeasonSeries) SeasonTotal(teamID string) float64 {
	return floats.Sum(s.values(teamID))
}

// AddSeasonAverages ranks every team in the table by its season aggregate
// and appends a "value (place)" column. Places follow the same starring
// convention as the weekly tables; teams with no data show "N/A". Returns
// the number of tied pairs in the aggregate ranking.
func AddSeasonAverages(table *Table, series SeasonSeries, opts SeasonAverageOptions) int {
	format := func(v float64) string {
		s := fmt.Sprintf("%.2f", v)
		if opts.Percent {
			s += "%"
		}
		return s
	}

	var entries []entry
	for _, row := range table.Rows {
		e := entry{teamID: row.TeamID}
		var v float64
		var ok bool
		if opts.Total {
			v, ok = series.SeasonTotal(row.TeamID), len(series.values(row.TeamID)) > 0
		} else {
			v, ok = series.SeasonAverage(row.TeamID)
		}
		if !ok {
			e.dq = true
			e.display = "N/A"
		} else {
			e.value = v
			e.display = format(v)
		}
		entries = append(entries, e)
	}

	ranked, ties := rankEntries(entries, rankOptions{ascending: opts.Ascending})
	cells := make(map[string]string, len(ranked))
	for _, r := range ranked {
		if r.Cells[3] == "N/A" {
			cells[r.TeamID] = "N/A"
			continue
		}
		cells[r.TeamID] = fmt.Sprintf("%s (%s)", r.Cells[3], r.Cells[0])
	}
	table.AddColumn(opts.Column, func(r Row) string { return cells[r.TeamID] })
	return ties
}
