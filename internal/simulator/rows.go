package simulator

import (
	"fmt"
	"sort"

	"github.com/stitts-dev/ffreport/internal/metrics"
	"github.com/stitts-dev/ffreport/internal/models"
)

const (
	leaderMarker    = "†"
	qualifierMarker = "‡"
)

// Table renders the result for the report: predicted division leaders
// first, then predicted qualifiers, then by playoff chance.
func (r *Result) Table() metrics.Table {
	teams := append([]*TeamProbability(nil), r.Teams...)
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.PredictedDivisionLeader != b.PredictedDivisionLeader {
			return a.PredictedDivisionLeader
		}
		if a.PredictedDivisionQualifier != b.PredictedDivisionQualifier {
			return a.PredictedDivisionQualifier
		}
		return a.PlayoffChance > b.PlayoffChance
	})

	columns := []string{"Team", "Manager(s)", "Record"}
	if r.HasDivisions {
		columns = append(columns, "Division Record")
	}
	columns = append(columns, "Playoff Chance", "Wins Needed")
	for p := 1; p <= r.NumPlayoffSlots; p++ {
		columns = append(columns, ordinal(p))
	}

	table := metrics.Table{Name: "Playoff Probabilities", Columns: columns}
	for _, t := range teams {
		name := t.Name
		switch {
		case t.PredictedDivisionLeader:
			name += leaderMarker
		case t.PredictedDivisionQualifier:
			name += qualifierMarker
		}
		cells := []string{name, t.Managers, recordString(t.Wins, t.Losses, t.Ties)}
		if r.HasDivisions {
			cells = append(cells, recordString(t.DivisionWins, t.DivisionLosses, t.DivisionTies))
		}
		cells = append(cells, fmt.Sprintf("%.2f%%", t.PlayoffChance), neededWins(t.NeededWins))
		for _, pct := range t.PlayoffStatsPercent {
			cells = append(cells, fmt.Sprintf("%.2f%%", pct))
		}
		table.Rows = append(table.Rows, metrics.Row{TeamID: t.TeamID, Cells: cells})
	}
	return table
}

func recordString(w, l, t int) string {
	rec := models.Record{Wins: w, Losses: l, Ties: t}
	return rec.RecordString()
}

func neededWins(n int) string {
	if n == 1 {
		return "1 win"
	}
	return fmt.Sprintf("%d wins", n)
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
