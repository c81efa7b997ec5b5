package metrics

import (
	"fmt"
	"sort"

	"github.com/stitts-dev/ffreport/internal/models"
)

const divisionLeaderMarker = "†"

// DivisionStandings holds one table per division plus a league-wide table
// ranked with the same key.
type DivisionStandings struct {
	Divisions []Table `json:"divisions"`
	Overall   Table   `json:"overall"`
}

var standingsColumns = []string{
	"Place", "Team", "Manager(s)", "Record", "Points For", "Points Against", "Streak", "Waiver", "Moves", "Trades",
}

// CurrentStandings sorts the week's teams by record rank, then points for,
// and stores the result on the league.
func (c *Calculator) CurrentStandings(week int) []*models.Team {
	teams := c.league.Teams(week)
	sort.SliceStable(teams, func(i, j int) bool {
		ri, rj := rankOf(teams[i]), rankOf(teams[j])
		if ri != rj {
			return ri < rj
		}
		return pointsFor(teams[i]) > pointsFor(teams[j])
	})
	c.league.CurrentStandings = teams
	return teams
}

// StandingsTable projects the current standings into renderer rows.
func (c *Calculator) StandingsTable(week int) Table {
	table := Table{Name: "Standings", Columns: append([]string(nil), standingsColumns...)}
	for i, team := range c.CurrentStandings(week) {
		table.Rows = append(table.Rows, Row{
			TeamID: team.TeamID,
			Cells:  append([]string{itoa(i + 1), team.Name, team.ManagerString()}, c.recordCells(team)...),
		})
	}
	return table
}

func (c *Calculator) recordCells(team *models.Team) []string {
	rec := team.Record
	if rec == nil {
		rec = models.NewRecord(team.Week, team.TeamID, team.Name)
	}
	return []string{
		rec.RecordWithPercentageString(),
		fmt.Sprintf("%.2f", rec.PointsFor),
		fmt.Sprintf("%.2f", rec.PointsAgainst),
		rec.StreakString(),
		c.waiverCell(team),
		itoa(team.NumMoves),
		itoa(team.NumTrades),
	}
}

func (c *Calculator) waiverCell(team *models.Team) string {
	switch {
	case c.league.IsFAAB:
		return fmt.Sprintf("$%d", team.FAAB)
	case c.league.HasWaiverPriorities:
		return itoa(team.WaiverPriority)
	default:
		return "N/A"
	}
}

// DivisionStandings ranks each division by wins, losses, ties, division
// wins, division losses, division ties and points for. Teams equal on every
// key keep their current-standings order. Each division leader's name gets
// a "†" suffix.
func (c *Calculator) DivisionStandings(week int) DivisionStandings {
	standings := c.CurrentStandings(week)
	columns := []string{
		"Place", "Team", "Manager(s)", "Record", "Division Record", "Points For", "Points Against",
		"Streak", "Waiver", "Moves", "Trades", "Division",
	}

	byDivision := make(map[string][]*models.Team)
	for _, team := range standings {
		byDivision[team.Division] = append(byDivision[team.Division], team)
	}

	leaders := make(map[string]bool)
	var out DivisionStandings
	for _, divisionID := range sortedKeys(byDivision) {
		teams := byDivision[divisionID]
		sort.SliceStable(teams, func(i, j int) bool { return divisionBefore(teams[i], teams[j]) })
		if len(teams) > 0 {
			leaders[teams[0].TeamID] = true
		}
		table := Table{Name: c.league.DivisionName(divisionID), Columns: columns}
		for i, team := range teams {
			table.Rows = append(table.Rows, c.divisionRow(i+1, team, leaders[team.TeamID]))
		}
		out.Divisions = append(out.Divisions, table)
	}

	all := append([]*models.Team(nil), standings...)
	sort.SliceStable(all, func(i, j int) bool { return divisionBefore(all[i], all[j]) })
	out.Overall = Table{Name: "Division Standings", Columns: columns}
	for i, team := range all {
		out.Overall.Rows = append(out.Overall.Rows, c.divisionRow(i+1, team, leaders[team.TeamID]))
	}
	return out
}

func (c *Calculator) divisionRow(place int, team *models.Team, leader bool) Row {
	name := team.Name
	if leader {
		name += divisionLeaderMarker
	}
	rec := team.Record
	if rec == nil {
		rec = models.NewRecord(team.Week, team.TeamID, team.Name)
	}
	cells := c.recordCells(team)
	return Row{
		TeamID: team.TeamID,
		Cells: append([]string{itoa(place), name, team.ManagerString(), cells[0], rec.DivisionRecordString()},
			append(cells[1:], c.league.DivisionName(team.Division))...),
	}
}

func divisionBefore(a, b *models.Team) bool {
	ra, rb := a.Record, b.Record
	if ra == nil || rb == nil {
		return rb == nil && ra != nil
	}
	switch {
	case ra.Wins != rb.Wins:
		return ra.Wins > rb.Wins
	case ra.Losses != rb.Losses:
		return ra.Losses < rb.Losses
	case ra.Ties != rb.Ties:
		return ra.Ties > rb.Ties
	case ra.DivisionWins != rb.DivisionWins:
		return ra.DivisionWins > rb.DivisionWins
	case ra.DivisionLosses != rb.DivisionLosses:
		return ra.DivisionLosses < rb.DivisionLosses
	case ra.DivisionTies != rb.DivisionTies:
		return ra.DivisionTies > rb.DivisionTies
	}
	return ra.PointsFor > rb.PointsFor
}

// MedianStandings ranks teams by their combined head-to-head plus median
// record and stores the order on the league.
func (c *Calculator) MedianStandings(week int) Table {
	teams := c.league.Teams(week)
	combined := make(map[string]*models.Record, len(teams))
	for _, t := range teams {
		combined[t.TeamID] = t.CombinedRecord()
	}
	sort.SliceStable(teams, func(i, j int) bool {
		return recordBefore(combined[teams[i].TeamID], combined[teams[j].TeamID])
	})
	c.league.CurrentMedianStandings = teams

	table := Table{
		Name: "Median Standings",
		Columns: []string{
			"Place", "Team", "Manager(s)", "Combined Record", "Median Record", "Median Points For",
			"Median Streak", "Median Points Against",
		},
	}
	for i, team := range teams {
		median := team.MedianRecord
		if median == nil {
			median = models.NewRecord(week, team.TeamID, team.Name)
		}
		table.Rows = append(table.Rows, Row{
			TeamID: team.TeamID,
			Cells: []string{
				itoa(i + 1),
				team.Name,
				team.ManagerString(),
				combined[team.TeamID].RecordWithPercentageString(),
				median.RecordString(),
				fmt.Sprintf("%.2f", median.PointsFor),
				median.StreakString(),
				fmt.Sprintf("%.2f", median.PointsAgainst),
			},
		})
	}
	return table
}

func rankOf(t *models.Team) int {
	if t.Record == nil {
		return int(^uint(0) >> 1)
	}
	return t.Record.Rank
}

func pointsFor(t *models.Team) float64 {
	if t.Record == nil {
		return 0
	}
	return t.Record.PointsFor
}
