package metrics

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
)

// Table names as handed to the renderer.
const (
	ScoreTableName              = "Team Score Rankings"
	CoachingEfficiencyTableName = "Team Coaching Efficiency Rankings"
	LuckTableName               = "Team Luck Rankings"
	OptimalTableName            = "Team Optimal Score Rankings"
	ZScoreTableName             = "Team Z-Score Rankings"
	BadBoyTableName             = "Bad Boy Rankings"
	BeefTableName               = "Beef Rankings"
	HighRollerTableName         = "High Roller Rankings"
	PowerRankingTableName       = "Power Rankings"
)

var rankedColumns = []string{"Place", "Team", "Manager(s)"}

func columns(extra ...string) []string {
	return append(append([]string(nil), rankedColumns...), extra...)
}

func baseEntry(team *models.Team) entry {
	return entry{teamID: team.TeamID, name: team.Name, managers: team.ManagerString()}
}

// ScoreRankings ranks teams by points. Ties break on bench points when
// breakTies is set.
func (c *Calculator) ScoreRankings(week int, breakTies bool) Table {
	var entries []entry
	for _, team := range c.league.Teams(week) {
		e := baseEntry(team)
		e.value = team.Points
		e.display = fmt.Sprintf("%.2f", team.Points)
		e.extra = []string{fmt.Sprintf("%.2f", team.BenchPoints)}
		e.breakKeys = []float64{team.BenchPoints}
		entries = append(entries, e)
	}
	rows, ties := rankEntries(entries, rankOptions{breakTies: breakTies})
	return Table{Name: ScoreTableName, Columns: columns("Points", "Bench Points"), Rows: rows, NumTies: ties}
}

// CoachingEfficiencyRankings ranks teams by coaching efficiency with DQ
// rows last. When breakTies is set and prior weeks exist, ties break on the
// number of starters who beat their prior average, then on the summed
// percentage by which they beat it. Without prior weeks tied rows share a
// starred place.
func (c *Calculator) CoachingEfficiencyRankings(week int, breakTies bool) Table {
	canBreak := breakTies && week > c.league.StartWeek
	if breakTies && !canBreak {
		c.logger.WithField("week", week).Debug("No prior weeks for coaching efficiency tie break")
	}

	var entries []entry
	for _, team := range c.league.Teams(week) {
		e := baseEntry(team)
		e.value = team.CoachingEfficiency.Value
		e.dq = team.CoachingEfficiency.DQ
		e.display = team.CoachingEfficiency.String()
		if canBreak {
			e.breakKeys = c.starterExceedanceKeys(week, team)
		}
		entries = append(entries, e)
	}
	rows, ties := rankEntries(entries, rankOptions{breakTies: canBreak})
	return Table{Name: CoachingEfficiencyTableName, Columns: columns("Coaching Efficiency"), Rows: rows, NumTies: ties}
}

// starterExceedanceKeys counts starters whose points this week beat their
// average over the prior weeks and sums the percentage by which they did.
// A player with a zero or missing prior average adds 100 when exceeding it.
func (c *Calculator) starterExceedanceKeys(week int, team *models.Team) []float64 {
	count, pct := 0.0, 0.0
	for _, p := range team.Starters(c.league.BenchSet()) {
		avg := c.priorAverage(week, p.PlayerID)
		if p.Points <= avg {
			continue
		}
		count++
		if avg > 0 {
			pct += (p.Points - avg) / avg * 100
		} else {
			pct += 100
		}
	}
	return []float64{count, models.Round(pct, 2)}
}

func (c *Calculator) priorAverage(week int, playerID string) float64 {
	var sum float64
	var n int
	for w := c.league.StartWeek; w < week; w++ {
		if p, ok := c.league.PlayersByWeek[w][playerID]; ok {
			sum += p.Points
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// LuckRankings ranks teams by luck. Ties share a starred place.
func (c *Calculator) LuckRankings(week int) Table {
	var entries []entry
	for _, team := range c.league.Teams(week) {
		e := baseEntry(team)
		e.value = team.Luck
		e.display = fmt.Sprintf("%.2f%%", team.Luck)
		weekly := ""
		if team.WeeklyOverallRecord != nil {
			weekly = team.WeeklyOverallRecord.RecordString()
		}
		e.extra = []string{weekly}
		entries = append(entries, e)
	}
	rows, ties := rankEntries(entries, rankOptions{})
	return Table{Name: LuckTableName, Columns: columns("Luck", "Weekly Record"), Rows: rows, NumTies: ties}
}

// OptimalRankings ranks teams by optimal lineup points.
func (c *Calculator) OptimalRankings(week int) Table {
	var entries []entry
	for _, team := range c.league.Teams(week) {
		e := baseEntry(team)
		e.value = team.OptimalPoints
		e.display = fmt.Sprintf("%.2f", team.OptimalPoints)
		entries = append(entries, e)
	}
	rows, ties := rankEntries(entries, rankOptions{})
	return Table{Name: OptimalTableName, Columns: columns("Optimal Points"), Rows: rows, NumTies: ties}
}

// BadBoyRankings ranks teams by bad boy points. Only non-zero rows are
// kept and only non-zero groups count as ties.
func (c *Calculator) BadBoyRankings(week int) Table {
	var entries []entry
	for _, team := range c.league.Teams(week) {
		e := baseEntry(team)
		e.value = float64(team.BadBoyPoints)
		e.display = itoa(team.BadBoyPoints)
		e.extra = []string{team.WorstOffense, itoa(team.NumOffenders)}
		entries = append(entries, e)
	}
	rows, ties := rankEntries(entries, rankOptions{countable: positive})
	table := Table{
		Name:    BadBoyTableName,
		Columns: columns("Bad Boy Points", "Worst Offense", "# Offenders"),
		Rows:    rows,
		NumTies: ties,
	}
	table.Filter(func(r Row) bool { return r.Cells[3] != "0" })
	return table
}

// BeefRankings ranks teams by tabbu.
func (c *Calculator) BeefRankings(week int) Table {
	var entries []entry
	for _, team := range c.league.Teams(week) {
		e := baseEntry(team)
		e.value = team.Tabbu
		e.display = fmt.Sprintf("%.3f", team.Tabbu)
		entries = append(entries, e)
	}
	rows, ties := rankEntries(entries, rankOptions{})
	return Table{Name: BeefTableName, Columns: columns("TABBU(s)"), Rows: rows, NumTies: ties}
}

// HighRollerRankings ranks teams by total fines. Only non-zero rows are kept
// and only non-zero groups count as ties.
func (c *Calculator) HighRollerRankings(week int) Table {
	var entries []entry
	for _, team := range c.league.Teams(week) {
		e := baseEntry(team)
		e.value = team.FinesTotal
		e.display = fmt.Sprintf("$%.2f", team.FinesTotal)
		e.extra = []string{team.WorstViolation, fmt.Sprintf("$%.2f", team.WorstViolationFine)}
		entries = append(entries, e)
	}
	rows, ties := rankEntries(entries, rankOptions{countable: positive})
	table := Table{
		Name:    HighRollerTableName,
		Columns: columns("Fines Total", "Worst Violation", "Worst Violation Fine"),
		Rows:    rows,
		NumTies: ties,
	}
	table.Filter(func(r Row) bool { return r.Cells[3] != "$0.00" })
	return table
}

// ZScoreRankings ranks teams by z-score; a nil score renders as "N/A" and
// sorts last. Returns false when every score is nil so the table is omitted.
func (c *Calculator) ZScoreRankings(week int, scores map[string]*float64) (Table, bool) {
	var entries []entry
	scored := false
	for _, team := range c.league.Teams(week) {
		e := baseEntry(team)
		if z := scores[team.TeamID]; z != nil {
			scored = true
			e.value = *z
			e.display = fmt.Sprintf("%.2f", *z)
		} else {
			e.value = math.Inf(-1)
			e.display = "N/A"
		}
		entries = append(entries, e)
	}
	if !scored {
		return Table{Name: ZScoreTableName}, false
	}
	rows, ties := rankEntries(entries, rankOptions{
		countable: func(e entry) bool { return e.display != "N/A" },
	})
	return Table{Name: ZScoreTableName, Columns: columns("Z-Score"), Rows: rows, NumTies: ties}, true
}

// PowerRankings averages each team's row position in the score, coaching
// efficiency and luck tables and floors the result. Lower is better.
// Returns the table and the power rank per team.
func (c *Calculator) PowerRankings(week int, score, efficiency, luck Table) (Table, map[string]float64) {
	sp, cp, lp := score.Positions(), efficiency.Positions(), luck.Positions()
	power := make(map[string]float64)

	var entries []entry
	for _, team := range c.league.Teams(week) {
		rank := math.Floor(float64(sp[team.TeamID]+cp[team.TeamID]+lp[team.TeamID]) / 3.0)
		power[team.TeamID] = rank
		e := baseEntry(team)
		e.value = rank
		e.display = fmt.Sprintf("%.0f", rank)
		entries = append(entries, e)

		c.logger.WithFields(logrus.Fields{
			"team_id": team.TeamID,
			"week":    week,
			"power":   rank,
		}).Debug("Power rank calculated")
	}
	rows, ties := rankEntries(entries, rankOptions{ascending: true})
	return Table{Name: PowerRankingTableName, Columns: columns("Power Rank"), Rows: rows, NumTies: ties}, power
}

func positive(e entry) bool {
	return e.value > 0
}
