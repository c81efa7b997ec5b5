package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/ffreport/internal/models"
)

type teamSpec struct {
	id, name, division string
	points             float64
}

// newLeague builds a league whose week holds the given teams and head to
// head pairs; winners follow points.
func newLeague(week int, teams []teamSpec, pairs [][2]string) *models.League {
	l := models.NewLeague("sleeper", "42", 2024)
	l.StartWeek = 1
	l.WeekForReport = week
	addWeek(l, week, teams, pairs)
	return l
}

func addWeek(l *models.League, week int, teams []teamSpec, pairs [][2]string) {
	byID := make(map[string]*models.Team, len(teams))
	for _, s := range teams {
		byID[s.id] = &models.Team{
			TeamID:   s.id,
			Week:     week,
			Name:     s.name,
			Division: s.division,
			Points:   s.points,
			Managers: []models.Manager{{Name: s.name + " Owner"}},
		}
	}
	l.TeamsByWeek[week] = byID

	var matchups []*models.Matchup
	for _, p := range pairs {
		m := &models.Matchup{Week: week, TeamIDs: p, Complete: true}
		a, b := byID[p[0]].Points, byID[p[1]].Points
		switch {
		case a > b:
			m.SetWinner(p[0])
		case b > a:
			m.SetWinner(p[1])
		default:
			m.SetTied(true)
		}
		matchups = append(matchups, m)
	}
	l.MatchupsByWeek[week] = matchups
}

func runRecords(t *testing.T, c *Calculator, l *models.League, week int) []models.WeeklyResult {
	t.Helper()
	results, err := l.CustomWeeklyMatchups(week)
	require.NoError(t, err)
	c.CalculateRecords(week, results)
	return results
}

func TestTwoTeamTie(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha", points: 100},
		{id: "2", name: "Bravo", points: 100},
	}, [][2]string{{"1", "2"}})
	c := NewCalculator(l)

	results := runRecords(t, c, l, 1)
	for _, id := range []string{"1", "2"} {
		rec := l.Team(1, id).Record
		require.NotNil(t, rec)
		assert.Equal(t, "0-0-1", rec.RecordString())
	}

	standings := c.CurrentStandings(1)
	require.Len(t, standings, 2)
	assert.Equal(t, "1", standings[0].TeamID)
	assert.Equal(t, standings, l.CurrentStandings)

	luck := c.CalculateLuck(1, results)
	assert.Equal(t, 0.0, luck["1"].Luck)
	assert.Equal(t, 0.0, luck["2"].Luck)
}

func TestThreeTeamRoundRobin(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "a", name: "A", points: 120},
		{id: "b", name: "B", points: 100},
		{id: "c", name: "C", points: 80},
	}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}})
	c := NewCalculator(l)

	runRecords(t, c, l, 1)

	assert.Equal(t, "2-0", l.Team(1, "a").Record.RecordString())
	assert.Equal(t, "1-1", l.Team(1, "b").Record.RecordString())
	assert.Equal(t, "0-2", l.Team(1, "c").Record.RecordString())

	ordered := l.RecordsByWeek[1]
	require.Len(t, ordered, 3)
	assert.Equal(t, "a", ordered[0].TeamID)
	assert.Equal(t, 1, ordered[0].Rank)
	assert.Equal(t, 3, l.Team(1, "c").Record.Rank)
}

func TestRecordsCarryAcrossWeeks(t *testing.T) {
	teams := []teamSpec{
		{id: "1", name: "Alpha", points: 110},
		{id: "2", name: "Bravo", points: 90},
	}
	l := newLeague(1, teams, [][2]string{{"1", "2"}})
	teams[0].points, teams[1].points = 80, 95
	addWeek(l, 2, teams, [][2]string{{"1", "2"}})
	l.WeekForReport = 2
	c := NewCalculator(l)

	runRecords(t, c, l, 1)
	runRecords(t, c, l, 2)

	for _, id := range []string{"1", "2"} {
		prev := l.RecordFor(1, id)
		cur := l.RecordFor(2, id)
		require.NotNil(t, prev)
		require.NotNil(t, cur)
		assert.Equal(t, prev.GamesPlayed()+1, cur.GamesPlayed())
	}
	alpha := l.Team(2, "1").Record
	assert.Equal(t, "1-1", alpha.RecordString())
	assert.Equal(t, 190.0, alpha.PointsFor)
	assert.Equal(t, "L-1", alpha.StreakString())
	// Week one's record is not mutated by week two.
	assert.Equal(t, "1-0", l.RecordFor(1, "1").RecordString())
}

func TestLuckSign(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha", points: 100},
		{id: "2", name: "Bravo", points: 90},
		{id: "3", name: "Charlie", points: 80},
		{id: "4", name: "Delta", points: 70},
	}, [][2]string{{"1", "2"}, {"3", "4"}})
	c := NewCalculator(l)

	results := runRecords(t, c, l, 1)
	luck := c.CalculateLuck(1, results)

	assert.Equal(t, 0.0, luck["1"].Luck, "undefeated all-play")
	assert.InDelta(t, -66.67, luck["2"].Luck, 0.01)
	assert.InDelta(t, 66.67, luck["3"].Luck, 0.01)
	assert.Equal(t, 0.0, luck["4"].Luck, "winless all-play")

	for _, res := range results {
		switch res.Result {
		case models.Win:
			assert.GreaterOrEqual(t, luck[res.TeamID].Luck, 0.0)
		case models.Loss:
			assert.LessOrEqual(t, luck[res.TeamID].Luck, 0.0)
		}
	}
	assert.Equal(t, "2-1", l.Team(1, "2").WeeklyOverallRecord.RecordString())
}

func TestMedianRecords(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha", points: 100},
		{id: "2", name: "Bravo", points: 90},
		{id: "3", name: "Charlie", points: 80},
		{id: "4", name: "Delta", points: 70},
	}, [][2]string{{"1", "2"}, {"3", "4"}})
	c := NewCalculator(l)

	median, records := c.CalculateMedianRecords(1)
	assert.Equal(t, 85.0, median)
	assert.Equal(t, 85.0, l.MedianScoreByWeek[1])
	assert.Equal(t, "1-0", records["1"].RecordString())
	assert.Equal(t, 15.0, records["1"].PointsFor)
	assert.Equal(t, 85.0, records["1"].PointsAgainst)
	assert.Equal(t, "0-1", records["4"].RecordString())

	runRecords(t, c, l, 1)
	table := c.MedianStandings(1)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, "1", table.Rows[0].TeamID)
	assert.Equal(t, "2-0 (1.000)", table.Rows[0].Cells[3])
}

func TestScoreRankings_Ties(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha", points: 100},
		{id: "2", name: "Bravo", points: 100},
		{id: "3", name: "Charlie", points: 90},
	}, nil)
	l.Team(1, "1").BenchPoints = 5
	l.Team(1, "2").BenchPoints = 10
	c := NewCalculator(l)

	table := c.ScoreRankings(1, false)
	assert.Equal(t, 1, table.NumTies)
	assert.Equal(t, "1*", table.Rows[0].Cells[0])
	assert.Equal(t, "1*", table.Rows[1].Cells[0])
	assert.Equal(t, "3", table.Rows[2].Cells[0])
	assert.Equal(t, 2, table.StarredRows())

	broken := c.ScoreRankings(1, true)
	assert.Equal(t, 1, broken.NumTies)
	assert.Equal(t, "2", broken.Rows[0].TeamID)
	assert.Equal(t, []string{"1", "2", "3"}, []string{broken.Rows[0].Cells[0], broken.Rows[1].Cells[0], broken.Rows[2].Cells[0]})
	assert.Equal(t, 0, broken.StarredRows())
}

func TestCoachingEfficiencyRankings_DQSinks(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha"},
		{id: "2", name: "Bravo"},
		{id: "3", name: "Charlie"},
		{id: "4", name: "Delta"},
	}, nil)
	l.Team(1, "1").CoachingEfficiency = models.Disqualified(models.DQInactivePlayer)
	l.Team(1, "2").CoachingEfficiency = models.EfficiencyOf(90)
	l.Team(1, "3").CoachingEfficiency = models.Disqualified(models.DQManual)
	l.Team(1, "4").CoachingEfficiency = models.EfficiencyOf(95.5)
	c := NewCalculator(l)

	table := c.CoachingEfficiencyRankings(1, true)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, "4", table.Rows[0].TeamID)
	assert.Equal(t, "95.50%", table.Rows[0].Cells[3])
	assert.Equal(t, "DQ", table.Rows[2].Cells[3])
	assert.Equal(t, "DQ", table.Rows[3].Cells[3])
	assert.Equal(t, 0, table.NumTies)
	assert.Equal(t, 0, table.StarredRows())
}

func TestCoachingEfficiencyRankings_BreakOnPriorAverages(t *testing.T) {
	teams := []teamSpec{{id: "1", name: "Alpha"}, {id: "2", name: "Bravo"}}
	l := newLeague(1, teams, nil)
	addWeek(l, 2, teams, nil)
	l.WeekForReport = 2

	l.PlayersByWeek[1] = map[string]*models.Player{
		"p1": {PlayerID: "p1", Points: 10},
		"p2": {PlayerID: "p2", Points: 10},
	}
	p1 := &models.Player{PlayerID: "p1", Points: 20, SelectedPosition: "QB"}
	p2 := &models.Player{PlayerID: "p2", Points: 5, SelectedPosition: "QB"}
	l.PlayersByWeek[2] = map[string]*models.Player{"p1": p1, "p2": p2}
	l.Team(2, "1").Roster = []*models.Player{p2}
	l.Team(2, "2").Roster = []*models.Player{p1}
	l.Team(2, "1").CoachingEfficiency = models.EfficiencyOf(100)
	l.Team(2, "2").CoachingEfficiency = models.EfficiencyOf(100)
	c := NewCalculator(l)

	starred := c.CoachingEfficiencyRankings(2, false)
	assert.Equal(t, 2, starred.StarredRows())

	broken := c.CoachingEfficiencyRankings(2, true)
	assert.Equal(t, 1, broken.NumTies)
	assert.Equal(t, "2", broken.Rows[0].TeamID)
	assert.Equal(t, "1", broken.Rows[0].Cells[0])
	assert.Equal(t, "2", broken.Rows[1].Cells[0])

	// Without prior weeks the tie stays starred.
	first := newLeague(1, teams, nil)
	first.Team(1, "1").CoachingEfficiency = models.EfficiencyOf(100)
	first.Team(1, "2").CoachingEfficiency = models.EfficiencyOf(100)
	assert.Equal(t, 2, NewCalculator(first).CoachingEfficiencyRankings(1, true).StarredRows())
}

func TestBadBoyRankings_ZeroRowsDropped(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha"},
		{id: "2", name: "Bravo"},
		{id: "3", name: "Charlie"},
	}, nil)
	l.Team(1, "3").BadBoyPoints = 7
	l.Team(1, "3").WorstOffense = "DUI"
	l.Team(1, "3").NumOffenders = 1
	c := NewCalculator(l)

	table := c.BadBoyRankings(1)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"1", "Charlie", "Charlie O.", "7", "DUI", "1"}, table.Rows[0].Cells)
	assert.Equal(t, 0, table.NumTies)
}

func TestStarredRowsMatchTieGroups(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "A"}, {id: "2", name: "B"}, {id: "3", name: "C"},
		{id: "4", name: "D"}, {id: "5", name: "E"}, {id: "6", name: "F"},
	}, nil)
	for id, luck := range map[string]float64{"1": 50, "2": 50, "3": 10, "4": -20, "5": -20, "6": -20} {
		l.Team(1, id).Luck = luck
	}
	table := NewCalculator(l).LuckRankings(1)

	assert.Equal(t, 5, table.StarredRows())
	assert.Equal(t, 1+3, table.NumTies)
	assert.Equal(t, "4*", table.Rows[3].Cells[0])
	assert.Equal(t, "4*", table.Rows[5].Cells[0])
}

func TestPowerRankings(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha", points: 100},
		{id: "2", name: "Bravo", points: 90},
		{id: "3", name: "Charlie", points: 80},
	}, nil)
	l.Team(1, "1").CoachingEfficiency = models.EfficiencyOf(70)
	l.Team(1, "2").CoachingEfficiency = models.EfficiencyOf(90)
	l.Team(1, "3").CoachingEfficiency = models.EfficiencyOf(80)
	l.Team(1, "1").Luck = 10
	l.Team(1, "2").Luck = 30
	l.Team(1, "3").Luck = 20
	c := NewCalculator(l)

	table, power := c.PowerRankings(1, c.ScoreRankings(1, false), c.CoachingEfficiencyRankings(1, false), c.LuckRankings(1))

	// Alpha: (1+3+3)/3 = 2.33, Bravo: (2+1+1)/3 = 1.33, Charlie: (3+2+2)/3 = 2.33
	assert.Equal(t, 2.0, power["1"])
	assert.Equal(t, 1.0, power["2"])
	assert.Equal(t, 2.0, power["3"])
	assert.Equal(t, "2", table.Rows[0].TeamID)
	assert.Equal(t, "2*", table.Rows[1].Cells[0])
	assert.Equal(t, 1, table.NumTies)
}

func TestZScores(t *testing.T) {
	teams := []teamSpec{{id: "1", name: "Alpha", points: 100}, {id: "2", name: "Bravo", points: 90}}
	l := newLeague(1, teams, nil)
	teams[0].points, teams[1].points = 80, 90
	addWeek(l, 2, teams, nil)
	teams[0].points, teams[1].points = 110, 70
	addWeek(l, 3, teams, nil)
	c := NewCalculator(l)

	early := c.ZScores(2)
	assert.Nil(t, early["1"])
	_, ok := c.ZScoreRankings(2, early)
	assert.False(t, ok)

	scores := c.ZScores(3)
	require.NotNil(t, scores["1"])
	assert.InDelta(t, 2.0, *scores["1"], 1e-9)
	require.NotNil(t, scores["2"])
	assert.Equal(t, 0.0, *scores["2"], "zero stddev")

	table, ok := c.ZScoreRankings(3, scores)
	require.True(t, ok)
	assert.Equal(t, "2.00", table.Rows[0].Cells[3])
}

func TestAddSeasonAverages(t *testing.T) {
	table := Table{
		Name:    CoachingEfficiencyTableName,
		Columns: columns("Coaching Efficiency"),
		Rows: []Row{
			{TeamID: "1", Cells: []string{"1", "A", "a", "90.00%"}},
			{TeamID: "2", Cells: []string{"2", "B", "b", "85.00%"}},
			{TeamID: "3", Cells: []string{"3", "C", "c", "70.00%"}},
			{TeamID: "4", Cells: []string{"4", "D", "d", "DQ"}},
		},
	}
	series := SeasonSeries{}
	series.AppendValue("1", 80)
	series.Append("1", nil)
	series.AppendValue("1", 90)
	series.AppendValue("2", 85)
	series.AppendValue("2", 85)
	series.AppendValue("3", 70)
	series.Append("4", nil)

	ties := AddSeasonAverages(&table, series, SeasonAverageOptions{Column: "Season Avg.", Percent: true})

	assert.Equal(t, 1, ties)
	assert.Equal(t, "Season Avg.", table.Columns[len(table.Columns)-1])
	assert.Equal(t, "85.00% (1*)", table.Rows[0].Cells[4])
	assert.Equal(t, "85.00% (1*)", table.Rows[1].Cells[4])
	assert.Equal(t, "70.00% (3)", table.Rows[2].Cells[4])
	assert.Equal(t, "N/A", table.Rows[3].Cells[4])
}

func TestDivisionStandings(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha", division: "a", points: 120},
		{id: "2", name: "Bravo", division: "a", points: 100},
		{id: "3", name: "Charlie", division: "b", points: 80},
		{id: "4", name: "Delta", division: "b", points: 90},
	}, [][2]string{{"1", "3"}, {"2", "4"}})
	l.HasDivisions = true
	l.Divisions = map[string]string{"a": "East", "b": "West"}
	c := NewCalculator(l)
	runRecords(t, c, l, 1)

	ds := c.DivisionStandings(1)
	require.Len(t, ds.Divisions, 2)
	assert.Equal(t, "East", ds.Divisions[0].Name)
	assert.Equal(t, "Alpha†", ds.Divisions[0].Rows[0].Cells[1])
	assert.Equal(t, "Bravo", ds.Divisions[0].Rows[1].Cells[1])
	assert.Equal(t, "Delta†", ds.Divisions[1].Rows[0].Cells[1])

	require.Len(t, ds.Overall.Rows, 4)
	assert.Equal(t, "1", ds.Overall.Rows[0].TeamID)
	assert.Equal(t, "Charlie", ds.Overall.Rows[3].Cells[1])
}

func TestStandingsTable_WaiverColumn(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha", points: 120},
		{id: "2", name: "Bravo", points: 100},
	}, [][2]string{{"1", "2"}})
	l.IsFAAB = true
	l.Team(1, "1").FAAB = 87
	c := NewCalculator(l)
	runRecords(t, c, l, 1)

	table := c.StandingsTable(1)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "Alpha", "Alpha O.", "1-0 (1.000)", "120.00", "100.00", "W-1", "$87", "0", "0"}, table.Rows[0].Cells)
}

func TestPointsByPosition(t *testing.T) {
	l := newLeague(1, []teamSpec{{id: "1", name: "Alpha"}}, nil)
	l.RosterPositionCounts = map[string]int{"QB": 1, "RB": 1, "WR": 1, models.Flex: 1, models.PositionBN: 2}
	l.Team(1, "1").Roster = []*models.Player{
		{PlayerID: "qb", PrimaryPosition: "QB", SelectedPosition: "QB", Points: 20},
		{PlayerID: "rb", PrimaryPosition: "RB", SelectedPosition: "RB", Points: 10},
		{PlayerID: "rb2", PrimaryPosition: "RB", SelectedPosition: models.Flex, Points: 7.5},
		{PlayerID: "wr", PrimaryPosition: "WR", SelectedPosition: "WR", Points: 12},
		{PlayerID: "wr2", PrimaryPosition: "WR", SelectedPosition: models.PositionBN, Points: 30},
	}
	c := NewCalculator(l)

	week := c.PointsByPosition(1)
	assert.Equal(t, []PositionPoints{
		{Position: "QB", Points: 20},
		{Position: "RB", Points: 17.5},
		{Position: "WR", Points: 12},
	}, week["1"])

	season := SeasonPointsByPosition([]map[string][]PositionPoints{
		week,
		{"1": {{Position: "QB", Points: 10}, {Position: "RB", Points: 2.5}, {Position: "WR", Points: 8}}},
	})
	assert.Equal(t, []PositionPoints{
		{Position: "QB", Points: 15},
		{Position: "RB", Points: 10},
		{Position: "WR", Points: 10},
	}, season["1"])
}

func TestHighlights(t *testing.T) {
	l := newLeague(1, []teamSpec{
		{id: "1", name: "Alpha", points: 100},
		{id: "2", name: "Bravo", points: 140},
		{id: "3", name: "Charlie", points: 60},
	}, nil)
	l.Team(1, "1").CoachingEfficiency = models.EfficiencyOf(99)
	l.Team(1, "2").CoachingEfficiency = models.Disqualified(models.DQListedPlayer)
	l.Team(1, "3").CoachingEfficiency = models.EfficiencyOf(50)

	h := NewCalculator(l).Highlights(1)
	assert.Equal(t, "2", h.TopScorer.TeamID)
	assert.Equal(t, "140.00", h.TopScorer.Value)
	assert.Equal(t, "3", h.LowScorer.TeamID)
	assert.Equal(t, "1", h.HighestCoachingEfficiency.TeamID)
}
