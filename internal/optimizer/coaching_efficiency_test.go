package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/ffreport/internal/models"
)

func flexLeague() *models.League {
	l := models.NewLeague("espn", "1", 2024)
	l.RosterPositionCounts = map[string]int{"QB": 1, "RB": 2, "WR": 2, "FLEX": 1, "BN": 3}
	return l
}

func player(id, pos, selected string, points float64) *models.Player {
	return &models.Player{
		PlayerID:          id,
		FullName:          id,
		PrimaryPosition:   pos,
		EligiblePositions: []string{pos},
		SelectedPosition:  selected,
		Points:            points,
	}
}

// QB 20, RB 15/14/13, WR 12/11/10, TE 9 with the TE started at FLEX.
func flexTeam() *models.Team {
	return &models.Team{
		TeamID: "1",
		Week:   1,
		Name:   "Alpha",
		Roster: []*models.Player{
			player("qb", "QB", "QB", 20),
			player("rb1", "RB", "RB", 15),
			player("rb2", "RB", "RB", 14),
			player("rb3", "RB", "BN", 13),
			player("wr1", "WR", "WR", 12),
			player("wr2", "WR", "WR", 11),
			player("wr3", "WR", "BN", 10),
			player("te", "TE", "FLEX", 9),
		},
	}
}

func TestBuildPositionSlots_ConcreteBeforeFlex(t *testing.T) {
	slots := BuildPositionSlots(flexLeague())
	require.Len(t, slots, 6, "bench slots are not lineup slots")

	names := make([]string, 0, len(slots))
	for _, s := range slots {
		names = append(names, s.String())
	}
	assert.Equal(t, []string{"QB#1", "RB#1", "RB#2", "WR#1", "WR#2", "FLEX#1"}, names)
	assert.True(t, slots[5].IsFlex)
	assert.ElementsMatch(t, []string{"FLEX", "RB", "TE", "WR"}, slots[5].AllowedPositions)
}

func TestCoachingEfficiency_OptimumUsesBestFlex(t *testing.T) {
	ce := NewCoachingEfficiency(flexLeague(), nil)
	team := flexTeam()

	result := ce.Calculate(team, nil, false)

	assert.Equal(t, 85.0, result.OptimalPoints, "QB 20 + RB 15,14 + WR 12,11 + FLEX RB3 13")
	assert.Equal(t, 81.0, result.ActualPoints)
	assert.False(t, result.Efficiency.DQ)
	assert.InDelta(t, 81.0/85.0*100, result.Efficiency.Value, 1e-9)

	slotByPlayer := slotsByPlayer(result.Lineup.Assignments)
	assert.Equal(t, "FLEX", slotByPlayer["rb3"])
	_, teStarted := slotByPlayer["te"]
	assert.False(t, teStarted)
}

func TestCoachingEfficiency_DisqualifiedStillReportsOptimal(t *testing.T) {
	ce := NewCoachingEfficiency(flexLeague(), nil)
	team := flexTeam()

	result := ce.Calculate(team, map[string]bool{"rb1": true}, true)

	assert.True(t, result.Efficiency.DQ)
	assert.Equal(t, models.DQInactivePlayer, result.Efficiency.Reason)
	assert.Equal(t, 85.0, result.OptimalPoints)
}

func TestCoachingEfficiency_InactiveOnBenchIsNotDQ(t *testing.T) {
	ce := NewCoachingEfficiency(flexLeague(), nil)
	result := ce.Calculate(flexTeam(), map[string]bool{"rb3": true}, true)
	assert.False(t, result.Efficiency.DQ)
}

func TestCoachingEfficiency_DQByStatusListAndLineup(t *testing.T) {
	t.Run("inactive status", func(t *testing.T) {
		team := flexTeam()
		team.Roster[0].Status = "O"
		result := NewCoachingEfficiency(flexLeague(), nil).Calculate(team, nil, true)
		assert.Equal(t, models.DQInactivePlayer, result.Efficiency.Reason)
	})

	t.Run("listed player by name", func(t *testing.T) {
		team := flexTeam()
		team.Roster[4].FullName = "Sitting Duck"
		result := NewCoachingEfficiency(flexLeague(), []string{"sitting duck"}).Calculate(team, nil, true)
		assert.Equal(t, models.DQListedPlayer, result.Efficiency.Reason)
	})

	t.Run("empty starting slot", func(t *testing.T) {
		team := flexTeam()
		team.Roster[7].SelectedPosition = "BN"
		result := NewCoachingEfficiency(flexLeague(), nil).Calculate(team, nil, true)
		assert.Equal(t, models.DQIncompleteLineup, result.Efficiency.Reason)
	})

	t.Run("not eligible when dq disabled", func(t *testing.T) {
		team := flexTeam()
		team.Roster[0].Status = "O"
		result := NewCoachingEfficiency(flexLeague(), nil).Calculate(team, nil, false)
		assert.False(t, result.Efficiency.DQ)
	})
}

func TestOptimalLineup_MultiPositionPlayerBeatsGreedy(t *testing.T) {
	l := models.NewLeague("espn", "1", 2024)
	l.RosterPositionCounts = map[string]int{"RB": 1, "WR": 1}

	swing := player("x", "RB", "RB", 10)
	swing.EligiblePositions = []string{"RB", "WR"}
	players := []*models.Player{
		swing,
		player("y", "WR", "WR", 8),
		player("z", "RB", "BN", 1),
	}

	// Filling WR first with the best eligible player leaves only 1 point at RB.
	lineup := OptimalLineup(players, BuildPositionSlots(l))
	assert.Equal(t, 18.0, lineup.Points)
	assert.Equal(t, "RB", slotsByPlayer(lineup.Assignments)["x"])
}

func TestOptimalLineup_SuperflexAndNegativePoints(t *testing.T) {
	l := models.NewLeague("sleeper", "1", 2024)
	l.RosterPositionCounts = map[string]int{"QB": 1, "SUPERFLEX": 1, "DEF": 1, "BN": 2}

	dst := player("dst", "DEF", "DEF", -3)
	players := []*models.Player{
		player("qb1", "QB", "QB", 25),
		player("qb2", "QB", "SUPERFLEX", 18.5),
		player("rb", "RB", "BN", 12),
		dst,
	}

	lineup := OptimalLineup(players, BuildPositionSlots(l))
	assert.Equal(t, 43.5, lineup.Points, "negative scorers are never required to start")
	assert.Len(t, lineup.Assignments, 2)
}

func TestCoachingEfficiency_IRExcludedAndBounds(t *testing.T) {
	team := flexTeam()
	team.Roster = append(team.Roster, player("hurt", "RB", "IR", 40))

	result := NewCoachingEfficiency(flexLeague(), nil).Calculate(team, nil, false)
	assert.Equal(t, 85.0, result.OptimalPoints, "IR players cannot be started")
	assert.GreaterOrEqual(t, result.OptimalPoints, result.ActualPoints)
	assert.True(t, result.Efficiency.Value >= 0 && result.Efficiency.Value <= 100)
}

func TestCoachingEfficiency_ZeroOptimal(t *testing.T) {
	team := &models.Team{TeamID: "9", Roster: []*models.Player{player("qb", "QB", "QB", 0)}}
	result := NewCoachingEfficiency(flexLeague(), nil).Calculate(team, nil, false)
	assert.Equal(t, 0.0, result.OptimalPoints)
	assert.Equal(t, 0.0, result.Efficiency.Value)
	assert.False(t, result.Efficiency.DQ)
}

func TestHungarian_MinimumCost(t *testing.T) {
	cost := [][]float64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	}
	assert.Equal(t, []int{1, 0, 2}, hungarian(cost))
}

func slotsByPlayer(assignments []SlotAssignment) map[string]string {
	result := make(map[string]string)
	for _, a := range assignments {
		result[a.PlayerID] = a.Slot.SlotName
	}
	return result
}
