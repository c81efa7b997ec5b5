package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stitts-dev/ffreport/internal/models"
)

func TestRollUpFeatures_WorstIsSingleHighest(t *testing.T) {
	team := &models.Team{
		TeamID: "1",
		Roster: []*models.Player{
			{
				PlayerID: "b", SelectedPosition: "WR",
				BadBoyCrime: "DUI", BadBoyCrimePoints: 4, BadBoyPoints: 4,
				HighRollerWorstViolation: "Taunting", HighRollerWorstViolationFine: 80, HighRollerFinesTotal: 80,
			},
			{
				PlayerID: "a", SelectedPosition: "RB",
				BadBoyCrime: "SPEEDING", BadBoyCrimePoints: 1, BadBoyPoints: 6,
				HighRollerWorstViolation: "Uniform", HighRollerWorstViolationFine: 50, HighRollerFinesTotal: 100,
			},
			{
				PlayerID: "c", SelectedPosition: models.PositionBN,
				BadBoyCrime: "MURDER", BadBoyCrimePoints: 10, BadBoyPoints: 10,
				HighRollerWorstViolation: "Fighting", HighRollerWorstViolationFine: 500, HighRollerFinesTotal: 500,
			},
		},
	}
	bench := map[string]bool{models.PositionBN: true}

	(&Builder{}).rollUpFeatures(team, bench)

	assert.Equal(t, 10, team.BadBoyPoints)
	assert.Equal(t, 2, team.NumOffenders)
	assert.Equal(t, "DUI", team.WorstOffense)
	assert.Equal(t, 4, team.WorstOffenseScore)

	assert.Equal(t, 180.0, team.FinesTotal)
	assert.Equal(t, 2, team.NumViolators)
	assert.Equal(t, "Taunting", team.WorstViolation)
	assert.Equal(t, 80.0, team.WorstViolationFine)

	// roster order does not change the worst picks
	team.Roster[0], team.Roster[1] = team.Roster[1], team.Roster[0]
	(&Builder{}).rollUpFeatures(team, bench)
	assert.Equal(t, "DUI", team.WorstOffense)
	assert.Equal(t, "Taunting", team.WorstViolation)
	assert.Equal(t, 80.0, team.WorstViolationFine)
}

func TestRollUpFeatures_DSTCountsRollUp(t *testing.T) {
	team := &models.Team{
		Roster: []*models.Player{
			{
				SelectedPosition: models.PositionDS, BadBoyCrime: "THEFT", BadBoyCrimePoints: 5,
				BadBoyPoints: 9, BadBoyNumOffenders: 3, BeefWeight: 535, BeefTabbu: 1.07,
			},
			{SelectedPosition: "QB", BeefWeight: 220, BeefTabbu: 0.44},
		},
	}
	(&Builder{}).rollUpFeatures(team, map[string]bool{})

	assert.Equal(t, 3, team.NumOffenders)
	assert.Equal(t, 5, team.WorstOffenseScore)
	assert.Equal(t, 755, team.TotalWeight)
	assert.InDelta(t, 1.51, team.Tabbu, 1e-9)
}
