package report

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
)

const lineupEpsilon = 0.01

// addTeamStats applies the feature stores to the team's starters, rolls the
// results up to the team, checks the starting lineup against the team
// score and scores coaching efficiency. It returns a warning when the
// lineup check fails.
func (b *Builder) addTeamStats(week int, team *models.Team, inactive map[string]bool) string {
	bench := b.league.BenchSet()
	log := b.logger.WithFields(logrus.Fields{"week": week, "team_id": team.TeamID})

	for _, p := range team.Roster {
		b.addPlayerStats(p, bench)
	}

	starters, benchPoints := 0.0, 0.0
	team.PositionsFilledActive = team.PositionsFilledActive[:0]
	for _, p := range team.Roster {
		if bench[p.SelectedPosition] {
			benchPoints += p.Points
			continue
		}
		starters += p.Points
		team.PositionsFilledActive = append(team.PositionsFilledActive, p.SelectedPosition)
	}
	team.BenchPoints = models.Round(benchPoints, 2)

	var warning string
	expected := models.Round(starters, 2) + team.HomeFieldAdvantagePoints
	if math.Abs(models.Round(team.Points, 2)-expected) > lineupEpsilon {
		warning = fmt.Sprintf("team %q week %d points (%.2f) differ from starting lineup points (%.2f)",
			team.Name, week, team.Points, expected)
		log.WithFields(logrus.Fields{
			"points":   team.Points,
			"starters": expected,
		}).Warn("Team points do not match the starting lineup; check the data")
	}

	b.rollUpFeatures(team, bench)

	result := b.efficiency.Calculate(team, inactive, b.settings.DQCoachingEfficiency)
	team.CoachingEfficiency = result.Efficiency
	team.OptimalPoints = result.OptimalPoints
	if b.settings.DQCoachingEfficiency && week == b.league.WeekForReport && b.disqualifiedTeam(team.Name) {
		log.Info("Team manually disqualified from coaching efficiency")
		team.CoachingEfficiency = models.Disqualified(models.DQManual)
	}
	return warning
}

// addPlayerStats resets the player's feature fields and fills them for
// starters.
func (b *Builder) addPlayerStats(p *models.Player, bench map[string]bool) {
	p.BadBoyCrime, p.BadBoyCrimePoints, p.BadBoyPoints, p.BadBoyNumOffenders = "", 0, 0, 0
	p.BeefWeight, p.BeefTabbu = 0, 0
	p.HighRollerWorstViolation, p.HighRollerWorstViolationFine = "", 0
	p.HighRollerFinesTotal, p.HighRollerNumViolators = 0, 0
	if bench[p.SelectedPosition] {
		return
	}

	first, last, team, pos := p.FirstName, p.LastName, p.NFLTeamAbbr, p.PrimaryPosition
	if b.badBoy != nil {
		p.BadBoyCrime = b.badBoy.PlayerCrime(first, last, team, pos)
		p.BadBoyCrimePoints = b.badBoy.PlayerCrimePoints(first, last, team, pos)
		p.BadBoyPoints = b.badBoy.PlayerPoints(first, last, team, pos)
		p.BadBoyNumOffenders = b.badBoy.PlayerNumOffenders(first, last, team, pos)
	}
	if b.beef != nil {
		p.BeefWeight = b.beef.PlayerWeight(first, last, team, pos)
		p.BeefTabbu = b.beef.PlayerTabbu(first, last, team, pos)
	}
	if b.highRoller != nil {
		p.HighRollerWorstViolation = b.highRoller.PlayerWorstViolation(first, last, team, pos)
		p.HighRollerWorstViolationFine = b.highRoller.PlayerWorstViolationFine(first, last, team, pos)
		p.HighRollerFinesTotal = b.highRoller.PlayerFinesTotal(first, last, team, pos)
		p.HighRollerNumViolators = b.highRoller.PlayerNumViolators(first, last, team, pos)
	}
}

// rollUpFeatures totals starter features onto the team. A D/ST starter
// counts its roll-up's offenders or violators; anyone else counts as one.
// The worst offense and worst violation are the single highest-scoring
// ones on the lineup.
func (b *Builder) rollUpFeatures(team *models.Team, bench map[string]bool) {
	team.BadBoyPoints, team.WorstOffense, team.WorstOffenseScore, team.NumOffenders = 0, "", 0, 0
	team.TotalWeight, team.Tabbu = 0, 0
	team.FinesTotal, team.WorstViolation, team.WorstViolationFine, team.NumViolators = 0, "", 0, 0

	for _, p := range team.Roster {
		if bench[p.SelectedPosition] {
			continue
		}
		dst := p.SelectedPosition == models.PositionDS

		if p.BadBoyPoints > 0 {
			team.BadBoyPoints += p.BadBoyPoints
			if dst {
				team.NumOffenders += p.BadBoyNumOffenders
			} else {
				team.NumOffenders++
			}
			if p.BadBoyCrimePoints > team.WorstOffenseScore {
				team.WorstOffense = p.BadBoyCrime
				team.WorstOffenseScore = p.BadBoyCrimePoints
			}
		}

		team.TotalWeight += p.BeefWeight
		team.Tabbu += p.BeefTabbu

		if p.HighRollerFinesTotal > 0 {
			team.FinesTotal += p.HighRollerFinesTotal
			if dst {
				team.NumViolators += p.HighRollerNumViolators
			} else {
				team.NumViolators++
			}
			if p.HighRollerWorstViolationFine > team.WorstViolationFine {
				team.WorstViolation = p.HighRollerWorstViolation
				team.WorstViolationFine = p.HighRollerWorstViolationFine
			}
		}
	}
	team.Tabbu = models.Round(team.Tabbu, 3)
}
