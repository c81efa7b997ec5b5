package metrics

import (
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
)

// LuckResult is a team's hypothetical all-play record and luck percentage.
type LuckResult struct {
	LuckRecord *models.Record `json:"luck_record"`
	Luck       float64        `json:"luck"`
}

// CalculateLuck plays every team against every other team's score for the
// week. Luck is the share of hypothetical results that went the other way
// from the real one: positive when the real pairing was kind, negative when
// it was not, and zero when the team beat or lost to everyone. The weekly
// overall record and luck are written onto each team.
func (c *Calculator) CalculateLuck(week int, results []models.WeeklyResult) map[string]LuckResult {
	teams := c.league.Teams(week)
	out := make(map[string]LuckResult, len(teams))

	actual := make(map[string]models.Outcome, len(teams))
	for _, res := range results {
		if _, seen := actual[res.TeamID]; !seen {
			actual[res.TeamID] = res.Result
		}
	}

	opponents := len(teams) - 1
	for _, team := range teams {
		rec := models.NewRecord(week, team.TeamID, team.Name)
		for _, other := range teams {
			if other.TeamID == team.TeamID {
				continue
			}
			switch {
			case team.Points > other.Points:
				rec.AddWin()
			case team.Points < other.Points:
				rec.AddLoss()
			default:
				rec.AddTie()
			}
		}

		luck := 0.0
		result, played := actual[team.TeamID]
		if played && opponents > 0 && rec.Wins != 0 && rec.Losses != 0 {
			switch result {
			case models.Win, models.Tie:
				luck = float64(rec.Losses+rec.Ties) / float64(opponents)
			default:
				luck = -float64(rec.Wins+rec.Ties) / float64(opponents)
			}
		}
		luck *= 100

		team.WeeklyOverallRecord = rec
		team.Luck = luck
		out[team.TeamID] = LuckResult{LuckRecord: rec, Luck: luck}

		c.logger.WithFields(logrus.Fields{
			"team_id": team.TeamID,
			"week":    week,
			"luck":    luck,
		}).Debug("Luck calculated")
	}
	return out
}
