package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/ffreport/internal/models"
)

const minZScoreWeeks = 3

// ZScores scores each team's points this week against its own earlier
// weeks: (current - mean) / population stddev, 0 when the stddev is 0.
// Every team is nil until at least three weeks have been played.
func (c *Calculator) ZScores(week int) map[string]*float64 {
	teams := c.league.Teams(week)
	out := make(map[string]*float64, len(teams))
	enough := week-c.league.StartWeek+1 >= minZScoreWeeks

	for _, team := range teams {
		if !enough {
			out[team.TeamID] = nil
			continue
		}
		var prior []float64
		for w := c.league.StartWeek; w < week; w++ {
			if t := c.league.Team(w, team.TeamID); t != nil {
				prior = append(prior, t.Points)
			}
		}
		z := zScore(team.Points, prior)
		out[team.TeamID] = &z
	}
	return out
}

func zScore(current float64, prior []float64) float64 {
	if len(prior) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(prior, nil)
	if std == 0 {
		return 0
	}
	return models.Round((current-mean)/std, 2)
}
