package metrics

import (
	"fmt"

	"github.com/stitts-dev/ffreport/internal/models"
)

// Highlight names a team that led a weekly category.
type Highlight struct {
	TeamID string `json:"team_id"`
	Team   string `json:"team"`
	Value  string `json:"value"`
}

// WeeklyHighlights are the week's standout teams.
type WeeklyHighlights struct {
	Week                      int        `json:"week"`
	TopScorer                 *Highlight `json:"top_scorer,omitempty"`
	LowScorer                 *Highlight `json:"low_scorer,omitempty"`
	HighestCoachingEfficiency *Highlight `json:"highest_coaching_efficiency,omitempty"`
}

// Highlights picks the top and low scorer and the most efficient non-DQ
// team. Equal values go to the lower team id.
func (c *Calculator) Highlights(week int) WeeklyHighlights {
	out := WeeklyHighlights{Week: week}
	var top, low, eff *models.Team
	for _, team := range c.league.Teams(week) {
		if top == nil || team.Points > top.Points {
			top = team
		}
		if low == nil || team.Points < low.Points {
			low = team
		}
		if !team.CoachingEfficiency.DQ && (eff == nil || team.CoachingEfficiency.Value > eff.CoachingEfficiency.Value) {
			eff = team
		}
	}
	if top != nil {
		out.TopScorer = &Highlight{TeamID: top.TeamID, Team: top.Name, Value: formatPoints(top.Points)}
		out.LowScorer = &Highlight{TeamID: low.TeamID, Team: low.Name, Value: formatPoints(low.Points)}
	}
	if eff != nil {
		out.HighestCoachingEfficiency = &Highlight{TeamID: eff.TeamID, Team: eff.Name, Value: eff.CoachingEfficiency.String()}
	}
	return out
}

func formatPoints(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
