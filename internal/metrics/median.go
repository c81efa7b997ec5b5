package metrics

import (
	"sort"

	"github.com/stitts-dev/ffreport/internal/models"
)

// CalculateMedianRecords scores every team against the league median for
// the week. Points for accumulate the margin over the median; points against
// accumulate the median itself. Records carry over from the previous week's
// teams. The median is stored in MedianScoreByWeek.
func (c *Calculator) CalculateMedianRecords(week int) (float64, map[string]*models.Record) {
	teams := c.league.Teams(week)
	if len(teams) == 0 {
		return 0, nil
	}

	scores := make([]float64, len(teams))
	for i, t := range teams {
		scores[i] = t.Points
	}
	median := models.Round(medianOf(scores), 2)
	c.league.MedianScoreByWeek[week] = median

	out := make(map[string]*models.Record, len(teams))
	for _, team := range teams {
		var rec *models.Record
		if prev := c.league.Team(week-1, team.TeamID); week > c.league.StartWeek && prev != nil && prev.MedianRecord != nil {
			rec = prev.MedianRecord.Clone()
			rec.Week = week
		} else {
			rec = models.NewRecord(week, team.TeamID, team.Name)
		}

		switch {
		case team.Points > median:
			rec.AddWin()
		case team.Points < median:
			rec.AddLoss()
		default:
			rec.AddTie()
		}
		rec.AddPointsFor(team.Points - median)
		rec.AddPointsAgainst(median)

		team.MedianRecord = rec
		out[team.TeamID] = rec
	}

	c.logger.WithField("week", week).WithField("median", median).Debug("Median records calculated")
	return median, out
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
