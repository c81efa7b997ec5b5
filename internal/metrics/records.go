package metrics

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/pkg/logger"
)

// Calculator computes weekly metrics over a league. Methods read the
// league and only write the documented derived fields and week maps.
type Calculator struct {
	league *models.League
	logger *logrus.Entry
}

func NewCalculator(league *models.League) *Calculator {
	return &Calculator{
		league: league,
		logger: logger.WithComponent("metrics"),
	}
}

// CalculateRecords applies the week's results on top of the previous week's
// records (fresh records at the start week), stores them ordered in
// RecordsByWeek[week], assigns ranks and mirrors each record onto its team.
func (c *Calculator) CalculateRecords(week int, results []models.WeeklyResult) map[string]*models.Record {
	records := make(map[string]*models.Record)

	for _, team := range c.league.Teams(week) {
		var rec *models.Record
		if week > c.league.StartWeek {
			if prior := c.league.RecordFor(week-1, team.TeamID); prior != nil {
				rec = prior.Clone()
				rec.Type = models.RecordWeekly
				rec.Week = week
				rec.TeamName = team.Name
			} else {
				c.logger.WithFields(logrus.Fields{
					"team_id": team.TeamID,
					"week":    week,
				}).Warn("No prior week record found, starting a fresh record")
			}
		}
		if rec == nil {
			rec = models.NewRecord(week, team.TeamID, team.Name)
		}
		records[team.TeamID] = rec
	}

	for _, res := range results {
		rec, ok := records[res.TeamID]
		if !ok {
			c.logger.WithField("team_id", res.TeamID).Warn("Matchup result for unknown team")
			continue
		}
		rec.AddOutcome(res.Result)
		rec.AddPointsFor(res.PointsFor)
		rec.AddPointsAgainst(res.PointsAgainst)
		if res.Division {
			rec.AddDivisionOutcome(res.Result)
			rec.AddDivisionPointsFor(res.PointsFor)
			rec.AddDivisionPointsAgainst(res.PointsAgainst)
		}
	}

	ordered := make([]*models.Record, 0, len(records))
	for _, rec := range records {
		ordered = append(ordered, rec)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return recordBefore(ordered[i], ordered[j])
	})
	for i, rec := range ordered {
		rec.Rank = i + 1
		if team := c.league.Team(week, rec.TeamID); team != nil {
			team.Record = rec
		}
	}
	c.league.RecordsByWeek[week] = ordered

	return records
}

// recordBefore orders by wins desc, losses asc, ties desc, points for desc,
// then team id.
func recordBefore(a, b *models.Record) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	if a.Losses != b.Losses {
		return a.Losses < b.Losses
	}
	if a.Ties != b.Ties {
		return a.Ties > b.Ties
	}
	if a.PointsFor != b.PointsFor {
		return a.PointsFor > b.PointsFor
	}
	return a.TeamID < b.TeamID
}
