package metrics

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/stitts-dev/ffreport/internal/models"
)

// PositionPoints is one position's share of a team's starting points.
type PositionPoints struct {
	Position string  `json:"position"`
	Points   float64 `json:"points"`
}

// PointsByPosition splits each team's starting points across the concrete
// (non-flex, non-bench) slots of the roster catalog. Flex starters count
// toward their primary position. Positions are sorted by name.
func (c *Calculator) PointsByPosition(week int) map[string][]PositionPoints {
	flex := c.league.FlexPositions()
	bench := c.league.BenchSet()

	var positions []string
	for pos := range c.league.ActiveSlotCounts() {
		if _, isFlex := flex[pos]; !isFlex {
			positions = append(positions, pos)
		}
	}
	sort.Strings(positions)

	out := make(map[string][]PositionPoints)
	for _, team := range c.league.Teams(week) {
		byPos := make(map[string][]float64, len(positions))
		for _, p := range team.Starters(bench) {
			byPos[p.PrimaryPosition] = append(byPos[p.PrimaryPosition], p.Points)
		}
		rows := make([]PositionPoints, 0, len(positions))
		for _, pos := range positions {
			rows = append(rows, PositionPoints{Position: pos, Points: models.Round(floats.Sum(byPos[pos]), 2)})
		}
		out[team.TeamID] = rows
	}
	return out
}

// SeasonPointsByPosition averages each team's weekly position points over
// the weeks provided.
func SeasonPointsByPosition(weekly []map[string][]PositionPoints) map[string][]PositionPoints {
	sums := make(map[string]map[string][]float64)
	for _, week := range weekly {
		for teamID, rows := range week {
			if sums[teamID] == nil {
				sums[teamID] = make(map[string][]float64)
			}
			for _, r := range rows {
				sums[teamID][r.Position] = append(sums[teamID][r.Position], r.Points)
			}
		}
	}

	out := make(map[string][]PositionPoints, len(sums))
	for teamID, byPos := range sums {
		rows := make([]PositionPoints, 0, len(byPos))
		for _, pos := range sortedKeys(byPos) {
			vals := byPos[pos]
			rows = append(rows, PositionPoints{Position: pos, Points: models.Round(floats.Sum(vals)/float64(len(vals)), 2)})
		}
		out[teamID] = rows
	}
	return out
}
