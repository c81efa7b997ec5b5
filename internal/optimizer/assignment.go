package optimizer

import (
	"math"
	"sort"

	"github.com/stitts-dev/ffreport/internal/models"
)

// Lineup is the best legal starting lineup found for a roster.
type Lineup struct {
	Assignments []SlotAssignment
	Points      float64
}

// OptimalLineup finds the maximum-points assignment of players to slot
// instances. Each player fills at most one slot and only slots it is
// eligible for. Slots may stay empty when no eligible player would add
// points.
func OptimalLineup(players []*models.Player, slots []PositionSlot) Lineup {
	if len(players) == 0 || len(slots) == 0 {
		return Lineup{}
	}

	n := len(players)
	if len(slots) > n {
		n = len(slots)
	}

	// Square cost matrix for a min-cost solver: cost = -points on eligible
	// edges and 0 for ineligible or padding cells.
	cost := make([][]float64, n)
	for i := range cost {
		cost[i] = make([]float64, n)
		if i >= len(players) {
			continue
		}
		for j := 0; j < len(slots); j++ {
			if w := players[i].Points; w > 0 && CanPlayerFillSlot(players[i], slots[j]) {
				cost[i][j] = -w
			}
		}
	}

	var lineup Lineup
	for row, col := range hungarian(cost) {
		if row >= len(players) || col >= len(slots) {
			continue
		}
		p := players[row]
		if p.Points <= 0 || !CanPlayerFillSlot(p, slots[col]) {
			continue
		}
		lineup.Assignments = append(lineup.Assignments, SlotAssignment{
			PlayerID: p.PlayerID,
			Slot:     slots[col],
			Points:   p.Points,
		})
		lineup.Points += p.Points
	}
	sort.Slice(lineup.Assignments, func(i, j int) bool {
		return lineup.Assignments[i].Slot.Priority < lineup.Assignments[j].Slot.Priority
	})
	lineup.Points = models.Round(lineup.Points, 2)
	return lineup
}

// hungarian solves the square assignment problem, minimizing total cost.
// It returns, for every row, the column assigned to it.
func hungarian(cost [][]float64) []int {
	n := len(cost)
	inf := math.Inf(1)

	// 1-indexed potentials; p[j] is the row matched to column j.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assignment := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] > 0 {
			assignment[p[j]-1] = j - 1
		}
	}
	return assignment
}
