package optimizer

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/pkg/logger"
)

// CoachingEfficiencyResult is the outcome of scoring one team's lineup.
type CoachingEfficiencyResult struct {
	Efficiency    models.Efficiency
	OptimalPoints float64
	ActualPoints  float64
	Lineup        Lineup
}

// CoachingEfficiency compares each team's started lineup with the best
// lineup its roster allowed.
type CoachingEfficiency struct {
	slots        []PositionSlot
	bench        map[string]bool
	activeCounts map[string]int
	disqualified map[string]bool
	logger       *logrus.Entry
}

// NewCoachingEfficiency builds the slot instances for league. Entries of
// disqualifiedPlayers match either a player id or a full name.
func NewCoachingEfficiency(league *models.League, disqualifiedPlayers []string) *CoachingEfficiency {
	dq := make(map[string]bool, len(disqualifiedPlayers))
	for _, p := range disqualifiedPlayers {
		if p = strings.TrimSpace(p); p != "" {
			dq[strings.ToLower(p)] = true
		}
	}
	return &CoachingEfficiency{
		slots:        BuildPositionSlots(league),
		bench:        league.BenchSet(),
		activeCounts: league.ActiveSlotCounts(),
		disqualified: dq,
		logger:       logger.WithComponent("coaching_efficiency"),
	}
}

// Slots returns the expanded slot instances.
func (ce *CoachingEfficiency) Slots() []PositionSlot {
	return ce.slots
}

// Calculate scores team. inactive holds player ids that were not active this
// week. When dqEligible is set, starting an inactive or listed player, or
// leaving a starting slot empty, disqualifies the team; optimal points are
// still computed.
func (ce *CoachingEfficiency) Calculate(team *models.Team, inactive map[string]bool, dqEligible bool) CoachingEfficiencyResult {
	log := ce.logger.WithFields(logrus.Fields{"team_id": team.TeamID, "week": team.Week})

	available := make([]*models.Player, 0, len(team.Roster))
	for _, p := range team.Roster {
		if p.SelectedPosition == models.PositionIR {
			continue
		}
		available = append(available, p)
	}

	lineup := OptimalLineup(available, ce.slots)

	actual := 0.0
	for _, p := range team.Starters(ce.bench) {
		actual += p.Points
	}
	actual = models.Round(actual, 2)

	result := CoachingEfficiencyResult{
		OptimalPoints: lineup.Points,
		ActualPoints:  actual,
		Lineup:        lineup,
	}

	if dqEligible {
		if reason, ok := ce.disqualification(team, inactive); ok {
			log.WithField("reason", reason).Debug("Team disqualified from coaching efficiency")
			result.Efficiency = models.Disqualified(reason)
			return result
		}
	}

	if lineup.Points == 0 {
		result.Efficiency = models.EfficiencyOf(0)
		return result
	}

	value := actual / lineup.Points * 100
	if value > 100 {
		value = 100
	}
	if value < 0 {
		value = 0
	}
	result.Efficiency = models.EfficiencyOf(value)

	log.WithFields(logrus.Fields{
		"actual":  actual,
		"optimal": lineup.Points,
	}).Debug("Coaching efficiency calculated")
	return result
}

func (ce *CoachingEfficiency) disqualification(team *models.Team, inactive map[string]bool) (models.DQReason, bool) {
	filled := make(map[string]int)
	for _, p := range team.Starters(ce.bench) {
		filled[p.SelectedPosition]++
		if ce.disqualified[strings.ToLower(p.PlayerID)] || ce.disqualified[strings.ToLower(p.FullName)] {
			return models.DQListedPlayer, true
		}
		if inactive[p.PlayerID] || models.InactiveStatuses[p.Status] {
			return models.DQInactivePlayer, true
		}
	}
	for pos, want := range ce.activeCounts {
		if filled[pos] < want {
			return models.DQIncompleteLineup, true
		}
	}
	return "", false
}
