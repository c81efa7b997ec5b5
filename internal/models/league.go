package models

import (
	"fmt"
	"sort"
)

// WeeklyResult is one team's view of its matchup in a week.
type WeeklyResult struct {
	TeamID        string  `json:"team_id"`
	OpponentID    string  `json:"opponent_id"`
	Result        Outcome `json:"result"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
	Division      bool    `json:"division"`
}

// League is the root aggregate built by a platform adapter. It owns every
// team, player, matchup and record by week.
type League struct {
	Platform              string `json:"platform"`
	LeagueID              string `json:"league_id"`
	Name                  string `json:"name"`
	Season                int    `json:"season"`
	CurrentWeek           int    `json:"current_week"`
	WeekForReport         int    `json:"week_for_report"`
	StartWeek             int    `json:"start_week"`
	NumRegularSeasonWeeks int    `json:"num_regular_season_weeks"`

	NumPlayoffSlots            int `json:"num_playoff_slots"`
	NumPlayoffSlotsPerDivision int `json:"num_playoff_slots_per_division"`

	NumDivisions int               `json:"num_divisions"`
	Divisions    map[string]string `json:"divisions,omitempty"`

	RosterPositions      []string            `json:"roster_positions"`
	RosterPositionCounts map[string]int      `json:"roster_position_counts"`
	RosterActiveSlots    []string            `json:"roster_active_slots"`
	OffensivePositions   []string            `json:"offensive_positions"`
	DefensivePositions   []string            `json:"defensive_positions"`
	BenchPositions       []string            `json:"bench_positions"`
	FlexPositionSets     map[string][]string `json:"flex_positions,omitempty"`

	HasDivisions        bool `json:"has_divisions"`
	IsFAAB              bool `json:"is_faab"`
	FAABBudget          int  `json:"faab_budget"`
	HasWaiverPriorities bool `json:"has_waiver_priorities"`
	HasMedianMatchup    bool `json:"has_median_matchup"`

	MatchupsByWeek    map[int][]*Matchup         `json:"matchups_by_week"`
	TeamsByWeek       map[int]map[string]*Team   `json:"teams_by_week"`
	PlayersByWeek     map[int]map[string]*Player `json:"players_by_week"`
	RecordsByWeek     map[int][]*Record          `json:"records_by_week,omitempty"`
	MedianScoreByWeek map[int]float64            `json:"median_score_by_week,omitempty"`

	CurrentStandings       []*Team `json:"-"`
	CurrentMedianStandings []*Team `json:"-"`
}

// NewLeague returns a league with its week-indexed maps initialized.
func NewLeague(platform, leagueID string, season int) *League {
	return &League{
		Platform:             platform,
		LeagueID:             leagueID,
		Season:               season,
		Divisions:            map[string]string{},
		RosterPositionCounts: map[string]int{},
		BenchPositions:       []string{PositionBN, PositionIR},
		MatchupsByWeek:       map[int][]*Matchup{},
		TeamsByWeek:          map[int]map[string]*Team{},
		PlayersByWeek:        map[int]map[string]*Player{},
		RecordsByWeek:        map[int][]*Record{},
		MedianScoreByWeek:    map[int]float64{},
	}
}

// EnsureMaps initializes any nil map, e.g. after decoding a snapshot.
func (l *League) EnsureMaps() {
	if l.Divisions == nil {
		l.Divisions = map[string]string{}
	}
	if l.RosterPositionCounts == nil {
		l.RosterPositionCounts = map[string]int{}
	}
	if l.MatchupsByWeek == nil {
		l.MatchupsByWeek = map[int][]*Matchup{}
	}
	if l.TeamsByWeek == nil {
		l.TeamsByWeek = map[int]map[string]*Team{}
	}
	if l.PlayersByWeek == nil {
		l.PlayersByWeek = map[int]map[string]*Player{}
	}
	if l.RecordsByWeek == nil {
		l.RecordsByWeek = map[int][]*Record{}
	}
	if l.MedianScoreByWeek == nil {
		l.MedianScoreByWeek = map[int]float64{}
	}
}

// FlexPositions returns the flex slot catalog, falling back to the defaults.
func (l *League) FlexPositions() map[string][]string {
	if len(l.FlexPositionSets) > 0 {
		return l.FlexPositionSets
	}
	return DefaultFlexPositions()
}

// BenchSet returns the bench positions as a lookup set.
func (l *League) BenchSet() map[string]bool {
	set := make(map[string]bool, len(l.BenchPositions))
	for _, p := range l.BenchPositions {
		set[p] = true
	}
	return set
}

func (l *League) IsBench(position string) bool {
	for _, p := range l.BenchPositions {
		if p == position {
			return true
		}
	}
	return false
}

// ActiveSlotCounts returns the non-bench slot counts of the catalog.
func (l *League) ActiveSlotCounts() map[string]int {
	counts := make(map[string]int)
	for pos, n := range l.RosterPositionCounts {
		if n > 0 && !l.IsBench(pos) {
			counts[pos] = n
		}
	}
	return counts
}

func (l *League) Team(week int, teamID string) *Team {
	return l.TeamsByWeek[week][teamID]
}

// Teams returns the week's teams ordered by team id.
func (l *League) Teams(week int) []*Team {
	teams := make([]*Team, 0, len(l.TeamsByWeek[week]))
	for _, t := range l.TeamsByWeek[week] {
		teams = append(teams, t)
	}
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })
	return teams
}

func (l *League) NumTeams(week int) int {
	return len(l.TeamsByWeek[week])
}

// RecordFor returns the team's record at week, or nil.
func (l *League) RecordFor(week int, teamID string) *Record {
	for _, r := range l.RecordsByWeek[week] {
		if r.TeamID == teamID {
			return r
		}
	}
	return nil
}

// DivisionName resolves a division id to its display name.
func (l *League) DivisionName(divisionID string) string {
	if name, ok := l.Divisions[divisionID]; ok {
		return name
	}
	return divisionID
}

// CustomWeeklyMatchups flattens the week's matchups into one result per team.
func (l *League) CustomWeeklyMatchups(week int) ([]WeeklyResult, error) {
	matchups, ok := l.MatchupsByWeek[week]
	if !ok {
		return nil, fmt.Errorf("no matchups for week %d", week)
	}
	teams := l.TeamsByWeek[week]

	results := make([]WeeklyResult, 0, len(matchups)*2)
	for _, m := range matchups {
		a, b := teams[m.TeamIDs[0]], teams[m.TeamIDs[1]]
		if a == nil || b == nil {
			return nil, fmt.Errorf("week %d matchup %s vs %s references unknown team", week, m.TeamIDs[0], m.TeamIDs[1])
		}
		division := m.DivisionMatchup || (a.Division != "" && a.Division == b.Division)
		for _, pair := range [][2]*Team{{a, b}, {b, a}} {
			team, opp := pair[0], pair[1]
			results = append(results, WeeklyResult{
				TeamID:        team.TeamID,
				OpponentID:    opp.TeamID,
				Result:        m.OutcomeFor(team.TeamID),
				PointsFor:     team.Points,
				PointsAgainst: opp.Points,
				Division:      division,
			})
		}
	}
	return results, nil
}

// RosterWarnings compares each team's selected positions with the slot
// catalog and describes every mismatch.
func (l *League) RosterWarnings(week int) []string {
	var warnings []string
	for _, team := range l.Teams(week) {
		filled := make(map[string]int)
		for _, p := range team.Roster {
			filled[p.SelectedPosition]++
		}
		for pos, want := range l.ActiveSlotCounts() {
			if got := filled[pos]; got != want {
				warnings = append(warnings, fmt.Sprintf(
					"team %q week %d has %d %s starters, catalog requires %d", team.Name, week, got, pos, want))
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}
