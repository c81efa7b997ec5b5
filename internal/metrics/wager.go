package metrics

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
)

// WeeklyWagerTableName names the wager table.
const WeeklyWagerTableName = "Weekly Wager"

var ErrInvalidWager = errors.New("invalid weekly wager settings")

// Wager filters.
const (
	WagerStarter = "starter"
	WagerBench   = "bench"
	WagerAll     = "all"
)

// Wager directions and aggregations.
const (
	WagerMost       = "most"
	WagerLeast      = "least"
	WagerIndividual = "individual"
	WagerGroup      = "group"
)

var wagerPositions = map[string]bool{
	"QB": true, "RB": true, "WR": true, "TE": true, "K": true, models.PositionDS: true, "DEF": true,
}

// wagerStatIDs lists the stat ids read for each non-points target; the
// player's first matching stat wins.
var wagerStatIDs = map[string][]string{
	"touchdowns":       {"passTD", "rushTD", "recTD", "TD", "25", "44"},
	"yards":            {"passYds", "rushYds", "recYds", "yards", "24", "43"},
	"receptions":       {"rec", "receptions", "42"},
	"interceptions":    {"18"},
	"fumbles":          {"67"},
	"fumbles_lost":     {"68"},
	"completions":      {"1"},
	"attempts":         {"0"},
	"rushing_attempts": {"23"},
	"receiving_yards":  {"43"},
	"rushing_yards":    {"24"},
}

var wagerTargetText = map[string]string{
	"points":           "fantasy points",
	"touchdowns":       "touchdowns",
	"yards":            "yards",
	"receptions":       "receptions",
	"interceptions":    "interceptions thrown",
	"fumbles":          "fumbles",
	"fumbles_lost":     "fumbles lost",
	"completions":      "pass completions",
	"attempts":         "pass attempts",
	"rushing_attempts": "rushing attempts",
	"receiving_yards":  "receiving yards",
	"rushing_yards":    "rushing yards",
}

// WagerSettings configure the weekly side bet: which rostered players
// compete, on what stat, and whether a team is scored by its best player
// or by its combined group.
type WagerSettings struct {
	Enabled     bool
	Positions   []string
	Filter      string
	Target      string
	Direction   string
	Aggregation string
	Description string
}

// Validate checks every option against the supported values.
func (s WagerSettings) Validate() error {
	for _, pos := range s.Positions {
		if !wagerPositions[strings.ToUpper(pos)] {
			return fmt.Errorf("%w: position %q", ErrInvalidWager, pos)
		}
	}
	switch s.Filter {
	case WagerStarter, WagerBench, WagerAll:
	default:
		return fmt.Errorf("%w: filter %q", ErrInvalidWager, s.Filter)
	}
	if _, ok := wagerTargetText[s.Target]; !ok {
		return fmt.Errorf("%w: target %q", ErrInvalidWager, s.Target)
	}
	if s.Direction != WagerMost && s.Direction != WagerLeast {
		return fmt.Errorf("%w: direction %q", ErrInvalidWager, s.Direction)
	}
	if s.Aggregation != WagerIndividual && s.Aggregation != WagerGroup {
		return fmt.Errorf("%w: aggregation %q", ErrInvalidWager, s.Aggregation)
	}
	return nil
}

// Describe is the custom description, or one generated from the options,
// e.g. "starting QB with the most fantasy points".
func (s WagerSettings) Describe() string {
	if s.Description != "" {
		return s.Description
	}
	filter := map[string]string{WagerStarter: "starting", WagerBench: "bench"}[s.Filter]
	positions := strings.Join(s.Positions, "/")
	target := wagerTargetText[s.Target]

	if s.Aggregation == WagerGroup {
		group := "player"
		if positions != "" {
			group = positions
		}
		desc := strings.TrimSpace(filter + " " + group + " group")
		return fmt.Sprintf("team %s with the %s combined %s", desc, s.Direction, target)
	}

	player := strings.TrimSpace(filter + " " + positions)
	if player == "" {
		player = "player"
	}
	return fmt.Sprintf("%s with the %s %s", player, s.Direction, target)
}

// WagerEntry is one team's line in the wager. Group entries list every
// counted player with their own value.
type WagerEntry struct {
	Rank        int     `json:"rank"`
	TeamID      string  `json:"team_id"`
	OwnerTeam   string  `json:"owner_team"`
	Name        string  `json:"name"`
	Position    string  `json:"position"`
	TeamAbbr    string  `json:"team_abbr"`
	Value       float64 `json:"value"`
	IsWinner    bool    `json:"is_winner"`
	PlayerCount int     `json:"player_count,omitempty"`
	IsGroup     bool    `json:"is_group,omitempty"`
}

// WagerResult is the ranked outcome for one week.
type WagerResult struct {
	Entries           []WagerEntry `json:"entries"`
	WinningTeams      []string     `json:"winning_teams"`
	TargetValue       float64      `json:"target_value"`
	TotalParticipants int          `json:"total_participants"`
	IsTie             bool         `json:"is_tie"`
	Description       string       `json:"description"`
}

type wagerPlayer struct {
	player *models.Player
	team   *models.Team
	value  float64
}

type wagerTeam struct {
	team    *models.Team
	value   float64
	players []wagerPlayer
}

// WeeklyWager scores the week's wager. It returns nil when the wager is
// disabled or no rostered player qualifies.
func (c *Calculator) WeeklyWager(week int, s WagerSettings) (*WagerResult, error) {
	if !s.Enabled {
		return nil, nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	log := c.logger.WithField("week", week)

	most := s.Direction == WagerMost
	better := func(a, b float64) bool {
		if most {
			return a > b
		}
		return a < b
	}

	var players []wagerPlayer
	for _, team := range c.league.Teams(week) {
		for _, p := range team.Roster {
			if !wagerPositionMatch(p, s.Positions) || !c.wagerFilterMatch(p, s.Filter) {
				continue
			}
			if v := wagerValue(p, s.Target); v >= 0 {
				players = append(players, wagerPlayer{player: p, team: team, value: v})
			}
		}
	}
	if len(players) == 0 {
		log.Warn("No eligible players for the weekly wager")
		return nil, nil
	}
	sort.SliceStable(players, func(i, j int) bool { return better(players[i].value, players[j].value) })

	var teams []*wagerTeam
	byTeam := map[string]*wagerTeam{}
	for _, wp := range players {
		wt, ok := byTeam[wp.team.TeamID]
		if !ok {
			wt = &wagerTeam{team: wp.team, value: wp.value}
			if s.Aggregation == WagerGroup {
				wt.value = 0
			}
			byTeam[wp.team.TeamID] = wt
			teams = append(teams, wt)
		}
		// players arrive best first, so the first one per team is its best
		wt.players = append(wt.players, wp)
		if s.Aggregation == WagerGroup {
			wt.value += wp.value
		}
	}
	for _, wt := range teams {
		wt.value = models.Round(wt.value, 2)
	}
	sort.SliceStable(teams, func(i, j int) bool { return better(teams[i].value, teams[j].value) })

	res := &WagerResult{
		TargetValue:       teams[0].value,
		TotalParticipants: len(teams),
		Description:       s.Describe(),
	}
	rank := 1
	for i, wt := range teams {
		if i > 0 && wt.value != teams[i-1].value {
			rank = i + 1
		}
		winner := wt.value == res.TargetValue
		entry := WagerEntry{
			Rank:      rank,
			TeamID:    wt.team.TeamID,
			OwnerTeam: wt.team.Name,
			Value:     wt.value,
			IsWinner:  winner,
		}
		best := wt.players[0].player
		if s.Aggregation == WagerGroup {
			names := make([]string, len(wt.players))
			for j, wp := range wt.players {
				names[j] = fmt.Sprintf("%s (%.1f)", wp.player.FullName, wp.value)
			}
			entry.Name = strings.Join(names, ", ")
			entry.Position = strings.Join(s.Positions, "/")
			entry.TeamAbbr = best.NFLTeamAbbr
			entry.PlayerCount = len(wt.players)
			entry.IsGroup = true
		} else {
			entry.Name = best.FullName
			entry.Position = best.DisplayPosition
			if entry.Position == "" {
				entry.Position = best.PrimaryPosition
			}
			entry.TeamAbbr = best.NFLTeamAbbr
		}
		res.Entries = append(res.Entries, entry)
		if winner {
			res.WinningTeams = append(res.WinningTeams, wt.team.Name)
		}
	}
	res.IsTie = len(res.WinningTeams) > 1

	log.WithFields(logrus.Fields{
		"description": res.Description,
		"winners":     res.WinningTeams,
	}).Info("Weekly wager calculated")
	return res, nil
}

func wagerPositionMatch(p *models.Player, positions []string) bool {
	if len(positions) == 0 {
		return true
	}
	for _, pos := range positions {
		pos = strings.ToUpper(pos)
		if p.DisplayPosition == pos || p.PrimaryPosition == pos ||
			(pos == "DEF" && p.PrimaryPosition == models.PositionDS) {
			return true
		}
	}
	return false
}

func (c *Calculator) wagerFilterMatch(p *models.Player, filter string) bool {
	switch filter {
	case WagerStarter:
		return !c.league.IsBench(p.SelectedPosition)
	case WagerBench:
		return c.league.IsBench(p.SelectedPosition)
	}
	return true
}

func wagerValue(p *models.Player, target string) float64 {
	if target == "points" {
		return p.Points
	}
	ids := wagerStatIDs[target]
	for _, stat := range p.Stats {
		for _, id := range ids {
			if stat.ID == id {
				return stat.Value
			}
		}
	}
	return 0
}

// Table renders the wager for the report.
func (r *WagerResult) Table() Table {
	table := Table{
		Name:    WeeklyWagerTableName,
		Columns: []string{"Place", "Team", "Player(s)", "Position", "NFL Team", "Value"},
	}
	counts := map[int]int{}
	for _, e := range r.Entries {
		counts[e.Rank]++
	}
	for _, n := range counts {
		table.NumTies += n * (n - 1) / 2
	}
	for _, e := range r.Entries {
		place := itoa(e.Rank)
		if counts[e.Rank] > 1 {
			place += tieMarker
		}
		table.Rows = append(table.Rows, Row{
			TeamID: e.TeamID,
			Cells:  []string{place, e.OwnerTeam, e.Name, e.Position, e.TeamAbbr, fmt.Sprintf("%.2f", e.Value)},
		})
	}
	return table
}
