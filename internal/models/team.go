package models

import (
	"strconv"
	"strings"
	"unicode"
)

// Manager is one person managing a fantasy team.
type Manager struct {
	ManagerID string `json:"manager_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
}

// DisplayName shortens the manager name to the first token plus initials,
// e.g. "Wren Jay Rivers" becomes "Wren J. R.". Numeric tokens are kept whole.
func (m Manager) DisplayName() string {
	name := m.Name
	if strings.TrimSpace(name) == "" {
		name = m.Nickname
	}
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(tokens[0])
	for _, tok := range tokens[1:] {
		b.WriteByte(' ')
		if _, err := strconv.Atoi(tok); err == nil {
			b.WriteString(tok)
			continue
		}
		r := []rune(tok)[0]
		b.WriteRune(unicode.ToUpper(r))
		b.WriteByte('.')
	}
	return b.String()
}

// Team is one fantasy team at one week.
type Team struct {
	TeamID   string    `json:"team_id"`
	Week     int       `json:"week"`
	Name     string    `json:"name"`
	Division string    `json:"division,omitempty"`
	Managers []Manager `json:"managers"`
	Roster   []*Player `json:"roster"`

	Points                   float64 `json:"points"`
	HomeFieldAdvantagePoints float64 `json:"home_field_advantage_points"`
	BenchPoints              float64 `json:"bench_points"`
	ProjectedPoints          float64 `json:"projected_points"`

	WaiverPriority int `json:"waiver_priority"`
	FAAB           int `json:"faab"`
	NumMoves       int `json:"num_moves"`
	NumTrades      int `json:"num_trades"`

	PositionsFilledActive []string   `json:"positions_filled_active,omitempty"`
	CoachingEfficiency    Efficiency `json:"coaching_efficiency"`
	OptimalPoints         float64    `json:"optimal_points"`
	Luck                  float64    `json:"luck"`
	WeeklyOverallRecord   *Record    `json:"weekly_overall_record,omitempty"`
	Record                *Record    `json:"record,omitempty"`
	MedianRecord          *Record    `json:"median_record,omitempty"`

	BadBoyPoints      int    `json:"bad_boy_points"`
	WorstOffense      string `json:"worst_offense"`
	WorstOffenseScore int    `json:"worst_offense_score"`
	NumOffenders      int    `json:"num_offenders"`

	TotalWeight int     `json:"total_weight"`
	Tabbu       float64 `json:"tabbu"`

	FinesTotal         float64 `json:"fines_total"`
	WorstViolation     string  `json:"worst_violation"`
	WorstViolationFine float64 `json:"worst_violation_fine"`
	NumViolators       int     `json:"num_violators"`
}

// ManagerString joins the display names of every manager.
func (t *Team) ManagerString() string {
	names := make([]string, 0, len(t.Managers))
	for _, m := range t.Managers {
		if n := m.DisplayName(); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}

// CombinedRecord adds the league-median record to the head-to-head record.
func (t *Team) CombinedRecord() *Record {
	if t.Record == nil {
		return NewRecord(0, t.TeamID, t.Name)
	}
	return t.Record.CombinedRecord(t.MedianRecord)
}

// Starters returns the roster players whose selected position is not a
// bench position.
func (t *Team) Starters(bench map[string]bool) []*Player {
	var out []*Player
	for _, p := range t.Roster {
		if !bench[p.SelectedPosition] {
			out = append(out, p)
		}
	}
	return out
}

// Bench returns the complement of Starters.
func (t *Team) Bench(bench map[string]bool) []*Player {
	var out []*Player
	for _, p := range t.Roster {
		if bench[p.SelectedPosition] {
			out = append(out, p)
		}
	}
	return out
}
