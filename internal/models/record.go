package models

import (
	"errors"
	"fmt"
	"math"
)

// Outcome is the result of a single matchup from one team's point of view.
type Outcome string

const (
	Win  Outcome = "W"
	Loss Outcome = "L"
	Tie  Outcome = "T"
)

// RecordType distinguishes season-to-date records from single-week records.
type RecordType string

const (
	RecordOverall RecordType = "overall"
	RecordWeekly  RecordType = "weekly"
)

var ErrOverallRecordWeek = errors.New("week cannot be set on an overall record")

// Record is a team's W-L-T record with points and streak, plus the same
// counters scoped to division matchups.
type Record struct {
	TeamID   string     `json:"team_id"`
	TeamName string     `json:"team_name"`
	Type     RecordType `json:"record_type"`
	Week     int        `json:"week,omitempty"`
	Rank     int        `json:"rank"`

	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	Percentage    float64 `json:"percentage"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
	StreakType    Outcome `json:"streak_type,omitempty"`
	StreakLength  int     `json:"streak_length"`

	DivisionWins          int     `json:"division_wins"`
	DivisionLosses        int     `json:"division_losses"`
	DivisionTies          int     `json:"division_ties"`
	DivisionPercentage    float64 `json:"division_percentage"`
	DivisionPointsFor     float64 `json:"division_points_for"`
	DivisionPointsAgainst float64 `json:"division_points_against"`
	DivisionStreakType    Outcome `json:"division_streak_type,omitempty"`
	DivisionStreakLength  int     `json:"division_streak_length"`
}

// NewRecord creates a weekly record when week > 0 and an overall record otherwise.
func NewRecord(week int, teamID, teamName string) *Record {
	r := &Record{TeamID: teamID, TeamName: teamName, Type: RecordOverall}
	if week > 0 {
		r.Type = RecordWeekly
		r.Week = week
	}
	return r
}

// SetWeek rebinds a weekly record to another week.
func (r *Record) SetWeek(week int) error {
	if r.Type == RecordOverall {
		return fmt.Errorf("record for team %s: %w", r.TeamID, ErrOverallRecordWeek)
	}
	r.Week = week
	return nil
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

func (r *Record) GamesPlayed() int {
	return r.Wins + r.Losses + r.Ties
}

func (r *Record) DivisionGamesPlayed() int {
	return r.DivisionWins + r.DivisionLosses + r.DivisionTies
}

func (r *Record) AddWin() {
	r.Wins++
	r.update(Win)
}

func (r *Record) AddLoss() {
	r.Losses++
	r.update(Loss)
}

func (r *Record) AddTie() {
	r.Ties++
	r.update(Tie)
}

// AddOutcome dispatches to AddWin, AddLoss or AddTie.
func (r *Record) AddOutcome(o Outcome) {
	switch o {
	case Win:
		r.AddWin()
	case Loss:
		r.AddLoss()
	default:
		r.AddTie()
	}
}

func (r *Record) AddPointsFor(points float64) {
	r.PointsFor = round(r.PointsFor+points, 2)
}

func (r *Record) AddPointsAgainst(points float64) {
	r.PointsAgainst = round(r.PointsAgainst+points, 2)
}

func (r *Record) AddDivisionWin() {
	r.DivisionWins++
	r.updateDivision(Win)
}

func (r *Record) AddDivisionLoss() {
	r.DivisionLosses++
	r.updateDivision(Loss)
}

func (r *Record) AddDivisionTie() {
	r.DivisionTies++
	r.updateDivision(Tie)
}

// AddDivisionOutcome dispatches to the division counters.
func (r *Record) AddDivisionOutcome(o Outcome) {
	switch o {
	case Win:
		r.AddDivisionWin()
	case Loss:
		r.AddDivisionLoss()
	default:
		r.AddDivisionTie()
	}
}

func (r *Record) AddDivisionPointsFor(points float64) {
	r.DivisionPointsFor = round(r.DivisionPointsFor+points, 2)
}

func (r *Record) AddDivisionPointsAgainst(points float64) {
	r.DivisionPointsAgainst = round(r.DivisionPointsAgainst+points, 2)
}

func (r *Record) update(o Outcome) {
	r.Percentage = percentage(r.Wins, r.GamesPlayed())
	r.StreakType, r.StreakLength = nextStreak(r.StreakType, r.StreakLength, o)
}

func (r *Record) updateDivision(o Outcome) {
	r.DivisionPercentage = percentage(r.DivisionWins, r.DivisionGamesPlayed())
	r.DivisionStreakType, r.DivisionStreakLength = nextStreak(r.DivisionStreakType, r.DivisionStreakLength, o)
}

func nextStreak(current Outcome, length int, o Outcome) (Outcome, int) {
	if current == o && length > 0 {
		return o, length + 1
	}
	return o, 1
}

func percentage(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return round(float64(wins)/float64(games), 3)
}

// RecordString formats "W-L", or "W-L-T" when there are ties.
func (r *Record) RecordString() string {
	return formatRecord(r.Wins, r.Losses, r.Ties)
}

// RecordStringWithPoints appends points for, e.g. "7-3 (1204.56)".
func (r *Record) RecordStringWithPoints() string {
	return fmt.Sprintf("%s (%.2f)", r.RecordString(), r.PointsFor)
}

func (r *Record) PercentageString() string {
	return fmt.Sprintf("%.3f", r.Percentage)
}

// RecordWithPercentageString formats "W-L-T (0.625)".
func (r *Record) RecordWithPercentageString() string {
	return fmt.Sprintf("%s (%s)", r.RecordString(), r.PercentageString())
}

// StreakString formats the current streak, e.g. "W-3". Empty before any game.
func (r *Record) StreakString() string {
	if r.StreakLength == 0 {
		return ""
	}
	return fmt.Sprintf("%s-%d", r.StreakType, r.StreakLength)
}

func (r *Record) DivisionRecordString() string {
	return formatRecord(r.DivisionWins, r.DivisionLosses, r.DivisionTies)
}

func (r *Record) DivisionRecordStringWithPoints() string {
	return fmt.Sprintf("%s (%.2f)", r.DivisionRecordString(), r.DivisionPointsFor)
}

func (r *Record) DivisionPercentageString() string {
	return fmt.Sprintf("%.3f", r.DivisionPercentage)
}

func (r *Record) DivisionStreakString() string {
	if r.DivisionStreakLength == 0 {
		return ""
	}
	return fmt.Sprintf("%s-%d", r.DivisionStreakType, r.DivisionStreakLength)
}

// CombinedRecord sums the W-L-T counts of r and other. Points and streak
// are taken from r.
func (r *Record) CombinedRecord(other *Record) *Record {
	combined := NewRecord(0, r.TeamID, r.TeamName)
	combined.Rank = r.Rank
	combined.PointsFor = r.PointsFor
	combined.PointsAgainst = r.PointsAgainst
	combined.StreakType = r.StreakType
	combined.StreakLength = r.StreakLength
	combined.Wins = r.Wins
	combined.Losses = r.Losses
	combined.Ties = r.Ties
	if other != nil {
		combined.Wins += other.Wins
		combined.Losses += other.Losses
		combined.Ties += other.Ties
	}
	combined.Percentage = percentage(combined.Wins, combined.GamesPlayed())
	return combined
}

func formatRecord(wins, losses, ties int) string {
	if ties > 0 {
		return fmt.Sprintf("%d-%d-%d", wins, losses, ties)
	}
	return fmt.Sprintf("%d-%d", wins, losses)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	return round(v, places)
}
