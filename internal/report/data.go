package report

import (
	"time"

	"github.com/stitts-dev/ffreport/internal/metrics"
	"github.com/stitts-dev/ffreport/internal/simulator"
)

// WeekData holds one week's ranked tables.
type WeekData struct {
	Week               int           `json:"week"`
	Standings          metrics.Table `json:"standings"`
	Score              metrics.Table `json:"score"`
	CoachingEfficiency metrics.Table `json:"coaching_efficiency"`
	Luck               metrics.Table `json:"luck"`
	Optimal            metrics.Table `json:"optimal"`
	PowerRanking       metrics.Table `json:"power_ranking"`

	ZScore            *metrics.Table             `json:"z_score,omitempty"`
	BadBoy            *metrics.Table             `json:"bad_boy,omitempty"`
	Beef              *metrics.Table             `json:"beef,omitempty"`
	HighRoller        *metrics.Table             `json:"high_roller,omitempty"`
	DivisionStandings *metrics.DivisionStandings `json:"division_standings,omitempty"`
	MedianStandings   *metrics.Table             `json:"median_standings,omitempty"`
	MedianScore       *float64                   `json:"median_score,omitempty"`
	WeeklyWager       *metrics.WagerResult       `json:"weekly_wager,omitempty"`
	WeeklyWagerTable  *metrics.Table             `json:"weekly_wager_table,omitempty"`

	PointsByPosition map[string][]metrics.PositionPoints `json:"points_by_position"`
	Highlights       metrics.WeeklyHighlights            `json:"highlights"`
	Warnings         []string                            `json:"warnings,omitempty"`
}

// Data is the complete output of one report run. Weeks runs from the start
// week through the report week; the last entry carries the season columns.
type Data struct {
	RunID         string    `json:"run_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	Platform      string    `json:"platform"`
	LeagueID      string    `json:"league_id"`
	LeagueName    string    `json:"league_name"`
	Season        int       `json:"season"`
	StartWeek     int       `json:"start_week"`
	WeekForReport int       `json:"week_for_report"`

	Weeks []WeekData `json:"weeks"`

	SeasonPointsByPosition map[string][]metrics.PositionPoints `json:"season_points_by_position"`
	PlayoffProbabilities   *simulator.Result                   `json:"playoff_probabilities,omitempty"`
	PlayoffTable           *metrics.Table                      `json:"playoff_table,omitempty"`
	CrimeCategories        map[string]int                      `json:"crime_categories,omitempty"`
}

// ReportWeek returns the entry for the report week, or nil.
func (d *Data) ReportWeek() *WeekData {
	if len(d.Weeks) == 0 {
		return nil
	}
	return &d.Weeks[len(d.Weeks)-1]
}
