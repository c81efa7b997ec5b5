package models

// Stat is one scoring statistic for a player in a week.
type Stat struct {
	ID           string  `json:"stat_id"`
	Abbreviation string  `json:"abbreviation"`
	Value        float64 `json:"value"`
}

// Player is one NFL player at one week. Identity across weeks is carried by
// PlayerID plus Week only.
type Player struct {
	PlayerID    string `json:"player_id"`
	Week        int    `json:"week"`
	FullName    string `json:"full_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NFLTeamID   string `json:"nfl_team_id,omitempty"`
	NFLTeamAbbr string `json:"nfl_team_abbr"`
	NFLTeamName string `json:"nfl_team_name,omitempty"`
	Status      string `json:"status,omitempty"`
	ByeWeek     int    `json:"bye_week,omitempty"`

	DisplayPosition        string   `json:"display_position"`
	PrimaryPosition        string   `json:"primary_position"`
	PositionType           string   `json:"position_type,omitempty"`
	EligiblePositions      []string `json:"eligible_positions"`
	SelectedPosition       string   `json:"selected_position"`
	SelectedPositionIsFlex bool     `json:"selected_position_is_flex"`

	Points              float64 `json:"points"`
	ProjectedPoints     float64 `json:"projected_points"`
	SeasonPoints        float64 `json:"season_points"`
	SeasonAveragePoints float64 `json:"season_average_points"`
	Stats               []Stat  `json:"stats,omitempty"`

	BadBoyCrime        string `json:"bad_boy_crime"`
	BadBoyCrimePoints  int    `json:"bad_boy_crime_points"`
	BadBoyPoints       int    `json:"bad_boy_points"`
	BadBoyNumOffenders int    `json:"bad_boy_num_offenders"`

	BeefWeight int     `json:"beef_weight"`
	BeefTabbu  float64 `json:"beef_tabbu"`

	HighRollerWorstViolation     string  `json:"high_roller_worst_violation"`
	HighRollerWorstViolationFine float64 `json:"high_roller_worst_violation_fine"`
	HighRollerFinesTotal         float64 `json:"high_roller_fines_total"`
	HighRollerNumViolators       int     `json:"high_roller_num_violators"`
}

// IsEligibleFor reports whether the player lists position among its
// eligible positions. A player without any falls back to its primary one.
func (p *Player) IsEligibleFor(position string) bool {
	if len(p.EligiblePositions) == 0 {
		return p.PrimaryPosition != "" && p.PrimaryPosition == position
	}
	for _, pos := range p.EligiblePositions {
		if pos == position {
			return true
		}
	}
	return false
}
