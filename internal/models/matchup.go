package models

// Matchup pairs two teams in one week. Teams are referenced by id.
type Matchup struct {
	Week            int       `json:"week"`
	TeamIDs         [2]string `json:"team_ids"`
	Complete        bool      `json:"complete"`
	Tied            bool      `json:"tied"`
	DivisionMatchup bool      `json:"division_matchup"`
	WinnerTeamID    string    `json:"winner_team_id,omitempty"`
	LoserTeamID     string    `json:"loser_team_id,omitempty"`
}

// SetTied marks the matchup tied and clears the winner and loser.
func (m *Matchup) SetTied(tied bool) {
	m.Tied = tied
	if tied {
		m.WinnerTeamID = ""
		m.LoserTeamID = ""
	}
}

// SetWinner records a decided result.
func (m *Matchup) SetWinner(winnerID string) {
	m.Tied = false
	m.WinnerTeamID = winnerID
	if m.TeamIDs[0] == winnerID {
		m.LoserTeamID = m.TeamIDs[1]
	} else {
		m.LoserTeamID = m.TeamIDs[0]
	}
}

// Opponent returns the other team id, or "" if teamID is not in the matchup.
func (m *Matchup) Opponent(teamID string) string {
	switch teamID {
	case m.TeamIDs[0]:
		return m.TeamIDs[1]
	case m.TeamIDs[1]:
		return m.TeamIDs[0]
	}
	return ""
}

// OutcomeFor returns the matchup result from teamID's side. Incomplete
// matchups count as ties.
func (m *Matchup) OutcomeFor(teamID string) Outcome {
	if !m.Complete || m.Tied {
		return Tie
	}
	if m.WinnerTeamID == teamID {
		return Win
	}
	return Loss
}
