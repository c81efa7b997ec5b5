package features

import "strings"

// TeamAbbreviations is the current 32-team catalog.
var TeamAbbreviations = []string{
	"ARI", "ATL", "BAL", "BUF", "CAR", "CHI", "CIN", "CLE",
	"DAL", "DEN", "DET", "GB", "HOU", "IND", "JAX", "KC",
	"LAC", "LAR", "LV", "MIA", "MIN", "NE", "NO", "NYG",
	"NYJ", "PHI", "PIT", "SEA", "SF", "TB", "TEN", "WAS",
}

// teamAliases maps platform and historical abbreviations onto the catalog.
var teamAliases = map[string]string{
	"JAC": "JAX",
	"LA":  "LAR",
	"STL": "LAR",
	"WSH": "WAS",
	"OAK": "LV",
	"LVR": "LV",
	"SD":  "LAC",
	"GNB": "GB",
	"KAN": "KC",
	"NWE": "NE",
	"NOR": "NO",
	"SFO": "SF",
	"TAM": "TB",
}

var knownTeams = func() map[string]bool {
	m := make(map[string]bool, len(TeamAbbreviations))
	for _, abbr := range TeamAbbreviations {
		m[abbr] = true
	}
	return m
}()

// NormalizeTeamAbbr uppercases and aliases a team abbreviation. Empty input
// becomes "?", and unknown abbreviations pass through unchanged.
func NormalizeTeamAbbr(abbr string) string {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if abbr == "" {
		return "?"
	}
	if knownTeams[abbr] {
		return abbr
	}
	if alias, ok := teamAliases[abbr]; ok {
		return alias
	}
	return abbr
}

// IsNFLTeam reports whether abbr, after aliasing, is in the catalog.
func IsNFLTeam(abbr string) bool {
	return knownTeams[NormalizeTeamAbbr(abbr)]
}

// Position types used by the arrest roll-up.
const (
	PositionTypeDefense      = "D"
	PositionTypeOffense      = "O"
	PositionTypeSpecialTeams = "S"
	PositionTypeLine         = "L"
	PositionTypeCoach        = "C"
)

var positionTypes = map[string]string{
	"C": PositionTypeDefense, "CB": PositionTypeDefense, "DB": PositionTypeDefense,
	"DE": PositionTypeDefense, "DE/DT": PositionTypeDefense, "DT": PositionTypeDefense,
	"LB": PositionTypeDefense, "S": PositionTypeDefense, "Safety": PositionTypeDefense,
	"FB": PositionTypeOffense, "QB": PositionTypeOffense, "RB": PositionTypeOffense,
	"TE": PositionTypeOffense, "WR": PositionTypeOffense,
	"K": PositionTypeSpecialTeams, "P": PositionTypeSpecialTeams,
	"OG": PositionTypeLine, "OL": PositionTypeLine, "OT": PositionTypeLine,
	"OC": PositionTypeCoach,
}

// PositionType classifies a source position. Unknown positions return "".
func PositionType(position string) string {
	return positionTypes[position]
}
