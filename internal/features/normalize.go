package features

import "strings"

var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "i": true, "ii": true, "iii": true, "iv": true, "v": true,
}

var namePunctuation = strings.NewReplacer(".", "", "'", "", "’", "", ",", "")

// NormalizePlayerKey builds the feature store key for a player:
// lowercase name tokens without punctuation or trailing generational
// suffixes, joined by "_", then "-" and the lowercased team abbreviation.
// "A.J. Brown Jr." on PHI becomes "aj_brown-phi".
func NormalizePlayerKey(fullName, teamAbbr string) string {
	tokens := strings.Fields(strings.ToLower(namePunctuation.Replace(fullName)))
	for len(tokens) > 1 && nameSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, "_") + "-" + strings.ToLower(NormalizeTeamAbbr(teamAbbr))
}

// fullName joins first and last with a single space, skipping blanks.
func fullName(first, last string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(first+" "+last), " "))
}
