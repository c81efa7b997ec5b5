package snapshot

import (
	"fmt"
	"path"
)

const (
	featureDir       = "feature_data"
	metricsDir       = "metrics_data"
	playoffProbsFile = "playoff_probs_data.json"
)

// LeagueDir is the league's root key: <season>/<platform>/<league_id>.
func LeagueDir(season int, platform, leagueID string) string {
	return path.Join(fmt.Sprint(season), platform, leagueID)
}

// WeekDir is week_<W> under the league dir.
func WeekDir(leagueDir string, week int) string {
	return path.Join(leagueDir, fmt.Sprintf("week_%d", week))
}

// LeaguePath is the league snapshot for a week.
func LeaguePath(leagueDir, leagueID string, week int) string {
	return path.Join(WeekDir(leagueDir, week), leagueID+".json")
}

// FeaturePath is a per-week feature snapshot, e.g. feature_data/bad_boy.json.
func FeaturePath(leagueDir string, week int, feature string) string {
	return path.Join(WeekDir(leagueDir, week), featureDir, feature+".json")
}

// PlayoffProbsPath is the simulator result for a week.
func PlayoffProbsPath(leagueDir string, week int) string {
	return path.Join(WeekDir(leagueDir, week), metricsDir, playoffProbsFile)
}
