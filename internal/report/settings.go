package report

import (
	"github.com/stitts-dev/ffreport/internal/features"
	"github.com/stitts-dev/ffreport/internal/metrics"
)

// Settings are the per-run options the builder consumes. Zero league
// fields fall back to the values carried on the league snapshot.
type Settings struct {
	WeekForReport              int
	NumRegularSeasonWeeks      int
	NumPlayoffSlots            int
	NumPlayoffSlotsPerDivision int

	NumPlayoffSimulations   int
	PlayoffSeed             int64
	PlayoffWorkers          int
	RecalculatePlayoffProbs bool

	DQCoachingEfficiency bool
	DisqualifiedTeams    []string
	DisqualifiedPlayers  []string
	BreakTies            bool

	BadBoyRankings     bool
	BeefRankings       bool
	HighRollerRankings bool
	WeeklyWager        metrics.WagerSettings

	RefreshFeatureData  bool
	Offline             bool
	SaveData            bool
	CrimeCategoriesFile string
}

// Sources are the scraper collaborators behind the feature stores. A nil
// source means the feature can only come from a saved snapshot.
type Sources struct {
	Arrests features.ArrestSource
	Weights features.WeightSource
	Fines   features.FineSource
}
