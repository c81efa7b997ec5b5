package config

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stitts-dev/ffreport/internal/features"
	"github.com/stitts-dev/ffreport/internal/metrics"
	"github.com/stitts-dev/ffreport/internal/report"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownPlatform means PLATFORM is not a supported fantasy platform.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Platforms are the supported fantasy platforms.
var Platforms = []string{"espn", "yahoo", "sleeper", "fleaflicker", "cbs"}

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// League selection
	Platform              string `mapstructure:"PLATFORM"`
	LeagueID              string `mapstructure:"LEAGUE_ID"`
	Season                int    `mapstructure:"SEASON"`
	WeekForReport         int    `mapstructure:"WEEK_FOR_REPORT"`
	StartWeek             int    `mapstructure:"START_WEEK"`
	NumRegularSeasonWeeks int    `mapstructure:"NUM_REGULAR_SEASON_WEEKS"`

	// Playoffs
	NumPlayoffSlots            int   `mapstructure:"NUM_PLAYOFF_SLOTS"`
	NumPlayoffSlotsPerDivision int   `mapstructure:"NUM_PLAYOFF_SLOTS_PER_DIVISION"`
	NumPlayoffSimulations      int   `mapstructure:"NUM_PLAYOFF_SIMULATIONS"`
	PlayoffSimulationSeed      int64 `mapstructure:"PLAYOFF_SIMULATION_SEED"`
	PlayoffSimulationWorkers   int   `mapstructure:"PLAYOFF_SIMULATION_WORKERS"`
	RecalculatePlayoffProbs    bool  `mapstructure:"RECALCULATE_PLAYOFF_PROBS"`

	// Coaching efficiency
	DQCoachingEfficiency                  bool     `mapstructure:"DQ_COACHING_EFFICIENCY"`
	CoachingEfficiencyDisqualifiedTeams   []string `mapstructure:"COACHING_EFFICIENCY_DISQUALIFIED_TEAMS"`
	CoachingEfficiencyDisqualifiedPlayers []string `mapstructure:"COACHING_EFFICIENCY_DISQUALIFIED_PLAYERS"`
	BreakTies                             bool     `mapstructure:"BREAK_TIES"`

	// Feature rankings
	BadBoyRankings      bool   `mapstructure:"BAD_BOY_RANKINGS"`
	BeefRankings        bool   `mapstructure:"BEEF_RANKINGS"`
	HighRollerRankings  bool   `mapstructure:"HIGH_ROLLER_RANKINGS"`
	CrimeCategoriesFile string `mapstructure:"CRIME_CATEGORIES_FILE"`

	// Weekly wager
	WeeklyWagerEnabled     bool     `mapstructure:"WEEKLY_WAGER_ENABLED"`
	WeeklyWagerPositions   []string `mapstructure:"WEEKLY_WAGER_POSITIONS"`
	WeeklyWagerFilter      string   `mapstructure:"WEEKLY_WAGER_FILTER"`
	WeeklyWagerTarget      string   `mapstructure:"WEEKLY_WAGER_TARGET"`
	WeeklyWagerDirection   string   `mapstructure:"WEEKLY_WAGER_DIRECTION"`
	WeeklyWagerAggregation string   `mapstructure:"WEEKLY_WAGER_AGGREGATION"`
	WeeklyWagerDescription string   `mapstructure:"WEEKLY_WAGER_DESCRIPTION"`

	// Data flags
	RefreshFeatureWebData bool   `mapstructure:"REFRESH_FEATURE_WEB_DATA"`
	Offline               bool   `mapstructure:"OFFLINE"`
	SaveData              bool   `mapstructure:"SAVE_DATA"`
	DataDir               string `mapstructure:"DATA_DIR"`

	// Snapshots
	SnapshotBackend string        `mapstructure:"SNAPSHOT_BACKEND"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	SnapshotTTL     time.Duration `mapstructure:"SNAPSHOT_TTL"`

	// Scraper guard
	ScraperRateLimit        float64       `mapstructure:"SCRAPER_RATE_LIMIT"`
	ScraperBurst            int           `mapstructure:"SCRAPER_BURST"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`
	CircuitBreakerTimeout   time.Duration `mapstructure:"CIRCUIT_BREAKER_TIMEOUT"`
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`

	// Feature feeds: http(s) URLs, or paths relative to DATA_DIR
	ArrestFeed string `mapstructure:"ARREST_FEED"`
	WeightFeed string `mapstructure:"WEIGHT_FEED"`
	FineFeed   string `mapstructure:"FINE_FEED"`

	// Scheduling
	ReportSchedule string `mapstructure:"REPORT_SCHEDULE"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")

	v.SetDefault("PLATFORM", "espn")
	v.SetDefault("LEAGUE_ID", "")
	v.SetDefault("SEASON", time.Now().Year())
	v.SetDefault("WEEK_FOR_REPORT", 1)
	v.SetDefault("START_WEEK", 1)
	v.SetDefault("NUM_REGULAR_SEASON_WEEKS", 14)

	v.SetDefault("NUM_PLAYOFF_SLOTS", 6)
	v.SetDefault("NUM_PLAYOFF_SLOTS_PER_DIVISION", 1)
	v.SetDefault("NUM_PLAYOFF_SIMULATIONS", 1_000_000)
	v.SetDefault("PLAYOFF_SIMULATION_SEED", 0)
	v.SetDefault("PLAYOFF_SIMULATION_WORKERS", 0) // one per CPU
	v.SetDefault("RECALCULATE_PLAYOFF_PROBS", true)

	v.SetDefault("DQ_COACHING_EFFICIENCY", true)
	v.SetDefault("COACHING_EFFICIENCY_DISQUALIFIED_TEAMS", "")
	v.SetDefault("COACHING_EFFICIENCY_DISQUALIFIED_PLAYERS", "")
	v.SetDefault("BREAK_TIES", false)

	v.SetDefault("BAD_BOY_RANKINGS", true)
	v.SetDefault("BEEF_RANKINGS", true)
	v.SetDefault("HIGH_ROLLER_RANKINGS", true)
	v.SetDefault("CRIME_CATEGORIES_FILE", "")

	v.SetDefault("WEEKLY_WAGER_ENABLED", false)
	v.SetDefault("WEEKLY_WAGER_POSITIONS", "")
	v.SetDefault("WEEKLY_WAGER_FILTER", metrics.WagerStarter)
	v.SetDefault("WEEKLY_WAGER_TARGET", "points")
	v.SetDefault("WEEKLY_WAGER_DIRECTION", metrics.WagerMost)
	v.SetDefault("WEEKLY_WAGER_AGGREGATION", metrics.WagerIndividual)
	v.SetDefault("WEEKLY_WAGER_DESCRIPTION", "")

	v.SetDefault("REFRESH_FEATURE_WEB_DATA", false)
	v.SetDefault("OFFLINE", false)
	v.SetDefault("SAVE_DATA", true)
	v.SetDefault("DATA_DIR", "output/data")

	v.SetDefault("SNAPSHOT_BACKEND", "file")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("SNAPSHOT_TTL", "0s") // no expiry

	v.SetDefault("SCRAPER_RATE_LIMIT", 2)
	v.SetDefault("SCRAPER_BURST", 1)
	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 3)
	v.SetDefault("CIRCUIT_BREAKER_TIMEOUT", "60s")
	v.SetDefault("EXTERNAL_API_TIMEOUT", "30s")

	v.SetDefault("ARREST_FEED", "")
	v.SetDefault("WEIGHT_FEED", "")
	v.SetDefault("FINE_FEED", "")

	v.SetDefault("REPORT_SCHEDULE", "")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// comma separated lists
	config.CoachingEfficiencyDisqualifiedTeams = splitList(v.GetString("COACHING_EFFICIENCY_DISQUALIFIED_TEAMS"))
	config.CoachingEfficiencyDisqualifiedPlayers = splitList(v.GetString("COACHING_EFFICIENCY_DISQUALIFIED_PLAYERS"))
	config.WeeklyWagerPositions = splitList(strings.ToUpper(v.GetString("WEEKLY_WAGER_POSITIONS")))
	config.WeeklyWagerFilter = strings.ToLower(strings.TrimSpace(config.WeeklyWagerFilter))
	config.WeeklyWagerTarget = strings.ToLower(strings.TrimSpace(config.WeeklyWagerTarget))
	config.WeeklyWagerDirection = strings.ToLower(strings.TrimSpace(config.WeeklyWagerDirection))
	config.WeeklyWagerAggregation = strings.ToLower(strings.TrimSpace(config.WeeklyWagerAggregation))
	config.Platform = strings.ToLower(strings.TrimSpace(config.Platform))
	config.SnapshotBackend = strings.ToLower(strings.TrimSpace(config.SnapshotBackend))

	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects configurations that cannot produce a report. It runs
// before any data is loaded.
func (c *Config) Validate() error {
	known := false
	for _, p := range Platforms {
		if c.Platform == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownPlatform, c.Platform)
	}

	switch {
	case c.NumRegularSeasonWeeks < 1:
		return fmt.Errorf("%w: NUM_REGULAR_SEASON_WEEKS must be positive", ErrInvalidConfig)
	case c.WeekForReport < 1 || c.WeekForReport > c.NumRegularSeasonWeeks:
		return fmt.Errorf("%w: WEEK_FOR_REPORT %d outside [1, %d]", ErrInvalidConfig, c.WeekForReport, c.NumRegularSeasonWeeks)
	case c.StartWeek < 1 || c.StartWeek > c.WeekForReport:
		return fmt.Errorf("%w: START_WEEK %d after WEEK_FOR_REPORT %d", ErrInvalidConfig, c.StartWeek, c.WeekForReport)
	case c.NumPlayoffSlots < 1:
		return fmt.Errorf("%w: NUM_PLAYOFF_SLOTS must be positive", ErrInvalidConfig)
	case c.NumPlayoffSlotsPerDivision < 1 || c.NumPlayoffSlotsPerDivision > c.NumPlayoffSlots:
		return fmt.Errorf("%w: NUM_PLAYOFF_SLOTS_PER_DIVISION %d outside [1, %d]",
			ErrInvalidConfig, c.NumPlayoffSlotsPerDivision, c.NumPlayoffSlots)
	case c.NumPlayoffSimulations < 1:
		return fmt.Errorf("%w: NUM_PLAYOFF_SIMULATIONS must be positive", ErrInvalidConfig)
	case c.SnapshotBackend != "file" && c.SnapshotBackend != "redis":
		return fmt.Errorf("%w: SNAPSHOT_BACKEND %q must be file or redis", ErrInvalidConfig, c.SnapshotBackend)
	case c.SnapshotBackend == "redis" && c.RedisURL == "":
		return fmt.Errorf("%w: REDIS_URL is required for the redis snapshot backend", ErrInvalidConfig)
	case c.Offline && c.RefreshFeatureWebData:
		return fmt.Errorf("%w: OFFLINE and REFRESH_FEATURE_WEB_DATA are mutually exclusive", ErrInvalidConfig)
	}
	if wager := c.WagerSettings(); wager.Enabled {
		if err := wager.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// WagerSettings maps the WEEKLY_WAGER_* keys.
func (c *Config) WagerSettings() metrics.WagerSettings {
	return metrics.WagerSettings{
		Enabled:     c.WeeklyWagerEnabled,
		Positions:   c.WeeklyWagerPositions,
		Filter:      c.WeeklyWagerFilter,
		Target:      c.WeeklyWagerTarget,
		Direction:   c.WeeklyWagerDirection,
		Aggregation: c.WeeklyWagerAggregation,
		Description: c.WeeklyWagerDescription,
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ReportSettings maps the configuration onto the builder's settings.
func (c *Config) ReportSettings() report.Settings {
	return report.Settings{
		WeekForReport:              c.WeekForReport,
		NumRegularSeasonWeeks:      c.NumRegularSeasonWeeks,
		NumPlayoffSlots:            c.NumPlayoffSlots,
		NumPlayoffSlotsPerDivision: c.NumPlayoffSlotsPerDivision,
		NumPlayoffSimulations:      c.NumPlayoffSimulations,
		PlayoffSeed:                c.PlayoffSimulationSeed,
		PlayoffWorkers:             c.PlayoffSimulationWorkers,
		RecalculatePlayoffProbs:    c.RecalculatePlayoffProbs,
		DQCoachingEfficiency:       c.DQCoachingEfficiency,
		DisqualifiedTeams:          c.CoachingEfficiencyDisqualifiedTeams,
		DisqualifiedPlayers:        c.CoachingEfficiencyDisqualifiedPlayers,
		BreakTies:                  c.BreakTies,
		BadBoyRankings:             c.BadBoyRankings,
		BeefRankings:               c.BeefRankings,
		HighRollerRankings:         c.HighRollerRankings,
		WeeklyWager:                c.WagerSettings(),
		RefreshFeatureData:         c.RefreshFeatureWebData,
		Offline:                    c.Offline,
		SaveData:                   c.SaveData,
		CrimeCategoriesFile:        c.CrimeCategoriesFile,
	}
}

// GuardConfig maps the scraper guard settings for one source.
func (c *Config) GuardConfig(name string) features.GuardConfig {
	threshold := c.CircuitBreakerThreshold
	if threshold < 0 {
		threshold = 0
	}
	return features.GuardConfig{
		Name:             name,
		RequestsPerSec:   c.ScraperRateLimit,
		Burst:            c.ScraperBurst,
		FailureThreshold: uint32(threshold),
		OpenTimeout:      c.CircuitBreakerTimeout,
		FetchTimeout:     c.ExternalAPITimeout,
	}
}

// FeatureSources builds a feed source for each configured feed.
func (c *Config) FeatureSources() report.Sources {
	client := &http.Client{Timeout: c.ExternalAPITimeout}
	var s report.Sources
	if c.ArrestFeed != "" {
		s.Arrests = features.NewFeedSource(c.feedLocation(c.ArrestFeed), client)
	}
	if c.WeightFeed != "" {
		s.Weights = features.NewFeedSource(c.feedLocation(c.WeightFeed), client)
	}
	if c.FineFeed != "" {
		s.Fines = features.NewFeedSource(c.feedLocation(c.FineFeed), client)
	}
	return s
}

func (c *Config) feedLocation(feed string) string {
	if strings.HasPrefix(feed, "http://") || strings.HasPrefix(feed, "https://") {
		return feed
	}
	path := strings.TrimPrefix(feed, "file://")
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}
