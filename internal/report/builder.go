package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/features"
	"github.com/stitts-dev/ffreport/internal/metrics"
	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/internal/optimizer"
	"github.com/stitts-dev/ffreport/internal/simulator"
	"github.com/stitts-dev/ffreport/internal/snapshot"
	"github.com/stitts-dev/ffreport/pkg/logger"
)

const defaultPlayoffSimulations = 1_000_000

// Builder runs every weekly metric from the start week through the report
// week and assembles the report data.
type Builder struct {
	league    *models.League
	settings  Settings
	snapshots snapshot.Store
	sources   Sources
	leagueDir string

	calc       *metrics.Calculator
	efficiency *optimizer.CoachingEfficiency

	badBoy     *features.BadBoy
	beef       *features.Beef
	highRoller *features.HighRoller

	logger *logrus.Entry
}

func NewBuilder(league *models.League, settings Settings, snapshots snapshot.Store, sources Sources) *Builder {
	league.EnsureMaps()
	if settings.WeekForReport > 0 {
		league.WeekForReport = settings.WeekForReport
	}
	if settings.NumRegularSeasonWeeks > 0 {
		league.NumRegularSeasonWeeks = settings.NumRegularSeasonWeeks
	}
	if settings.NumPlayoffSlots > 0 {
		league.NumPlayoffSlots = settings.NumPlayoffSlots
	}
	if settings.NumPlayoffSlotsPerDivision > 0 {
		league.NumPlayoffSlotsPerDivision = settings.NumPlayoffSlotsPerDivision
	}
	if league.StartWeek == 0 {
		league.StartWeek = 1
	}
	if settings.NumPlayoffSimulations <= 0 {
		settings.NumPlayoffSimulations = defaultPlayoffSimulations
	}

	return &Builder{
		league:     league,
		settings:   settings,
		snapshots:  snapshots,
		sources:    sources,
		leagueDir:  snapshot.LeagueDir(league.Season, league.Platform, league.LeagueID),
		calc:       metrics.NewCalculator(league),
		efficiency: optimizer.NewCoachingEfficiency(league, settings.DisqualifiedPlayers),
		logger:     logger.WithComponent("report_builder").WithField("league_id", league.LeagueID),
	}
}

// seasonSeries are the per-metric weekly values used for season columns.
type seasonSeries struct {
	points     metrics.SeasonSeries
	efficiency metrics.SeasonSeries
	luck       metrics.SeasonSeries
	zScore     metrics.SeasonSeries
	power      metrics.SeasonSeries
	optimal    metrics.SeasonSeries
}

func newSeasonSeries() *seasonSeries {
	return &seasonSeries{
		points:     metrics.SeasonSeries{},
		efficiency: metrics.SeasonSeries{},
		luck:       metrics.SeasonSeries{},
		zScore:     metrics.SeasonSeries{},
		power:      metrics.SeasonSeries{},
		optimal:    metrics.SeasonSeries{},
	}
}

// Build produces the report data. Weeks are processed in order since each
// week's records build on the previous week's.
func (b *Builder) Build(ctx context.Context) (*Data, error) {
	start := time.Now()
	runID := uuid.New().String()
	week := b.league.WeekForReport
	b.logger = logger.WithRunContext(runID, b.league.LeagueID, week).WithField("component", "report_builder")

	if week < b.league.StartWeek {
		return nil, fmt.Errorf("report week %d is before start week %d", week, b.league.StartWeek)
	}
	if err := b.loadFeatures(ctx); err != nil {
		return nil, err
	}

	data := &Data{
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		Platform:      b.league.Platform,
		LeagueID:      b.league.LeagueID,
		LeagueName:    b.league.Name,
		Season:        b.league.Season,
		StartWeek:     b.league.StartWeek,
		WeekForReport: week,
	}

	series := newSeasonSeries()
	var weeklyPositions []map[string][]metrics.PositionPoints
	for w := b.league.StartWeek; w <= week; w++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wd, err := b.buildWeek(w, series)
		if err != nil {
			return nil, err
		}
		weeklyPositions = append(weeklyPositions, wd.PointsByPosition)
		data.Weeks = append(data.Weeks, *wd)
	}

	b.addSeasonColumns(data.ReportWeek(), series)
	data.SeasonPointsByPosition = metrics.SeasonPointsByPosition(weeklyPositions)

	probs, err := b.playoffProbabilities(ctx)
	if err != nil {
		return nil, err
	}
	if probs != nil {
		data.PlayoffProbabilities = probs
		table := probs.Table()
		data.PlayoffTable = &table
	}
	if b.badBoy != nil {
		data.CrimeCategories = b.badBoy.SeenCategories()
	}

	b.logger.WithFields(logrus.Fields{
		"weeks":    len(data.Weeks),
		"duration": time.Since(start).String(),
	}).Info("Report data built")
	return data, nil
}

// BadBoy exposes the loaded bad boy store, nil when disabled.
func (b *Builder) BadBoy() *features.BadBoy {
	return b.badBoy
}

func (b *Builder) featureOptions() features.Options {
	return features.Options{
		Week:      b.league.WeekForReport,
		LeagueDir: b.leagueDir,
		Refresh:   b.settings.RefreshFeatureData,
		SaveData:  b.settings.SaveData,
		Offline:   b.settings.Offline,
	}
}

// loadFeatures builds the enabled feature stores. A store with no source
// and no snapshot is skipped with a warning unless the run is offline.
func (b *Builder) loadFeatures(ctx context.Context) error {
	opts := b.featureOptions()

	if b.settings.BadBoyRankings {
		store, err := features.NewBadBoy(ctx, features.BadBoyOptions{
			Options:             opts,
			CrimeCategoriesFile: b.settings.CrimeCategoriesFile,
		}, b.snapshots, b.sources.Arrests)
		if err = b.featureErr(features.BadBoyFeature, b.sources.Arrests == nil, err); err != nil {
			return err
		}
		b.badBoy = store
	}
	if b.settings.BeefRankings {
		store, err := features.NewBeef(ctx, opts, b.snapshots, b.sources.Weights)
		if err = b.featureErr(features.BeefFeature, b.sources.Weights == nil, err); err != nil {
			return err
		}
		b.beef = store
	}
	if b.settings.HighRollerRankings {
		store, err := features.NewHighRoller(ctx, features.HighRollerOptions{
			Options: opts,
			Season:  b.league.Season,
		}, b.snapshots, b.sources.Fines)
		if err = b.featureErr(features.HighRollerFeature, b.sources.Fines == nil, err); err != nil {
			return err
		}
		b.highRoller = store
	}
	return nil
}

func (b *Builder) featureErr(name string, noSource bool, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, features.ErrSnapshotMissing) && noSource && !b.settings.Offline {
		b.logger.WithError(err).WithField("feature", name).Warn("No source or saved data for feature; skipping its rankings")
		return nil
	}
	return fmt.Errorf("failed to load %s feature: %w", name, err)
}

func (b *Builder) buildWeek(week int, series *seasonSeries) (*WeekData, error) {
	log := b.logger.WithField("week", week)
	results, err := b.league.CustomWeeklyMatchups(week)
	if err != nil {
		return nil, err
	}

	b.calc.CalculateRecords(week, results)
	b.calc.CalculateLuck(week, results)

	wd := &WeekData{Week: week}
	if b.league.HasMedianMatchup {
		median, _ := b.calc.CalculateMedianRecords(week)
		wd.MedianScore = &median
	}

	for _, warning := range b.league.RosterWarnings(week) {
		log.Warn(warning)
		wd.Warnings = append(wd.Warnings, warning)
	}

	inactive := b.inactivePlayers(week)
	for _, team := range b.league.Teams(week) {
		if warning := b.addTeamStats(week, team, inactive); warning != "" {
			wd.Warnings = append(wd.Warnings, warning)
		}
	}

	wd.Standings = b.calc.StandingsTable(week)
	if b.league.HasDivisions {
		div := b.calc.DivisionStandings(week)
		wd.DivisionStandings = &div
	}
	if b.league.HasMedianMatchup {
		median := b.calc.MedianStandings(week)
		wd.MedianStandings = &median
	}

	wd.Score = b.calc.ScoreRankings(week, b.settings.BreakTies)
	wd.CoachingEfficiency = b.calc.CoachingEfficiencyRankings(week, b.settings.BreakTies)
	wd.Luck = b.calc.LuckRankings(week)
	wd.Optimal = b.calc.OptimalRankings(week)
	var power map[string]float64
	wd.PowerRanking, power = b.calc.PowerRankings(week, wd.Score, wd.CoachingEfficiency, wd.Luck)

	zScores := b.calc.ZScores(week)
	if table, ok := b.calc.ZScoreRankings(week, zScores); ok {
		wd.ZScore = &table
	}
	if b.badBoy != nil {
		table := b.calc.BadBoyRankings(week)
		wd.BadBoy = &table
	}
	if b.beef != nil {
		table := b.calc.BeefRankings(week)
		wd.Beef = &table
	}
	if b.highRoller != nil {
		table := b.calc.HighRollerRankings(week)
		wd.HighRoller = &table
	}
	wager, err := b.calc.WeeklyWager(week, b.settings.WeeklyWager)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate weekly wager: %w", err)
	}
	if wager != nil {
		table := wager.Table()
		wd.WeeklyWager, wd.WeeklyWagerTable = wager, &table
	}

	wd.PointsByPosition = b.calc.PointsByPosition(week)
	wd.Highlights = b.calc.Highlights(week)

	for _, team := range b.league.Teams(week) {
		id := team.TeamID
		series.points.AppendValue(id, team.Points)
		if team.CoachingEfficiency.DQ {
			series.efficiency.Append(id, nil)
		} else {
			series.efficiency.AppendValue(id, team.CoachingEfficiency.Value)
		}
		series.luck.AppendValue(id, team.Luck)
		series.zScore.Append(id, zScores[id])
		series.power.AppendValue(id, power[id])
		series.optimal.AppendValue(id, team.OptimalPoints)
	}

	log.WithField("teams", b.league.NumTeams(week)).Debug("Week metrics calculated")
	return wd, nil
}

// inactivePlayers collects the ids of players with an inactive status.
func (b *Builder) inactivePlayers(week int) map[string]bool {
	out := map[string]bool{}
	for id, p := range b.league.PlayersByWeek[week] {
		if models.InactiveStatuses[p.Status] {
			out[id] = true
		}
	}
	return out
}

func (b *Builder) addSeasonColumns(wd *WeekData, series *seasonSeries) {
	if wd == nil {
		return
	}
	metrics.AddSeasonAverages(&wd.Score, series.points, metrics.SeasonAverageOptions{Column: "Season Avg. Points"})
	metrics.AddSeasonAverages(&wd.CoachingEfficiency, series.efficiency, metrics.SeasonAverageOptions{
		Column:  "Season Avg. Coaching Efficiency",
		Percent: true,
	})
	metrics.AddSeasonAverages(&wd.Luck, series.luck, metrics.SeasonAverageOptions{Column: "Season Avg. Luck", Percent: true})
	metrics.AddSeasonAverages(&wd.PowerRanking, series.power, metrics.SeasonAverageOptions{
		Column:    "Season Avg. Power Rank",
		Ascending: true,
	})
	metrics.AddSeasonAverages(&wd.Optimal, series.optimal, metrics.SeasonAverageOptions{
		Column: "Season Total Optimal Points",
		Total:  true,
	})
	if wd.ZScore != nil {
		metrics.AddSeasonAverages(wd.ZScore, series.zScore, metrics.SeasonAverageOptions{Column: "Season Avg. Z-Score"})
	}
}

// remainingMatchups lists the unplayed regular season pairs after the
// report week.
func (b *Builder) remainingMatchups() map[int][][2]string {
	out := map[int][][2]string{}
	for w := b.league.WeekForReport + 1; w <= b.league.NumRegularSeasonWeeks; w++ {
		matchups, ok := b.league.MatchupsByWeek[w]
		if !ok {
			b.logger.WithField("week", w).Warn("No schedule for remaining week; it is left out of playoff simulations")
			continue
		}
		for _, m := range matchups {
			out[w] = append(out[w], m.TeamIDs)
		}
	}
	return out
}

func (b *Builder) playoffProbabilities(ctx context.Context) (*simulator.Result, error) {
	week := b.league.WeekForReport
	if b.league.NumPlayoffSlots <= 0 {
		b.logger.Warn("No playoff slots configured; skipping playoff probabilities")
		return nil, nil
	}
	sim := simulator.NewPlayoffSimulator(simulator.PlayoffConfig{
		NumSimulations:   b.settings.NumPlayoffSimulations,
		NumPlayoffSlots:  b.league.NumPlayoffSlots,
		NumDivisions:     b.league.NumDivisions,
		SlotsPerDivision: b.league.NumPlayoffSlotsPerDivision,
		Seed:             b.settings.PlayoffSeed,
		Workers:          b.settings.PlayoffWorkers,
		Recalculate:      b.settings.RecalculatePlayoffProbs,
		SaveData:         b.settings.SaveData,
	}, b.snapshots, b.leagueDir)

	standings := b.league.CurrentStandings
	if len(standings) == 0 {
		standings = b.calc.CurrentStandings(week)
	}
	res, err := sim.Calculate(ctx, week, week, standings, b.remainingMatchups())
	if err != nil {
		return nil, fmt.Errorf("playoff probabilities: %w", err)
	}
	return res, nil
}

// disqualifiedTeam reports whether the team name is on the manual list.
func (b *Builder) disqualifiedTeam(name string) bool {
	for _, n := range b.settings.DisqualifiedTeams {
		if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
