package report

import (
	"context"
	"fmt"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/internal/snapshot"
)

// LoadLeague reads the league snapshot written by a platform adapter for
// the given week.
func LoadLeague(ctx context.Context, store snapshot.Store, season int, platform, leagueID string, week int) (*models.League, error) {
	key := snapshot.LeaguePath(snapshot.LeagueDir(season, platform, leagueID), leagueID, week)
	league := &models.League{}
	if err := store.Load(ctx, key, league); err != nil {
		return nil, fmt.Errorf("failed to load league %s: %w", leagueID, err)
	}
	league.EnsureMaps()
	if league.Platform == "" {
		league.Platform = platform
	}
	if league.Season == 0 {
		league.Season = season
	}
	return league, nil
}

// SaveLeague writes the league snapshot for its report week.
func SaveLeague(ctx context.Context, store snapshot.Store, league *models.League) error {
	dir := snapshot.LeagueDir(league.Season, league.Platform, league.LeagueID)
	key := snapshot.LeaguePath(dir, league.LeagueID, league.WeekForReport)
	if err := store.Save(ctx, key, league); err != nil {
		return fmt.Errorf("failed to save league %s: %w", league.LeagueID, err)
	}
	return nil
}
