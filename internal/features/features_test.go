package features

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/internal/snapshot"
)

type arrestSource struct {
	arrests []Arrest
	calls   int
	err     error
}

func (s *arrestSource) Arrests(context.Context) ([]Arrest, error) {
	s.calls++
	return s.arrests, s.err
}

type weightSource []PlayerWeight

func (s weightSource) Weights(context.Context) ([]PlayerWeight, error) { return s, nil }

type fineSource []Fine

func (s fineSource) Fines(context.Context, int) ([]Fine, error) { return s, nil }

func testOptions() Options {
	return Options{Week: 4, LeagueDir: "2024/espn/1", Refresh: true}
}

func TestNormalizePlayerKey(t *testing.T) {
	tests := []struct {
		name, team, want string
	}{
		{"A.J. Brown Jr.", "PHI", "aj_brown-phi"},
		{"AJ Brown", "phi", "aj_brown-phi"},
		{"Ja'Marr  Chase", "CIN", "jamarr_chase-cin"},
		{"Odell Beckham Jr", "BAL", "odell_beckham-bal"},
		{"Kenneth Walker III", "SEA", "kenneth_walker-sea"},
		{"Ivory Ivy", "JAC", "ivory_ivy-jax"},
		{"Patrick Mahomes II", "", "patrick_mahomes-?"},
		{"Robert Griffin I", "WAS", "robert_griffin-was"},
		{"Robert Griffin III", "WSH", "robert_griffin-was"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlayerKey(tt.name, tt.team))
		})
	}
}

func TestNormalizeTeamAbbr(t *testing.T) {
	assert.Equal(t, "JAX", NormalizeTeamAbbr("jac"))
	assert.Equal(t, "LAR", NormalizeTeamAbbr("LA"))
	assert.Equal(t, "WAS", NormalizeTeamAbbr("WSH"))
	assert.Equal(t, "KC", NormalizeTeamAbbr("KC"))
	assert.Equal(t, "?", NormalizeTeamAbbr(""))
	assert.Equal(t, "FA", NormalizeTeamAbbr("FA"))
	assert.Len(t, TeamAbbreviations, 32)
	assert.True(t, IsNFLTeam("oak"))
	assert.False(t, IsNFLTeam("FA"))
}

func TestBadBoy_AccumulatesAndRollsUpDefense(t *testing.T) {
	src := &arrestSource{arrests: []Arrest{
		{FullName: "Lou Linebacker", TeamAbbr: "PHI", Position: "LB", Crime: "dui"},
		{FullName: "Lou Linebacker", TeamAbbr: "PHI", Position: "LB", Crime: "Domestic Violence"},
		{FullName: "Carl Corner", TeamAbbr: "PHI", Position: "CB", Crime: "SPEEDING"},
		{FullName: "Quinn Passer", TeamAbbr: "PHI", Position: "QB", Crime: "JAYWALKING"},
	}}
	bb, err := NewBadBoy(context.Background(), BadBoyOptions{Options: testOptions()}, snapshot.NewFileStore(t.TempDir()), src)
	require.NoError(t, err)

	assert.Equal(t, 14, bb.PlayerPoints("lou", "linebacker", "PHI", "LB"))
	assert.Equal(t, "DOMESTIC VIOLENCE", bb.PlayerCrime("Lou", "Linebacker", "PHI", "LB"))
	assert.Equal(t, 0, bb.PlayerNumOffenders("Lou", "Linebacker", "PHI", "LB"))

	// unknown categories score zero
	assert.Equal(t, 0, bb.PlayerPoints("Quinn", "Passer", "PHI", "QB"))
	assert.Equal(t, "", bb.PlayerCrime("Quinn", "Passer", "PHI", "QB"))

	roll, ok := bb.Record("PHI")
	require.True(t, ok)
	assert.Equal(t, 15, roll.BadBoyPointsTotal)
	assert.Equal(t, []string{"Carl Corner", "Lou Linebacker"}, roll.Offenders)
	assert.Equal(t, 2, roll.OffendersCount)
	assert.Equal(t, "DOMESTIC VIOLENCE", roll.WorstOffense)

	// defenses are excluded from lookups
	assert.Equal(t, 0, bb.PlayerPoints("Philadelphia", "", "PHI", models.PositionDS))

	seen := bb.SeenCategories()
	assert.Equal(t, 0, seen["JAYWALKING"])
	assert.Equal(t, 4, seen["DUI"])
}

func TestBadBoy_CrimeCategoriesOutput(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "crime_categories.json")
	require.NoError(t, os.WriteFile(override, []byte(`{"loitering": 9}`), 0o644))

	src := &arrestSource{arrests: []Arrest{
		{FullName: "Pat Punter", TeamAbbr: "NYG", Position: "P", Crime: "Loitering"},
		{FullName: "Pat Punter", TeamAbbr: "NYG", Position: "P", Crime: "DUI"},
	}}
	opts := BadBoyOptions{Options: testOptions(), CrimeCategoriesFile: override}
	bb, err := NewBadBoy(context.Background(), opts, snapshot.NewFileStore(dir), src)
	require.NoError(t, err)
	assert.Equal(t, 9, bb.PlayerPoints("Pat", "Punter", "NYG", "P"))

	out, err := bb.CrimeCategoriesOutput("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, CrimeCategoriesOutputFile), out)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"LOITERING": 9, "DUI": 0}`, string(raw))
}

func TestStore_OfflineWithoutSnapshot(t *testing.T) {
	store := snapshot.NewFileStore(t.TempDir())
	opts := testOptions()
	opts.Offline = true

	_, err := NewBeef(context.Background(), opts, store, weightSource{{FullName: "A B", TeamAbbr: "KC", Weight: 250}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSnapshotMissing))
	assert.True(t, errors.Is(err, snapshot.ErrNotFound))
	assert.Contains(t, err.Error(), store.Locate(snapshot.FeaturePath(opts.LeagueDir, opts.Week, BeefFeature)))
}

func TestStore_SaveThenLoadOffline(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewFileStore(t.TempDir())
	src := &arrestSource{arrests: []Arrest{{FullName: "Dan End", TeamAbbr: "DAL", Position: "DE", Crime: "THEFT"}}}

	opts := testOptions()
	opts.SaveData = true
	_, err := NewBadBoy(ctx, BadBoyOptions{Options: opts}, store, src)
	require.NoError(t, err)

	opts.Offline, opts.Refresh = true, false
	bb, err := NewBadBoy(ctx, BadBoyOptions{Options: opts}, store, src)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 5, bb.PlayerPoints("Dan", "End", "DAL", "DE"))
	assert.Equal(t, 5, bb.SeenCategories()["THEFT"])
}

func TestStore_FetchesWhenSnapshotAbsent(t *testing.T) {
	src := &arrestSource{}
	opts := testOptions()
	opts.Refresh = false
	bb, err := NewBadBoy(context.Background(), BadBoyOptions{Options: opts}, snapshot.NewFileStore(t.TempDir()), src)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 0, bb.Len())
}

func TestStore_SourceError(t *testing.T) {
	src := &arrestSource{err: errors.New("site down")}
	_, err := NewBadBoy(context.Background(), BadBoyOptions{Options: testOptions()}, snapshot.NewFileStore(t.TempDir()), src)
	assert.ErrorContains(t, err, "site down")
}

func TestMissingPlayerReturnsZeroValues(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewFileStore(t.TempDir())
	bb, err := NewBadBoy(ctx, BadBoyOptions{Options: testOptions()}, store, &arrestSource{arrests: []Arrest{
		{FullName: "John Doe", TeamAbbr: "XYZ", Position: "QB", Crime: "DUI"},
	}})
	require.NoError(t, err)
	hr, err := NewHighRoller(ctx, HighRollerOptions{Options: testOptions()}, store, fineSource{})
	require.NoError(t, err)

	assert.Equal(t, 0, bb.PlayerPoints("Jane", "Doe", "XYZ", "QB"))
	assert.Equal(t, "", bb.PlayerCrime("Jane", "Doe", "XYZ", "QB"))
	assert.Equal(t, "", hr.PlayerWorstViolation("Jane", "Doe", "XYZ", "QB"))
	assert.Equal(t, 0.0, hr.PlayerFinesTotal("Jane", "Doe", "XYZ", "QB"))
	assert.Contains(t, bb.store.closest(NormalizePlayerKey("Jane Doe", "XYZ")), "john_doe-xyz")
}

func TestBeef_TabbuAndDefenseRollUp(t *testing.T) {
	src := weightSource{
		{FullName: "Big Tackle", TeamAbbr: "DET", Position: "DT", FantasyPositions: []string{"DL"}, Weight: 330},
		{FullName: "Fast Safety", TeamAbbr: "DET", Position: "S", FantasyPositions: []string{"DB"}, Weight: 205},
		{FullName: "Jared Goff", TeamAbbr: "DET", Position: "QB", FantasyPositions: []string{"QB"}, Weight: 217},
		{FullName: "A.J. Brown", TeamAbbr: "PHI", Position: "WR", FantasyPositions: []string{"WR"}, Weight: 226},
		{FullName: "AJ Brown", TeamAbbr: "PHI", Position: "WR", FantasyPositions: []string{"WR"}, Weight: 199},
	}
	beef, err := NewBeef(context.Background(), testOptions(), snapshot.NewFileStore(t.TempDir()), src)
	require.NoError(t, err)

	assert.Equal(t, 330, beef.PlayerWeight("Big", "Tackle", "DET", "DT"))
	assert.Equal(t, 0.66, beef.PlayerTabbu("Big", "Tackle", "DET", "DT"))
	assert.Equal(t, 0.434, beef.PlayerTabbu("Jared", "Goff", "DET", "QB"))

	assert.Equal(t, 535, beef.PlayerWeight("Detroit", "", "DET", models.PositionDS))
	assert.Equal(t, 1.07, beef.PlayerTabbu("Detroit", "", "DET", models.PositionDS))

	// first listing wins a key collision
	assert.Equal(t, 226, beef.PlayerWeight("AJ", "Brown", "PHI", "WR"))
	assert.Equal(t, 226, beef.PlayerWeight("A.J.", "Brown Jr.", "PHI", "WR"))
}

func TestHighRoller_WorstViolation(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 9, d, 0, 0, 0, 0, time.UTC) }
	src := fineSource{
		{FullName: "Rowdy Receiver", TeamAbbr: "MIA", Position: "WR", Violation: "Uniform", Amount: 5000, Date: day(1)},
		{FullName: "Rowdy Receiver", TeamAbbr: "MIA", Position: "WR", Violation: "Taunting", Amount: 14000, Date: day(8)},
		{FullName: "Rowdy Receiver", TeamAbbr: "MIA", Position: "WR", Violation: "Unsportsmanlike", Amount: 14000, Date: day(15)},
		{FullName: "Hard Hitter", TeamAbbr: "MIA", Position: "LB", Violation: "Roughness", Amount: 20000, Date: day(2)},
	}
	hr, err := NewHighRoller(context.Background(), HighRollerOptions{Options: testOptions(), Season: 2024}, snapshot.NewFileStore(t.TempDir()), src)
	require.NoError(t, err)

	assert.Equal(t, "Unsportsmanlike", hr.PlayerWorstViolation("Rowdy", "Receiver", "MIA", "WR"))
	assert.Equal(t, 14000.0, hr.PlayerWorstViolationFine("Rowdy", "Receiver", "MIA", "WR"))
	assert.Equal(t, 33000.0, hr.PlayerFinesTotal("Rowdy", "Receiver", "MIA", "WR"))
	assert.Equal(t, 0, hr.PlayerNumViolators("Rowdy", "Receiver", "MIA", "WR"))

	roll, ok := hr.store.Get("MIA")
	require.True(t, ok)
	assert.Equal(t, 53000.0, roll.FinesTotal)
	assert.Equal(t, "Roughness", roll.WorstViolation)
	assert.Equal(t, 2, roll.ViolatorsCount)
	assert.Equal(t, 4, roll.FinesCount)

	// defenses are excluded from lookups
	assert.Equal(t, 0, hr.PlayerNumViolators("Miami", "", "MIA", models.PositionDS))
}

func TestGuardedSource_TripsBreaker(t *testing.T) {
	guard := NewGuardedSource(GuardConfig{Name: "arrests", RequestsPerSec: 1000, Burst: 10, FailureThreshold: 2, OpenTimeout: time.Minute})
	src := &arrestSource{err: errors.New("boom")}
	guarded := guard.Arrests(src)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := guarded.Arrests(ctx)
		assert.ErrorContains(t, err, "boom")
	}
	assert.Equal(t, gobreaker.StateOpen, guard.State())

	_, err := guarded.Arrests(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, src.calls)
}

func TestGuardedSource_PassesThrough(t *testing.T) {
	guard := NewGuardedSource(GuardConfig{RequestsPerSec: 1000, Burst: 10})
	weights, err := guard.Weights(weightSource{{FullName: "A B", Weight: 200}}).Weights(context.Background())
	require.NoError(t, err)
	assert.Len(t, weights, 1)

	fines, err := guard.Fines(fineSource{}).Fines(context.Background(), 2024)
	require.NoError(t, err)
	assert.Empty(t, fines)
}

func TestGuardedSource_ContextCancelled(t *testing.T) {
	guard := NewGuardedSource(GuardConfig{RequestsPerSec: 0.001, Burst: 1})
	ctx, cancel := context.WithCancel(context.Background())
	guarded := guard.Arrests(&arrestSource{})
	_, err := guarded.Arrests(ctx)
	require.NoError(t, err)

	cancel()
	_, err = guarded.Arrests(ctx)
	assert.Error(t, err)
}
