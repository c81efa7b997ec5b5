package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/internal/snapshot"
	"github.com/stitts-dev/ffreport/pkg/logger"
)

var (
	// ErrTooManyDivisionQualifiers means division leaders plus qualifiers
	// exceed the playoff field.
	ErrTooManyDivisionQualifiers = errors.New("division leaders and qualifiers exceed playoff slots")
	// ErrSnapshotMissing means a saved result was required but absent.
	ErrSnapshotMissing = errors.New("playoff probabilities snapshot missing")
)

const (
	defaultChunks = 64
	// pointsDivisor folds points for into the wins key as a tiebreak.
	pointsDivisor = 1e6
)

// PlayoffConfig controls a simulation run. Results depend only on Seed,
// NumSimulations and Chunks; Workers changes speed, not output.
type PlayoffConfig struct {
	NumSimulations   int
	NumPlayoffSlots  int
	NumDivisions     int
	SlotsPerDivision int
	Seed             int64
	Workers          int
	Chunks           int
	Recalculate      bool
	SaveData         bool
}

// TeamProbability is one team's simulated playoff outlook.
type TeamProbability struct {
	TeamID            string  `json:"team_id"`
	Name              string  `json:"name"`
	Managers          string  `json:"managers"`
	Division          string  `json:"division,omitempty"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	Ties              int     `json:"ties"`
	PointsFor         float64 `json:"points_for"`
	DivisionWins      int     `json:"division_wins"`
	DivisionLosses    int     `json:"division_losses"`
	DivisionTies      int     `json:"division_ties"`
	DivisionPointsFor float64 `json:"division_points_for"`

	PlayoffTally           int   `json:"playoff_tally"`
	PlayoffStats           []int `json:"playoff_stats"`
	DivisionLeaderTally    int   `json:"division_leader_tally"`
	DivisionQualifierTally int   `json:"division_qualifier_tally"`

	PlayoffChance              float64   `json:"playoff_chance"`
	PlayoffStatsPercent        []float64 `json:"playoff_stats_percent"`
	NeededWins                 int       `json:"needed_wins"`
	PredictedDivisionLeader    bool      `json:"predicted_division_leader"`
	PredictedDivisionQualifier bool      `json:"predicted_division_qualifier"`
}

// Result is the persisted outcome of a simulation run. Teams keep the
// standings order they were given.
type Result struct {
	Week            int                `json:"week"`
	Simulations     int                `json:"simulations"`
	Seed            int64              `json:"seed"`
	NumPlayoffSlots int                `json:"num_playoff_slots"`
	HasDivisions    bool               `json:"has_divisions"`
	LastSlotWins    float64            `json:"last_slot_avg_wins"`
	Teams           []*TeamProbability `json:"teams"`
}

// Team returns the entry for teamID, or nil.
func (r *Result) Team(teamID string) *TeamProbability {
	for _, t := range r.Teams {
		if t.TeamID == teamID {
			return t
		}
	}
	return nil
}

// PlayoffSimulator runs Monte Carlo playoff simulations over the remaining
// regular season.
type PlayoffSimulator struct {
	config    PlayoffConfig
	store     snapshot.Store
	leagueDir string
	logger    *logrus.Entry
}

func NewPlayoffSimulator(config PlayoffConfig, store snapshot.Store, leagueDir string) *PlayoffSimulator {
	if config.Chunks <= 0 {
		config.Chunks = defaultChunks
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &PlayoffSimulator{
		config:    config,
		store:     store,
		leagueDir: leagueDir,
		logger:    logger.WithComponent("playoff_simulator"),
	}
}

// Calculate simulates the rest of the season from the given standings.
// Only the report week is supported; any other week returns nil. With
// Recalculate unset the saved result is loaded instead and must exist.
func (s *PlayoffSimulator) Calculate(
	ctx context.Context,
	week, weekForReport int,
	standings []*models.Team,
	remaining map[int][][2]string,
) (*Result, error) {
	if week != weekForReport {
		s.logger.WithField("week", week).Debug("Playoff probabilities are only calculated for the report week")
		return nil, nil
	}
	key := snapshot.PlayoffProbsPath(s.leagueDir, week)

	if !s.config.Recalculate {
		var res Result
		if err := s.store.Load(ctx, key, &res); err != nil {
			if errors.Is(err, snapshot.ErrNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrSnapshotMissing, err)
			}
			return nil, fmt.Errorf("failed to load playoff probabilities: %w", err)
		}
		s.logger.WithField("path", s.store.Locate(key)).Info("Using saved playoff simulations")
		return &res, nil
	}

	res, err := s.simulate(ctx, week, standings, remaining)
	if err != nil {
		return nil, err
	}
	if s.config.SaveData && s.store != nil {
		if err := s.store.Save(ctx, key, res); err != nil {
			return nil, fmt.Errorf("failed to save playoff probabilities: %w", err)
		}
	}
	return res, nil
}

// league is the read-only trial input shared by every worker.
type league struct {
	teams        []*TeamProbability
	matchups     [][2]int
	sameDivision []bool
	divisions    [][]int
	slots        int
	perDivision  int
}

// tally accumulates the counters of one chunk of trials.
type tally struct {
	playoff   []int
	stats     [][]int
	leader    []int
	qualifier []int
	slotWins  []int64
}

func newTally(teams, slots int) *tally {
	t := &tally{
		playoff:   make([]int, teams),
		stats:     make([][]int, teams),
		leader:    make([]int, teams),
		qualifier: make([]int, teams),
		slotWins:  make([]int64, slots),
	}
	for i := range t.stats {
		t.stats[i] = make([]int, slots)
	}
	return t
}

func (t *tally) add(o *tally) {
	for i := range t.playoff {
		t.playoff[i] += o.playoff[i]
		t.leader[i] += o.leader[i]
		t.qualifier[i] += o.qualifier[i]
		for p := range t.stats[i] {
			t.stats[i][p] += o.stats[i][p]
		}
	}
	for p := range t.slotWins {
		t.slotWins[p] += o.slotWins[p]
	}
}

func (s *PlayoffSimulator) simulate(ctx context.Context, week int, standings []*models.Team, remaining map[int][][2]string) (*Result, error) {
	lg, err := s.prepare(standings, remaining)
	if err != nil {
		return nil, err
	}
	n := s.config.NumSimulations
	if n <= 0 {
		return nil, fmt.Errorf("simulation count must be positive")
	}

	s.logger.WithFields(logrus.Fields{
		"simulations": n,
		"chunks":      s.config.Chunks,
		"workers":     s.config.Workers,
	}).Info("Running Monte Carlo playoff simulations")
	start := time.Now()

	chunks := make([]*tally, s.config.Chunks)
	jobs := make(chan int, s.config.Chunks)
	for i := 0; i < s.config.Chunks; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < s.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				if ctx.Err() != nil {
					return
				}
				from := n * chunk / s.config.Chunks
				to := n * (chunk + 1) / s.config.Chunks
				rng := rand.New(rand.NewSource(s.config.Seed + int64(chunk)))
				chunks[chunk] = lg.run(rng, to-from)
			}
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := newTally(len(lg.teams), s.config.NumPlayoffSlots)
	for _, c := range chunks {
		total.add(c)
	}

	res := s.summarize(week, lg, total)
	s.logger.WithFields(logrus.Fields{
		"simulations": n,
		"duration":    time.Since(start),
	}).Info("Playoff simulations completed")
	return res, nil
}

func (s *PlayoffSimulator) prepare(standings []*models.Team, remaining map[int][][2]string) (*league, error) {
	if s.config.NumPlayoffSlots <= 0 {
		return nil, fmt.Errorf("playoff slots must be positive, got %d", s.config.NumPlayoffSlots)
	}
	lg := &league{slots: s.config.NumPlayoffSlots, perDivision: s.config.SlotsPerDivision}
	index := make(map[string]int, len(standings))
	for i, team := range standings {
		rec := team.Record
		if rec == nil {
			rec = models.NewRecord(team.Week, team.TeamID, team.Name)
		}
		lg.teams = append(lg.teams, &TeamProbability{
			TeamID:            team.TeamID,
			Name:              team.Name,
			Managers:          team.ManagerString(),
			Division:          team.Division,
			Wins:              rec.Wins,
			Losses:            rec.Losses,
			Ties:              rec.Ties,
			PointsFor:         rec.PointsFor,
			DivisionWins:      rec.DivisionWins,
			DivisionLosses:    rec.DivisionLosses,
			DivisionTies:      rec.DivisionTies,
			DivisionPointsFor: rec.DivisionPointsFor,
		})
		index[team.TeamID] = i
	}

	weeks := make([]int, 0, len(remaining))
	for w := range remaining {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	divisional := s.config.NumDivisions > 0
	for _, w := range weeks {
		for _, pair := range remaining[w] {
			a, okA := index[pair[0]]
			b, okB := index[pair[1]]
			if !okA || !okB {
				return nil, fmt.Errorf("week %d remaining matchup %s vs %s references unknown team", w, pair[0], pair[1])
			}
			lg.matchups = append(lg.matchups, [2]int{a, b})
			da, db := lg.teams[a].Division, lg.teams[b].Division
			lg.sameDivision = append(lg.sameDivision, divisional && da != "" && da == db)
		}
	}

	if divisional {
		byDivision := make(map[string][]int)
		for i, t := range lg.teams {
			byDivision[t.Division] = append(byDivision[t.Division], i)
		}
		names := make([]string, 0, len(byDivision))
		for d := range byDivision {
			names = append(names, d)
		}
		sort.Strings(names)
		reserved := 0
		for _, d := range names {
			members := byDivision[d]
			lg.divisions = append(lg.divisions, members)
			// every division places its leader even with no per-division slots
			reserved += 1 + maxInt(0, minInt(s.config.SlotsPerDivision-1, len(members)-1))
		}
		if reserved > s.config.NumPlayoffSlots {
			return nil, fmt.Errorf("%w: %d divisions with %d slots each need %d of %d playoff slots",
				ErrTooManyDivisionQualifiers, len(names), s.config.SlotsPerDivision, reserved, s.config.NumPlayoffSlots)
		}
	}
	return lg, nil
}

// run plays trials coin-flip trials and tallies the resulting fields.
func (lg *league) run(rng *rand.Rand, trials int) *tally {
	n := len(lg.teams)
	t := newTally(n, lg.slots)
	wins := make([]int, n)
	losses := make([]int, n)
	divWins := make([]int, n)
	divLosses := make([]int, n)
	order := make([]int, 0, n)
	rest := make([]int, 0, n)

	key := func(i int) float64 { return float64(wins[i]) + lg.teams[i].PointsFor/pointsDivisor }
	byKey := func(idx []int) {
		sort.SliceStable(idx, func(a, b int) bool { return key(idx[a]) > key(idx[b]) })
	}
	place := func(team, slot int) {
		t.playoff[team]++
		t.stats[team][slot]++
		t.slotWins[slot] += int64(math.Round(key(team)))
	}

	for trial := 0; trial < trials; trial++ {
		for i, team := range lg.teams {
			wins[i], losses[i] = team.Wins, team.Losses
			divWins[i], divLosses[i] = team.DivisionWins, team.DivisionLosses
		}
		for m, pair := range lg.matchups {
			winner, loser := pair[0], pair[1]
			if rng.Intn(2) == 0 {
				winner, loser = loser, winner
			}
			wins[winner]++
			losses[loser]++
			if lg.sameDivision[m] {
				divWins[winner]++
				divLosses[loser]++
			}
		}

		if len(lg.divisions) == 0 {
			order = order[:0]
			for i := 0; i < n; i++ {
				order = append(order, i)
			}
			byKey(order)
			for slot := 0; slot < lg.slots && slot < n; slot++ {
				place(order[slot], slot)
			}
			continue
		}

		var leaders, qualifiers []int
		rest = rest[:0]
		for _, members := range lg.divisions {
			ranked := append([]int(nil), members...)
			sort.SliceStable(ranked, func(a, b int) bool {
				return lg.divisionBefore(ranked[a], ranked[b], key, losses, divWins, divLosses)
			})
			leaders = append(leaders, ranked[0])
			for j, team := range ranked[1:] {
				if j < lg.perDivision-1 {
					qualifiers = append(qualifiers, team)
				} else {
					rest = append(rest, team)
				}
			}
		}
		byKey(leaders)
		byKey(qualifiers)
		byKey(rest)

		slot := 0
		for _, team := range leaders {
			place(team, slot)
			t.leader[team]++
			slot++
		}
		for _, team := range qualifiers {
			place(team, slot)
			t.qualifier[team]++
			slot++
		}
		for _, team := range rest {
			if slot >= lg.slots {
				break
			}
			place(team, slot)
			slot++
		}
	}
	return t
}

func (lg *league) divisionBefore(a, b int, key func(int) float64, losses, divWins, divLosses []int) bool {
	ta, tb := lg.teams[a], lg.teams[b]
	switch {
	case key(a) != key(b):
		return key(a) > key(b)
	case losses[a] != losses[b]:
		return losses[a] < losses[b]
	case ta.Ties != tb.Ties:
		return ta.Ties > tb.Ties
	}
	da := float64(divWins[a]) + ta.DivisionPointsFor/pointsDivisor
	db := float64(divWins[b]) + tb.DivisionPointsFor/pointsDivisor
	switch {
	case da != db:
		return da > db
	case divLosses[a] != divLosses[b]:
		return divLosses[a] < divLosses[b]
	}
	return ta.DivisionTies > tb.DivisionTies
}

func (s *PlayoffSimulator) summarize(week int, lg *league, total *tally) *Result {
	n := float64(s.config.NumSimulations)
	res := &Result{
		Week:            week,
		Simulations:     s.config.NumSimulations,
		Seed:            s.config.Seed,
		NumPlayoffSlots: s.config.NumPlayoffSlots,
		HasDivisions:    len(lg.divisions) > 0,
		Teams:           lg.teams,
	}
	if last := s.config.NumPlayoffSlots - 1; last >= 0 {
		res.LastSlotWins = models.Round(float64(total.slotWins[last])/n, 2)
	}

	for i, team := range lg.teams {
		team.PlayoffTally = total.playoff[i]
		team.PlayoffStats = total.stats[i]
		team.DivisionLeaderTally = total.leader[i]
		team.DivisionQualifierTally = total.qualifier[i]
		team.PlayoffChance = models.Round(float64(team.PlayoffTally)/n*100, 2)
		team.PlayoffStatsPercent = make([]float64, len(team.PlayoffStats))
		for p, c := range team.PlayoffStats {
			team.PlayoffStatsPercent[p] = models.Round(float64(c)/n*100, 2)
		}
		if res.LastSlotWins > float64(team.Wins) {
			team.NeededWins = int(math.Ceil(res.LastSlotWins - float64(team.Wins)))
		}
	}

	for _, members := range lg.divisions {
		ranked := append([]int(nil), members...)
		sort.SliceStable(ranked, func(a, b int) bool {
			ta, tb := lg.teams[ranked[a]], lg.teams[ranked[b]]
			if ta.DivisionLeaderTally != tb.DivisionLeaderTally {
				return ta.DivisionLeaderTally > tb.DivisionLeaderTally
			}
			return ta.DivisionQualifierTally > tb.DivisionQualifierTally
		})
		lg.teams[ranked[0]].PredictedDivisionLeader = true
		for j := 1; j < len(ranked) && j < lg.perDivision; j++ {
			lg.teams[ranked[j]].PredictedDivisionQualifier = true
		}
	}
	return res
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
