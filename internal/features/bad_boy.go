package features

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/internal/snapshot"
)

// BadBoyFeature is the bad_boy store name and snapshot file stem.
const BadBoyFeature = "bad_boy"

// CrimeCategoriesOutputFile is written next to the configured scoring table.
const CrimeCategoriesOutputFile = "crime_categories.new.json"

//go:embed data/crime_categories.json
var defaultCrimeCategories []byte

// Offense is one scored arrest.
type Offense struct {
	Crime  string `json:"crime"`
	Points int    `json:"points"`
	Date   string `json:"date,omitempty"`
}

// BadBoyRecord is a player's arrest history, or a team's D/ST roll-up when
// Position is D/ST.
type BadBoyRecord struct {
	FullName           string    `json:"full_name"`
	TeamAbbr           string    `json:"team_abbr"`
	Position           string    `json:"position"`
	PositionType       string    `json:"position_type,omitempty"`
	Offenses           []Offense `json:"offenses,omitempty"`
	WorstOffense       string    `json:"worst_offense"`
	WorstOffensePoints int       `json:"worst_offense_points"`
	BadBoyPointsTotal  int       `json:"bad_boy_points_total"`
	Offenders          []string  `json:"offenders,omitempty"`
	OffendersCount     int       `json:"offenders_count"`
}

func (r *BadBoyRecord) add(o Offense) {
	r.Offenses = append(r.Offenses, o)
	r.BadBoyPointsTotal += o.Points
	if o.Points > r.WorstOffensePoints {
		r.WorstOffense = o.Crime
		r.WorstOffensePoints = o.Points
	}
}

// BadBoyOptions adds the scoring table override to the shared options.
type BadBoyOptions struct {
	Options
	// CrimeCategoriesFile replaces the embedded scoring table when set.
	CrimeCategoriesFile string
}

// BadBoy scores players by their arrest records.
type BadBoy struct {
	store      *Store[BadBoyRecord]
	categories map[string]int
	seen       map[string]int
	outputDir  string
}

// LoadCrimeCategories reads a scoring table, or the embedded one when path
// is empty. Category names are uppercased.
func LoadCrimeCategories(path string) (map[string]int, error) {
	raw := defaultCrimeCategories
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read crime categories: %w", err)
		}
		raw = b
	}
	var parsed map[string]int
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse crime categories: %w", err)
	}
	categories := make(map[string]int, len(parsed))
	for k, v := range parsed {
		categories[strings.ToUpper(k)] = v
	}
	return categories, nil
}

// NewBadBoy loads or scrapes arrest data for the week. D/ST lookups always
// miss; defensive roll-ups are still stored for inspection.
func NewBadBoy(ctx context.Context, opts BadBoyOptions, snapshots snapshot.Store, src ArrestSource) (*BadBoy, error) {
	categories, err := LoadCrimeCategories(opts.CrimeCategoriesFile)
	if err != nil {
		return nil, err
	}
	b := &BadBoy{
		store:      newStore[BadBoyRecord](BadBoyFeature, snapshots, opts.Options, true),
		categories: categories,
		seen:       map[string]int{},
	}
	if opts.CrimeCategoriesFile != "" {
		b.outputDir = filepath.Dir(opts.CrimeCategoriesFile)
	}

	var fetch func(context.Context) (map[string]BadBoyRecord, error)
	if src != nil {
		fetch = func(ctx context.Context) (map[string]BadBoyRecord, error) {
			arrests, err := src.Arrests(ctx)
			if err != nil {
				return nil, err
			}
			return b.build(arrests), nil
		}
	}
	if err := b.store.load(ctx, fetch); err != nil {
		return nil, err
	}
	if !b.store.fetched {
		for _, rec := range b.store.data {
			for _, o := range rec.Offenses {
				b.seen[o.Crime] = b.categories[o.Crime]
			}
		}
	}
	return b, nil
}

func (b *BadBoy) score(crime string) int {
	b.seen[crime] = b.categories[crime]
	points, ok := b.categories[crime]
	if !ok {
		b.store.logger.WithField("crime", crime).Warn("Crime category not found; scoring 0")
	}
	return points
}

func (b *BadBoy) build(arrests []Arrest) map[string]BadBoyRecord {
	data := map[string]BadBoyRecord{}
	owners := newClaims(b.store.logger)
	offenders := map[string]map[string]bool{}

	for _, a := range arrests {
		team := NormalizeTeamAbbr(a.TeamAbbr)
		if strings.EqualFold(a.TeamAbbr, "free agent") {
			team = "FA"
		}
		crime := strings.ToUpper(strings.TrimSpace(a.Crime))
		offense := Offense{Crime: crime, Points: b.score(crime), Date: a.Date}
		posType := PositionType(a.Position)

		key := NormalizePlayerKey(a.FullName, team)
		if owners.claim(key, a.FullName) {
			rec := data[key]
			rec.FullName, rec.TeamAbbr = a.FullName, team
			rec.Position, rec.PositionType = a.Position, posType
			rec.add(offense)
			data[key] = rec
		}

		if posType != PositionTypeDefense || !IsNFLTeam(team) {
			continue
		}
		roll := data[team]
		roll.FullName, roll.TeamAbbr, roll.Position = team, team, models.PositionDS
		roll.add(offense)
		if offenders[team] == nil {
			offenders[team] = map[string]bool{}
		}
		offenders[team][a.FullName] = true
		data[team] = roll
	}

	for team, names := range offenders {
		roll := data[team]
		roll.Offenders = roll.Offenders[:0]
		for name := range names {
			roll.Offenders = append(roll.Offenders, name)
		}
		sort.Strings(roll.Offenders)
		roll.OffendersCount = len(roll.Offenders)
		data[team] = roll
	}
	return data
}

// PlayerCrime is the player's worst offense, or "".
func (b *BadBoy) PlayerCrime(first, last, teamAbbr, position string) string {
	rec, _ := b.store.lookup(first, last, teamAbbr, position)
	return rec.WorstOffense
}

// PlayerCrimePoints scores the player's worst offense alone.
func (b *BadBoy) PlayerCrimePoints(first, last, teamAbbr, position string) int {
	rec, _ := b.store.lookup(first, last, teamAbbr, position)
	return rec.WorstOffensePoints
}

// PlayerPoints is the player's total bad boy points.
func (b *BadBoy) PlayerPoints(first, last, teamAbbr, position string) int {
	rec, _ := b.store.lookup(first, last, teamAbbr, position)
	return rec.BadBoyPointsTotal
}

// PlayerNumOffenders is the D/ST roll-up offender count, 0 for players.
func (b *BadBoy) PlayerNumOffenders(first, last, teamAbbr, position string) int {
	rec, _ := b.store.lookup(first, last, teamAbbr, position)
	return rec.OffendersCount
}

// Record exposes a raw record by key.
func (b *BadBoy) Record(key string) (BadBoyRecord, bool) {
	return b.store.Get(key)
}

// Len is the number of stored records.
func (b *BadBoy) Len() int {
	return b.store.Len()
}

// SeenCategories is every crime category encountered with its current
// score, 0 for unscored categories.
func (b *BadBoy) SeenCategories() map[string]int {
	out := make(map[string]int, len(b.seen))
	for k, v := range b.seen {
		out[k] = v
	}
	return out
}

// CrimeCategoriesOutput writes the seen categories to dir for manual
// scoring. An empty dir uses the directory of the configured scoring
// table, falling back to the working directory.
func (b *BadBoy) CrimeCategoriesOutput(dir string) (string, error) {
	if dir == "" {
		dir = b.outputDir
	}
	if dir == "" {
		dir = "."
	}
	raw, err := json.MarshalIndent(b.SeenCategories(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode crime categories: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	out := filepath.Join(dir, CrimeCategoriesOutputFile)
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	b.store.logger.WithFields(logrus.Fields{
		"path":       out,
		"categories": len(b.seen),
	}).Info("Wrote crime categories for review")
	return out, nil
}
