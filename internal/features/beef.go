package features

import (
	"context"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/internal/snapshot"
)

// BeefFeature is the beef store name and snapshot file stem.
const BeefFeature = "beef"

// tabbuDivisor is pounds per Trimmed And Boneless Beef Unit.
const tabbuDivisor = 500.0

// BeefRecord is a player's listed weight, or a team D/ST roll-up.
type BeefRecord struct {
	FullName string  `json:"full_name"`
	TeamAbbr string  `json:"team_abbr"`
	Position string  `json:"position"`
	Weight   int     `json:"weight"`
	Tabbu    float64 `json:"tabbu"`
}

// Beef converts player weights to TABBU.
type Beef struct {
	store *Store[BeefRecord]
}

// NewBeef loads or scrapes weight data for the week. D/ST lookups resolve
// to the team's defensive line and backfield roll-up.
func NewBeef(ctx context.Context, opts Options, snapshots snapshot.Store, src WeightSource) (*Beef, error) {
	b := &Beef{store: newStore[BeefRecord](BeefFeature, snapshots, opts, false)}

	var fetch func(context.Context) (map[string]BeefRecord, error)
	if src != nil {
		fetch = func(ctx context.Context) (map[string]BeefRecord, error) {
			weights, err := src.Weights(ctx)
			if err != nil {
				return nil, err
			}
			return b.build(weights), nil
		}
	}
	if err := b.store.load(ctx, fetch); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Beef) build(weights []PlayerWeight) map[string]BeefRecord {
	data := map[string]BeefRecord{}
	owners := newClaims(b.store.logger)

	for _, w := range weights {
		team := NormalizeTeamAbbr(w.TeamAbbr)
		key := NormalizePlayerKey(w.FullName, team)
		if !owners.claim(key, w.FullName) {
			continue
		}
		if _, exists := data[key]; exists {
			continue
		}
		data[key] = BeefRecord{
			FullName: w.FullName,
			TeamAbbr: team,
			Position: w.Position,
			Weight:   w.Weight,
			Tabbu:    float64(w.Weight) / tabbuDivisor,
		}

		if !IsNFLTeam(team) || !defensiveBeef(w.FantasyPositions) {
			continue
		}
		roll := data[team]
		roll.FullName, roll.TeamAbbr, roll.Position = team, team, models.PositionDS
		roll.Weight += w.Weight
		roll.Tabbu += float64(w.Weight) / tabbuDivisor
		data[team] = roll
	}
	return data
}

func defensiveBeef(positions []string) bool {
	for _, p := range positions {
		if p == "DL" || p == "DB" {
			return true
		}
	}
	return false
}

// PlayerWeight is the listed weight in pounds.
func (b *Beef) PlayerWeight(first, last, teamAbbr, position string) int {
	rec, _ := b.store.lookup(first, last, teamAbbr, position)
	return rec.Weight
}

// PlayerTabbu is the weight in TABBU, rounded to three places.
func (b *Beef) PlayerTabbu(first, last, teamAbbr, position string) float64 {
	rec, _ := b.store.lookup(first, last, teamAbbr, position)
	return models.Round(rec.Tabbu, 3)
}

// Len is the number of stored records.
func (b *Beef) Len() int {
	return b.store.Len()
}
