package features

import (
	"context"
	"sort"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/internal/snapshot"
)

// HighRollerFeature is the high_roller store name and snapshot file stem.
const HighRollerFeature = "high_roller"

// FineRecord is one fine kept on a player's record.
type FineRecord struct {
	Violation string  `json:"violation"`
	Fine      float64 `json:"fine"`
	Date      string  `json:"date"`
}

// HighRollerRecord is a player's fines, or a team D/ST roll-up.
type HighRollerRecord struct {
	FullName           string       `json:"full_name"`
	TeamAbbr           string       `json:"team_abbr"`
	Position           string       `json:"position"`
	Fines              []FineRecord `json:"fines,omitempty"`
	FinesCount         int          `json:"fines_count"`
	FinesTotal         float64      `json:"fines_total"`
	WorstViolation     string       `json:"worst_violation"`
	WorstViolationFine float64      `json:"worst_violation_fine"`
	Violators          []string     `json:"violators,omitempty"`
	ViolatorsCount     int          `json:"violators_count"`
}

// HighRollerOptions adds the fine season to the shared options.
type HighRollerOptions struct {
	Options
	Season int
}

// HighRoller totals league fines per player.
type HighRoller struct {
	store *Store[HighRollerRecord]
}

// NewHighRoller loads or scrapes fines for the season. D/ST lookups always
// miss; team roll-ups cover every fined player on the NFL team.
func NewHighRoller(ctx context.Context, opts HighRollerOptions, snapshots snapshot.Store, src FineSource) (*HighRoller, error) {
	h := &HighRoller{store: newStore[HighRollerRecord](HighRollerFeature, snapshots, opts.Options, true)}

	var fetch func(context.Context) (map[string]HighRollerRecord, error)
	if src != nil {
		fetch = func(ctx context.Context) (map[string]HighRollerRecord, error) {
			fines, err := src.Fines(ctx, opts.Season)
			if err != nil {
				return nil, err
			}
			return h.build(fines), nil
		}
	}
	if err := h.store.load(ctx, fetch); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HighRoller) build(fines []Fine) map[string]HighRollerRecord {
	// highest fine first, most recent first among equal fines
	sorted := append([]Fine(nil), fines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Amount != sorted[j].Amount {
			return sorted[i].Amount > sorted[j].Amount
		}
		return sorted[i].Date.After(sorted[j].Date)
	})

	data := map[string]HighRollerRecord{}
	owners := newClaims(h.store.logger)
	violators := map[string]map[string]bool{}

	for _, f := range sorted {
		team := NormalizeTeamAbbr(f.TeamAbbr)
		key := NormalizePlayerKey(f.FullName, team)
		if !owners.claim(key, f.FullName) {
			continue
		}
		rec := data[key]
		if rec.FinesCount == 0 {
			rec.FullName, rec.TeamAbbr, rec.Position = f.FullName, team, f.Position
			rec.WorstViolation, rec.WorstViolationFine = f.Violation, f.Amount
		}
		rec.Fines = append(rec.Fines, FineRecord{
			Violation: f.Violation,
			Fine:      f.Amount,
			Date:      f.Date.Format("2006-01-02"),
		})
		rec.FinesCount++
		rec.FinesTotal += f.Amount
		data[key] = rec

		if !IsNFLTeam(team) {
			continue
		}
		roll := data[team]
		if roll.FinesCount == 0 {
			roll.FullName, roll.TeamAbbr, roll.Position = team, team, models.PositionDS
			roll.WorstViolation, roll.WorstViolationFine = f.Violation, f.Amount
		}
		roll.FinesCount++
		roll.FinesTotal += f.Amount
		if violators[team] == nil {
			violators[team] = map[string]bool{}
		}
		violators[team][f.FullName] = true
		data[team] = roll
	}

	for team, names := range violators {
		roll := data[team]
		for name := range names {
			roll.Violators = append(roll.Violators, name)
		}
		sort.Strings(roll.Violators)
		roll.ViolatorsCount = len(roll.Violators)
		data[team] = roll
	}
	return data
}

// PlayerWorstViolation is the violation behind the player's largest fine.
func (h *HighRoller) PlayerWorstViolation(first, last, teamAbbr, position string) string {
	rec, _ := h.store.lookup(first, last, teamAbbr, position)
	return rec.WorstViolation
}

// PlayerWorstViolationFine is the player's largest single fine.
func (h *HighRoller) PlayerWorstViolationFine(first, last, teamAbbr, position string) float64 {
	rec, _ := h.store.lookup(first, last, teamAbbr, position)
	return rec.WorstViolationFine
}

// PlayerFinesTotal is the sum of the player's fines.
func (h *HighRoller) PlayerFinesTotal(first, last, teamAbbr, position string) float64 {
	rec, _ := h.store.lookup(first, last, teamAbbr, position)
	return rec.FinesTotal
}

// PlayerNumViolators is the D/ST roll-up violator count, 0 for players.
func (h *HighRoller) PlayerNumViolators(first, last, teamAbbr, position string) int {
	rec, _ := h.store.lookup(first, last, teamAbbr, position)
	return rec.ViolatorsCount
}

// Len is the number of stored records.
func (h *HighRoller) Len() int {
	return h.store.Len()
}
