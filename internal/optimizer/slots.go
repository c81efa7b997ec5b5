package optimizer

import (
	"fmt"
	"sort"

	"github.com/stitts-dev/ffreport/internal/models"
)

// PositionSlot represents one starting slot instance in a lineup
type PositionSlot struct {
	SlotName         string   // e.g., "RB", "FLEX"
	Index            int      // 1-based instance number, e.g. RB#2
	AllowedPositions []string // e.g., ["RB"] or ["RB", "TE", "WR"]
	Priority         int      // Fill order (concrete slots before flex)
	IsFlex           bool
}

func (s PositionSlot) String() string {
	return fmt.Sprintf("%s#%d", s.SlotName, s.Index)
}

// SlotAssignment represents a player assigned to a specific slot
type SlotAssignment struct {
	PlayerID string
	Slot     PositionSlot
	Points   float64
}

// BuildPositionSlots expands the league slot catalog into slot instances.
// Bench positions are skipped; flex slots accept the union of their member
// positions.
func BuildPositionSlots(league *models.League) []PositionSlot {
	flex := league.FlexPositions()
	counts := league.ActiveSlotCounts()

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	// concrete positions first, flex positions last, each group by name
	sort.Slice(names, func(i, j int) bool {
		_, fi := flex[names[i]]
		_, fj := flex[names[j]]
		if fi != fj {
			return !fi
		}
		return names[i] < names[j]
	})

	var slots []PositionSlot
	for _, name := range names {
		allowed := []string{name}
		members, isFlex := flex[name]
		if isFlex {
			allowed = append(allowed, members...)
		}
		for i := 1; i <= counts[name]; i++ {
			slots = append(slots, PositionSlot{
				SlotName:         name,
				Index:            i,
				AllowedPositions: allowed,
				Priority:         len(slots) + 1,
				IsFlex:           isFlex,
			})
		}
	}
	return slots
}

// CanPlayerFillSlot checks if a player can fill a specific slot
func CanPlayerFillSlot(player *models.Player, slot PositionSlot) bool {
	for _, allowedPos := range slot.AllowedPositions {
		if player.IsEligibleFor(allowedPos) {
			return true
		}
	}
	return false
}
