package metrics

import (
	"sort"
)

const tieMarker = "*"

// entry is one team's value in a ranked metric.
type entry struct {
	teamID   string
	name     string
	managers string
	value    float64
	dq       bool
	// display is the formatted value; equal displays are ties.
	display string
	extra   []string
	// breakKeys resolve ties when breaking is enabled, higher first.
	breakKeys []float64
}

type rankOptions struct {
	ascending bool
	breakTies bool
	// countable reports whether a tie group led by e counts as a tie.
	// DQ groups never count.
	countable func(e entry) bool
}

// rankEntries orders entries, groups equal displays, counts ties and
// assigns places. Tied rows share the place of the first row in their
// group, marked with "*". When breaking is enabled, rows whose break keys
// differ get distinct places instead.
func rankEntries(entries []entry, opts rankOptions) ([]Row, int) {
	sorted := make([]entry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.dq != b.dq {
			return b.dq
		}
		if !a.dq && a.display != b.display {
			if opts.ascending {
				return a.value < b.value
			}
			return a.value > b.value
		}
		if opts.breakTies {
			if c := compareKeys(a.breakKeys, b.breakKeys); c != 0 {
				return c > 0
			}
		}
		return a.teamID < b.teamID
	})

	countable := func(e entry) bool {
		if e.dq {
			return false
		}
		return opts.countable == nil || opts.countable(e)
	}

	places := make([]string, len(sorted))
	numTies := 0
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && !sorted[start].dq && !sorted[end].dq && sorted[end].display == sorted[start].display {
			end++
		}
		n := end - start
		tied := n > 1 && countable(sorted[start])
		if tied {
			numTies += n * (n - 1) / 2
		}

		if !tied {
			for i := start; i < end; i++ {
				places[i] = itoa(i + 1)
			}
		} else {
			for sub := start; sub < end; {
				subEnd := sub + 1
				for subEnd < end && (!opts.breakTies || compareKeys(sorted[subEnd].breakKeys, sorted[sub].breakKeys) == 0) {
					subEnd++
				}
				for i := sub; i < subEnd; i++ {
					if subEnd-sub > 1 {
						places[i] = itoa(sub+1) + tieMarker
					} else {
						places[i] = itoa(i + 1)
					}
				}
				sub = subEnd
			}
		}
		start = end
	}

	rows := make([]Row, len(sorted))
	for i, e := range sorted {
		cells := append([]string{places[i], e.name, e.managers, e.display}, e.extra...)
		rows[i] = Row{TeamID: e.teamID, Cells: cells}
	}
	return rows, numTies
}

// compareKeys compares break keys lexicographically. Missing keys compare
// equal so that teams without tie-break data stay tied.
func compareKeys(a, b []float64) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] > b[i]:
			return 1
		case a[i] < b[i]:
			return -1
		}
	}
	return 0
}
