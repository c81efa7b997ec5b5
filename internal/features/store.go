package features

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/models"
	"github.com/stitts-dev/ffreport/internal/snapshot"
	"github.com/stitts-dev/ffreport/pkg/logger"
)

// ErrSnapshotMissing means a feature snapshot was required but not found.
var ErrSnapshotMissing = errors.New("feature snapshot missing")

const (
	maxSuggestions      = 3
	suggestionThreshold = 0.6
)

// Options are the per-run settings shared by every feature store.
type Options struct {
	Week      int
	LeagueDir string
	Refresh   bool
	SaveData  bool
	Offline   bool
}

// Store is the snapshot-backed map of feature records keyed by normalized
// player key, or by team abbreviation for D/ST roll-ups.
type Store[T any] struct {
	name       string
	key        string
	snapshots  snapshot.Store
	opts       Options
	excludeDST bool
	data       map[string]T
	keys       []string
	fetched    bool
	logger     *logrus.Entry
}

func newStore[T any](name string, snapshots snapshot.Store, opts Options, excludeDST bool) *Store[T] {
	return &Store[T]{
		name:       name,
		key:        snapshot.FeaturePath(opts.LeagueDir, opts.Week, name),
		snapshots:  snapshots,
		opts:       opts,
		excludeDST: excludeDST,
		data:       map[string]T{},
		logger: logger.WithComponent("feature_store").WithFields(logrus.Fields{
			"feature": name,
			"week":    opts.Week,
		}),
	}
}

// load fills the store from the snapshot or, when refreshing or when no
// snapshot exists, from fetch. A nil fetch behaves like offline mode.
func (s *Store[T]) load(ctx context.Context, fetch func(context.Context) (map[string]T, error)) error {
	start := time.Now()
	online := !s.opts.Offline && fetch != nil

	needFetch := online && s.opts.Refresh
	if !needFetch {
		data := map[string]T{}
		err := s.snapshots.Load(ctx, s.key, &data)
		switch {
		case err == nil:
			s.data = data
			s.logger.WithField("path", s.snapshots.Locate(s.key)).Info("Loaded saved feature data")
		case !errors.Is(err, snapshot.ErrNotFound):
			return fmt.Errorf("failed to load %s feature data: %w", s.name, err)
		case !online:
			return fmt.Errorf("%w: %w", ErrSnapshotMissing, err)
		default:
			needFetch = true
		}
	}

	if needFetch {
		s.logger.Info("Retrieving feature data from source")
		data, err := fetch(ctx)
		if err != nil {
			return fmt.Errorf("failed to retrieve %s feature data: %w", s.name, err)
		}
		s.data = data
		s.fetched = true
		if s.opts.SaveData {
			if err := s.snapshots.Save(ctx, s.key, s.data); err != nil {
				return fmt.Errorf("failed to save %s feature data: %w", s.name, err)
			}
		}
	}

	s.keys = make([]string, 0, len(s.data))
	for k := range s.data {
		s.keys = append(s.keys, k)
	}
	sort.Strings(s.keys)

	entry := s.logger.WithFields(logrus.Fields{
		"records":  len(s.data),
		"fetched":  s.fetched,
		"duration": time.Since(start).String(),
	})
	if len(s.data) == 0 {
		entry.Warn("No feature data records; check the source and regenerate the report")
	} else {
		entry.Info("Feature data ready")
	}
	return nil
}

// Len is the number of records, roll-ups included.
func (s *Store[T]) Len() int {
	return len(s.data)
}

// Path locates the snapshot for this store.
func (s *Store[T]) Path() string {
	return s.snapshots.Locate(s.key)
}

// Get returns the record stored under key.
func (s *Store[T]) Get(key string) (T, bool) {
	v, ok := s.data[key]
	return v, ok
}

// lookupKey resolves a player to its store key. D/ST players resolve to
// their team abbreviation unless the store excludes defenses.
func (s *Store[T]) lookupKey(first, last, teamAbbr, position string) (string, bool) {
	team := NormalizeTeamAbbr(teamAbbr)
	if position == models.PositionDS {
		if s.excludeDST {
			return "", false
		}
		return team, true
	}
	return NormalizePlayerKey(fullName(first, last), team), true
}

// lookup returns the zero value when the player has no record.
func (s *Store[T]) lookup(first, last, teamAbbr, position string) (T, bool) {
	var zero T
	key, ok := s.lookupKey(first, last, teamAbbr, position)
	if !ok {
		return zero, false
	}
	if v, found := s.data[key]; found {
		return v, true
	}
	if s.logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		s.logger.WithFields(logrus.Fields{
			"player":  fullName(first, last),
			"key":     key,
			"closest": s.closest(key),
		}).Debug("Player not found in feature data; using zero values")
	}
	return zero, false
}

// closest suggests keys within the similarity threshold, best first.
func (s *Store[T]) closest(key string) []string {
	type candidate struct {
		key   string
		score float64
	}
	var candidates []candidate
	for _, k := range s.keys {
		longest := len(k)
		if len(key) > longest {
			longest = len(key)
		}
		if longest == 0 {
			continue
		}
		score := 1 - float64(fuzzy.LevenshteinDistance(key, k))/float64(longest)
		if score >= suggestionThreshold {
			candidates = append(candidates, candidate{key: k, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].key)
	}
	return out
}

// claims tracks which source name owns each key while building feature
// data. A second distinct name mapping to the same key is ignored.
type claims struct {
	owners map[string]string
	logger *logrus.Entry
}

func newClaims(log *logrus.Entry) *claims {
	return &claims{owners: map[string]string{}, logger: log}
}

// claim reports whether name may write to key.
func (c *claims) claim(key, name string) bool {
	owner, taken := c.owners[key]
	if !taken {
		c.owners[key] = name
		return true
	}
	if owner == name {
		return true
	}
	c.logger.WithFields(logrus.Fields{
		"key":      key,
		"kept":     owner,
		"conflict": name,
	}).Warn("Two players normalize to the same feature key; keeping the first")
	return false
}
