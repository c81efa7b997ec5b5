package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/pkg/logger"
)

// ErrNotFound is returned by Load when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// Store persists JSON snapshots by relative key. Saves are whole-value
// overwrites with no locking.
type Store interface {
	Load(ctx context.Context, key string, dest interface{}) error
	Save(ctx context.Context, key string, value interface{}) error
	// Locate describes where key lives, for error messages.
	Locate(key string) string
}

// FileStore keeps snapshots as JSON files below a root directory.
type FileStore struct {
	root   string
	logger *logrus.Entry
}

func NewFileStore(root string) *FileStore {
	return &FileStore{
		root:   root,
		logger: logger.WithComponent("snapshot_store").WithField("backend", "file"),
	}
}

// Locate returns the absolute file path for key.
func (s *FileStore) Locate(key string) string {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (s *FileStore) Load(ctx context.Context, key string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Locate(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) Save(ctx context.Context, key string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Locate(key)
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	s.logger.WithField("path", path).Debug("Snapshot saved")
	return nil
}

// writeAtomic writes data to a temp file beside path and renames it over
// path, so readers never see a partial snapshot.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
