package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jhalonen/flowgrid/pkg/api"
)

const (
	frontierFile     = "frontier.json"
	checkpointPrefix = "batch_"
	checkpointSuffix = ".json"
)

// FileStore persists the frontier and checkpoints as JSON files in a
// directory: frontier.json plus one batch_<id>.json per checkpoint. The
// deployment contract is at most one active runner per directory.
type FileStore struct {
	dir string
}

var _ FrontierStore = (*FileStore)(nil)

var _ CheckpointStore = (*FileStore)(nil)

// NewFileStore creates the directory if needed and returns a store rooted
// at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) frontierPath() string {
	return filepath.Join(s.dir, frontierFile)
}

func (s *FileStore) checkpointPath(batchID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%06d%s", checkpointPrefix, batchID, checkpointSuffix))
}

func (s *FileStore) SaveFrontier(f *api.Frontier) error {
	data, err := EncodeFrontier(f)
	if err != nil {
		return err
	}
	return os.WriteFile(s.frontierPath(), data, 0o644)
}

func (s *FileStore) LoadFrontier() (*api.Frontier, error) {
	data, err := os.ReadFile(s.frontierPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFrontierNotFound
		}
		return nil, err
	}
	return DecodeFrontier(data)
}

func (s *FileStore) ResetFrontier() error {
	err := os.Remove(s.frontierPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) SaveCheckpoint(b *api.Batch) error {
	data, err := EncodeBatch(b)
	if err != nil {
		return err
	}
	return os.WriteFile(s.checkpointPath(b.ID), data, 0o644)
}

func (s *FileStore) LoadCheckpoint(batchID int64) (*api.Batch, error) {
	data, err := os.ReadFile(s.checkpointPath(batchID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCheckpointNotFound
		}
		return nil, err
	}
	return DecodeBatch(data)
}

func (s *FileStore) CheckpointIDs() ([]int64, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, checkpointPrefix+"*"+checkpointSuffix))
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		raw := strings.TrimSuffix(strings.TrimPrefix(name, checkpointPrefix), checkpointSuffix)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// Not one of ours; ignore.
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *FileStore) ResetCheckpoints() error {
	paths, err := filepath.Glob(filepath.Join(s.dir, checkpointPrefix+"*"+checkpointSuffix))
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
