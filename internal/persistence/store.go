package persistence

import (
	"errors"

	"github.com/jhalonen/flowgrid/pkg/api"
)

var (
	// ErrFrontierNotFound is returned when no frontier record has been
	// persisted yet. Callers treat it as "start from nothing".
	ErrFrontierNotFound = errors.New("frontier not found")

	// ErrCheckpointNotFound is returned when no checkpoint exists for the
	// requested batch id.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// FrontierStore persists the batch runner's progress record. There is at
// most one frontier per store; the runner is its only writer.
type FrontierStore interface {
	// SaveFrontier durably replaces the frontier record.
	SaveFrontier(f *api.Frontier) error

	// LoadFrontier returns the persisted frontier, or ErrFrontierNotFound
	// when none has been saved.
	LoadFrontier() (*api.Frontier, error)

	// ResetFrontier discards the persisted frontier. It is a no-op when
	// none exists.
	ResetFrontier() error
}

// CheckpointStore persists fully transformed batches keyed by batch id.
// Checkpoints serve result assembly only; resume decisions are driven by
// the frontier alone.
type CheckpointStore interface {
	// SaveCheckpoint durably stores the batch, replacing any checkpoint
	// with the same id.
	SaveCheckpoint(b *api.Batch) error

	// LoadCheckpoint returns the checkpointed batch for the id, or
	// ErrCheckpointNotFound.
	LoadCheckpoint(batchID int64) (*api.Batch, error)

	// CheckpointIDs returns all checkpointed batch ids in ascending order.
	CheckpointIDs() ([]int64, error)

	// ResetCheckpoints discards every checkpoint.
	ResetCheckpoints() error
}

// Stores bundles the two store interfaces so the runner can depend on a
// single abstraction.
type Stores struct {
	Frontier    FrontierStore
	Checkpoints CheckpointStore
}
