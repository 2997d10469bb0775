// Package runner drives batch pipelines with durable checkpoint-resume.
//
// A Runner repeatedly fetches sequentially numbered batches from a Source,
// threads each batch through an ordered list of Transforms, checkpoints the
// result, and commits a Frontier record. A failed run leaves the frontier
// at the last commit; re-running with resume reprocesses exactly the
// batches after it (at-least-once delivery of a batch's transforms).
//
// Execution is strictly sequential and single-writer: run at most one
// Runner per store at a time.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhalonen/flowgrid/internal/persistence"
	"github.com/jhalonen/flowgrid/pkg/api"
)

// DefaultBatchSize is used when Config.BatchSize is unset.
const DefaultBatchSize = 50000

// Config controls optional Runner behavior.
type Config struct {
	// BatchSize is the number of rows requested per fetch.
	// Defaults to DefaultBatchSize.
	BatchSize int

	// Observer receives batch lifecycle events. Defaults to NoopObserver.
	Observer api.Observer
}

// Runner executes a batch pipeline against a pair of durable stores.
type Runner struct {
	source     api.Source
	transforms []api.Transform
	names      []string
	batchSize  int
	stores     persistence.Stores
	observer   api.Observer
}

// New validates the pipeline configuration and returns a Runner.
// Transform names must be unique; they key the frontier's per-step state.
func New(source api.Source, transforms []api.Transform, stores persistence.Stores, cfg Config) (*Runner, error) {
	if source == nil {
		return nil, errors.New("runner: source must not be nil")
	}
	if len(transforms) == 0 {
		return nil, errors.New("runner: at least one transform is required")
	}
	if stores.Frontier == nil || stores.Checkpoints == nil {
		return nil, errors.New("runner: frontier and checkpoint stores are required")
	}

	seen := make(map[string]bool, len(transforms))
	names := make([]string, 0, len(transforms))
	for _, tr := range transforms {
		if tr == nil {
			return nil, errors.New("runner: transform must not be nil")
		}
		name := tr.Name()
		if name == "" {
			return nil, errors.New("runner: transform name must not be empty")
		}
		if seen[name] {
			return nil, fmt.Errorf("runner: duplicate transform name: %s", name)
		}
		seen[name] = true
		names = append(names, name)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	observer := cfg.Observer
	if observer == nil {
		observer = api.NoopObserver{}
	}

	return &Runner{
		source:     source,
		transforms: transforms,
		names:      names,
		batchSize:  batchSize,
		stores:     stores,
		observer:   observer,
	}, nil
}

// TransformNames returns the configured transform names in pipeline order.
func (r *Runner) TransformNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Run processes batches until the source is exhausted and returns the final
// frontier.
//
// With resume=true the runner continues after the last committed batch; a
// prior clean completion therefore results in zero fetches of committed
// ids. With resume=false the frontier and all checkpoints are discarded
// first and processing starts at batch 0.
//
// On any fetch, transform, or store error the run aborts immediately. The
// durable frontier then still reflects the last committed batch, so a
// resumed run restarts the failed batch from its first transform.
func (r *Runner) Run(ctx context.Context, resume bool) (*api.Frontier, error) {
	runID := uuid.NewString()
	r.observer.OnRunStart(ctx, runID, len(r.transforms))

	frontier, err := r.loadFrontier(resume)
	if err != nil {
		r.observer.OnRunFailed(ctx, runID, err)
		return nil, err
	}

	for batchID := frontier.LastCompletedBatchID + 1; ; batchID++ {
		select {
		case <-ctx.Done():
			r.observer.OnRunFailed(ctx, runID, ctx.Err())
			return frontier, ctx.Err()
		default:
		}

		batch, err := r.source(ctx, batchID, r.batchSize)
		if err != nil {
			srcErr := &api.BatchSourceError{BatchID: batchID, Err: err}
			r.observer.OnBatchFailed(ctx, runID, batchID, srcErr)
			r.observer.OnRunFailed(ctx, runID, srcErr)
			return frontier, srcErr
		}
		if batch == nil {
			// Source exhausted.
			break
		}

		r.observer.OnBatchStart(ctx, runID, batchID, batch.Size())

		current := batch
		for _, tr := range r.transforms {
			next, err := tr.Apply(ctx, current)
			if err != nil {
				trErr := &api.TransformError{Transform: tr.Name(), BatchID: batchID, Err: err}
				r.observer.OnBatchFailed(ctx, runID, batchID, trErr)
				r.observer.OnRunFailed(ctx, runID, trErr)
				return frontier, trErr
			}
			current = next
			// Partial-completion visibility only; the record is persisted
			// at commit.
			frontier.UpdateStep(tr.Name(), batchID)
		}

		if err := r.stores.Checkpoints.SaveCheckpoint(current); err != nil {
			r.observer.OnBatchFailed(ctx, runID, batchID, err)
			r.observer.OnRunFailed(ctx, runID, err)
			return frontier, err
		}

		frontier.AdvanceTo(batchID, current.EndRow)
		if err := r.stores.Frontier.SaveFrontier(frontier); err != nil {
			r.observer.OnBatchFailed(ctx, runID, batchID, err)
			r.observer.OnRunFailed(ctx, runID, err)
			return frontier, err
		}

		r.observer.OnBatchCommitted(ctx, runID, batchID, frontier)
	}

	r.observer.OnRunCompleted(ctx, runID)
	return frontier, nil
}

func (r *Runner) loadFrontier(resume bool) (*api.Frontier, error) {
	if !resume {
		if err := r.stores.Frontier.ResetFrontier(); err != nil {
			return nil, err
		}
		if err := r.stores.Checkpoints.ResetCheckpoints(); err != nil {
			return nil, err
		}
		return api.NewFrontier(), nil
	}

	f, err := r.stores.Frontier.LoadFrontier()
	if err != nil {
		if errors.Is(err, persistence.ErrFrontierNotFound) {
			return api.NewFrontier(), nil
		}
		return nil, err
	}
	return f, nil
}

// Frontier returns the durably recorded progress, or a fresh record when
// none has been committed yet.
func (r *Runner) Frontier() (*api.Frontier, error) {
	f, err := r.stores.Frontier.LoadFrontier()
	if err != nil {
		if errors.Is(err, persistence.ErrFrontierNotFound) {
			return api.NewFrontier(), nil
		}
		return nil, err
	}
	return f, nil
}

// Reset discards the frontier and every checkpoint, so the next Run starts
// from batch 0 regardless of the resume flag.
func (r *Runner) Reset() error {
	if err := r.stores.Frontier.ResetFrontier(); err != nil {
		return err
	}
	return r.stores.Checkpoints.ResetCheckpoints()
}

// ListCheckpoints returns the committed batch ids in ascending order.
func (r *Runner) ListCheckpoints() ([]int64, error) {
	return r.stores.Checkpoints.CheckpointIDs()
}

// Collect concatenates all checkpointed batches in id order into a single
// row slice. It is the only consumer of checkpoints; resume decisions go
// through the frontier alone.
func (r *Runner) Collect() ([]api.Row, error) {
	ids, err := r.stores.Checkpoints.CheckpointIDs()
	if err != nil {
		return nil, err
	}

	var rows []api.Row
	for _, id := range ids {
		b, err := r.stores.Checkpoints.LoadCheckpoint(id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, b.Rows...)
	}
	return rows, nil
}
