package api

import "context"

// Row is one record in a batch. Values are opaque to the runner; they only
// need to survive serialization by the configured stores.
type Row map[string]any

// Batch is a bounded, ordered chunk of a larger dataset. IDs are assigned
// by the source and increase monotonically from zero. StartRow and EndRow
// are inclusive bounds in the source's row numbering.
//
// After a row-dropping transform, EndRow is recomputed as
// StartRow + Size() - 1 so that frontier arithmetic stays consistent.
type Batch struct {
	ID       int64 `json:"batch_id"`
	StartRow int64 `json:"start_row"`
	EndRow   int64 `json:"end_row"`
	Rows     []Row `json:"rows"`
}

// Size returns the number of rows currently in the batch.
func (b *Batch) Size() int {
	return len(b.Rows)
}

// Source fetches one batch of at most batchSize rows. A fetched batch must
// satisfy StartRow == batchID * batchSize. Returning (nil, nil) signals that
// the dataset is exhausted and terminates the run cleanly.
type Source func(ctx context.Context, batchID int64, batchSize int) (*Batch, error)

// Transform is a single stage of a batch pipeline. Transforms must not
// mutate the input batch; they return a new batch.
type Transform interface {
	// Name identifies the transform in frontier records. Names must be
	// unique within a runner.
	Name() string

	// Apply processes one batch and returns the result.
	Apply(ctx context.Context, b *Batch) (*Batch, error)
}
