package api

// Frontier is the durable progress record of a batch runner: the last batch
// fully committed, the last row it covered, and per-transform completion
// watermarks. It is written by exactly one runner per store at a time.
type Frontier struct {
	LastCompletedBatchID int64            `json:"last_completed_batch_id"`
	LastCompletedRow     int64            `json:"last_completed_row"`
	TotalRowsProcessed   int64            `json:"total_rows_processed"`
	StepStates           map[string]int64 `json:"step_states"`
}

// NewFrontier returns a fresh frontier representing "nothing processed":
// batch -1, row -1, zero rows, no per-step state.
func NewFrontier() *Frontier {
	return &Frontier{
		LastCompletedBatchID: -1,
		LastCompletedRow:     -1,
		StepStates:           make(map[string]int64),
	}
}

// UpdateStep records that the named transform has completed through batchID.
// The recorded watermark never moves backwards: a smaller id is ignored.
func (f *Frontier) UpdateStep(name string, batchID int64) {
	if cur, ok := f.StepStates[name]; ok && cur >= batchID {
		return
	}
	if f.StepStates == nil {
		f.StepStates = make(map[string]int64)
	}
	f.StepStates[name] = batchID
}

// AdvanceTo commits a batch: it moves the frontier to batchID with endRow as
// the last covered row. Callers invoke it only after every transform has
// completed the batch.
func (f *Frontier) AdvanceTo(batchID, endRow int64) {
	f.LastCompletedBatchID = batchID
	f.LastCompletedRow = endRow
	f.TotalRowsProcessed = endRow + 1
}

// AllStepsCompleted reports whether every named transform has completed the
// given batch.
func (f *Frontier) AllStepsCompleted(batchID int64, names []string) bool {
	for _, name := range names {
		if state, ok := f.StepStates[name]; !ok || state < batchID {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Stores use it so callers cannot alias the
// persisted record.
func (f *Frontier) Clone() *Frontier {
	cp := *f
	cp.StepStates = make(map[string]int64, len(f.StepStates))
	for name, id := range f.StepStates {
		cp.StepStates[name] = id
	}
	return &cp
}
