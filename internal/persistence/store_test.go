package persistence

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jhalonen/flowgrid/pkg/api"
)

// testFrontierStore exercises the FrontierStore contract against any
// implementation.
func testFrontierStore(t *testing.T, store FrontierStore) {
	t.Helper()

	if _, err := store.LoadFrontier(); !errors.Is(err, ErrFrontierNotFound) {
		t.Fatalf("empty store should report ErrFrontierNotFound, got %v", err)
	}

	f := api.NewFrontier()
	f.UpdateStep("clean", 0)
	f.AdvanceTo(0, 49)
	if err := store.SaveFrontier(f); err != nil {
		t.Fatalf("SaveFrontier: %v", err)
	}

	got, err := store.LoadFrontier()
	if err != nil {
		t.Fatalf("LoadFrontier: %v", err)
	}
	if !reflect.DeepEqual(got, f) {
		t.Fatalf("loaded frontier = %+v, want %+v", got, f)
	}

	// Overwrite replaces, not merges.
	f.UpdateStep("clean", 1)
	f.AdvanceTo(1, 99)
	if err := store.SaveFrontier(f); err != nil {
		t.Fatalf("SaveFrontier: %v", err)
	}
	got, err = store.LoadFrontier()
	if err != nil {
		t.Fatalf("LoadFrontier: %v", err)
	}
	if got.LastCompletedBatchID != 1 || got.TotalRowsProcessed != 100 {
		t.Fatalf("overwrite not applied: %+v", got)
	}

	if err := store.ResetFrontier(); err != nil {
		t.Fatalf("ResetFrontier: %v", err)
	}
	if _, err := store.LoadFrontier(); !errors.Is(err, ErrFrontierNotFound) {
		t.Fatalf("reset store should report ErrFrontierNotFound, got %v", err)
	}
	// Reset of an already-empty store is a no-op.
	if err := store.ResetFrontier(); err != nil {
		t.Fatalf("ResetFrontier on empty store: %v", err)
	}
}

// testCheckpointStore exercises the CheckpointStore contract against any
// implementation.
func testCheckpointStore(t *testing.T, store CheckpointStore) {
	t.Helper()

	if _, err := store.LoadCheckpoint(0); !errors.Is(err, ErrCheckpointNotFound) {
		t.Fatalf("empty store should report ErrCheckpointNotFound, got %v", err)
	}
	ids, err := store.CheckpointIDs()
	if err != nil {
		t.Fatalf("CheckpointIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("empty store should have no ids, got %v", ids)
	}

	// Save out of order; ids must come back ascending.
	batches := map[int64]*api.Batch{
		2: {ID: 2, StartRow: 10, EndRow: 14, Rows: []api.Row{{"v": float64(20)}}},
		0: {ID: 0, StartRow: 0, EndRow: 4, Rows: []api.Row{{"v": float64(0)}}},
		1: {ID: 1, StartRow: 5, EndRow: 9, Rows: []api.Row{{"v": float64(10)}}},
	}
	for _, id := range []int64{2, 0, 1} {
		if err := store.SaveCheckpoint(batches[id]); err != nil {
			t.Fatalf("SaveCheckpoint %d: %v", id, err)
		}
	}

	ids, err = store.CheckpointIDs()
	if err != nil {
		t.Fatalf("CheckpointIDs: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{0, 1, 2}) {
		t.Fatalf("ids = %v, want [0 1 2]", ids)
	}

	for id, want := range batches {
		got, err := store.LoadCheckpoint(id)
		if err != nil {
			t.Fatalf("LoadCheckpoint %d: %v", id, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("checkpoint %d = %+v, want %+v", id, got, want)
		}
	}

	// Re-saving a batch id replaces the stored rows.
	replaced := &api.Batch{ID: 1, StartRow: 5, EndRow: 5, Rows: []api.Row{{"v": float64(99)}}}
	if err := store.SaveCheckpoint(replaced); err != nil {
		t.Fatalf("SaveCheckpoint replace: %v", err)
	}
	got, err := store.LoadCheckpoint(1)
	if err != nil {
		t.Fatalf("LoadCheckpoint after replace: %v", err)
	}
	if !reflect.DeepEqual(got, replaced) {
		t.Fatalf("replace not applied: %+v", got)
	}

	if err := store.ResetCheckpoints(); err != nil {
		t.Fatalf("ResetCheckpoints: %v", err)
	}
	ids, err = store.CheckpointIDs()
	if err != nil {
		t.Fatalf("CheckpointIDs after reset: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("reset store should have no ids, got %v", ids)
	}
}
