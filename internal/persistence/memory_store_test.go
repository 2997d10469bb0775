package persistence

import (
	"testing"

	"github.com/jhalonen/flowgrid/pkg/api"
)

func TestMemoryStoreFrontier(t *testing.T) {
	testFrontierStore(t, NewMemoryStore())
}

func TestMemoryStoreCheckpoints(t *testing.T) {
	testCheckpointStore(t, NewMemoryStore())
}

func TestMemoryStoreFrontierIsolation(t *testing.T) {
	store := NewMemoryStore()

	f := api.NewFrontier()
	f.AdvanceTo(0, 9)
	if err := store.SaveFrontier(f); err != nil {
		t.Fatalf("SaveFrontier: %v", err)
	}

	// Mutating the caller's copy after save must not leak into the store.
	f.AdvanceTo(5, 99)
	f.UpdateStep("late", 5)

	got, err := store.LoadFrontier()
	if err != nil {
		t.Fatalf("LoadFrontier: %v", err)
	}
	if got.LastCompletedBatchID != 0 || len(got.StepStates) != 0 {
		t.Fatalf("stored frontier mutated through caller copy: %+v", got)
	}

	// Mutating a loaded copy must not affect subsequent loads either.
	got.AdvanceTo(7, 199)
	again, err := store.LoadFrontier()
	if err != nil {
		t.Fatalf("LoadFrontier: %v", err)
	}
	if again.LastCompletedBatchID != 0 {
		t.Fatalf("stored frontier mutated through loaded copy: %+v", again)
	}
}
