package flowgrid_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jhalonen/flowgrid"
)

// rowSource serves total synthetic rows and counts fetches.
type rowSource struct {
	total   int64
	fetches atomic.Int64
}

func (s *rowSource) fetch(ctx context.Context, batchID int64, batchSize int) (*flowgrid.Batch, error) {
	s.fetches.Add(1)
	start := batchID * int64(batchSize)
	if start >= s.total {
		return nil, nil
	}
	rows := make([]flowgrid.Row, 0, batchSize)
	for i := start; i < start+int64(batchSize) && i < s.total; i++ {
		rows = append(rows, flowgrid.Row{"id": float64(i), "value": float64(i)})
	}
	return &flowgrid.Batch{
		ID:       batchID,
		StartRow: start,
		EndRow:   start + int64(len(rows)) - 1,
		Rows:     rows,
	}, nil
}

func TestFileRunnerPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	transforms := func() []flowgrid.Transform {
		return []flowgrid.Transform{flowgrid.AddColumn("scale", "value", "scaled", 2)}
	}

	src := &rowSource{total: 10}
	first, err := flowgrid.NewFileRunner(src.fetch, transforms(), dir, flowgrid.RunnerConfig{BatchSize: 5})
	require.NoError(t, err)
	_, err = first.Run(context.Background(), false)
	require.NoError(t, err)

	// A fresh runner over the same directory sees the committed progress
	// and refetches nothing but the exhausted probe.
	src2 := &rowSource{total: 10}
	second, err := flowgrid.NewFileRunner(src2.fetch, transforms(), dir, flowgrid.RunnerConfig{BatchSize: 5})
	require.NoError(t, err)

	f, err := second.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.LastCompletedBatchID)
	assert.Equal(t, int64(1), src2.fetches.Load())

	rows, err := second.Collect()
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, 18.0, rows[9]["scaled"])
}

func TestSQLiteRunner(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src := &rowSource{total: 12}
	r, err := flowgrid.NewSQLiteRunner(src.fetch, []flowgrid.Transform{
		flowgrid.FilterRows("keep-large", "value", 5),
	}, db, flowgrid.RunnerConfig{BatchSize: 4})
	require.NoError(t, err)

	f, err := r.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.LastCompletedBatchID)

	rows, err := r.Collect()
	require.NoError(t, err)
	// Values 6..11 exceed the threshold.
	require.Len(t, rows, 6)
	assert.Equal(t, 6.0, rows[0]["value"])
}

func TestSQLiteBundle(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src := &rowSource{total: 10}
	bundle, err := flowgrid.NewSQLiteBundle(src.fetch, []flowgrid.Transform{
		flowgrid.AddColumn("scale", "value", "scaled", 3),
	}, db, nil, flowgrid.RunnerConfig{BatchSize: 5})
	require.NoError(t, err)

	_, err = bundle.Runner.Run(context.Background(), false)
	require.NoError(t, err)

	snap := bundle.Metrics.Snapshot()
	assert.Equal(t, int64(1), snap.RunsCompleted)
	assert.Equal(t, int64(2), snap.BatchesCommitted)
	assert.Equal(t, int64(10), snap.RowsProcessed)
}
