package flowgrid

import (
	"context"
	"fmt"
)

// transformFunc adapts a plain function to the Transform interface.
type transformFunc struct {
	name string
	fn   func(ctx context.Context, b *Batch) (*Batch, error)
}

// TransformFunc wraps fn as a named Transform.
func TransformFunc(name string, fn func(ctx context.Context, b *Batch) (*Batch, error)) Transform {
	return &transformFunc{name: name, fn: fn}
}

func (t *transformFunc) Name() string { return t.name }

func (t *transformFunc) Apply(ctx context.Context, b *Batch) (*Batch, error) {
	return t.fn(ctx, b)
}

// lossyBatch rebuilds batch bookkeeping after rows were removed. EndRow is
// recomputed from the surviving row count so the frontier stays
// consistent with what was actually emitted.
func lossyBatch(b *Batch, rows []Row) *Batch {
	return &Batch{
		ID:       b.ID,
		StartRow: b.StartRow,
		EndRow:   b.StartRow + int64(len(rows)) - 1,
		Rows:     rows,
	}
}

// DropNulls returns a Transform that removes rows containing a nil value
// in any column.
func DropNulls(name string) Transform {
	return TransformFunc(name, func(ctx context.Context, b *Batch) (*Batch, error) {
		kept := make([]Row, 0, len(b.Rows))
		for _, row := range b.Rows {
			hasNull := false
			for _, v := range row {
				if v == nil {
					hasNull = true
					break
				}
			}
			if !hasNull {
				kept = append(kept, row)
			}
		}
		return lossyBatch(b, kept), nil
	})
}

// AddColumn returns a Transform that adds newCol to every row, computed as
// sourceCol's numeric value times multiplier. Rows are copied, not
// mutated; a missing or non-numeric sourceCol fails the batch.
func AddColumn(name, sourceCol, newCol string, multiplier float64) Transform {
	return TransformFunc(name, func(ctx context.Context, b *Batch) (*Batch, error) {
		out := make([]Row, len(b.Rows))
		for i, row := range b.Rows {
			v, ok := row[sourceCol]
			if !ok {
				return nil, fmt.Errorf("row %d: missing column %s", i, sourceCol)
			}
			f, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("row %d: column %s is not numeric: %T", i, sourceCol, v)
			}
			copied := make(Row, len(row)+1)
			for k, val := range row {
				copied[k] = val
			}
			copied[newCol] = f * multiplier
			out[i] = copied
		}
		return &Batch{ID: b.ID, StartRow: b.StartRow, EndRow: b.EndRow, Rows: out}, nil
	})
}

// FilterRows returns a Transform that keeps only rows whose column value
// is strictly greater than threshold. Rows with a missing or non-numeric
// column are dropped.
func FilterRows(name, column string, threshold float64) Transform {
	return TransformFunc(name, func(ctx context.Context, b *Batch) (*Batch, error) {
		kept := make([]Row, 0, len(b.Rows))
		for _, row := range b.Rows {
			if f, ok := toFloat(row[column]); ok && f > threshold {
				kept = append(kept, row)
			}
		}
		return lossyBatch(b, kept), nil
	})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
