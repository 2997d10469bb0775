package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/jhalonen/flowgrid/pkg/api"
)

// Row payloads are schema-free maps, so they are serialized as JSON.
// Numeric values come back as float64; transforms accept that.

// EncodeRows serializes a batch's rows.
func EncodeRows(rows []api.Row) ([]byte, error) {
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	return data, nil
}

// DecodeRows is the inverse of EncodeRows. Empty input yields no rows.
func DecodeRows(data []byte) ([]api.Row, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []api.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// EncodeBatch serializes a whole checkpointed batch, bounds included.
func EncodeBatch(b *api.Batch) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode batch %d: %w", b.ID, err)
	}
	return data, nil
}

// DecodeBatch is the inverse of EncodeBatch.
func DecodeBatch(data []byte) (*api.Batch, error) {
	var b api.Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return &b, nil
}

// EncodeFrontier serializes a frontier record as an indented JSON document,
// keeping the on-disk form readable.
func EncodeFrontier(f *api.Frontier) ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode frontier: %w", err)
	}
	return data, nil
}

// DecodeFrontier is the inverse of EncodeFrontier. The step-state map is
// always non-nil on return.
func DecodeFrontier(data []byte) (*api.Frontier, error) {
	var f api.Frontier
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frontier: %w", err)
	}
	if f.StepStates == nil {
		f.StepStates = make(map[string]int64)
	}
	return &f, nil
}
