package api

import (
	"fmt"
	"strings"
)

// DuplicateStepError is returned by AddStep when the id is already
// registered.
type DuplicateStepError struct {
	ID string
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("step already registered: %s", e.ID)
}

// UnknownStepError is returned by Connect when one of the endpoints has not
// been registered.
type UnknownStepError struct {
	ID string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step: %s", e.ID)
}

// InvalidChannelError is returned by Connect when a channel is not among the
// step's declared channels. Output reports which side of the connection was
// invalid.
type InvalidChannelError struct {
	StepID   string
	Channel  string
	Output   bool
	Declared []string
}

func (e *InvalidChannelError) Error() string {
	kind := "input"
	if e.Output {
		kind = "output"
	}
	return fmt.Sprintf("step %s has no %s channel %q (declared: %s)",
		e.StepID, kind, e.Channel, strings.Join(e.Declared, ", "))
}

// ChannelConflictError is returned by Connect when the target input channel
// already has a connection. Fan-in onto a single channel silently loses
// data; it must go through an explicit merge step instead.
type ChannelConflictError struct {
	StepID  string
	Channel string
}

func (e *ChannelConflictError) Error() string {
	return fmt.Sprintf("input channel %q of step %s is already connected; use a merge step for fan-in",
		e.Channel, e.StepID)
}

// CycleError reports that the graph cannot be ordered. Steps holds every
// step excluded from the topological order.
type CycleError struct {
	Steps []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("graph contains a cycle; unordered steps: %s", strings.Join(e.Steps, ", "))
}

// AmbiguousEntryError is returned by Run when the first step in the
// execution order does not declare exactly one input channel, so the engine
// cannot decide where the initial collection belongs.
type AmbiguousEntryError struct {
	StepID   string
	Channels []string
}

func (e *AmbiguousEntryError) Error() string {
	if len(e.Channels) == 0 {
		return fmt.Sprintf("entry step %s declares no input channels", e.StepID)
	}
	return fmt.Sprintf("entry step %s declares %d input channels (%s); exactly one is required",
		e.StepID, len(e.Channels), strings.Join(e.Channels, ", "))
}

// BatchSourceError wraps a failure to fetch a batch from the source.
type BatchSourceError struct {
	BatchID int64
	Err     error
}

func (e *BatchSourceError) Error() string {
	return fmt.Sprintf("fetch batch %d: %v", e.BatchID, e.Err)
}

func (e *BatchSourceError) Unwrap() error {
	return e.Err
}

// TransformError wraps a transform failure with enough context to identify
// the offending stage and batch. The frontier remains at the last committed
// batch; re-running with resume reprocesses the failed batch from its first
// transform.
type TransformError struct {
	Transform string
	BatchID   int64
	Err       error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s failed on batch %d: %v", e.Transform, e.BatchID, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
