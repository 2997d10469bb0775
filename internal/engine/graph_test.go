package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jhalonen/flowgrid/pkg/api"
)

type testStep struct {
	inputs  []string
	outputs []string
	process func(ctx context.Context, in api.ChannelMap) (api.ChannelMap, error)
}

func (s *testStep) InputChannels() []string  { return s.inputs }
func (s *testStep) OutputChannels() []string { return s.outputs }

func (s *testStep) Process(ctx context.Context, in api.ChannelMap) (api.ChannelMap, error) {
	if s.process != nil {
		return s.process(ctx, in)
	}
	return api.ChannelMap{"output": in["input"]}, nil
}

func plainStep() *testStep {
	return &testStep{inputs: []string{"input"}, outputs: []string{"output"}}
}

func TestAddStepErrors(t *testing.T) {
	g := New(nil)

	if err := g.AddStep("", plainStep()); err == nil {
		t.Fatal("expected error for empty id")
	}
	if err := g.AddStep("a", nil); err == nil {
		t.Fatal("expected error for nil step")
	}

	if err := g.AddStep("a", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	err := g.AddStep("a", plainStep())
	var dup *api.DuplicateStepError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateStepError, got %v", err)
	}
	if dup.ID != "a" {
		t.Fatalf("wrong step id in error: %s", dup.ID)
	}
}

func TestConnectUnknownStep(t *testing.T) {
	g := New(nil)
	if err := g.AddStep("a", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}

	var unknown *api.UnknownStepError
	if err := g.Connect("missing", "a", "output", "input"); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownStepError for source, got %v", err)
	}
	if err := g.Connect("a", "missing", "output", "input"); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownStepError for target, got %v", err)
	}
	if unknown.ID != "missing" {
		t.Fatalf("wrong step id in error: %s", unknown.ID)
	}
}

func TestConnectInvalidChannel(t *testing.T) {
	g := New(nil)
	if err := g.AddStep("a", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if err := g.AddStep("b", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}

	var invalid *api.InvalidChannelError

	err := g.Connect("a", "b", "bogus", "input")
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidChannelError, got %v", err)
	}
	if !invalid.Output || invalid.StepID != "a" || invalid.Channel != "bogus" {
		t.Fatalf("unexpected error fields: %+v", invalid)
	}
	if len(invalid.Declared) != 1 || invalid.Declared[0] != "output" {
		t.Fatalf("declared channels not reported: %v", invalid.Declared)
	}

	err = g.Connect("a", "b", "output", "bogus")
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidChannelError, got %v", err)
	}
	if invalid.Output || invalid.StepID != "b" {
		t.Fatalf("unexpected error fields: %+v", invalid)
	}

	// A failed connect must not leave a half-registered edge behind.
	if err := g.Connect("a", "b", "output", "input"); err != nil {
		t.Fatalf("connect after failed attempts: %v", err)
	}
	order, err := g.ExecutionOrder()
	if err != nil {
		t.Fatalf("ExecutionOrder: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestConnectChannelConflict(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		if err := g.AddStep(id, plainStep()); err != nil {
			t.Fatalf("AddStep %s: %v", id, err)
		}
	}
	if err := g.Connect("a", "c", "output", "input"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	err := g.Connect("b", "c", "output", "input")
	var conflict *api.ChannelConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ChannelConflictError, got %v", err)
	}
	if conflict.StepID != "c" || conflict.Channel != "input" {
		t.Fatalf("unexpected error fields: %+v", conflict)
	}
}

func TestValidateCycle(t *testing.T) {
	g := New(nil)
	if err := g.AddStep("a", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if err := g.AddStep("b", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if err := g.Connect("a", "b", "output", "input"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := g.Connect("b", "a", "output", "input"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	var cycle *api.CycleError
	if err := g.Validate(); !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}

func TestValidateUnconnectedInput(t *testing.T) {
	g := New(nil)
	if err := g.AddStep("a", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	merge := &testStep{inputs: []string{"left", "right"}, outputs: []string{"output"}}
	if err := g.AddStep("m", merge); err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if err := g.Connect("a", "m", "output", "left"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	err := g.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), `"right"`) {
		t.Fatalf("error does not name the unconnected channel: %v", err)
	}
}

func TestValidateOK(t *testing.T) {
	g := New(nil)
	if err := g.AddStep("a", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if err := g.AddStep("b", plainStep()); err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if err := g.Connect("a", "b", "output", "input"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
