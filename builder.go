package flowgrid

import (
	"errors"
	"fmt"
)

// GraphBuilder provides a fluent API for assembling graphs:
//
//	g, err := flowgrid.NewGraphBuilder().
//		Step("load", loadStep).
//		Step("clean", cleanStep).
//		Pipe("load", "clean").
//		Build()
//
// Programmer errors (empty ids, nil steps) panic immediately; graph-level
// errors (duplicates, unknown steps, bad channels, cycles) are collected
// and returned from Build.
type GraphBuilder struct {
	graph    Graph
	observer Observer
	errs     []error
}

// NewGraphBuilder creates an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

// WithObserver attaches an observer to the graph under construction.
// It must be called before the first Step.
func (b *GraphBuilder) WithObserver(obs Observer) *GraphBuilder {
	if b.graph != nil {
		panic("flowgrid: WithObserver must be called before Step")
	}
	b.observer = obs
	return b
}

// Step registers a step under the given id.
func (b *GraphBuilder) Step(id string, step Step) *GraphBuilder {
	if id == "" {
		panic("flowgrid: step id must not be empty")
	}
	if step == nil {
		panic(fmt.Sprintf("flowgrid: step %s must not be nil", id))
	}
	if b.graph == nil {
		b.graph = NewGraphWithObserver(b.observer)
	}
	if err := b.graph.AddStep(id, step); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Connect wires fromID's fromChannel output into toID's toChannel input.
func (b *GraphBuilder) Connect(fromID, toID, fromChannel, toChannel string) *GraphBuilder {
	if b.graph == nil {
		b.errs = append(b.errs, fmt.Errorf("connect %s -> %s: no steps registered", fromID, toID))
		return b
	}
	if err := b.graph.Connect(fromID, toID, fromChannel, toChannel); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Pipe is Connect with the conventional "output" and "input" channels.
func (b *GraphBuilder) Pipe(fromID, toID string) *GraphBuilder {
	return b.Connect(fromID, toID, "output", "input")
}

// Build validates the assembled graph and returns it.
func (b *GraphBuilder) Build() (Graph, error) {
	if b.graph == nil {
		return nil, errors.New("flowgrid: graph has no steps")
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if err := b.graph.Validate(); err != nil {
		return nil, err
	}
	return b.graph, nil
}

// MustBuild is Build that panics on error, for static graphs known to
// be valid.
func (b *GraphBuilder) MustBuild() Graph {
	g, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("flowgrid: invalid graph: %v", err))
	}
	return g
}
