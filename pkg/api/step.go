package api

import "context"

// Collection is a named set of items flowing through a channel. Item names
// are unique within a collection; the items themselves are opaque to the
// engine.
type Collection map[string]any

// ChannelMap binds channel names to the collections routed through them.
// Steps receive one as input and return one as output.
type ChannelMap map[string]Collection

// StepOutputs maps step ids to the outputs they produced during a single
// run. It is run-scoped and never persisted.
type StepOutputs map[string]ChannelMap

// Step is a named unit of computation in a graph. It declares the input
// channels it consumes and the output channels it produces, and transforms
// channel-indexed collections without observing other steps.
//
// Process must be a pure function of its declared inputs for a single
// invocation: it receives its own input map and returns a new output map,
// never shared mutable state.
type Step interface {
	// InputChannels declares the input channel names this step expects.
	InputChannels() []string

	// OutputChannels declares the output channel names this step produces.
	OutputChannels() []string

	// Process transforms the bound input collections into output
	// collections keyed by output channel name.
	Process(ctx context.Context, inputs ChannelMap) (ChannelMap, error)
}

// Graph composes steps through channel-qualified connections and executes
// them in dependency order.
//
// A graph is built incrementally with AddStep and Connect, then run. It must
// not be mutated once a run has started.
type Graph interface {
	// AddStep registers a step under a unique id.
	// It returns a DuplicateStepError if the id is already taken.
	AddStep(id string, step Step) error

	// Connect routes fromID's output channel to toID's input channel.
	// It returns an UnknownStepError for unregistered steps, an
	// InvalidChannelError for undeclared channels, and a
	// ChannelConflictError when the target input channel is already
	// connected. A failed Connect leaves the graph unchanged.
	Connect(fromID, toID, fromChannel, toChannel string) error

	// Validate checks the graph structure without running it: cycles,
	// entry steps, and unconnected input channels. Multiple findings are
	// joined into a single error.
	Validate() error

	// ExecutionOrder returns a topological ordering of all step ids, or a
	// CycleError naming the steps that could not be ordered. It is
	// recomputed on every call; orderings are not cached across mutations.
	ExecutionOrder() ([]string, error)

	// Run executes every step in topological order. The initial collection
	// is bound to the single declared input channel of the first step in
	// the order; each later step gathers its inputs from connected
	// upstream outputs and is skipped entirely when nothing was bound.
	Run(ctx context.Context, initial Collection) (StepOutputs, error)
}
