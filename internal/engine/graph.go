package engine

import (
	"errors"
	"fmt"

	"github.com/jhalonen/flowgrid/pkg/api"
)

// connection is a channel-qualified edge between two registered steps.
type connection struct {
	fromStep    string
	toStep      string
	fromChannel string
	toChannel   string
}

func (c connection) String() string {
	return fmt.Sprintf("%s[%s] -> %s[%s]", c.fromStep, c.fromChannel, c.toStep, c.toChannel)
}

// graph is the in-memory graph implementation. It is not safe for
// concurrent mutation; build the graph fully before running it.
type graph struct {
	steps map[string]api.Step

	// insertion keeps step ids in AddStep order so that ordering and
	// iteration stay deterministic across runs.
	insertion []string

	// adjacency maps a step to its direct dependents, ignoring channel
	// identity. Used purely for ordering; duplicates are harmless.
	adjacency map[string][]string

	connections []connection
	observer    api.Observer
}

// New returns an empty graph. A nil observer defaults to NoopObserver.
func New(obs api.Observer) api.Graph {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	return &graph{
		steps:     make(map[string]api.Step),
		adjacency: make(map[string][]string),
		observer:  obs,
	}
}

func (g *graph) AddStep(id string, step api.Step) error {
	if id == "" {
		return errors.New("step id must not be empty")
	}
	if step == nil {
		return fmt.Errorf("step %s is nil", id)
	}
	if _, ok := g.steps[id]; ok {
		return &api.DuplicateStepError{ID: id}
	}

	g.steps[id] = step
	g.insertion = append(g.insertion, id)
	g.adjacency[id] = nil
	return nil
}

func (g *graph) Connect(fromID, toID, fromChannel, toChannel string) error {
	from, ok := g.steps[fromID]
	if !ok {
		return &api.UnknownStepError{ID: fromID}
	}
	to, ok := g.steps[toID]
	if !ok {
		return &api.UnknownStepError{ID: toID}
	}

	if !contains(from.OutputChannels(), fromChannel) {
		return &api.InvalidChannelError{
			StepID:   fromID,
			Channel:  fromChannel,
			Output:   true,
			Declared: from.OutputChannels(),
		}
	}
	if !contains(to.InputChannels(), toChannel) {
		return &api.InvalidChannelError{
			StepID:   toID,
			Channel:  toChannel,
			Declared: to.InputChannels(),
		}
	}

	// Fan-in onto one input channel would make the router drop all but one
	// binding, so a second connection to an occupied channel is rejected.
	for _, c := range g.connections {
		if c.toStep == toID && c.toChannel == toChannel {
			return &api.ChannelConflictError{StepID: toID, Channel: toChannel}
		}
	}

	g.adjacency[fromID] = append(g.adjacency[fromID], toID)
	g.connections = append(g.connections, connection{
		fromStep:    fromID,
		toStep:      toID,
		fromChannel: fromChannel,
		toChannel:   toChannel,
	})
	return nil
}

// Validate lints the graph without running it. Beyond the cycle check it
// reports entry-step problems and unconnected input channels of non-entry
// steps; those steps would silently be skipped by Run.
func (g *graph) Validate() error {
	if g.hasCycle() {
		_, err := g.ExecutionOrder()
		return err
	}

	var errs []error

	incoming := make(map[string]bool, len(g.steps))
	for _, c := range g.connections {
		incoming[c.toStep] = true
	}

	var entries []string
	for _, id := range g.insertion {
		if !incoming[id] {
			entries = append(entries, id)
		}
	}
	if len(g.steps) > 0 && len(entries) == 0 {
		errs = append(errs, errors.New("no entry steps: every step has incoming connections"))
	}

	for _, id := range g.insertion {
		if !incoming[id] {
			// Entry steps receive the initial collection instead.
			continue
		}
		step := g.steps[id]
		for _, ch := range step.InputChannels() {
			if !g.channelConnected(id, ch) {
				errs = append(errs, fmt.Errorf("step %s: input channel %q is not connected", id, ch))
			}
		}
	}

	return errors.Join(errs...)
}

func (g *graph) channelConnected(stepID, channel string) bool {
	for _, c := range g.connections {
		if c.toStep == stepID && c.toChannel == channel {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
