package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhalonen/flowgrid/pkg/api"
)

// inputsFor assembles a step's input map by scanning all connections that
// target it. A channel with no satisfying connection is absent from the
// map, not bound to an empty collection.
func (g *graph) inputsFor(stepID string, outputs api.StepOutputs) api.ChannelMap {
	inputs := make(api.ChannelMap)
	for _, c := range g.connections {
		if c.toStep != stepID {
			continue
		}
		upstream, ok := outputs[c.fromStep]
		if !ok {
			continue
		}
		if coll, ok := upstream[c.fromChannel]; ok {
			inputs[c.toChannel] = coll
		}
	}
	return inputs
}

func (g *graph) Run(ctx context.Context, initial api.Collection) (api.StepOutputs, error) {
	runID := uuid.NewString()
	g.observer.OnRunStart(ctx, runID, len(g.steps))

	// The DFS check answers cyclic-or-not; Kahn's leftover set then
	// supplies the step names for the error.
	if g.hasCycle() {
		_, err := g.ExecutionOrder()
		g.observer.OnRunFailed(ctx, runID, err)
		return nil, err
	}

	order, err := g.ExecutionOrder()
	if err != nil {
		g.observer.OnRunFailed(ctx, runID, err)
		return nil, err
	}

	outputs := make(api.StepOutputs, len(order))

	for i, id := range order {
		select {
		case <-ctx.Done():
			g.observer.OnRunFailed(ctx, runID, ctx.Err())
			return nil, ctx.Err()
		default:
		}

		step := g.steps[id]

		var inputs api.ChannelMap
		if i == 0 {
			declared := step.InputChannels()
			if len(declared) != 1 {
				entryErr := &api.AmbiguousEntryError{StepID: id, Channels: declared}
				g.observer.OnRunFailed(ctx, runID, entryErr)
				return nil, entryErr
			}
			inputs = api.ChannelMap{declared[0]: initial}
		} else {
			inputs = g.inputsFor(id, outputs)
		}

		// A step with nothing bound produces nothing for its dependents.
		if len(inputs) == 0 {
			g.observer.OnStepSkipped(ctx, runID, id)
			continue
		}

		g.observer.OnStepStart(ctx, runID, id, i)
		start := time.Now()

		out, err := step.Process(ctx, inputs)

		g.observer.OnStepCompleted(ctx, runID, id, i, err, time.Since(start))
		if err != nil {
			wrapped := fmt.Errorf("step %s: %w", id, err)
			g.observer.OnRunFailed(ctx, runID, wrapped)
			return nil, wrapped
		}

		outputs[id] = out
	}

	g.observer.OnRunCompleted(ctx, runID)
	return outputs, nil
}
