package flowgrid

import (
	"context"
	"fmt"
)

// funcStep adapts a plain function to the Step interface.
type funcStep struct {
	inputs  []string
	outputs []string
	fn      func(ctx context.Context, inputs ChannelMap) (ChannelMap, error)
}

// FuncStep wraps fn as a Step with the given declared channels.
func FuncStep(inputs, outputs []string, fn func(ctx context.Context, inputs ChannelMap) (ChannelMap, error)) Step {
	return &funcStep{inputs: inputs, outputs: outputs, fn: fn}
}

func (s *funcStep) InputChannels() []string  { return s.inputs }
func (s *funcStep) OutputChannels() []string { return s.outputs }

func (s *funcStep) Process(ctx context.Context, inputs ChannelMap) (ChannelMap, error) {
	return s.fn(ctx, inputs)
}

// TransformStep wraps a per-collection function as a single-input,
// single-output Step on the conventional "input" and "output" channels.
func TransformStep(fn func(ctx context.Context, in Collection) (Collection, error)) Step {
	return FuncStep([]string{"input"}, []string{"output"}, func(ctx context.Context, inputs ChannelMap) (ChannelMap, error) {
		out, err := fn(ctx, inputs["input"])
		if err != nil {
			return nil, err
		}
		return ChannelMap{"output": out}, nil
	})
}

// PassthroughStep forwards its input collection unchanged. Useful as a
// named junction when several consumers need the same data.
func PassthroughStep() Step {
	return TransformStep(func(ctx context.Context, in Collection) (Collection, error) {
		return in, nil
	})
}

// RouteStep fans items out across the declared output channels. route is
// called for every item in the input collection and returns the channel
// name the item belongs on; an undeclared name fails the step. Every
// declared channel appears in the output, empty or not, so downstream
// steps always run.
func RouteStep(outputs []string, route func(name string, item any) string) Step {
	declared := make(map[string]bool, len(outputs))
	for _, ch := range outputs {
		declared[ch] = true
	}
	return FuncStep([]string{"input"}, outputs, func(ctx context.Context, inputs ChannelMap) (ChannelMap, error) {
		out := make(ChannelMap, len(outputs))
		for _, ch := range outputs {
			out[ch] = Collection{}
		}
		for name, item := range inputs["input"] {
			ch := route(name, item)
			if !declared[ch] {
				return nil, fmt.Errorf("route step: item %s routed to undeclared channel %s", name, ch)
			}
			out[ch][name] = item
		}
		return out, nil
	})
}

// FilterStep splits its input into "match" and "rest" channels according
// to the predicate.
func FilterStep(match func(name string, item any) bool) Step {
	return RouteStep([]string{"match", "rest"}, func(name string, item any) string {
		if match(name, item) {
			return "match"
		}
		return "rest"
	})
}

// MergeStep combines the given input channels into a single "output"
// collection. Channels are merged in declaration order, so on a key
// collision the later channel wins.
func MergeStep(inputChannels ...string) Step {
	return FuncStep(inputChannels, []string{"output"}, func(ctx context.Context, inputs ChannelMap) (ChannelMap, error) {
		merged := Collection{}
		for _, ch := range inputChannels {
			for name, item := range inputs[ch] {
				merged[name] = item
			}
		}
		return ChannelMap{"output": merged}, nil
	})
}
