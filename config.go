package flowgrid

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// GraphConfig is a declarative graph description, typically loaded from a
// YAML file:
//
//	name: enrich
//	steps:
//	  - id: load
//	    uses: loader
//	  - id: clean
//	    uses: cleaner
//	connections:
//	  - from: load
//	    to: clean
type GraphConfig struct {
	Name        string             `yaml:"name"`
	Steps       []StepConfig       `yaml:"steps"`
	Connections []ConnectionConfig `yaml:"connections"`
}

// StepConfig declares one step: its graph id and the registry key of the
// implementation to use.
type StepConfig struct {
	ID   string `yaml:"id"`
	Uses string `yaml:"uses"`
}

// ConnectionConfig declares one channel-qualified edge. FromChannel and
// ToChannel default to the conventional "output" and "input".
type ConnectionConfig struct {
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	FromChannel string `yaml:"from_channel"`
	ToChannel   string `yaml:"to_channel"`
}

// StepRegistry maps the "uses" keys of a GraphConfig to step factories.
type StepRegistry map[string]func() Step

// LoadGraphConfig decodes a YAML graph description from r.
func LoadGraphConfig(r io.Reader) (*GraphConfig, error) {
	var cfg GraphConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode graph config: %w", err)
	}
	return &cfg, nil
}

// Build instantiates the configured steps from reg, wires the
// connections, and validates the resulting graph.
func (c *GraphConfig) Build(reg StepRegistry) (Graph, error) {
	return c.BuildWithObserver(reg, nil)
}

// BuildWithObserver is Build with an observer attached to the graph.
func (c *GraphConfig) BuildWithObserver(reg StepRegistry, obs Observer) (Graph, error) {
	g := NewGraphWithObserver(obs)
	for _, sc := range c.Steps {
		factory, ok := reg[sc.Uses]
		if !ok {
			return nil, fmt.Errorf("step %s: no registered implementation %q", sc.ID, sc.Uses)
		}
		if err := g.AddStep(sc.ID, factory()); err != nil {
			return nil, err
		}
	}
	for _, cc := range c.Connections {
		fromCh := cc.FromChannel
		if fromCh == "" {
			fromCh = "output"
		}
		toCh := cc.ToChannel
		if toCh == "" {
			toCh = "input"
		}
		if err := g.Connect(cc.From, cc.To, fromCh, toCh); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
