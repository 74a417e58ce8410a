package astar

import (
	"fmt"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

func init() {
	agent.Register(agent.AStar, Config{})
}

// Config implements a configuration for an A* search. By default the
// search runs from the world's start cell to its reward cell. Start
// overrides the start cell when non-nil.
type Config struct {
	Start *gridworld.Position `json:",omitempty"`
}

// Validate checks a Config to ensure it is a valid configuration
func (c Config) Validate() error {
	if c.Start != nil && (c.Start.Row < 0 || c.Start.Col < 0) {
		return fmt.Errorf("validate: negative start position %v", *c.Start)
	}
	return nil
}

// CreateAgent creates a new A* search from the Config. The seed is
// unused since the search is deterministic.
func (c Config) CreateAgent(world *gridworld.GridWorld,
	seed uint64) (agent.Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createAgent: %w", err)
	}

	start := world.Start()
	if c.Start != nil {
		start = *c.Start
	}

	a, err := New(world, start, world.Reward())
	if err != nil {
		return nil, fmt.Errorf("createAgent: %w", err)
	}
	return a, nil
}

// ValidAgent returns whether the argument Agent is valid for the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*AStar)
	return ok
}

// Type returns the type of agent which the Config describes
func (c Config) Type() agent.Type {
	return agent.AStar
}
