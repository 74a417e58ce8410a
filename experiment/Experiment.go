// Package experiment implements functionality for driving a search
// engine through a gridworld.GridWorld at a fixed cadence
package experiment

import (
	"fmt"
	"time"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

const (
	// DefaultStepInterval is the delay between steps of a search
	DefaultStepInterval time.Duration = 3 * time.Millisecond

	// DefaultPathInterval is the delay between cells when walking the
	// best path found by a search
	DefaultPathInterval time.Duration = 200 * time.Millisecond
)

// Config represents a configuration of a Session
type Config struct {
	Agent agent.TypedConfig
	Seed  uint64

	// StepInterval is the delay between calls to the agent's Step
	// method and PathInterval the delay between cells when walking a
	// path. Non-positive intervals run without delay.
	StepInterval time.Duration
	PathInterval time.Duration
}

// NewConfig returns a Config for agents configured by c with the
// default intervals
func NewConfig(c agent.Config, seed uint64) Config {
	return Config{
		Agent:        agent.NewTypedConfig(c),
		Seed:         seed,
		StepInterval: DefaultStepInterval,
		PathInterval: DefaultPathInterval,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Agent.Config == nil {
		return fmt.Errorf("validate: no agent config")
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// CreateSession creates the agent described by the Config on world
// and returns a new Session driving it
func (c Config) CreateSession(world *gridworld.GridWorld) (*Session, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createSession: %w", err)
	}

	a, err := c.Agent.CreateAgent(world, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("createSession: could not create agent: %w",
			err)
	}
	return NewSession(world, a, c)
}
