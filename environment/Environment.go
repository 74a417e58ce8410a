// Package environment outlines the interfaces and structs shared by the
// search engines to start and end episodes in a gridworld.GridWorld
package environment

import (
	"fmt"

	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/timestep"
)

// Starter implements a distribution of starting positions and samples
// starting positions for episodes
type Starter interface {
	Start() gridworld.Position
}

// Ender determines when an episode should end. If the episode should be
// ended, End() modifies the timestep so that its StepType field is
// timestep.Last and its EndType is the reason for ending.
type Ender interface {
	End(t *timestep.TimeStep) bool
}

// SingleStart is a Starter which always starts at the same position
type SingleStart struct {
	start gridworld.Position
}

// NewSingleStart returns a Starter which always starts episodes at
// position p in g. An error is returned if an agent cannot occupy p.
func NewSingleStart(p gridworld.Position, g *gridworld.GridWorld) (*SingleStart, error) {
	if _, err := g.CellAt(p); err != nil {
		return nil, fmt.Errorf("newSingleStart: %w", err)
	}
	if !g.CanMove(p) {
		return nil, fmt.Errorf("newSingleStart: %v is an obstacle", p)
	}
	return &SingleStart{p}, nil
}

// Start returns the starting position
func (s *SingleStart) Start() gridworld.Position {
	return s.start
}

// Enders combines multiple Enders into a single Ender. Enders are
// checked in order and the first to end the episode decides its
// EndType.
type Enders []Ender

// End ends the episode if any Ender ends it
func (e Enders) End(t *timestep.TimeStep) bool {
	for _, ender := range e {
		if ender.End(t) {
			return true
		}
	}
	return false
}
