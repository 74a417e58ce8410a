// Package agent defines the interfaces shared by the search engines
// that move an agent through a gridworld.GridWorld
package agent

import (
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/timestep"
)

// Agent is a search engine that is advanced one unit of work at a time
// by an external driver.
//
// An Agent holds all of its working state between calls to Step, so
// that a driver may call Step at any cadence, stop calling it at any
// point, and resume later. Agents are not safe for concurrent use: at
// most one call to Step may be in flight at a time.
type Agent interface {
	// Step performs a single unit of work and returns the resulting
	// TimeStep. Once Done returns true, Step is a no-op which returns
	// the terminal TimeStep again.
	Step() timestep.TimeStep

	// CurrentCell returns the position of the agent after the last
	// call to Step
	CurrentCell() gridworld.Position

	// Done returns whether the Agent has reached a terminal state
	Done() bool
}

// PathFinder is an Agent that searches for a path from a start cell to
// the reward cell
type PathFinder interface {
	Agent

	// BestPath returns the path found from start to reward, inclusive
	BestPath() ([]gridworld.Position, error)
}

// Learner is an Agent that learns a value table by interacting with a
// GridWorld over many episodes, then follows the greedy policy with
// respect to that table.
type Learner interface {
	Agent

	// IsTraining returns whether the Learner is still learning
	IsTraining() bool

	// RestartEpisode moves the agent to from, or to the default start
	// position if from is nil, and resets the episode step counter. The
	// learned values are never changed.
	RestartEpisode(from *gridworld.Position) error

	// SumValueForCell returns the sum of the action values at p
	SumValueForCell(p gridworld.Position) (float64, error)

	// ValueTable returns a copy of the learned action values
	ValueTable() ValueTable
}

// Eval returns whether a Learner has finished training. Non-Learner
// Agents are always considered evaluated.
func Eval(a Agent) bool {
	l, ok := a.(Learner)
	return !ok || !l.IsTraining()
}
