// Package astar implements an incremental A* search over a
// gridworld.GridWorld.
//
// Rather than searching to completion, the search is advanced one
// expansion per call to Step. All search state (frontier, explored set,
// predecessors and costs) is kept between calls so that an external
// driver can step the search at whatever cadence it likes and draw each
// expanded cell as it goes.
package astar

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/timestep"
)

// ErrNoPath is returned by BestPath when the search has not found the
// reward cell, either because it is still searching or because no path
// exists
var ErrNoPath = errors.New("no path found")

// State is the state of an A* search
type State int

const (
	Ready State = iota
	Searching
	Found
	Exhausted
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Searching:
		return "Searching"
	case Found:
		return "Found"
	case Exhausted:
		return "Exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// AStar implements an incremental A* search from a start cell to a
// reward cell. Movement is 4-connected with uniform step cost and the
// heuristic is the Manhattan distance to the reward, which is
// consistent, so each cell is expanded at most once and the first path
// found is a shortest path.
type AStar struct {
	world  *gridworld.GridWorld
	start  gridworld.Position
	reward gridworld.Position

	state    State
	open     *frontier
	explored map[gridworld.Position]bool
	cameFrom map[gridworld.Position]gridworld.Position
	cost     map[gridworld.Position]int

	current gridworld.Position
	steps   int
	last    timestep.TimeStep
}

var _ agent.PathFinder = &AStar{}

// New returns a new A* search on world from start to reward. An error
// wrapping gridworld.ErrOutOfBounds is returned if start or reward is
// outside the world, and an error is returned if either is an obstacle.
func New(world *gridworld.GridWorld, start, reward gridworld.Position) (*AStar, error) {
	for _, p := range []gridworld.Position{start, reward} {
		if _, err := world.CellAt(p); err != nil {
			return nil, fmt.Errorf("new: %w", err)
		}
		if !world.CanMove(p) {
			return nil, fmt.Errorf("new: %v is an obstacle", p)
		}
	}

	a := &AStar{
		world:  world,
		start:  start,
		reward: reward,
	}
	a.Reset()

	return a, nil
}

// Reset discards all search state and restarts the search from the
// start cell
func (a *AStar) Reset() {
	a.open = newFrontier()
	a.explored = make(map[gridworld.Position]bool)
	a.cameFrom = make(map[gridworld.Position]gridworld.Position)
	a.cost = map[gridworld.Position]int{a.start: 0}

	a.open.push(a.start, 0, a.heuristic(a.start))
	a.current = a.start
	a.steps = 0
	a.state = Searching
	a.last = timestep.New(timestep.First, 0, a.start, 0, 0)
}

// heuristic returns the Manhattan distance from p to the reward
func (a *AStar) heuristic(p gridworld.Position) int {
	return p.Manhattan(a.reward)
}

// Step expands the next cell of the frontier and returns a TimeStep
// whose position is the expanded cell. The returned TimeStep is Last
// when the reward cell is reached (end type
// timestep.TerminalStateReached) or when the frontier runs out (end
// type timestep.Exhausted). Once the search is Found or Exhausted, Step
// is a no-op returning the terminal TimeStep.
func (a *AStar) Step() timestep.TimeStep {
	switch a.state {
	case Ready:
		panic("step: search not initialized, use New")
	case Found, Exhausted:
		return a.last
	}

	if a.open.Len() == 0 {
		return a.exhaust()
	}

	n := a.open.pop()
	a.current = n.pos
	a.steps++

	if n.pos == a.reward {
		a.state = Found
		step := timestep.New(timestep.Last, 0, n.pos, a.steps, 0)
		step.SetEnd(timestep.TerminalStateReached)
		a.last = step
		return step
	}

	a.explored[n.pos] = true
	for _, next := range a.world.Neighbours(n.pos) {
		if a.explored[next] {
			continue
		}

		tentative := n.cost + 1
		if known, ok := a.cost[next]; ok && tentative >= known {
			continue
		}

		a.cameFrom[next] = n.pos
		a.cost[next] = tentative
		a.open.push(next, tentative, a.heuristic(next))
	}

	if a.open.Len() == 0 {
		return a.exhaust()
	}

	a.last = timestep.New(timestep.Mid, 0, n.pos, a.steps, 0)
	return a.last
}

func (a *AStar) exhaust() timestep.TimeStep {
	a.state = Exhausted
	step := timestep.New(timestep.Last, 0, a.current, a.steps, 0)
	step.SetEnd(timestep.Exhausted)
	a.last = step
	return step
}

// CurrentCell returns the last expanded cell, or the start cell before
// the first call to Step
func (a *AStar) CurrentCell() gridworld.Position {
	return a.current
}

// Done returns whether the search has found the reward or exhausted the
// frontier
func (a *AStar) Done() bool {
	return a.state == Found || a.state == Exhausted
}

// State returns the state of the search
func (a *AStar) State() State {
	return a.state
}

// Steps returns the number of cells expanded so far
func (a *AStar) Steps() int {
	return a.steps
}

// Explored returns whether p has been expanded
func (a *AStar) Explored(p gridworld.Position) bool {
	return a.explored[p]
}

// Frontier returns the positions currently in the frontier
func (a *AStar) Frontier() []gridworld.Position {
	return a.open.positions()
}

// CostTo returns the best known cost from the start to p
func (a *AStar) CostTo(p gridworld.Position) (int, bool) {
	cost, ok := a.cost[p]
	return cost, ok
}

// BestPath returns the shortest path from start to reward, inclusive of
// both. An error wrapping ErrNoPath is returned unless the search is in
// state Found.
func (a *AStar) BestPath() ([]gridworld.Position, error) {
	if a.state != Found {
		return nil, fmt.Errorf("bestPath: search is %v: %w", a.state,
			ErrNoPath)
	}

	path := []gridworld.Position{a.reward}
	for p := a.reward; p != a.start; {
		p = a.cameFrom[p]
		path = append(path, p)
	}

	// Reverse so the path runs start to reward
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

func (a *AStar) String() string {
	str := "AStar | State: %v  |  Current: %v  |  Expanded: %d  |  " +
		"Frontier: %d"
	return fmt.Sprintf(str, a.state, a.current, a.steps, a.open.Len())
}
