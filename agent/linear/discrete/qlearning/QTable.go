package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// UndefinedValue is the value held by state-action pairs whose action
// would leave the grid. It is low enough that such actions are never
// greedy.
const UndefinedValue float64 = -1e9

// QTable is a tabular action-value function over a GridWorld. Values
// are stored in a dense matrix with one row per cell, in row-major
// order, and one column per gridworld.Direction. This is the linear
// action-value function of a one-hot state encoding.
type QTable struct {
	world  *gridworld.GridWorld
	values *mat.Dense
}

// NewQTable returns a new QTable for world. Defined state-action pairs
// are initialized to 0 and undefined pairs to UndefinedValue.
func NewQTable(world *gridworld.GridWorld) *QTable {
	values := mat.NewDense(world.Len(), gridworld.NumDirections, nil)

	for i := 0; i < world.Len(); i++ {
		p := world.Position(i)
		for _, d := range gridworld.Directions {
			if !world.InBounds(p.Move(d)) {
				values.Set(i, int(d), UndefinedValue)
			}
		}
	}

	return &QTable{world, values}
}

// Defined returns whether taking direction d at p stays in the grid
func (q *QTable) Defined(p gridworld.Position, d gridworld.Direction) bool {
	return q.world.InBounds(p) && q.world.InBounds(p.Move(d))
}

// DefinedDirections returns the directions which are defined at p, in
// Direction order
func (q *QTable) DefinedDirections(p gridworld.Position) []gridworld.Direction {
	directions := make([]gridworld.Direction, 0, gridworld.NumDirections)
	for _, d := range gridworld.Directions {
		if q.Defined(p, d) {
			directions = append(directions, d)
		}
	}
	return directions
}

// At returns the value of taking direction d at p
func (q *QTable) At(p gridworld.Position, d gridworld.Direction) float64 {
	return q.values.At(q.world.Index(p), int(d))
}

// Set sets the value of taking direction d at p. Set panics if the
// state-action pair is undefined.
func (q *QTable) Set(p gridworld.Position, d gridworld.Direction, v float64) {
	if !q.Defined(p, d) {
		panic(fmt.Sprintf("set: action %v undefined at %v", d, p))
	}
	q.values.Set(q.world.Index(p), int(d), v)
}

// Row returns a copy of the action values at p, indexed by Direction
func (q *QTable) Row(p gridworld.Position) []float64 {
	return mat.Row(nil, q.world.Index(p), q.values)
}

// Max returns the maximum action value at p over defined actions
func (q *QTable) Max(p gridworld.Position) float64 {
	return floats.Max(q.Row(p))
}

// Sum returns the sum of the defined action values at p
func (q *QTable) Sum(p gridworld.Position) float64 {
	row := q.Row(p)
	defined := make([]float64, 0, len(row))
	for _, d := range q.DefinedDirections(p) {
		defined = append(defined, row[d])
	}
	return floats.Sum(defined)
}

// Values returns the underlying matrix of action values
func (q *QTable) Values() *mat.Dense {
	return q.values
}

// ValueTable returns a copy of the table keyed by position
func (q *QTable) ValueTable() agent.ValueTable {
	table := make(agent.ValueTable, q.world.Len())
	for i := 0; i < q.world.Len(); i++ {
		var values agent.ActionValues
		copy(values[:], q.values.RawRowView(i))
		table[q.world.Position(i)] = values
	}
	return table
}
