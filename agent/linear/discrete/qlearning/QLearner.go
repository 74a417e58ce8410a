package qlearning

import (
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

// QLearner implements the update functionality for the Q-Learning
// algorithm.
type QLearner struct {
	table        *QTable
	learningRate float64
	discount     float64
}

// NewQLearner creates a new QLearner struct
//
// table is the action-value table to learn
func NewQLearner(table *QTable, learningRate, discount float64) *QLearner {
	return &QLearner{table, learningRate, discount}
}

// Step updates the value of taking action in state, given the reward
// received and the next state reached:
//
//	Q(s, a) += α (r + γ max Q(s', ·) - Q(s, a))
func (q *QLearner) Step(state gridworld.Position, action gridworld.Direction,
	reward float64, nextState gridworld.Position) {
	// Create the update target
	target := reward + q.discount*q.table.Max(nextState)

	// Find the current estimate of the taken action
	currentEstimate := q.table.At(state, action)

	q.table.Set(state, action,
		currentEstimate+q.learningRate*(target-currentEstimate))
}

// Table returns the table updated by the learner
func (q *QLearner) Table() *QTable {
	return q.table
}
