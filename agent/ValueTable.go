package agent

import (
	"sort"

	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

// ActionValues holds the value of each gridworld.Direction in a single
// state, indexed by Direction
type ActionValues [gridworld.NumDirections]float64

// ValueTable maps each state of a GridWorld to its action values
type ValueTable map[gridworld.Position]ActionValues

// Value returns the value of taking direction d at p
func (v ValueTable) Value(p gridworld.Position, d gridworld.Direction) float64 {
	return v[p][d]
}

// Positions returns the states in the table in row-major order
func (v ValueTable) Positions() []gridworld.Position {
	positions := make([]gridworld.Position, 0, len(v))
	for p := range v {
		positions = append(positions, p)
	}

	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Row != positions[j].Row {
			return positions[i].Row < positions[j].Row
		}
		return positions[i].Col < positions[j].Col
	})
	return positions
}

// Equal returns whether two ValueTables hold the same values
func (v ValueTable) Equal(other ValueTable) bool {
	if len(v) != len(other) {
		return false
	}
	for p, values := range v {
		if otherValues, ok := other[p]; !ok || otherValues != values {
			return false
		}
	}
	return true
}
