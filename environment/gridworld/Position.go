package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/gridagent/utils/intutils"
)

// Position is a (row, column) coordinate in a GridWorld. Positions are
// 0-indexed and row-major.
type Position struct {
	Row int
	Col int
}

// String returns the Position as a string
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Move returns the Position one cell away from p in direction d. The
// returned Position may lie outside of any GridWorld.
func (p Position) Move(d Direction) Position {
	dRow, dCol := d.Delta()
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

// Manhattan returns the Manhattan distance between p and other
func (p Position) Manhattan(other Position) int {
	return intutils.Abs(p.Row-other.Row) + intutils.Abs(p.Col-other.Col)
}

// Adjacent returns whether p and other are 4-adjacent
func (p Position) Adjacent(other Position) bool {
	return p.Manhattan(other) == 1
}

// Direction is a movement action in a GridWorld
type Direction int

// Directions are ordered. This ordering is the tie-break used by greedy
// action selection.
const (
	Up Direction = iota
	Down
	Left
	Right
)

// NumDirections is the number of movement actions
const NumDirections int = 4

// Directions lists all movement actions in order
var Directions = [NumDirections]Direction{Up, Down, Left, Right}

// Delta returns the unit (row, col) offset of the Direction
func (d Direction) Delta() (dRow, dCol int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	panic(fmt.Sprintf("delta: no such direction %d", int(d)))
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection returns the Direction named s
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("parseDirection: no such direction %q", s)
}
