package gridworld

import "fmt"

// CellKind determines what occupies a cell of a GridWorld
type CellKind int

const (
	Empty CellKind = iota
	Obstacle
	Start
	Reward
)

func (k CellKind) String() string {
	switch k {
	case Empty:
		return "Empty"
	case Obstacle:
		return "Obstacle"
	case Start:
		return "Start"
	case Reward:
		return "Reward"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// Cell is a single cell of a GridWorld. Cells are immutable once the
// GridWorld is constructed. Any visual state (e.g. illumination) is
// owned by whoever draws the grid.
type Cell struct {
	Position
	Kind CellKind
}

// IsObstacle returns whether the cell blocks movement
func (c Cell) IsObstacle() bool {
	return c.Kind == Obstacle
}
