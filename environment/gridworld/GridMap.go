package gridworld

import (
	"fmt"
	"strings"
)

// GridMap is an immutable description of the cells of a grid, as
// parsed from a map file or produced by Generate. A GridMap only
// describes a grid; use New to construct a GridWorld from it.
type GridMap struct {
	kinds  [][]CellKind
	start  Position
	reward Position
}

// NewGridMap validates kinds and returns the GridMap it describes. The
// kinds are indexed as kinds[row][col] and are copied.
//
// An error wrapping ErrInvalidMap is returned if kinds is empty, is not
// rectangular, or does not contain exactly one Start and exactly one
// Reward cell.
func NewGridMap(kinds [][]CellKind) (GridMap, error) {
	if len(kinds) == 0 || len(kinds[0]) == 0 {
		return GridMap{}, fmt.Errorf("newGridMap: map is empty: %w",
			ErrInvalidMap)
	}

	cols := len(kinds[0])
	var starts, rewards []Position
	copied := make([][]CellKind, len(kinds))

	for r, row := range kinds {
		if len(row) != cols {
			return GridMap{}, fmt.Errorf("newGridMap: row %d has %d "+
				"columns, expected %d: %w", r, len(row), cols, ErrInvalidMap)
		}

		copied[r] = make([]CellKind, cols)
		for c, kind := range row {
			switch kind {
			case Start:
				starts = append(starts, Position{r, c})
			case Reward:
				rewards = append(rewards, Position{r, c})
			case Empty, Obstacle:
			default:
				return GridMap{}, fmt.Errorf("newGridMap: unknown cell "+
					"kind %v at %v: %w", kind, Position{r, c}, ErrInvalidMap)
			}
			copied[r][c] = kind
		}
	}

	if len(starts) != 1 {
		return GridMap{}, fmt.Errorf("newGridMap: expected exactly one "+
			"start cell, found %d: %w", len(starts), ErrInvalidMap)
	}
	if len(rewards) != 1 {
		return GridMap{}, fmt.Errorf("newGridMap: expected exactly one "+
			"reward cell, found %d: %w", len(rewards), ErrInvalidMap)
	}

	return GridMap{kinds: copied, start: starts[0], reward: rewards[0]}, nil
}

// Dims returns the number of rows and columns in the map
func (m GridMap) Dims() (rows, cols int) {
	if len(m.kinds) == 0 {
		return 0, 0
	}
	return len(m.kinds), len(m.kinds[0])
}

// At returns the kind of the cell at row r and column c. At panics if
// (r, c) is outside the map.
func (m GridMap) At(r, c int) CellKind {
	return m.kinds[r][c]
}

// Start returns the position of the start cell
func (m GridMap) Start() Position {
	return m.start
}

// Reward returns the position of the reward cell
func (m GridMap) Reward() Position {
	return m.reward
}

// String returns the map drawn with one character per cell
func (m GridMap) String() string {
	var b strings.Builder
	for r, row := range m.kinds {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, kind := range row {
			b.WriteByte(kindRune(kind))
		}
	}
	return b.String()
}

func kindRune(k CellKind) byte {
	switch k {
	case Obstacle:
		return '#'
	case Start:
		return 'S'
	case Reward:
		return 'R'
	default:
		return '.'
	}
}
