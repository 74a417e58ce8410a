// Package gridworld implements 2D grid worlds containing obstacles, a
// single start cell, and a single reward cell.
//
// A GridWorld only describes the grid and which moves are legal on it.
// It keeps no agent position: whichever search engine drives the agent
// owns the agent's position.
package gridworld

import (
	"fmt"
)

// GridWorld represents a grid of cells with 4-connected movement
type GridWorld struct {
	r, c   int
	cells  [][]Cell
	start  Position
	reward Position
}

// New creates a new GridWorld from a GridMap. An error wrapping
// ErrInvalidMap is returned if the map is empty or does not contain
// exactly one start and one reward cell.
func New(m GridMap) (*GridWorld, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("new: map is empty: %w", ErrInvalidMap)
	}

	// Revalidate, m may not have been built by NewGridMap
	m, err := NewGridMap(m.kinds)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	cells := make([][]Cell, r)
	for i := 0; i < r; i++ {
		cells[i] = make([]Cell, c)
		for j := 0; j < c; j++ {
			cells[i][j] = Cell{Position: Position{i, j}, Kind: m.At(i, j)}
		}
	}

	return &GridWorld{
		r:      r,
		c:      c,
		cells:  cells,
		start:  m.Start(),
		reward: m.Reward(),
	}, nil
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// Len returns the number of cells in the GridWorld
func (g *GridWorld) Len() int {
	return g.r * g.c
}

// InBounds returns whether p lies within the GridWorld
func (g *GridWorld) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.r && p.Col >= 0 && p.Col < g.c
}

// CanMove returns whether an agent can occupy p, that is p is within
// bounds and is not an obstacle
func (g *GridWorld) CanMove(p Position) bool {
	return g.InBounds(p) && !g.cells[p.Row][p.Col].IsObstacle()
}

// CellAt returns the cell at p. An error wrapping ErrOutOfBounds is
// returned if p lies outside the GridWorld.
func (g *GridWorld) CellAt(p Position) (Cell, error) {
	if !g.InBounds(p) {
		return Cell{}, fmt.Errorf("cellAt: %v not in %dx%d grid: %w", p,
			g.r, g.c, ErrOutOfBounds)
	}
	return g.cells[p.Row][p.Col], nil
}

// Cells returns all cells in row-major order
func (g *GridWorld) Cells() []Cell {
	cells := make([]Cell, 0, g.Len())
	for _, row := range g.cells {
		cells = append(cells, row...)
	}
	return cells
}

// Start returns the default starting position of the agent
func (g *GridWorld) Start() Position {
	return g.start
}

// Reward returns the position of the reward cell
func (g *GridWorld) Reward() Position {
	return g.reward
}

// AtGoal returns whether p is the reward cell
func (g *GridWorld) AtGoal(p Position) bool {
	return p == g.reward
}

// Index returns the row-major index of p. Index panics if p is out of
// bounds.
func (g *GridWorld) Index(p Position) int {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("index: %v not in %dx%d grid", p, g.r, g.c))
	}
	return p.Row*g.c + p.Col
}

// Position returns the Position at row-major index i
func (g *GridWorld) Position(i int) Position {
	row := i / g.c
	return Position{Row: row, Col: i - row*g.c}
}

// Neighbours returns the positions one move away from p that an agent
// can occupy, in Direction order
func (g *GridWorld) Neighbours(p Position) []Position {
	neighbours := make([]Position, 0, NumDirections)
	for _, d := range Directions {
		if next := p.Move(d); g.CanMove(next) {
			neighbours = append(neighbours, next)
		}
	}
	return neighbours
}

// Map returns the GridMap describing the GridWorld
func (g *GridWorld) Map() GridMap {
	kinds := make([][]CellKind, g.r)
	for i, row := range g.cells {
		kinds[i] = make([]CellKind, g.c)
		for j, cell := range row {
			kinds[i][j] = cell.Kind
		}
	}
	return GridMap{kinds: kinds, start: g.start, reward: g.reward}
}

func (g *GridWorld) String() string {
	str := "GridWorld | Start: %v  |  Reward: %v  |  Bounds: (%d, %d)"
	return fmt.Sprintf(str, g.start, g.reward, g.r, g.c)
}
