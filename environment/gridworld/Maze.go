package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/gomaze"
)

// GenerateMaze returns a perfect maze of rows x cols maze cells,
// carved with recursive backtracking, as a (2*rows+1) x (2*cols+1)
// map. Maze cell (r, c) becomes map cell (2r+1, 2c+1); walls and the
// border become obstacles, and a passage between two maze cells opens
// the map cell between them. The start is the top-left maze cell and
// the reward the bottom-right one. Exactly one path joins any two
// open cells. Mazes generated with the same arguments are identical.
func GenerateMaze(rows, cols int, seed uint64) (GridMap, error) {
	if rows <= 0 || cols <= 0 || rows*cols < 2 {
		return GridMap{}, fmt.Errorf("generateMaze: need at least 2 maze "+
			"cells, have %dx%d: %w", rows, cols, ErrInvalidMap)
	}

	grid := gomaze.NewGrid(rows, cols)
	if err := gomaze.NewBacktracking(int64(seed)).Init(grid); err != nil {
		return GridMap{}, fmt.Errorf("generateMaze: %w", err)
	}

	kinds := make([][]CellKind, 2*rows+1)
	for r := range kinds {
		kinds[r] = make([]CellKind, 2*cols+1)
		for c := range kinds[r] {
			kinds[r][c] = Obstacle
		}
	}

	for _, cell := range grid.Cells() {
		r, c := 2*cell.Row()+1, 2*cell.Col()+1
		kinds[r][c] = Empty
		if cell.CanMoveEast() {
			kinds[r][c+1] = Empty
		}
		if cell.CanMoveSouth() {
			kinds[r+1][c] = Empty
		}
	}
	kinds[1][1] = Start
	kinds[2*rows-1][2*cols-1] = Reward

	return NewGridMap(kinds)
}
