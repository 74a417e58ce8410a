package gridworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMaze(t *testing.T) {
	const mazeRows, mazeCols = 4, 6

	for seed := uint64(0); seed < 10; seed++ {
		m, err := GenerateMaze(mazeRows, mazeCols, seed)
		require.NoError(t, err)

		rows, cols := m.Dims()
		require.Equal(t, 2*mazeRows+1, rows)
		require.Equal(t, 2*mazeCols+1, cols)

		g, err := New(m)
		require.NoError(t, err)
		assert.Equal(t, Position{1, 1}, g.Start())
		assert.Equal(t, Position{rows - 2, cols - 2}, g.Reward())

		open := 0
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				border := r == 0 || c == 0 || r == rows-1 || c == cols-1
				if border {
					assert.Equal(t, Obstacle, m.At(r, c))
				}
				if m.At(r, c) != Obstacle {
					open++
				}
			}
		}

		// A perfect maze is a spanning tree over the maze cells, so
		// every open cell is reachable and there is one passage fewer
		// than there are maze cells
		assert.Equal(t, 2*mazeRows*mazeCols-1, open, "seed %d", seed)
		seen := map[Position]bool{g.Start(): true}
		queue := []Position{g.Start()}
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			for _, n := range g.Neighbours(p) {
				if !seen[n] {
					seen[n] = true
					queue = append(queue, n)
				}
			}
		}
		assert.Len(t, seen, open, "seed %d", seed)

		again, err := GenerateMaze(mazeRows, mazeCols, seed)
		require.NoError(t, err)
		assert.Equal(t, m, again, "seed %d", seed)
	}
}

func TestGenerateMazeInvalid(t *testing.T) {
	_, err := GenerateMaze(1, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidMap)
	_, err = GenerateMaze(0, 3, 0)
	assert.ErrorIs(t, err, ErrInvalidMap)
}
