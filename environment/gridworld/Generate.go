package gridworld

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Generate returns a random rows x cols map with a randomly placed start
// and reward cell. Each cell off a random monotone corridor between the
// start and reward is an obstacle with probability density, so the
// reward is always reachable from the start. Maps generated with the
// same arguments are identical.
func Generate(rows, cols int, density float64, seed uint64) (GridMap, error) {
	if rows <= 0 || cols <= 0 || rows*cols < 2 {
		return GridMap{}, fmt.Errorf("generate: need at least 2 cells, "+
			"have %dx%d: %w", rows, cols, ErrInvalidMap)
	}
	if density < 0 || density >= 1 {
		return GridMap{}, fmt.Errorf("generate: density must be in [0, 1), "+
			"have %v", density)
	}

	source := rand.NewSource(seed)
	rng := rand.New(source)

	// Sample the start and reward uniformly over all cells
	weights := make([]float64, rows*cols)
	for i := range weights {
		weights[i] = 1.0
	}
	cells := distuv.NewCategorical(weights, source)
	startIdx := int(cells.Rand())
	cells.Reweight(startIdx, 0)
	rewardIdx := int(cells.Rand())

	start := Position{Row: startIdx / cols, Col: startIdx % cols}
	reward := Position{Row: rewardIdx / cols, Col: rewardIdx % cols}

	kinds := make([][]CellKind, rows)
	for r := range kinds {
		kinds[r] = make([]CellKind, cols)
	}

	// Carve the corridor by walking towards the reward, choosing at
	// random between the row and column move while both are needed
	open := make(map[Position]bool)
	current := start
	open[current] = true
	for current != reward {
		var options []Direction
		if current.Row < reward.Row {
			options = append(options, Down)
		} else if current.Row > reward.Row {
			options = append(options, Up)
		}
		if current.Col < reward.Col {
			options = append(options, Right)
		} else if current.Col > reward.Col {
			options = append(options, Left)
		}
		current = current.Move(options[rng.Intn(len(options))])
		open[current] = true
	}

	obstacle := distuv.Bernoulli{P: density, Src: source}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if open[Position{r, c}] {
				continue
			}
			if obstacle.Rand() == 1 {
				kinds[r][c] = Obstacle
			}
		}
	}
	kinds[start.Row][start.Col] = Start
	kinds[reward.Row][reward.Col] = Reward

	return NewGridMap(kinds)
}
