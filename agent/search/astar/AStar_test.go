package astar

import (
	"strings"
	"testing"

	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newWorld parses a CSV map and returns the resulting GridWorld
func newWorld(t testing.TB, csv string) *gridworld.GridWorld {
	t.Helper()
	m, err := gridworld.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	world, err := gridworld.New(m)
	require.NoError(t, err)
	return world
}

// run steps a until it is done or maxSteps steps have been taken,
// returning the number of steps taken
func run(a *AStar, maxSteps int) int {
	steps := 0
	for !a.Done() && steps < maxSteps {
		a.Step()
		steps++
	}
	return steps
}

// bfs returns the length of the shortest path from start to reward in
// world, or -1 if none exists
func bfs(world *gridworld.GridWorld) int {
	dist := map[gridworld.Position]int{world.Start(): 0}
	queue := []gridworld.Position{world.Start()}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == world.Reward() {
			return dist[p]
		}
		for _, n := range world.Neighbours(p) {
			if _, ok := dist[n]; !ok {
				dist[n] = dist[p] + 1
				queue = append(queue, n)
			}
		}
	}
	return -1
}

func TestAStarOpenGrid(t *testing.T) {
	world := newWorld(t, "1,0,0\n0,0,0\n0,0,2\n")
	a, err := New(world, world.Start(), world.Reward())
	require.NoError(t, err)
	assert.Equal(t, Searching, a.State())

	steps := run(a, 100)
	assert.Equal(t, Found, a.State())
	assert.LessOrEqual(t, steps, world.Len())
	assert.Equal(t, world.Reward(), a.CurrentCell())

	path, err := a.BestPath()
	require.NoError(t, err)
	assert.Len(t, path, 5)
	assert.Equal(t, world.Start(), path[0])
	assert.Equal(t, world.Reward(), path[len(path)-1])
	for i := 1; i < len(path); i++ {
		assert.True(t, path[i-1].Adjacent(path[i]),
			"%v and %v are not adjacent", path[i-1], path[i])
		assert.True(t, world.CanMove(path[i]))
	}
}

func TestAStarCentreObstacle(t *testing.T) {
	world := newWorld(t, "1,0,0\n0,3,0\n0,0,2\n")
	a, err := New(world, world.Start(), world.Reward())
	require.NoError(t, err)

	run(a, 100)
	require.Equal(t, Found, a.State())

	path, err := a.BestPath()
	require.NoError(t, err)
	assert.Len(t, path, 5)
	for i, p := range path {
		assert.NotEqual(t, gridworld.Position{Row: 1, Col: 1}, p)
		if i > 0 {
			assert.True(t, path[i-1].Adjacent(p))
		}
	}
	assert.Equal(t, world.Start(), path[0])
	assert.Equal(t, world.Reward(), path[len(path)-1])
}

func TestAStarExpansionOrder(t *testing.T) {
	world := newWorld(t, "1,0,0\n0,0,0\n0,0,2\n")
	a, err := New(world, gridworld.Position{Row: 1, Col: 1}, world.Reward())
	require.NoError(t, err)

	// (2, 1) and (1, 2) tie on f and h, and (2, 1) was pushed first.
	// (2, 2) then ties with (1, 2) on f but has the lower h.
	var expanded []gridworld.Position
	for !a.Done() {
		expanded = append(expanded, a.Step().Position)
	}
	assert.Equal(t, []gridworld.Position{{Row: 1, Col: 1}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}, expanded)
}

func TestFrontierOrder(t *testing.T) {
	f := newFrontier()
	f.push(gridworld.Position{Row: 0, Col: 0}, 2, 3) // f 5
	f.push(gridworld.Position{Row: 0, Col: 1}, 3, 1) // f 4, h 1
	f.push(gridworld.Position{Row: 0, Col: 2}, 4, 0) // f 4, h 0
	f.push(gridworld.Position{Row: 0, Col: 3}, 3, 1) // f 4, h 1, later
	f.push(gridworld.Position{Row: 0, Col: 4}, 1, 2) // f 3

	// Updating a node counts as a new insertion
	f.push(gridworld.Position{Row: 0, Col: 1}, 3, 1)

	want := []gridworld.Position{{Row: 0, Col: 4}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 0, Col: 1}, {Row: 0, Col: 0}}
	var got []gridworld.Position
	for f.Len() > 0 {
		got = append(got, f.pop().pos)
	}
	assert.Equal(t, want, got)
}

func TestAStarDetour(t *testing.T) {
	world := newWorld(t, "1,3\n0,2\n")
	a, err := New(world, world.Start(), world.Reward())
	require.NoError(t, err)

	run(a, 100)
	require.Equal(t, Found, a.State())

	path, err := a.BestPath()
	require.NoError(t, err)
	assert.Equal(t, []gridworld.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 1, Col: 1}}, path)
}

func TestAStarEnclosedReward(t *testing.T) {
	world := newWorld(t, "1,0,0\n0,3,3\n0,3,2\n")
	a, err := New(world, world.Start(), world.Reward())
	require.NoError(t, err)

	steps := run(a, 100)
	assert.Equal(t, Exhausted, a.State())
	assert.LessOrEqual(t, steps, world.Len())

	_, err = a.BestPath()
	assert.ErrorIs(t, err, ErrNoPath)

	step := a.Step()
	assert.True(t, step.Last())
	assert.Equal(t, timestep.Exhausted, step.EndType())
}

func TestAStarBestPathBeforeFound(t *testing.T) {
	world := newWorld(t, "1,0,0,0\n0,0,0,2\n")
	a, err := New(world, world.Start(), world.Reward())
	require.NoError(t, err)

	_, err = a.BestPath()
	assert.ErrorIs(t, err, ErrNoPath)

	a.Step()
	_, err = a.BestPath()
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestAStarStepAfterFoundIsNoop(t *testing.T) {
	world := newWorld(t, "1,0\n0,2\n")
	a, err := New(world, world.Start(), world.Reward())
	require.NoError(t, err)

	run(a, 100)
	require.Equal(t, Found, a.State())
	steps := a.Steps()
	current := a.CurrentCell()
	before, err := a.BestPath()
	require.NoError(t, err)

	assert.Equal(t, []gridworld.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 1, Col: 1}}, before)

	for i := 0; i < 5; i++ {
		step := a.Step()
		assert.True(t, step.Last())
		assert.Equal(t, timestep.TerminalStateReached, step.EndType())
	}
	after, err := a.BestPath()
	require.NoError(t, err)

	assert.Equal(t, steps, a.Steps())
	assert.Equal(t, current, a.CurrentCell())
	assert.Equal(t, before, after)
}

func TestAStarStartIsReward(t *testing.T) {
	world := newWorld(t, "1,0\n0,2\n")
	a, err := New(world, world.Reward(), world.Reward())
	require.NoError(t, err)

	a.Step()
	assert.Equal(t, Found, a.State())
	path, err := a.BestPath()
	require.NoError(t, err)
	assert.Equal(t, []gridworld.Position{world.Reward()}, path)
}

func TestAStarInvalidEndpoints(t *testing.T) {
	world := newWorld(t, "1,3\n0,2\n")

	_, err := New(world, gridworld.Position{Row: 5, Col: 0}, world.Reward())
	assert.ErrorIs(t, err, gridworld.ErrOutOfBounds)

	_, err = New(world, world.Start(), gridworld.Position{Row: -1, Col: 0})
	assert.ErrorIs(t, err, gridworld.ErrOutOfBounds)

	_, err = New(world, gridworld.Position{Row: 0, Col: 1}, world.Reward())
	assert.Error(t, err)
}

// walledIn returns a copy of m in which every cell next to the reward,
// other than the start, is an obstacle
func walledIn(t testing.TB, m gridworld.GridMap) gridworld.GridMap {
	t.Helper()
	world, err := gridworld.New(m)
	require.NoError(t, err)

	rows, cols := m.Dims()
	kinds := make([][]gridworld.CellKind, rows)
	for r := range kinds {
		kinds[r] = make([]gridworld.CellKind, cols)
		for c := range kinds[r] {
			kinds[r][c] = m.At(r, c)
		}
	}
	for _, d := range gridworld.Directions {
		p := world.Reward().Move(d)
		if world.InBounds(p) && p != world.Start() {
			kinds[p.Row][p.Col] = gridworld.Obstacle
		}
	}

	walled, err := gridworld.NewGridMap(kinds)
	require.NoError(t, err)
	return walled
}

func TestAStarMatchesBFS(t *testing.T) {
	var maps []gridworld.GridMap
	for seed := uint64(0); seed < 25; seed++ {
		m, err := gridworld.Generate(8, 10, 0.3, seed)
		require.NoError(t, err)
		maps = append(maps, m)
		if seed%2 == 0 {
			maps = append(maps, walledIn(t, m))
		}
	}

	unreachable := 0
	for seed, m := range maps {
		world, err := gridworld.New(m)
		require.NoError(t, err)

		a, err := New(world, world.Start(), world.Reward())
		require.NoError(t, err)
		steps := run(a, world.Len()+1)
		assert.LessOrEqual(t, steps, world.Len(), "map %d", seed)

		want := bfs(world)
		if want < 0 {
			unreachable++
			assert.Equal(t, Exhausted, a.State(), "map %d", seed)
			continue
		}

		require.Equal(t, Found, a.State(), "map %d", seed)
		path, err := a.BestPath()
		require.NoError(t, err)
		assert.Equal(t, want, len(path)-1, "map %d", seed)
	}
	assert.Positive(t, unreachable)
}

func TestAStarReset(t *testing.T) {
	world := newWorld(t, "1,0,0\n0,0,0\n0,0,2\n")
	a, err := New(world, world.Start(), world.Reward())
	require.NoError(t, err)

	run(a, 100)
	first, err := a.BestPath()
	require.NoError(t, err)

	a.Reset()
	assert.Equal(t, Searching, a.State())
	assert.Equal(t, 0, a.Steps())
	assert.Equal(t, world.Start(), a.CurrentCell())

	run(a, 100)
	second, err := a.BestPath()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConfigCreateAgent(t *testing.T) {
	world := newWorld(t, "1,0\n0,2\n")
	start := gridworld.Position{Row: 1, Col: 0}

	c := Config{Start: &start}
	require.NoError(t, c.Validate())

	a, err := c.CreateAgent(world, 0)
	require.NoError(t, err)
	assert.True(t, c.ValidAgent(a))
	assert.Equal(t, start, a.CurrentCell())
}

func BenchmarkAStar(b *testing.B) {
	m, err := gridworld.Generate(50, 50, 0.2, 1)
	if err != nil {
		b.Fatal(err)
	}
	world, err := gridworld.New(m)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a, _ := New(world, world.Start(), world.Reward())
		run(a, world.Len()+1)
	}
}
