package qlearning

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t testing.TB, csv string) *gridworld.GridWorld {
	t.Helper()
	m, err := gridworld.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	world, err := gridworld.New(m)
	require.NoError(t, err)
	return world
}

func newAgent(t testing.TB, world *gridworld.GridWorld, c Config,
	seed uint64) *QLearning {
	t.Helper()
	q, err := New(world, world.Start(), world.Reward(), c, seed)
	require.NoError(t, err)
	return q
}

// train steps q until training ends, failing if it takes longer than
// the episode and step budgets allow
func train(t testing.TB, q *QLearning, c Config) {
	t.Helper()
	limit := c.Episodes * c.MaxEpisodeSteps
	for i := 0; q.IsTraining(); i++ {
		require.Less(t, i, limit, "training did not end")
		q.Step()
	}
}

// replay steps q greedily until it reaches the reward or maxSteps
// steps are taken, returning the visited positions
func replay(q *QLearning, maxSteps int) []gridworld.Position {
	var positions []gridworld.Position
	for i := 0; i < maxSteps && !q.Done(); i++ {
		positions = append(positions, q.Step().Position)
	}
	return positions
}

const lane = "1,0,0,0,2\n"

func TestTrainingEnds(t *testing.T) {
	world := newWorld(t, lane)
	c := DefaultConfig()
	c.Episodes = 5
	c.MaxEpisodeSteps = 20
	q := newAgent(t, world, c, 1)

	assert.True(t, q.IsTraining())
	episodes := 0
	for q.IsTraining() {
		if q.Step().Last() {
			episodes++
		}
		require.LessOrEqual(t, episodes, c.Episodes)
	}
	assert.Equal(t, c.Episodes, episodes)
	assert.Equal(t, c.Episodes, q.Episode())

	for i := 0; i < 100; i++ {
		q.Step()
		assert.False(t, q.IsTraining())
	}
}

func TestTrainingEpisodeEnds(t *testing.T) {
	world := newWorld(t, lane)
	c := DefaultConfig()
	c.Episodes = 20
	c.MaxEpisodeSteps = 3
	q := newAgent(t, world, c, 7)

	for q.IsTraining() {
		step := q.Step()
		if !step.Last() {
			assert.Equal(t, timestep.Unended, step.EndType())
			continue
		}

		switch step.EndType() {
		case timestep.TerminalStateReached:
			assert.Equal(t, world.Reward(), step.Position)
			assert.Equal(t, c.Reward, step.Reward)
		case timestep.Timeout:
			assert.Equal(t, c.MaxEpisodeSteps, step.Number)
		default:
			t.Fatalf("unexpected end type %v", step.EndType())
		}
		assert.Equal(t, 0, q.EpisodeStep())
	}
}

func TestBlockedMovesStayInPlace(t *testing.T) {
	world := newWorld(t, "1,3,0\n0,3,0\n0,0,2\n")
	c := DefaultConfig()
	c.Epsilon = 1
	q := newAgent(t, world, c, 3)

	previous := q.CurrentCell()
	for i := 0; i < 500 && q.IsTraining(); i++ {
		step := q.Step()
		require.True(t, world.CanMove(step.Position))
		if step.Position != previous {
			assert.True(t, previous.Adjacent(step.Position),
				"%v and %v are not adjacent", previous, step.Position)
		}
		previous = q.CurrentCell()
	}
}

func TestUndefinedValues(t *testing.T) {
	world := newWorld(t, lane)
	q := newAgent(t, world, DefaultConfig(), 0)

	table := q.ValueTable()
	assert.Len(t, table, world.Len())

	start := gridworld.Position{Row: 0, Col: 0}
	assert.Equal(t, UndefinedValue, table.Value(start, gridworld.Up))
	assert.Equal(t, UndefinedValue, table.Value(start, gridworld.Down))
	assert.Equal(t, UndefinedValue, table.Value(start, gridworld.Left))
	assert.Equal(t, 0.0, table.Value(start, gridworld.Right))

	sum, err := q.SumValueForCell(start)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum)

	c := DefaultConfig()
	c.Episodes = 10
	train(t, q, c)
	for _, p := range table.Positions() {
		for _, d := range gridworld.Directions {
			if !world.InBounds(p.Move(d)) {
				assert.Equal(t, UndefinedValue, q.ValueTable().Value(p, d))
			}
		}
	}
}

func TestSumValueForCellOutOfBounds(t *testing.T) {
	world := newWorld(t, lane)
	q := newAgent(t, world, DefaultConfig(), 0)

	_, err := q.SumValueForCell(gridworld.Position{Row: 1, Col: 0})
	assert.ErrorIs(t, err, gridworld.ErrOutOfBounds)
}

func TestRestartEpisodeKeepsValues(t *testing.T) {
	world := newWorld(t, "1,0,0\n0,3,0\n0,0,2\n")
	q := newAgent(t, world, DefaultConfig(), 11)

	for i := 0; i < 200; i++ {
		q.Step()
	}
	before := q.ValueTable()

	from := gridworld.Position{Row: 2, Col: 0}
	require.NoError(t, q.RestartEpisode(&from))
	assert.Equal(t, from, q.CurrentCell())
	assert.Equal(t, 0, q.EpisodeStep())
	assert.True(t, before.Equal(q.ValueTable()))

	require.NoError(t, q.RestartEpisode(nil))
	assert.Equal(t, world.Start(), q.CurrentCell())
	assert.True(t, before.Equal(q.ValueTable()))
}

func TestRestartEpisodeInvalid(t *testing.T) {
	world := newWorld(t, "1,0,0\n0,3,0\n0,0,2\n")
	q := newAgent(t, world, DefaultConfig(), 0)

	outside := gridworld.Position{Row: 3, Col: 0}
	assert.ErrorIs(t, q.RestartEpisode(&outside), gridworld.ErrOutOfBounds)

	obstacle := gridworld.Position{Row: 1, Col: 1}
	assert.Error(t, q.RestartEpisode(&obstacle))
	assert.Equal(t, world.Start(), q.CurrentCell())
}

func TestExecutionStartsAtRequestedCell(t *testing.T) {
	world := newWorld(t, lane)
	c := DefaultConfig()
	c.Episodes = 10
	q := newAgent(t, world, c, 5)

	from := gridworld.Position{Row: 0, Col: 2}
	require.NoError(t, q.RestartEpisode(&from))
	train(t, q, c)

	assert.Equal(t, from, q.CurrentCell())
}

func TestGreedyReplay(t *testing.T) {
	world := newWorld(t, lane)
	c := DefaultConfig()
	c.Episodes = 50

	var replays [][]gridworld.Position
	for i := 0; i < 2; i++ {
		q := newAgent(t, world, c, 42)
		train(t, q, c)
		replays = append(replays, replay(q, c.MaxEpisodeSteps))
		assert.True(t, q.Done())
	}

	assert.Equal(t, replays[0], replays[1])
	assert.Equal(t, []gridworld.Position{{Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 0, Col: 4}},
		replays[0])
}

func TestExecutionIsNoopAtReward(t *testing.T) {
	world := newWorld(t, lane)
	c := DefaultConfig()
	c.Episodes = 50
	q := newAgent(t, world, c, 42)
	train(t, q, c)
	replay(q, c.MaxEpisodeSteps)
	require.True(t, q.Done())

	values := q.ValueTable()
	for i := 0; i < 5; i++ {
		step := q.Step()
		assert.True(t, step.Last())
		assert.Equal(t, timestep.TerminalStateReached, step.EndType())
		assert.Equal(t, world.Reward(), q.CurrentCell())
	}
	assert.True(t, values.Equal(q.ValueTable()))

	require.NoError(t, q.RestartEpisode(nil))
	assert.False(t, q.Done())
	assert.Equal(t, world.Start(), q.CurrentCell())
	assert.False(t, q.IsTraining())
}

func TestExecutionRestartAtRewardIsDone(t *testing.T) {
	world := newWorld(t, lane)
	c := DefaultConfig()
	c.Episodes = 50
	q := newAgent(t, world, c, 42)
	train(t, q, c)
	require.False(t, q.Done())

	reward := world.Reward()
	require.NoError(t, q.RestartEpisode(&reward))
	assert.True(t, q.Done())
	assert.Equal(t, reward, q.CurrentCell())

	for i := 0; i < 3; i++ {
		step := q.Step()
		assert.True(t, step.Last())
		assert.Equal(t, timestep.TerminalStateReached, step.EndType())
		assert.Equal(t, reward, step.Position)
		assert.Equal(t, reward, q.CurrentCell())
	}
	assert.Equal(t, 0, q.EpisodeStep())
}

func TestTrainingEndsOnRequestedReward(t *testing.T) {
	world := newWorld(t, lane)
	c := DefaultConfig()
	c.Episodes = 5
	q := newAgent(t, world, c, 3)

	reward := world.Reward()
	require.NoError(t, q.RestartEpisode(&reward))
	assert.False(t, q.Done())

	train(t, q, c)
	assert.True(t, q.Done())
	assert.Equal(t, reward, q.CurrentCell())
	assert.Equal(t, timestep.TerminalStateReached, q.Step().EndType())
}

func TestTemporalDifferenceUpdate(t *testing.T) {
	world := newWorld(t, "1,0,2\n")
	c := DefaultConfig()
	c.Epsilon = 0
	q := newAgent(t, world, c, 0)

	start := gridworld.Position{Row: 0, Col: 0}
	middle := gridworld.Position{Row: 0, Col: 1}

	// Right is the only move from the start, and every value at the
	// next cell is still zero
	step := q.Step()
	require.Equal(t, middle, step.Position)
	assert.InDelta(t, c.LearningRate*c.StepPenalty,
		q.Table().At(start, gridworld.Right), 1e-12)
	assert.InDelta(t, -0.004, q.Table().At(start, gridworld.Right), 1e-12)

	// Greedy ties break towards Left, so the agent walks back before
	// the unvisited Right value wins
	for !step.Last() {
		step = q.Step()
	}
	require.Equal(t, world.Reward(), step.Position)
	assert.Equal(t, c.Reward, step.Reward)

	// The reward cell is never updated, so its values stay zero and the
	// first update towards it is α·R
	assert.InDelta(t, c.LearningRate*c.Reward,
		q.Table().At(middle, gridworld.Right), 1e-12)
	assert.Equal(t, 0.0, q.Table().At(world.Reward(), gridworld.Left))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }, false},
		{"large discount", func(c *Config) { c.Discount = 1.5 }, false},
		{"negative epsilon", func(c *Config) { c.Epsilon = -0.1 }, false},
		{"greedy", func(c *Config) { c.Epsilon = 0 }, true},
		{"zero reward", func(c *Config) { c.Reward = 0 }, false},
		{"positive penalty", func(c *Config) { c.StepPenalty = 0.1 }, false},
		{"no penalty", func(c *Config) { c.StepPenalty = 0 }, true},
		{"no episodes", func(c *Config) { c.Episodes = 0 }, false},
		{"no steps", func(c *Config) { c.MaxEpisodeSteps = 0 }, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig()
			test.modify(&c)
			if test.valid {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}

func TestTypedConfig(t *testing.T) {
	c := DefaultConfig()
	c.Episodes = 12

	data, err := json.Marshal(agent.NewTypedConfig(c))
	require.NoError(t, err)

	var typed agent.TypedConfig
	require.NoError(t, json.Unmarshal(data, &typed))
	assert.Equal(t, agent.EGreedyQLearningTabular, typed.Type)
	assert.Equal(t, c, typed.Config)

	world := newWorld(t, lane)
	a, err := typed.CreateAgent(world, 0)
	require.NoError(t, err)
	assert.True(t, typed.ValidAgent(a))
}

func TestIllumination(t *testing.T) {
	tests := []struct {
		sum, reward, want float64
	}{
		{0, 100, 0},
		{-5, 100, 0},
		{1, 100, MinIllumination},
		{300, 100, 0.5},
		{1200, 100, 1},
	}

	for _, test := range tests {
		assert.InDelta(t, test.want, Illumination(test.sum, test.reward),
			1e-12, "sum %v reward %v", test.sum, test.reward)
	}
}

func BenchmarkQLearningStep(b *testing.B) {
	m, err := gridworld.Generate(20, 20, 0.2, 1)
	if err != nil {
		b.Fatal(err)
	}
	world, err := gridworld.New(m)
	if err != nil {
		b.Fatal(err)
	}

	c := DefaultConfig()
	c.Episodes = b.N + 1
	q, err := New(world, world.Start(), world.Reward(), c, 1)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Step()
	}
}
