// Package qlearning implements incremental tabular Q-Learning over a
// gridworld.GridWorld.
//
// A QLearning agent first trains for a fixed number of episodes using
// an ε-greedy behaviour policy, updating its action-value table after
// every move. Once the episode budget is exhausted it stops learning
// and follows the greedy policy with respect to the learned table.
// Each call to Step performs a single move.
package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/agent/linear/discrete/policy"
	"github.com/samuelfneumann/gridagent/environment"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/timestep"
)

// QLearning implements the Q-Learning algorithm
type QLearning struct {
	*QLearner
	behaviour *policy.EGreedy
	target    *policy.EGreedy

	world  *gridworld.GridWorld
	start  gridworld.Position
	reward gridworld.Position
	config Config
	seed   uint64

	// ender ends training episodes
	ender environment.Ender

	training bool
	episode  int
	step     int
	current  gridworld.Position

	// restart is the position last requested through RestartEpisode.
	// Greedy execution starts here once training ends.
	restart gridworld.Position

	// reached records that the greedy policy has reached the reward
	reached bool
	last    timestep.TimeStep
}

var _ agent.Learner = &QLearning{}

// New creates a new QLearning agent on world which starts episodes at
// start and is rewarded at reward
func New(world *gridworld.GridWorld, start, reward gridworld.Position,
	c Config, seed uint64) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	starter, err := environment.NewSingleStart(start, world)
	if err != nil {
		return nil, fmt.Errorf("new: invalid start: %w", err)
	}
	if _, err := world.CellAt(reward); err != nil {
		return nil, fmt.Errorf("new: invalid reward: %w", err)
	}
	if !world.CanMove(reward) {
		return nil, fmt.Errorf("new: reward %v is an obstacle", reward)
	}

	table := NewQTable(world)
	learner := NewQLearner(table, c.LearningRate, c.Discount)

	// Create algorithm components using previous specifications
	behaviour := policy.NewEGreedy(c.Epsilon, seed, table.Values())
	target := policy.NewGreedy(seed, table.Values())

	ender := environment.Enders{
		environment.NewGoalEnder(reward),
		environment.NewStepLimit(c.MaxEpisodeSteps),
	}

	q := &QLearning{
		QLearner:  learner,
		behaviour: behaviour,
		target:    target,
		world:     world,
		start:     starter.Start(),
		reward:    reward,
		config:    c,
		seed:      seed,
		ender:     ender,
		training:  true,
		current:   starter.Start(),
		restart:   starter.Start(),
	}
	q.last = timestep.New(timestep.First, 0, q.current, 0, 0)

	return q, nil
}

// Step performs a single move of the agent.
//
// While training, an ε-greedy direction is chosen among the directions
// which stay in the grid. Moving into an obstacle leaves the agent in
// place. The agent is rewarded on reaching the reward cell and
// penalized otherwise, and the action-value table is updated. When the
// reward is reached or the step budget is exhausted, the episode ends
// and the returned TimeStep is Last. The next episode then starts at
// the start cell or, once the episode budget is exhausted, training
// ends and the agent is moved to the last position requested through
// RestartEpisode.
//
// While executing, the greedy direction is chosen among the moves the
// agent can make, and the table is not updated. Once the reward is
// reached, Step is a no-op until RestartEpisode is called.
func (q *QLearning) Step() timestep.TimeStep {
	if q.training {
		return q.trainStep()
	}
	return q.executeStep()
}

func (q *QLearning) trainStep() timestep.TimeStep {
	state := q.current
	action := q.behaviour.SelectAction(q.world.Index(state),
		q.Table().DefinedDirections(state))

	next := state.Move(action)
	if !q.world.CanMove(next) {
		next = state
	}

	reward := q.config.StepPenalty
	if next == q.reward {
		reward = q.config.Reward
	}

	q.QLearner.Step(state, action, reward, next)
	q.step++
	q.current = next

	step := timestep.New(timestep.Mid, reward, next, q.step, q.episode)
	if !q.ender.End(&step) {
		q.last = step
		return step
	}

	q.last = step
	q.episode++
	if q.episode >= q.config.Episodes {
		q.training = false
		q.moveTo(q.restart)
	} else {
		q.moveTo(q.start)
	}

	return step
}

func (q *QLearning) executeStep() timestep.TimeStep {
	if q.reached {
		return q.last
	}

	state := q.current
	var legal []gridworld.Direction
	for _, d := range gridworld.Directions {
		if q.world.CanMove(state.Move(d)) {
			legal = append(legal, d)
		}
	}

	next := state
	if len(legal) > 0 {
		action := q.target.SelectAction(q.world.Index(state), legal)
		next = state.Move(action)
	}

	reward := q.config.StepPenalty
	q.step++
	q.current = next

	step := timestep.New(timestep.Mid, reward, next, q.step, q.episode)
	if next == q.reward {
		step.Reward = q.config.Reward
		step.StepType = timestep.Last
		step.SetEnd(timestep.TerminalStateReached)
		q.reached = true
	}

	q.last = step
	return step
}

// moveTo places the agent at p and starts a new episode there. Once
// training has ended, an episode started on the reward cell has
// already reached it.
func (q *QLearning) moveTo(p gridworld.Position) {
	q.current = p
	q.step = 0
	q.reached = !q.training && p == q.reward

	if q.reached {
		step := timestep.New(timestep.Last, 0, p, 0, q.episode)
		step.SetEnd(timestep.TerminalStateReached)
		q.last = step
	}
}

// RestartEpisode moves the agent to from, or to the start cell if from
// is nil, and resets the episode step counter. The action-value table
// is never changed. Restarting on the reward cell once training has
// ended leaves the agent Done. An error wrapping
// gridworld.ErrOutOfBounds is returned if from is outside the grid,
// and an error is returned if from is an obstacle.
func (q *QLearning) RestartEpisode(from *gridworld.Position) error {
	p := q.start
	if from != nil {
		p = *from
	}

	if _, err := q.world.CellAt(p); err != nil {
		return fmt.Errorf("restartEpisode: %w", err)
	}
	if !q.world.CanMove(p) {
		return fmt.Errorf("restartEpisode: %v is an obstacle", p)
	}

	q.restart = p
	q.last = timestep.New(timestep.First, 0, p, 0, q.episode)
	q.moveTo(p)
	return nil
}

// IsTraining returns whether the agent is still learning
func (q *QLearning) IsTraining() bool {
	return q.training
}

// Done returns whether training has ended and the greedy policy has
// reached the reward cell
func (q *QLearning) Done() bool {
	return !q.training && q.reached
}

// CurrentCell returns the position of the agent
func (q *QLearning) CurrentCell() gridworld.Position {
	return q.current
}

// Episode returns the number of completed training episodes
func (q *QLearning) Episode() int {
	return q.episode
}

// EpisodeStep returns the number of steps taken in the current episode
func (q *QLearning) EpisodeStep() int {
	return q.step
}

// RewardValue returns the reward received on reaching the reward cell
func (q *QLearning) RewardValue() float64 {
	return q.config.Reward
}

// SumValueForCell returns the sum of the defined action values at p. An
// error wrapping gridworld.ErrOutOfBounds is returned if p is outside
// the grid.
func (q *QLearning) SumValueForCell(p gridworld.Position) (float64, error) {
	if _, err := q.world.CellAt(p); err != nil {
		return 0, fmt.Errorf("sumValueForCell: %w", err)
	}
	return q.Table().Sum(p), nil
}

// ValueTable returns a copy of the action-value table
func (q *QLearning) ValueTable() agent.ValueTable {
	return q.Table().ValueTable()
}

func (q *QLearning) String() string {
	str := "QLearning | Training: %v  |  Episode: %d/%d  |  Step: %d  |  " +
		"Current: %v"
	return fmt.Sprintf(str, q.training, q.episode, q.config.Episodes, q.step,
		q.current)
}
