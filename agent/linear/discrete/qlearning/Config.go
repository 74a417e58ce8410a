package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

func init() {
	// Register the Config type so that it can be typed using
	// agent.TypedConfig to help with serialization/deserialization.
	agent.Register(agent.EGreedyQLearningTabular, Config{})
}

const (
	DefaultLearningRate    float64 = 0.1
	DefaultDiscount        float64 = 0.9
	DefaultEpsilon         float64 = 0.1
	DefaultReward          float64 = 100
	DefaultStepPenalty     float64 = -0.04
	DefaultEpisodes        int     = 100
	DefaultMaxEpisodeSteps int     = 150
)

// Config represents a configuration for the QLearning agent
type Config struct {
	LearningRate float64
	Discount     float64
	Epsilon      float64 // epsilon for behaviour policy

	// Reward is received on reaching the reward cell and StepPenalty on
	// every other move
	Reward      float64
	StepPenalty float64

	// Episodes is the number of training episodes and MaxEpisodeSteps
	// the step budget of each
	Episodes        int
	MaxEpisodeSteps int
}

// DefaultConfig returns the default QLearning configuration
func DefaultConfig() Config {
	return Config{
		LearningRate:    DefaultLearningRate,
		Discount:        DefaultDiscount,
		Epsilon:         DefaultEpsilon,
		Reward:          DefaultReward,
		StepPenalty:     DefaultStepPenalty,
		Episodes:        DefaultEpisodes,
		MaxEpisodeSteps: DefaultMaxEpisodeSteps,
	}
}

// CreateAgent creates the agent from the Config, training from the
// world's start cell towards its reward cell. Values are always
// initialized to zero.
func (c Config) CreateAgent(world *gridworld.GridWorld,
	seed uint64) (agent.Agent, error) {
	return New(world, world.Start(), world.Reward(), c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("validate: learning rate must be in (0, 1], "+
			"have %v", c.LearningRate)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1], have %v",
			c.Discount)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon must be in [0, 1], have %v",
			c.Epsilon)
	}
	if c.Reward <= 0 {
		return fmt.Errorf("validate: reward must be positive, have %v",
			c.Reward)
	}
	if c.StepPenalty > 0 {
		return fmt.Errorf("validate: step penalty must not be positive, "+
			"have %v", c.StepPenalty)
	}
	if c.Episodes < 1 {
		return fmt.Errorf("validate: need at least 1 episode, have %d",
			c.Episodes)
	}
	if c.MaxEpisodeSteps < 1 {
		return fmt.Errorf("validate: need at least 1 step per episode, "+
			"have %d", c.MaxEpisodeSteps)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.EGreedyQLearningTabular
}
