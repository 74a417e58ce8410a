// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why a Last TimeStep ended its episode or search
type EndType int

const (
	Unended EndType = iota

	// TerminalStateReached means the agent reached the reward cell
	TerminalStateReached

	// Timeout means the episode step budget ran out
	Timeout

	// Exhausted means a search ran out of cells to explore without
	// reaching the reward cell
	Exhausted
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	case Exhausted:
		return "Exhausted"
	default:
		return "Unended"
	}
}

// TimeStep packages together a single step of a search engine. Position
// is the cell the agent occupies (or the search expanded) on this step.
type TimeStep struct {
	StepType
	endType  EndType
	Reward   float64
	Position gridworld.Position
	Number   int // Step number within the episode or search
	Episode  int
}

// New returns a new TimeStep
func New(t StepType, r float64, p gridworld.Position, n, episode int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Position: p, Number: n,
		Episode: episode}
}

// First returns whether a TimeStep is the first in an episode
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the reason the TimeStep ended its episode. Only Last
// TimeSteps have an EndType other than Unended.
func (t *TimeStep) SetEnd(e EndType) {
	if t.StepType != Last {
		panic(fmt.Sprintf("setEnd: cannot set end type %v on a %v TimeStep",
			e, t.StepType))
	}
	t.endType = e
}

// EndType returns why the TimeStep ended its episode
func (t TimeStep) EndType() EndType {
	return t.endType
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Position: %v  |  " +
		"Step Number:  %v  |  Episode: %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Position, t.Number,
		t.Episode)
}
