package environment

import (
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/timestep"
)

// GoalEnder ends an episode whenever the agent reaches a goal cell
type GoalEnder struct {
	goal gridworld.Position
}

// NewGoalEnder returns a new GoalEnder which ends episodes at goal
func NewGoalEnder(goal gridworld.Position) Ender {
	return &GoalEnder{goal}
}

// End ends the episode with end type timestep.TerminalStateReached if
// the timestep's position is the goal cell
func (g *GoalEnder) End(t *timestep.TimeStep) bool {
	if t.Position == g.goal {
		t.StepType = timestep.Last
		t.SetEnd(timestep.TerminalStateReached)
		return true
	}
	return false
}
