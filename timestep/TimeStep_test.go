package timestep

import (
	"testing"

	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/stretchr/testify/assert"
)

func TestTimeStep(t *testing.T) {
	p := gridworld.Position{Row: 1, Col: 2}
	step := New(Mid, -0.04, p, 3, 7)

	assert.True(t, step.Mid())
	assert.False(t, step.First())
	assert.False(t, step.Last())
	assert.Equal(t, Unended, step.EndType())
	assert.Panics(t, func() { step.SetEnd(Timeout) })

	step.StepType = Last
	step.SetEnd(Timeout)
	assert.True(t, step.Last())
	assert.Equal(t, Timeout, step.EndType())
	assert.Equal(t, "TimeStep | Type: Last  |  Reward:  -0.04  |  "+
		"Position: (1, 2)  |  Step Number:  3  |  Episode: 7", step.String())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "First", First.String())
	assert.Equal(t, "Mid", Mid.String())
	assert.Equal(t, "Exhausted", Exhausted.String())
	assert.Equal(t, "TerminalStateReached", TerminalStateReached.String())
	assert.Equal(t, "Unended", EndType(42).String())
}
