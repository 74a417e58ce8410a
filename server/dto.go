package server

import (
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	ts "github.com/samuelfneumann/gridagent/timestep"
)

// StateResponse describes the state of a session
type StateResponse struct {
	ID       string             `json:"id"`
	Agent    string             `json:"agent"`
	Cell     gridworld.Position `json:"cell"`
	Done     bool               `json:"done"`
	Finished bool               `json:"finished"`
	Training bool               `json:"training"`
	Steps    int                `json:"steps"`
}

// StepRequest requests Count steps of the agent, or a single step if
// Count is zero
type StepRequest struct {
	Count int `json:"count" binding:"min=0,max=100000"`
}

// TimeStepResponse is the JSON form of a timestep.TimeStep
type TimeStepResponse struct {
	Type     string             `json:"type"`
	End      string             `json:"end"`
	Reward   float64            `json:"reward"`
	Position gridworld.Position `json:"position"`
	Number   int                `json:"number"`
	Episode  int                `json:"episode"`
}

// StepResponse holds the timesteps taken for a StepRequest
type StepResponse struct {
	Steps []TimeStepResponse `json:"steps"`
	State StateResponse      `json:"state"`
}

// RestartRequest requests a restart of a learner's episode from From,
// or from the default start cell if From is nil
type RestartRequest struct {
	From *gridworld.Position `json:"from"`
}

// PathResponse holds the best path found by a path finder
type PathResponse struct {
	Path []gridworld.Position `json:"path"`
}

// CellValueResponse holds the summed action values of a cell and the
// opacity with which the cell should be illuminated
type CellValueResponse struct {
	Cell         gridworld.Position `json:"cell"`
	Sum          float64            `json:"sum"`
	Illumination float64            `json:"illumination"`
}

func newTimeStepResponse(t ts.TimeStep) TimeStepResponse {
	return TimeStepResponse{
		Type:     t.StepType.String(),
		End:      t.EndType().String(),
		Reward:   t.Reward,
		Position: t.Position,
		Number:   t.Number,
		Episode:  t.Episode,
	}
}
