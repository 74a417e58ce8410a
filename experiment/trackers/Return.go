package trackers

import (
	"log"

	ts "github.com/samuelfneumann/gridagent/timestep"
)

// Return tracks and saves the episodic return while an agent trains.
// For each TimeStep, this Tracker will extract the reward and
// accumulate the return for each episode.
//
// Note: An episode must finish for this Tracker to save its data.
// If the last episode does not finish, that episode's return will not
// be saved. An episode which is restarted before it finishes is
// discarded.
type Return struct {
	lastTimeStep   int
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker which saves its
// data at filename
func NewReturn(filename string) Tracker {
	return &Return{filename: filename}
}

// Track tracks the rewards seen on a timestep. By calling this method
// on every timestep, the Tracker will store all rewards seen in the
// episode, and save the cumulative reward for that episode as the
// episodic return. When a new episode starts, this method will
// automatically detect this and start accumulating the rewards for this
// new episode separately from the rewards seen on previous episodes.
func (r *Return) Track(step ts.TimeStep) {
	if r.lastTimeStep+1 != step.Number {
		if step.Number != 1 {
			log.Printf("[APP] [ERROR] return: non-sequential timesteps "+
				"%v --> %v, ignoring timestep", r.lastTimeStep, step.Number)
			return
		}

		// The episode was restarted, discard what was accumulated
		r.currentReturn = 0.0
	}

	r.currentReturn += step.Reward
	if !step.Last() {
		// Track return for same episode
		r.lastTimeStep = step.Number
		return
	}

	// Episode has ended, save the return and begin tracking the
	// return for a new episode
	r.episodeReturns = append(r.episodeReturns, r.currentReturn)
	r.currentReturn = 0.0
	r.lastTimeStep = 0
}

// Data returns the return of each finished episode
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the data tracked by the Return Tracker to disk.
func (r *Return) Save() error {
	return save(r.filename, r.episodeReturns)
}
