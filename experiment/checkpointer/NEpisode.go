package checkpointer

import (
	"github.com/samuelfneumann/gridagent/agent"
	ts "github.com/samuelfneumann/gridagent/timestep"
)

// nEpisode implements checkpointing every N finished episodes
type nEpisode struct {
	interval int
	episodes int
	learner  agent.Learner // Learner whose values are saved

	// filename returns the string filename of the file to save the
	// values in.
	//
	// If each checkpoint should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// file1.bin, file2.bin, ..., fileK.bin), then simply use the
	// static function FilenameEnumerator, which will return a function
	// that will enumerate filenames.
	//
	// Otherwise, if each checkpoint should be saved in a separate file,
	// but the filename does not matter, use the static function
	// FileTimer to generate the required naming function. For example:
	//
	// n := NewNEpisode(10, learner, FileTimer("values", ".bin"))
	filename func() string
}

// NewNEpisode returns a checkpointer that saves the values of l every
// n finished episodes
func NewNEpisode(n int, l agent.Learner,
	filename func() string) Checkpointer {
	if n < 1 {
		panic("newNEpisode: interval must be positive")
	}
	return &nEpisode{
		interval: n,
		learner:  l,
		filename: filename,
	}
}

// Checkpoint saves the learner's values if t finishes an episode whose
// count is a multiple of the interval
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	n.episodes++
	if n.episodes%n.interval == 0 {
		return Save(n.filename(), n.learner.ValueTable())
	}
	return nil
}
