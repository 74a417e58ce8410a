// Package checkpointer implements periodic saving of a learner's
// action-value table while it trains
package checkpointer

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/gridagent/agent"
	ts "github.com/samuelfneumann/gridagent/timestep"
)

// Checkpointer checkpoints/saves a learner's values based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}

// Save gob encodes table to filename
func Save(filename string, table agent.ValueTable) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not open checkpoint file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(table); err != nil {
		return fmt.Errorf("save: could not encode values: %w", err)
	}
	return nil
}

// Load loads a table saved by Save
func Load(filename string) (agent.ValueTable, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("load: could not open checkpoint file: %w",
			err)
	}
	defer file.Close()

	var table agent.ValueTable
	if err := gob.NewDecoder(file).Decode(&table); err != nil {
		return nil, fmt.Errorf("load: could not decode values: %w", err)
	}
	return table, nil
}
