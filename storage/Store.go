// Package storage persists the results of search sessions: the run
// description, the best path found by a path finder, the values
// learned by a learner and per-episode training statistics.
package storage

import (
	"context"
	"time"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

// Run describes a single search session
type Run struct {
	ID        string
	Agent     agent.Type
	Map       string // CSV map, as written by gridworld.Format
	Seed      uint64
	CreatedAt time.Time
}

// Store defines persistence operations for search results. Get methods
// report whether the requested record exists.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	SavePath(ctx context.Context, runID string, path []gridworld.Position) error
	GetPath(ctx context.Context, runID string) ([]gridworld.Position, bool, error)
	SaveValues(ctx context.Context, runID string, table agent.ValueTable) error
	GetValues(ctx context.Context, runID string) (agent.ValueTable, bool, error)
	SaveHistory(ctx context.Context, runID, name string, history []float64) error
	GetHistory(ctx context.Context, runID, name string) ([]float64, bool, error)
}
