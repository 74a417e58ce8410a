package export

import (
	"context"
	"fmt"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/storage"
)

// Store exports search results to a storage.Store under a single run
type Store struct {
	store storage.Store
	runID string
}

// NewStore returns a new Store Exporter saving results of run runID
func NewStore(store storage.Store, runID string) *Store {
	return &Store{store, runID}
}

// ExportPath saves path
func (s *Store) ExportPath(ctx context.Context, world *gridworld.GridWorld,
	path []gridworld.Position) error {
	if err := checkPath(world, path); err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}
	if err := s.store.SavePath(ctx, s.runID, path); err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}
	return nil
}

// ExportValues saves table
func (s *Store) ExportValues(ctx context.Context, _ *gridworld.GridWorld,
	table agent.ValueTable) error {
	if err := s.store.SaveValues(ctx, s.runID, table); err != nil {
		return fmt.Errorf("exportValues: %w", err)
	}
	return nil
}
