package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

var errNotInitialized = errors.New("store is not initialized")

type historyKey struct {
	runID string
	name  string
}

// MemoryStore is a Store which keeps all records in memory
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	paths       map[string][]gridworld.Position
	values      map[string]agent.ValueTable
	history     map[historyKey][]float64
}

// NewMemoryStore returns a new MemoryStore. Init must be called before
// use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.paths = make(map[string][]gridworld.Position)
	s.values = make(map[string]agent.ValueTable)
	s.history = make(map[historyKey][]float64)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return Run{}, false, errNotInitialized
	}

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SavePath(_ context.Context, runID string,
	path []gridworld.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.paths[runID] = append([]gridworld.Position(nil), path...)
	return nil
}

func (s *MemoryStore) GetPath(_ context.Context,
	runID string) ([]gridworld.Position, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, false, errNotInitialized
	}

	path, ok := s.paths[runID]
	return append([]gridworld.Position(nil), path...), ok, nil
}

func (s *MemoryStore) SaveValues(_ context.Context, runID string,
	table agent.ValueTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.values[runID] = copyTable(table)
	return nil
}

func (s *MemoryStore) GetValues(_ context.Context,
	runID string) (agent.ValueTable, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, false, errNotInitialized
	}

	table, ok := s.values[runID]
	if !ok {
		return nil, false, nil
	}
	return copyTable(table), true, nil
}

func (s *MemoryStore) SaveHistory(_ context.Context, runID, name string,
	history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.history[historyKey{runID, name}] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, runID,
	name string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, false, errNotInitialized
	}

	history, ok := s.history[historyKey{runID, name}]
	return append([]float64(nil), history...), ok, nil
}

func copyTable(table agent.ValueTable) agent.ValueTable {
	copied := make(agent.ValueTable, len(table))
	for p, v := range table {
		copied[p] = v
	}
	return copied
}
