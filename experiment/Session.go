package experiment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/experiment/checkpointer"
	"github.com/samuelfneumann/gridagent/experiment/trackers"
	"github.com/samuelfneumann/gridagent/export"
	"github.com/samuelfneumann/gridagent/storage"
	ts "github.com/samuelfneumann/gridagent/timestep"
)

var (
	// ErrNotPathFinder is returned when a path is requested from an
	// agent which does not search for paths
	ErrNotPathFinder = errors.New("agent is not a path finder")

	// ErrNotLearner is returned when a replay is requested from an agent
	// which does not learn a policy
	ErrNotLearner = errors.New("agent is not a learner")

	// ErrTraining is returned when a replay is requested from a learner
	// which is still training
	ErrTraining = errors.New("learner is still training")
)

// Observer is notified of each TimeStep taken by a Session's agent
type Observer func(a agent.Agent, t ts.TimeStep)

// Session drives a single agent through a GridWorld. Run calls the
// agent's Step method at the configured cadence until the search ends,
// sending each TimeStep to registered Trackers, Checkpointers and
// Observers. Once the search has ended, the best path of a PathFinder
// can be walked and the greedy policy of a Learner replayed.
//
// A Session is not safe for concurrent use.
type Session struct {
	id        string
	world     *gridworld.GridWorld
	agent     agent.Agent
	config    Config
	createdAt time.Time
	steps     int

	trackers      map[string]trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	observers     []Observer
}

// NewSession returns a new Session driving a, which must be an agent
// that c can create
func NewSession(world *gridworld.GridWorld, a agent.Agent,
	c Config) (*Session, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newSession: %w", err)
	}
	if !c.Agent.ValidAgent(a) {
		return nil, fmt.Errorf("newSession: invalid agent for config type %v",
			c.Agent.Type)
	}

	return &Session{
		id:        uuid.New().String(),
		world:     world,
		agent:     a,
		config:    c,
		createdAt: time.Now(),
		trackers:  make(map[string]trackers.Tracker),
	}, nil
}

// ID returns the unique ID of the Session
func (s *Session) ID() string { return s.id }

// Agent returns the agent driven by the Session
func (s *Session) Agent() agent.Agent { return s.agent }

// Type returns the type of the Session's agent
func (s *Session) Type() agent.Type { return s.config.Agent.Type }

// World returns the GridWorld the Session's agent searches
func (s *Session) World() *gridworld.GridWorld { return s.world }

// Steps returns the number of steps taken by Run and Step
func (s *Session) Steps() int { return s.steps }

// Register registers a Tracker under name. The Tracker receives every
// TimeStep taken by Run.
func (s *Session) Register(name string, t trackers.Tracker) {
	if _, ok := s.trackers[name]; ok {
		panic(fmt.Sprintf("register: tracker %v already registered", name))
	}
	s.trackers[name] = t
}

// RegisterCheckpointer registers a Checkpointer which receives every
// TimeStep taken by Run
func (s *Session) RegisterCheckpointer(c checkpointer.Checkpointer) {
	s.checkpointers = append(s.checkpointers, c)
}

// Observe registers an Observer which is notified of every TimeStep
// taken by Run or Replay
func (s *Session) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

// Finished returns whether the search has ended. A Learner's search
// ends when it stops training, any other agent's when it is done.
func (s *Session) Finished() bool {
	if l, ok := s.agent.(agent.Learner); ok {
		return !l.IsTraining()
	}
	return s.agent.Done()
}

// Run steps the agent at the step interval until the search ends or
// ctx is cancelled. Run may be called again after a cancellation to
// resume the search.
func (s *Session) Run(ctx context.Context) error {
	p := newPacer(s.config.StepInterval)
	defer p.stop()

	for !s.Finished() {
		if err := p.wait(ctx); err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if _, err := s.Step(); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	log.Printf("[APP] [INFO] session %v: search finished after %d steps",
		s.id, s.steps)
	return nil
}

// Step steps the agent once, sending the resulting TimeStep to all
// registered Trackers, Observers and Checkpointers
func (s *Session) Step() (ts.TimeStep, error) {
	step := s.agent.Step()
	s.steps++
	s.track(step)
	s.notify(step)
	if err := s.checkpoint(step); err != nil {
		return step, fmt.Errorf("step: %w", err)
	}
	return step, nil
}

// WalkBestPath calls visit with each cell of the best path found by a
// PathFinder, from start to reward, waiting the path interval before
// each cell
func (s *Session) WalkBestPath(ctx context.Context,
	visit func(gridworld.Position)) error {
	f, ok := s.agent.(agent.PathFinder)
	if !ok {
		return fmt.Errorf("walkBestPath: %w", ErrNotPathFinder)
	}

	path, err := f.BestPath()
	if err != nil {
		return fmt.Errorf("walkBestPath: %w", err)
	}

	p := newPacer(s.config.PathInterval)
	defer p.stop()
	for _, cell := range path {
		if err := p.wait(ctx); err != nil {
			return fmt.Errorf("walkBestPath: %w", err)
		}
		visit(cell)
	}
	return nil
}

// Replay moves a trained Learner to from, or to its default start if
// from is nil, and follows its greedy policy at the path interval until
// it reaches the reward or maxSteps steps are taken. The visited cells
// are returned, starting at the first cell moved to. Replaying from the
// reward cell visits nothing.
func (s *Session) Replay(ctx context.Context, from *gridworld.Position,
	maxSteps int) ([]gridworld.Position, error) {
	l, ok := s.agent.(agent.Learner)
	if !ok {
		return nil, fmt.Errorf("replay: %w", ErrNotLearner)
	}
	if l.IsTraining() {
		return nil, fmt.Errorf("replay: %w", ErrTraining)
	}
	if err := l.RestartEpisode(from); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	p := newPacer(s.config.PathInterval)
	defer p.stop()

	var visited []gridworld.Position
	for i := 0; i < maxSteps && !l.Done(); i++ {
		if err := p.wait(ctx); err != nil {
			return visited, fmt.Errorf("replay: %w", err)
		}

		step := l.Step()
		visited = append(visited, step.Position)
		s.notify(step)
	}
	return visited, nil
}

// Export exports the result of the search: the best path of a
// PathFinder or the values of a Learner
func (s *Session) Export(ctx context.Context, e export.Exporter) error {
	switch a := s.agent.(type) {
	case agent.Learner:
		if err := e.ExportValues(ctx, s.world, a.ValueTable()); err != nil {
			return fmt.Errorf("export: %w", err)
		}

	case agent.PathFinder:
		path, err := a.BestPath()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := e.ExportPath(ctx, s.world, path); err != nil {
			return fmt.Errorf("export: %w", err)
		}

	default:
		return fmt.Errorf("export: cannot export agent of type %T", a)
	}
	return nil
}

// Save saves the data of all registered Trackers to disk
func (s *Session) Save() error {
	var errs []error
	for _, name := range s.trackerNames() {
		if err := s.trackers[name].Save(); err != nil {
			errs = append(errs, fmt.Errorf("save: tracker %v: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Record saves the Session's run description and the data of all
// registered Trackers to store
func (s *Session) Record(ctx context.Context, store storage.Store) error {
	run, err := s.Description()
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	for _, name := range s.trackerNames() {
		data := s.trackers[name].Data()
		if err := store.SaveHistory(ctx, s.id, name, data); err != nil {
			return fmt.Errorf("record: %w", err)
		}
	}
	return nil
}

// Description returns the storage.Run describing the Session
func (s *Session) Description() (storage.Run, error) {
	var m strings.Builder
	if err := gridworld.Format(&m, s.world.Map()); err != nil {
		return storage.Run{}, fmt.Errorf("description: %w", err)
	}

	return storage.Run{
		ID:        s.id,
		Agent:     s.config.Agent.Type,
		Map:       m.String(),
		Seed:      s.config.Seed,
		CreatedAt: s.createdAt,
	}, nil
}

func (s *Session) track(t ts.TimeStep) {
	for _, tracker := range s.trackers {
		tracker.Track(t)
	}
}

func (s *Session) checkpoint(t ts.TimeStep) error {
	for _, c := range s.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) notify(t ts.TimeStep) {
	for _, o := range s.observers {
		o(s.agent, t)
	}
}

func (s *Session) trackerNames() []string {
	names := make([]string, 0, len(s.trackers))
	for name := range s.trackers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pacer waits a fixed interval between calls to wait. A pacer with a
// non-positive interval never waits.
type pacer struct {
	ticker *time.Ticker
}

func newPacer(interval time.Duration) *pacer {
	if interval <= 0 {
		return &pacer{}
	}
	return &pacer{time.NewTicker(interval)}
}

// wait blocks until the next tick or until ctx is done, in which case
// the context's error is returned
func (p *pacer) wait(ctx context.Context) error {
	if p.ticker == nil {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
		return nil
	}
}

func (p *pacer) stop() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}
