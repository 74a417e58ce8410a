// Package export emits the results of a search session to external
// sinks: the best path found by a path finder, drawn over its grid, and
// the action values learned by a learner.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"gonum.org/v1/gonum/floats"
)

// Exporter emits search results to some sink
type Exporter interface {
	// ExportPath emits world annotated with path, which runs from the
	// start cell to the reward cell
	ExportPath(ctx context.Context, world *gridworld.GridWorld,
		path []gridworld.Position) error

	// ExportValues emits the action values learned on world
	ExportValues(ctx context.Context, world *gridworld.GridWorld,
		table agent.ValueTable) error
}

// Multi is an Exporter which exports to each of its Exporters in turn.
// All Exporters are run, and their errors are joined.
type Multi []Exporter

// ExportPath exports path to each Exporter
func (m Multi) ExportPath(ctx context.Context, world *gridworld.GridWorld,
	path []gridworld.Position) error {
	var errs []error
	for _, e := range m {
		if err := e.ExportPath(ctx, world, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ExportValues exports table to each Exporter
func (m Multi) ExportValues(ctx context.Context, world *gridworld.GridWorld,
	table agent.ValueTable) error {
	var errs []error
	for _, e := range m {
		if err := e.ExportValues(ctx, world, table); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// checkPath returns an error if any cell of path lies outside world
func checkPath(world *gridworld.GridWorld, path []gridworld.Position) error {
	for _, p := range path {
		if !world.InBounds(p) {
			return fmt.Errorf("path cell %v: %w", p, gridworld.ErrOutOfBounds)
		}
	}
	return nil
}

// definedValues returns the values at p of the directions which stay
// in world, keyed by direction name
func definedValues(world *gridworld.GridWorld, table agent.ValueTable,
	p gridworld.Position) map[string]float64 {
	values := make(map[string]float64, gridworld.NumDirections)
	for _, d := range gridworld.Directions {
		if world.InBounds(p.Move(d)) {
			values[d.String()] = table.Value(p, d)
		}
	}
	return values
}

// definedSum returns the sum of the defined action values at p
func definedSum(world *gridworld.GridWorld, table agent.ValueTable,
	p gridworld.Position) float64 {
	defined := make([]float64, 0, gridworld.NumDirections)
	for _, d := range gridworld.Directions {
		if world.InBounds(p.Move(d)) {
			defined = append(defined, table.Value(p, d))
		}
	}
	return floats.Sum(defined)
}
