package gridworld

import "errors"

var (
	// ErrInvalidMap is returned when a map is empty, not rectangular,
	// contains unknown cell markers, or does not contain exactly one
	// start and one reward cell
	ErrInvalidMap = errors.New("invalid grid map")

	// ErrOutOfBounds is returned when a Position lies outside the grid
	ErrOutOfBounds = errors.New("position out of bounds")
)
