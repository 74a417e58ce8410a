package policy

import "gonum.org/v1/gonum/mat"

// NewGreedy creates a new greedy policy over values
func NewGreedy(seed uint64, values *mat.Dense) *EGreedy {
	return NewEGreedy(0.0, seed, values)
}
