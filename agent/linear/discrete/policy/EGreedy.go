// Package policy implements policies over a tabular action-value
// function for discrete gridworld directions
package policy

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// EGreedy implements an ε-greedy policy over a table of action values.
// The table has one row per state and one column per
// gridworld.Direction.
type EGreedy struct {
	values  *mat.Dense
	epsilon float64
	explore distuv.Bernoulli
	seed    rand.Source // Seed for random number generation
}

// NewEGreedy constructs a new EGreedy policy, where e=epsilon is the
// probability with which a random action is selected and values is the
// action-value table the policy is greedy with respect to. The policy
// does not copy values, so updates to the table are seen by the policy.
func NewEGreedy(e float64, seed uint64, values *mat.Dense) *EGreedy {
	if e < 0 || e > 1 {
		panic("newEGreedy: epsilon must be in [0, 1]")
	}
	if _, actions := values.Dims(); actions != gridworld.NumDirections {
		panic("newEGreedy: values must have one column per direction")
	}

	source := rand.NewSource(seed)
	explore := distuv.Bernoulli{P: e, Src: source}

	return &EGreedy{values, e, explore, source}
}

// Epsilon returns the exploration probability of the policy
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// Values returns the action-value table of the policy
func (p *EGreedy) Values() *mat.Dense {
	return p.values
}

// SelectAction selects a direction from among legal in the given state.
// With probability ε a direction is chosen uniformly at random from
// legal, otherwise the greedy direction among legal is chosen. legal
// must be non-empty.
func (p *EGreedy) SelectAction(state int, legal []gridworld.Direction) gridworld.Direction {
	if len(legal) == 0 {
		panic("selectAction: no legal directions")
	}

	if p.epsilon > 0 && p.explore.Rand() == 1 {
		weights := make([]float64, len(legal))
		for i := range weights {
			weights[i] = 1.0
		}
		dist := distuv.NewCategorical(weights, p.seed)
		return legal[int(dist.Rand())]
	}

	return Greedy(mat.Row(nil, state, p.values), legal)
}

// Greedy returns the direction in legal with the highest value in
// actionValues, which is indexed by Direction. Ties are broken in
// the order Up, Down, Left, Right. legal must be non-empty.
func Greedy(actionValues []float64, legal []gridworld.Direction) gridworld.Direction {
	if len(legal) == 0 {
		panic("greedy: no legal directions")
	}

	masked := make([]float64, len(actionValues))
	for i := range masked {
		masked[i] = math.Inf(-1)
	}
	for _, d := range legal {
		masked[d] = actionValues[d]
	}

	return gridworld.Directions[floats.MaxIdx(masked)]
}
