package astar

import (
	"container/heap"

	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

// node is a single entry of the frontier
type node struct {
	pos   gridworld.Position
	cost  int // cost from start
	h     int // heuristic cost to the reward
	seq   int // insertion order
	index int // index in the heap
}

func (n *node) priority() int {
	return n.cost + n.h
}

// frontier is the open set of an A* search. Nodes are ordered by
// priority, then by heuristic, then by insertion order, so that
// searches are deterministic.
type frontier struct {
	nodes []*node
	byPos map[gridworld.Position]*node
	seq   int
}

func newFrontier() *frontier {
	return &frontier{byPos: make(map[gridworld.Position]*node)}
}

func (f *frontier) Len() int { return len(f.nodes) }

func (f *frontier) Less(i, j int) bool {
	a, b := f.nodes[i], f.nodes[j]
	if a.priority() != b.priority() {
		return a.priority() < b.priority()
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (f *frontier) Swap(i, j int) {
	f.nodes[i], f.nodes[j] = f.nodes[j], f.nodes[i]
	f.nodes[i].index = i
	f.nodes[j].index = j
}

// Push implements heap.Interface, use push instead
func (f *frontier) Push(x interface{}) {
	n := x.(*node)
	n.index = len(f.nodes)
	f.nodes = append(f.nodes, n)
}

// Pop implements heap.Interface, use pop instead
func (f *frontier) Pop() interface{} {
	old := f.nodes
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	f.nodes = old[:last]
	return n
}

// push adds p to the frontier, or updates its cost if p is already in
// the frontier. An updated node counts as newly inserted.
func (f *frontier) push(p gridworld.Position, cost, h int) {
	f.seq++
	if n, ok := f.byPos[p]; ok {
		n.cost = cost
		n.h = h
		n.seq = f.seq
		heap.Fix(f, n.index)
		return
	}

	n := &node{pos: p, cost: cost, h: h, seq: f.seq}
	f.byPos[p] = n
	heap.Push(f, n)
}

// pop removes and returns the node with the lowest priority
func (f *frontier) pop() *node {
	n := heap.Pop(f).(*node)
	delete(f.byPos, n.pos)
	return n
}

// positions returns the positions in the frontier in heap order
func (f *frontier) positions() []gridworld.Position {
	positions := make([]gridworld.Position, len(f.nodes))
	for i, n := range f.nodes {
		positions[i] = n.pos
	}
	return positions
}
