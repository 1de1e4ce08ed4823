package goap

import "container/heap"

// node is one search vertex. parent is nil only for the root.
type node struct {
	state  WorldState
	parent *node
	g      int
	h      int
	f      int
	action string

	seq   uint64 // insertion order; breaks f ties
	index int    // position in nodeHeap; -1 once removed
}

// nodeHeap is a min-heap ordered by (f, seq).
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*h = old[:last]
	return n
}

// openSet holds discovered, unexpanded nodes.
//
// Invariant: byState and heap hold the same nodes; at most one node per state.
type openSet struct {
	heap    nodeHeap
	byState map[WorldState]*node
	nextSeq uint64
}

func newOpenSet(capacity int) *openSet {
	return &openSet{
		heap:    make(nodeHeap, 0, capacity),
		byState: make(map[WorldState]*node, capacity),
	}
}

func (o *openSet) Len() int { return o.heap.Len() }

func (o *openSet) reset() {
	clear(o.byState)
	for i := range o.heap {
		o.heap[i] = nil
	}
	o.heap = o.heap[:0]
	o.nextSeq = 0
}

func (o *openSet) push(n *node) {
	n.seq = o.nextSeq
	o.nextSeq++
	heap.Push(&o.heap, n)
	o.byState[n.state] = n
}

// popMin removes and returns the node with the lowest f.
//
// Precondition: Len() > 0.
func (o *openSet) popMin() *node {
	n := heap.Pop(&o.heap).(*node)
	delete(o.byState, n.state)
	return n
}

func (o *openSet) find(ws WorldState) (*node, bool) {
	n, ok := o.byState[ws]
	return n, ok
}

func (o *openSet) remove(n *node) {
	heap.Remove(&o.heap, n.index)
	delete(o.byState, n.state)
}
