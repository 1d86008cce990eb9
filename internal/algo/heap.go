package algo

import (
	"container/heap"

	"github.com/pdatta1/PathRouting/internal/core"
)

// stateKey identifies a search state. Single-level A* leaves tick at zero; the
// cooperative planner uses it to tell apart visits to the same node at different times.
type stateKey struct {
	node core.NodeID
	tick int
}

// searchNode for the priority queue.
type searchNode struct {
	key   stateKey
	g     int    // Cost so far
	f     int    // g + h
	seq   uint64 // Push order, breaks f ties
	index int    // heap index
}

// searchHeap implements heap.Interface ordered by f, then push order.
type searchHeap []*searchNode

func (h searchHeap) Len() int { return len(h) }
func (h searchHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h searchHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *searchHeap) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *searchHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// frontier is a stable min-heap of search nodes.
type frontier struct {
	h   searchHeap
	seq uint64
}

func (f *frontier) push(key stateKey, g, fScore int) {
	f.seq++
	heap.Push(&f.h, &searchNode{key: key, g: g, f: fScore, seq: f.seq})
}

func (f *frontier) pop() *searchNode {
	return heap.Pop(&f.h).(*searchNode)
}

func (f *frontier) len() int {
	return f.h.Len()
}

// obstacleSet lazily collects statically occupied nodes per level.
type obstacleSet struct {
	m       *core.Map
	occ     core.OccupancySnapshot
	levels  map[int]bool
	blocked map[core.NodeID]bool
	nodes   []*core.Node
}

func newObstacleSet(m *core.Map, occ core.OccupancySnapshot) *obstacleSet {
	if occ == nil {
		occ = core.NoOccupancy{}
	}
	return &obstacleSet{
		m:       m,
		occ:     occ,
		levels:  make(map[int]bool),
		blocked: make(map[core.NodeID]bool),
	}
}

func (o *obstacleSet) load(level int) {
	if o.levels[level] {
		return
	}
	o.levels[level] = true
	for _, id := range o.occ.OccupiedNodes(level, true) {
		if o.blocked[id] {
			continue
		}
		n, err := o.m.Node(id)
		if err != nil {
			continue
		}
		o.blocked[id] = true
		o.nodes = append(o.nodes, n)
	}
}

func (o *obstacleSet) blocks(n *core.Node) bool {
	o.load(n.Coords.Z)
	return o.blocked[n.ID]
}
