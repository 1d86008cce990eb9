package core

import "time"

// Path is a planned route from start to goal inclusive.
//
// For cooperative paths node i is occupied at tick StartTick+i, so a repeated node is a
// wait. Obstacles lists the statically occupied nodes the search excluded; it is for
// diagnostics only.
type Path struct {
	Nodes     []*Node
	Duration  time.Duration
	Obstacles []*Node
	StartTick int
}

// Len returns the number of nodes.
func (p *Path) Len() int {
	return len(p.Nodes)
}

// Edges returns the number of steps (nodes - 1), or 0 for an empty path.
func (p *Path) Edges() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

// Start returns the first node, or nil.
func (p *Path) Start() *Node {
	if len(p.Nodes) == 0 {
		return nil
	}
	return p.Nodes[0]
}

// Goal returns the last node, or nil.
func (p *Path) Goal() *Node {
	if len(p.Nodes) == 0 {
		return nil
	}
	return p.Nodes[len(p.Nodes)-1]
}

// EndTick is the tick at which the goal is reached.
func (p *Path) EndTick() int {
	return p.StartTick + p.Edges()
}

// Cells returns the space-time cells the path occupies.
func (p *Path) Cells() []Cell {
	cells := make([]Cell, len(p.Nodes))
	for i, n := range p.Nodes {
		cells[i] = Cell{Tick: p.StartTick + i, Coords: n.Coords}
	}
	return cells
}

// At returns the node occupied at tick t. Before the start the agent is at the start
// node; after the goal it stays at the goal.
func (p *Path) At(t int) *Node {
	if len(p.Nodes) == 0 {
		return nil
	}
	i := t - p.StartTick
	if i < 0 {
		i = 0
	}
	if i >= len(p.Nodes) {
		i = len(p.Nodes) - 1
	}
	return p.Nodes[i]
}

// IsObstacle reports whether n was excluded as a static obstacle.
func (p *Path) IsObstacle(n *Node) bool {
	for _, o := range p.Obstacles {
		if o.ID == n.ID {
			return true
		}
	}
	return false
}

// Cell is a space-time cell: a position at a discrete tick.
type Cell struct {
	Tick int
	Coords
}
