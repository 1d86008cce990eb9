package algo

import (
	"fmt"
	"time"

	"github.com/pdatta1/PathRouting/internal/core"
)

// AStar is a single-level shortest path search over the map graph. Edges cost one
// step, the heuristic is 3D Manhattan distance, and statically occupied nodes are
// not entered. Routing between levels goes through a VTU and is not handled here.
type AStar struct {
	Map       *core.Map
	Occupancy core.OccupancySnapshot
}

// NewAStar creates a single-level planner. occ may be nil.
func NewAStar(m *core.Map, occ core.OccupancySnapshot) *AStar {
	return &AStar{Map: m, Occupancy: occ}
}

// Name returns the planner name.
func (a *AStar) Name() string {
	return "astar"
}

// Plan implements Planner.
func (a *AStar) Plan(start, goal core.NodeID) (*core.Path, error) {
	return a.FindPath(start, goal)
}

// FindPath returns a minimum-step path from start to goal inclusive. Both nodes must be
// on the same level. The search never leaves that level, and a statically occupied
// goal makes the goal unreachable.
func (a *AStar) FindPath(start, goal core.NodeID) (*core.Path, error) {
	began := time.Now()

	s, err := a.Map.Node(start)
	if err != nil {
		return nil, fmt.Errorf("find path: start: %w", err)
	}
	g, err := a.Map.Node(goal)
	if err != nil {
		return nil, fmt.Errorf("find path: goal: %w", err)
	}
	if s.Coords.Z != g.Coords.Z {
		return nil, fmt.Errorf("find path %s -> %s: %w", s.Coords, g.Coords, core.ErrCrossLevelRouting)
	}

	level := s.Coords.Z
	obstacles := newObstacleSet(a.Map, a.Occupancy)
	obstacles.load(level)
	if obstacles.blocks(g) {
		return nil, fmt.Errorf("find path %s -> %s: goal occupied: %w", s.Coords, g.Coords, core.ErrPathNotFound)
	}

	startKey := stateKey{node: start}
	open := &frontier{}
	open.push(startKey, 0, core.Manhattan(s.Coords, g.Coords))

	gScore := map[core.NodeID]int{start: 0}
	cameFrom := make(map[core.NodeID]core.NodeID)
	closed := make(map[core.NodeID]bool)

	for open.len() > 0 {
		current := open.pop()
		id := current.key.node

		if id == goal {
			nodes := reconstructNodes(a.Map, cameFrom, start, goal)
			return &core.Path{
				Nodes:     nodes,
				Duration:  time.Since(began),
				Obstacles: obstacles.nodes,
			}, nil
		}

		if closed[id] {
			continue
		}
		closed[id] = true

		for _, nb := range a.Map.Neighbors(id) {
			if nb.Coords.Z != level || closed[nb.ID] || obstacles.blocks(nb) {
				continue
			}
			tentative := gScore[id] + 1
			if old, ok := gScore[nb.ID]; ok && tentative >= old {
				continue
			}
			gScore[nb.ID] = tentative
			cameFrom[nb.ID] = id
			open.push(stateKey{node: nb.ID}, tentative, tentative+core.Manhattan(nb.Coords, g.Coords))
		}
	}

	return nil, fmt.Errorf("find path %s -> %s: %w", s.Coords, g.Coords, core.ErrPathNotFound)
}

// reconstructNodes walks parent links back from goal to start.
func reconstructNodes(m *core.Map, cameFrom map[core.NodeID]core.NodeID, start, goal core.NodeID) []*core.Node {
	var ids []core.NodeID
	for id := goal; ; id = cameFrom[id] {
		ids = append(ids, id)
		if id == start {
			break
		}
	}

	nodes := make([]*core.Node, len(ids))
	for i, id := range ids {
		n, _ := m.Node(id)
		nodes[len(ids)-1-i] = n
	}
	return nodes
}
