package algo

import (
	"fmt"
	"sort"
	"time"

	"github.com/pdatta1/PathRouting/internal/core"
)

// Router is the entry point drivers use: one map, one occupancy view, and the three
// routing queries on top of them.
type Router struct {
	Map       *core.Map
	Occupancy core.OccupancySnapshot
	Options   CooperativeOptions
}

// NewRouter creates a router with default cooperative options. occ may be nil.
func NewRouter(m *core.Map, occ core.OccupancySnapshot) *Router {
	return &Router{
		Map:       m,
		Occupancy: occ,
		Options:   DefaultCooperativeOptions(),
	}
}

// Resolve looks up the node at c.
func (r *Router) Resolve(c core.Coords) (*core.Node, error) {
	return r.Map.NodeAt(c)
}

// FindPath plans on a single level, ignoring reservations.
func (r *Router) FindPath(start, goal core.NodeID) (*core.Path, error) {
	return NewAStar(r.Map, r.Occupancy).FindPath(start, goal)
}

// FindPathCooperative plans against table and commits the result to it.
func (r *Router) FindPathCooperative(start, goal core.NodeID, table *ReservationTable) (*core.Path, error) {
	c := &Cooperative{Map: r.Map, Occupancy: r.Occupancy, Table: table, Options: r.Options}
	return c.FindPath(start, goal, table)
}

// FindNearestTransfer returns the hop-nearest VTU from start.
func (r *Router) FindNearestTransfer(start core.NodeID) (*core.Node, error) {
	return FindNearestTransfer(r.Map, start)
}

// FindRoute plans start -> goal across levels. Same-level requests are plain FindPath.
// Otherwise the route drives to a VTU, rides its column to the goal level and drives
// from there to the goal. The hop-nearest VTU is tried first; when it or its column is
// blocked the others on the start level follow in order of hop distance.
func (r *Router) FindRoute(start, goal core.NodeID) (*core.Path, error) {
	began := time.Now()

	s, err := r.Map.Node(start)
	if err != nil {
		return nil, fmt.Errorf("find route: start: %w", err)
	}
	g, err := r.Map.Node(goal)
	if err != nil {
		return nil, fmt.Errorf("find route: goal: %w", err)
	}
	if s.Coords.Z == g.Coords.Z {
		return r.FindPath(start, goal)
	}

	candidates, err := r.transferCandidates(s)
	if err != nil {
		return nil, fmt.Errorf("find route %s -> %s: %w", s.Coords, g.Coords, err)
	}

	obstacles := newObstacleSet(r.Map, r.Occupancy)
	var firstErr error
	for _, vtu := range candidates {
		path, err := r.routeVia(vtu, s, g, obstacles)
		if err == nil {
			path.Duration = time.Since(began)
			return path, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("find route %s -> %s: %w", s.Coords, g.Coords, firstErr)
}

// transferCandidates lists the VTUs on s's level reachable from s: the hop-nearest one
// first, then the rest by hop distance and position.
func (r *Router) transferCandidates(s *core.Node) ([]*core.Node, error) {
	nearest, err := r.FindNearestTransfer(s.ID)
	if err != nil {
		return nil, err
	}
	dist, err := TransferDistances(r.Map, s.ID)
	if err != nil {
		return nil, err
	}

	var rest []*core.Node
	for id := range dist {
		n, err := r.Map.Node(id)
		if err != nil || id == nearest.ID || n.Coords.Z != s.Coords.Z {
			continue
		}
		rest = append(rest, n)
	}
	sort.Slice(rest, func(i, j int) bool {
		a, b := rest[i], rest[j]
		if dist[a.ID] != dist[b.ID] {
			return dist[a.ID] < dist[b.ID]
		}
		if a.Coords.Y != b.Coords.Y {
			return a.Coords.Y < b.Coords.Y
		}
		return a.Coords.X < b.Coords.X
	})
	return append([]*core.Node{nearest}, rest...), nil
}

// routeVia drives s -> vtu, rides to g's level and drives to g.
func (r *Router) routeVia(vtu, s, g *core.Node, obstacles *obstacleSet) (*core.Path, error) {
	toVTU, err := r.FindPath(s.ID, vtu.ID)
	if err != nil {
		return nil, fmt.Errorf("to transfer point %s: %w", vtu.Coords, err)
	}

	ride, err := r.ride(vtu, g.Coords.Z, obstacles)
	if err != nil {
		return nil, err
	}
	exit := ride[len(ride)-1]

	fromVTU, err := r.FindPath(exit.ID, g.ID)
	if err != nil {
		return nil, fmt.Errorf("from transfer point %s: %w", exit.Coords, err)
	}

	var blocked []*core.Node
	blocked = append(blocked, toVTU.Obstacles...)
	blocked = append(blocked, fromVTU.Obstacles...)

	nodes := append([]*core.Node{}, toVTU.Nodes...)
	nodes = append(nodes, ride[1:]...)
	nodes = append(nodes, fromVTU.Nodes[1:]...)
	return &core.Path{Nodes: nodes, Obstacles: blocked}, nil
}

// ride follows a VTU column from vtu to level z, returning the column nodes inclusive.
// A statically occupied column node stops the ride.
func (r *Router) ride(vtu *core.Node, z int, obstacles *obstacleSet) ([]*core.Node, error) {
	step := 1
	if z < vtu.Coords.Z {
		step = -1
	}
	column := []*core.Node{vtu}
	for cur := vtu; cur.Coords.Z != z; {
		next, err := r.Map.NodeAt(cur.Coords.Add(core.Delta{DZ: step}))
		if err != nil || !cur.HasNeighbor(next.ID) {
			return nil, fmt.Errorf("transfer column at %s does not reach level %d: %w", vtu.Coords, z, core.ErrPathNotFound)
		}
		if obstacles.blocks(next) {
			return nil, fmt.Errorf("transfer column at %s blocked at %s: %w", vtu.Coords, next.Coords, core.ErrPathNotFound)
		}
		column = append(column, next)
		cur = next
	}
	return column, nil
}
