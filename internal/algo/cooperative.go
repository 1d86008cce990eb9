package algo

import (
	"fmt"
	"time"

	"github.com/pdatta1/PathRouting/internal/core"
)

// CooperativeOptions bound and shape the space-time search.
type CooperativeOptions struct {
	// MaxTicks is how far past StartTick the search may look. States at or beyond
	// StartTick+MaxTicks are not expanded.
	MaxTicks int
	// MaxExpansions caps the number of expanded states. Zero means no cap.
	MaxExpansions int
	// AllowWait lets an agent stay on its node for a tick.
	AllowWait bool
	// AvoidSwaps rejects a move u -> v when v is reserved at t and u at t+1, which is
	// how another agent crossing the same edge the other way looks in the table.
	AvoidSwaps bool
	// StartTick is the tick at which the agent stands on the start node.
	StartTick int
}

// DefaultCooperativeOptions returns the settings used when none are given.
func DefaultCooperativeOptions() CooperativeOptions {
	return CooperativeOptions{
		MaxTicks:      256,
		MaxExpansions: 200_000,
		AllowWait:     true,
		AvoidSwaps:    true,
	}
}

// Cooperative is A* over (node, tick) states that avoids cells claimed in a shared
// reservation table and claims its own trajectory on success. Agents planned one after
// another against the same table never share a space-time cell.
//
// A start cell already reserved at StartTick fails the search: another agent is
// there at that tick.
type Cooperative struct {
	Map       *core.Map
	Occupancy core.OccupancySnapshot
	Table     *ReservationTable
	Options   CooperativeOptions
}

// NewCooperative creates a cooperative planner with default options.
func NewCooperative(m *core.Map, occ core.OccupancySnapshot, table *ReservationTable) *Cooperative {
	return &Cooperative{
		Map:       m,
		Occupancy: occ,
		Table:     table,
		Options:   DefaultCooperativeOptions(),
	}
}

// Name returns the planner name.
func (c *Cooperative) Name() string {
	return "cooperative"
}

// Plan implements Planner using the planner's own table.
func (c *Cooperative) Plan(start, goal core.NodeID) (*core.Path, error) {
	if c.Table == nil {
		c.Table = NewReservationTable()
	}
	return c.FindPath(start, goal, c.Table)
}

// FindPath plans start -> goal against table and reserves the result in it.
// Node i of the returned path is occupied at tick Options.StartTick+i.
func (c *Cooperative) FindPath(start, goal core.NodeID, table *ReservationTable) (*core.Path, error) {
	began := time.Now()
	opts := c.Options

	s, err := c.Map.Node(start)
	if err != nil {
		return nil, fmt.Errorf("find cooperative path: start: %w", err)
	}
	g, err := c.Map.Node(goal)
	if err != nil {
		return nil, fmt.Errorf("find cooperative path: goal: %w", err)
	}

	obstacles := newObstacleSet(c.Map, c.Occupancy)
	obstacles.load(s.Coords.Z)
	if obstacles.blocks(g) {
		return nil, fmt.Errorf("find cooperative path %s -> %s: goal occupied: %w", s.Coords, g.Coords, core.ErrPathNotFound)
	}

	if table.isReserved(opts.StartTick, s.Coords) {
		return nil, fmt.Errorf("find cooperative path %s -> %s: start reserved at t=%d: %w",
			s.Coords, g.Coords, opts.StartTick, core.ErrPathNotFound)
	}

	limit := opts.StartTick + opts.MaxTicks
	startKey := stateKey{node: start, tick: opts.StartTick}

	open := &frontier{}
	open.push(startKey, 0, core.Manhattan(s.Coords, g.Coords))

	gScore := map[stateKey]int{startKey: 0}
	cameFrom := make(map[stateKey]stateKey)
	closed := make(map[stateKey]bool)
	expansions := 0

	for open.len() > 0 {
		current := open.pop()
		key := current.key

		if key.node == goal {
			path := &core.Path{
				Nodes:     reconstructTimed(c.Map, cameFrom, startKey, key),
				Obstacles: obstacles.nodes,
				StartTick: opts.StartTick,
			}
			table.ReserveAll(path.Cells())
			path.Duration = time.Since(began)
			return path, nil
		}

		if closed[key] {
			continue
		}
		closed[key] = true

		expansions++
		if opts.MaxExpansions > 0 && expansions > opts.MaxExpansions {
			break
		}
		if key.tick >= limit {
			continue
		}

		here, _ := c.Map.Node(key.node)
		next := key.tick + 1

		candidates := c.Map.Neighbors(key.node)
		if opts.AllowWait {
			candidates = append(candidates, here)
		}

		for _, nb := range candidates {
			if nb.ID != here.ID {
				if obstacles.blocks(nb) {
					continue
				}
				if opts.AvoidSwaps && table.isReserved(key.tick, nb.Coords) && table.isReserved(next, here.Coords) {
					continue
				}
			}
			if table.isReserved(next, nb.Coords) {
				continue
			}

			nk := stateKey{node: nb.ID, tick: next}
			if closed[nk] {
				continue
			}
			tentative := gScore[key] + 1
			if old, ok := gScore[nk]; ok && tentative >= old {
				continue
			}
			gScore[nk] = tentative
			cameFrom[nk] = key
			open.push(nk, tentative, tentative+core.Manhattan(nb.Coords, g.Coords))
		}
	}

	return nil, fmt.Errorf("find cooperative path %s -> %s (expanded %d states): %w",
		s.Coords, g.Coords, expansions, core.ErrPathNotFound)
}

// reconstructTimed walks parent links back from a goal state to the start state.
func reconstructTimed(m *core.Map, cameFrom map[stateKey]stateKey, start, goal stateKey) []*core.Node {
	var keys []stateKey
	for k := goal; ; k = cameFrom[k] {
		keys = append(keys, k)
		if k == start {
			break
		}
	}

	nodes := make([]*core.Node, len(keys))
	for i, k := range keys {
		n, _ := m.Node(k.node)
		nodes[len(keys)-1-i] = n
	}
	return nodes
}
