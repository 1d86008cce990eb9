// Package algo implements the warehouse routing planners: single-level A*, nearest
// transfer point search, and cooperative space-time planning over a shared
// reservation table.
package algo

import (
	"sort"
	"sync"

	"github.com/pdatta1/PathRouting/internal/core"
)

// Planner is the interface for single-agent routing algorithms.
type Planner interface {
	// Plan finds a path from start to goal inclusive.
	Plan(start, goal core.NodeID) (*core.Path, error)

	// Name returns the algorithm name.
	Name() string
}

// Planners is a named set of planners. It is safe for concurrent use.
type Planners struct {
	mu sync.RWMutex
	m  map[string]Planner
}

// NewPlanners creates a registry holding ps under their own names.
func NewPlanners(ps ...Planner) *Planners {
	r := &Planners{m: make(map[string]Planner)}
	for _, p := range ps {
		r.Register(p.Name(), p)
	}
	return r
}

// Register adds or replaces the planner stored under name.
func (r *Planners) Register(name string, p Planner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = p
}

// Remove deletes the planner stored under name.
func (r *Planners) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, name)
}

// Get returns the planner stored under name.
func (r *Planners) Get(name string) (Planner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[name]
	return p, ok
}

// Names returns the registered names, sorted.
func (r *Planners) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.m))
	for name := range r.m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Conflict represents a collision between two agents.
type Conflict struct {
	Agent1, Agent2 string
	Coords         core.Coords // Shared cell, or the first agent's origin for a swap
	Tick           int
	IsEdge         bool // Swap across one edge vs shared cell
	// For edge conflicts: the cells being swapped, as seen by Agent1
	From, To core.Coords
}

type pathSegment struct {
	from, to core.Coords
	tick     int // Tick at which the move starts
}

func buildSegments(p *core.Path) []pathSegment {
	if p == nil || len(p.Nodes) < 2 {
		return nil
	}
	segs := make([]pathSegment, 0, len(p.Nodes)-1)
	for i := 0; i < len(p.Nodes)-1; i++ {
		segs = append(segs, pathSegment{
			from: p.Nodes[i].Coords,
			to:   p.Nodes[i+1].Coords,
			tick: p.StartTick + i,
		})
	}
	return segs
}

// sortedAgentIDs returns sorted agent IDs from paths map.
func sortedAgentIDs(paths map[string]*core.Path) []string {
	ids := make([]string, 0, len(paths))
	for id, p := range paths {
		if p != nil && len(p.Nodes) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// positionAt returns where a path is at tick t. Agents only exist on the map between
// their start and goal ticks.
func positionAt(p *core.Path, t int) (core.Coords, bool) {
	if t < p.StartTick || t > p.EndTick() {
		return core.Coords{}, false
	}
	return p.Nodes[t-p.StartTick].Coords, true
}

func tickRange(paths map[string]*core.Path, ids []string) (lo, hi int) {
	for i, id := range ids {
		p := paths[id]
		if i == 0 || p.StartTick < lo {
			lo = p.StartTick
		}
		if i == 0 || p.EndTick() > hi {
			hi = p.EndTick()
		}
	}
	return lo, hi
}

// FindFirstConflict returns the earliest conflict among paths, or nil. Vertex conflicts
// win ties with swaps at the same tick.
func FindFirstConflict(paths map[string]*core.Path) *Conflict {
	all := FindAllConflicts(paths)
	if len(all) == 0 {
		return nil
	}
	best := all[0]
	for _, c := range all[1:] {
		if c.Tick < best.Tick || (c.Tick == best.Tick && best.IsEdge && !c.IsEdge) {
			best = c
		}
	}
	return best
}

// FindAllConflicts detects every vertex and swap conflict among paths, ordered by
// tick and agent pair.
func FindAllConflicts(paths map[string]*core.Path) []*Conflict {
	var conflicts []*Conflict
	agents := sortedAgentIDs(paths)
	if len(agents) < 2 {
		return nil
	}

	// Vertex conflicts
	lo, hi := tickRange(paths, agents)
	for t := lo; t <= hi; t++ {
		for i := 0; i < len(agents); i++ {
			for j := i + 1; j < len(agents); j++ {
				pos1, ok1 := positionAt(paths[agents[i]], t)
				pos2, ok2 := positionAt(paths[agents[j]], t)
				if ok1 && ok2 && pos1 == pos2 {
					conflicts = append(conflicts, &Conflict{
						Agent1: agents[i],
						Agent2: agents[j],
						Coords: pos1,
						Tick:   t,
					})
				}
			}
		}
	}

	// Swap conflicts: opposite directions on the same edge during the same tick
	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			segs2 := buildSegments(paths[agents[j]])
			for _, s1 := range buildSegments(paths[agents[i]]) {
				if s1.from == s1.to {
					continue
				}
				for _, s2 := range segs2 {
					if s2.tick == s1.tick && s1.from == s2.to && s1.to == s2.from {
						conflicts = append(conflicts, &Conflict{
							Agent1: agents[i],
							Agent2: agents[j],
							Coords: s1.from,
							Tick:   s1.tick,
							IsEdge: true,
							From:   s1.from,
							To:     s1.to,
						})
					}
				}
			}
		}
	}

	sort.SliceStable(conflicts, func(a, b int) bool {
		return conflicts[a].Tick < conflicts[b].Tick
	})
	return conflicts
}
