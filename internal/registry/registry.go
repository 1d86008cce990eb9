// Package registry tracks the entities standing on a warehouse map and answers
// occupancy queries for the planners.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pdatta1/PathRouting/internal/core"
)

// Registry holds occupants grouped by kind. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	m        *core.Map
	entities map[core.EntityKind][]*core.Occupant
}

// New creates an empty registry over m.
func New(m *core.Map) *Registry {
	return &Registry{
		m:        m,
		entities: make(map[core.EntityKind][]*core.Occupant),
	}
}

// Map returns the map the registry places entities on.
func (r *Registry) Map() *core.Map {
	return r.m
}

// Insert places an entity on a node. Inserting an ID that already exists for the
// same kind is a no-op.
func (r *Registry) Insert(id string, kind core.EntityKind, at core.NodeID, static bool) error {
	if _, err := r.m.Node(at); err != nil {
		return fmt.Errorf("insert %s %q: %w", kind, id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities[kind] {
		if e.ID == id {
			return nil
		}
	}
	r.entities[kind] = append(r.entities[kind], &core.Occupant{
		ID:       id,
		Kind:     kind,
		Location: at,
		Static:   static,
	})
	return nil
}

// InsertAt is Insert by coordinates.
func (r *Registry) InsertAt(id string, kind core.EntityKind, c core.Coords, static bool) error {
	n, err := r.m.NodeAt(c)
	if err != nil {
		return fmt.Errorf("insert %s %q: %w", kind, id, err)
	}
	return r.Insert(id, kind, n.ID, static)
}

// Remove deletes an entity. Removing an unknown entity is a no-op.
func (r *Registry) Remove(id string, kind core.EntityKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.entities[kind]
	for i, e := range list {
		if e.ID == id {
			r.entities[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Get returns a copy of an entity.
func (r *Registry) Get(id string, kind core.EntityKind) (core.Occupant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entities[kind] {
		if e.ID == id {
			return *e, true
		}
	}
	return core.Occupant{}, false
}

// Move relocates an entity.
func (r *Registry) Move(id string, kind core.EntityKind, to core.NodeID) error {
	if _, err := r.m.Node(to); err != nil {
		return fmt.Errorf("move %s %q: %w", kind, id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities[kind] {
		if e.ID == id {
			e.Location = to
			return nil
		}
	}
	return fmt.Errorf("move %s %q: entity not registered", kind, id)
}

// All returns copies of every entity, sorted by kind then ID.
func (r *Registry) All() []core.Occupant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Occupant
	for _, list := range r.entities {
		for _, e := range list {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AtNode returns the entities standing on a node, optionally restricted to one kind.
func (r *Registry) AtNode(at core.NodeID, kind core.EntityKind) []core.Occupant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Occupant
	for k, list := range r.entities {
		if kind != "" && k != kind {
			continue
		}
		for _, e := range list {
			if e.Location == at {
				out = append(out, *e)
			}
		}
	}
	return out
}

// OccupiedNodes implements core.OccupancySnapshot. Each node appears at most once.
func (r *Registry) OccupiedNodes(level int, static bool) []core.NodeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[core.NodeID]bool)
	var out []core.NodeID
	for _, list := range r.entities {
		for _, e := range list {
			if e.Static != static || seen[e.Location] {
				continue
			}
			n, err := r.m.Node(e.Location)
			if err != nil || n.Coords.Z != level {
				continue
			}
			seen[e.Location] = true
			out = append(out, e.Location)
		}
	}
	return out
}
