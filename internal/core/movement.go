package core

import "sync"

// DefaultDeltas returns the built-in moves for a node type.
func DefaultDeltas(t NodeType) []Delta {
	switch t {
	case Aisle:
		return []Delta{{DY: 1}, {DY: -1}}
	case Lane:
		return []Delta{{DX: 1}, {DX: -1}}
	case VTU:
		return []Delta{{DZ: 1}, {DZ: -1}}
	default:
		return nil
	}
}

// Movements maps node types to the deltas a mover may apply when leaving a node of
// that type. New movement classes are added by registration, not by touching planners.
type Movements struct {
	mu        sync.RWMutex
	protocols map[NodeType][]Delta
}

// NewMovements creates an empty registry.
func NewMovements() *Movements {
	return &Movements{protocols: make(map[NodeType][]Delta)}
}

// DefaultMovements creates a registry holding DefaultDeltas for every node type.
func DefaultMovements() *Movements {
	m := NewMovements()
	for _, t := range AllNodeTypes() {
		m.Register(t, DefaultDeltas(t)...)
	}
	return m
}

// Register sets the deltas for t, replacing any previous registration.
func (m *Movements) Register(t NodeType, deltas ...Delta) {
	cp := make([]Delta, len(deltas))
	copy(cp, deltas)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.protocols[t] = cp
}

// Resolve returns the deltas for t. ok is false when t was never registered.
func (m *Movements) Resolve(t NodeType) ([]Delta, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	deltas, ok := m.protocols[t]
	if !ok {
		return nil, false
	}
	cp := make([]Delta, len(deltas))
	copy(cp, deltas)
	return cp, true
}

// List returns a copy of the whole registry.
func (m *Movements) List() map[NodeType][]Delta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[NodeType][]Delta, len(m.protocols))
	for t, deltas := range m.protocols {
		cp := make([]Delta, len(deltas))
		copy(cp, deltas)
		out[t] = cp
	}
	return out
}

// Allows reports whether leaving from toward to is a registered move for from's type.
func (m *Movements) Allows(from, to *Node) bool {
	d := to.Coords.Sub(from.Coords)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, allowed := range m.protocols[from.Type] {
		if allowed == d {
			return true
		}
	}
	return false
}

// Connects reports whether an edge between a and b is legal in either direction.
// The relation is symmetric, so edges derived from it are too.
func (m *Movements) Connects(a, b *Node) bool {
	return m.Allows(a, b) || m.Allows(b, a)
}
