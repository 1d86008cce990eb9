package core

import (
	"fmt"

	"github.com/google/uuid"
)

// Node is a location in the warehouse grid. Adjacency is stored as neighbor IDs so the
// Map stays the single owner of every node.
type Node struct {
	ID     NodeID
	Coords Coords
	Type   NodeType

	neighbors []NodeID
}

// Neighbors returns the adjacent node IDs. The slice must not be modified.
func (n *Node) Neighbors() []NodeID {
	return n.neighbors
}

// HasNeighbor reports whether id is adjacent to n.
func (n *Node) HasNeighbor(id NodeID) bool {
	for _, nb := range n.neighbors {
		if nb == id {
			return true
		}
	}
	return false
}

// Equal compares nodes by identifier only.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.ID == o.ID
}

func (n *Node) String() string {
	return fmt.Sprintf("%s%s", n.Type, n.Coords)
}

// Map is the grid graph: an arena of nodes keyed by ID with a coordinate index.
// It is built once by a layout collaborator and is read-only while planning.
type Map struct {
	ID     uuid.UUID
	Lanes  int
	Aisles int
	Levels int

	nodes    map[NodeID]*Node
	order    []NodeID
	byCoords map[Coords]NodeID
}

// NewMap creates an empty map with the given dimensions.
func NewMap(lanes, aisles, levels int) *Map {
	return &Map{
		ID:       uuid.New(),
		Lanes:    lanes,
		Aisles:   aisles,
		Levels:   levels,
		nodes:    make(map[NodeID]*Node),
		byCoords: make(map[Coords]NodeID),
	}
}

// AddNode creates a node at c. A coordinate can hold at most one node.
func (m *Map) AddNode(c Coords, t NodeType) (*Node, error) {
	if existing, ok := m.byCoords[c]; ok {
		return nil, fmt.Errorf("add node at %s: %w (held by %s)", c, ErrDuplicateCoords, existing.Short())
	}
	n := &Node{ID: NewNodeID(), Coords: c, Type: t}
	m.nodes[n.ID] = n
	m.order = append(m.order, n.ID)
	m.byCoords[c] = n.ID
	return n, nil
}

// Connect adds an undirected edge between a and b. Connecting an existing pair is a no-op.
func (m *Map) Connect(a, b NodeID) error {
	if a == b {
		return fmt.Errorf("connect %s to itself", a.Short())
	}
	na, err := m.Node(a)
	if err != nil {
		return err
	}
	nb, err := m.Node(b)
	if err != nil {
		return err
	}
	if !na.HasNeighbor(b) {
		na.neighbors = append(na.neighbors, b)
	}
	if !nb.HasNeighbor(a) {
		nb.neighbors = append(nb.neighbors, a)
	}
	return nil
}

// Node resolves an identifier.
func (m *Map) Node(id NodeID) (*Node, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", ErrNodeLookupFailed, id)
	}
	return n, nil
}

// NodeAt resolves a coordinate.
func (m *Map) NodeAt(c Coords) (*Node, error) {
	id, ok := m.byCoords[c]
	if !ok {
		return nil, fmt.Errorf("%w: coords %s", ErrNodeLookupFailed, c)
	}
	return m.nodes[id], nil
}

// Nodes returns all nodes in insertion order.
func (m *Map) Nodes() []*Node {
	out := make([]*Node, len(m.order))
	for i, id := range m.order {
		out[i] = m.nodes[id]
	}
	return out
}

// NodesByType returns the nodes tagged t, in insertion order.
func (m *Map) NodesByType(t NodeType) []*Node {
	var out []*Node
	for _, id := range m.order {
		if n := m.nodes[id]; n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of nodes.
func (m *Map) Len() int {
	return len(m.nodes)
}

// Neighbors returns the nodes adjacent to id.
func (m *Map) Neighbors(id NodeID) []*Node {
	n, ok := m.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(n.neighbors))
	for _, nb := range n.neighbors {
		out = append(out, m.nodes[nb])
	}
	return out
}

// CheckSymmetry verifies that every edge is listed on both of its endpoints and
// that no edge points outside the map.
func (m *Map) CheckSymmetry() error {
	for _, id := range m.order {
		n := m.nodes[id]
		for _, nbID := range n.neighbors {
			nb, ok := m.nodes[nbID]
			if !ok {
				return fmt.Errorf("%s lists unknown neighbor %s: %w", n, nbID.Short(), ErrNodeLookupFailed)
			}
			if !nb.HasNeighbor(n.ID) {
				return fmt.Errorf("asymmetric edge %s -> %s", n, nb)
			}
		}
	}
	return nil
}
