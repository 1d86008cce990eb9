// Package core defines the warehouse grid model shared by the routing algorithms.
package core

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeType classifies the movement allowed when leaving a node.
type NodeType int

const (
	Aisle NodeType = iota // Travel corridor, moves along Y
	Lane                  // Storage lane, moves along X
	VTU                   // Vertical transfer unit, moves along Z
)

func (t NodeType) String() string {
	switch t {
	case Aisle:
		return "aisle"
	case Lane:
		return "lane"
	case VTU:
		return "vtu"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// ParseNodeType maps the lowercase names used in scenario files to a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	switch s {
	case "aisle":
		return Aisle, nil
	case "lane":
		return Lane, nil
	case "vtu":
		return VTU, nil
	default:
		return 0, fmt.Errorf("unknown node type %q", s)
	}
}

// AllNodeTypes returns every known node type in declaration order.
func AllNodeTypes() []NodeType {
	return []NodeType{Aisle, Lane, VTU}
}

// Coords is an integer grid position. Z is the level.
type Coords struct {
	X, Y, Z int
}

func (c Coords) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns c shifted by d.
func (c Coords) Add(d Delta) Coords {
	return Coords{X: c.X + d.DX, Y: c.Y + d.DY, Z: c.Z + d.DZ}
}

// Sub returns the delta that moves o onto c.
func (c Coords) Sub(o Coords) Delta {
	return Delta{DX: c.X - o.X, DY: c.Y - o.Y, DZ: c.Z - o.Z}
}

// Manhattan returns |dx|+|dy|+|dz| between two positions.
func Manhattan(a, b Coords) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y) + abs(a.Z-b.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Delta is a single-step coordinate change.
type Delta struct {
	DX, DY, DZ int
}

// Negate returns the opposite move.
func (d Delta) Negate() Delta {
	return Delta{DX: -d.DX, DY: -d.DY, DZ: -d.DZ}
}

// NodeID is a stable node identifier, generated once when the node is created.
type NodeID uuid.UUID

// NewNodeID returns a fresh random identifier.
func NewNodeID() NodeID {
	return NodeID(uuid.New())
}

// ParseNodeID parses the canonical UUID text form.
func ParseNodeID(s string) (NodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NodeID{}, fmt.Errorf("%w: %q: %v", ErrNodeLookupFailed, s, err)
	}
	return NodeID(u), nil
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first 8 hex characters, enough for log lines.
func (id NodeID) Short() string {
	return id.String()[:8]
}

// IsZero reports whether id was never assigned.
func (id NodeID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}
