package core

// EntityKind classifies the things an occupant can be.
type EntityKind string

const (
	EntityRobot   EntityKind = "robot"
	EntityPallet  EntityKind = "pallet"
	EntityBlocker EntityKind = "blocker"
	EntityVTU     EntityKind = "vtu"
)

// Occupant is an entity standing on a node. Static occupants block traversal of their
// node; dynamic ones are assumed to move out of the way.
type Occupant struct {
	ID       string
	Kind     EntityKind
	Location NodeID
	Static   bool
}

// OccupancySnapshot answers which nodes are currently occupied on a level.
// Planners query it once per level per planning call.
type OccupancySnapshot interface {
	OccupiedNodes(level int, static bool) []NodeID
}

// NoOccupancy is a snapshot with nothing on the map.
type NoOccupancy struct{}

// OccupiedNodes always returns nil.
func (NoOccupancy) OccupiedNodes(int, bool) []NodeID { return nil }

// StaticSet is a fixed set of statically blocked nodes, handy for tests and one-off
// planning without an entity registry.
type StaticSet struct {
	byLevel map[int][]NodeID
}

// NewStaticSet indexes the given nodes by level.
func NewStaticSet(nodes ...*Node) *StaticSet {
	s := &StaticSet{byLevel: make(map[int][]NodeID)}
	for _, n := range nodes {
		s.byLevel[n.Coords.Z] = append(s.byLevel[n.Coords.Z], n.ID)
	}
	return s
}

// OccupiedNodes returns the static nodes on level; StaticSet never reports dynamic ones.
func (s *StaticSet) OccupiedNodes(level int, static bool) []NodeID {
	if !static {
		return nil
	}
	return s.byLevel[level]
}
