// Package config loads routing scenarios from YAML and process settings from the
// environment.
package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/layout"
	"github.com/pdatta1/PathRouting/internal/registry"
)

// Point is a grid position in a scenario file.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// Coords converts p to map coordinates.
func (p Point) Coords() core.Coords {
	return core.Coords{X: p.X, Y: p.Y, Z: p.Z}
}

// LayoutSpec selects and sizes the map.
type LayoutSpec struct {
	Kind   string      `yaml:"kind"` // "warehouse" (default) or "open"
	Lanes  int         `yaml:"lanes"`
	Aisles int         `yaml:"aisles"`
	// Bays is a pointer so 0 (aisles at the map edge) differs from unset.
	Bays   *int        `yaml:"bays,omitempty"`
	Levels int         `yaml:"levels"`
	Width  int         `yaml:"width"`  // open grids only
	Height int         `yaml:"height"` // open grids only
	VTUs   []layout.XY `yaml:"vtus"`
}

type OccupantSpec struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	At     Point  `yaml:"at"`
	Static bool   `yaml:"static"`
}

type AgentSpec struct {
	ID       string `yaml:"id"`
	Start    Point  `yaml:"start"`
	Goal     Point  `yaml:"goal"`
	Priority int    `yaml:"priority"`
}

// PlannerSpec tunes the planners. Zero values fall back to the defaults.
type PlannerSpec struct {
	Name          string `yaml:"name"`
	MaxTicks      int    `yaml:"max_ticks"`
	MaxExpansions int    `yaml:"max_expansions"`
	AllowWait     *bool  `yaml:"allow_wait"`
	AvoidSwaps    *bool  `yaml:"avoid_swaps"`
	Workers       int    `yaml:"workers"`
}

// Options returns the cooperative search options described by p.
func (p PlannerSpec) Options() algo.CooperativeOptions {
	opts := algo.DefaultCooperativeOptions()
	if p.MaxTicks > 0 {
		opts.MaxTicks = p.MaxTicks
	}
	if p.MaxExpansions > 0 {
		opts.MaxExpansions = p.MaxExpansions
	}
	if p.AllowWait != nil {
		opts.AllowWait = *p.AllowWait
	}
	if p.AvoidSwaps != nil {
		opts.AvoidSwaps = *p.AvoidSwaps
	}
	return opts
}

// Scenario is a map plus the entities and agents placed on it.
type Scenario struct {
	Version   int            `yaml:"version"`
	Name      string         `yaml:"name"`
	MapID     string         `yaml:"map_id,omitempty"`
	Seed      int64          `yaml:"seed,omitempty"`
	Layout    LayoutSpec     `yaml:"layout"`
	Occupants []OccupantSpec `yaml:"occupants"`
	Agents    []AgentSpec    `yaml:"agents"`
	Planner   PlannerSpec    `yaml:"planner"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScenario(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(b []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Version != 1 {
		return nil, fmt.Errorf("unsupported scenario version: %d", s.Version)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Marshal encodes s as YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks references that do not need the map.
func (s *Scenario) Validate() error {
	if s.MapID != "" {
		if _, err := uuid.Parse(s.MapID); err != nil {
			return fmt.Errorf("map_id: %w", err)
		}
	}
	switch s.Layout.Kind {
	case "", "warehouse", "open":
	default:
		return fmt.Errorf("unknown layout kind %q", s.Layout.Kind)
	}

	seen := make(map[string]bool)
	for _, a := range s.Agents {
		if a.ID == "" {
			return fmt.Errorf("agent without id")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate agent %q", a.ID)
		}
		seen[a.ID] = true
	}
	for _, o := range s.Occupants {
		switch core.EntityKind(o.Kind) {
		case core.EntityRobot, core.EntityPallet, core.EntityBlocker, core.EntityVTU:
		default:
			return fmt.Errorf("occupant %q: unknown kind %q", o.ID, o.Kind)
		}
	}
	return nil
}

// LayoutConfig returns the warehouse builder config for the scenario.
func (s *Scenario) LayoutConfig() layout.Config {
	cfg := layout.DefaultConfig()
	if s.Layout.Lanes > 0 {
		cfg.Lanes = s.Layout.Lanes
	}
	if s.Layout.Aisles > 0 {
		cfg.Aisles = s.Layout.Aisles
	}
	if s.Layout.Bays != nil {
		cfg.Bays = *s.Layout.Bays
	}
	if s.Layout.Levels > 0 {
		cfg.Levels = s.Layout.Levels
	}
	cfg.VTUs = s.Layout.VTUs
	return cfg
}

// MapUUID returns the configured map ID, or one derived from the scenario name so
// repeated runs of the same scenario publish and journal under the same map.
func (s *Scenario) MapUUID() uuid.UUID {
	if id, err := uuid.Parse(s.MapID); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("whroute:"+s.Name))
}

// BuildMap creates the scenario's map.
func (s *Scenario) BuildMap() (*core.Map, error) {
	var (
		m   *core.Map
		err error
	)
	if s.Layout.Kind == "open" {
		levels := s.Layout.Levels
		if levels == 0 {
			levels = 1
		}
		m, err = layout.Open(s.Layout.Width, s.Layout.Height, levels, s.Layout.VTUs...)
	} else {
		m, err = layout.Build(s.LayoutConfig(), core.DefaultMovements())
	}
	if err != nil {
		return nil, err
	}
	m.ID = s.MapUUID()
	return m, nil
}

// Populate inserts the scenario's occupants into reg.
func (s *Scenario) Populate(reg *registry.Registry) error {
	for _, o := range s.Occupants {
		if err := reg.InsertAt(o.ID, core.EntityKind(o.Kind), o.At.Coords(), o.Static); err != nil {
			return err
		}
	}
	return nil
}

// ResolveAgents turns agent specs into routing requests on m.
func (s *Scenario) ResolveAgents(m *core.Map) ([]algo.Agent, error) {
	agents := make([]algo.Agent, 0, len(s.Agents))
	for _, a := range s.Agents {
		start, err := m.NodeAt(a.Start.Coords())
		if err != nil {
			return nil, fmt.Errorf("agent %q start: %w", a.ID, err)
		}
		goal, err := m.NodeAt(a.Goal.Coords())
		if err != nil {
			return nil, fmt.Errorf("agent %q goal: %w", a.ID, err)
		}
		agents = append(agents, algo.Agent{ID: a.ID, Start: start.ID, Goal: goal.ID, Priority: a.Priority})
	}
	return agents, nil
}
