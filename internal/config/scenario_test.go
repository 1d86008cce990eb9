package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/layout"
	"github.com/pdatta1/PathRouting/internal/registry"
)

const sampleScenario = `version: 1
name: two-robots
layout:
  kind: warehouse
  lanes: 5
  aisles: 2
  bays: 2
  levels: 2
  vtus:
    - {x: 2, y: 4}
occupants:
  - {id: pallet_1, kind: pallet, at: {x: 0, y: 1, z: 0}, static: true}
  - {id: robot_1, kind: robot, at: {x: 2, y: 0, z: 0}}
agents:
  - {id: robot_1, start: {x: 2, y: 0, z: 0}, goal: {x: 5, y: 4, z: 0}, priority: 2}
  - {id: robot_2, start: {x: 5, y: 0, z: 0}, goal: {x: 2, y: 3, z: 0}}
planner:
  name: cooperative
  max_ticks: 64
  allow_wait: false
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, sampleScenario))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if s.Name != "two-robots" || len(s.Agents) != 2 || len(s.Occupants) != 2 {
		t.Fatalf("scenario = %+v", s)
	}

	m, err := s.BuildMap()
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}
	if m.Levels != 2 || len(m.NodesByType(core.VTU)) != 2 {
		t.Errorf("map levels=%d vtus=%d", m.Levels, len(m.NodesByType(core.VTU)))
	}

	reg := registry.New(m)
	if err := s.Populate(reg); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if got := len(reg.OccupiedNodes(0, true)); got != 1 {
		t.Errorf("static occupied = %d, want 1", got)
	}

	agents, err := s.ResolveAgents(m)
	if err != nil {
		t.Fatalf("ResolveAgents: %v", err)
	}
	if agents[0].ID != "robot_1" || agents[0].Priority != 2 {
		t.Errorf("agent 0 = %+v", agents[0])
	}

	opts := s.Planner.Options()
	def := algo.DefaultCooperativeOptions()
	if opts.MaxTicks != 64 || opts.AllowWait || opts.MaxExpansions != def.MaxExpansions || !opts.AvoidSwaps {
		t.Errorf("options = %+v", opts)
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong version", "version: 2\n"},
		{"bad yaml", "version: [\n"},
		{"duplicate agent", "version: 1\nagents:\n  - {id: a}\n  - {id: a}\n"},
		{"unknown occupant kind", "version: 1\noccupants:\n  - {id: x, kind: forklift}\n"},
		{"unknown layout", "version: 1\nlayout: {kind: hex}\n"},
		{"bad map id", "version: 1\nmap_id: not-a-uuid\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolveAgentsUnknownCoords(t *testing.T) {
	s, err := ParseScenario([]byte("version: 1\nlayout: {kind: open, width: 2, height: 2}\nagents:\n  - {id: a, start: {x: 0, y: 0}, goal: {x: 5, y: 5}}\n"))
	if err != nil {
		t.Fatal(err)
	}
	m, err := s.BuildMap()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ResolveAgents(m); err == nil {
		t.Error("expected error for goal outside the map")
	}
}

func TestScenarioRoundTrip(t *testing.T) {
	s, err := ParseScenario([]byte(sampleScenario))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	again, err := ParseScenario(b)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if again.Agents[1].Goal != s.Agents[1].Goal || again.Layout.VTUs[0] != s.Layout.VTUs[0] {
		t.Errorf("round trip changed the scenario: %+v", again)
	}
}

func TestScenarioMapID(t *testing.T) {
	s, err := ParseScenario([]byte(sampleScenario))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := s.BuildMap()
	b, _ := s.BuildMap()
	if a.ID != b.ID {
		t.Errorf("derived map IDs differ: %s vs %s", a.ID, b.ID)
	}

	s.MapID = "6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6"
	m, err := s.BuildMap()
	if err != nil {
		t.Fatal(err)
	}
	if m.ID.String() != s.MapID {
		t.Errorf("map ID = %s, want %s", m.ID, s.MapID)
	}
}

func TestScenarioBays(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"unset keeps the default", "version: 1\nlayout: {lanes: 3, aisles: 1, levels: 1}\n", layout.DefaultConfig().Bays},
		{"explicit zero", "version: 1\nlayout: {lanes: 3, aisles: 1, bays: 0, levels: 1}\n", 0},
		{"explicit value", "version: 1\nlayout: {lanes: 3, aisles: 1, bays: 2, levels: 1}\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScenario([]byte(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			cfg := s.LayoutConfig()
			if cfg.Bays != tt.want {
				t.Fatalf("bays = %d, want %d", cfg.Bays, tt.want)
			}
			m, err := s.BuildMap()
			if err != nil {
				t.Fatalf("BuildMap: %v", err)
			}
			if got := m.Len(); got != cfg.Width()*cfg.Lanes*cfg.Levels {
				t.Errorf("nodes = %d, want %d", got, cfg.Width()*cfg.Lanes*cfg.Levels)
			}
		})
	}
}
