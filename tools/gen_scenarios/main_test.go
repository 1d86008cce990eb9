package main

import (
	"testing"

	"github.com/pdatta1/PathRouting/internal/config"
	"github.com/pdatta1/PathRouting/internal/registry"
)

func smallParams() ScenarioParams {
	return ScenarioParams{
		Seed:          7,
		NumAgents:     6,
		Lanes:         5,
		Aisles:        2,
		Bays:          2,
		Levels:        2,
		VTUs:          2,
		PalletDensity: 0.2,
		MaxPriority:   2,
	}
}

func TestGenerateScenarioDeterministic(t *testing.T) {
	a, err := generateScenario(smallParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := generateScenario(smallParams())
	if err != nil {
		t.Fatal(err)
	}
	ab, _ := a.Marshal()
	bb, _ := b.Marshal()
	if string(ab) != string(bb) {
		t.Error("same seed produced different scenarios")
	}
}

func TestGenerateScenarioLoads(t *testing.T) {
	s, err := generateScenario(smallParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := config.ParseScenario(b)
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}

	m, err := parsed.BuildMap()
	if err != nil {
		t.Fatal(err)
	}
	reg := registry.New(m)
	if err := parsed.Populate(reg); err != nil {
		t.Fatal(err)
	}
	agents, err := parsed.ResolveAgents(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(agents) != 6 || len(parsed.Layout.VTUs) != 2 {
		t.Errorf("agents=%d vtus=%d", len(agents), len(parsed.Layout.VTUs))
	}

	blocked := make(map[string]bool)
	for _, o := range parsed.Occupants {
		blocked[o.At.Coords().String()] = true
	}
	starts := make(map[string]bool)
	for _, a := range parsed.Agents {
		if blocked[a.Start.Coords().String()] || blocked[a.Goal.Coords().String()] {
			t.Errorf("agent %s starts or ends on a pallet", a.ID)
		}
		if starts[a.Start.Coords().String()] {
			t.Errorf("agent %s shares a start cell", a.ID)
		}
		starts[a.Start.Coords().String()] = true
		if a.Priority < 0 || a.Priority > 2 {
			t.Errorf("agent %s priority %d", a.ID, a.Priority)
		}
	}
}

func TestGenerateScenarioTooManyAgents(t *testing.T) {
	p := smallParams()
	p.NumAgents = 1000
	if _, err := generateScenario(p); err == nil {
		t.Error("expected error when agents outnumber free cells")
	}
}
