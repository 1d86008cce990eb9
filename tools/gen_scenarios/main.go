// Package main generates deterministic warehouse routing scenarios.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pdatta1/PathRouting/internal/config"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/layout"
)

// ScenarioParams defines parameters for scenario generation.
type ScenarioParams struct {
	Seed          int64
	NumAgents     int
	Lanes         int
	Aisles        int
	Bays          int
	Levels        int
	VTUs          int     // VTU columns, placed on aisle cells
	PalletDensity float64 // Fraction of lane cells holding a static pallet
	MaxPriority   int     // Priorities are drawn from [0, MaxPriority]
}

func (p ScenarioParams) name() string {
	return fmt.Sprintf("warehouse_%d_%dx%dx%d_%d", p.NumAgents, p.Lanes, p.Aisles, p.Levels, p.Seed)
}

// generateScenario creates a scenario from parameters. The same parameters always
// produce the same scenario.
func generateScenario(params ScenarioParams) (*config.Scenario, error) {
	rng := rand.New(rand.NewSource(params.Seed))

	cfg := layout.Config{Lanes: params.Lanes, Aisles: params.Aisles, Bays: params.Bays, Levels: params.Levels}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// VTU columns on distinct aisle cells.
	var aisleCells []layout.XY
	for i := 0; i < cfg.Aisles; i++ {
		for y := 0; y < cfg.Lanes; y++ {
			aisleCells = append(aisleCells, layout.XY{X: cfg.AisleX(i), Y: y})
		}
	}
	numVTUs := params.VTUs
	if numVTUs < 1 {
		numVTUs = 1
	}
	if numVTUs > len(aisleCells) {
		numVTUs = len(aisleCells)
	}
	rng.Shuffle(len(aisleCells), func(i, j int) { aisleCells[i], aisleCells[j] = aisleCells[j], aisleCells[i] })
	cfg.VTUs = append([]layout.XY(nil), aisleCells[:numVTUs]...)

	s := &config.Scenario{
		Version: 1,
		Name:    params.name(),
		Seed:    params.Seed,
		Layout: config.LayoutSpec{
			Kind:   "warehouse",
			Lanes:  cfg.Lanes,
			Aisles: cfg.Aisles,
			Bays:   &cfg.Bays,
			Levels: cfg.Levels,
			VTUs:   cfg.VTUs,
		},
		Planner: config.PlannerSpec{Name: "cooperative"},
	}

	m, err := layout.Build(cfg, core.DefaultMovements())
	if err != nil {
		return nil, err
	}

	// Pallets only sit on lane cells; aisles and VTUs stay clear.
	var free []*core.Node
	for _, n := range m.Nodes() {
		if n.Type == core.Lane && rng.Float64() < params.PalletDensity {
			s.Occupants = append(s.Occupants, config.OccupantSpec{
				ID:     fmt.Sprintf("pallet_%d", len(s.Occupants)),
				Kind:   string(core.EntityPallet),
				At:     point(n.Coords),
				Static: true,
			})
			continue
		}
		free = append(free, n)
	}
	if len(free) < params.NumAgents {
		return nil, fmt.Errorf("%s: %d free cells for %d agents", s.Name, len(free), params.NumAgents)
	}

	// Distinct starts and distinct goals.
	starts := rng.Perm(len(free))[:params.NumAgents]
	goals := rng.Perm(len(free))[:params.NumAgents]
	for i := 0; i < params.NumAgents; i++ {
		prio := 0
		if params.MaxPriority > 0 {
			prio = rng.Intn(params.MaxPriority + 1)
		}
		s.Agents = append(s.Agents, config.AgentSpec{
			ID:       fmt.Sprintf("robot_%d", i),
			Start:    point(free[starts[i]].Coords),
			Goal:     point(free[goals[i]].Coords),
			Priority: prio,
		})
	}

	return s, s.Validate()
}

func point(c core.Coords) config.Point {
	return config.Point{X: c.X, Y: c.Y, Z: c.Z}
}

func main() {
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	numAgents := flag.Int("agents", 10, "Number of agents")
	lanes := flag.Int("lanes", 9, "Lane rows per level")
	aisles := flag.Int("aisles", 2, "Aisle columns")
	bays := flag.Int("bays", 3, "Lane cells beside each aisle")
	levels := flag.Int("levels", 2, "Levels")
	vtus := flag.Int("vtus", 2, "VTU columns")
	pallets := flag.Float64("pallets", 0.1, "Pallet density on lane cells (0-1)")
	maxPriority := flag.Int("max-priority", 2, "Highest agent priority")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate scaling scenarios (4, 8, 16, 32, 64 agents)")

	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	base := ScenarioParams{
		Seed:          *seed,
		NumAgents:     *numAgents,
		Lanes:         *lanes,
		Aisles:        *aisles,
		Bays:          *bays,
		Levels:        *levels,
		VTUs:          *vtus,
		PalletDensity: *pallets,
		MaxPriority:   *maxPriority,
	}

	var params []ScenarioParams
	if *scalingMode {
		for _, size := range []int{4, 8, 16, 32, 64} {
			p := base
			p.NumAgents = size
			// Lanes and aisles grow with sqrt of agents so density stays comparable.
			grow := int(math.Ceil(math.Sqrt(float64(size))))
			p.Lanes = max(*lanes, 3*grow)
			p.Aisles = max(*aisles, grow)
			params = append(params, p)
		}
	} else {
		params = append(params, base)
	}

	for _, p := range params {
		s, err := generateScenario(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating scenario: %v\n", err)
			continue
		}
		data, err := s.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling scenario %s: %v\n", s.Name, err)
			continue
		}

		filename := filepath.Join(*outputDir, s.Name+".yaml")
		if err := os.WriteFile(filename, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing scenario %s: %v\n", filename, err)
			continue
		}

		fmt.Printf("Generated: %s (%d agents, %d pallets, %d levels)\n",
			filename, len(s.Agents), len(s.Occupants), p.Levels)
	}
}
