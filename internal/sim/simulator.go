// Package sim steps registered entities along planned routes one tick at a time.
//
// Each simulation is an entity from the registry with a committed path. Every tick
// moves each entity to the node its path occupies at that tick and updates the
// registry, so later planning calls see the new occupancy.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/registry"
)

// SimulationConfig configures the simulation parameters
type SimulationConfig struct {
	// Router plans new simulations
	Router *algo.Router

	// Registry holds the simulated entities
	Registry *registry.Registry

	// Planner is "cooperative" (default) or "astar". A* routes may cross levels
	// through a VTU but ignore other agents.
	Planner string

	// MaxTicks stops Run after this many ticks
	MaxTicks int

	// Enable verbose logging
	Verbose bool
}

// DefaultConfig returns default simulation configuration
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Planner:  "cooperative",
		MaxTicks: 1024,
	}
}

// SimulationMetrics collects metrics during simulation
type SimulationMetrics struct {
	// Timing
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Ticks     int       `json:"ticks"`

	// Planning
	PlanningAttempts    int   `json:"planning_attempts"`
	PlanningSuccesses   int   `json:"planning_successes"`
	TotalPlanningTimeUs int64 `json:"total_planning_time_us"`

	// Movement
	Moves    int `json:"moves"`
	Waits    int `json:"waits"`
	Arrivals int `json:"arrivals"`

	// ConflictsDetected counts moves into a cell another entity holds on the same tick,
	// whether that entity is moving or parked on its goal.
	ConflictsDetected int `json:"conflicts_detected"`

	// Path metrics
	TotalPathLength int     `json:"total_path_length"`
	AvgPathLength   float64 `json:"avg_path_length"`
	Makespan        int     `json:"makespan"`
}

// simulation is one entity following one path.
type simulation struct {
	id      string
	kind    core.EntityKind
	path    *core.Path
	arrived bool
}

// Simulator runs routing simulations over an entity registry.
type Simulator struct {
	mu sync.Mutex

	config SimulationConfig
	table  *algo.ReservationTable

	tick        int
	simulations []*simulation

	metrics SimulationMetrics
}

// NewSimulator creates a new simulation instance
func NewSimulator(config SimulationConfig) *Simulator {
	if config.Planner == "" {
		config.Planner = "cooperative"
	}
	return &Simulator{
		config: config,
		table:  algo.NewReservationTable(),
	}
}

// Table returns the reservation table shared by cooperative simulations.
func (s *Simulator) Table() *algo.ReservationTable {
	return s.table
}

// Tick returns the current tick.
func (s *Simulator) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// AddSimulation plans a route for a registered entity from where it stands now to
// goal and starts following it at the current tick.
func (s *Simulator) AddSimulation(id string, kind core.EntityKind, goal core.Coords) (*core.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.config.Registry.Get(id, kind)
	if !ok {
		return nil, fmt.Errorf("add simulation: cannot find %s %q", kind, id)
	}
	dest, err := s.config.Registry.Map().NodeAt(goal)
	if err != nil {
		return nil, fmt.Errorf("add simulation %q: %w", id, err)
	}

	s.metrics.PlanningAttempts++
	path, err := s.plan(e.Location, dest.ID)
	if err != nil {
		return nil, fmt.Errorf("add simulation %q: %w", id, err)
	}
	s.metrics.PlanningSuccesses++
	s.metrics.TotalPlanningTimeUs += path.Duration.Microseconds()
	s.metrics.TotalPathLength += path.Len()

	s.simulations = append(s.simulations, &simulation{id: id, kind: kind, path: path})
	if s.config.Verbose {
		log.Printf("[INFO] sim: %s %q planned %d steps, t=%d..%d", kind, id, path.Edges(), path.StartTick, path.EndTick())
	}
	return path, nil
}

func (s *Simulator) plan(start, goal core.NodeID) (*core.Path, error) {
	r := s.config.Router
	switch s.config.Planner {
	case "astar":
		path, err := r.FindRoute(start, goal)
		if err != nil {
			return nil, err
		}
		path.StartTick = s.tick
		return path, nil
	case "cooperative":
		router := *r
		router.Options.StartTick = s.tick
		return router.FindPathCooperative(start, goal, s.table)
	default:
		return nil, fmt.Errorf("unknown planner %q", s.config.Planner)
	}
}

// Step advances every simulation by one tick. It reports whether any simulation is
// still moving.
func (s *Simulator) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	occupied := make(map[core.Coords]string)
	active := false

	// Arrived entities stay parked on their goal.
	for _, sim := range s.simulations {
		if sim.arrived {
			occupied[sim.path.Goal().Coords] = sim.id
		}
	}

	for _, sim := range s.simulations {
		if sim.arrived {
			continue
		}
		p := sim.path
		if s.tick <= p.StartTick {
			active = true
			continue
		}

		prev, next := p.At(s.tick-1), p.At(s.tick)
		if prev.ID == next.ID {
			s.metrics.Waits++
		} else {
			s.metrics.Moves++
			if err := s.config.Registry.Move(sim.id, sim.kind, next.ID); err != nil && s.config.Verbose {
				log.Printf("[WARN] sim: move %q: %v", sim.id, err)
			}
		}

		if other, ok := occupied[next.Coords]; ok {
			s.metrics.ConflictsDetected++
			if s.config.Verbose {
				log.Printf("[WARN] sim: %q and %q both at %s at t=%d", other, sim.id, next.Coords, s.tick)
			}
		}
		occupied[next.Coords] = sim.id

		if s.tick >= p.EndTick() {
			sim.arrived = true
			s.metrics.Arrivals++
			if s.tick > s.metrics.Makespan {
				s.metrics.Makespan = s.tick
			}
			if s.config.Verbose {
				log.Printf("[INFO] sim: %q arrived at %s at t=%d", sim.id, next.Coords, s.tick)
			}
			continue
		}
		active = true
	}

	s.metrics.Ticks = s.tick
	return active
}

// Run steps until every simulation has arrived, MaxTicks is reached or ctx ends.
func (s *Simulator) Run(ctx context.Context) (*SimulationMetrics, error) {
	s.mu.Lock()
	s.metrics.StartTime = time.Now()
	s.mu.Unlock()

	var runErr error
	for steps := 0; ; steps++ {
		if s.config.MaxTicks > 0 && steps >= s.config.MaxTicks {
			runErr = fmt.Errorf("simulation stopped after %d ticks", steps)
			break
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if !s.Step() {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.EndTime = time.Now()
	if s.metrics.PlanningSuccesses > 0 {
		s.metrics.AvgPathLength = float64(s.metrics.TotalPathLength) / float64(s.metrics.PlanningSuccesses)
	}
	metrics := s.metrics
	return &metrics, runErr
}

// Positions returns where each simulated entity currently is.
func (s *Simulator) Positions() map[string]core.Coords {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]core.Coords, len(s.simulations))
	for _, sim := range s.simulations {
		out[sim.id] = sim.path.At(s.tick).Coords
	}
	return out
}

// Paths returns the committed path of every simulation, keyed by entity ID.
func (s *Simulator) Paths() map[string]*core.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*core.Path, len(s.simulations))
	for _, sim := range s.simulations {
		out[sim.id] = sim.path
	}
	return out
}

// Pending returns the IDs of simulations that have not arrived, sorted.
func (s *Simulator) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, sim := range s.simulations {
		if !sim.arrived {
			out = append(out, sim.id)
		}
	}
	sort.Strings(out)
	return out
}

// Metrics returns current simulation metrics
func (s *Simulator) Metrics() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// ExportMetrics writes metrics to a JSON file
func (s *Simulator) ExportMetrics(path string) error {
	s.mu.Lock()
	metrics := s.metrics
	s.mu.Unlock()

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
