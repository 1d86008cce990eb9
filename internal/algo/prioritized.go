package algo

import (
	"fmt"
	"sort"
	"time"

	"github.com/pdatta1/PathRouting/internal/core"
)

// Agent is a routing request for one robot.
type Agent struct {
	ID       string
	Start    core.NodeID
	Goal     core.NodeID
	Priority int // Higher plans first
}

// PlanResult is the outcome of planning a batch of agents.
type PlanResult struct {
	Order    []string              // Planning order
	Paths    map[string]*core.Path // Committed paths of agents that succeeded
	Failures map[string]error      // Agents with no path
	Duration time.Duration
}

// Feasible reports whether every agent got a path.
func (r *PlanResult) Feasible() bool {
	return len(r.Failures) == 0
}

// Conflicts verifies the committed paths against each other.
func (r *PlanResult) Conflicts() []*Conflict {
	return FindAllConflicts(r.Paths)
}

// Prioritized plans agents one at a time in priority order. Each agent is planned
// cooperatively against a shared reservation table, so it avoids every agent planned
// before it. First-planned agents win contested cells; this is not a joint optimum.
type Prioritized struct {
	Router *Router
	Table  *ReservationTable
}

// NewPrioritized creates a prioritized planner. A nil table starts empty.
func NewPrioritized(r *Router, table *ReservationTable) *Prioritized {
	if table == nil {
		table = NewReservationTable()
	}
	return &Prioritized{Router: r, Table: table}
}

func (p *Prioritized) Name() string { return "prioritized" }

// Solve plans every agent. A failed agent is recorded and planning continues with the
// next one.
func (p *Prioritized) Solve(agents []Agent) *PlanResult {
	began := time.Now()

	order := make([]Agent, len(agents))
	copy(order, agents)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Priority != order[j].Priority {
			return order[i].Priority > order[j].Priority
		}
		return order[i].ID < order[j].ID
	})

	result := &PlanResult{
		Paths:    make(map[string]*core.Path),
		Failures: make(map[string]error),
	}
	seen := make(map[string]bool, len(order))
	for _, a := range order {
		result.Order = append(result.Order, a.ID)
		if seen[a.ID] {
			result.Failures[a.ID] = fmt.Errorf("agent %q planned twice", a.ID)
			continue
		}
		seen[a.ID] = true

		path, err := p.Router.FindPathCooperative(a.Start, a.Goal, p.Table)
		if err != nil {
			result.Failures[a.ID] = fmt.Errorf("agent %q: %w", a.ID, err)
			continue
		}
		result.Paths[a.ID] = path
	}

	result.Duration = time.Since(began)
	return result
}
