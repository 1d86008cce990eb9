package algo

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pdatta1/PathRouting/internal/core"
)

// IndependentResult is one agent's outcome from PlanIndependent.
type IndependentResult struct {
	Agent string
	Path  *core.Path
	Err   error
}

// PathFinder plans one route without regard to other agents. *AStar is one.
type PathFinder interface {
	FindPath(start, goal core.NodeID) (*core.Path, error)
}

// PathFinderFunc adapts a function such as Router.FindRoute to PathFinder.
type PathFinderFunc func(start, goal core.NodeID) (*core.Path, error)

func (f PathFinderFunc) FindPath(start, goal core.NodeID) (*core.Path, error) {
	return f(start, goal)
}

// PlanIndependent runs searches for agents in parallel, ignoring each other. planner
// must be safe for concurrent use. Results come back in input order. At most workers searches run at once
// (workers <= 0 means one per agent). The returned error is only set when ctx ends
// before every search has started.
func PlanIndependent(ctx context.Context, planner PathFinder, agents []Agent, workers int) ([]IndependentResult, error) {
	results := make([]IndependentResult, len(agents))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, a := range agents {
		i, a := i, a
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := planner.FindPath(a.Start, a.Goal)
			results[i] = IndependentResult{Agent: a.ID, Path: path, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
