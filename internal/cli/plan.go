package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/layout"
	"github.com/pdatta1/PathRouting/internal/platform/obs"
)

var (
	planScenario string
	planFrom     string
	planTo       string
	planWorkers  int
	planRender   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan routes with A*, ignoring other robots",
	Long: `Plan shortest routes on a scenario's map without reservations.

With --from and --to, plans a single route. Routes between levels go through the
nearest VTU. Without them, every agent in the scenario is planned in parallel and
the resulting paths are checked against each other.`,
	Example: `  whroute plan -s warehouse.yaml --from 0,0,0 --to 6,8,0
  whroute plan -s warehouse.yaml --workers 4 --json`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planScenario, "scenario", "s", "", "Scenario file (required)")
	planCmd.Flags().StringVar(&planFrom, "from", "", "Start cell as x,y[,z]")
	planCmd.Flags().StringVar(&planTo, "to", "", "Goal cell as x,y[,z]")
	planCmd.Flags().IntVar(&planWorkers, "workers", 0, "Parallel searches (0 uses the scenario setting)")
	planCmd.Flags().BoolVar(&planRender, "render", false, "Draw the levels a single route visits")
}

func runPlan(cmd *cobra.Command, args []string) (err error) {
	ctx := runContext(cmd)
	defer obs.Time(ctx, "plan")(&err)

	ws, err := loadWorkspace(planScenario)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if planFrom != "" || planTo != "" {
		if planFrom == "" || planTo == "" {
			return fmt.Errorf("--from and --to must be given together")
		}
		start, err := ws.resolve(planFrom)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		goal, err := ws.resolve(planTo)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		path, err := ws.router.FindRoute(start.ID, goal.ID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(out, newPathView("", path))
		}
		printPath(out, "Route", path)
		if planRender {
			for _, z := range pathLevels(path) {
				PrintSection(out, fmt.Sprintf("Level %d", z))
				fmt.Fprint(out, layout.Render(ws.m, z, ws.reg, path))
			}
		}
		return nil
	}

	agents, err := ws.scenario.ResolveAgents(ws.m)
	if err != nil {
		return err
	}
	workers := planWorkers
	if workers == 0 {
		workers = ws.scenario.Planner.Workers
	}

	results, err := algo.PlanIndependent(ctx, algo.PathFinderFunc(ws.router.FindRoute), agents, workers)
	if err != nil {
		return err
	}

	paths := make(map[string]*core.Path)
	var failed int
	views := make([]pathView, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			failed++
			views = append(views, pathView{Agent: r.Agent, Error: r.Err.Error()})
			continue
		}
		paths[r.Agent] = r.Path
		views = append(views, newPathView(r.Agent, r.Path))
	}
	conflicts := algo.FindAllConflicts(paths)

	if jsonOutput {
		if err := outputJSON(out, map[string]interface{}{
			"map_id":    ws.m.ID.String(),
			"paths":     views,
			"conflicts": newConflictViews(conflicts),
		}); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Err != nil {
				PrintError(out, fmt.Sprintf("%s: %v", r.Agent, r.Err))
				continue
			}
			printPath(out, r.Agent, r.Path)
		}
		fmt.Fprintln(out)
		printConflicts(out, conflicts)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d agents have no route", failed, len(results))
	}
	return nil
}
