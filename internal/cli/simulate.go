package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/platform/obs"
	"github.com/pdatta1/PathRouting/internal/sim"
)

var (
	simScenario   string
	simPlanner    string
	simMaxTicks   int
	simMetricsOut string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive every agent along its route tick by tick",
	Long: `Place each scenario agent on the map as a robot, plan its route and step
all robots forward one tick at a time until they arrive.

The cooperative planner reserves every route, so robots never meet. The astar
planner ignores other robots and the simulation counts the collisions.`,
	Example: `  whroute simulate -s warehouse.yaml
  whroute simulate -s warehouse.yaml --planner astar --metrics-out metrics.json`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	def := sim.DefaultConfig()
	simulateCmd.Flags().StringVarP(&simScenario, "scenario", "s", "", "Scenario file (required)")
	simulateCmd.Flags().StringVar(&simPlanner, "planner", "", "cooperative or astar (default from the scenario, then cooperative)")
	simulateCmd.Flags().IntVar(&simMaxTicks, "max-ticks", def.MaxTicks, "Stop after this many ticks")
	simulateCmd.Flags().StringVar(&simMetricsOut, "metrics-out", "", "Write metrics JSON to this file")
}

func runSimulate(cmd *cobra.Command, args []string) (err error) {
	ctx := runContext(cmd)
	defer obs.Time(ctx, "simulate")(&err)

	ws, err := loadWorkspace(simScenario)
	if err != nil {
		return err
	}
	agents, err := ws.scenario.ResolveAgents(ws.m)
	if err != nil {
		return err
	}

	cfg := sim.DefaultConfig()
	cfg.Router = ws.router
	cfg.Registry = ws.reg
	cfg.MaxTicks = simMaxTicks
	cfg.Verbose = verbose
	switch {
	case simPlanner != "":
		cfg.Planner = simPlanner
	case ws.scenario.Planner.Name == "astar":
		cfg.Planner = "astar"
	}
	s := sim.NewSimulator(cfg)

	sort.SliceStable(agents, func(i, j int) bool {
		if agents[i].Priority != agents[j].Priority {
			return agents[i].Priority > agents[j].Priority
		}
		return agents[i].ID < agents[j].ID
	})

	out := cmd.OutOrStdout()
	var failures []error
	for _, a := range agents {
		if _, ok := ws.reg.Get(a.ID, core.EntityRobot); !ok {
			if err := ws.reg.Insert(a.ID, core.EntityRobot, a.Start, false); err != nil {
				return err
			}
		}
		goal, err := ws.m.Node(a.Goal)
		if err != nil {
			return err
		}
		if _, err := s.AddSimulation(a.ID, core.EntityRobot, goal.Coords); err != nil {
			failures = append(failures, err)
			if !jsonOutput {
				PrintError(out, err.Error())
			}
		}
	}

	metrics, runErr := s.Run(ctx)
	if simMetricsOut != "" {
		if err := s.ExportMetrics(simMetricsOut); err != nil {
			return err
		}
	}

	if jsonOutput {
		if err := outputJSON(out, map[string]interface{}{
			"planner":   cfg.Planner,
			"metrics":   metrics,
			"positions": positionViews(s.Positions()),
			"pending":   s.Pending(),
		}); err != nil {
			return err
		}
	} else {
		PrintSection(out, "Simulation")
		PrintLabelValue(out, "Planner", cfg.Planner)
		PrintLabelValue(out, "Ticks", strconv.Itoa(metrics.Ticks))
		PrintLabelValue(out, "Planned", fmt.Sprintf("%d/%d", metrics.PlanningSuccesses, metrics.PlanningAttempts))
		PrintLabelValue(out, "Arrivals", strconv.Itoa(metrics.Arrivals))
		PrintLabelValue(out, "Moves", strconv.Itoa(metrics.Moves))
		PrintLabelValue(out, "Waits", strconv.Itoa(metrics.Waits))
		PrintLabelValue(out, "Makespan", strconv.Itoa(metrics.Makespan))
		PrintLabelValue(out, "Avg path length", fmt.Sprintf("%.2f", metrics.AvgPathLength))
		fmt.Fprintln(out)
		if metrics.ConflictsDetected > 0 {
			PrintWarning(out, fmt.Sprintf("%d collisions", metrics.ConflictsDetected))
		} else {
			PrintSuccess(out, "No collisions")
		}
		if simMetricsOut != "" {
			PrintSuccess(out, "Metrics written to "+simMetricsOut)
		}
	}

	if runErr != nil {
		return runErr
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d agents could not be planned: %w", len(failures), len(agents), errors.Join(failures...))
	}
	return nil
}

func positionViews(pos map[string]core.Coords) map[string]string {
	out := make(map[string]string, len(pos))
	for id, c := range pos {
		out[id] = c.String()
	}
	return out
}
