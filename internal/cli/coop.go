package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/config"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/dispatch"
	"github.com/pdatta1/PathRouting/internal/layout"
	"github.com/pdatta1/PathRouting/internal/platform/obs"
	"github.com/pdatta1/PathRouting/internal/storage/postgres"
)

var (
	coopScenario  string
	coopStartTick int
	coopDispatch  bool
	coopJournal   bool
	coopResume    bool
	coopRender    bool
)

var coopCmd = &cobra.Command{
	Use:   "coop",
	Short: "Plan every agent cooperatively in priority order",
	Long: `Plan all agents of a scenario against one space-time reservation table.

Agents are planned by descending priority, then ID. Each committed path is
reserved before the next agent is planned, so later agents wait or detour around
earlier ones.

--journal stores the plan in Postgres (DATABASE_URL) and --resume plans against
every trajectory already journaled for the map. --dispatch publishes each path to
the MQTT broker at MQTT_URL.`,
	Example: `  whroute coop -s warehouse.yaml
  whroute coop -s warehouse.yaml --journal --dispatch`,
	Args: cobra.NoArgs,
	RunE: runCoop,
}

func init() {
	coopCmd.Flags().StringVarP(&coopScenario, "scenario", "s", "", "Scenario file (required)")
	coopCmd.Flags().IntVar(&coopStartTick, "start-tick", 0, "Tick the agents depart at")
	coopCmd.Flags().BoolVar(&coopDispatch, "dispatch", false, "Publish committed paths over MQTT")
	coopCmd.Flags().BoolVar(&coopJournal, "journal", false, "Store the plan in the Postgres journal")
	coopCmd.Flags().BoolVar(&coopResume, "resume", false, "Plan around trajectories already in the journal")
	coopCmd.Flags().BoolVar(&coopRender, "render", false, "Draw every level with the committed paths")
}

func openJournal(ctx context.Context, env config.Env) (*postgres.Journal, error) {
	if env.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := postgres.Open(env.DatabaseURL)
	if err != nil {
		return nil, err
	}
	j := postgres.NewJournal(db)
	if err := j.CreateSchema(ctx); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func runCoop(cmd *cobra.Command, args []string) (err error) {
	ctx := runContext(cmd)
	defer obs.Time(ctx, "coop")(&err)

	ws, err := loadWorkspace(coopScenario)
	if err != nil {
		return err
	}
	agents, err := ws.scenario.ResolveAgents(ws.m)
	if err != nil {
		return err
	}
	env := config.FromEnv()
	out := cmd.OutOrStdout()

	var journal *postgres.Journal
	if coopJournal || coopResume {
		journal, err = openJournal(ctx, env)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	table := algo.NewReservationTable()
	if coopResume {
		table, err = journal.LoadReservations(ctx, ws.m.ID)
		if err != nil {
			return err
		}
	}

	ws.router.Options.StartTick = coopStartTick
	res := algo.NewPrioritized(ws.router, table).Solve(agents)
	conflicts := res.Conflicts()

	var planID uuid.UUID
	if coopJournal {
		planID, err = journal.SavePlan(ctx, ws.m.ID, res)
		if err != nil {
			return err
		}
	}

	if coopDispatch {
		client := dispatch.NewClient(env.MQTTURL, env.ClientID)
		if err := client.Connect(); err != nil {
			return fmt.Errorf("connect %s: %w", client.Broker(), err)
		}
		defer client.Disconnect()
		if err := dispatch.NewPathDispatcher(client, ws.m).DispatchPlan(res); err != nil {
			return err
		}
	}

	if jsonOutput {
		views := make([]pathView, 0, len(res.Order))
		for _, id := range res.Order {
			if p, ok := res.Paths[id]; ok {
				views = append(views, newPathView(id, p))
			} else if ferr, ok := res.Failures[id]; ok {
				views = append(views, pathView{Agent: id, Error: ferr.Error()})
			}
		}
		doc := map[string]interface{}{
			"map_id":      ws.m.ID.String(),
			"order":       res.Order,
			"paths":       views,
			"conflicts":   newConflictViews(conflicts),
			"duration_us": res.Duration.Microseconds(),
		}
		if planID != uuid.Nil {
			doc["plan_id"] = planID.String()
		}
		if err := outputJSON(out, doc); err != nil {
			return err
		}
	} else {
		for _, id := range res.Order {
			if p, ok := res.Paths[id]; ok {
				printPath(out, id, p)
			} else if ferr, ok := res.Failures[id]; ok {
				fmt.Fprintln(out)
				PrintError(out, fmt.Sprintf("%s: %v", id, ferr))
			}
		}
		fmt.Fprintln(out)
		printConflicts(out, conflicts)
		if planID != uuid.Nil {
			PrintSuccess(out, fmt.Sprintf("Journaled plan %s", planID))
		}
		if coopDispatch {
			PrintSuccess(out, fmt.Sprintf("Dispatched %d paths to %s", len(res.Paths), env.MQTTURL))
		}
		if coopRender {
			paths := make([]*core.Path, 0, len(res.Paths))
			for _, id := range res.Order {
				paths = append(paths, res.Paths[id])
			}
			for z := 0; z < ws.m.Levels; z++ {
				PrintSection(out, fmt.Sprintf("Level %d", z))
				fmt.Fprint(out, layout.Render(ws.m, z, ws.reg, paths...))
			}
		}
	}

	if !res.Feasible() {
		return fmt.Errorf("%d of %d agents have no route", len(res.Failures), len(res.Order))
	}
	return nil
}
