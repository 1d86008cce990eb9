package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdatta1/PathRouting/internal/config"
	"github.com/pdatta1/PathRouting/internal/dispatch"
)

var (
	watchScenario string
	watchMapID    string
	watchCount    int
	watchTimeout  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print path messages dispatched for a map",
	Long: `Subscribe to the MQTT broker at MQTT_URL and print every path published
for a map. The map is given by --map or taken from a scenario file. Runs until
interrupted, --count messages arrived or --timeout passed.`,
	Example: `  whroute watch -s warehouse.yaml
  whroute watch --map 6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6 --count 4 --json`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchScenario, "scenario", "s", "", "Scenario file naming the map")
	watchCmd.Flags().StringVar(&watchMapID, "map", "", "Map ID")
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "Exit after this many messages (0 waits forever)")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Exit after this long (0 waits forever)")
}

func watchTarget() (uuid.UUID, error) {
	switch {
	case watchMapID != "":
		id, err := uuid.Parse(watchMapID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("--map: %w", err)
		}
		return id, nil
	case watchScenario != "":
		s, err := config.LoadScenario(watchScenario)
		if err != nil {
			return uuid.Nil, err
		}
		return s.MapUUID(), nil
	}
	return uuid.Nil, fmt.Errorf("one of --map or --scenario is required")
}

// brokerStatus describes the connection state of c for status lines.
func brokerStatus(c interface{ IsConnected() bool }) string {
	if c.IsConnected() {
		return "connected"
	}
	return "reconnecting"
}

func runWatch(cmd *cobra.Command, args []string) error {
	mapID, err := watchTarget()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(runContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if watchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchTimeout)
		defer cancel()
	}

	env := config.FromEnv()
	client := dispatch.NewClient(env.MQTTURL, env.ClientID+"-watch")
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect %s: %w", client.Broker(), err)
	}
	defer client.Disconnect()

	out := cmd.OutOrStdout()
	msgs := make(chan dispatch.PathMessage, 16)
	err = dispatch.Watch(client, mapID, func(m dispatch.PathMessage) {
		select {
		case msgs <- m:
		case <-ctx.Done():
		}
	}, func(topic string, err error) {
		PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("%s: %v", topic, err))
	})
	if err != nil {
		return err
	}
	if !jsonOutput {
		PrintSuccess(out, fmt.Sprintf("Watching map %s on %s (%s)", mapID, client.Broker(), brokerStatus(client)))
	}

	for seen := 0; watchCount == 0 || seen < watchCount; seen++ {
		select {
		case <-ctx.Done():
			if !jsonOutput {
				PrintLabelValue(out, "Broker", brokerStatus(client))
				PrintLabelValue(out, "Messages", fmt.Sprintf("%d", seen))
			}
			return nil
		case m := <-msgs:
			if err := printPathMessage(cmd, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func printPathMessage(cmd *cobra.Command, m dispatch.PathMessage) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return outputJSON(out, m)
	}
	waits := 0
	for i := 1; i < len(m.Steps); i++ {
		if m.Steps[i].Node == m.Steps[i-1].Node {
			waits++
		}
	}
	PrintSection(out, m.Agent)
	PrintLabelValue(out, "Ticks", fmt.Sprintf("%d..%d", m.StartTick, m.EndTick))
	PrintLabelValue(out, "Steps", fmt.Sprintf("%d (%d waits)", len(m.Steps)-1, waits))
	if len(m.Steps) > 0 {
		first, last := m.Steps[0], m.Steps[len(m.Steps)-1]
		PrintLabelValue(out, "From", fmt.Sprintf("%s(%d,%d,%d)", first.Type, first.X, first.Y, first.Z))
		PrintLabelValue(out, "To", fmt.Sprintf("%s(%d,%d,%d)", last.Type, last.X, last.Y, last.Z))
	}
	return nil
}
