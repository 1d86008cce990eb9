package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/platform/obs"
)

var (
	transferScenario string
	transferFrom     string
	transferAll      bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Find the nearest VTU from a cell",
	Long: `Find the VTU with the fewest hops from a cell. Hops follow map edges, so
a VTU across a wall may be farther than it looks.`,
	Example: `  whroute transfer -s warehouse.yaml --from 6,0,1
  whroute transfer -s warehouse.yaml --from 6,0,1 --all`,
	Args: cobra.NoArgs,
	RunE: runTransfer,
}

func init() {
	transferCmd.Flags().StringVarP(&transferScenario, "scenario", "s", "", "Scenario file (required)")
	transferCmd.Flags().StringVar(&transferFrom, "from", "", "Start cell as x,y[,z] (required)")
	transferCmd.Flags().BoolVar(&transferAll, "all", false, "List every reachable VTU by distance")
}

type transferView struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Z    int `json:"z"`
	Hops int `json:"hops"`
}

func runTransfer(cmd *cobra.Command, args []string) (err error) {
	ctx := runContext(cmd)
	defer obs.Time(ctx, "transfer")(&err)

	if transferFrom == "" {
		return fmt.Errorf("--from is required")
	}
	ws, err := loadWorkspace(transferScenario)
	if err != nil {
		return err
	}
	start, err := ws.resolve(transferFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}

	vtu, err := ws.router.FindNearestTransfer(start.ID)
	if err != nil {
		return err
	}
	dist, err := algo.TransferDistances(ws.m, start.ID)
	if err != nil {
		return err
	}

	var all []transferView
	if transferAll {
		for id, hops := range dist {
			n, err := ws.m.Node(id)
			if err != nil {
				return err
			}
			all = append(all, transferView{X: n.Coords.X, Y: n.Coords.Y, Z: n.Coords.Z, Hops: hops})
		}
		sort.Slice(all, func(i, j int) bool {
			a, b := all[i], all[j]
			switch {
			case a.Hops != b.Hops:
				return a.Hops < b.Hops
			case a.Z != b.Z:
				return a.Z < b.Z
			case a.Y != b.Y:
				return a.Y < b.Y
			}
			return a.X < b.X
		})
	}

	nearest := transferView{X: vtu.Coords.X, Y: vtu.Coords.Y, Z: vtu.Coords.Z, Hops: dist[vtu.ID]}
	out := cmd.OutOrStdout()
	if jsonOutput {
		doc := map[string]interface{}{"from": start.Coords.String(), "nearest": nearest}
		if transferAll {
			doc["all"] = all
		}
		return outputJSON(out, doc)
	}

	PrintSection(out, "Nearest VTU")
	PrintLabelValue(out, "From", start.String())
	PrintLabelValue(out, "VTU", vtu.String())
	PrintLabelValue(out, "Hops", strconv.Itoa(nearest.Hops))
	if transferAll {
		rows := make([][]string, 0, len(all))
		for _, v := range all {
			rows = append(rows, []string{core.Coords{X: v.X, Y: v.Y, Z: v.Z}.String(), strconv.Itoa(v.Hops)})
		}
		fmt.Fprintln(out)
		PrintTable(out, []string{"VTU", "HOPS"}, rows)
	}
	return nil
}
