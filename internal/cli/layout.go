package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/layout"
	"github.com/pdatta1/PathRouting/internal/registry"
)

var (
	layoutScenario string
	layoutLanes    int
	layoutAisles   int
	layoutBays     int
	layoutLevels   int
	layoutRender   bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Summarize a warehouse map",
	Long: `Build a warehouse map and print its dimensions, node counts and VTUs.

The map comes from --scenario when given, otherwise from the size flags.
--render draws each level: '|' aisle, '.' lane, 'V' VTU, '#' static occupant,
'R' robot.`,
	Example: `  whroute layout --lanes 9 --aisles 2 --bays 3 --render
  whroute layout -s warehouse.yaml --json`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

func init() {
	def := layout.DefaultConfig()
	layoutCmd.Flags().StringVarP(&layoutScenario, "scenario", "s", "", "Scenario file")
	layoutCmd.Flags().IntVar(&layoutLanes, "lanes", def.Lanes, "Lane rows per level")
	layoutCmd.Flags().IntVar(&layoutAisles, "aisles", def.Aisles, "Aisle columns")
	layoutCmd.Flags().IntVar(&layoutBays, "bays", def.Bays, "Lane cells beside each aisle")
	layoutCmd.Flags().IntVar(&layoutLevels, "levels", def.Levels, "Levels")
	layoutCmd.Flags().BoolVar(&layoutRender, "render", false, "Draw every level")
}

type layoutView struct {
	MapID  string         `json:"map_id"`
	Lanes  int            `json:"lanes"`
	Aisles int            `json:"aisles"`
	Levels int            `json:"levels"`
	Nodes  int            `json:"nodes"`
	Edges  int            `json:"edges"`
	ByType map[string]int `json:"by_type"`
	VTUs   []string       `json:"vtus"`
	Static int            `json:"static_occupants"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	var (
		m   *core.Map
		reg *registry.Registry
	)
	if layoutScenario != "" {
		ws, err := loadWorkspace(layoutScenario)
		if err != nil {
			return err
		}
		m, reg = ws.m, ws.reg
	} else {
		cfg := layout.Config{Lanes: layoutLanes, Aisles: layoutAisles, Bays: layoutBays, Levels: layoutLevels}
		built, err := layout.Build(cfg, core.DefaultMovements())
		if err != nil {
			return err
		}
		m, reg = built, registry.New(built)
	}
	if err := m.CheckSymmetry(); err != nil {
		return err
	}

	v := layoutView{
		MapID:  m.ID.String(),
		Lanes:  m.Lanes,
		Aisles: m.Aisles,
		Levels: m.Levels,
		Nodes:  m.Len(),
		ByType: make(map[string]int),
	}
	for _, n := range m.Nodes() {
		v.Edges += len(n.Neighbors())
		v.ByType[n.Type.String()]++
	}
	v.Edges /= 2
	for _, n := range m.NodesByType(core.VTU) {
		v.VTUs = append(v.VTUs, n.Coords.String())
	}
	for z := 0; z < m.Levels; z++ {
		v.Static += len(reg.OccupiedNodes(z, true))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return outputJSON(out, v)
	}

	PrintSection(out, "Map")
	PrintLabelValue(out, "ID", v.MapID)
	PrintLabelValue(out, "Levels", strconv.Itoa(v.Levels))
	PrintLabelValue(out, "Lanes", strconv.Itoa(v.Lanes))
	PrintLabelValue(out, "Aisles", strconv.Itoa(v.Aisles))
	PrintLabelValue(out, "Nodes", strconv.Itoa(v.Nodes))
	PrintLabelValue(out, "Edges", strconv.Itoa(v.Edges))
	for _, t := range core.AllNodeTypes() {
		PrintLabelValue(out, t.String(), strconv.Itoa(v.ByType[t.String()]))
	}
	PrintLabelValue(out, "Static occupants", strconv.Itoa(v.Static))
	PrintSection(out, "VTUs")
	PrintList(out, v.VTUs, 1)

	if layoutRender {
		for z := 0; z < m.Levels; z++ {
			PrintSection(out, fmt.Sprintf("Level %d", z))
			fmt.Fprint(out, layout.Render(m, z, reg))
		}
	}
	return nil
}
