package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/config"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/platform/obs"
	"github.com/pdatta1/PathRouting/internal/registry"
)

// workspace is a scenario loaded onto its map.
type workspace struct {
	scenario *config.Scenario
	m        *core.Map
	reg      *registry.Registry
	router   *algo.Router
}

func loadWorkspace(path string) (*workspace, error) {
	if path == "" {
		return nil, fmt.Errorf("--scenario is required")
	}
	s, err := config.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	m, err := s.BuildMap()
	if err != nil {
		return nil, err
	}
	reg := registry.New(m)
	if err := s.Populate(reg); err != nil {
		return nil, err
	}

	router := algo.NewRouter(m, reg)
	router.Options = s.Planner.Options()
	if env := config.FromEnv(); env.MaxTicks > 0 && s.Planner.MaxTicks == 0 {
		router.Options.MaxTicks = env.MaxTicks
	}

	return &workspace{scenario: s, m: m, reg: reg, router: router}, nil
}

// resolve looks up a node given as "x,y" or "x,y,z".
func (ws *workspace) resolve(s string) (*core.Node, error) {
	c, err := parseCoords(s)
	if err != nil {
		return nil, err
	}
	return ws.router.Resolve(c)
}

func parseCoords(s string) (core.Coords, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return core.Coords{}, fmt.Errorf("invalid coordinates %q: want x,y or x,y,z", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return core.Coords{}, fmt.Errorf("invalid coordinates %q: %w", s, err)
		}
		v[i] = n
	}
	return core.Coords{X: v[0], Y: v[1], Z: v[2]}, nil
}

// runContext tags the command context with a fresh run ID for timing logs.
func runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return obs.WithRunID(ctx, uuid.NewString())
}

func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type cellView struct {
	Tick int    `json:"tick"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	Type string `json:"type"`
}

type pathView struct {
	Agent      string     `json:"agent,omitempty"`
	StartTick  int        `json:"start_tick"`
	EndTick    int        `json:"end_tick"`
	Steps      int        `json:"steps"`
	DurationUS int64      `json:"duration_us"`
	Obstacles  int        `json:"obstacles"`
	Cells      []cellView `json:"cells"`
	Error      string     `json:"error,omitempty"`
}

func newPathView(agent string, p *core.Path) pathView {
	v := pathView{
		Agent:      agent,
		StartTick:  p.StartTick,
		EndTick:    p.EndTick(),
		Steps:      p.Edges(),
		DurationUS: p.Duration.Microseconds(),
		Obstacles:  len(p.Obstacles),
	}
	for i, n := range p.Nodes {
		v.Cells = append(v.Cells, cellView{
			Tick: p.StartTick + i,
			X:    n.Coords.X,
			Y:    n.Coords.Y,
			Z:    n.Coords.Z,
			Type: n.Type.String(),
		})
	}
	return v
}

type conflictView struct {
	Agents [2]string `json:"agents"`
	Tick   int       `json:"tick"`
	At     string    `json:"at"`
	Swap   bool      `json:"swap"`
}

func newConflictViews(cs []*algo.Conflict) []conflictView {
	out := make([]conflictView, 0, len(cs))
	for _, c := range cs {
		v := conflictView{Agents: [2]string{c.Agent1, c.Agent2}, Tick: c.Tick, At: c.Coords.String(), Swap: c.IsEdge}
		if c.IsEdge {
			v.At = c.From.String() + "<->" + c.To.String()
		}
		out = append(out, v)
	}
	return out
}

// describePath renders the cells of p as "(x,y,z) -> ...", collapsing waits.
func describePath(p *core.Path) string {
	var parts []string
	for i, n := range p.Nodes {
		if i > 0 && p.Nodes[i-1].ID == n.ID {
			parts[len(parts)-1] += "+"
			continue
		}
		parts = append(parts, n.Coords.String())
	}
	return strings.Join(parts, " -> ")
}

func printPath(w io.Writer, title string, p *core.Path) {
	PrintSection(w, title)
	PrintLabelValue(w, "From", p.Start().String())
	PrintLabelValue(w, "To", p.Goal().String())
	PrintLabelValue(w, "Ticks", fmt.Sprintf("%d..%d", p.StartTick, p.EndTick()))
	PrintLabelValue(w, "Steps", strconv.Itoa(p.Edges()))
	PrintLabelValue(w, "Obstacles", strconv.Itoa(len(p.Obstacles)))
	PrintLabelValue(w, "Computed", p.Duration.String())
	PrintLabelValue(w, "Route", describePath(p))
}

func printConflicts(w io.Writer, cs []*algo.Conflict) {
	if len(cs) == 0 {
		PrintSuccess(w, "No conflicts between committed paths")
		return
	}
	PrintWarning(w, fmt.Sprintf("%d conflicts between committed paths", len(cs)))
	var items []string
	for _, v := range newConflictViews(cs) {
		kind := "vertex"
		if v.Swap {
			kind = "swap"
		}
		items = append(items, fmt.Sprintf("t=%d %s %s and %s at %s", v.Tick, kind, v.Agents[0], v.Agents[1], v.At))
	}
	PrintList(w, items, 1)
}

// pathLevels returns the levels p visits, ascending.
func pathLevels(p *core.Path) []int {
	seen := make(map[int]bool)
	var out []int
	for _, n := range p.Nodes {
		if !seen[n.Coords.Z] {
			seen[n.Coords.Z] = true
			out = append(out, n.Coords.Z)
		}
	}
	sort.Ints(out)
	return out
}
