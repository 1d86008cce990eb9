package algo

import (
	"errors"
	"testing"

	"github.com/pdatta1/PathRouting/internal/core"
)

// createCorridor builds a one-wide corridor along x with optional side pockets at y=1.
func createCorridor(t *testing.T, length int, pockets ...int) *core.Map {
	t.Helper()
	m := core.NewMap(1, 0, 1)
	var prev *core.Node
	for x := 0; x < length; x++ {
		n, err := m.AddNode(core.Coords{X: x}, core.Lane)
		if err != nil {
			t.Fatal(err)
		}
		if prev != nil {
			if err := m.Connect(prev.ID, n.ID); err != nil {
				t.Fatal(err)
			}
		}
		prev = n
	}
	for _, x := range pockets {
		p, err := m.AddNode(core.Coords{X: x, Y: 1}, core.Lane)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Connect(nodeAt(t, m, x, 0, 0).ID, p.ID); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

// sharedCells returns the space-time cells two paths both occupy.
func sharedCells(a, b *core.Path) []core.Cell {
	seen := make(map[core.Cell]bool)
	for _, c := range a.Cells() {
		seen[c] = true
	}
	var out []core.Cell
	for _, c := range b.Cells() {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

func TestCooperativeMatchesAStarOnEmptyTable(t *testing.T) {
	m := createGrid(t, 5, 5, 1)
	start, goal := nodeAt(t, m, 0, 0, 0), nodeAt(t, m, 3, 4, 0)
	table := NewReservationTable()

	path, err := NewCooperative(m, nil, table).FindPath(start.ID, goal.ID, table)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	checkPathShape(t, path, start, goal)
	if path.Len() != 8 {
		t.Errorf("path len = %d, want 8", path.Len())
	}
	if table.Len() != path.Len() {
		t.Errorf("reserved %d cells, want %d", table.Len(), path.Len())
	}
	for _, c := range path.Cells() {
		if !table.IsReserved(c.Tick, c.X, c.Y, c.Z) {
			t.Errorf("cell %s@%d not reserved", c.Coords, c.Tick)
		}
	}
}

func TestCooperativeNonCollision(t *testing.T) {
	m := createGrid(t, 5, 5, 1)
	table := NewReservationTable()
	r := NewRouter(m, nil)

	a, err := r.FindPathCooperative(nodeAt(t, m, 0, 2, 0).ID, nodeAt(t, m, 4, 2, 0).ID, table)
	if err != nil {
		t.Fatalf("agent a: %v", err)
	}
	b, err := r.FindPathCooperative(nodeAt(t, m, 2, 0, 0).ID, nodeAt(t, m, 2, 4, 0).ID, table)
	if err != nil {
		t.Fatalf("agent b: %v", err)
	}

	if shared := sharedCells(a, b); len(shared) != 0 {
		t.Errorf("agents share cells %v", shared)
	}
	if c := FindFirstConflict(map[string]*core.Path{"a": a, "b": b}); c != nil {
		t.Errorf("conflict %+v", c)
	}
	if b.Len() <= 5 {
		t.Errorf("agent b len = %d, expected a wait or detour around agent a", b.Len())
	}
}

func TestCooperativeWaitsInPocket(t *testing.T) {
	m := createCorridor(t, 5, 4)
	table := NewReservationTable()
	c := NewCooperative(m, nil, table)

	a, err := c.FindPath(nodeAt(t, m, 0, 0, 0).ID, nodeAt(t, m, 4, 0, 0).ID, table)
	if err != nil {
		t.Fatalf("agent a: %v", err)
	}
	if a.Len() != 5 {
		t.Fatalf("agent a len = %d, want 5", a.Len())
	}

	start, goal := nodeAt(t, m, 4, 0, 0), nodeAt(t, m, 0, 0, 0)
	b, err := c.FindPath(start.ID, goal.ID, table)
	if err != nil {
		t.Fatalf("agent b: %v", err)
	}
	checkPathShape(t, b, start, goal)
	if b.At(4).Coords != (core.Coords{X: 4, Y: 1}) {
		t.Errorf("agent b at %s when a arrives, want pocket (4,1,0)", b.At(4).Coords)
	}
	if b.EndTick() != 9 {
		t.Errorf("agent b arrives at t=%d, want 9", b.EndTick())
	}
	if shared := sharedCells(a, b); len(shared) != 0 {
		t.Errorf("agents share cells %v", shared)
	}
}

func TestCooperativeWithoutWaitingFails(t *testing.T) {
	m := createCorridor(t, 5, 4)
	table := NewReservationTable()
	c := NewCooperative(m, nil, table)
	if _, err := c.FindPath(nodeAt(t, m, 0, 0, 0).ID, nodeAt(t, m, 4, 0, 0).ID, table); err != nil {
		t.Fatal(err)
	}

	// Without waiting b alternates cell parity every tick, so it cannot be in the
	// pocket at t=4 when a arrives.
	before := table.Len()
	c.Options.AllowWait = false
	c.Options.MaxTicks = 20
	_, err := c.FindPath(nodeAt(t, m, 4, 0, 0).ID, nodeAt(t, m, 0, 0, 0).ID, table)
	if !errors.Is(err, core.ErrPathNotFound) {
		t.Errorf("err = %v, want ErrPathNotFound", err)
	}
	if table.Len() != before {
		t.Errorf("failed search changed the table: %d -> %d cells", before, table.Len())
	}
}

func TestCooperativeSwapAvoidance(t *testing.T) {
	m := createCorridor(t, 2)
	left, right := nodeAt(t, m, 0, 0, 0), nodeAt(t, m, 1, 0, 0)

	table := NewReservationTable()
	c := NewCooperative(m, nil, table)
	c.Options.MaxTicks = 8
	if _, err := c.FindPath(left.ID, right.ID, table); err != nil {
		t.Fatal(err)
	}
	_, err := c.FindPath(right.ID, left.ID, table)
	if !errors.Is(err, core.ErrPathNotFound) {
		t.Fatalf("err = %v, want ErrPathNotFound for a head-on swap", err)
	}

	// Allowing swaps lets the second agent through, and the conflict check catches it.
	table = NewReservationTable()
	c = NewCooperative(m, nil, table)
	c.Options.AvoidSwaps = false
	a, err := c.FindPath(left.ID, right.ID, table)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.FindPath(right.ID, left.ID, table)
	if err != nil {
		t.Fatalf("agent b: %v", err)
	}
	conflict := FindFirstConflict(map[string]*core.Path{"a": a, "b": b})
	if conflict == nil || !conflict.IsEdge {
		t.Errorf("conflict = %+v, want swap", conflict)
	}
}

func TestCooperativeFullyBlocked(t *testing.T) {
	m := createGrid(t, 5, 5, 1)
	blocked := core.NewStaticSet(nodeAt(t, m, 3, 4, 0), nodeAt(t, m, 4, 3, 0))
	table := NewReservationTable()

	c := NewCooperative(m, blocked, table)
	c.Options.MaxTicks = 30
	_, err := c.FindPath(nodeAt(t, m, 0, 0, 0).ID, nodeAt(t, m, 4, 4, 0).ID, table)
	if !errors.Is(err, core.ErrPathNotFound) {
		t.Errorf("err = %v, want ErrPathNotFound", err)
	}
	if table.Len() != 0 {
		t.Errorf("failed search reserved %d cells", table.Len())
	}
}

func TestCooperativeBounds(t *testing.T) {
	m := createGrid(t, 5, 5, 1)
	start, goal := nodeAt(t, m, 0, 0, 0), nodeAt(t, m, 4, 4, 0)

	tests := []struct {
		name string
		opts CooperativeOptions
	}{
		{"horizon shorter than distance", CooperativeOptions{MaxTicks: 5, AllowWait: true}},
		{"expansion cap", CooperativeOptions{MaxTicks: 100, MaxExpansions: 3, AllowWait: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewReservationTable()
			c := &Cooperative{Map: m, Options: tt.opts}
			_, err := c.FindPath(start.ID, goal.ID, table)
			if !errors.Is(err, core.ErrPathNotFound) {
				t.Errorf("err = %v, want ErrPathNotFound", err)
			}
		})
	}
}

func TestCooperativeStartTick(t *testing.T) {
	m := createGrid(t, 3, 1, 1)
	table := NewReservationTable()
	c := NewCooperative(m, nil, table)
	c.Options.StartTick = 5

	path, err := c.FindPath(nodeAt(t, m, 0, 0, 0).ID, nodeAt(t, m, 2, 0, 0).ID, table)
	if err != nil {
		t.Fatal(err)
	}
	if path.StartTick != 5 || path.EndTick() != 7 {
		t.Errorf("ticks = %d..%d, want 5..7", path.StartTick, path.EndTick())
	}
	if !table.IsReserved(7, 2, 0, 0) || table.IsReserved(2, 2, 0, 0) {
		t.Error("reservations not offset by the start tick")
	}
}

func TestCooperativeCrossesLevels(t *testing.T) {
	m := createGrid(t, 3, 3, 2, core.Coords{X: 0, Y: 0})
	start, goal := nodeAt(t, m, 2, 2, 0), nodeAt(t, m, 2, 2, 1)
	blocker := nodeAt(t, m, 1, 1, 1)
	table := NewReservationTable()

	path, err := NewCooperative(m, core.NewStaticSet(blocker), table).FindPath(start.ID, goal.ID, table)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	checkPathShape(t, path, start, goal)
	// 4 steps to the VTU, 1 up, 4 back.
	if path.Edges() != 9 {
		t.Errorf("edges = %d, want 9", path.Edges())
	}
	if !path.IsObstacle(blocker) {
		t.Error("obstacle on the upper level not recorded")
	}
}

func TestCooperativeReservedStart(t *testing.T) {
	m := createCorridor(t, 5)
	table := NewReservationTable()
	c := NewCooperative(m, nil, table)
	if _, err := c.FindPath(nodeAt(t, m, 0, 0, 0).ID, nodeAt(t, m, 4, 0, 0).ID, table); err != nil {
		t.Fatal(err)
	}
	before := table.Len()

	tests := []struct {
		name      string
		start     *core.Node
		startTick int
	}{
		{"same start", nodeAt(t, m, 0, 0, 0), 0},
		{"joins where the first agent is", nodeAt(t, m, 2, 0, 0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Options.StartTick = tt.startTick
			_, err := c.FindPath(tt.start.ID, nodeAt(t, m, 4, 0, 0).ID, table)
			if !errors.Is(err, core.ErrPathNotFound) {
				t.Errorf("err = %v, want ErrPathNotFound", err)
			}
			if table.Len() != before {
				t.Errorf("failed search changed the table: %d -> %d cells", before, table.Len())
			}
		})
	}

	// One tick later the first agent has moved on.
	c.Options.StartTick = 3
	b, err := c.FindPath(nodeAt(t, m, 2, 0, 0).ID, nodeAt(t, m, 2, 0, 0).ID, table)
	if err != nil {
		t.Fatalf("free start: %v", err)
	}
	if b.StartTick != 3 {
		t.Errorf("start tick = %d, want 3", b.StartTick)
	}
}
