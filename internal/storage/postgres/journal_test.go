package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/layout"
)

func planCorridor(t *testing.T) (*core.Map, *algo.PlanResult) {
	t.Helper()
	m, err := layout.Open(5, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	at := func(x, y int) core.NodeID {
		n, err := m.NodeAt(core.Coords{X: x, Y: y})
		if err != nil {
			t.Fatal(err)
		}
		return n.ID
	}
	res := algo.NewPrioritized(algo.NewRouter(m, nil), nil).Solve([]algo.Agent{
		{ID: "low", Start: at(0, 1), Goal: at(4, 1)},
		{ID: "high", Start: at(0, 0), Goal: at(4, 0), Priority: 9},
		{ID: "parked", Start: at(1, 1), Goal: at(1, 1), Priority: -1},
	})
	return m, res
}

func TestTrajectoryRows(t *testing.T) {
	_, res := planCorridor(t)

	rows := trajectoryRows(res)
	want := 0
	for _, p := range res.Paths {
		want += p.Len()
	}
	if len(rows) != want {
		t.Fatalf("rows = %d, want %d", len(rows), want)
	}
	if rows[0].agent != "high" || rows[0].tick != 0 {
		t.Errorf("first row = %+v, want high@0", rows[0])
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].agent == rows[i-1].agent && rows[i].tick != rows[i-1].tick+1 {
			t.Errorf("row %d tick %d does not follow %d", i, rows[i].tick, rows[i-1].tick)
		}
	}
}

// TestJournalRoundTrip needs a live database: set JOURNAL_TEST_DATABASE_URL to run it.
func TestJournalRoundTrip(t *testing.T) {
	url := os.Getenv("JOURNAL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("JOURNAL_TEST_DATABASE_URL not set")
	}
	db, err := Open(url)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	j := NewJournal(db)
	defer j.Close()

	ctx := context.Background()
	if err := j.CreateSchema(ctx); err != nil {
		t.Fatal(err)
	}

	m, res := planCorridor(t)
	planID, err := j.SavePlan(ctx, m.ID, res)
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	table, err := j.LoadReservations(ctx, m.ID)
	if err != nil {
		t.Fatalf("LoadReservations: %v", err)
	}
	for agent, p := range res.Paths {
		for _, c := range p.Cells() {
			if !table.IsReserved(c.Tick, c.X, c.Y, c.Z) {
				t.Errorf("%s cell %s@%d not restored", agent, c.Coords, c.Tick)
			}
		}
	}

	cells, err := j.Trajectories(ctx, planID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells["high"]) != res.Paths["high"].Len() {
		t.Errorf("high cells = %d, want %d", len(cells["high"]), res.Paths["high"].Len())
	}
}
