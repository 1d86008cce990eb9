package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdatta1/PathRouting/internal/config"
)

// A one-cell pocket at x=3 is the only place two robots can pass each other.
const corridor = `version: 1
name: corridor
layout: {kind: open, width: 5, height: 2}
occupants:
  - {id: p0, kind: pallet, at: {x: 0, y: 1}, static: true}
  - {id: p1, kind: pallet, at: {x: 1, y: 1}, static: true}
  - {id: p2, kind: pallet, at: {x: 2, y: 1}, static: true}
  - {id: p4, kind: pallet, at: {x: 4, y: 1}, static: true}
agents:
  - {id: east, start: {x: 0, y: 0}, goal: {x: 4, y: 0}, priority: 1}
  - {id: west, start: {x: 4, y: 0}, goal: {x: 0, y: 0}}
`

func TestRunPlanner(t *testing.T) {
	s, err := config.ParseScenario([]byte(corridor))
	if err != nil {
		t.Fatal(err)
	}

	ind := runPlanner(context.Background(), s, "independent", 2)
	if ind.Planned != 2 || ind.Conflicts == 0 || ind.Success {
		t.Errorf("independent = %+v, want both planned with conflicts", ind)
	}

	pri := runPlanner(context.Background(), s, "prioritized", 0)
	if !pri.Success || pri.Makespan <= 4 || pri.Conflicts != 0 {
		t.Errorf("prioritized = %+v", pri)
	}
	if pri.Nodes != 10 || pri.Levels != 1 {
		t.Errorf("map size = %d nodes, %d levels", pri.Nodes, pri.Levels)
	}

	if r := runPlanner(context.Background(), s, "cbs", 0); r.Error == "" {
		t.Error("expected error for an unknown planner")
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	results := []*BenchmarkResult{{Scenario: "a", Planner: "prioritized", Success: true, Makespan: 7}}
	if err := writeCSV(results, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][5] != "a" || rows[1][13] != "7" {
		t.Errorf("rows = %v", rows)
	}
}
