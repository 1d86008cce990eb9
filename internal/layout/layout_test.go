package layout

import (
	"testing"

	"github.com/pdatta1/PathRouting/internal/core"
)

// reachable counts nodes reachable from the first node of m.
func reachable(m *core.Map) int {
	nodes := m.Nodes()
	if len(nodes) == 0 {
		return 0
	}
	seen := map[core.NodeID]bool{nodes[0].ID: true}
	queue := []core.NodeID{nodes[0].ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, nb := range m.Neighbors(id) {
			if !seen[nb.ID] {
				seen[nb.ID] = true
				queue = append(queue, nb.ID)
			}
		}
	}
	return len(seen)
}

func TestConfigGeometry(t *testing.T) {
	cfg := Config{Lanes: 4, Aisles: 2, Bays: 2, Levels: 1}
	if got := cfg.Width(); got != 8 {
		t.Fatalf("Width = %d, want 8", got)
	}

	aisles := map[int]bool{2: true, 5: true}
	for x := 0; x < cfg.Width(); x++ {
		if got := cfg.IsAisleColumn(x); got != aisles[x] {
			t.Errorf("IsAisleColumn(%d) = %v, want %v", x, got, aisles[x])
		}
	}
	if got := cfg.VTUColumns(); len(got) != 1 || got[0] != (XY{X: 2, Y: 3}) {
		t.Errorf("default VTU columns = %v, want [(2,3)]", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"no levels", Config{Lanes: 3, Aisles: 1, Bays: 1}, true},
		{"no aisles", Config{Lanes: 3, Bays: 1, Levels: 1}, true},
		{"vtu out of bounds", Config{Lanes: 3, Aisles: 1, Bays: 1, Levels: 1, VTUs: []XY{{X: 10, Y: 0}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildWarehouse(t *testing.T) {
	cfg := Config{Lanes: 5, Aisles: 2, Bays: 2, Levels: 3, VTUs: []XY{{X: 2, Y: 4}, {X: 5, Y: 0}}}
	moves := core.DefaultMovements()
	m, err := Build(cfg, moves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantNodes := cfg.Width() * cfg.Lanes * cfg.Levels
	if m.Len() != wantNodes {
		t.Fatalf("Len = %d, want %d", m.Len(), wantNodes)
	}
	if got := len(m.NodesByType(core.VTU)); got != 2*cfg.Levels {
		t.Errorf("VTU nodes = %d, want %d", got, 2*cfg.Levels)
	}
	if m.Lanes != 5 || m.Aisles != 2 || m.Levels != 3 {
		t.Errorf("dimensions = %d/%d/%d", m.Lanes, m.Aisles, m.Levels)
	}

	if err := m.CheckSymmetry(); err != nil {
		t.Fatalf("CheckSymmetry: %v", err)
	}

	for _, n := range m.Nodes() {
		for _, nb := range m.Neighbors(n.ID) {
			if !moves.Connects(n, nb) {
				t.Errorf("edge %s -> %s not allowed by movement registry", n, nb)
			}
			if core.Manhattan(n.Coords, nb.Coords) != 1 {
				t.Errorf("edge %s -> %s is not a unit step", n, nb)
			}
		}
	}

	if got := reachable(m); got != wantNodes {
		t.Errorf("reachable = %d, want %d (map should be connected through aisles and VTUs)", got, wantNodes)
	}
}

func TestBuildLaneRowsDoNotConnectVertically(t *testing.T) {
	m, err := Build(Config{Lanes: 3, Aisles: 1, Bays: 2, Levels: 1, VTUs: []XY{}}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	lane, err := m.NodeAt(core.Coords{X: 0, Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, nb := range m.Neighbors(lane.ID) {
		if nb.Coords.Y != lane.Coords.Y {
			t.Errorf("lane %s connected across rows to %s", lane, nb)
		}
	}

	aisle, err := m.NodeAt(core.Coords{X: 2, Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	if aisle.Type != core.Aisle {
		t.Fatalf("(2,1,0) type = %v, want aisle", aisle.Type)
	}
	if got := len(aisle.Neighbors()); got != 4 {
		t.Errorf("aisle crossing has %d neighbors, want 4", got)
	}
}

func TestOpenGrid(t *testing.T) {
	m, err := Open(4, 5, 2, XY{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if m.Len() != 40 {
		t.Fatalf("Len = %d, want 40", m.Len())
	}
	if err := m.CheckSymmetry(); err != nil {
		t.Fatalf("CheckSymmetry: %v", err)
	}

	corner, _ := m.NodeAt(core.Coords{X: 3, Y: 4})
	if got := len(corner.Neighbors()); got != 2 {
		t.Errorf("corner neighbors = %d, want 2", got)
	}
	vtu, _ := m.NodeAt(core.Coords{X: 0, Y: 0, Z: 1})
	if vtu.Type != core.VTU {
		t.Fatalf("(0,0,1) type = %v, want vtu", vtu.Type)
	}
	below, _ := m.NodeAt(core.Coords{})
	if !vtu.HasNeighbor(below.ID) {
		t.Error("VTU column not connected between levels")
	}
	if got := reachable(m); got != 40 {
		t.Errorf("reachable = %d, want 40", got)
	}

	if _, err := Open(0, 1, 1); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestRender(t *testing.T) {
	m, err := Build(Config{Lanes: 3, Aisles: 1, Bays: 1, Levels: 1, VTUs: []XY{{X: 1, Y: 2}}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	blocked, _ := m.NodeAt(core.Coords{X: 0, Y: 0})

	got := Render(m, 0, core.NewStaticSet(blocked))
	want := "#|.\n.|.\n.V.\n"
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}

	a, _ := m.NodeAt(core.Coords{X: 2, Y: 0})
	b, _ := m.NodeAt(core.Coords{X: 2, Y: 1})
	got = Render(m, 0, nil, &core.Path{Nodes: []*core.Node{a, b}}, nil)
	want = ".|*\n.|*\n.V.\n"
	if got != want {
		t.Errorf("Render with path =\n%s\nwant\n%s", got, want)
	}

	if Render(m, 5, nil) != "" {
		t.Error("expected empty render for a missing level")
	}
}
