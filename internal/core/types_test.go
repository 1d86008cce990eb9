package core

import "testing"

func TestParseNodeType(t *testing.T) {
	tests := []struct {
		in      string
		want    NodeType
		wantErr bool
	}{
		{"aisle", Aisle, false},
		{"lane", Lane, false},
		{"vtu", VTU, false},
		{"elevator", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseNodeType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNodeType(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseNodeType(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if err == nil && got.String() != tt.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.in)
		}
	}
}

func TestManhattan(t *testing.T) {
	tests := []struct {
		a, b Coords
		want int
	}{
		{Coords{}, Coords{X: 3, Y: 4}, 7},
		{Coords{X: 1, Y: 1, Z: 1}, Coords{X: 1, Y: 1, Z: 1}, 0},
		{Coords{X: -2, Y: 0, Z: 3}, Coords{X: 2, Y: -1, Z: 0}, 8},
	}

	for _, tt := range tests {
		if got := Manhattan(tt.a, tt.b); got != tt.want {
			t.Errorf("Manhattan(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCoordsAddSub(t *testing.T) {
	c := Coords{X: 1, Y: 2, Z: 3}
	d := Delta{DX: -1, DZ: 2}
	moved := c.Add(d)
	if moved != (Coords{X: 0, Y: 2, Z: 5}) {
		t.Fatalf("Add = %v", moved)
	}
	if got := moved.Sub(c); got != d {
		t.Errorf("Sub = %v, want %v", got, d)
	}
	if got := d.Negate(); got != (Delta{DX: 1, DZ: -2}) {
		t.Errorf("Negate = %v", got)
	}
}
