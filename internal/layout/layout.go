// Package layout builds warehouse grid maps.
//
// A level is a rectangle of lane rows. Aisle columns cut through every row at
// x = Bays + i*(Bays+1); the cells between them are lane cells. VTU columns replace the
// cell at their (x, y) on every level and link the levels together. Edges are derived
// from the movement registry, so the map only contains moves some node type allows.
package layout

import (
	"fmt"

	"github.com/pdatta1/PathRouting/internal/core"
)

// XY is a column position shared by every level.
type XY struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Config describes a warehouse layout.
type Config struct {
	Lanes  int  // Lane rows per level (Y extent)
	Aisles int  // Aisle columns
	Bays   int  // Lane cells on each side of and between aisles
	Levels int  // Number of levels (Z extent)
	VTUs   []XY // Columns holding a VTU on every level; nil means one at the far end of the first aisle
}

// DefaultConfig mirrors the small single-level demo warehouse.
func DefaultConfig() Config {
	return Config{
		Lanes:  9,
		Aisles: 2,
		Bays:   3,
		Levels: 1,
	}
}

// Width returns the X extent of a level.
func (c Config) Width() int {
	return c.Aisles*(c.Bays+1) + c.Bays
}

// AisleX returns the X position of aisle i.
func (c Config) AisleX(i int) int {
	return c.Bays + i*(c.Bays+1)
}

// IsAisleColumn reports whether column x is an aisle.
func (c Config) IsAisleColumn(x int) bool {
	if x < c.Bays {
		return false
	}
	off := x - c.Bays
	return off%(c.Bays+1) == 0 && off/(c.Bays+1) < c.Aisles
}

// VTUColumns returns the configured VTU columns, or the default one.
func (c Config) VTUColumns() []XY {
	if c.VTUs != nil {
		return c.VTUs
	}
	return []XY{{X: c.AisleX(0), Y: c.Lanes - 1}}
}

// Validate checks dimensions and VTU positions.
func (c Config) Validate() error {
	if c.Lanes < 1 || c.Aisles < 1 || c.Levels < 1 || c.Bays < 0 {
		return fmt.Errorf("layout: lanes=%d aisles=%d levels=%d bays=%d (lanes, aisles, levels must be >= 1, bays >= 0)",
			c.Lanes, c.Aisles, c.Levels, c.Bays)
	}
	w := c.Width()
	for _, v := range c.VTUColumns() {
		if v.X < 0 || v.X >= w || v.Y < 0 || v.Y >= c.Lanes {
			return fmt.Errorf("layout: vtu column (%d,%d) outside %dx%d level", v.X, v.Y, w, c.Lanes)
		}
	}
	return nil
}

// Build creates the map described by cfg, connecting nodes whose moves the registry
// allows.
func Build(cfg Config, moves *core.Movements) (*core.Map, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if moves == nil {
		moves = core.DefaultMovements()
	}

	vtus := make(map[XY]bool)
	for _, v := range cfg.VTUColumns() {
		vtus[v] = true
	}

	m := core.NewMap(cfg.Lanes, cfg.Aisles, cfg.Levels)
	w := cfg.Width()

	for z := 0; z < cfg.Levels; z++ {
		for y := 0; y < cfg.Lanes; y++ {
			for x := 0; x < w; x++ {
				typ := core.Lane
				switch {
				case vtus[XY{X: x, Y: y}]:
					typ = core.VTU
				case cfg.IsAisleColumn(x):
					typ = core.Aisle
				}
				if _, err := m.AddNode(core.Coords{X: x, Y: y, Z: z}, typ); err != nil {
					return nil, fmt.Errorf("layout: %w", err)
				}
			}
		}
	}

	// Only look forward along each axis; Connect adds both directions.
	forward := []core.Delta{{DX: 1}, {DY: 1}, {DZ: 1}}
	for _, n := range m.Nodes() {
		for _, d := range forward {
			other, err := m.NodeAt(n.Coords.Add(d))
			if err != nil {
				continue
			}
			if !moves.Connects(n, other) {
				continue
			}
			if err := m.Connect(n.ID, other.ID); err != nil {
				return nil, fmt.Errorf("layout: %w", err)
			}
		}
	}

	return m, nil
}

// Open builds a width x height grid per level where every in-plane neighbor is
// connected regardless of node type. VTU columns connect the levels.
func Open(width, height, levels int, vtus ...XY) (*core.Map, error) {
	if width < 1 || height < 1 || levels < 1 {
		return nil, fmt.Errorf("layout: open grid %dx%dx%d must be at least 1x1x1", width, height, levels)
	}

	isVTU := make(map[XY]bool, len(vtus))
	for _, v := range vtus {
		if v.X < 0 || v.X >= width || v.Y < 0 || v.Y >= height {
			return nil, fmt.Errorf("layout: vtu column (%d,%d) outside %dx%d level", v.X, v.Y, width, height)
		}
		isVTU[v] = true
	}

	m := core.NewMap(height, 0, levels)
	for z := 0; z < levels; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				typ := core.Lane
				if isVTU[XY{X: x, Y: y}] {
					typ = core.VTU
				}
				if _, err := m.AddNode(core.Coords{X: x, Y: y, Z: z}, typ); err != nil {
					return nil, fmt.Errorf("layout: %w", err)
				}
			}
		}
	}

	for _, n := range m.Nodes() {
		next := []core.Delta{{DX: 1}, {DY: 1}}
		if n.Type == core.VTU {
			next = append(next, core.Delta{DZ: 1})
		}
		for _, d := range next {
			other, err := m.NodeAt(n.Coords.Add(d))
			if err != nil {
				continue
			}
			if err := m.Connect(n.ID, other.ID); err != nil {
				return nil, fmt.Errorf("layout: %w", err)
			}
		}
	}

	return m, nil
}
