package layout

import (
	"strings"

	"github.com/pdatta1/PathRouting/internal/core"
)

// Glyphs used by Render.
const (
	glyphLane    = '.'
	glyphAisle   = '|'
	glyphVTU     = 'V'
	glyphStatic  = '#'
	glyphDynamic = 'R'
	glyphPath    = '*'
	glyphEmpty   = ' '
)

// Render draws one level of m as text, one row per y. Static occupants are drawn
// as '#', dynamic ones as 'R' and cells of the given paths on this level as '*'.
func Render(m *core.Map, level int, occ core.OccupancySnapshot, paths ...*core.Path) string {
	var maxX, maxY int
	cells := make(map[[2]int]rune)
	for _, n := range m.Nodes() {
		if n.Coords.Z != level {
			continue
		}
		if n.Coords.X > maxX {
			maxX = n.Coords.X
		}
		if n.Coords.Y > maxY {
			maxY = n.Coords.Y
		}
		g := glyphLane
		switch n.Type {
		case core.Aisle:
			g = glyphAisle
		case core.VTU:
			g = glyphVTU
		}
		cells[[2]int{n.Coords.X, n.Coords.Y}] = g
	}
	if len(cells) == 0 {
		return ""
	}

	mark := func(id core.NodeID, g rune) {
		n, err := m.Node(id)
		if err != nil || n.Coords.Z != level {
			return
		}
		cells[[2]int{n.Coords.X, n.Coords.Y}] = g
	}
	for _, p := range paths {
		if p == nil {
			continue
		}
		for _, n := range p.Nodes {
			mark(n.ID, glyphPath)
		}
	}
	if occ != nil {
		for _, id := range occ.OccupiedNodes(level, false) {
			mark(id, glyphDynamic)
		}
		for _, id := range occ.OccupiedNodes(level, true) {
			mark(id, glyphStatic)
		}
	}

	var b strings.Builder
	for y := 0; y <= maxY; y++ {
		for x := 0; x <= maxX; x++ {
			g, ok := cells[[2]int{x, y}]
			if !ok {
				g = glyphEmpty
			}
			b.WriteRune(g)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
