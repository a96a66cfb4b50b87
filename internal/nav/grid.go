package nav

import (
	"math"
	"time"

	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/physics"
	"github.com/hotspotworld/server/internal/world"
)

// Grid is the walkability raster for one region.
type Grid struct {
	Region   world.Coord
	Origin   geom.Vec2
	CellSize float64
	Cols     int
	Rows     int
	Walkable []bool
	BuiltAt  time.Time
}

// NewGrid returns an all-walkable grid.
func NewGrid(region world.Coord, origin geom.Vec2, cellSize float64, cols, rows int) *Grid {
	g := &Grid{
		Region:   region,
		Origin:   origin,
		CellSize: cellSize,
		Cols:     cols,
		Rows:     rows,
		Walkable: make([]bool, cols*rows),
	}
	for i := range g.Walkable {
		g.Walkable[i] = true
	}
	return g
}

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.Cols && row < g.Rows
}

func (g *Grid) index(col, row int) int { return row*g.Cols + col }

func (g *Grid) walkable(col, row int) bool {
	return g.inBounds(col, row) && g.Walkable[g.index(col, row)]
}

// Bounds is the world rect the grid covers.
func (g *Grid) Bounds() geom.Rect {
	return geom.Rect{
		Min: g.Origin,
		Max: g.Origin.Add(geom.Vec2{X: float64(g.Cols) * g.CellSize, Y: float64(g.Rows) * g.CellSize}),
	}
}

// Locate maps a world position to the nearest in-grid cell.
func (g *Grid) Locate(p geom.Vec2) (int, int) {
	col := int(math.Floor((p.X - g.Origin.X) / g.CellSize))
	row := int(math.Floor((p.Y - g.Origin.Y) / g.CellSize))
	return max(0, min(col, g.Cols-1)), max(0, min(row, g.Rows-1))
}

// Center returns the world position of a cell centre.
func (g *Grid) Center(col, row int) geom.Vec2 {
	return geom.Vec2{
		X: g.Origin.X + (float64(col)+0.5)*g.CellSize,
		Y: g.Origin.Y + (float64(row)+0.5)*g.CellSize,
	}
}

// Block marks every cell overlapping r unwalkable.
func (g *Grid) Block(r geom.Rect) {
	c0 := int(math.Floor((r.Min.X - g.Origin.X) / g.CellSize))
	r0 := int(math.Floor((r.Min.Y - g.Origin.Y) / g.CellSize))
	c1 := int(math.Ceil((r.Max.X-g.Origin.X)/g.CellSize)) - 1
	r1 := int(math.Ceil((r.Max.Y-g.Origin.Y)/g.CellSize)) - 1
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, g.Cols-1), min(r1, g.Rows-1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			g.Walkable[g.index(col, row)] = false
		}
	}
}

// buildGrid rasterises the static colliders around a region.
func buildGrid(c world.Coord, cfg Config, src physics.ColliderSource, now time.Time) *Grid {
	n := int(math.Ceil(cfg.RegionSize / cfg.CellSize))
	origin := geom.Vec2{X: float64(c.X) * cfg.RegionSize, Y: float64(c.Y) * cfg.RegionSize}
	g := NewGrid(c, origin, cfg.CellSize, n, n)
	g.BuiltAt = now
	if src == nil {
		return g
	}
	for _, col := range src.QueryStaticCollidersInBounds(g.Bounds().Expand(cfg.QueryPadding)) {
		if col.IsSensor || !col.IsStatic {
			continue
		}
		g.Block(col.Bounds.Expand(cfg.AgentPadding))
	}
	return g
}

// spiral returns the nearest walkable cell to (col, row), scanning square
// rings outward up to radius. Each ring is walked in a fixed order: top edge
// left to right, right edge down, bottom edge right to left, left edge up.
func (g *Grid) spiral(col, row, radius int) (int, int, bool) {
	if g.walkable(col, row) {
		return col, row, true
	}
	for r := 1; r <= radius; r++ {
		for dx := -r; dx <= r; dx++ {
			if g.walkable(col+dx, row-r) {
				return col + dx, row - r, true
			}
		}
		for dy := -r + 1; dy <= r; dy++ {
			if g.walkable(col+r, row+dy) {
				return col + r, row + dy, true
			}
		}
		for dx := r - 1; dx >= -r; dx-- {
			if g.walkable(col+dx, row+r) {
				return col + dx, row + r, true
			}
		}
		for dy := r - 1; dy >= -r+1; dy-- {
			if g.walkable(col-r, row+dy) {
				return col - r, row + dy, true
			}
		}
	}
	return 0, 0, false
}
