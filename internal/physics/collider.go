// Package physics holds the static collider index the navigator queries when
// it rasterises walkability grids.
package physics

import (
	"math"
	"slices"

	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/geom"
)

// Collider is an axis-aligned collision box.
type Collider struct {
	Owner    ecs.EntityID
	Bounds   geom.Rect
	IsSensor bool
	IsStatic bool
}

// ColliderSource answers bounds queries for colliders.
type ColliderSource interface {
	QueryStaticCollidersInBounds(r geom.Rect) []Collider
}

type cellKey struct {
	cx, cy int
}

// Index is a uniform spatial hash of colliders. A collider is stored in every
// cell its bounds overlap. Accessed only from the game loop goroutine.
type Index struct {
	cellSize float64
	cells    map[cellKey]map[ecs.EntityID]struct{}
	byOwner  map[ecs.EntityID]Collider
}

func NewIndex(cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = 250
	}
	return &Index{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[ecs.EntityID]struct{}),
		byOwner:  make(map[ecs.EntityID]Collider),
	}
}

func (ix *Index) cellRange(r geom.Rect) (minX, minY, maxX, maxY int) {
	minX = int(math.Floor(r.Min.X / ix.cellSize))
	minY = int(math.Floor(r.Min.Y / ix.cellSize))
	maxX = int(math.Floor(r.Max.X / ix.cellSize))
	maxY = int(math.Floor(r.Max.Y / ix.cellSize))
	return
}

// Add stores c under its owner, replacing any previous collider of that owner.
func (ix *Index) Add(c Collider) {
	if _, ok := ix.byOwner[c.Owner]; ok {
		ix.Remove(c.Owner)
	}
	ix.byOwner[c.Owner] = c
	x0, y0, x1, y1 := ix.cellRange(c.Bounds)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			k := cellKey{cx, cy}
			cell := ix.cells[k]
			if cell == nil {
				cell = make(map[ecs.EntityID]struct{})
				ix.cells[k] = cell
			}
			cell[c.Owner] = struct{}{}
		}
	}
}

// Remove drops the collider owned by id. Unknown owners are ignored.
func (ix *Index) Remove(id ecs.EntityID) bool {
	c, ok := ix.byOwner[id]
	if !ok {
		return false
	}
	delete(ix.byOwner, id)
	x0, y0, x1, y1 := ix.cellRange(c.Bounds)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			k := cellKey{cx, cy}
			if cell := ix.cells[k]; cell != nil {
				delete(cell, id)
				if len(cell) == 0 {
					delete(ix.cells, k)
				}
			}
		}
	}
	return true
}

func (ix *Index) Get(id ecs.EntityID) (Collider, bool) {
	c, ok := ix.byOwner[id]
	return c, ok
}

func (ix *Index) Len() int { return len(ix.byOwner) }

// QueryInBounds returns every collider overlapping r, ordered by owner ID.
func (ix *Index) QueryInBounds(r geom.Rect) []Collider {
	x0, y0, x1, y1 := ix.cellRange(r)
	seen := make(map[ecs.EntityID]struct{})
	var ids []ecs.EntityID
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			for id := range ix.cells[cellKey{cx, cy}] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				if ix.byOwner[id].Bounds.Intersects(r) {
					ids = append(ids, id)
				}
			}
		}
	}
	slices.Sort(ids)
	out := make([]Collider, len(ids))
	for i, id := range ids {
		out[i] = ix.byOwner[id]
	}
	return out
}

// QueryStaticCollidersInBounds returns static, non-sensor colliders
// overlapping r.
func (ix *Index) QueryStaticCollidersInBounds(r geom.Rect) []Collider {
	all := ix.QueryInBounds(r)
	out := all[:0]
	for _, c := range all {
		if c.IsStatic && !c.IsSensor {
			out = append(out, c)
		}
	}
	return out
}
