package world

import (
	"math"
	"slices"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/core/event"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/worldgen"
)

// Coord is an integer region coordinate.
type Coord = event.RegionCoord

// Chebyshev returns the king-move distance between two coordinates.
func Chebyshev(a, b Coord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func lessCoord(a, b Coord) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

// Summary describes a region's sampled terrain.
type Summary struct {
	Biome           string
	DominantTerrain worldgen.Terrain
	TerrainCounts   map[worldgen.Terrain]int
	MeanDanger      float64
	MaxDanger       float64
	MeanHeight      float64
	WaterFraction   float64
}

// Region is one loaded square of the world. Its content set lists every
// entity it owns.
type Region struct {
	Coord    Coord
	Origin   geom.Vec2
	Bounds   geom.Rect
	Summary  Summary
	LoadedAt time.Time

	content mapset.Set[ecs.EntityID]
	nextSeq int
}

func newRegion(c Coord, size float64, now time.Time) *Region {
	origin := geom.Vec2{X: float64(c.X) * size, Y: float64(c.Y) * size}
	return &Region{
		Coord:    c,
		Origin:   origin,
		Bounds:   geom.Rect{Min: origin, Max: origin.Add(geom.Vec2{X: size, Y: size})},
		LoadedAt: now,
		content:  mapset.New[ecs.EntityID](),
	}
}

// Content returns the owned entity IDs in ascending order.
func (r *Region) Content() []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, r.content.Size())
	r.content.Each(func(id ecs.EntityID) {
		ids = append(ids, id)
	})
	slices.Sort(ids)
	return ids
}

func (r *Region) Owns(id ecs.EntityID) bool { return r.content.Has(id) }
func (r *Region) ContentCount() int         { return r.content.Size() }

// coordOf maps a world position to its region coordinate.
func coordOf(p geom.Vec2, size float64) Coord {
	return Coord{X: int(math.Floor(p.X / size)), Y: int(math.Floor(p.Y / size))}
}
