package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/rng"
	"github.com/hotspotworld/server/internal/worldgen"
)

type tileSample struct {
	center  geom.Vec2
	terrain worldgen.Terrain
	inWater bool
	danger  float64
}

// terrainOrder fixes tie-breaking for the dominant terrain.
var terrainOrder = []worldgen.Terrain{
	worldgen.TerrainGrass,
	worldgen.TerrainMud,
	worldgen.TerrainStone,
	worldgen.TerrainWater,
	worldgen.TerrainRiver,
}

// summarize samples tile centres across r and fills r.Summary.
func (s *Streamer) summarize(r *Region) []tileSample {
	n := s.cfg.TilesPerSide
	step := s.cfg.RegionSize / float64(n)
	tiles := make([]tileSample, 0, n*n)
	counts := make(map[worldgen.Terrain]int, len(terrainOrder))
	var sumDanger, sumHeight, maxDanger float64
	water := 0

	for ty := 0; ty < n; ty++ {
		for tx := 0; tx < n; tx++ {
			c := r.Origin.Add(geom.Vec2{X: (float64(tx) + 0.5) * step, Y: (float64(ty) + 0.5) * step})
			info := s.gen.TerrainAt(c.X, c.Y)
			d := s.gen.Danger(c.X, c.Y)
			sumDanger += d
			sumHeight += s.gen.Height(c.X, c.Y)
			maxDanger = math.Max(maxDanger, d)
			counts[info.Terrain]++
			if info.InWater {
				water++
			}
			tiles = append(tiles, tileSample{center: c, terrain: info.Terrain, inWater: info.InWater, danger: d})
		}
	}

	total := float64(len(tiles))
	dominant := terrainOrder[0]
	for _, t := range terrainOrder {
		if counts[t] > counts[dominant] {
			dominant = t
		}
	}
	mid := r.Bounds.Center()
	r.Summary = Summary{
		Biome:           s.climate.Biome(mid.X, mid.Y),
		DominantTerrain: dominant,
		TerrainCounts:   counts,
		MeanDanger:      sumDanger / total,
		MaxDanger:       maxDanger,
		MeanHeight:      sumHeight / total,
		WaterFraction:   float64(water) / total,
	}
	return tiles
}

func (s *Streamer) stream(r *Region, p Purpose) *rand.Rand {
	return rng.New(s.gen.Seed(), fmt.Sprintf("region:%d:%d:%s", r.Coord.X, r.Coord.Y, p))
}

func (s *Streamer) densityContext(r *Region, p Purpose) DensityContext {
	return DensityContext{
		Purpose:       p,
		Biome:         r.Summary.Biome,
		Terrain:       string(r.Summary.DominantTerrain),
		MeanDanger:    r.Summary.MeanDanger,
		MaxDanger:     r.Summary.MaxDanger,
		MeanHeight:    r.Summary.MeanHeight,
		WaterFraction: r.Summary.WaterFraction,
	}
}

// populate spawns the region's own content. Every purpose draws from its own
// stream, so reloading a region reproduces it exactly.
func (s *Streamer) populate(r *Region, tiles []tileSample) {
	step := s.cfg.RegionSize / float64(s.cfg.TilesPerSide)
	s.populateVegetation(r, tiles, step)
	s.populateProps(r, tiles, step)
	s.populateEnemies(r, tiles, step)
	s.populateStructures(r)
}

func jitter(r *rand.Rand, c geom.Vec2, step float64) geom.Vec2 {
	return geom.Vec2{X: c.X + (r.Float64()-0.5)*step, Y: c.Y + (r.Float64()-0.5)*step}
}

func (s *Streamer) populateVegetation(r *Region, tiles []tileSample, step float64) {
	rr := s.stream(r, PurposeVegetation)
	scale := s.density.SpawnDensity(s.densityContext(r, PurposeVegetation))
	for _, t := range tiles {
		roll := rr.Float64()
		kinds := s.table.VegetationKinds(string(t.terrain))
		if len(kinds) == 0 || roll >= s.table.Density(string(t.terrain)).Vegetation*scale {
			continue
		}
		s.spawn(r, ContentSpec{
			Purpose: PurposeVegetation,
			Kind:    kinds[rr.Intn(len(kinds))],
			Pos:     jitter(rr, t.center, step),
			POI:     -1,
			Variant: rr.Intn(4),
		})
	}
}

func (s *Streamer) populateProps(r *Region, tiles []tileSample, step float64) {
	props := s.table.Props()
	if len(props) == 0 {
		return
	}
	rr := s.stream(r, PurposeProps)
	scale := s.density.SpawnDensity(s.densityContext(r, PurposeProps))
	for _, t := range tiles {
		roll := rr.Float64()
		if roll >= s.table.Density(string(t.terrain)).Props*scale {
			continue
		}
		kind := pickProp(rr, props)
		s.spawn(r, ContentSpec{
			Purpose:  PurposeProps,
			Kind:     kind.Kind,
			Pos:      jitter(rr, t.center, step),
			Collider: rng.Range(rr, kind.MinSize, kind.MaxSize),
			POI:      -1,
		})
	}
}

func pickProp(r *rand.Rand, props []data.PropKind) data.PropKind {
	total := 0.0
	for _, p := range props {
		total += p.Weight
	}
	draw := r.Float64() * total
	acc := 0.0
	for _, p := range props {
		acc += p.Weight
		if draw < acc {
			return p
		}
	}
	return props[len(props)-1]
}

// populateEnemies places round(meanDanger × maxEnemies × density) enemies on
// dry tiles.
func (s *Streamer) populateEnemies(r *Region, tiles []tileSample, step float64) {
	rr := s.stream(r, PurposeEnemies)
	scale := s.density.SpawnDensity(s.densityContext(r, PurposeEnemies))
	count := int(math.Round(r.Summary.MeanDanger * float64(s.cfg.MaxEnemies) * scale))
	for i := 0; i < count; i++ {
		var spot *tileSample
		for try := 0; try < 8; try++ {
			t := &tiles[rr.Intn(len(tiles))]
			if !t.inWater {
				spot = t
				break
			}
		}
		if spot == nil {
			continue
		}
		pos := jitter(rr, spot.center, step)
		tier := s.density.EnemyTier(s.gen.Danger(pos.X, pos.Y))
		s.spawn(r, ContentSpec{
			Purpose: PurposeEnemies,
			Kind:    s.table.EnemyKind(tier),
			Pos:     pos,
			Dynamic: true,
			Tier:    tier,
			POI:     -1,
		})
	}
}

// populateStructures places one prefab per POI inside the region.
func (s *Streamer) populateStructures(r *Region) {
	pois := s.gen.POIsIn(r.Bounds)
	if len(pois) == 0 {
		return
	}
	rr := s.stream(r, PurposeStructures)
	for _, p := range pois {
		role := s.gen.RoleOf(p.ID)
		s.spawn(r, ContentSpec{
			Purpose:  PurposeStructures,
			Kind:     "structure:" + p.Role,
			Pos:      p.Pos,
			Collider: role.StructureSize,
			POI:      p.ID,
			Variant:  rr.Intn(3),
		})
	}
}
