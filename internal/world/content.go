package world

import (
	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/noise"
)

// Purpose labels a population pass. Each purpose draws from its own random
// stream so adding or removing one never shifts another.
type Purpose string

const (
	PurposeVegetation Purpose = "vegetation"
	PurposeProps      Purpose = "props"
	PurposeEnemies    Purpose = "enemies"
	PurposeStructures Purpose = "structures"
	PurposeExternal   Purpose = "external"
)

// ContentSpec is what a region decides to place. The spawner collaborator
// turns it into whatever representation it needs.
type ContentSpec struct {
	Purpose  Purpose
	Kind     string
	Pos      geom.Vec2
	Collider float64 // square collider edge, 0 for none
	Dynamic  bool
	Tier     int
	POI      int // -1 unless linked to a POI
	Variant  int
}

// Content is the component stored for every region-owned entity.
type Content struct {
	ContentSpec
	Owner Coord
	Home  Coord
	Seq   int // spawn order within Home
}

// AnchorProvider reports the tracked entity's position. ok is false when
// there is nothing to track this tick.
type AnchorProvider interface {
	AnchorPosition() (pos geom.Vec2, ok bool)
}

// Spawner materialises and removes content.
type Spawner interface {
	Spawn(id ecs.EntityID, c *Content)
	Despawn(id ecs.EntityID, c *Content)
}

// ContentRegistrar attaches extra content to a region while it loads.
type ContentRegistrar interface {
	Register(spec ContentSpec) ecs.EntityID
}

// RegionHook is notified when regions load and unload.
type RegionHook interface {
	OnRegionLoad(c Coord, reg ContentRegistrar)
	OnRegionUnload(c Coord)
}

// DensityContext is the input to a density decision.
type DensityContext struct {
	Purpose       Purpose
	Biome         string
	Terrain       string
	MeanDanger    float64
	MaxDanger     float64
	MeanHeight    float64
	WaterFraction float64
}

// DensityModel scales the content table's base densities and picks enemy
// tiers.
type DensityModel interface {
	SpawnDensity(ctx DensityContext) float64
	EnemyTier(danger float64) int
}

var biomeVegetation = map[string]float64{
	noise.BiomeRainforest: 1.6,
	noise.BiomeForest:     1.4,
	noise.BiomeSwamp:      1.2,
	noise.BiomeTaiga:      1.0,
	noise.BiomeGrassland:  0.8,
	noise.BiomeSavanna:    0.6,
	noise.BiomeTundra:     0.4,
	noise.BiomeDesert:     0.2,
}

// DefaultDensity is the built-in density model.
type DefaultDensity struct {
	MaxTier int
}

func (d DefaultDensity) SpawnDensity(ctx DensityContext) float64 {
	switch ctx.Purpose {
	case PurposeVegetation:
		if m, ok := biomeVegetation[ctx.Biome]; ok {
			return m
		}
		return 1
	case PurposeProps:
		return 1 + 0.5*ctx.MeanDanger
	case PurposeEnemies:
		return 1 - ctx.WaterFraction
	}
	return 1
}

func (d DefaultDensity) EnemyTier(danger float64) int {
	top := d.MaxTier
	if top < 1 {
		top = 4
	}
	tier := 1 + int(danger*float64(top))
	return max(1, min(tier, top))
}

type nopSpawner struct{}

func (nopSpawner) Spawn(ecs.EntityID, *Content)   {}
func (nopSpawner) Despawn(ecs.EntityID, *Content) {}
