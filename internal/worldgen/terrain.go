package worldgen

import "github.com/hotspotworld/server/internal/geom"

// Terrain tags reported by TerrainAt.
type Terrain string

const (
	TerrainWater Terrain = "water"
	TerrainRiver Terrain = "river"
	TerrainMud   Terrain = "mud"
	TerrainGrass Terrain = "grass"
	TerrainStone Terrain = "stone"
)

var speedMultipliers = map[Terrain]float64{
	TerrainRiver: 0.5,
	TerrainWater: 0.4,
	TerrainMud:   0.7,
	TerrainStone: 0.9,
	TerrainGrass: 1.0,
}

// TerrainInfo is what movement integration needs at a point.
type TerrainInfo struct {
	Terrain         Terrain
	InWater         bool
	Flow            geom.Vec2 // unit vector, zero outside rivers
	FlowSpeed       float64
	SpeedMultiplier float64
}

// TerrainAt classifies (x, y): river membership first, then height bands,
// then danger bands for dry land.
func (w *World) TerrainAt(x, y float64) TerrainInfo {
	p := geom.Vec2{X: x, Y: y}
	if hit, ok := w.nearestRiver(p, func(rv River) float64 { return rv.Width / 2 }); ok {
		rv := w.rivers[hit.river]
		seg := rv.Points[hit.segment+1].Sub(rv.Points[hit.segment])
		return TerrainInfo{
			Terrain:         TerrainRiver,
			InWater:         true,
			Flow:            seg.Perp().Norm(),
			FlowSpeed:       rv.FlowSpeed,
			SpeedMultiplier: speedMultipliers[TerrainRiver],
		}
	}

	h := w.Height(x, y)
	var t Terrain
	switch {
	case h < w.params.WaterHeight:
		t = TerrainWater
	case h < w.params.MudHeight:
		t = TerrainMud
	case h > w.params.StoneHeight:
		t = TerrainStone
	default:
		d := w.Danger(x, y)
		switch {
		case d >= 0.7:
			t = TerrainStone
		case d >= 0.4:
			t = TerrainMud
		default:
			t = TerrainGrass
		}
	}
	return TerrainInfo{
		Terrain:         t,
		InWater:         t == TerrainWater,
		SpeedMultiplier: speedMultipliers[t],
	}
}
