package worldgen

import (
	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/geom"
)

// Params controls world generation. All lengths are world units; heights and
// danger are normalised scalars.
type Params struct {
	Seed   string
	Bounds geom.Rect

	TargetPOICount int
	MinPOIDistance float64
	PoissonRetries int

	PathGridCell        float64
	PathCorridorWidth   float64
	PathSafetyFactor    float64 // danger multiplier inside a corridor
	PathFloor           float64 // minimum height inside a corridor
	SubmersionThreshold float64 // coarse cells below this height are impassable

	WaterLevel  float64
	DangerScale float64

	RiverCount        int
	RiverAnchor       geom.Vec2 // the guaranteed river passes near this point
	RiverSegments     int
	RiverStep         float64
	RiverMinWidth     float64
	RiverMaxWidth     float64
	RiverMinFlow      float64
	RiverMaxFlow      float64
	RiverMinAmplitude float64
	RiverMaxAmplitude float64
	RiverDepth        float64
	RiverInfluence    float64 // carving reach as a multiple of river width

	WaterHeight float64
	MudHeight   float64
	StoneHeight float64
}

func DefaultParams(seed string) Params {
	return Params{
		Seed:   seed,
		Bounds: geom.Rect{Min: geom.Vec2{X: -40000, Y: -40000}, Max: geom.Vec2{X: 40000, Y: 40000}},

		TargetPOICount: 28,
		MinPOIDistance: 4200,
		PoissonRetries: 30,

		PathGridCell:        1000,
		PathCorridorWidth:   600,
		PathSafetyFactor:    0.35,
		PathFloor:           0.05,
		SubmersionThreshold: -0.45,

		WaterLevel:  0,
		DangerScale: 1,

		RiverCount:        3,
		RiverSegments:     48,
		RiverStep:         1500,
		RiverMinWidth:     120,
		RiverMaxWidth:     320,
		RiverMinFlow:      40,
		RiverMaxFlow:      120,
		RiverMinAmplitude: 600,
		RiverMaxAmplitude: 2400,
		RiverDepth:        0.5,
		RiverInfluence:    3,

		WaterHeight: -0.3,
		MudHeight:   -0.1,
		StoneHeight: 0.45,
	}
}

// Apply folds weekly mutators into a copy of p.
func (p Params) Apply(muts []data.Mutator) Params {
	for _, m := range muts {
		p.WaterLevel += m.WaterLevel
		p.RiverCount += m.RiverCount
		p.TargetPOICount += m.POICount
		if m.DangerScale > 0 {
			p.DangerScale *= m.DangerScale
		}
		if m.PathSafetyScale > 0 {
			p.PathSafetyFactor *= m.PathSafetyScale
		}
	}
	if p.RiverCount < 0 {
		p.RiverCount = 0
	}
	if p.TargetPOICount < 1 {
		p.TargetPOICount = 1
	}
	return p
}
