package worldgen

import (
	"math"

	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/geom"
)

// Danger returns the risk scalar at (x, y), always within [0, 1]. Risk falls
// off linearly from the nearest POI and is damped inside path corridors.
func (w *World) Danger(x, y float64) float64 {
	if len(w.pois) == 0 {
		return 0
	}
	p := geom.Vec2{X: x, Y: y}
	nearest := 0
	best := math.Inf(1)
	for i := range w.pois {
		if d := w.pois[i].Pos.DistSq(p); d < best {
			best, nearest = d, i
		}
	}
	role := w.poiRoles[nearest]
	v := geom.Clamp(1-math.Sqrt(best)/role.InfluenceRadius, 0, 1) * role.DangerMultiplier
	if w.nearPath(p) {
		v *= w.params.PathSafetyFactor
	}
	return geom.Clamp(v*w.params.DangerScale, 0, 1)
}

// Height returns the stamped elevation at (x, y), always within [-1, 1].
func (w *World) Height(x, y float64) float64 {
	p := geom.Vec2{X: x, Y: y}
	h := 0.0
	for i := range w.pois {
		role := w.poiRoles[i]
		d := w.pois[i].Pos.Dist(p)
		if d >= role.InfluenceRadius {
			continue
		}
		h += shapeContribution(role, 1-d/role.InfluenceRadius)
	}
	h -= w.riverCarve(p)
	if w.nearPath(p) {
		h = math.Max(h, w.params.PathFloor)
	}
	h -= w.params.WaterLevel
	return geom.Clamp(h, -1, 1)
}

// shapeContribution evaluates a role's height profile at closeness t in (0, 1],
// where 1 is the POI centre.
func shapeContribution(role *data.RoleEntry, t float64) float64 {
	switch role.Shape {
	case data.ShapeCrater:
		return -role.Amplitude * t * t
	case data.ShapeHill:
		return role.Amplitude * math.Pow(t, 1.6)
	case data.ShapePlateau:
		return role.Amplitude * math.Sqrt(t)
	default:
		return 0.5 * role.Amplitude * t
	}
}
