package worldgen

import (
	"math"
	"math/rand"

	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/rng"
)

// River is a sinusoidal polyline with a constant width and base flow speed.
type River struct {
	Points    []geom.Vec2
	Width     float64
	FlowSpeed float64
	bounds    geom.Rect
}

// generateRivers builds RiverCount free rivers plus one that passes near
// RiverAnchor. The anchored river draws from its own stream so changing the
// free river count never moves it.
func generateRivers(p Params) []River {
	out := make([]River, 0, p.RiverCount+1)
	r := rng.New(p.Seed, "rivers")
	for i := 0; i < p.RiverCount; i++ {
		start := geom.Vec2{
			X: rng.Range(r, p.Bounds.Min.X, p.Bounds.Max.X),
			Y: rng.Range(r, p.Bounds.Min.Y, p.Bounds.Max.Y),
		}
		out = append(out, buildRiver(r, start, r.Float64()*2*math.Pi, p))
	}

	ar := rng.New(p.Seed, "rivers:anchor")
	heading := ar.Float64() * 2 * math.Pi
	dir := geom.Vec2{X: math.Cos(heading), Y: math.Sin(heading)}
	half := float64(p.RiverSegments) * p.RiverStep / 2
	out = append(out, buildRiver(ar, p.RiverAnchor.Sub(dir.Scale(half)), heading, p))
	return out
}

func buildRiver(r *rand.Rand, start geom.Vec2, heading float64, p Params) River {
	amp := rng.Range(r, p.RiverMinAmplitude, p.RiverMaxAmplitude)
	freq := rng.Range(r, 0.15, 0.45)
	phase := r.Float64() * 2 * math.Pi
	width := rng.Range(r, p.RiverMinWidth, p.RiverMaxWidth)
	flow := rng.Range(r, p.RiverMinFlow, p.RiverMaxFlow)

	dir := geom.Vec2{X: math.Cos(heading), Y: math.Sin(heading)}
	side := dir.Perp()
	pts := make([]geom.Vec2, 0, p.RiverSegments+1)
	for i := 0; i <= p.RiverSegments; i++ {
		jitter := (r.Float64() - 0.5) * 0.2 * amp
		off := amp*math.Sin(phase+float64(i)*freq) + jitter
		pts = append(pts, start.Add(dir.Scale(float64(i)*p.RiverStep)).Add(side.Scale(off)))
	}
	return River{Points: pts, Width: width, FlowSpeed: flow, bounds: geom.Bounds(pts)}
}

type riverHit struct {
	river   int
	segment int
	dist    float64
}

// nearestRiver finds the closest river segment whose river lies within
// reach of p. ok is false when no river is within reach.
func (w *World) nearestRiver(p geom.Vec2, reach func(River) float64) (riverHit, bool) {
	best := riverHit{river: -1, dist: math.Inf(1)}
	for i, rv := range w.rivers {
		lim := reach(rv)
		if !rv.bounds.Expand(lim).Contains(p) {
			continue
		}
		d, seg := geom.PolylineDistance(p, rv.Points)
		if d <= lim && d < best.dist {
			best = riverHit{river: i, segment: seg, dist: d}
		}
	}
	return best, best.river >= 0
}

// riverCarve returns the depth rivers cut into the height field at p.
func (w *World) riverCarve(p geom.Vec2) float64 {
	if w.params.RiverInfluence <= 0 || w.params.RiverDepth == 0 {
		return 0
	}
	hit, ok := w.nearestRiver(p, func(rv River) float64 { return rv.Width * w.params.RiverInfluence })
	if !ok {
		return 0
	}
	reach := w.rivers[hit.river].Width * w.params.RiverInfluence
	return w.params.RiverDepth * (1 - hit.dist/reach)
}
