package geom

import "math"

// Vec2 is a point or direction in world units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) IsNaN() bool          { return math.IsNaN(v.X) || math.IsNaN(v.Y) }
func (v Vec2) Perp() Vec2           { return Vec2{X: -v.Y, Y: v.X} }

func (v Vec2) DistSq(o Vec2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return dx*dx + dy*dy
}

func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// Norm returns the unit vector, or the zero vector for zero length input.
func (v Vec2) Norm() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Rect is an axis-aligned rectangle. Min is inclusive, Max exclusive for
// containment tests.
type Rect struct {
	Min, Max Vec2
}

// RectAround builds a rect of the given size centred on c.
func RectAround(c Vec2, w, h float64) Rect {
	return Rect{
		Min: Vec2{X: c.X - w/2, Y: c.Y - h/2},
		Max: Vec2{X: c.X + w/2, Y: c.Y + h/2},
	}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Center() Vec2 {
	return Vec2{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Intersects reports whether the two rects overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X && r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Expand grows the rect by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{
		Min: Vec2{X: r.Min.X - pad, Y: r.Min.Y - pad},
		Max: Vec2{X: r.Max.X + pad, Y: r.Max.Y + pad},
	}
}

// Clamp returns p clamped into the rect's closed bounds.
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{X: Clamp(p.X, r.Min.X, r.Max.X), Y: Clamp(p.Y, r.Min.Y, r.Max.Y)}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SegmentDistance returns the distance from p to segment ab and the
// parametric position of the closest point along it.
func SegmentDistance(p, a, b Vec2) (float64, float64) {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Dist(a), 0
	}
	t := Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return p.Dist(a.Add(ab.Scale(t))), t
}

// Bounds returns the bounding rect of a polyline. Empty input yields a zero rect.
func Bounds(points []Vec2) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// PolylineDistance returns the distance from p to the nearest segment of the
// polyline together with that segment's index. A single point polyline
// reports index 0.
func PolylineDistance(p Vec2, points []Vec2) (float64, int) {
	switch len(points) {
	case 0:
		return math.Inf(1), -1
	case 1:
		return p.Dist(points[0]), 0
	}
	best := math.Inf(1)
	bestIdx := -1
	for i := 0; i+1 < len(points); i++ {
		d, _ := SegmentDistance(p, points[i], points[i+1])
		if d < best {
			best = d
			bestIdx = i
		}
	}
	return best, bestIdx
}

// FloorDiv divides rounding toward negative infinity. b must be positive.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
