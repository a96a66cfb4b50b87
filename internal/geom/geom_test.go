package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentDistance(t *testing.T) {
	a := Vec2{X: 0, Y: 0}
	b := Vec2{X: 10, Y: 0}

	d, tt := SegmentDistance(Vec2{X: 5, Y: 3}, a, b)
	assert.InDelta(t, 3, d, 1e-9)
	assert.InDelta(t, 0.5, tt, 1e-9)

	d, tt = SegmentDistance(Vec2{X: -4, Y: 3}, a, b)
	assert.InDelta(t, 5, d, 1e-9)
	assert.Equal(t, 0.0, tt)

	d, _ = SegmentDistance(Vec2{X: 1, Y: 1}, a, a)
	assert.InDelta(t, math.Sqrt2, d, 1e-9)
}

func TestRectIntersectsAndExpand(t *testing.T) {
	r := Rect{Min: Vec2{X: 0, Y: 0}, Max: Vec2{X: 10, Y: 10}}
	o := Rect{Min: Vec2{X: 10, Y: 0}, Max: Vec2{X: 20, Y: 10}}

	assert.False(t, r.Intersects(o), "touching edges do not overlap")
	assert.True(t, r.Expand(1).Intersects(o))
	assert.Equal(t, Vec2{X: 5, Y: 5}, r.Center())
}

func TestFloorDiv(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{0, 1000, 0},
		{999, 1000, 0},
		{1000, 1000, 1},
		{-1, 1000, -1},
		{-1000, 1000, -1},
		{-1001, 1000, -2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FloorDiv(c.a, c.b), "FloorDiv(%d,%d)", c.a, c.b)
	}
}

func TestPolylineDistance(t *testing.T) {
	line := []Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	d, idx := PolylineDistance(Vec2{X: 12, Y: 6}, line)
	assert.InDelta(t, 2, d, 1e-9)
	assert.Equal(t, 1, idx)

	d, idx = PolylineDistance(Vec2{}, nil)
	assert.True(t, math.IsInf(d, 1))
	assert.Equal(t, -1, idx)
}
