// Package noise provides seeded fractal noise with optional domain warping,
// used for climate (temperature, moisture) and biome sampling.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/hotspotworld/server/internal/rng"
)

// Params shapes a fractal noise field.
type Params struct {
	Octaves      int
	Frequency    float64
	Persistence  float64
	Lacunarity   float64
	WarpStrength float64 // world units; 0 disables warping
	WarpFreq     float64
}

// DefaultParams suits world coordinates in the tens of thousands.
func DefaultParams() Params {
	return Params{
		Octaves:      4,
		Frequency:    1.0 / 12000,
		Persistence:  0.5,
		Lacunarity:   2.0,
		WarpStrength: 1500,
		WarpFreq:     1.0 / 6000,
	}
}

// Field is a pure, reentrant 2D noise function.
type Field struct {
	base   opensimplex.Noise
	warp   opensimplex.Noise
	params Params
}

// NewField seeds a field from the world seed and a purpose name.
func NewField(seed, name string, p Params) *Field {
	if p.Octaves <= 0 {
		p.Octaves = 1
	}
	if p.Lacunarity <= 0 {
		p.Lacunarity = 2
	}
	return &Field{
		base:   opensimplex.NewNormalized(rng.DeriveSeed(seed, "noise:"+name)),
		warp:   opensimplex.New(rng.DeriveSeed(seed, "noise:"+name+":warp")),
		params: p,
	}
}

// Sample returns fractal noise in [0, 1] at (x, y).
func (f *Field) Sample(x, y float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	freq := f.params.Frequency
	for i := 0; i < f.params.Octaves; i++ {
		total += f.base.Eval2(x*freq, y*freq) * amplitude
		maxVal += amplitude
		amplitude *= f.params.Persistence
		freq *= f.params.Lacunarity
	}
	if maxVal == 0 {
		return 0
	}
	v := total / maxVal
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Warped samples the field after displacing (x, y) by the warp field.
func (f *Field) Warped(x, y float64) float64 {
	if f.params.WarpStrength == 0 {
		return f.Sample(x, y)
	}
	wf := f.params.WarpFreq
	dx := f.warp.Eval2(x*wf, y*wf)
	dy := f.warp.Eval2(x*wf+5.2, y*wf+1.3)
	return f.Sample(x+dx*f.params.WarpStrength, y+dy*f.params.WarpStrength)
}
