package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldDeterministicAndBounded(t *testing.T) {
	a := NewField("W-2024-01", "temperature", DefaultParams())
	b := NewField("W-2024-01", "temperature", DefaultParams())
	other := NewField("W-2024-01", "moisture", DefaultParams())

	differs := false
	for i := 0; i < 200; i++ {
		x := float64(i*731) - 40000
		y := float64(i*419) - 20000
		va := a.Warped(x, y)
		assert.Equal(t, va, b.Warped(x, y))
		assert.GreaterOrEqual(t, va, 0.0)
		assert.LessOrEqual(t, va, 1.0)
		if va != other.Warped(x, y) {
			differs = true
		}
	}
	assert.True(t, differs, "independent labels should produce independent fields")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		temp, moist float64
		want        string
	}{
		{0.1, 0.1, BiomeTundra},
		{0.1, 0.9, BiomeTaiga},
		{0.5, 0.2, BiomeGrassland},
		{0.5, 0.5, BiomeForest},
		{0.5, 0.9, BiomeSwamp},
		{0.8, 0.1, BiomeDesert},
		{0.8, 0.4, BiomeSavanna},
		{0.8, 0.8, BiomeRainforest},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.temp, c.moist))
	}
}
