package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSeedDeterministic(t *testing.T) {
	a := DeriveSeed("W-2024-01", "poi:placement")
	b := DeriveSeed("W-2024-01", "poi:placement")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DeriveSeed("W-2024-01", "rivers"))
	assert.NotEqual(t, a, DeriveSeed("W-2024-02", "poi:placement"))
	assert.NotZero(t, a)
}

func TestDeriveSeedSeparatesSeedFromLabel(t *testing.T) {
	// "ab"+"c" must not collide with "a"+"bc".
	assert.NotEqual(t, DeriveSeed("ab", "c"), DeriveSeed("a", "bc"))
}

func TestNormalizeSeed(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	require.NotEqual(t, composed, decomposed)
	assert.Equal(t, DeriveSeed(composed, "x"), DeriveSeed(decomposed, "x"))
	assert.Equal(t, DeriveSeed(" seed ", "x"), DeriveSeed("seed", "x"))
}

func TestNewStreamsReproduce(t *testing.T) {
	r1 := New("seed", "label")
	r2 := New("seed", "label")
	for i := 0; i < 32; i++ {
		assert.Equal(t, r1.Int63(), r2.Int63())
	}
}

func TestRange(t *testing.T) {
	r := New("seed", "range")
	for i := 0; i < 100; i++ {
		v := Range(r, 5, 10)
		assert.GreaterOrEqual(t, v, 5.0)
		assert.Less(t, v, 10.0)
	}
	assert.Equal(t, 3.0, Range(r, 3, 3))
}
