// Package rng derives independent, reproducible random streams from a world
// seed. Every consumer asks for its own stream by label; there is no shared
// generator whose draw order could couple unrelated subsystems.
package rng

import (
	"encoding/binary"
	"math/rand"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSeed canonicalises a seed string so that visually identical seeds
// (different Unicode compositions, stray whitespace) hash identically.
func NormalizeSeed(seed string) string {
	return norm.NFC.String(strings.TrimSpace(seed))
}

// DeriveSeed maps (baseSeed, label) to a 64-bit seed. The mapping is a pure
// function and stable across releases: blake2b-256 over the normalised seed,
// a zero separator and the label, first 8 bytes little endian.
func DeriveSeed(baseSeed, label string) int64 {
	buf := make([]byte, 0, len(baseSeed)+len(label)+1)
	buf = append(buf, NormalizeSeed(baseSeed)...)
	buf = append(buf, 0)
	buf = append(buf, label...)
	sum := blake2b.Sum256(buf)
	v := binary.LittleEndian.Uint64(sum[:8])
	if v == 0 {
		v = 1
	}
	return int64(v)
}

// New returns a fresh generator for the (baseSeed, label) stream.
func New(baseSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeriveSeed(baseSeed, label)))
}

// Range draws uniformly from [lo, hi). hi <= lo returns lo.
func Range(r *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}
