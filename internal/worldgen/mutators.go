package worldgen

import (
	"fmt"
	"time"

	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/rng"
)

// WeekOf returns the ISO year and week for t.
func WeekOf(t time.Time) (int, int) {
	return t.ISOWeek()
}

// MutatorsForWeek picks up to n distinct mutators for a seed and ISO week by
// weighted roulette. The same seed and week always yield the same list.
func MutatorsForWeek(seed string, year, week int, table *data.MutatorTable, n int) []data.Mutator {
	if table == nil || n <= 0 {
		return nil
	}
	r := rng.New(seed, fmt.Sprintf("mutators:%04d-W%02d", year, week))
	pool := append([]data.Mutator(nil), table.All()...)
	out := make([]data.Mutator, 0, n)
	for len(out) < n && len(pool) > 0 {
		total := 0.0
		for _, m := range pool {
			total += m.Weight
		}
		if total <= 0 {
			break
		}
		draw := r.Float64() * total
		pick := len(pool) - 1
		acc := 0.0
		for i, m := range pool {
			acc += m.Weight
			if draw < acc {
				pick = i
				break
			}
		}
		out = append(out, pool[pick])
		pool = append(pool[:pick], pool[pick+1:]...)
	}
	return out
}
