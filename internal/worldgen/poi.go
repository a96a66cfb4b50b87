package worldgen

import (
	"math"
	"math/rand"

	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/rng"
)

// Role names used by the default role table.
const (
	RoleBoss       = "boss"
	RoleHighLoot   = "high_loot"
	RoleScavenge   = "scavenge"
	RoleExtraction = "extraction"
)

// POI is a point of interest. Immutable after generation.
type POI struct {
	ID   int
	Pos  geom.Vec2
	Role string
}

// samplePoisson places up to target points inside bounds with pairwise
// distance >= minDist (Bridson). The active point is drawn uniformly from the
// active list each round and removed by swap once its retries are exhausted,
// so the draw order is fixed for a given generator state.
func samplePoisson(r *rand.Rand, bounds geom.Rect, minDist float64, target, retries int) []geom.Vec2 {
	if target <= 0 || minDist <= 0 || bounds.Width() <= 0 || bounds.Height() <= 0 {
		return nil
	}
	cell := minDist / math.Sqrt2
	cols := int(math.Ceil(bounds.Width() / cell))
	rows := int(math.Ceil(bounds.Height() / cell))
	grid := make([]int32, cols*rows)
	for i := range grid {
		grid[i] = -1
	}
	cellOf := func(p geom.Vec2) (int, int) {
		c := int((p.X - bounds.Min.X) / cell)
		rr := int((p.Y - bounds.Min.Y) / cell)
		return min(c, cols-1), min(rr, rows-1)
	}

	points := make([]geom.Vec2, 0, target)
	minSq := minDist * minDist
	farEnough := func(p geom.Vec2) bool {
		c, rr := cellOf(p)
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				nc, nr := c+dx, rr+dy
				if nc < 0 || nr < 0 || nc >= cols || nr >= rows {
					continue
				}
				if idx := grid[nr*cols+nc]; idx >= 0 && points[idx].DistSq(p) < minSq {
					return false
				}
			}
		}
		return true
	}
	add := func(p geom.Vec2) int {
		points = append(points, p)
		c, rr := cellOf(p)
		grid[rr*cols+c] = int32(len(points) - 1)
		return len(points) - 1
	}

	first := geom.Vec2{
		X: rng.Range(r, bounds.Min.X, bounds.Max.X),
		Y: rng.Range(r, bounds.Min.Y, bounds.Max.Y),
	}
	active := []int{add(first)}

	for len(active) > 0 && len(points) < target {
		slot := r.Intn(len(active))
		base := points[active[slot]]
		placed := false
		for k := 0; k < retries; k++ {
			angle := r.Float64() * 2 * math.Pi
			radius := minDist * (1 + r.Float64())
			cand := geom.Vec2{X: base.X + math.Cos(angle)*radius, Y: base.Y + math.Sin(angle)*radius}
			if !bounds.Contains(cand) || !farEnough(cand) {
				continue
			}
			active = append(active, add(cand))
			placed = true
			break
		}
		if !placed {
			active[slot] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}
	return points
}

// assignRoles shuffles the POIs, forces each required role onto the first
// shuffled entries and draws the rest by weight.
func assignRoles(r *rand.Rand, pois []POI, table *data.RoleTable) {
	order := make([]int, len(pois))
	for i := range order {
		order[i] = i
	}
	for i := len(order) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	required := table.Required()
	for k, idx := range order {
		if k < len(required) {
			pois[idx].Role = required[k].Role
			continue
		}
		pois[idx].Role = pickWeightedRole(r, table.All())
	}
}

// pickWeightedRole is a cumulative-weight roulette over one draw.
func pickWeightedRole(r *rand.Rand, roles []data.RoleEntry) string {
	total := 0.0
	for _, e := range roles {
		total += e.Weight
	}
	draw := r.Float64() * total
	acc := 0.0
	for _, e := range roles {
		acc += e.Weight
		if draw < acc {
			return e.Role
		}
	}
	return roles[len(roles)-1].Role
}
