package system

import (
	"math"
	"time"

	coresys "github.com/hotspotworld/server/internal/core/system"
	"github.com/hotspotworld/server/internal/geom"
)

// PatrolAnchor walks a closed route at constant speed and serves as the
// streaming anchor when no player drives it. Phase 0 (Input).
type PatrolAnchor struct {
	route []geom.Vec2
	loop  float64 // closed route length
	next  int
	pos   geom.Vec2
	speed float64
}

func NewPatrolAnchor(route []geom.Vec2, speed float64) *PatrolAnchor {
	a := &PatrolAnchor{route: route, speed: speed}
	if len(route) > 0 {
		a.pos = route[0]
		a.next = 1 % len(route)
	}
	for i := range route {
		a.loop += route[i].Dist(route[(i+1)%len(route)])
	}
	return a
}

func (a *PatrolAnchor) Phase() coresys.Phase { return coresys.PhaseInput }

func (a *PatrolAnchor) AnchorPosition() (geom.Vec2, bool) {
	return a.pos, len(a.route) > 0
}

func (a *PatrolAnchor) Update(dt time.Duration) {
	if len(a.route) < 2 || a.loop == 0 {
		return
	}
	budget := math.Mod(a.speed*dt.Seconds(), a.loop)
	for budget > 0 {
		target := a.route[a.next]
		d := a.pos.Dist(target)
		if d > budget {
			a.pos = a.pos.Lerp(target, budget/d)
			return
		}
		a.pos = target
		budget -= d
		a.next = (a.next + 1) % len(a.route)
	}
}

// NearestTour orders points greedily by nearest neighbour starting from the
// point closest to start. Ties keep input order.
func NearestTour(points []geom.Vec2, start geom.Vec2) []geom.Vec2 {
	if len(points) == 0 {
		return nil
	}
	used := make([]bool, len(points))
	out := make([]geom.Vec2, 0, len(points))
	cur := start
	for len(out) < len(points) {
		best := -1
		bestD := 0.0
		for i, p := range points {
			if used[i] {
				continue
			}
			if d := cur.DistSq(p); best < 0 || d < bestD {
				best, bestD = i, d
			}
		}
		used[best] = true
		cur = points[best]
		out = append(out, cur)
	}
	return out
}
