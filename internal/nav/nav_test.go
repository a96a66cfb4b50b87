package nav

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/physics"
	"github.com/hotspotworld/server/internal/rng"
	"github.com/hotspotworld/server/internal/world"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func rect(x0, y0, x1, y1 float64) geom.Rect {
	return geom.Rect{Min: geom.Vec2{X: x0, Y: y0}, Max: geom.Vec2{X: x1, Y: y1}}
}

func newNav(t *testing.T, boxes ...geom.Rect) (*Navigator, *clock, *physics.Index) {
	t.Helper()
	ix := physics.NewIndex(100)
	for i, b := range boxes {
		ix.Add(physics.Collider{Owner: ecs.NewEntityID(uint32(i), 1), Bounds: b, IsStatic: true})
	}
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(DefaultConfig(), ix, zap.NewNop(), c.now), c, ix
}

// dijkstra is an exhaustive reference search over the same move rules.
func dijkstra(g *Grid, start, goal int) (int32, bool) {
	n := g.Cols * g.Rows
	dist := make([]int32, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.MaxInt32
	}
	dist[start] = 0
	for {
		cur := -1
		for i := 0; i < n; i++ {
			if !done[i] && dist[i] != math.MaxInt32 && (cur < 0 || dist[i] < dist[cur]) {
				cur = i
			}
		}
		if cur < 0 {
			return 0, false
		}
		if cur == goal {
			return dist[cur], true
		}
		done[cur] = true
		cc, cr := cur%g.Cols, cur/g.Cols
		for _, s := range steps {
			nc, nr := cc+s.dc, cr+s.dr
			if !g.walkable(nc, nr) {
				continue
			}
			if s.diagonal && (!g.walkable(nc, cr) || !g.walkable(cc, nr)) {
				continue
			}
			ni := g.index(nc, nr)
			if d := dist[cur] + s.cost; d < dist[ni] {
				dist[ni] = d
			}
		}
	}
}

func TestSearchMatchesDijkstra(t *testing.T) {
	r := rng.New("astar", "grids")
	var a arena
	for trial := 0; trial < 60; trial++ {
		g := NewGrid(world.Coord{}, geom.Vec2{}, 1, 14, 11)
		for i := range g.Walkable {
			g.Walkable[i] = r.Float64() > 0.3
		}
		var walk []int
		for i, w := range g.Walkable {
			if w {
				walk = append(walk, i)
			}
		}
		if len(walk) < 2 {
			continue
		}
		start := walk[r.Intn(len(walk))]
		goal := walk[r.Intn(len(walk))]

		want, reachable := dijkstra(g, start, goal)
		cells, cost, found := a.search(g, start, goal, 1<<20)
		require.Equal(t, reachable, found, "trial %d", trial)
		if !found {
			continue
		}
		assert.Equal(t, want, cost, "trial %d", trial)
		assert.Equal(t, start, cells[0])
		assert.Equal(t, goal, cells[len(cells)-1])

		// The route itself must be legal and add up to the reported cost.
		var sum int32
		for i := 1; i < len(cells); i++ {
			pc, pr := cells[i-1]%g.Cols, cells[i-1]/g.Cols
			cc, cr := cells[i]%g.Cols, cells[i]/g.Cols
			require.True(t, g.walkable(cc, cr))
			dc, dr := cc-pc, cr-pr
			require.LessOrEqual(t, max(abs(dc), abs(dr)), 1)
			if dc != 0 && dr != 0 {
				require.True(t, g.walkable(pc+dc, pr) && g.walkable(pc, pr+dr), "corner cut")
				sum += costDiagonal
			} else {
				sum += costStraight
			}
		}
		assert.Equal(t, cost, sum)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestSearchIterationCap(t *testing.T) {
	g := NewGrid(world.Coord{}, geom.Vec2{}, 1, 40, 40)
	var a arena
	_, _, found := a.search(g, 0, 40*40-1, 5)
	assert.False(t, found)
	_, cost, found := a.search(g, 0, 40*40-1, 1<<20)
	assert.True(t, found)
	assert.Equal(t, int32(39*costDiagonal), cost)
}

func blockedBy(p geom.Vec2, r geom.Rect) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func TestPathAroundObstacle(t *testing.T) {
	wall := rect(333, 0, 666, 800)
	n, _, _ := newNav(t, wall)
	from := geom.Vec2{X: 100, Y: 400}
	to := geom.Vec2{X: 900, Y: 400}

	path := n.FindPath(from, to, "")
	require.NotNil(t, path)
	assert.Equal(t, to, path[len(path)-1])

	prev := from
	below := false
	for _, p := range path {
		seg := p.Sub(prev)
		steps := int(seg.Len()/5) + 1
		for i := 0; i <= steps; i++ {
			q := prev.Lerp(p, float64(i)/float64(steps))
			require.False(t, blockedBy(q, wall), "path enters wall at %v", q)
		}
		if p.Y > 800 {
			below = true
		}
		prev = p
	}
	assert.True(t, below, "path goes around the open side")
	assert.Equal(t, 1, n.Stats().AStarRuns)
	assert.Equal(t, 1, n.Stats().GridBuilds)
}

func TestSmoothingDropsStraightRuns(t *testing.T) {
	n, _, _ := newNav(t)
	path := n.FindPath(geom.Vec2{X: 10, Y: 10}, geom.Vec2{X: 990, Y: 10}, "")
	assert.Equal(t, []geom.Vec2{{X: 990, Y: 10}}, path)

	pts := []geom.Vec2{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}}
	assert.Equal(t, []geom.Vec2{{X: 2, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}}, smooth(geom.Vec2{}, pts, 0.9))
}

func TestPathCache(t *testing.T) {
	n, clk, _ := newNav(t, rect(400, 300, 600, 700))
	from := geom.Vec2{X: 100, Y: 500}
	to := geom.Vec2{X: 900, Y: 500}

	first := n.FindPath(from, to, "agent-1")
	require.NotNil(t, first)
	second := n.FindPath(from, to.Add(geom.Vec2{X: 0, Y: 30}), "agent-1")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, n.Stats().AStarRuns)
	assert.Equal(t, 1, n.Stats().CacheHits)

	n.FindPath(from, to.Add(geom.Vec2{X: 0, Y: 80}), "agent-1")
	assert.Equal(t, 2, n.Stats().AStarRuns, "target moved past tolerance")

	clk.advance(3 * time.Second)
	n.FindPath(from, to.Add(geom.Vec2{X: 0, Y: 80}), "agent-1")
	assert.Equal(t, 3, n.Stats().AStarRuns, "expired entry recomputes")

	n.FindPath(from, to, "agent-2")
	assert.Equal(t, 4, n.Stats().AStarRuns, "cache is per agent")
	assert.Equal(t, 2, n.CachedPaths())

	clk.advance(10 * time.Second)
	assert.Equal(t, 3, n.Sweep(), "two paths and the grid")
	assert.Equal(t, 0, n.CachedPaths())
	assert.Equal(t, 0, n.CachedGrids())
}

func TestBlockedEndpoints(t *testing.T) {
	pillar := rect(480, 480, 520, 520)
	n, _, _ := newNav(t, pillar)
	to := geom.Vec2{X: 500, Y: 500}
	path := n.FindPath(geom.Vec2{X: 100, Y: 100}, to, "")
	require.NotNil(t, path)
	end := path[len(path)-1]
	assert.NotEqual(t, to, end)
	assert.False(t, blockedBy(end, pillar.Expand(DefaultConfig().AgentPadding)))
	assert.Less(t, end.Dist(to), 100.0)

	// Start inside an obstacle is moved out too.
	path = n.FindPath(to, geom.Vec2{X: 900, Y: 900}, "")
	require.NotNil(t, path)

	solid, _, _ := newNav(t, rect(-100, -100, 1100, 1100))
	assert.Nil(t, solid.FindPath(geom.Vec2{X: 100, Y: 100}, geom.Vec2{X: 900, Y: 900}, ""))
	_, _, err := solid.compute(geom.Vec2{X: 100, Y: 100}, geom.Vec2{X: 900, Y: 900})
	assert.True(t, errors.Is(err, ErrBlocked))
}

func TestUnreachableGoal(t *testing.T) {
	// A closed box around the goal leaves no route in.
	n, _, _ := newNav(t,
		rect(700, 700, 900, 720), rect(700, 880, 900, 900),
		rect(700, 700, 720, 900), rect(880, 700, 900, 900),
	)
	_, _, err := n.compute(geom.Vec2{X: 100, Y: 100}, geom.Vec2{X: 800, Y: 800})
	assert.True(t, errors.Is(err, ErrNoPath))
	assert.Equal(t, 1, n.Stats().AStarFailures)
	_, ok := n.NextWaypoint("a", geom.Vec2{X: 100, Y: 100}, geom.Vec2{X: 800, Y: 800})
	assert.False(t, ok)
}

func TestCrossRegionPath(t *testing.T) {
	n, _, _ := newNav(t)
	from := geom.Vec2{X: 500, Y: 500}
	to := geom.Vec2{X: 1500, Y: 520}

	path := n.FindPath(from, to, "runner")
	require.GreaterOrEqual(t, len(path), 2)
	assert.Equal(t, to, path[len(path)-1], "raw target is appended")
	boundary := path[len(path)-2]
	assert.InDelta(t, 990, boundary.X, 1e-9)
	assert.InDelta(t, 509.8, boundary.Y, 1e-9)

	// Vertical crossing when only the row differs.
	path = n.FindPath(geom.Vec2{X: 500, Y: 500}, geom.Vec2{X: 520, Y: -400}, "")
	require.GreaterOrEqual(t, len(path), 2)
	assert.InDelta(t, 10, path[len(path)-2].Y, 1e-9)
}

func TestNextWaypointAdvances(t *testing.T) {
	n, _, _ := newNav(t, rect(400, 300, 600, 700))
	from := geom.Vec2{X: 100, Y: 500}
	to := geom.Vec2{X: 900, Y: 500}

	pos := from
	for i := 0; i < 400 && pos.Dist(to) > 1; i++ {
		wp, ok := n.NextWaypoint("walker", pos, to)
		require.True(t, ok)
		d := wp.Sub(pos)
		if d.Len() <= 10 {
			pos = wp
		} else {
			pos = pos.Add(d.Norm().Scale(10))
		}
	}
	assert.InDelta(t, 0, pos.Dist(to), 1)
	assert.Equal(t, 1, n.Stats().AStarRuns)
}

func TestRegionHooksDropGrids(t *testing.T) {
	n, _, ix := newNav(t)
	n.Grid(world.Coord{})
	n.Grid(world.Coord{X: 5})
	require.Equal(t, 2, n.CachedGrids())

	n.OnRegionUnload(world.Coord{X: 1})
	assert.Equal(t, 1, n.CachedGrids())

	// A collider added while the region loads shows up after invalidation.
	ix.Add(physics.Collider{Owner: ecs.NewEntityID(50, 1), Bounds: rect(5100, 100, 5200, 200), IsStatic: true})
	assert.True(t, n.Grid(world.Coord{X: 5}).walkable(6, 6))
	n.OnRegionLoad(world.Coord{X: 5}, nil)
	assert.False(t, n.Grid(world.Coord{X: 5}).walkable(6, 6))
}

func TestSpiralOrder(t *testing.T) {
	g := NewGrid(world.Coord{}, geom.Vec2{}, 1, 9, 9)
	for i := range g.Walkable {
		g.Walkable[i] = false
	}
	g.Walkable[g.index(6, 4)] = true
	g.Walkable[g.index(2, 2)] = true

	c, r, ok := g.spiral(4, 4, 1)
	assert.False(t, ok)
	c, r, ok = g.spiral(4, 4, 2)
	require.True(t, ok)
	assert.Equal(t, [2]int{2, 2}, [2]int{c, r}, "top-left corner is scanned before the right edge")
}
