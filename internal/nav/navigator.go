// Package nav answers path queries over per-region walkability grids built
// from static colliders.
package nav

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/physics"
	"github.com/hotspotworld/server/internal/world"
)

var (
	ErrNoPath  = errors.New("nav: no path")
	ErrBlocked = errors.New("nav: endpoint blocked")
)

type Config struct {
	RegionSize      float64
	CellSize        float64
	AgentPadding    float64
	QueryPadding    float64
	GridTTL         time.Duration
	PathTTL         time.Duration
	TargetTolerance float64
	MaxPathLength   int
	SpiralRadius    int
	SmoothDot       float64
	ArriveRadius    float64 // a waypoint closer than this counts as reached
}

func DefaultConfig() Config {
	return Config{
		RegionSize:      1000,
		CellSize:        20,
		AgentPadding:    8,
		QueryPadding:    40,
		GridTTL:         5 * time.Second,
		PathTTL:         2 * time.Second,
		TargetTolerance: 50,
		MaxPathLength:   256,
		SpiralRadius:    6,
		SmoothDot:       0.9,
		ArriveRadius:    12,
	}
}

// Stats are cumulative counters.
type Stats struct {
	AStarRuns     int
	AStarFailures int
	CacheHits     int
	CacheMisses   int
	GridBuilds    int
	Evictions     int
}

type cacheEntry struct {
	agentID  string
	path     []geom.Vec2
	cachedAt time.Time
	target   geom.Vec2
	hybrid   bool // ends with a raw cross-region target
	cursor   int
}

// Navigator owns the grid and path caches. Accessed only from the game loop
// goroutine.
type Navigator struct {
	cfg    Config
	source physics.ColliderSource
	log    *zap.Logger
	now    func() time.Time

	grids map[world.Coord]*Grid
	cache map[string]*cacheEntry
	arena arena
	stats Stats
}

// New builds a navigator. now may be nil to use the wall clock.
func New(cfg Config, source physics.ColliderSource, log *zap.Logger, now func() time.Time) *Navigator {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Navigator{
		cfg:    cfg,
		source: source,
		log:    log,
		now:    now,
		grids:  make(map[world.Coord]*Grid),
		cache:  make(map[string]*cacheEntry),
	}
}

func (n *Navigator) Stats() Stats { return n.stats }

// CachedPaths and CachedGrids report current cache sizes.
func (n *Navigator) CachedPaths() int { return len(n.cache) }
func (n *Navigator) CachedGrids() int { return len(n.grids) }

func (n *Navigator) regionOf(p geom.Vec2) world.Coord {
	return world.Coord{
		X: int(math.Floor(p.X / n.cfg.RegionSize)),
		Y: int(math.Floor(p.Y / n.cfg.RegionSize)),
	}
}

// Grid returns the walkability grid for c, rebuilding it when missing or
// older than GridTTL.
func (n *Navigator) Grid(c world.Coord) *Grid {
	now := n.now()
	if g, ok := n.grids[c]; ok && now.Sub(g.BuiltAt) < n.cfg.GridTTL {
		return g
	}
	g := buildGrid(c, n.cfg, n.source, now)
	n.grids[c] = g
	n.stats.GridBuilds++
	return g
}

// Invalidate drops the cached grid of c and its neighbours, whose padded
// queries may have seen the same colliders.
func (n *Navigator) Invalidate(c world.Coord) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			delete(n.grids, world.Coord{X: c.X + dx, Y: c.Y + dy})
		}
	}
}

// OnRegionLoad invalidates grids around a freshly populated region.
func (n *Navigator) OnRegionLoad(c world.Coord, _ world.ContentRegistrar) {
	n.Invalidate(c)
}

// OnRegionUnload drops the region's grid.
func (n *Navigator) OnRegionUnload(c world.Coord) {
	n.Invalidate(c)
}

// Forget drops an agent's cached path.
func (n *Navigator) Forget(agentID string) {
	delete(n.cache, agentID)
}

// Sweep evicts expired paths and grids. Returns the number evicted.
func (n *Navigator) Sweep() int {
	now := n.now()
	evicted := 0
	for id, e := range n.cache {
		if now.Sub(e.cachedAt) >= n.cfg.PathTTL {
			delete(n.cache, id)
			evicted++
		}
	}
	for c, g := range n.grids {
		if now.Sub(g.BuiltAt) >= n.cfg.GridTTL {
			delete(n.grids, c)
			evicted++
		}
	}
	n.stats.Evictions += evicted
	return evicted
}

// FindPath returns waypoints from `from` to `to`, excluding the start
// position, or nil when no path exists. With a non-empty agentID the result
// is cached and reused while fresh and the target has not moved beyond
// TargetTolerance.
func (n *Navigator) FindPath(from, to geom.Vec2, agentID string) []geom.Vec2 {
	if e := n.cached(agentID, to); e != nil {
		return e.path
	}
	path, hybrid, err := n.compute(from, to)
	if err != nil {
		if agentID != "" {
			delete(n.cache, agentID)
		}
		n.log.Debug("path query failed",
			zap.String("agent", agentID),
			zap.Float64("from_x", from.X), zap.Float64("from_y", from.Y),
			zap.Float64("to_x", to.X), zap.Float64("to_y", to.Y),
			zap.Error(err),
		)
		return nil
	}
	if agentID != "" {
		n.cache[agentID] = &cacheEntry{
			agentID:  agentID,
			path:     path,
			cachedAt: n.now(),
			target:   to,
			hybrid:   hybrid,
		}
	}
	return path
}

func (n *Navigator) cached(agentID string, to geom.Vec2) *cacheEntry {
	if agentID == "" {
		return nil
	}
	e, ok := n.cache[agentID]
	if ok && n.now().Sub(e.cachedAt) < n.cfg.PathTTL && e.target.Dist(to) <= n.cfg.TargetTolerance {
		n.stats.CacheHits++
		return e
	}
	n.stats.CacheMisses++
	return nil
}

// NextWaypoint returns the waypoint an agent at current should head for.
// Reached waypoints are skipped. ok is false when no path exists.
func (n *Navigator) NextWaypoint(agentID string, current, target geom.Vec2) (geom.Vec2, bool) {
	path := n.FindPath(current, target, agentID)
	if path == nil {
		return geom.Vec2{}, false
	}
	e := n.cache[agentID]
	if e == nil {
		return path[0], true
	}
	for e.cursor < len(e.path)-1 && current.Dist(e.path[e.cursor]) <= n.cfg.ArriveRadius {
		e.cursor++
	}
	// The trailing raw target of a cross-region path is refined once the
	// agent has crossed over.
	if e.hybrid && e.cursor == len(e.path)-1 && n.regionOf(current) != n.regionOf(e.path[0]) {
		delete(n.cache, agentID)
		path = n.FindPath(current, target, agentID)
		if path == nil {
			return geom.Vec2{}, false
		}
		return path[0], true
	}
	return e.path[e.cursor], true
}

// compute runs an uncached query. hybrid reports a cross-region result.
func (n *Navigator) compute(from, to geom.Vec2) ([]geom.Vec2, bool, error) {
	if from.IsNaN() || to.IsNaN() {
		return nil, false, ErrNoPath
	}
	rs, rg := n.regionOf(from), n.regionOf(to)
	g := n.Grid(rs)

	goal := to
	hybrid := rs != rg
	if hybrid {
		goal = n.crossing(g, from, to, rs, rg)
	}

	sc, sr := g.Locate(from)
	sc, sr, ok := g.spiral(sc, sr, n.cfg.SpiralRadius)
	if !ok {
		return nil, hybrid, ErrBlocked
	}
	gc0, gr0 := g.Locate(goal)
	gc, gr, ok := g.spiral(gc0, gr0, n.cfg.SpiralRadius)
	if !ok {
		return nil, hybrid, ErrBlocked
	}
	goalMoved := gc != gc0 || gr != gr0

	n.stats.AStarRuns++
	cells, _, found := n.arena.search(g, g.index(sc, sr), g.index(gc, gr), n.cfg.MaxPathLength*50)
	if !found {
		n.stats.AStarFailures++
		return nil, hybrid, ErrNoPath
	}

	pts := make([]geom.Vec2, 0, len(cells))
	for _, i := range cells[1:] {
		pts = append(pts, g.Center(i%g.Cols, i/g.Cols))
	}
	switch {
	case goalMoved:
		if len(pts) == 0 {
			pts = append(pts, g.Center(gc, gr))
		}
	case len(pts) == 0:
		pts = append(pts, goal)
	default:
		pts[len(pts)-1] = goal
	}
	pts = smooth(from, pts, n.cfg.SmoothDot)
	if hybrid {
		pts = append(pts, to)
	}
	return pts, hybrid, nil
}

// crossing picks the point on the start region's edge where the straight
// line from `from` to `to` leaves it, inset by half a cell. The axis is the
// one along which the regions differ; when both differ the dominant axis of
// travel wins.
func (n *Navigator) crossing(g *Grid, from, to geom.Vec2, rs, rg world.Coord) geom.Vec2 {
	b := g.Bounds()
	inset := g.CellSize / 2
	d := to.Sub(from)
	alongX := rs.X != rg.X && (rs.Y == rg.Y || math.Abs(d.X) >= math.Abs(d.Y))

	if alongX {
		x := b.Min.X + inset
		if d.X > 0 {
			x = b.Max.X - inset
		}
		t := 0.0
		if d.X != 0 {
			t = (x - from.X) / d.X
		}
		y := geom.Clamp(from.Y+t*d.Y, b.Min.Y+inset, b.Max.Y-inset)
		return geom.Vec2{X: x, Y: y}
	}
	y := b.Min.Y + inset
	if d.Y > 0 {
		y = b.Max.Y - inset
	}
	t := 0.0
	if d.Y != 0 {
		t = (y - from.Y) / d.Y
	}
	x := geom.Clamp(from.X+t*d.X, b.Min.X+inset, b.Max.X-inset)
	return geom.Vec2{X: x, Y: y}
}

// smooth drops interior waypoints where the heading barely changes. The last
// waypoint is always kept.
func smooth(from geom.Vec2, pts []geom.Vec2, dot float64) []geom.Vec2 {
	if len(pts) < 2 {
		return pts
	}
	out := make([]geom.Vec2, 0, len(pts))
	prev := from
	for i := 0; i < len(pts)-1; i++ {
		in := pts[i].Sub(prev).Norm()
		outDir := pts[i+1].Sub(pts[i]).Norm()
		prev = pts[i]
		if in.Dot(outDir) > dot {
			continue
		}
		out = append(out, pts[i])
	}
	return append(out, pts[len(pts)-1])
}
