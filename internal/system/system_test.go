package system

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/core/event"
	coresys "github.com/hotspotworld/server/internal/core/system"
	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/nav"
	"github.com/hotspotworld/server/internal/physics"
	"github.com/hotspotworld/server/internal/world"
	"github.com/hotspotworld/server/internal/worldgen"
)

var testWorld *worldgen.World

func generated(t *testing.T) *worldgen.World {
	t.Helper()
	if testWorld == nil {
		roles, err := data.LoadRoleTable("")
		require.NoError(t, err)
		testWorld, _ = worldgen.Generate(worldgen.DefaultParams("W-2024-01"), roles, nil, zap.NewNop())
	}
	return testWorld
}

type fixedAnchor struct {
	pos geom.Vec2
	ok  bool
}

func (a *fixedAnchor) AnchorPosition() (geom.Vec2, bool) { return a.pos, a.ok }

// noContent suppresses population so only test content exists.
type noContent struct{}

func (noContent) SpawnDensity(world.DensityContext) float64 { return 0 }
func (noContent) EnemyTier(float64) int                     { return 1 }

// placeHook registers one entity when its region loads, dynamic unless static
// is set.
type placeHook struct {
	at     world.Coord
	pos    geom.Vec2
	id     ecs.EntityID
	static bool
}

func (h *placeHook) OnRegionLoad(c world.Coord, reg world.ContentRegistrar) {
	if c == h.at && h.id.IsZero() {
		h.id = reg.Register(world.ContentSpec{Purpose: world.PurposeExternal, Kind: "agent", Pos: h.pos, Dynamic: !h.static, Tier: 1, POI: -1})
	}
}

func (h *placeHook) OnRegionUnload(world.Coord) {}

type harness struct {
	ecs       *ecs.World
	bus       *event.Bus
	colliders *physics.Index
	streamer  *world.Streamer
	nav       *nav.Navigator
	agents    *Agents
	anchor    *fixedAnchor
	runner    *coresys.Runner
}

func newHarness(t *testing.T, hooks ...world.RegionHook) *harness {
	t.Helper()
	content, err := data.LoadContentTable("")
	require.NoError(t, err)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	h := &harness{
		ecs:       ecs.NewWorld(),
		bus:       event.NewBus(),
		colliders: physics.NewIndex(250),
		anchor:    &fixedAnchor{},
		runner:    coresys.NewRunner(),
	}
	h.nav = nav.New(nav.DefaultConfig(), h.colliders, zap.NewNop(), now)
	h.agents = NewAgents(h.ecs, h.nav, 120, nil)
	h.streamer = world.NewStreamer(world.Config{RegionSize: 1000, RenderDistance: 1, TilesPerSide: 10}, world.Deps{
		World:     generated(t),
		Content:   content,
		ECS:       h.ecs,
		Colliders: h.colliders,
		Density:   noContent{},
		Spawner:   h.agents,
		Bus:       h.bus,
		Log:       zap.NewNop(),
		Now:       now,
	})
	for _, hook := range hooks {
		h.streamer.AddHook(hook)
	}
	h.streamer.AddHook(h.nav)

	h.runner.Register(NewCleanupSystem(h.ecs, zap.NewNop()))
	h.runner.Register(NewNavSweepSystem(h.nav, zap.NewNop()))
	h.runner.Register(NewAgentSystem(AgentConfig{Reach: 16, ChaseRadius: 1500}, h.agents, h.streamer, h.nav, h.anchor, h.bus, zap.NewNop()))
	h.runner.Register(NewStreamSystem(h.streamer, h.anchor, zap.NewNop()))
	h.runner.Register(NewEventDispatchSystem(h.bus))
	return h
}

// quietRegion finds a region with no POI in or next to it whose straight
// line from->to (given as offsets from the region origin) stays dry.
func quietRegion(t *testing.T, from, to geom.Vec2) world.Coord {
	t.Helper()
	w := generated(t)
	for x := 0; x < 40; x++ {
		c := world.Coord{X: x, Y: 3}
		origin := geom.Vec2{X: float64(c.X) * 1000, Y: float64(c.Y) * 1000}
		around := geom.Rect{
			Min: origin.Sub(geom.Vec2{X: 1000, Y: 1000}),
			Max: origin.Add(geom.Vec2{X: 2000, Y: 2000}),
		}
		if len(w.POIsIn(around)) > 0 {
			continue
		}
		dry := true
		a, b := origin.Add(from), origin.Add(to)
		for i := 0; i <= 50 && dry; i++ {
			p := a.Lerp(b, float64(i)/50)
			dry = !w.TerrainAt(p.X, p.Y).InWater
		}
		if dry {
			return c
		}
	}
	t.Fatal("no quiet region found")
	return world.Coord{}
}

func TestPatrolAnchorWalksRoute(t *testing.T) {
	a := NewPatrolAnchor([]geom.Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}, 50)
	pos, ok := a.AnchorPosition()
	require.True(t, ok)
	assert.Equal(t, geom.Vec2{}, pos)

	a.Update(time.Second)
	pos, _ = a.AnchorPosition()
	assert.InDelta(t, 50, pos.X, 1e-9)
	assert.InDelta(t, 0, pos.Y, 1e-9)

	a.Update(3 * time.Second)
	pos, _ = a.AnchorPosition()
	assert.InDelta(t, 100, pos.X, 1e-9)
	assert.InDelta(t, 100, pos.Y, 1e-9)

	a.Update(time.Second)
	pos, _ = a.AnchorPosition()
	want := 100 * (1 - 50/math.Hypot(100, 100))
	assert.InDelta(t, want, pos.X, 1e-9)
	assert.InDelta(t, want, pos.Y, 1e-9)

	empty := NewPatrolAnchor(nil, 50)
	empty.Update(time.Second)
	_, ok = empty.AnchorPosition()
	assert.False(t, ok)
}

func TestNearestTour(t *testing.T) {
	got := NearestTour([]geom.Vec2{{X: 10}, {X: -1}, {X: 5}}, geom.Vec2{})
	assert.Equal(t, []geom.Vec2{{X: -1}, {X: 5}, {X: 10}}, got)
	assert.Nil(t, NearestTour(nil, geom.Vec2{}))
}

func TestEventDispatchDeliversNextTick(t *testing.T) {
	bus := event.NewBus()
	sys := NewEventDispatchSystem(bus)
	var got []event.RegionCoord
	event.Subscribe(bus, func(ev event.RegionLoaded) { got = append(got, ev.Coord) })

	event.Emit(bus, event.RegionLoaded{Coord: event.RegionCoord{X: 1, Y: 2}})
	assert.Empty(t, got)

	sys.Update(0)
	assert.Equal(t, []event.RegionCoord{{X: 1, Y: 2}}, got)

	sys.Update(0)
	assert.Len(t, got, 1, "events are delivered once")
}

func TestStreamSystemFollowsAnchor(t *testing.T) {
	h := newHarness(t)

	h.runner.Tick(100 * time.Millisecond)
	assert.Empty(t, h.streamer.Loaded(), "no anchor, no pass")

	h.anchor.pos, h.anchor.ok = geom.Vec2{X: 500, Y: 500}, true
	h.runner.Tick(100 * time.Millisecond)
	assert.Len(t, h.streamer.Loaded(), 9)
	assert.Equal(t, world.Coord{}, h.streamer.Center())

	h.anchor.pos = geom.Vec2{X: 3500, Y: 500}
	h.runner.Tick(100 * time.Millisecond)
	assert.Equal(t, world.Coord{X: 3, Y: 0}, h.streamer.Center())
	for _, c := range h.streamer.Loaded() {
		assert.LessOrEqual(t, world.Chebyshev(c, world.Coord{X: 3, Y: 0}), 1)
	}
}

func TestAgentChasesAnchor(t *testing.T) {
	from, to := geom.Vec2{X: 200, Y: 500}, geom.Vec2{X: 700, Y: 500}
	c := quietRegion(t, from, to)
	origin := geom.Vec2{X: float64(c.X) * 1000, Y: float64(c.Y) * 1000}
	hook := &placeHook{at: c, pos: origin.Add(from)}
	h := newHarness(t, hook)
	h.anchor.pos, h.anchor.ok = origin.Add(to), true

	h.runner.Tick(100 * time.Millisecond)
	require.False(t, hook.id.IsZero())
	ag, ok := h.agents.Store().Get(hook.id)
	require.True(t, ok)
	assert.Equal(t, 120.0, ag.Speed)

	start, _ := h.streamer.Content(hook.id)
	d0 := start.Pos.Dist(h.anchor.pos)
	for i := 0; i < 20; i++ {
		h.runner.Tick(100 * time.Millisecond)
	}
	now, ok := h.streamer.Content(hook.id)
	require.True(t, ok)
	assert.False(t, now.Pos.IsNaN())
	assert.Less(t, now.Pos.Dist(h.anchor.pos), d0-50)
	assert.True(t, ag.Active)
}

func TestAgentSystemSkipsStaticContent(t *testing.T) {
	from, to := geom.Vec2{X: 200, Y: 500}, geom.Vec2{X: 700, Y: 500}
	c := quietRegion(t, from, to)
	origin := geom.Vec2{X: float64(c.X) * 1000, Y: float64(c.Y) * 1000}
	hook := &placeHook{at: c, pos: origin.Add(from), static: true}
	h := newHarness(t, hook)
	h.anchor.pos, h.anchor.ok = origin.Add(to), true

	h.runner.Tick(100 * time.Millisecond)
	require.False(t, hook.id.IsZero())
	_, ok := h.agents.Store().Get(hook.id)
	require.False(t, ok)

	ag := &Agent{Speed: 120}
	h.agents.Store().Set(hook.id, ag)
	for i := 0; i < 5; i++ {
		h.runner.Tick(100 * time.Millisecond)
	}
	now, ok := h.streamer.Content(hook.id)
	require.True(t, ok)
	assert.Equal(t, origin.Add(from), now.Pos)
	assert.False(t, ag.Active)
}

func TestAgentIgnoresDistantAnchor(t *testing.T) {
	hook := &placeHook{at: world.Coord{X: 1, Y: 0}, pos: geom.Vec2{X: 1900, Y: 500}}
	h := newHarness(t, hook)
	h.anchor.pos, h.anchor.ok = geom.Vec2{X: 100, Y: 500}, true

	for i := 0; i < 5; i++ {
		h.runner.Tick(100 * time.Millisecond)
	}
	require.False(t, hook.id.IsZero())
	c, ok := h.streamer.Content(hook.id)
	require.True(t, ok)
	assert.Equal(t, geom.Vec2{X: 1900, Y: 500}, c.Pos)
	ag, ok := h.agents.Store().Get(hook.id)
	require.True(t, ok)
	assert.False(t, ag.Active)
	assert.Equal(t, 0, h.nav.CachedPaths())
}

func TestAgentStuckBehindWall(t *testing.T) {
	from, to := geom.Vec2{X: 200, Y: 500}, geom.Vec2{X: 500, Y: 500}
	c := quietRegion(t, from, to)
	origin := geom.Vec2{X: float64(c.X) * 1000, Y: float64(c.Y) * 1000}
	hook := &placeHook{at: c, pos: origin.Add(from)}
	h := newHarness(t, hook)
	target := origin.Add(to)

	// A closed ring around the target: no path exists and the direct line
	// runs into the west wall.
	ring := []geom.Rect{
		{Min: target.Add(geom.Vec2{X: -100, Y: -100}), Max: target.Add(geom.Vec2{X: 100, Y: -80})},
		{Min: target.Add(geom.Vec2{X: -100, Y: 80}), Max: target.Add(geom.Vec2{X: 100, Y: 100})},
		{Min: target.Add(geom.Vec2{X: -100, Y: -100}), Max: target.Add(geom.Vec2{X: -80, Y: 100})},
		{Min: target.Add(geom.Vec2{X: 80, Y: -100}), Max: target.Add(geom.Vec2{X: 100, Y: 100})},
	}
	for i, r := range ring {
		h.colliders.Add(physics.Collider{Owner: ecs.NewEntityID(uint32(1<<20+i), 1), Bounds: r, IsStatic: true})
	}

	var stuck []event.AgentStuck
	event.Subscribe(h.bus, func(ev event.AgentStuck) { stuck = append(stuck, ev) })

	h.anchor.pos, h.anchor.ok = target, true
	for i := 0; i < 80; i++ {
		h.runner.Tick(100 * time.Millisecond)
	}

	require.Len(t, stuck, 1)
	assert.Equal(t, hook.id, stuck[0].Entity)
	assert.Equal(t, target, stuck[0].Target)
	pos, _ := h.streamer.Content(hook.id)
	assert.Less(t, pos.Pos.X, target.X-80, "agent stops outside the wall")
	assert.Nil(t, h.nav.FindPath(pos.Pos, target, "probe"))
}

func TestDespawnForgetsPath(t *testing.T) {
	from, to := geom.Vec2{X: 200, Y: 500}, geom.Vec2{X: 700, Y: 500}
	c := quietRegion(t, from, to)
	origin := geom.Vec2{X: float64(c.X) * 1000, Y: float64(c.Y) * 1000}
	hook := &placeHook{at: c, pos: origin.Add(from)}
	h := newHarness(t, hook)
	h.anchor.pos, h.anchor.ok = origin.Add(to), true

	h.runner.Tick(100 * time.Millisecond)
	h.runner.Tick(100 * time.Millisecond)
	require.Equal(t, 1, h.nav.CachedPaths())

	h.streamer.UnloadAll()
	assert.Equal(t, 0, h.nav.CachedPaths())
	h.runner.TickPhase(coresys.PhaseCleanup, 0)
	assert.False(t, h.ecs.Alive(hook.id))
	assert.False(t, h.agents.Store().Has(hook.id))
}
