package world

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/core/event"
	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/noise"
	"github.com/hotspotworld/server/internal/physics"
	"github.com/hotspotworld/server/internal/worldgen"
)

// Config sizes the streaming window.
type Config struct {
	RegionSize     float64
	RenderDistance int
	TilesPerSide   int
	MaxEnemies     int  // 0 uses the content table value
	Debug          bool // ownership violations panic instead of self-healing
}

func DefaultConfig() Config {
	return Config{RegionSize: 1000, RenderDistance: 2, TilesPerSide: 40}
}

// Deps are the streamer's collaborators. World, Content and ECS are
// required; the rest fall back to defaults when nil.
type Deps struct {
	World     *worldgen.World
	Climate   *noise.Climate
	Content   *data.ContentTable
	ECS       *ecs.World
	Colliders *physics.Index
	Density   DensityModel
	Spawner   Spawner
	Bus       *event.Bus
	Log       *zap.Logger
	Now       func() time.Time
}

// PassStats counts what one Update did.
type PassStats struct {
	Loaded    int
	Unloaded  int
	Migrated  int
	Destroyed int
	Orphans   int
}

// Streamer keeps the regions around the anchor loaded and owns everything
// spawned into them. Accessed only from the game loop goroutine.
type Streamer struct {
	cfg       Config
	gen       *worldgen.World
	climate   *noise.Climate
	table     *data.ContentTable
	ecs       *ecs.World
	store     *ecs.PtrComponentStore[Content]
	colliders *physics.Index
	density   DensityModel
	spawner   Spawner
	bus       *event.Bus
	log       *zap.Logger
	now       func() time.Time

	regions map[Coord]*Region
	hooks   []RegionHook
	center  Coord
	pass    PassStats
	totals  PassStats
}

func NewStreamer(cfg Config, d Deps) *Streamer {
	if cfg.RegionSize <= 0 {
		cfg.RegionSize = 1000
	}
	if cfg.TilesPerSide <= 0 {
		cfg.TilesPerSide = 40
	}
	if cfg.RenderDistance < 0 {
		cfg.RenderDistance = 0
	}
	if cfg.MaxEnemies == 0 {
		cfg.MaxEnemies = d.Content.MaxEnemies()
	}
	s := &Streamer{
		cfg:       cfg,
		gen:       d.World,
		climate:   d.Climate,
		table:     d.Content,
		ecs:       d.ECS,
		store:     ecs.NewPtrComponentStore[Content](),
		colliders: d.Colliders,
		density:   d.Density,
		spawner:   d.Spawner,
		bus:       d.Bus,
		log:       d.Log,
		now:       d.Now,
		regions:   make(map[Coord]*Region),
	}
	s.ecs.Registry().Register(s.store)
	if s.climate == nil {
		s.climate = noise.NewClimate(d.World.Seed(), noise.DefaultParams())
	}
	if s.colliders == nil {
		s.colliders = physics.NewIndex(250)
	}
	if s.density == nil {
		s.density = DefaultDensity{MaxTier: d.Content.MaxTier()}
	}
	if s.spawner == nil {
		s.spawner = nopSpawner{}
	}
	if s.bus == nil {
		s.bus = event.NewBus()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// AddHook registers a lifecycle hook. Hooks run in registration order.
func (s *Streamer) AddHook(h RegionHook) {
	s.hooks = append(s.hooks, h)
}

func (s *Streamer) Config() Config                         { return s.cfg }
func (s *Streamer) Colliders() *physics.Index              { return s.colliders }
func (s *Streamer) Store() *ecs.PtrComponentStore[Content] { return s.store }
func (s *Streamer) Totals() PassStats                      { return s.totals }
func (s *Streamer) Center() Coord                          { return s.center }

// RegionOf maps a world position to its region coordinate.
func (s *Streamer) RegionOf(p geom.Vec2) Coord {
	return coordOf(p, s.cfg.RegionSize)
}

// RegionBounds returns the world rect covered by c.
func (s *Streamer) RegionBounds(c Coord) geom.Rect {
	o := geom.Vec2{X: float64(c.X) * s.cfg.RegionSize, Y: float64(c.Y) * s.cfg.RegionSize}
	return geom.Rect{Min: o, Max: o.Add(geom.Vec2{X: s.cfg.RegionSize, Y: s.cfg.RegionSize})}
}

// Region returns a loaded region.
func (s *Streamer) Region(c Coord) (*Region, bool) {
	r, ok := s.regions[c]
	return r, ok
}

func (s *Streamer) IsLoaded(c Coord) bool {
	_, ok := s.regions[c]
	return ok
}

// Loaded returns the loaded coordinates in row-major order.
func (s *Streamer) Loaded() []Coord {
	out := make([]Coord, 0, len(s.regions))
	for c := range s.regions {
		out = append(out, c)
	}
	slices.SortFunc(out, lessCoord)
	return out
}

// Content returns the component of a live region-owned entity.
func (s *Streamer) Content(id ecs.EntityID) (*Content, bool) {
	return s.store.Get(id)
}

// OwnerOf returns the coordinate of the region that owns id.
func (s *Streamer) OwnerOf(id ecs.EntityID) (Coord, bool) {
	c, ok := s.store.Get(id)
	if !ok {
		return Coord{}, false
	}
	return c.Owner, true
}

// DynamicContent lists live dynamic entities in ascending ID order.
func (s *Streamer) DynamicContent() []ecs.EntityID {
	var out []ecs.EntityID
	s.store.EachSorted(func(id ecs.EntityID, c *Content) {
		if c.Dynamic {
			out = append(out, id)
		}
	})
	return out
}

// MoveContent updates the position of a dynamic entity. Ownership is left
// alone until its owning region unloads.
func (s *Streamer) MoveContent(id ecs.EntityID, pos geom.Vec2) bool {
	c, ok := s.store.Get(id)
	if !ok || !c.Dynamic || pos.IsNaN() {
		return false
	}
	c.Pos = pos
	return true
}

func (s *Streamer) Danger(x, y float64) float64 { return s.gen.Danger(x, y) }
func (s *Streamer) Height(x, y float64) float64 { return s.gen.Height(x, y) }
func (s *Streamer) TerrainAt(x, y float64) worldgen.TerrainInfo {
	return s.gen.TerrainAt(x, y)
}

// Update runs one complete streaming pass around anchor: unload everything
// outside the window, then load everything missing inside it, nearest first.
// The ownership audit runs at the end of every pass.
func (s *Streamer) Update(anchor geom.Vec2) (PassStats, error) {
	s.pass = PassStats{}
	if anchor.IsNaN() {
		s.log.Warn("streamer anchor is NaN, skipping pass")
		return s.pass, nil
	}
	s.center = s.RegionOf(anchor)
	rd := s.cfg.RenderDistance

	desired := make(map[Coord]struct{}, (2*rd+1)*(2*rd+1))
	for dy := -rd; dy <= rd; dy++ {
		for dx := -rd; dx <= rd; dx++ {
			desired[Coord{X: s.center.X + dx, Y: s.center.Y + dy}] = struct{}{}
		}
	}

	var unload []Coord
	leaving := make(map[Coord]struct{})
	for c := range s.regions {
		if _, keep := desired[c]; !keep {
			unload = append(unload, c)
			leaving[c] = struct{}{}
		}
	}
	slices.SortFunc(unload, lessCoord)
	for _, c := range unload {
		s.unload(c, leaving)
	}

	var load []Coord
	for c := range desired {
		if _, ok := s.regions[c]; !ok {
			load = append(load, c)
		}
	}
	slices.SortFunc(load, func(a, b Coord) int {
		if da, db := Chebyshev(a, s.center), Chebyshev(b, s.center); da != db {
			return da - db
		}
		return lessCoord(a, b)
	})
	for _, c := range load {
		s.load(c)
	}

	err := s.CheckOwnership()
	s.totals.Loaded += s.pass.Loaded
	s.totals.Unloaded += s.pass.Unloaded
	s.totals.Migrated += s.pass.Migrated
	s.totals.Destroyed += s.pass.Destroyed
	s.totals.Orphans += s.pass.Orphans
	return s.pass, err
}

// UnloadAll drops every region, destroying all owned content.
func (s *Streamer) UnloadAll() {
	for _, c := range s.Loaded() {
		s.unloadWith(c, false, nil)
	}
}

func (s *Streamer) load(c Coord) {
	r := newRegion(c, s.cfg.RegionSize, s.now())
	s.regions[c] = r
	tiles := s.summarize(r)
	s.populate(r, tiles)

	reg := registrar{s: s, r: r}
	for _, h := range s.hooks {
		h.OnRegionLoad(c, reg)
	}

	s.pass.Loaded++
	event.Emit(s.bus, event.RegionLoaded{Coord: c, Content: r.ContentCount()})
	s.log.Debug("region loaded",
		zap.Int("x", c.X), zap.Int("y", c.Y),
		zap.String("biome", r.Summary.Biome),
		zap.Int("content", r.ContentCount()),
	)
}

// unload releases c, moving dynamic content into a region that stays loaded
// through this pass. Regions in leaving are about to unload and never receive
// content.
func (s *Streamer) unload(c Coord, leaving map[Coord]struct{}) {
	s.unloadWith(c, true, leaving)
}

// unloadWith releases region c. Dynamic content standing in another loaded
// region outside leaving moves there when transfer is set; everything else
// is destroyed.
func (s *Streamer) unloadWith(c Coord, transfer bool, leaving map[Coord]struct{}) {
	r, ok := s.regions[c]
	if !ok {
		return
	}
	delete(s.regions, c)

	migrated, destroyed := 0, 0
	for _, id := range r.Content() {
		content, ok := s.store.Get(id)
		if !ok {
			r.content.Remove(id)
			continue
		}
		if transfer && content.Dynamic {
			dest := s.RegionOf(content.Pos)
			_, gone := leaving[dest]
			if target, loaded := s.regions[dest]; loaded && !gone {
				r.content.Remove(id)
				target.content.Put(id)
				content.Owner = dest
				migrated++
				event.Emit(s.bus, event.ContentMigrated{Entity: id, From: c, To: dest})
				continue
			}
		}
		s.destroy(r, id, content, false)
		destroyed++
	}

	for _, h := range s.hooks {
		h.OnRegionUnload(c)
	}

	s.pass.Unloaded++
	s.pass.Migrated += migrated
	s.pass.Destroyed += destroyed
	event.Emit(s.bus, event.RegionUnloaded{Coord: c, Migrated: migrated, Destroyed: destroyed})
	s.log.Debug("region unloaded",
		zap.Int("x", c.X), zap.Int("y", c.Y),
		zap.Int("migrated", migrated), zap.Int("destroyed", destroyed),
	)
}

// spawn creates an entity owned by r.
func (s *Streamer) spawn(r *Region, spec ContentSpec) ecs.EntityID {
	id := s.ecs.CreateEntity()
	c := &Content{ContentSpec: spec, Owner: r.Coord, Home: r.Coord, Seq: r.nextSeq}
	r.nextSeq++
	s.store.Set(id, c)
	r.content.Put(id)
	if spec.Collider > 0 && !spec.Dynamic {
		s.colliders.Add(physics.Collider{
			Owner:    id,
			Bounds:   geom.RectAround(spec.Pos, spec.Collider, spec.Collider),
			IsStatic: true,
		})
	}
	s.spawner.Spawn(id, c)
	return id
}

// destroy removes id from r and every index, then queues the entity for the
// end-of-tick flush. r may be nil for orphans.
func (s *Streamer) destroy(r *Region, id ecs.EntityID, c *Content, orphan bool) {
	if r != nil {
		r.content.Remove(id)
	}
	s.colliders.Remove(id)
	s.spawner.Despawn(id, c)
	s.store.Remove(id)
	s.ecs.MarkForDestruction(id)
	event.Emit(s.bus, event.ContentDestroyed{Entity: id, Owner: c.Owner, Orphan: orphan})
}

type registrar struct {
	s *Streamer
	r *Region
}

func (rg registrar) Register(spec ContentSpec) ecs.EntityID {
	if spec.Purpose == "" {
		spec.Purpose = PurposeExternal
	}
	return rg.s.spawn(rg.r, spec)
}
