package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/core/event"
	coresys "github.com/hotspotworld/server/internal/core/system"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/nav"
	"github.com/hotspotworld/server/internal/physics"
	"github.com/hotspotworld/server/internal/world"
)

// Agent is the movement state of one dynamic content entity.
type Agent struct {
	Speed  float64
	Target geom.Vec2
	Active bool // has a target to pursue
	Stuck  bool // AgentStuck already reported for this target
}

// AgentKey is the navigator cache key for an entity.
func AgentKey(id ecs.EntityID) string { return id.String() }

// Agents attaches movement state to dynamic content as the streamer spawns
// it, and forwards every spawn to an optional downstream spawner.
type Agents struct {
	store *ecs.PtrComponentStore[Agent]
	nav   *nav.Navigator
	speed float64
	next  world.Spawner
}

func NewAgents(w *ecs.World, n *nav.Navigator, speed float64, next world.Spawner) *Agents {
	a := &Agents{
		store: ecs.NewPtrComponentStore[Agent](),
		nav:   n,
		speed: speed,
		next:  next,
	}
	w.Registry().Register(a.store)
	return a
}

func (a *Agents) Store() *ecs.PtrComponentStore[Agent] { return a.store }

// Spawn gives dynamic content an agent. Higher tiers move faster.
func (a *Agents) Spawn(id ecs.EntityID, c *world.Content) {
	if c.Dynamic {
		tier := max(c.Tier, 1)
		a.store.Set(id, &Agent{Speed: a.speed * (1 + 0.1*float64(tier-1))})
	}
	if a.next != nil {
		a.next.Spawn(id, c)
	}
}

func (a *Agents) Despawn(id ecs.EntityID, c *world.Content) {
	if c.Dynamic {
		a.nav.Forget(AgentKey(id))
	}
	if a.next != nil {
		a.next.Despawn(id, c)
	}
}

// AgentConfig tunes agent movement.
type AgentConfig struct {
	Reach       float64 // agents stop within this distance of their target
	ChaseRadius float64 // agents pursue the anchor inside this distance
}

// AgentSystem moves every dynamic content entity one step along its path.
// Phase 3 (Update), after streaming has finished for the tick.
type AgentSystem struct {
	cfg       AgentConfig
	agents    *Agents
	streamer  *world.Streamer
	nav       *nav.Navigator
	colliders *physics.Index
	anchor    world.AnchorProvider
	bus       *event.Bus
	log       *zap.Logger
}

func NewAgentSystem(cfg AgentConfig, agents *Agents, streamer *world.Streamer, n *nav.Navigator,
	anchor world.AnchorProvider, bus *event.Bus, log *zap.Logger) *AgentSystem {
	return &AgentSystem{
		cfg:       cfg,
		agents:    agents,
		streamer:  streamer,
		nav:       n,
		colliders: streamer.Colliders(),
		anchor:    anchor,
		bus:       bus,
		log:       log,
	}
}

func (s *AgentSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AgentSystem) Update(dt time.Duration) {
	anchor, hasAnchor := s.anchor.AnchorPosition()
	secs := dt.Seconds()
	ecs.Each2(s.agents.store, s.streamer.Store(), func(id ecs.EntityID, ag *Agent, c *world.Content) {
		if !c.Dynamic {
			return
		}
		s.retarget(id, ag, c.Pos, anchor, hasAnchor)
		if !ag.Active || c.Pos.Dist(ag.Target) <= s.cfg.Reach {
			return
		}
		s.step(id, ag, c.Pos, secs)
	})
}

func (s *AgentSystem) retarget(id ecs.EntityID, ag *Agent, pos, anchor geom.Vec2, hasAnchor bool) {
	if hasAnchor && !anchor.IsNaN() && pos.Dist(anchor) <= s.cfg.ChaseRadius {
		if anchor != ag.Target {
			ag.Stuck = false
		}
		ag.Target = anchor
		ag.Active = true
		return
	}
	if ag.Active {
		ag.Active = false
		s.nav.Forget(AgentKey(id))
	}
}

// step advances one agent. With no path the agent walks the direct line
// unless that runs into a static collider.
func (s *AgentSystem) step(id ecs.EntityID, ag *Agent, pos geom.Vec2, secs float64) {
	wp, routed := s.nav.NextWaypoint(AgentKey(id), pos, ag.Target)
	if !routed {
		wp = ag.Target
	}
	dir := wp.Sub(pos)
	dist := dir.Len()
	if dist == 0 {
		return
	}

	info := s.streamer.TerrainAt(pos.X, pos.Y)
	stride := math.Min(ag.Speed*info.SpeedMultiplier*secs, dist)
	next := pos.Add(dir.Scale(stride / dist))
	if info.InWater {
		next = next.Add(info.Flow.Scale(info.FlowSpeed * secs))
	}
	if next.IsNaN() {
		s.log.Warn("agent step produced NaN", zap.Stringer("entity", id))
		return
	}
	if !routed && s.blocked(next) {
		if !ag.Stuck {
			ag.Stuck = true
			event.Emit(s.bus, event.AgentStuck{Entity: id, Pos: pos, Target: ag.Target})
		}
		return
	}
	ag.Stuck = false
	s.streamer.MoveContent(id, next)
}

func (s *AgentSystem) blocked(p geom.Vec2) bool {
	return len(s.colliders.QueryStaticCollidersInBounds(geom.RectAround(p, 1, 1))) > 0
}
