package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/core/event"
	coresys "github.com/hotspotworld/server/internal/core/system"
)

// EventDispatchSystem delivers the events emitted during the previous tick.
// Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// SubscribeLogging logs the world lifecycle events worth an operator's
// attention.
func SubscribeLogging(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.RegionLoaded) {
		log.Debug("region loaded",
			zap.Int("x", ev.Coord.X), zap.Int("y", ev.Coord.Y),
			zap.Int("content", ev.Content))
	})
	event.Subscribe(bus, func(ev event.RegionUnloaded) {
		log.Debug("region unloaded",
			zap.Int("x", ev.Coord.X), zap.Int("y", ev.Coord.Y),
			zap.Int("migrated", ev.Migrated), zap.Int("destroyed", ev.Destroyed))
	})
	event.Subscribe(bus, func(ev event.ContentMigrated) {
		log.Debug("content migrated",
			zap.Stringer("entity", ev.Entity),
			zap.Int("from_x", ev.From.X), zap.Int("from_y", ev.From.Y),
			zap.Int("to_x", ev.To.X), zap.Int("to_y", ev.To.Y))
	})
	event.Subscribe(bus, func(ev event.ContentDestroyed) {
		if ev.Orphan {
			log.Warn("orphaned content destroyed",
				zap.Stringer("entity", ev.Entity),
				zap.Int("owner_x", ev.Owner.X), zap.Int("owner_y", ev.Owner.Y))
		}
	})
	event.Subscribe(bus, func(ev event.GenerationDegenerate) {
		log.Warn("world generation degenerate",
			zap.String("seed", ev.Seed),
			zap.Int("target_pois", ev.TargetPOIs),
			zap.Int("pois", ev.POIs),
			zap.Int("fallback_edges", ev.FallbackEdges))
	})
	event.Subscribe(bus, func(ev event.AgentStuck) {
		log.Info("agent stuck",
			zap.Stringer("entity", ev.Entity),
			zap.Float64("x", ev.Pos.X), zap.Float64("y", ev.Pos.Y),
			zap.Float64("target_x", ev.Target.X), zap.Float64("target_y", ev.Target.Y))
	})
}
