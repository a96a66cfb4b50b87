package main

import (
	"github.com/hotspotworld/server/internal/config"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/nav"
	"github.com/hotspotworld/server/internal/system"
	"github.com/hotspotworld/server/internal/world"
	"github.com/hotspotworld/server/internal/worldgen"
)

// worldParams overlays the [world] section on the generator defaults.
func worldParams(cfg *config.Config) worldgen.Params {
	w := cfg.World
	p := worldgen.DefaultParams(w.Seed)
	h := w.HalfExtent
	p.Bounds = geom.Rect{Min: geom.Vec2{X: -h, Y: -h}, Max: geom.Vec2{X: h, Y: h}}
	p.TargetPOICount = w.TargetPOIs
	p.MinPOIDistance = w.MinPOIDistance
	p.PoissonRetries = w.PoissonRetries
	p.PathGridCell = w.PathGridCell
	p.PathCorridorWidth = w.CorridorWidth
	p.RiverCount = w.RiverCount
	p.WaterLevel = w.WaterLevel
	return p
}

func streamConfig(cfg *config.Config) world.Config {
	s := cfg.Streaming
	return world.Config{
		RegionSize:     s.RegionSize,
		RenderDistance: s.RenderDistance,
		TilesPerSide:   s.TilesPerSide,
		MaxEnemies:     s.MaxEnemies,
		Debug:          cfg.Server.Debug,
	}
}

func navConfig(cfg *config.Config) nav.Config {
	n := cfg.Navigation
	return nav.Config{
		RegionSize:      cfg.Streaming.RegionSize,
		CellSize:        n.CellSize,
		AgentPadding:    n.AgentPadding,
		QueryPadding:    n.QueryPadding,
		GridTTL:         n.GridTTL,
		PathTTL:         n.PathTTL,
		TargetTolerance: n.TargetTolerance,
		MaxPathLength:   n.MaxPathLength,
		SpiralRadius:    n.SpiralRadius,
		SmoothDot:       n.SmoothDot,
		ArriveRadius:    n.ArriveRadius,
	}
}

// patrolRoute starts at the origin and visits every POI nearest first.
func patrolRoute(w *worldgen.World) []geom.Vec2 {
	pts := make([]geom.Vec2, 0, len(w.POIs()))
	for _, p := range w.POIs() {
		pts = append(pts, p.Pos)
	}
	return append([]geom.Vec2{{}}, system.NearestTour(pts, geom.Vec2{})...)
}
