package event

import (
	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/geom"
)

// RegionCoord identifies a streaming region by integer grid position.
type RegionCoord struct {
	X, Y int
}

type RegionLoaded struct {
	Coord   RegionCoord
	Content int
}

type RegionUnloaded struct {
	Coord     RegionCoord
	Migrated  int
	Destroyed int
}

// ContentMigrated is emitted when dynamic content changes owning region.
type ContentMigrated struct {
	Entity ecs.EntityID
	From   RegionCoord
	To     RegionCoord
}

type ContentDestroyed struct {
	Entity ecs.EntityID
	Owner  RegionCoord
	Orphan bool
}

// GenerationDegenerate reports a world that missed its generation targets.
type GenerationDegenerate struct {
	Seed          string
	TargetPOIs    int
	POIs          int
	FallbackEdges int
}

// AgentStuck is emitted when an agent has no path and no usable direct line.
type AgentStuck struct {
	Entity ecs.EntityID
	Pos    geom.Vec2
	Target geom.Vec2
}
