package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/config"
	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/nav"
	"github.com/hotspotworld/server/internal/worldgen"
)

func TestDefaultConfigMatchesPackageDefaults(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, worldgen.DefaultParams(cfg.World.Seed), worldParams(cfg))
	assert.Equal(t, nav.DefaultConfig(), navConfig(cfg))

	sc := streamConfig(cfg)
	assert.Equal(t, 1000.0, sc.RegionSize)
	assert.Equal(t, 2, sc.RenderDistance)
	assert.False(t, sc.Debug)
}

func TestWorldParamsOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.World.HalfExtent = 10000
	cfg.World.TargetPOIs = 6
	cfg.Server.Debug = true

	p := worldParams(cfg)
	assert.Equal(t, geom.Rect{Min: geom.Vec2{X: -10000, Y: -10000}, Max: geom.Vec2{X: 10000, Y: 10000}}, p.Bounds)
	assert.Equal(t, 6, p.TargetPOICount)
	assert.True(t, streamConfig(cfg).Debug)
}

func TestPatrolRouteVisitsEveryPOI(t *testing.T) {
	roles, err := data.LoadRoleTable("")
	require.NoError(t, err)
	gen, _ := worldgen.Generate(worldgen.DefaultParams("W-2024-01"), roles, nil, zap.NewNop())

	route := patrolRoute(gen)
	require.Len(t, route, len(gen.POIs())+1)
	assert.Equal(t, geom.Vec2{}, route[0])
	seen := make(map[geom.Vec2]bool)
	for _, p := range route[1:] {
		seen[p] = true
	}
	for _, p := range gen.POIs() {
		assert.True(t, seen[p.Pos])
	}
}
