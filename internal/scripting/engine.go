package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/world"
)

// Engine wraps a single gopher-lua VM that tunes content density.
// Single-goroutine access only (game loop).
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback world.DensityModel
	warned   mapset.Set[string]
}

// NewEngine creates a Lua engine and loads every script under dir/world.
// A missing directory is not an error: the Go fallback answers every call.
func NewEngine(scriptsDir string, fallback world.DensityModel, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, fallback: fallback, warned: mapset.New[string]()}
	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadDir(filepath.Join(scriptsDir, "world")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load world scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua chunk: %w", err)
	}
	return nil
}

// lookup returns the global function name, or nil after logging once.
func (e *Engine) lookup(name string) lua.LValue {
	fn := e.vm.GetGlobal(name)
	if fn.Type() == lua.LTFunction {
		return fn
	}
	if !e.warned.Has(name) {
		e.warned.Put(name)
		e.log.Info("lua function not defined, using built-in", zap.String("name", name))
	}
	return nil
}

// call invokes fn with args and returns its single result as a number.
func (e *Engine) call(name string, fn lua.LValue, args ...lua.LValue) (float64, bool) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
		e.log.Error("lua function returned a non-number", zap.String("func", name), zap.String("type", result.Type().String()))
		return 0, false
	}
	return float64(n), true
}

// SpawnDensity calls calc_spawn_density(ctx). Negative results clamp to 0.
func (e *Engine) SpawnDensity(ctx world.DensityContext) float64 {
	fn := e.lookup("calc_spawn_density")
	if fn == nil {
		return e.fallback.SpawnDensity(ctx)
	}
	t := e.vm.NewTable()
	t.RawSetString("purpose", lua.LString(ctx.Purpose))
	t.RawSetString("biome", lua.LString(ctx.Biome))
	t.RawSetString("terrain", lua.LString(ctx.Terrain))
	t.RawSetString("mean_danger", lua.LNumber(ctx.MeanDanger))
	t.RawSetString("max_danger", lua.LNumber(ctx.MaxDanger))
	t.RawSetString("mean_height", lua.LNumber(ctx.MeanHeight))
	t.RawSetString("water_fraction", lua.LNumber(ctx.WaterFraction))

	v, ok := e.call("calc_spawn_density", fn, t)
	if !ok {
		return e.fallback.SpawnDensity(ctx)
	}
	return math.Max(0, v)
}

// EnemyTier calls calc_enemy_tier(danger). Results below 1 become 1.
func (e *Engine) EnemyTier(danger float64) int {
	fn := e.lookup("calc_enemy_tier")
	if fn == nil {
		return e.fallback.EnemyTier(danger)
	}
	v, ok := e.call("calc_enemy_tier", fn, lua.LNumber(danger))
	if !ok {
		return e.fallback.EnemyTier(danger)
	}
	return max(1, int(v))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
