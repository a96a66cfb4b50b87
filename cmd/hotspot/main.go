package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hotspotworld/server/internal/config"
	"github.com/hotspotworld/server/internal/core/ecs"
	"github.com/hotspotworld/server/internal/core/event"
	coresys "github.com/hotspotworld/server/internal/core/system"
	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/nav"
	"github.com/hotspotworld/server/internal/noise"
	"github.com/hotspotworld/server/internal/persist"
	"github.com/hotspotworld/server/internal/physics"
	"github.com/hotspotworld/server/internal/scripting"
	"github.com/hotspotworld/server/internal/system"
	"github.com/hotspotworld/server/internal/world"
	"github.com/hotspotworld/server/internal/worldgen"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Hotspot World  v0.1.0          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m    procedural open world · stream · nav   \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("HOTSPOT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Optional seed registry
	printSection("database")
	var worlds *persist.WorldRepo
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("migrations applied (version %d)", version))
		worlds = persist.NewWorldRepo(db)
	} else {
		printOK("disabled, seed registry off")
	}
	fmt.Println()

	// 4. Data tables
	printSection("data")
	roles, err := data.LoadRoleTable(cfg.World.RolesFile)
	if err != nil {
		return fmt.Errorf("load role table: %w", err)
	}
	printStat("POI roles", roles.Count())

	mutatorTable, err := data.LoadMutatorTable(cfg.World.MutatorsFile)
	if err != nil {
		return fmt.Errorf("load mutator table: %w", err)
	}
	printStat("mutators", mutatorTable.Count())

	content, err := data.LoadContentTable(cfg.World.ContentFile)
	if err != nil {
		return fmt.Errorf("load content table: %w", err)
	}
	printStat("enemy tiers", content.MaxTier())
	printStat("prop kinds", len(content.Props()))
	fmt.Println()

	// 5. Generate the world
	printSection("world")
	year, week := cfg.World.Year, cfg.World.Week
	if year == 0 || week == 0 {
		year, week = worldgen.WeekOf(time.Now())
	}
	muts := worldgen.MutatorsForWeek(cfg.World.Seed, year, week, mutatorTable, cfg.World.Mutators)

	genStart := time.Now()
	gen, report := worldgen.Generate(worldParams(cfg), roles, muts, log)
	printStat("points of interest", report.POIs)
	printStat("rivers", report.Rivers)
	printStat("network segments", len(gen.Network()))
	printOK(fmt.Sprintf("seed %q week %04d-W%02d generated in %s", gen.Seed(), year, week, time.Since(genStart).Round(time.Millisecond)))
	if report.Degenerate() {
		printWarn("generation degenerate: " + report.String())
	}

	if worlds != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rec, err := worlds.Touch(ctx, gen.Seed(), persist.WorldStats{
			POIs:          report.POIs,
			Rivers:        report.Rivers,
			FallbackEdges: report.FallbackEdges,
		})
		if err == nil {
			err = worlds.RecordWeek(ctx, gen.Seed(), year, week, report.Mutators)
		}
		cancel()
		if err != nil {
			return fmt.Errorf("record world: %w", err)
		}
		printStat("times opened", int(rec.OpenCount))
	}
	fmt.Println()

	// 6. Runtime: ECS, events, physics, navigation, scripting, streaming
	ecsWorld := ecs.NewWorld()
	bus := event.NewBus()
	system.SubscribeLogging(bus, log)
	if report.Degenerate() {
		event.Emit(bus, event.GenerationDegenerate{
			Seed:          gen.Seed(),
			TargetPOIs:    report.TargetPOIs,
			POIs:          report.POIs,
			FallbackEdges: report.FallbackEdges,
		})
	}

	colliders := physics.NewIndex(cfg.Streaming.ColliderCell)
	navigator := nav.New(navConfig(cfg), colliders, log, time.Now)

	engine, err := scripting.NewEngine(cfg.Scripting.Dir, world.DefaultDensity{MaxTier: content.MaxTier()}, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()

	agents := system.NewAgents(ecsWorld, navigator, cfg.Agents.Speed, nil)
	streamer := world.NewStreamer(streamConfig(cfg), world.Deps{
		World:     gen,
		Climate:   noise.NewClimate(gen.Seed(), noise.DefaultParams()),
		Content:   content,
		ECS:       ecsWorld,
		Colliders: colliders,
		Density:   engine,
		Spawner:   agents,
		Bus:       bus,
		Log:       log,
		Now:       time.Now,
	})
	streamer.AddHook(navigator)

	anchor := system.NewPatrolAnchor(patrolRoute(gen), cfg.Agents.AnchorSpeed)

	// 7. Systems in phase order
	runner := coresys.NewRunner()
	runner.Register(anchor)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewStreamSystem(streamer, anchor, log))
	runner.Register(system.NewAgentSystem(system.AgentConfig{
		Reach:       cfg.Agents.Reach,
		ChaseRadius: cfg.Agents.ChaseRadius,
	}, agents, streamer, navigator, anchor, bus, log))
	runner.Register(system.NewNavSweepSystem(navigator, log))
	runner.Register(system.NewCleanupSystem(ecsWorld, log))

	// 8. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("render distance %d, region %.0f", cfg.Streaming.RenderDistance, cfg.Streaming.RegionSize))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Server.TickRate))
	fmt.Println()

	const statusInterval = 600 // ticks between status lines
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
			if runner.Ticks()%statusInterval == 0 {
				logStatus(log, streamer, navigator, anchor)
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			streamer.UnloadAll()
			ecsWorld.FlushDestroyQueue()
			totals := streamer.Totals()
			log.Info("server stopped",
				zap.Uint64("ticks", runner.Ticks()),
				zap.Int("regions_loaded", totals.Loaded),
				zap.Int("content_migrated", totals.Migrated),
				zap.Int("orphans", totals.Orphans),
			)
			return nil
		}
	}
}

func logStatus(log *zap.Logger, s *world.Streamer, n *nav.Navigator, a world.AnchorProvider) {
	pos, _ := a.AnchorPosition()
	st := n.Stats()
	log.Info("status",
		zap.Float64("anchor_x", pos.X), zap.Float64("anchor_y", pos.Y),
		zap.Int("regions", len(s.Loaded())),
		zap.Int("content", s.Store().Len()),
		zap.Int("agents", len(s.DynamicContent())),
		zap.Int("cached_paths", n.CachedPaths()),
		zap.Int("astar_runs", st.AStarRuns),
		zap.Int("astar_failures", st.AStarFailures),
		zap.Int("cache_hits", st.CacheHits),
	)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
