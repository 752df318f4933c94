package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openrunner/engine/internal/config"
	"github.com/openrunner/engine/internal/data"
	"github.com/openrunner/engine/internal/debug"
	"github.com/openrunner/engine/internal/gen"
	"github.com/openrunner/engine/internal/metrics"
	"github.com/openrunner/engine/internal/scripting"
	"github.com/openrunner/engine/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(seed, level string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        open-runner worldsim  v0.1.0       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      endless world streaming engine       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mseed:\033[0m %s \033[90m(level: %s)\033[0m\n\n", seed, level)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main engine wiring ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/worldsim.toml"
	if p := os.Getenv("WORLDSIM_CONFIG"); p != "" {
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

	printBanner(cfg.World.Seed, cfg.World.Level)

	// 3. Load level definitions
	printSection("level data")

	levels, err := data.LoadLevelTable("data/yaml/level_list.yaml")
	if err != nil {
		return fmt.Errorf("load level table: %w", err)
	}
	printStat("levels", levels.Count())

	level := levels.First()
	if cfg.World.Level != "" {
		level = levels.Get(cfg.World.Level)
	}
	if level == nil {
		return fmt.Errorf("level %q not found", cfg.World.Level)
	}
	printStat("object types", len(level.Objects))
	printStat("enemy types", len(level.EnemyTypes))

	// 4. Level-tuning scripts
	tuning, err := scripting.NewEngine(cfg.World.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("tuning engine: %w", err)
	}
	defer tuning.Close()
	printOK("tuning scripts loaded")
	fmt.Println()

	// 5. Build the streaming world
	scene := world.NewMemScene()
	grid := world.NewSpatialGrid(cfg.World.GridCellSize)
	pools := world.NewObjectPoolManager(log)
	builder := world.NewBuilder()
	enemies := world.NewEnemyManager(log, gen.WorldSeed64(cfg.World.Seed))
	registerEnemyPolicies(enemies, level)

	score := 0
	mgr, err := world.NewChunkManager(world.Params{
		Seed:           cfg.World.Seed,
		ChunkSize:      cfg.World.ChunkSize,
		RenderDistance: cfg.World.RenderDistance,
		Level:          level,
		Scene:          scene,
		Grid:           grid,
		Pools:          pools,
		Builder:        builder,
		Enemies:        enemies,
		Tuning:         tuning,
		Log:            log,
		OnCollect:      func(points int) { score += points },
	})
	if err != nil {
		return fmt.Errorf("chunk manager: %w", err)
	}
	enemies.SetTerrainSource(mgr)

	// 6. Initial world population (synchronous, with progress)
	printSection("initial load")
	mgr.Update(0, 0)
	lastPct := -1
	mgr.LoadInitialChunks(func(loaded, total int) {
		pct := loaded * 100 / total
		if pct/10 != lastPct/10 {
			fmt.Printf("  \033[90mloading chunks... %3d%%\033[0m\r", pct)
			lastPct = pct
		}
	})
	fmt.Println()
	printStat("chunks loaded", mgr.LoadedCount())
	printStat("active objects", grid.Len())
	printStat("enemies", enemies.ActiveCount())
	fmt.Println()

	// 7. Debug / metrics server
	var dbg *debug.Server
	if cfg.Debug.Enabled {
		dbg = debug.NewServer(cfg.Debug.ListenAddr, cfg.Debug.SnapshotHz, log)
		dbg.Start()
		defer dbg.Stop()
	}

	// 8. Tick loop: scripted observer running forward along +Z
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	printSection("engine ready")
	if cfg.Debug.Enabled {
		printReady(fmt.Sprintf("debug server on %s", cfg.Debug.ListenAddr))
	}
	printReady(fmt.Sprintf("tick loop running (tick: %s)", cfg.Sim.TickRate))
	fmt.Println()

	dt := cfg.Sim.TickRate.Seconds()
	obsX, obsZ := 0.0, 0.0

	for {
		select {
		case <-ticker.C:
			start := time.Now()

			obsZ += cfg.Sim.ObserverSpeed * dt
			obsY := mgr.HeightAt(obsX, obsZ) + 1.0

			mgr.Update(obsX, obsZ)
			mgr.Tick()
			mgr.UpdateCollectibles(obsX, obsY, obsZ, dt)
			mgr.UpdateHazards(obsX, obsZ, dt)
			enemies.Update(obsX, obsZ, dt)

			metrics.TickDuration.Observe(time.Since(start).Seconds())
			if dbg != nil {
				dbg.Publish(mgr.Snapshot())
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()), zap.Int("score", score))
			mgr.Reset()
			log.Info("engine stopped")
			return nil
		}
	}
}

// registerEnemyPolicies installs behavior for each enemy type the
// level allows. Unknown names get the default ground-chaser policy.
func registerEnemyPolicies(m *world.EnemyManager, level *data.LevelDef) {
	defaults := map[string]world.EnemyPolicy{
		"coyote": {
			Movement:  world.MovementPolicy{Speed: 12, TurnRate: 3.0, AggroRange: 60, WanderRadius: 25},
			Grounding: world.GroundingPolicy{Offset: 0.5, Animated: true},
		},
		"rattlesnake": {
			Movement:  world.MovementPolicy{Speed: 4, TurnRate: 1.5, AggroRange: 15, WanderRadius: 8},
			Grounding: world.GroundingPolicy{Offset: 0.1, Animated: false},
		},
		"scorpion": {
			Movement:  world.MovementPolicy{Speed: 6, TurnRate: 2.0, AggroRange: 25, WanderRadius: 12},
			Grounding: world.GroundingPolicy{Offset: 0.2, Animated: false},
		},
	}
	fallback := world.EnemyPolicy{
		Movement:  world.MovementPolicy{Speed: 8, TurnRate: 2.0, AggroRange: 40, WanderRadius: 20},
		Grounding: world.GroundingPolicy{Offset: 0.5, Animated: false},
	}
	for _, typ := range level.EnemyTypes {
		if p, ok := defaults[typ]; ok {
			m.RegisterPolicy(typ, p)
		} else {
			m.RegisterPolicy(typ, fallback)
		}
	}
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
