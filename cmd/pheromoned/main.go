package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/pheromone/internal/config"
	"github.com/l1jgo/pheromone/internal/core/event"
	coresys "github.com/l1jgo/pheromone/internal/core/system"
	"github.com/l1jgo/pheromone/internal/data"
	"github.com/l1jgo/pheromone/internal/persist"
	"github.com/l1jgo/pheromone/internal/scripting"
	"github.com/l1jgo/pheromone/internal/system"
	"github.com/l1jgo/pheromone/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           pheromoned  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", name)
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

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("PHEROMONE_CONFIG"); p != "" {
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

	// 3. Snapshot store + migrations
	printSection("storage")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := persist.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeStore()
	printOK(fmt.Sprintf("%s store ready, migrations applied", cfg.Database.Driver))
	fmt.Println()

	// 4. One grid per map
	printSection("maps")
	mapList, err := data.LoadMapList(cfg.Grid.MapList)
	if err != nil {
		return fmt.Errorf("load map list: %w", err)
	}
	clock := world.NewTickClock(0)
	ws := world.NewState(clock)
	cells := 0
	for _, m := range mapList.All() {
		g, err := ws.AddMap(m.MapID, m.Width, m.Height)
		if err != nil {
			return err
		}
		cells += g.Count()
	}
	printStat("maps", mapList.Count())
	printStat("grid cells", cells)

	persistSys := system.NewPersistenceSystem(ws, store, log, cfg.Grid.SnapshotInterval, cfg.Grid.KeepSnapshots)
	restored, err := persistSys.RestoreAll(ctx, cfg.Grid.OnDimensionMismatch)
	if err != nil {
		return fmt.Errorf("restore grids: %w", err)
	}
	printStat("grids restored", restored)
	printStat("resume tick", int(clock.Tick()))
	fmt.Println()

	// 5. Scripts
	bus := event.NewBus()
	runner := coresys.NewRunner()
	runner.Register(system.NewClockSystem(clock, bus))
	runner.Register(system.NewTrailSystem(ws, bus, log))
	runner.Register(persistSys)

	if cfg.Scripting.Enabled {
		printSection("scripts")
		engine := scripting.NewEngine(ws, bus, log)
		defer engine.Close()
		n, err := engine.LoadDir(cfg.Scripting.Dir)
		if err != nil {
			return fmt.Errorf("load scripts: %w", err)
		}
		printStat("lua scripts", n)
		runner.Register(system.NewScriptSystem(engine, clock, log))
		fmt.Println()
	}

	// 6. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("tick loop started (tick: %s, snapshot every %d ticks)", cfg.Server.TickRate, cfg.Grid.SnapshotInterval))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := persistSys.SaveAll(saveCtx, "shutdown")
			saveCancel()
			if err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			log.Info("stopped", zap.Int64("tick", clock.Tick()), zap.Int("agents", ws.AgentCount()))
			return nil
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
