// Command emberwatch runs the sentry simulation server: a small 2D world
// where archetype-driven agents patrol, chase, fight, and flee, streamed to
// clients over websockets.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"emberwatch/server/internal/behavior"
	"emberwatch/server/internal/server"
	"emberwatch/server/internal/sim"
	"emberwatch/server/internal/telemetry"
	"emberwatch/server/internal/world"
	"emberwatch/server/logging"
	"emberwatch/server/logging/sinks"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "emberwatch",
		Short:         "Authoritative sentry simulation server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	var headlessTicks int
	var headlessPlayers int
	headless := &cobra.Command{
		Use:   "headless",
		Short: "Run the simulation without a server and print a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runHeadless(cmd.OutOrStdout(), cfg, headlessTicks, headlessPlayers)
		},
	}
	headless.Flags().IntVar(&headlessTicks, "ticks", 900, "number of ticks to simulate")
	headless.Flags().IntVar(&headlessPlayers, "players", 1, "number of stationary players to spawn")

	root.AddCommand(serve, headless)
	return root
}

func buildLogger(cfg Config) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildRouter(cfg Config, zapLogger *zap.Logger) (*logging.Router, error) {
	minSeverity, err := cfg.minSeverity()
	if err != nil {
		return nil, err
	}
	routerCfg := logging.Config{
		EnabledSinks:    cfg.Logging.Sinks,
		BufferSize:      cfg.Logging.BufferSize,
		MinimumSeverity: minSeverity,
	}
	var named []logging.NamedSink
	if routerCfg.HasSink("console") {
		named = append(named, logging.NamedSink{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout)})
	}
	if routerCfg.HasSink("zap") {
		named = append(named, logging.NamedSink{Name: "zap", Sink: sinks.NewZapSink(zapLogger)})
	}
	if routerCfg.HasSink("memory") {
		named = append(named, logging.NamedSink{Name: "memory", Sink: sinks.NewMemorySink(512)})
	}
	return logging.NewRouter(nil, routerCfg, named), nil
}

func buildEngine(cfg Config, publisher logging.Publisher, counters *telemetry.Counters) (*sim.Engine, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	clearZones := []world.Vec2{{X: cfg.PlayerSpawn.X, Y: cfg.PlayerSpawn.Y}}
	for _, spawn := range cfg.Agents {
		clearZones = append(clearZones, world.Vec2{X: spawn.Home.X, Y: spawn.Home.Y})
	}
	obstacles := world.GenerateObstacles(rng, cfg.World.Width, cfg.World.Height, cfg.World.ObstacleCount, clearZones, 4)
	worldMap := world.NewMap(cfg.World.Width, cfg.World.Height, obstacles)

	engine := sim.NewEngine(sim.Config{
		Map:       worldMap,
		Seed:      cfg.Seed,
		Publisher: publisher,
		Counters:  counters,
	})
	for _, spawn := range cfg.Agents {
		patrol := make([]behavior.Vec2, 0, len(spawn.Patrol))
		for _, p := range spawn.Patrol {
			patrol = append(patrol, behavior.Vec2{X: p.X, Y: p.Y})
		}
		home := behavior.Vec2{X: spawn.Home.X, Y: spawn.Home.Y}
		if _, err := engine.SpawnAgent(spawn.Archetype, home, patrol); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", spawn.Archetype, err)
		}
	}
	return engine, nil
}

func runServe(ctx context.Context, cfg Config) error {
	zapLogger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zapLogger.Sync()

	router, err := buildRouter(cfg, zapLogger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		router.Close(closeCtx)
	}()

	counters := telemetry.NewCounters()
	engine, err := buildEngine(cfg, router, counters)
	if err != nil {
		return err
	}

	hub := server.NewHub(server.HubConfig{
		Engine:      engine,
		Logger:      zapLogger,
		Counters:    counters,
		PlayerSpawn: behavior.Vec2{X: cfg.PlayerSpawn.X, Y: cfg.PlayerSpawn.Y},
	})
	handler := server.NewHandler(hub, server.HandlerConfig{
		RouterStats: router.Stats,
		TickRate:    cfg.TickRate,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Addr: cfg.Addr, Handler: handler}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := engine.Run(groupCtx, cfg.TickRate)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		err := hub.BroadcastLoop(groupCtx, time.Duration(cfg.BroadcastMillis)*time.Millisecond)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		zapLogger.Info("listening", zap.String("addr", cfg.Addr), zap.Int("tickRate", cfg.TickRate))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// headlessReport is the JSON document printed at the end of a headless run.
type headlessReport struct {
	Ticks     int                `json:"ticks"`
	Telemetry telemetry.Snapshot `json:"telemetry"`
	Final     sim.Snapshot       `json:"final"`
}

func runHeadless(out io.Writer, cfg Config, ticks, players int) error {
	if ticks <= 0 {
		return fmt.Errorf("ticks must be positive")
	}

	counters := telemetry.NewCounters()
	engine, err := buildEngine(cfg, logging.NopPublisher(), counters)
	if err != nil {
		return err
	}
	for i := 0; i < players; i++ {
		if _, err := engine.SpawnPlayer(behavior.Vec2{X: cfg.PlayerSpawn.X, Y: cfg.PlayerSpawn.Y}); err != nil {
			return err
		}
	}

	dt := 1.0 / float64(cfg.TickRate)
	for i := 0; i < ticks; i++ {
		engine.Step(dt)
	}

	report := headlessReport{
		Ticks:     ticks,
		Telemetry: counters.Snapshot(),
		Final:     engine.Snapshot(),
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
