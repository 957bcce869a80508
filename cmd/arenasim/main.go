// cmd/arenasim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-tankwars/pkg/config"
	"github.com/opd-ai/go-tankwars/pkg/control"
	"github.com/opd-ai/go-tankwars/pkg/engine"
	"github.com/opd-ai/go-tankwars/pkg/health"
	"github.com/opd-ai/go-tankwars/pkg/logging"
)

const (
	healthStallTimeout = 5 * time.Second
	healthMaxMemoryMB  = 512
)

type options struct {
	configPath    string
	createDefault bool
	mapPath       string
	robots        int
	duration      float64
	seed          uint64
	healthAddr    string
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "arena.json", "Path to configuration file")
	flag.BoolVar(&opts.createDefault, "default", false, "Create default configuration file")
	flag.StringVar(&opts.mapPath, "map", "", "Path to map layout (defaults to "+config.EnvMapPath+" or an empty arena)")
	flag.IntVar(&opts.robots, "robots", 2, "Number of coin-seeking robots")
	flag.Float64Var(&opts.duration, "duration", -1, "Simulated seconds before the match ends; 0 runs until one robot is left, negative keeps the configured limit")
	flag.Uint64Var(&opts.seed, "seed", 0, "Random seed for spawns and coins (0 picks one)")
	flag.StringVar(&opts.healthAddr, "health-addr", "", "Serve /health and /ready on this address")
	flag.Parse()
	return opts
}

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()
	opts := parseFlags()

	if opts.createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", opts.configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", opts.configPath,
		)
		return
	}

	if err := run(ctx, logger, opts); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *logging.Logger, opts options) error {
	cfg, err := loadConfig(ctx, logger, opts.configPath)
	if err != nil {
		return err
	}
	if opts.duration >= 0 {
		cfg.Simulation.TimeLimit = opts.duration
	}

	layout, err := loadMap(ctx, logger, config.MapPathFromEnv(opts.mapPath))
	if err != nil {
		return err
	}

	seed := opts.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	arena, err := engine.NewArenaFromMap(cfg, layout,
		engine.WithLogger(logger),
		engine.WithRand(rand.New(rand.NewPCG(seed, seed>>1))),
	)
	if err != nil {
		return err
	}
	ctx = logging.WithMatchID(ctx, arena.MatchID())

	for i := 0; i < opts.robots; i++ {
		name := fmt.Sprintf("seeker-%d", i+1)
		if _, err := arena.AddRobot(name, control.CoinSeeker{}); err != nil {
			return logging.WrapError(err, "adding robot %s", name)
		}
	}
	if err := arena.SpawnRobots(rand.New(rand.NewPCG(seed, seed<<1))); err != nil {
		return err
	}

	if opts.healthAddr != "" {
		server := startHealthServer(ctx, logger, opts.healthAddr, arena)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting simulation",
		"robots", opts.robots,
		"seed", seed,
		"time_limit", cfg.Simulation.TimeLimit,
	)
	started := time.Now()
	standings, err := arena.Run(runCtx, cfg.Simulation.TimeLimit)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if len(standings) > 0 {
		logger.Info(ctx, "Simulation finished",
			"winner", standings[0].Name,
			"sim_time", arena.TotalSimTime(),
			"ticks", arena.Ticks(),
			"wall_time", time.Since(started).String(),
		)
	}
	return nil
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist, and applies environment overrides
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.ArenaConfig, error) {
	var cfg *config.ArenaConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, logging.WrapError(err, "loading configuration %s", path)
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, logging.WrapError(err, "applying environment configuration")
	}
	return cfg, nil
}

func loadMap(ctx context.Context, logger *logging.Logger, path string) (*config.MapConfig, error) {
	if path == "" {
		logger.Info(ctx, "No map given, using an empty arena")
		return config.DefaultMap(), nil
	}
	layout, err := config.LoadMap(path)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Loaded map",
		"map_path", path,
		"walls", len(layout.Walls),
		"spawns", len(layout.Spawns),
	)
	return layout, nil
}

func startHealthServer(ctx context.Context, logger *logging.Logger, addr string, arena *engine.Arena) *http.Server {
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewSimulationHealthCheck(arena.Ticks, healthStallTimeout))
	checker.AddCheck(health.NewMemoryHealthCheck(healthMaxMemoryMB, health.HeapAllocMB))

	server := &http.Server{
		Addr:         addr,
		Handler:      checker.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info(ctx, "Starting health check server", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()
	return server
}
