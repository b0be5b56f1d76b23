// Command coreengine-sim drives the entity core headless for a number of
// frames. It is a smoke test and a profiling harness rather than a game.
//
// Profiling:
// go build ./cmd/coreengine-sim
// ./coreengine-sim -frames 10000 -profile cpu
// go tool pprof -http=":8000" ./coreengine-sim cpu.pprof
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/tdecroyere/CoreEngine-sub001/config"
	"github.com/tdecroyere/CoreEngine-sub001/internal/injector"
	"github.com/tdecroyere/CoreEngine-sub001/scene"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "TOML or YAML config file")
		scenePath  = flag.String("scene", "", "binary scene file to load instead of spawning")
		frames     = flag.Int("frames", 600, "frames to simulate")
		spawn      = flag.Int("entities", 10000, "moving entities to spawn when no scene is given")
		fps        = flag.Float64("fps", 60, "simulated frame rate")
		profiling  = flag.String("profile", "", "cpu or mem")
	)
	flag.Parse()

	switch *profiling {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profiling)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	engine, err := injector.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Logger.Sync()
	log := engine.Logger

	if err := registerSystems(engine); err != nil {
		return err
	}

	if *scenePath != "" {
		count, err := loadScene(engine, *scenePath)
		if err != nil {
			return err
		}
		log.Info("scene loaded", zap.String("path", *scenePath), zap.Int("entities", count))
	} else if err := populate(engine, *spawn); err != nil {
		return err
	}

	log.Info("simulation starting",
		zap.Int("frames", *frames),
		zap.Int("entities", engine.Entities.EntityCount()),
		zap.Int("layouts", len(engine.Entities.Layouts())),
		zap.Bool("parallel", cfg.Scheduler.Parallel),
		zap.Strings("systems", engine.Systems.Systems()),
	)

	deltaTime := float32(1 / *fps)
	start := time.Now()
	for frame := 0; frame < *frames; frame++ {
		if err := engine.Step(deltaTime); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	elapsed := time.Since(start)

	log.Info("simulation finished",
		zap.Duration("elapsed", elapsed),
		zap.Duration("per_frame", elapsed/time.Duration(max(*frames, 1))),
	)
	return nil
}

func loadScene(engine *injector.Engine, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := scene.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("read scene %s: %w", path, err)
	}
	ids, err := scene.Load(engine.Entities, s)
	if err != nil {
		return 0, fmt.Errorf("load scene %s: %w", path, err)
	}
	return len(ids), nil
}
