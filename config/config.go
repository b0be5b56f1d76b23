package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	entities "github.com/tdecroyere/CoreEngine-sub001"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Entities  EntitiesConfig  `toml:"entities" yaml:"entities"`
	Scheduler SchedulerConfig `toml:"scheduler" yaml:"scheduler"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
}

type EntitiesConfig struct {
	ChunkCapacity int `toml:"chunk_capacity" yaml:"chunk_capacity"`
}

type SchedulerConfig struct {
	Parallel bool `toml:"parallel" yaml:"parallel"`
	Workers  int  `toml:"workers" yaml:"workers"` // 0 = one goroutine per system in a batch
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads a TOML or YAML file over the defaults. Files ending in .yaml or
// .yml are YAML, anything else is TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Entities: EntitiesConfig{
			ChunkCapacity: entities.DefaultChunkCapacity,
		},
		Scheduler: SchedulerConfig{
			Parallel: false,
			Workers:  0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) Validate() error {
	if c.Entities.ChunkCapacity < 1 {
		return fmt.Errorf("entities.chunk_capacity must be positive, got %d", c.Entities.ChunkCapacity)
	}
	if c.Scheduler.Workers < 0 {
		return fmt.Errorf("scheduler.workers cannot be negative, got %d", c.Scheduler.Workers)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ManagerOptions turns the configuration into entity and system manager
// options.
func (c *Config) ManagerOptions(logger *zap.Logger) []entities.Option {
	opts := []entities.Option{
		entities.WithChunkCapacity(c.Entities.ChunkCapacity),
		entities.WithLogger(logger),
	}
	if c.Scheduler.Parallel {
		opts = append(opts, entities.WithParallelScheduling(c.Scheduler.Workers))
	}
	return opts
}

// NewLogger builds a zap logger. Unknown levels fall back to info.
func (c LoggingConfig) NewLogger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if c.Format == "json" {
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
