package entities

import (
	"github.com/TheBitDrifter/table"
	"go.uber.org/zap"
)

// DefaultChunkCapacity is the number of entities one chunk holds unless
// WithChunkCapacity says otherwise.
const DefaultChunkCapacity = 1024

type config struct {
	chunkCapacity int
	tableEvents   table.TableEvents
	logger        *zap.Logger
	parallel      bool
	workers       int
}

// Option configures an EntityManager or EntitySystemManager.
type Option func(*config)

func newConfig(opts ...Option) config {
	cfg := config{
		chunkCapacity: DefaultChunkCapacity,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithChunkCapacity sets how many entities fit in one chunk. Values below one are ignored.
func WithChunkCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.chunkCapacity = n
		}
	}
}

// WithTableEvents configures the table event callbacks of every chunk.
func WithTableEvents(te table.TableEvents) Option {
	return func(c *config) {
		c.tableEvents = te
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithParallelScheduling lets the system manager run systems with disjoint
// access sets concurrently, with at most workers goroutines per batch. Zero
// workers means no limit.
func WithParallelScheduling(workers int) Option {
	return func(c *config) {
		c.parallel = true
		c.workers = workers
	}
}
