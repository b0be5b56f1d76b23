package injector

import (
	"github.com/google/wire"
	entities "github.com/tdecroyere/CoreEngine-sub001"
	"github.com/tdecroyere/CoreEngine-sub001/config"
	"go.uber.org/zap"
)

// Engine is the assembled entity core of one simulation.
type Engine struct {
	Config    *config.Config
	Logger    *zap.Logger
	Container *entities.SystemManagerContainer
	Entities  *entities.EntityManager
	Systems   *entities.EntitySystemManager
}

// Step runs one frame.
func (e *Engine) Step(deltaTime float32) error {
	return e.Systems.Process(e.Entities, deltaTime)
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideOptions,
	ProvideContainer,
	ProvideEntityManager,
	ProvideEntitySystemManager,
	wire.Struct(new(Engine), "*"),
)

func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return cfg.Logging.NewLogger()
}

func ProvideOptions(cfg *config.Config, logger *zap.Logger) []entities.Option {
	return cfg.ManagerOptions(logger.Named("entities"))
}

func ProvideContainer() *entities.SystemManagerContainer {
	return entities.Factory.NewContainer()
}

func ProvideEntityManager(opts []entities.Option) *entities.EntityManager {
	return entities.Factory.NewEntityManager(opts...)
}

func ProvideEntitySystemManager(container *entities.SystemManagerContainer, opts []entities.Option) *entities.EntitySystemManager {
	return entities.Factory.NewEntitySystemManager(container, opts...)
}
