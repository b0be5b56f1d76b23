package entities

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type registeredSystem struct {
	name       string
	system     EntitySystem
	definition *EntitySystemDefinition
	types      []ComponentType
}

// EntitySystemManager owns the registered systems and drives them once per
// frame in registration order.
type EntitySystemManager struct {
	container *SystemManagerContainer
	systems   *registry[reflect.Type, *registeredSystem]
	batches   [][]int
	cfg       config
	logger    *zap.Logger
}

func newEntitySystemManager(container *SystemManagerContainer, opts ...Option) *EntitySystemManager {
	cfg := newConfig(opts...)
	if container == nil {
		container = newContainer()
	}
	return &EntitySystemManager{
		container: container,
		systems:   newRegistry[reflect.Type, *registeredSystem](0),
		cfg:       cfg,
		logger:    cfg.logger,
	}
}

func (m *EntitySystemManager) Container() *SystemManagerContainer {
	return m.container
}

// Register adds a constructed system. A concrete type can be registered once.
func (m *EntitySystemManager) Register(system EntitySystem) error {
	if system == nil {
		return fmt.Errorf("cannot register a nil entity system")
	}
	typ := reflect.TypeOf(system)
	if _, exists := m.systems.GetIndex(typ); exists {
		return DuplicateSystemRegistrationError{System: typ.String()}
	}

	definition := system.BuildDefinition()
	if definition == nil {
		definition = NewEntitySystemDefinition(typ.String())
	}
	name := definition.Name()
	if name == "" {
		name = typ.String()
	}
	rs := &registeredSystem{
		name:       name,
		system:     system,
		definition: definition,
		types:      definition.Types(),
	}
	if _, err := m.systems.Register(typ, rs); err != nil {
		return fmt.Errorf("failed to register entity system %s: %w", name, err)
	}
	m.batches = nil

	m.logger.Debug("entity system registered",
		zap.String("system", name),
		zap.Int("parameters", len(rs.types)),
	)
	return nil
}

// RegisterEntitySystem constructs a T from the manager's container and
// registers it. The duplicate check runs before the factory.
func RegisterEntitySystem[T EntitySystem](m *EntitySystemManager, factory func(*SystemManagerContainer) (T, error)) error {
	typ := reflect.TypeFor[T]()
	if _, exists := m.systems.GetIndex(typ); exists {
		return DuplicateSystemRegistrationError{System: typ.String()}
	}
	system, err := factory(m.container)
	if err != nil {
		return fmt.Errorf("failed to construct entity system %s: %w", typ, err)
	}
	return m.Register(system)
}

// Systems returns the names of the registered systems in registration order.
func (m *EntitySystemManager) Systems() []string {
	names := make([]string, 0, m.systems.Len())
	for _, rs := range m.systems.All() {
		names = append(names, rs.name)
	}
	return names
}

// Batches returns the parallel execution plan by system name.
func (m *EntitySystemManager) Batches() [][]string {
	plan := m.plan()
	out := make([][]string, len(plan))
	for i, batch := range plan {
		out[i] = make([]string, len(batch))
		for j, idx := range batch {
			out[i][j] = (*m.systems.GetItem(idx)).name
		}
	}
	return out
}

// Process runs every registered system once. Each system sees the writes of
// the systems that ran before it in the same frame. The first failing system
// ends the frame.
func (m *EntitySystemManager) Process(entityManager *EntityManager, deltaTime float32) error {
	if m.cfg.parallel {
		return m.processParallel(entityManager, deltaTime)
	}
	for _, rs := range m.systems.All() {
		data := entityManager.GetEntitySystemData(rs.types...)
		if err := m.run(rs, entityManager, data, deltaTime); err != nil {
			return err
		}
	}
	return nil
}

// processParallel runs the plan batch by batch. The entity manager is locked
// for the whole frame so structural changes queue up until the frame ends.
func (m *EntitySystemManager) processParallel(entityManager *EntityManager, deltaTime float32) (err error) {
	entityManager.Lock()
	defer func() {
		if unlockErr := entityManager.Unlock(); err == nil && unlockErr != nil {
			err = fmt.Errorf("failed to apply queued changes: %w", unlockErr)
		}
	}()

	for _, batch := range m.plan() {
		resolved := make([]*EntitySystemData, len(batch))
		for i, idx := range batch {
			resolved[i] = entityManager.GetEntitySystemData((*m.systems.GetItem(idx)).types...)
		}

		if len(batch) == 1 {
			if err := m.run(*m.systems.GetItem(batch[0]), entityManager, resolved[0], deltaTime); err != nil {
				return err
			}
			continue
		}

		var g errgroup.Group
		if m.cfg.workers > 0 {
			g.SetLimit(m.cfg.workers)
		}
		for i, idx := range batch {
			rs := *m.systems.GetItem(idx)
			data := resolved[i]
			g.Go(func() error {
				return m.run(rs, entityManager, data, deltaTime)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (m *EntitySystemManager) run(rs *registeredSystem, entityManager *EntityManager, data *EntitySystemData, deltaTime float32) error {
	if err := rs.system.Process(entityManager, data, deltaTime); err != nil {
		m.logger.Error("entity system failed",
			zap.String("system", rs.name),
			zap.Int("entities", data.EntityCount()),
			zap.Error(err),
		)
		return fmt.Errorf("entity system %s: %w", rs.name, err)
	}
	return nil
}

func (m *EntitySystemManager) plan() [][]int {
	if m.batches == nil {
		definitions := make([]*EntitySystemDefinition, 0, m.systems.Len())
		for _, rs := range m.systems.All() {
			definitions = append(definitions, rs.definition)
		}
		m.batches = planBatches(definitions)
	}
	return m.batches
}
