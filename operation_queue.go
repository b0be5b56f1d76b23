package entities

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type operation struct {
	typ       operationType
	layout    LayoutID
	amount    int
	entity    EntityID
	component ComponentType
	values    []any
}

type operationType int

const (
	opNoop operationType = iota - 1
	opCreate
	opDestroy
	opSetComponent
)

// opQueue is the deferred structural-change buffer of a locked EntityManager.
// Systems running concurrently may enqueue, so it carries its own mutex.
type opQueue struct {
	mu             sync.Mutex
	createOps      []operation
	componentOps   []operation
	destroyOps     []operation
	pendingDestroy map[EntityID]struct{}
}

// EnqueueCreateEntities creates amount entities on layout, each set to the
// given component values. Applied immediately when the manager is unlocked.
func (em *EntityManager) EnqueueCreateEntities(layout LayoutID, amount int, values ...any) error {
	if !em.Locked() {
		return em.createWithValues(layout, amount, values)
	}
	em.opQueue.mu.Lock()
	defer em.opQueue.mu.Unlock()
	em.opQueue.createOps = append(em.opQueue.createOps, operation{
		typ:    opCreate,
		layout: layout,
		amount: amount,
		values: values,
	})
	return nil
}

// EnqueueSetComponentData defers a dynamically typed component write.
// Writes to entities already queued for destruction are dropped.
func (em *EntityManager) EnqueueSetComponentData(id EntityID, ct ComponentType, value any) error {
	if !em.Locked() {
		return em.SetComponentDataDynamic(id, ct, value)
	}
	em.opQueue.mu.Lock()
	defer em.opQueue.mu.Unlock()
	if _, destroyed := em.opQueue.pendingDestroy[id]; destroyed {
		return nil
	}
	em.opQueue.componentOps = append(em.opQueue.componentOps, operation{
		typ:       opSetComponent,
		entity:    id,
		component: ct,
		values:    []any{value},
	})
	return nil
}

// EnqueueDestroyEntity defers the destruction of id. Queuing the same entity
// twice destroys it once and cancels its queued component writes.
func (em *EntityManager) EnqueueDestroyEntity(id EntityID) error {
	if !em.Locked() {
		return em.DestroyEntity(id)
	}
	em.opQueue.mu.Lock()
	defer em.opQueue.mu.Unlock()
	if _, exists := em.opQueue.pendingDestroy[id]; exists {
		return nil
	}
	em.opQueue.pendingDestroy[id] = struct{}{}
	for i := range em.opQueue.componentOps {
		if em.opQueue.componentOps[i].entity == id {
			em.opQueue.componentOps[i].typ = opNoop
		}
	}
	em.opQueue.destroyOps = append(em.opQueue.destroyOps, operation{
		typ:    opDestroy,
		entity: id,
	})
	return nil
}

func (em *EntityManager) createWithValues(layout LayoutID, amount int, values []any) error {
	ids, err := em.CreateEntities(layout, amount)
	if err != nil {
		return err
	}
	for _, id := range ids {
		for _, value := range values {
			if err := em.SetComponentDataDynamic(id, TypeOfValue(value), value); err != nil {
				return err
			}
		}
	}
	return nil
}

// processOperationQueue applies every queued operation: creates, then
// component writes, then destroys. A failing operation is logged and skipped;
// the rest of the queue still applies and the failures are returned together.
func (em *EntityManager) processOperationQueue() error {
	q := &em.opQueue
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.createOps) == 0 &&
		len(q.componentOps) == 0 &&
		len(q.destroyOps) == 0 {
		return nil
	}

	defer func() {
		q.createOps = q.createOps[:0]
		q.componentOps = q.componentOps[:0]
		q.destroyOps = q.destroyOps[:0]
		clear(q.pendingDestroy)
	}()

	var errs error
	fail := func(err error, fields ...zap.Field) {
		em.logger.Warn("queued operation failed", append(fields, zap.Error(err))...)
		errs = multierr.Append(errs, err)
	}

	// Process creates first
	for _, op := range q.createOps {
		if err := em.createWithValues(op.layout, op.amount, op.values); err != nil {
			fail(fmt.Errorf("failed to process queued entity creation: %w", err),
				zap.String("operation", "create"),
				zap.Uint32("layout", uint32(op.layout)),
			)
		}
	}

	for _, op := range q.componentOps {
		if op.typ != opSetComponent {
			continue
		}
		if err := em.SetComponentDataDynamic(op.entity, op.component, op.values[0]); err != nil {
			fail(fmt.Errorf("failed to process queued component write: %w", err),
				zap.String("operation", "set"),
				zap.Uint32("entity", uint32(op.entity)),
			)
		}
	}

	// Process destroys last
	for _, op := range q.destroyOps {
		if err := em.DestroyEntity(op.entity); err != nil {
			fail(fmt.Errorf("failed to process queued entity destruction: %w", err),
				zap.String("operation", "destroy"),
				zap.Uint32("entity", uint32(op.entity)),
			)
		}
	}
	return errs
}
