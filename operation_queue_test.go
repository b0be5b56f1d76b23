package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLockedStructuralChanges(t *testing.T) {
	em := Factory.NewEntityManager()
	layout, err := em.CreateLayout(positionType)
	require.NoError(t, err)
	id, err := em.CreateEntity(layout)
	require.NoError(t, err)

	em.Lock()
	var locked LockedStorageError

	_, err = em.CreateLayout(velocityType)
	assert.True(t, errors.As(err, &locked))
	_, err = em.CreateEntity(layout)
	assert.True(t, errors.As(err, &locked))
	assert.True(t, errors.As(em.DestroyEntity(id), &locked))

	// Cell writes are not structural
	require.NoError(t, SetComponentData(em, id, Position{X: 1}))

	require.NoError(t, em.Unlock())
	assert.False(t, em.Locked())
	assert.NoError(t, em.Unlock(), "unlocking an unlocked manager is a no-op")
}

func TestOperationQueue(t *testing.T) {
	em := Factory.NewEntityManager()
	layout, err := em.CreateLayout(positionType, healthType)
	require.NoError(t, err)
	ids, err := em.CreateEntities(layout, 3)
	require.NoError(t, err)

	em.Lock()
	em.Lock()

	require.NoError(t, em.EnqueueCreateEntities(layout, 2, Health{Current: 1, Max: 2}))
	require.NoError(t, em.EnqueueSetComponentData(ids[0], positionType, Position{X: 5}))
	require.NoError(t, em.EnqueueSetComponentData(ids[1], positionType, Position{X: 6}))
	require.NoError(t, em.EnqueueDestroyEntity(ids[1]))
	require.NoError(t, em.EnqueueDestroyEntity(ids[1]))
	require.NoError(t, em.EnqueueSetComponentData(ids[1], positionType, Position{X: 7}))
	require.NoError(t, em.EnqueueDestroyEntity(ids[2]))

	assert.Equal(t, 3, em.EntityCount(), "nothing applies while locked")

	require.NoError(t, em.Unlock())
	assert.True(t, em.Locked(), "locks nest")
	assert.Equal(t, 3, em.EntityCount())

	require.NoError(t, em.Unlock())
	assert.Equal(t, 3, em.EntityCount())

	pos, err := GetComponentData[Position](em, ids[0])
	require.NoError(t, err)
	assert.Equal(t, Position{X: 5}, pos)

	assert.False(t, em.Exists(ids[1]))
	assert.False(t, em.Exists(ids[2]))

	created := []EntityID{4, 5}
	for _, id := range created {
		health, err := GetComponentData[Health](em, id)
		require.NoError(t, err)
		assert.Equal(t, Health{Current: 1, Max: 2}, health)
	}

	// The queue is empty again
	require.NoError(t, em.Unlock())
	assert.Equal(t, 3, em.EntityCount())
}

func TestOperationQueueUnlocked(t *testing.T) {
	em := Factory.NewEntityManager()
	layout, err := em.CreateLayout(positionType)
	require.NoError(t, err)

	require.NoError(t, em.EnqueueCreateEntities(layout, 2, Position{Y: 3}))
	assert.Equal(t, 2, em.EntityCount())

	require.NoError(t, em.EnqueueSetComponentData(1, positionType, Position{Y: 4}))
	pos, err := GetComponentData[Position](em, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, pos.Y)

	require.NoError(t, em.EnqueueDestroyEntity(2))
	assert.False(t, em.Exists(2))
}

func TestOperationQueueFailure(t *testing.T) {
	em := Factory.NewEntityManager()
	layout, err := em.CreateLayout(positionType)
	require.NoError(t, err)

	em.Lock()
	require.NoError(t, em.EnqueueCreateEntities(layout, 1, Velocity{}))
	err = em.Unlock()

	var notIn ComponentNotInLayoutError
	assert.True(t, errors.As(err, &notIn), "got %v", err)
	assert.False(t, em.Locked())
}

func TestOperationQueueContinuesAfterFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	em := Factory.NewEntityManager(WithLogger(zap.New(core)))
	layout, err := em.CreateLayout(positionType)
	require.NoError(t, err)
	ids, err := em.CreateEntities(layout, 3)
	require.NoError(t, err)

	em.Lock()
	require.NoError(t, em.EnqueueCreateEntities(layout, 1, Velocity{}))
	require.NoError(t, em.EnqueueSetComponentData(99, positionType, Position{X: 1}))
	require.NoError(t, em.EnqueueSetComponentData(ids[0], positionType, Position{X: 2}))
	require.NoError(t, em.EnqueueDestroyEntity(ids[1]))
	err = em.Unlock()

	var notIn ComponentNotInLayoutError
	var unknown UnknownEntityError
	assert.True(t, errors.As(err, &notIn), "got %v", err)
	assert.True(t, errors.As(err, &unknown), "got %v", err)
	assert.False(t, em.Locked())

	// Operations after the failures still apply
	pos, err := GetComponentData[Position](em, ids[0])
	require.NoError(t, err)
	assert.Equal(t, Position{X: 2}, pos)
	assert.False(t, em.Exists(ids[1]))
	assert.True(t, em.Exists(ids[2]))

	failures := logs.FilterMessage("queued operation failed").All()
	require.Len(t, failures, 2)
	assert.Equal(t, zapcore.WarnLevel, failures[0].Level)
	assert.Equal(t, "create", failures[0].ContextMap()["operation"])
	assert.Equal(t, "set", failures[1].ContextMap()["operation"])
	assert.EqualValues(t, 99, failures[1].ContextMap()["entity"])

	// The queue is empty again
	require.NoError(t, em.Unlock())
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	em := Factory.NewEntityManager(WithLogger(logger), WithChunkCapacity(2))
	layout, err := em.CreateLayout(positionType, healthType)
	require.NoError(t, err)
	_, err = em.CreateEntities(layout, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("layout created").Len())
	assert.Equal(t, 2, logs.FilterMessage("chunk allocated").Len())

	systems := Factory.NewEntitySystemManager(nil, WithLogger(logger))
	require.NoError(t, systems.Register(failingSystem{}))
	assert.Equal(t, 1, logs.FilterMessage("entity system registered").Len())

	require.Error(t, systems.Process(em, 0))
	failures := logs.FilterMessage("entity system failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)
	assert.Equal(t, "Failing", failures[0].ContextMap()["system"])
	assert.EqualValues(t, 3, failures[0].ContextMap()["entities"])
}
