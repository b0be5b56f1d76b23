package entities_test

import (
	"fmt"

	entities "github.com/tdecroyere/CoreEngine-sub001"
)

// Transform is a simple component for 2D coordinates
type Transform struct {
	X, Y float32
}

func (Transform) Default() Transform {
	return Transform{}
}

// Motion is a simple component for 2D movement
type Motion struct {
	X, Y float32
}

func (Motion) Default() Motion {
	return Motion{X: 1}
}

var (
	transformType = entities.MustRegisterComponent[Transform]()
	motionType    = entities.MustRegisterComponent[Motion]()
)

// MotionSystem moves every entity holding both a Transform and a Motion.
type MotionSystem struct{}

func (MotionSystem) BuildDefinition() *entities.EntitySystemDefinition {
	return entities.NewEntitySystemDefinition("Motion",
		entities.ReadWrite[Transform](),
		entities.ReadOnly[Motion](),
	)
}

func (MotionSystem) Process(_ *entities.EntityManager, data *entities.EntitySystemData, deltaTime float32) error {
	transforms, err := entities.GetComponentDataArray[Transform](data)
	if err != nil {
		return err
	}
	motions, err := entities.GetComponentDataArray[Motion](data)
	if err != nil {
		return err
	}
	for i, transform := range transforms.All() {
		motion := motions.At(i)
		transform.X += motion.X * deltaTime
		transform.Y += motion.Y * deltaTime
	}
	return nil
}

// Example shows basic usage with layout creation, entities and one system
func Example_basic() {
	em := entities.Factory.NewEntityManager()

	moving, _ := em.CreateLayout(motionType, transformType)
	static, _ := em.CreateLayout(transformType)

	ids, _ := em.CreateEntities(moving, 2)
	still, _ := em.CreateEntity(static)
	entities.SetComponentData(em, ids[1], Motion{X: 0, Y: 2})

	systems := entities.Factory.NewEntitySystemManager(nil)
	systems.Register(MotionSystem{})

	for range 3 {
		systems.Process(em, 0.5)
	}

	for _, id := range append(ids, still) {
		transform, _ := entities.GetComponentData[Transform](em, id)
		fmt.Printf("Entity %d: (%.1f, %.1f)\n", id, transform.X, transform.Y)
	}

	// Output:
	// Entity 1: (1.5, 0.0)
	// Entity 2: (0.0, 3.0)
	// Entity 3: (0.0, 0.0)
}

// Example_chunks shows the chunk-wise view of a query
func Example_chunks() {
	em := entities.Factory.NewEntityManager(entities.WithChunkCapacity(4))
	layout, _ := em.CreateLayout(transformType)
	em.CreateEntities(layout, 10)

	data := em.GetEntitySystemData(transformType)
	for _, chunk := range data.Chunks() {
		transforms, _ := entities.GetComponentArray[Transform](chunk)
		fmt.Printf("Chunk %d: %d entities, first %d\n", chunk.Index(), transforms.Len(), chunk.Entities()[0])
	}

	// Output:
	// Chunk 0: 4 entities, first 1
	// Chunk 1: 4 entities, first 5
	// Chunk 2: 2 entities, first 9
}

// Example_query shows composite queries
func Example_query() {
	em := entities.Factory.NewEntityManager()

	moving, _ := em.CreateLayout(transformType, motionType)
	static, _ := em.CreateLayout(transformType)
	em.CreateEntities(moving, 3)
	em.CreateEntities(static, 5)

	query := entities.Factory.NewQuery()
	node := query.And(transformType, entities.Factory.NewQuery().Not(motionType))

	fmt.Printf("Static entities: %d\n", em.Query(node).EntityCount())

	// Output:
	// Static entities: 5
}
