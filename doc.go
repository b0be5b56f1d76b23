/*
Package entities is the entity/component storage and scheduling core of CoreEngine.

Every simulated object is an entity: an opaque id whose data lives in
component records. Entities sharing the same set of component types share a
layout, and a layout stores its entities in fixed-capacity chunks holding one
dense column per component type. Systems declare the component types they
read and write; once per frame the system manager resolves each declaration
against the stored layouts and hands the system the matching data.

Core Concepts:

  - Component: a plain, fixed-size value implementing Default.
  - Layout: an order-independent set of component types.
  - Chunk: a fixed-capacity block of parallel component columns.
  - Entity: a sequential id referencing one row of one chunk.
  - System: a per-frame unit with a declared read/write contract.

Basic Usage:

	// Register component records once, at startup
	position := entities.MustRegisterComponent[Position]()
	velocity := entities.MustRegisterComponent[Velocity]()

	// Create a layout and some entities
	em := entities.Factory.NewEntityManager()
	layout, _ := em.CreateLayout(position, velocity)
	em.CreateEntities(layout, 100)

	// Register a system and drive it from the host loop
	systems := entities.Factory.NewEntitySystemManager(nil)
	systems.Register(&MovementSystem{})
	for frame := range frames {
		systems.Process(em, frame.DeltaTime)
	}

Inside a system, the flattened view walks every matched entity as one
sequence:

	func (s *MovementSystem) Process(em *entities.EntityManager, data *entities.EntitySystemData, dt float32) error {
		positions, err := entities.GetComponentDataArray[Position](data)
		if err != nil {
			return err
		}
		velocities, err := entities.GetComponentDataArray[Velocity](data)
		if err != nil {
			return err
		}
		for i := range positions.Len() {
			pos, vel := positions.At(i), velocities.At(i)
			pos.X += vel.X * dt
		}
		return nil
	}

The chunk-wise view (Chunks and GetComponentArray) keeps chunk boundaries for
systems that batch per chunk.

An EntityManager is not safe for concurrent use. With parallel scheduling the
system manager locks it for the frame; structural changes then go through the
Enqueue methods and are applied when the frame ends.
*/
package entities
