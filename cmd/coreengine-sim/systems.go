package main

import (
	"fmt"
	"math"

	entities "github.com/tdecroyere/CoreEngine-sub001"
	"github.com/tdecroyere/CoreEngine-sub001/internal/injector"
)

type Transform struct {
	Position  [3]float32
	Scale     float32
	RotationY float32
	World     [16]float32
}

func (Transform) Default() Transform {
	return Transform{Scale: 1}
}

type Velocity struct {
	Linear  [3]float32
	Angular float32
}

func (Velocity) Default() Velocity {
	return Velocity{}
}

type Camera struct {
	FieldOfView       float32
	Near, Far         float32
	AspectRatio       float32
	ViewProjectionDet float32
}

func (Camera) Default() Camera {
	return Camera{FieldOfView: math.Pi / 3, Near: 0.1, Far: 1000, AspectRatio: 16.0 / 9.0}
}

var (
	transformType = entities.MustRegisterComponent[Transform]()
	velocityType  = entities.MustRegisterComponent[Velocity]()
	cameraType    = entities.MustRegisterComponent[Camera]()
)

// MovementSystem integrates velocities.
type MovementSystem struct{}

func (MovementSystem) BuildDefinition() *entities.EntitySystemDefinition {
	return entities.NewEntitySystemDefinition("Movement",
		entities.ReadWrite[Transform](),
		entities.ReadOnly[Velocity](),
	)
}

func (MovementSystem) Process(_ *entities.EntityManager, data *entities.EntitySystemData, deltaTime float32) error {
	transforms, err := entities.GetComponentDataArray[Transform](data)
	if err != nil {
		return err
	}
	velocities, err := entities.GetComponentDataArray[Velocity](data)
	if err != nil {
		return err
	}
	for i, transform := range transforms.All() {
		velocity := velocities.At(i)
		for axis := range transform.Position {
			transform.Position[axis] += velocity.Linear[axis] * deltaTime
		}
		transform.RotationY += velocity.Angular * deltaTime
	}
	return nil
}

// TransformSystem rebuilds world matrices chunk by chunk.
type TransformSystem struct{}

func (TransformSystem) BuildDefinition() *entities.EntitySystemDefinition {
	return entities.NewEntitySystemDefinition("Transform", entities.ReadWrite[Transform]())
}

func (TransformSystem) Process(_ *entities.EntityManager, data *entities.EntitySystemData, _ float32) error {
	for _, chunk := range data.Chunks() {
		transforms, err := entities.GetComponentArray[Transform](chunk)
		if err != nil {
			return err
		}
		for _, t := range transforms.All() {
			sin, cos := math.Sincos(float64(t.RotationY))
			s, c := float32(sin)*t.Scale, float32(cos)*t.Scale
			t.World = [16]float32{
				c, 0, -s, 0,
				0, t.Scale, 0, 0,
				s, 0, c, 0,
				t.Position[0], t.Position[1], t.Position[2], 1,
			}
		}
	}
	return nil
}

// CameraSystem keeps the projection of every camera current.
type CameraSystem struct{}

func (CameraSystem) BuildDefinition() *entities.EntitySystemDefinition {
	return entities.NewEntitySystemDefinition("Camera",
		entities.ReadWrite[Camera](),
		entities.ReadOnly[Transform](),
	)
}

func (CameraSystem) Process(_ *entities.EntityManager, data *entities.EntitySystemData, _ float32) error {
	cameras, err := entities.GetComponentDataArray[Camera](data)
	if err != nil {
		return err
	}
	cursor := data.Cursor()
	for cursor.Next() {
		camera := cameras.GetFromCursor(cursor)
		yScale := 1 / float32(math.Tan(float64(camera.FieldOfView)/2))
		xScale := yScale / camera.AspectRatio
		depth := camera.Far / (camera.Near - camera.Far)
		camera.ViewProjectionDet = xScale * yScale * depth * camera.Near
	}
	return nil
}

func registerSystems(engine *injector.Engine) error {
	for _, system := range []entities.EntitySystem{
		MovementSystem{},
		TransformSystem{},
		CameraSystem{},
	} {
		if err := engine.Systems.Register(system); err != nil {
			return err
		}
	}
	return nil
}

// populate spawns n moving entities, a static prop per ten, and one camera.
func populate(engine *injector.Engine, n int) error {
	em := engine.Entities
	moving, err := em.CreateLayout(transformType, velocityType)
	if err != nil {
		return err
	}
	static, err := em.CreateLayout(transformType)
	if err != nil {
		return err
	}
	camera, err := em.CreateLayout(cameraType, transformType)
	if err != nil {
		return err
	}

	ids, err := em.CreateEntities(moving, n)
	if err != nil {
		return fmt.Errorf("spawn moving entities: %w", err)
	}
	for i, id := range ids {
		v := Velocity{
			Linear:  [3]float32{float32(i%7) - 3, 0, float32(i%5) - 2},
			Angular: float32(i%3) * 0.5,
		}
		if err := entities.SetComponentData(em, id, v); err != nil {
			return err
		}
	}
	if _, err := em.CreateEntities(static, n/10); err != nil {
		return fmt.Errorf("spawn props: %w", err)
	}
	_, err = em.CreateEntity(camera)
	return err
}
