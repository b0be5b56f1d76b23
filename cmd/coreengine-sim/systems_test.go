package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	entities "github.com/tdecroyere/CoreEngine-sub001"
	"github.com/tdecroyere/CoreEngine-sub001/config"
	"github.com/tdecroyere/CoreEngine-sub001/internal/injector"
)

func TestSimulation(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		cfg := config.Default()
		cfg.Entities.ChunkCapacity = 16
		cfg.Scheduler.Parallel = parallel
		cfg.Logging.Level = "error"

		engine, err := injector.NewEngine(cfg)
		require.NoError(t, err)
		require.NoError(t, registerSystems(engine))
		require.NoError(t, populate(engine, 40))

		assert.Equal(t, 40+4+1, engine.Entities.EntityCount())
		if parallel {
			assert.Equal(t, [][]string{{"Movement"}, {"Transform"}, {"Camera"}}, engine.Systems.Batches())
		}

		for range 60 {
			require.NoError(t, engine.Step(1.0/60))
		}

		// Entity 2 moves at (-2, 0, -1) per second
		transform, err := entities.GetComponentData[Transform](engine.Entities, 2)
		require.NoError(t, err)
		assert.InDelta(t, -2, transform.Position[0], 1e-3)
		assert.InDelta(t, -1, transform.Position[2], 1e-3)
		assert.InDelta(t, transform.Position[0], transform.World[12], 1e-6)

		cameras := entities.GetEntitiesByComponentType[Camera](engine.Entities)
		require.Len(t, cameras, 1)
		camera, err := entities.GetComponentData[Camera](engine.Entities, cameras[0])
		require.NoError(t, err)
		assert.Less(t, camera.ViewProjectionDet, float32(0))
	}
}
