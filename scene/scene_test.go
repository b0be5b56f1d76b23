package scene

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	entities "github.com/tdecroyere/CoreEngine-sub001"
)

type Transform struct {
	X, Y, Z float32
}

func (Transform) Default() Transform {
	return Transform{}
}

type Camera struct {
	FieldOfView float32
	Near, Far   float32
}

func (Camera) Default() Camera {
	return Camera{FieldOfView: 60, Near: 0.1, Far: 1000}
}

var (
	transformType = entities.MustRegisterComponent[Transform]()
	cameraType    = entities.MustRegisterComponent[Camera]()
)

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	s := &Scene{}
	require.NoError(t, s.Add(Transform{X: 1, Y: 2, Z: 3}))
	require.NoError(t, s.Add(Camera{FieldOfView: 90, Near: 1, Far: 10}, Transform{Z: -5}))
	require.NoError(t, s.Add(Transform{X: 7}))
	return s
}

func TestEncodeDecode(t *testing.T) {
	s := newTestScene(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))

	raw := buf.Bytes()
	assert.Equal(t, []byte(Magic), raw[:4])
	assert.Equal(t, Version, binary.LittleEndian.Uint16(raw[4:6]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(raw[6:10]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(raw[10:14]))
	assert.Equal(t, transformType.Hash(), binary.LittleEndian.Uint64(raw[14:22]))
	assert.Equal(t, uint32(12), binary.LittleEndian.Uint32(raw[22:26]))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestDecodeErrors(t *testing.T) {
	var valid bytes.Buffer
	require.NoError(t, Encode(&valid, newTestScene(t)))

	badVersion := bytes.Clone(valid.Bytes())
	binary.LittleEndian.PutUint16(badVersion[4:6], 9)

	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"Bad magic", append([]byte("NOPE"), valid.Bytes()[4:]...)},
		{"Bad version", badVersion},
		{"Truncated header", valid.Bytes()[:7]},
		{"Truncated component", valid.Bytes()[:valid.Len()-3]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			var format FormatError
			assert.True(t, errors.As(err, &format), "got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	em := entities.Factory.NewEntityManager()
	ids, err := Load(em, newTestScene(t))
	require.NoError(t, err)
	require.Len(t, ids, 3)

	assert.Len(t, em.Layouts(), 2, "records with the same component set share a layout")

	first, err := entities.GetComponentData[Transform](em, ids[0])
	require.NoError(t, err)
	assert.Equal(t, Transform{X: 1, Y: 2, Z: 3}, first)

	camera, err := entities.GetComponentData[Camera](em, ids[1])
	require.NoError(t, err)
	assert.Equal(t, Camera{FieldOfView: 90, Near: 1, Far: 10}, camera)

	transform, err := entities.GetComponentData[Transform](em, ids[1])
	require.NoError(t, err)
	assert.Equal(t, Transform{Z: -5}, transform)

	firstLayout, err := em.LayoutOf(ids[0])
	require.NoError(t, err)
	thirdLayout, err := em.LayoutOf(ids[2])
	require.NoError(t, err)
	assert.Equal(t, firstLayout, thirdLayout)
}

func TestLoadErrors(t *testing.T) {
	t.Run("Unknown hash", func(t *testing.T) {
		s := &Scene{Entities: []EntityRecord{{
			Components: []ComponentRecord{{Hash: 0x1234, Data: make([]byte, 4)}},
		}}}
		_, err := Load(entities.Factory.NewEntityManager(), s)
		var unknown entities.UnknownComponentHashError
		require.True(t, errors.As(err, &unknown), "got %v", err)
		assert.Equal(t, uint64(0x1234), unknown.Hash)
	})

	t.Run("Size mismatch", func(t *testing.T) {
		s := &Scene{Entities: []EntityRecord{{
			Components: []ComponentRecord{{Hash: cameraType.Hash(), Data: make([]byte, 3)}},
		}}}
		_, err := Load(entities.Factory.NewEntityManager(), s)
		var format FormatError
		assert.True(t, errors.As(err, &format), "got %v", err)
	})

	t.Run("Repeated component", func(t *testing.T) {
		s := &Scene{}
		require.NoError(t, s.Add(Transform{}, Transform{X: 1}))
		_, err := Load(entities.Factory.NewEntityManager(), s)
		var invalid entities.InvalidLayoutError
		assert.True(t, errors.As(err, &invalid), "got %v", err)
	})

	t.Run("Unregistered value", func(t *testing.T) {
		type loose struct{ V int }
		_, err := NewEntityRecord(loose{V: 1})
		var invalid entities.InvalidComponentError
		assert.True(t, errors.As(err, &invalid))
	})
}
