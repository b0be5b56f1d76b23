// Package scene reads and writes the binary entity scenes produced by the
// offline scene compiler and instantiates them into an EntityManager.
package scene

import (
	"fmt"

	entities "github.com/tdecroyere/CoreEngine-sub001"
)

// Magic opens every scene file.
const Magic = "CESN"

// Version is the only format version this package reads and writes.
const Version uint16 = 1

// Scene is a decoded scene file.
type Scene struct {
	Entities []EntityRecord
}

// EntityRecord is one entity: the raw value of each of its components.
type EntityRecord struct {
	Components []ComponentRecord
}

// ComponentRecord is a component image keyed by its identity hash.
type ComponentRecord struct {
	Hash uint64
	Data []byte
}

// NewEntityRecord captures component values. Every value must be of a
// registered component type.
func NewEntityRecord(values ...any) (EntityRecord, error) {
	record := EntityRecord{Components: make([]ComponentRecord, 0, len(values))}
	for _, value := range values {
		ct, raw, err := entities.EncodeComponent(value)
		if err != nil {
			return EntityRecord{}, err
		}
		record.Components = append(record.Components, ComponentRecord{Hash: ct.Hash(), Data: raw})
	}
	return record, nil
}

// Add appends an entity built from values.
func (s *Scene) Add(values ...any) error {
	record, err := NewEntityRecord(values...)
	if err != nil {
		return err
	}
	s.Entities = append(s.Entities, record)
	return nil
}

// Load creates one entity per record, in record order, and copies the
// recorded component images into it. Entities sharing a component set share
// a layout.
func Load(em *entities.EntityManager, s *Scene) ([]entities.EntityID, error) {
	ids := make([]entities.EntityID, 0, len(s.Entities))
	for i, record := range s.Entities {
		types := make([]entities.ComponentType, len(record.Components))
		for j, component := range record.Components {
			ct, ok := entities.ComponentTypeByHash(component.Hash)
			if !ok {
				return ids, fmt.Errorf("entity %d: %w", i, entities.UnknownComponentHashError{Hash: component.Hash})
			}
			if uintptr(len(component.Data)) != ct.Size() {
				return ids, FormatError{Reason: fmt.Sprintf("entity %d: component %s is %d bytes, expected %d", i, ct, len(component.Data), ct.Size())}
			}
			types[j] = ct
		}

		layout, err := em.CreateLayout(types...)
		if err != nil {
			return ids, fmt.Errorf("entity %d: %w", i, err)
		}
		id, err := em.CreateEntity(layout)
		if err != nil {
			return ids, fmt.Errorf("entity %d: %w", i, err)
		}
		for j, component := range record.Components {
			if err := em.SetComponentBytes(id, types[j], component.Data); err != nil {
				return ids, fmt.Errorf("entity %d: %w", i, err)
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FormatError reports a malformed scene file.
type FormatError struct {
	Reason string
}

func (e FormatError) Error() string {
	return "invalid scene: " + e.Reason
}
