package entities

import "github.com/TheBitDrifter/table"

// GetComponentData returns a copy of the T component of entity id.
func GetComponentData[T any](em *EntityManager, id EntityID) (T, error) {
	ref, err := GetComponentDataRef[T](em, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return *ref, nil
}

// GetComponentDataRef returns a pointer into the chunk cell holding the T
// component of entity id. The pointer is valid until the next structural
// change of the entity's chunk.
func GetComponentDataRef[T any](em *EntityManager, id EntityID) (*T, error) {
	loc, meta, err := em.cell(id, TypeOf[T]())
	if err != nil {
		return nil, err
	}
	accessor := meta.accessor.(table.Accessor[T])
	return accessor.Get(loc.slot(), loc.chunk.table), nil
}

// SetComponentData overwrites the T component of entity id in place.
func SetComponentData[T any](em *EntityManager, id EntityID, value T) error {
	ref, err := GetComponentDataRef[T](em, id)
	if err != nil {
		return err
	}
	*ref = value
	return nil
}

// HasComponent reports whether entity id is alive and its layout holds T.
func HasComponent[T any](em *EntityManager, id EntityID) bool {
	loc, err := em.directory.locate(id)
	if err != nil {
		return false
	}
	return loc.layout.Contains(TypeOf[T]())
}

// GetEntitiesByComponentType returns every entity whose layout holds T.
func GetEntitiesByComponentType[T any](em *EntityManager) []EntityID {
	return em.GetEntitySystemData(TypeOf[T]()).Entities()
}
