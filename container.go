package entities

import (
	"fmt"
	"reflect"
)

// SystemManagerContainer hands already-constructed engine managers (resources,
// graphics, inputs) to system factories, keyed by their concrete type.
type SystemManagerContainer struct {
	managers *registry[reflect.Type, any]
}

func newContainer() *SystemManagerContainer {
	return &SystemManagerContainer{
		managers: newRegistry[reflect.Type, any](0),
	}
}

func (c *SystemManagerContainer) RegisterSystemManager(manager any) error {
	if manager == nil {
		return fmt.Errorf("cannot register a nil system manager")
	}
	if _, err := c.managers.Register(reflect.TypeOf(manager), manager); err != nil {
		return fmt.Errorf("failed to register system manager %T: %w", manager, err)
	}
	return nil
}

// GetSystemManager returns the manager registered with concrete type T.
func GetSystemManager[T any](c *SystemManagerContainer) (T, bool) {
	manager, ok := c.managers.Lookup(reflect.TypeFor[T]())
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := manager.(T)
	return typed, ok
}
