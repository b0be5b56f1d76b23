package entities

import (
	"fmt"
	"strings"
)

type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "entity manager is currently locked"
}

// InvalidLayoutError is returned when a layout request is empty, repeats a
// type, names a type that was never registered as a component, or refers to
// an unknown layout id.
type InvalidLayoutError struct {
	Reason string
	Types  []ComponentType
}

func (e InvalidLayoutError) Error() string {
	if len(e.Types) == 0 {
		return fmt.Sprintf("invalid layout: %s", e.Reason)
	}
	names := make([]string, len(e.Types))
	for i, t := range e.Types {
		names[i] = t.String()
	}
	return fmt.Sprintf("invalid layout {%s}: %s", strings.Join(names, ", "), e.Reason)
}

type InvalidComponentError struct {
	Type   ComponentType
	Reason string
}

func (e InvalidComponentError) Error() string {
	return fmt.Sprintf("type %s cannot be a component: %s", e.Type, e.Reason)
}

type UnknownEntityError struct {
	Entity EntityID
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity: %d", e.Entity)
}

type ComponentNotInLayoutError struct {
	Entity    EntityID
	Layout    LayoutID
	Component ComponentType
}

func (e ComponentNotInLayoutError) Error() string {
	if e.Entity == 0 {
		return fmt.Sprintf("component %s is not part of layout %d", e.Component, e.Layout)
	}
	return fmt.Sprintf("component %s is not part of layout %d of entity %d", e.Component, e.Layout, e.Entity)
}

type ComponentTypeMismatchError struct {
	Expected ComponentType
	Value    any
}

func (e ComponentTypeMismatchError) Error() string {
	return fmt.Sprintf("component value of type %T does not match declared type %s", e.Value, e.Expected)
}

// ComponentNotDeclaredError is returned when a system asks its data view for a
// component type it did not declare.
type ComponentNotDeclaredError struct {
	Component ComponentType
}

func (e ComponentNotDeclaredError) Error() string {
	return fmt.Sprintf("component %s was not declared by the system definition", e.Component)
}

type DuplicateSystemRegistrationError struct {
	System string
}

func (e DuplicateSystemRegistrationError) Error() string {
	return fmt.Sprintf("entity system already registered: %s", e.System)
}

type UnknownComponentHashError struct {
	Hash uint64
}

func (e UnknownComponentHashError) Error() string {
	return fmt.Sprintf("no component registered for identity hash %#016x", e.Hash)
}
