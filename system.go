package entities

import "slices"

// EntitySystemParameter names one component type a system touches and
// whether it only reads it.
type EntitySystemParameter struct {
	componentType ComponentType
	readOnly      bool
}

func NewEntitySystemParameter(ct ComponentType, readOnly bool) EntitySystemParameter {
	return EntitySystemParameter{componentType: ct, readOnly: readOnly}
}

func ReadOnly[T any]() EntitySystemParameter {
	return NewEntitySystemParameter(TypeOf[T](), true)
}

func ReadWrite[T any]() EntitySystemParameter {
	return NewEntitySystemParameter(TypeOf[T](), false)
}

func (p EntitySystemParameter) Type() ComponentType {
	return p.componentType
}

func (p EntitySystemParameter) ReadOnly() bool {
	return p.readOnly
}

// EntitySystemDefinition is the declared data contract of a system. It is
// immutable once built.
type EntitySystemDefinition struct {
	name       string
	parameters []EntitySystemParameter
}

// NewEntitySystemDefinition builds a definition. A type named more than once
// is kept once, read-write if any occurrence is.
func NewEntitySystemDefinition(name string, parameters ...EntitySystemParameter) *EntitySystemDefinition {
	def := &EntitySystemDefinition{name: name}
	for _, p := range parameters {
		i := slices.IndexFunc(def.parameters, func(q EntitySystemParameter) bool {
			return q.componentType == p.componentType
		})
		if i < 0 {
			def.parameters = append(def.parameters, p)
			continue
		}
		def.parameters[i].readOnly = def.parameters[i].readOnly && p.readOnly
	}
	return def
}

func (d *EntitySystemDefinition) Name() string {
	return d.name
}

func (d *EntitySystemDefinition) Parameters() []EntitySystemParameter {
	return slices.Clone(d.parameters)
}

// Types returns the declared component types in declaration order.
func (d *EntitySystemDefinition) Types() []ComponentType {
	out := make([]ComponentType, len(d.parameters))
	for i, p := range d.parameters {
		out[i] = p.componentType
	}
	return out
}

// ConflictsWith reports whether d and other touch a common type and at least
// one of them writes it.
func (d *EntitySystemDefinition) ConflictsWith(other *EntitySystemDefinition) bool {
	for _, p := range d.parameters {
		for _, q := range other.parameters {
			if p.componentType != q.componentType {
				continue
			}
			if !p.readOnly || !q.readOnly {
				return true
			}
		}
	}
	return false
}
