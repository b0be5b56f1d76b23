package entities

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/TheBitDrifter/table"
	"github.com/cespare/xxhash/v2"
)

// MaxComponentKinds bounds the number of component types a process can register.
const MaxComponentKinds = 256

// ComponentRecord is the capability every component type carries: a plain,
// fixed-size value that knows its own default.
type ComponentRecord[T any] interface {
	Default() T
}

// ComponentType is a type token. Tokens can be built for any Go type; only
// tokens of registered component records are accepted by layouts.
type ComponentType struct {
	rtype reflect.Type
}

// TypeOf returns the token for T.
func TypeOf[T any]() ComponentType {
	return ComponentType{rtype: reflect.TypeFor[T]()}
}

// TypeOfValue returns the token for the dynamic type of v.
func TypeOfValue(v any) ComponentType {
	return ComponentType{rtype: reflect.TypeOf(v)}
}

func (t ComponentType) String() string {
	if t.rtype == nil {
		return "<nil>"
	}
	return t.rtype.String()
}

// Name returns the fully qualified type name the identity hash is derived from.
func (t ComponentType) Name() string {
	return qualifiedName(t.rtype)
}

func (t ComponentType) Registered() bool {
	_, ok := lookupComponent(t)
	return ok
}

// Hash returns the content-derived identity value, or zero for unregistered types.
func (t ComponentType) Hash() uint64 {
	if meta, ok := lookupComponent(t); ok {
		return meta.hash
	}
	return 0
}

func (t ComponentType) Size() uintptr {
	if t.rtype == nil {
		return 0
	}
	return t.rtype.Size()
}

// Default returns the default-initialized value of a registered type.
func (t ComponentType) Default() (any, bool) {
	meta, ok := lookupComponent(t)
	if !ok {
		return nil, false
	}
	return meta.defaultValue(), true
}

// componentMeta is one row of the kind table. The closures are built by
// RegisterComponent while T is still known and give untyped callers typed
// access to chunk cells.
type componentMeta struct {
	typ      ComponentType
	kind     int
	name     string
	hash     uint64
	size     uintptr
	element  table.ElementType
	accessor any

	defaultValue func() any
	initialize   func(tbl table.Table, idx int)
	assign       func(tbl table.Table, idx int, v any) bool
	load         func(tbl table.Table, idx int) any
	readBytes    func(tbl table.Table, idx int) []byte
	writeBytes   func(tbl table.Table, idx int, raw []byte)
	valueBytes   func(v any) ([]byte, bool)
}

type componentTable struct {
	mu     sync.RWMutex
	kinds  *registry[reflect.Type, *componentMeta]
	byHash map[uint64]*componentMeta
}

var components = componentTable{
	kinds:  newRegistry[reflect.Type, *componentMeta](MaxComponentKinds),
	byHash: make(map[uint64]*componentMeta),
}

// RegisterComponent adds T to the process-wide kind table. Registering the
// same type again returns the existing token.
func RegisterComponent[T ComponentRecord[T]]() (ComponentType, error) {
	ct := TypeOf[T]()

	components.mu.Lock()
	defer components.mu.Unlock()

	if _, ok := components.kinds.Lookup(ct.rtype); ok {
		return ct, nil
	}
	if reason := referenceField(ct.rtype); reason != "" {
		return ct, InvalidComponentError{Type: ct, Reason: reason}
	}

	name := qualifiedName(ct.rtype)
	hash := xxhash.Sum64String(name)
	if other, collides := components.byHash[hash]; collides {
		return ct, InvalidComponentError{
			Type:   ct,
			Reason: fmt.Sprintf("identity hash collides with %s", other.name),
		}
	}

	var zero T
	element := table.FactoryNewElementType[T]()
	accessor := table.FactoryNewAccessor[T](element)

	meta := &componentMeta{
		typ:      ct,
		kind:     components.kinds.Len(),
		name:     name,
		hash:     hash,
		size:     ct.rtype.Size(),
		element:  element,
		accessor: accessor,
		defaultValue: func() any {
			return zero.Default()
		},
		initialize: func(tbl table.Table, idx int) {
			*accessor.Get(idx, tbl) = zero.Default()
		},
		assign: func(tbl table.Table, idx int, v any) bool {
			value, ok := v.(T)
			if !ok {
				return false
			}
			*accessor.Get(idx, tbl) = value
			return true
		},
		load: func(tbl table.Table, idx int) any {
			return *accessor.Get(idx, tbl)
		},
		readBytes: func(tbl table.Table, idx int) []byte {
			raw := rawBytes(accessor.Get(idx, tbl))
			out := make([]byte, len(raw))
			copy(out, raw)
			return out
		},
		writeBytes: func(tbl table.Table, idx int, raw []byte) {
			copy(rawBytes(accessor.Get(idx, tbl)), raw)
		},
		valueBytes: func(v any) ([]byte, bool) {
			value, ok := v.(T)
			if !ok {
				return nil, false
			}
			raw := rawBytes(&value)
			out := make([]byte, len(raw))
			copy(out, raw)
			return out, true
		},
	}

	if _, err := components.kinds.Register(ct.rtype, meta); err != nil {
		return ct, InvalidComponentError{Type: ct, Reason: err.Error()}
	}
	components.byHash[hash] = meta
	return ct, nil
}

// MustRegisterComponent is RegisterComponent for package-level declarations.
func MustRegisterComponent[T ComponentRecord[T]]() ComponentType {
	ct, err := RegisterComponent[T]()
	if err != nil {
		panic(err)
	}
	return ct
}

// ComponentTypeByHash resolves an identity hash written by the offline scene
// compiler back to its registered type.
func ComponentTypeByHash(hash uint64) (ComponentType, bool) {
	components.mu.RLock()
	defer components.mu.RUnlock()
	meta, ok := components.byHash[hash]
	if !ok {
		return ComponentType{}, false
	}
	return meta.typ, true
}

// RegisteredComponents lists every registered type in registration order.
func RegisteredComponents() []ComponentType {
	components.mu.RLock()
	defer components.mu.RUnlock()
	out := make([]ComponentType, 0, components.kinds.Len())
	for _, meta := range components.kinds.All() {
		out = append(out, meta.typ)
	}
	return out
}

// EncodeComponent returns the raw bytes of a component value as the scene
// format stores them.
func EncodeComponent(v any) (ComponentType, []byte, error) {
	ct := TypeOfValue(v)
	meta, ok := lookupComponent(ct)
	if !ok {
		return ct, nil, InvalidComponentError{Type: ct, Reason: "not registered"}
	}
	raw, _ := meta.valueBytes(v)
	return ct, raw, nil
}

func lookupComponent(t ComponentType) (*componentMeta, bool) {
	if t.rtype == nil {
		return nil, false
	}
	components.mu.RLock()
	defer components.mu.RUnlock()
	return components.kinds.Lookup(t.rtype)
}

func qualifiedName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// referenceField reports the first kind inside t that would defeat
// contiguous storage, or "" when t is plain data.
func referenceField(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return ""
	case reflect.Array:
		return referenceField(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if reason := referenceField(t.Field(i).Type); reason != "" {
				return fmt.Sprintf("field %s: %s", t.Field(i).Name, reason)
			}
		}
		return ""
	default:
		return fmt.Sprintf("contains a %s", t.Kind())
	}
}

func rawBytes[T any](p *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), unsafe.Sizeof(*p))
}
