package entities

import (
	"iter"
	"slices"
	"sort"

	"github.com/TheBitDrifter/table"
)

// EntitySystemData is the resolved data of one query: the matched chunks in
// layout then chunk order, and their entities flattened into one list.
// Component views read and write chunk storage directly.
type EntitySystemData struct {
	types    []ComponentType
	chunks   []MemoryChunk
	offsets  []int
	entities []EntityID
}

func newEntitySystemData(types []ComponentType) *EntitySystemData {
	return &EntitySystemData{
		types: slices.Clone(types),
	}
}

func (d *EntitySystemData) appendLayout(layout *Layout) {
	for _, ch := range layout.chunks {
		count := ch.len()
		if count == 0 {
			continue
		}
		d.offsets = append(d.offsets, len(d.entities))
		d.chunks = append(d.chunks, MemoryChunk{chunk: ch, count: count})
		d.entities = append(d.entities, ch.entities[:count]...)
	}
}

// Types returns the component types the data was resolved for.
func (d *EntitySystemData) Types() []ComponentType {
	return slices.Clone(d.types)
}

func (d *EntitySystemData) EntityCount() int {
	return len(d.entities)
}

// Entities returns the flattened entity list.
func (d *EntitySystemData) Entities() []EntityID {
	return d.entities
}

// Chunks returns the matched chunks, preserving storage boundaries.
func (d *EntitySystemData) Chunks() []MemoryChunk {
	return d.chunks
}

// GetEntityArray returns the flattened entity list of data, index aligned
// with every ComponentDataArray of the same data.
func GetEntityArray(data *EntitySystemData) []EntityID {
	return data.entities
}

// GetMemoryChunks returns the chunk-wise view of data.
func GetMemoryChunks(data *EntitySystemData) []MemoryChunk {
	return data.chunks
}

func (d *EntitySystemData) Cursor() *Cursor {
	return newCursor(d)
}

func (d *EntitySystemData) declares(ct ComponentType) bool {
	return slices.Contains(d.types, ct)
}

// MemoryChunk is one chunk of a query result.
type MemoryChunk struct {
	chunk *chunk
	count int
}

func (c MemoryChunk) EntityCount() int {
	return c.count
}

func (c MemoryChunk) Entities() []EntityID {
	if c.chunk == nil {
		return nil
	}
	return c.chunk.entities[:c.count:c.count]
}

func (c MemoryChunk) Layout() LayoutID {
	if c.chunk == nil {
		return 0
	}
	return c.chunk.layout.id
}

// Index is the position of the chunk within its layout, or -1 for the zero
// MemoryChunk.
func (c MemoryChunk) Index() int {
	if c.chunk == nil {
		return -1
	}
	return c.chunk.index
}

// ComponentArray is the dense T column of one chunk.
type ComponentArray[T any] struct {
	accessor table.Accessor[T]
	table    table.Table
	length   int
}

// GetComponentArray returns the T column of chunk. T must belong to the
// chunk's layout.
func GetComponentArray[T any](chunk MemoryChunk) (ComponentArray[T], error) {
	ct := TypeOf[T]()
	if chunk.chunk == nil {
		return ComponentArray[T]{}, ComponentNotInLayoutError{Component: ct}
	}
	meta, ok := chunk.chunk.layout.metaFor(ct)
	if !ok {
		return ComponentArray[T]{}, ComponentNotInLayoutError{Layout: chunk.Layout(), Component: ct}
	}
	return ComponentArray[T]{
		accessor: meta.accessor.(table.Accessor[T]),
		table:    chunk.chunk.table,
		length:   chunk.count,
	}, nil
}

func (a ComponentArray[T]) Len() int {
	return a.length
}

// At returns a pointer to the i-th cell. It panics when i is out of range.
func (a ComponentArray[T]) At(i int) *T {
	if i < 0 || i >= a.length {
		panic("entities: component array index out of range")
	}
	return a.accessor.Get(i, a.table)
}

func (a ComponentArray[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range a.length {
			if !yield(i, a.accessor.Get(i, a.table)) {
				return
			}
		}
	}
}

// Copy returns the column values as a new slice.
func (a ComponentArray[T]) Copy() []T {
	out := make([]T, a.length)
	for i := range a.length {
		out[i] = *a.accessor.Get(i, a.table)
	}
	return out
}

// ComponentDataArray presents the T columns of every matched chunk as one
// logical sequence in entity order.
type ComponentDataArray[T any] struct {
	parts   []ComponentArray[T]
	offsets []int
	length  int
}

// GetComponentDataArray returns the flattened T view of data. T must be one
// of the types data was resolved for.
func GetComponentDataArray[T any](data *EntitySystemData) (ComponentDataArray[T], error) {
	ct := TypeOf[T]()
	if !data.declares(ct) {
		return ComponentDataArray[T]{}, ComponentNotDeclaredError{Component: ct}
	}
	out := ComponentDataArray[T]{
		parts:   make([]ComponentArray[T], len(data.chunks)),
		offsets: data.offsets,
		length:  len(data.entities),
	}
	for i, chunk := range data.chunks {
		part, err := GetComponentArray[T](chunk)
		if err != nil {
			return ComponentDataArray[T]{}, err
		}
		out.parts[i] = part
	}
	return out, nil
}

func (a ComponentDataArray[T]) Len() int {
	return a.length
}

// At returns a pointer to the cell of the i-th entity. It panics when i is
// out of range.
func (a ComponentDataArray[T]) At(i int) *T {
	if i < 0 || i >= a.length {
		panic("entities: component data array index out of range")
	}
	part := sort.Search(len(a.offsets), func(j int) bool { return a.offsets[j] > i }) - 1
	return a.parts[part].At(i - a.offsets[part])
}

func (a ComponentDataArray[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for p, part := range a.parts {
			base := a.offsets[p]
			for i := range part.length {
				if !yield(base+i, part.accessor.Get(i, part.table)) {
					return
				}
			}
		}
	}
}

// Copy returns every value in entity order as a new slice.
func (a ComponentDataArray[T]) Copy() []T {
	out := make([]T, 0, a.length)
	for _, part := range a.parts {
		out = append(out, part.Copy()...)
	}
	return out
}

// GetFromCursor returns the cell of the entity the cursor points at.
func (a ComponentDataArray[T]) GetFromCursor(cursor *Cursor) *T {
	return a.parts[cursor.chunkIndex].At(cursor.entityIndex - 1)
}
