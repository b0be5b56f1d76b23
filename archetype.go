package entities

import (
	"strings"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	iter_util "github.com/TheBitDrifter/util/iter"
)

// LayoutID identifies a layout within one EntityManager. Ids are sequential
// from zero in first-seen order.
type LayoutID uint32

// Layout is an immutable, order-independent set of component types together
// with the chunks that store its entities.
type Layout struct {
	id     LayoutID
	types  []ComponentType
	metas  []*componentMeta
	mask   mask.Mask
	chunks []*chunk
	count  int
}

func (l *Layout) ID() LayoutID {
	return l.id
}

// Types returns the component types in canonical order.
func (l *Layout) Types() []ComponentType {
	out := make([]ComponentType, len(l.types))
	copy(out, l.types)
	return out
}

func (l *Layout) Contains(t ComponentType) bool {
	for _, ct := range l.types {
		if ct == t {
			return true
		}
	}
	return false
}

func (l *Layout) EntityCount() int {
	return l.count
}

func (l *Layout) ChunkCount() int {
	return len(l.chunks)
}

func (l *Layout) String() string {
	var out strings.Builder
	out.WriteString("Layout: {")
	for i, ct := range l.types {
		if i != 0 {
			out.WriteString(", ")
		}
		out.WriteString(ct.String())
	}
	out.WriteString("}")
	return out.String()
}

func (l *Layout) metaFor(t ComponentType) (*componentMeta, bool) {
	for _, meta := range l.metas {
		if meta.typ == t {
			return meta, true
		}
	}
	return nil, false
}

// tail returns the chunk new entities go to, or nil when the layout has no
// chunk with room left.
func (l *Layout) tail(capacity int) *chunk {
	if len(l.chunks) == 0 {
		return nil
	}
	last := l.chunks[len(l.chunks)-1]
	if last.len() >= capacity {
		return nil
	}
	return last
}

// chunk is a fixed-capacity block of one layout. Its table holds one dense
// column per component type; entities[i] is the resident of row i.
type chunk struct {
	index    int
	layout   *Layout
	table    table.Table
	entities []EntityID
}

func newChunk(l *Layout, schema table.Schema, entryIndex table.EntryIndex, cfg config) (*chunk, error) {
	elementTypes := make([]table.ElementType, len(l.metas))
	for i, meta := range l.metas {
		elementTypes[i] = meta.element
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(cfg.tableEvents).
		Build()
	if err != nil {
		return nil, err
	}
	return &chunk{
		index:    len(l.chunks),
		layout:   l,
		table:    tbl,
		entities: make([]EntityID, 0, cfg.chunkCapacity),
	}, nil
}

func (c *chunk) len() int {
	return len(c.entities)
}

func (c *chunk) elementTypes() []table.ElementType {
	return iter_util.Collect(c.table.ElementTypes())
}

// place records id as the resident of row.
func (c *chunk) place(row int, id EntityID) {
	for len(c.entities) <= row {
		c.entities = append(c.entities, 0)
	}
	c.entities[row] = id
}
