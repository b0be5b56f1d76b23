package entities

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"go.uber.org/zap"
)

// EntityManager owns the layout registry, the archetype store and the entity
// directory of one simulation. It is not thread safe: structural changes
// must come from one goroutine, or go through the Enqueue methods while the
// manager is locked.
type EntityManager struct {
	locks      int
	cfg        config
	logger     *zap.Logger
	schema     table.Schema
	entryIndex table.EntryIndex
	rows       map[int]uint32
	archetypes *archetypes
	directory  directory
	opQueue    opQueue
}

type archetypes struct {
	nextID           LayoutID
	asSlice          []*Layout
	idsGroupedByMask map[mask.Mask]LayoutID
}

func newEntityManager(opts ...Option) *EntityManager {
	cfg := newConfig(opts...)
	em := &EntityManager{
		cfg:        cfg,
		logger:     cfg.logger,
		schema:     table.Factory.NewSchema(),
		entryIndex: table.Factory.NewEntryIndex(),
		rows:       make(map[int]uint32),
		archetypes: &archetypes{
			idsGroupedByMask: make(map[mask.Mask]LayoutID),
		},
	}
	em.opQueue.pendingDestroy = make(map[EntityID]struct{})
	return em
}

// CreateLayout returns the layout for the given set of component types,
// registering it on first sight. The order of types does not matter.
func (em *EntityManager) CreateLayout(types ...ComponentType) (LayoutID, error) {
	if em.Locked() {
		return 0, LockedStorageError{}
	}
	if len(types) == 0 {
		return 0, InvalidLayoutError{Reason: "no component types"}
	}

	metas := make([]*componentMeta, 0, len(types))
	seen := make(map[ComponentType]struct{}, len(types))
	for _, ct := range types {
		if _, dup := seen[ct]; dup {
			return 0, InvalidLayoutError{Reason: fmt.Sprintf("duplicate component type %s", ct), Types: types}
		}
		seen[ct] = struct{}{}
		meta, ok := lookupComponent(ct)
		if !ok {
			return 0, InvalidLayoutError{Reason: fmt.Sprintf("%s is not a registered component", ct), Types: types}
		}
		metas = append(metas, meta)
	}
	slices.SortFunc(metas, func(a, b *componentMeta) int {
		if c := cmp.Compare(a.hash, b.hash); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	var layoutMask mask.Mask
	for _, meta := range metas {
		layoutMask.Mark(em.rowFor(meta))
	}
	if id, found := em.archetypes.idsGroupedByMask[layoutMask]; found {
		return id, nil
	}

	layout := &Layout{
		id:    em.archetypes.nextID,
		metas: metas,
		mask:  layoutMask,
		types: make([]ComponentType, len(metas)),
	}
	for i, meta := range metas {
		layout.types[i] = meta.typ
	}
	em.archetypes.asSlice = append(em.archetypes.asSlice, layout)
	em.archetypes.idsGroupedByMask[layoutMask] = layout.id
	em.archetypes.nextID++

	em.logger.Debug("layout created",
		zap.Uint32("layout", uint32(layout.id)),
		zap.Stringer("types", layout),
	)
	return layout.id, nil
}

// Layout returns the layout registered under id.
func (em *EntityManager) Layout(id LayoutID) (*Layout, error) {
	if int(id) >= len(em.archetypes.asSlice) {
		return nil, InvalidLayoutError{Reason: fmt.Sprintf("unknown layout id %d", id)}
	}
	return em.archetypes.asSlice[id], nil
}

// Layouts returns every layout in creation order.
func (em *EntityManager) Layouts() []*Layout {
	return slices.Clone(em.archetypes.asSlice)
}

// CreateEntity appends one entity to the layout's tail chunk and applies the
// default value of every component.
func (em *EntityManager) CreateEntity(id LayoutID) (EntityID, error) {
	ids, err := em.CreateEntities(id, 1)
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// CreateEntities creates n entities on one layout, filling the tail chunk
// before allocating new ones.
func (em *EntityManager) CreateEntities(id LayoutID, n int) ([]EntityID, error) {
	if em.Locked() {
		return nil, LockedStorageError{}
	}
	layout, err := em.Layout(id)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("cannot create %d entities", n)
	}

	capacity := em.cfg.chunkCapacity
	ids := make([]EntityID, 0, n)
	for remaining := n; remaining > 0; {
		tail := layout.tail(capacity)
		if tail == nil {
			tail, err = newChunk(layout, em.schema, em.entryIndex, em.cfg)
			if err != nil {
				return ids, fmt.Errorf("failed to allocate chunk for layout %d: %w", layout.id, err)
			}
			layout.chunks = append(layout.chunks, tail)
			em.logger.Debug("chunk allocated",
				zap.Uint32("layout", uint32(layout.id)),
				zap.Int("chunk", tail.index),
				zap.Int("capacity", capacity),
			)
		}

		batch := min(remaining, capacity-tail.len())
		entries, err := tail.table.NewEntries(batch)
		if err != nil {
			return ids, fmt.Errorf("failed to create entries: %w", err)
		}
		for _, entry := range entries {
			row := entry.Index()
			for _, meta := range layout.metas {
				meta.initialize(tail.table, row)
			}
			eid := em.directory.add(entityLocation{
				layout: layout,
				chunk:  tail,
				entry:  entry.ID(),
				row:    row,
				alive:  true,
			})
			tail.place(row, eid)
			ids = append(ids, eid)
		}
		layout.count += len(entries)
		remaining -= len(entries)
	}
	return ids, nil
}

// DestroyEntity removes an entity. The chunk stays dense: the table moves its
// last row into the vacated slot and the chunk's resident list follows.
// Destroyed ids are not reused.
func (em *EntityManager) DestroyEntity(id EntityID) error {
	if em.Locked() {
		return LockedStorageError{}
	}
	loc, err := em.directory.locate(id)
	if err != nil {
		return err
	}
	ch := loc.chunk
	if _, err := ch.table.DeleteEntries(loc.slot()); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	em.directory.remove(id)
	ch.layout.count--
	return em.resync(ch, id)
}

// resync rebuilds the resident list of ch from the rows the entry index now
// reports and refreshes the stored row of every resident.
func (em *EntityManager) resync(ch *chunk, removed EntityID) error {
	rows := make([]EntityID, ch.table.Length(), cap(ch.entities))
	for _, eid := range ch.entities {
		if eid == removed {
			continue
		}
		loc := &em.directory.locations[eid-1]
		entry, err := em.entryIndex.Entry(int(loc.entry) - 1)
		if err != nil {
			return fmt.Errorf("failed to locate entity %d: %w", eid, err)
		}
		row := entry.Index()
		if row < 0 || row >= len(rows) {
			return fmt.Errorf("entity %d reported at row %d of %d", eid, row, len(rows))
		}
		loc.row = row
		rows[row] = eid
	}
	ch.entities = rows
	return nil
}

// Exists reports whether id names a live entity.
func (em *EntityManager) Exists(id EntityID) bool {
	_, err := em.directory.locate(id)
	return err == nil
}

// LayoutOf returns the layout an entity lives in.
func (em *EntityManager) LayoutOf(id EntityID) (LayoutID, error) {
	loc, err := em.directory.locate(id)
	if err != nil {
		return 0, err
	}
	return loc.layout.id, nil
}

func (em *EntityManager) EntityCount() int {
	return em.directory.live
}

// GetEntities returns every live entity, layout by layout in chunk order.
func (em *EntityManager) GetEntities() []EntityID {
	out := make([]EntityID, 0, em.directory.live)
	for _, layout := range em.archetypes.asSlice {
		for _, ch := range layout.chunks {
			out = append(out, ch.entities...)
		}
	}
	return out
}

// GetEntitySystemData collects every chunk whose layout holds all of the
// required types.
func (em *EntityManager) GetEntitySystemData(required ...ComponentType) *EntitySystemData {
	data := newEntitySystemData(required)
	queryMask, ok := em.queryMask(required)
	if !ok {
		return data
	}
	for _, layout := range em.archetypes.asSlice {
		if layout.mask.ContainsAll(queryMask) {
			data.appendLayout(layout)
		}
	}
	return data
}

// Query collects every chunk whose layout satisfies node.
func (em *EntityManager) Query(node QueryNode) *EntitySystemData {
	data := newEntitySystemData(nil)
	for _, layout := range em.archetypes.asSlice {
		if node.Evaluate(layout, em) {
			data.appendLayout(layout)
		}
	}
	return data
}

// GetComponentDataDynamic reads a component through a type token.
func (em *EntityManager) GetComponentDataDynamic(id EntityID, ct ComponentType) (any, error) {
	loc, meta, err := em.cell(id, ct)
	if err != nil {
		return nil, err
	}
	return meta.load(loc.chunk.table, loc.slot()), nil
}

// SetComponentDataDynamic writes value through a type token. The dynamic type
// of value must be exactly ct.
func (em *EntityManager) SetComponentDataDynamic(id EntityID, ct ComponentType, value any) error {
	loc, meta, err := em.cell(id, ct)
	if err != nil {
		return err
	}
	if !meta.assign(loc.chunk.table, loc.slot(), value) {
		return ComponentTypeMismatchError{Expected: ct, Value: value}
	}
	return nil
}

// SetComponentBytes overwrites a component cell with its raw memory image.
func (em *EntityManager) SetComponentBytes(id EntityID, ct ComponentType, raw []byte) error {
	loc, meta, err := em.cell(id, ct)
	if err != nil {
		return err
	}
	if uintptr(len(raw)) != meta.size {
		return fmt.Errorf("component %s expects %d bytes, got %d", ct, meta.size, len(raw))
	}
	meta.writeBytes(loc.chunk.table, loc.slot(), raw)
	return nil
}

// ComponentBytes returns a copy of the raw memory image of a component cell.
func (em *EntityManager) ComponentBytes(id EntityID, ct ComponentType) ([]byte, error) {
	loc, meta, err := em.cell(id, ct)
	if err != nil {
		return nil, err
	}
	return meta.readBytes(loc.chunk.table, loc.slot()), nil
}

func (em *EntityManager) cell(id EntityID, ct ComponentType) (*entityLocation, *componentMeta, error) {
	loc, err := em.directory.locate(id)
	if err != nil {
		return nil, nil, err
	}
	meta, ok := loc.layout.metaFor(ct)
	if !ok {
		return nil, nil, ComponentNotInLayoutError{Entity: id, Layout: loc.layout.id, Component: ct}
	}
	return loc, meta, nil
}

// rowFor returns the schema row of a component kind, registering it with the
// manager's schema the first time a layout uses it.
func (em *EntityManager) rowFor(meta *componentMeta) uint32 {
	if row, ok := em.rows[meta.kind]; ok {
		return row
	}
	em.schema.Register(meta.element)
	row := em.schema.RowIndexFor(meta.element)
	em.rows[meta.kind] = row
	return row
}

// queryMask builds the mask of types. It reports false when one of them was
// never part of any layout, in which case nothing can match.
func (em *EntityManager) queryMask(types []ComponentType) (mask.Mask, bool) {
	var m mask.Mask
	for _, ct := range types {
		row, ok := em.rowOf(ct)
		if !ok {
			return m, false
		}
		m.Mark(row)
	}
	return m, true
}

// rowOf returns the schema row of ct if some layout of em uses it.
func (em *EntityManager) rowOf(ct ComponentType) (uint32, bool) {
	meta, ok := lookupComponent(ct)
	if !ok {
		return 0, false
	}
	row, ok := em.rows[meta.kind]
	return row, ok
}

// Locked reports whether structural changes are currently deferred.
func (em *EntityManager) Locked() bool {
	return em.locks > 0
}

// Lock defers structural changes until the matching Unlock. Locks nest.
func (em *EntityManager) Lock() {
	em.locks++
}

// Unlock releases one lock. Releasing the last one applies the queued
// structural changes.
func (em *EntityManager) Unlock() error {
	if em.locks == 0 {
		return nil
	}
	em.locks--
	if em.locks > 0 {
		return nil
	}
	return em.processOperationQueue()
}
