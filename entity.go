package entities

import "github.com/TheBitDrifter/table"

// EntityID is an opaque, sequential identifier starting at one. Ids are never
// reused within an EntityManager.
type EntityID uint32

type entityLocation struct {
	layout *Layout
	chunk  *chunk
	entry  table.EntryID
	row    int
	alive  bool
}

// slot is the row of the entity inside its chunk. It is refreshed from the
// entry index whenever the chunk compacts.
func (l *entityLocation) slot() int {
	return l.row
}

// directory maps entity ids to their owning layout, chunk and row.
type directory struct {
	locations []entityLocation
	live      int
}

func (d *directory) add(loc entityLocation) EntityID {
	d.locations = append(d.locations, loc)
	d.live++
	return EntityID(len(d.locations))
}

func (d *directory) locate(id EntityID) (*entityLocation, error) {
	if id == 0 || int(id) > len(d.locations) {
		return nil, UnknownEntityError{Entity: id}
	}
	loc := &d.locations[id-1]
	if !loc.alive {
		return nil, UnknownEntityError{Entity: id}
	}
	return loc, nil
}

func (d *directory) remove(id EntityID) {
	loc := &d.locations[id-1]
	*loc = entityLocation{}
	d.live--
}

func (d *directory) next() EntityID {
	return EntityID(len(d.locations) + 1)
}
