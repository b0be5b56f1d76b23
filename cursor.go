package entities

import (
	"iter"
)

var _ iCursor = &Cursor{}

// Cursor walks the entities of an EntitySystemData chunk by chunk.
type Cursor struct {
	data *EntitySystemData

	chunkIndex  int
	entityIndex int
	remaining   int
}

func newCursor(data *EntitySystemData) *Cursor {
	c := &Cursor{data: data}
	c.Reset()
	return c
}

func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	for c.chunkIndex+1 < len(c.data.chunks) {
		c.chunkIndex++
		c.entityIndex = 0
		c.remaining = c.data.chunks[c.chunkIndex].count
		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
	}
	c.Reset()
	return false
}

// Entities yields every entity together with its chunk.
func (c *Cursor) Entities() iter.Seq2[EntityID, MemoryChunk] {
	return func(yield func(EntityID, MemoryChunk) bool) {
		defer c.Reset()
		for c.Next() {
			if !yield(c.Entity(), c.Chunk()) {
				return
			}
		}
	}
}

// Entity returns the entity the cursor points at.
func (c *Cursor) Entity() EntityID {
	return c.data.chunks[c.chunkIndex].chunk.entities[c.entityIndex-1]
}

func (c *Cursor) Chunk() MemoryChunk {
	return c.data.chunks[c.chunkIndex]
}

// Slot returns the row of the current entity inside its chunk.
func (c *Cursor) Slot() int {
	return c.entityIndex - 1
}

func (c *Cursor) Reset() {
	c.chunkIndex = -1
	c.entityIndex = 0
	c.remaining = 0
}

func (c *Cursor) RemainingInChunk() int {
	return c.remaining - c.entityIndex
}

func (c *Cursor) TotalMatched() int {
	return len(c.data.entities)
}
