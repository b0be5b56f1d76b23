package entities

import (
	"iter"
)

// EntitySystem is a per-frame logic unit. BuildDefinition is called once, at
// registration; Process is called once per frame with the data matching the
// definition.
type EntitySystem interface {
	BuildDefinition() *EntitySystemDefinition
	Process(entityManager *EntityManager, data *EntitySystemData, deltaTime float32) error
}

type Query interface {
	QueryNode
	And(items ...any) QueryNode
	Or(items ...any) QueryNode
	Not(items ...any) QueryNode
}

type QueryNode interface {
	Evaluate(layout *Layout, entityManager *EntityManager) bool
}

type iCursor interface {
	Entities() iter.Seq2[EntityID, MemoryChunk]
	Next() bool
}
