package entities

import (
	"fmt"
	"iter"
)

// registry is an append-only keyed table. An item keeps the index it was
// registered with for the lifetime of the table. Not thread safe.
type registry[K comparable, T any] struct {
	items       []T
	itemIndices map[K]int
	maxCapacity int
}

func newRegistry[K comparable, T any](capacity int) *registry[K, T] {
	return &registry[K, T]{
		itemIndices: make(map[K]int),
		maxCapacity: capacity,
	}
}

func (c *registry[K, T]) GetIndex(key K) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *registry[K, T]) GetItem(index int) *T {
	return &c.items[index]
}

// Lookup returns the item registered under key.
func (c *registry[K, T]) Lookup(key K) (T, bool) {
	index, ok := c.itemIndices[key]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[index], true
}

// Register appends item under key. A maxCapacity of zero means unbounded.
func (c *registry[K, T]) Register(key K, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, fmt.Errorf("key already registered: %v", key)
	}
	if c.maxCapacity > 0 && len(c.items) >= c.maxCapacity {
		return -1, fmt.Errorf("registry at maximum capacity (%d)", c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

func (c *registry[K, T]) Len() int {
	return len(c.items)
}

// All yields items in registration order.
func (c *registry[K, T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, item := range c.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

func (c *registry[K, T]) Clear() {
	c.items = nil
	c.itemIndices = make(map[K]int)
}
