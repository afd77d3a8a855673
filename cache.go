package paradiseecs

import "fmt"

// SimpleCache is a fixed-capacity, name-keyed cache, kept from the
// teacher's cache.go and repurposed as ComponentRegistry's name lookup
// table (SPEC_FULL.md §12).
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

// NewSimpleCache constructs a SimpleCache with the given capacity.
func NewSimpleCache[T any](capacity int) *SimpleCache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int, capacity),
		maxCapacity: capacity,
	}
}

// GetIndex returns the slot index registered for key, if any.
func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

// GetItem returns a pointer to the item at index.
func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

// Register stores item under key, returning its slot index.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if idx, ok := c.itemIndices[key]; ok {
		c.items[idx] = item
		return idx, nil
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("cache at maximum capacity (%d)", c.maxCapacity)
	}
	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}

// Len returns the number of registered items.
func (c *SimpleCache[T]) Len() int { return len(c.items) }
