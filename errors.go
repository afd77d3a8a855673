package paradiseecs

import "fmt"

// StaleEntityError reports an operation against a destroyed or
// never-issued entity id.
type StaleEntityError struct {
	Entity Entity
}

func (e StaleEntityError) Error() string {
	return fmt.Sprintf("entity %v is not alive", e.Entity)
}

// StaleChunkError reports a chunk handle whose generation no longer
// matches the manager's current generation for that id. This is a
// programming error (use-after-free) and is normally surfaced as a
// panic rather than returned, see bark.AddTrace call sites.
type StaleChunkError struct {
	Handle ChunkHandle
}

func (e StaleChunkError) Error() string {
	return fmt.Sprintf("chunk handle %v is stale", e.Handle)
}

// UnregisteredComponentError reports a component id unknown to the
// ComponentRegistry, or a registered component that is simply absent
// from the entity/archetype an accessor was asked to read it from.
type UnregisteredComponentError struct {
	ComponentID ComponentID
}

func (e UnregisteredComponentError) Error() string {
	return fmt.Sprintf("component id %d is not registered", e.ComponentID)
}

// InvalidComponentIDError reports a component id outside
// [0, MaxComponentTypeID].
type InvalidComponentIDError struct {
	ComponentID ComponentID
}

func (e InvalidComponentIDError) Error() string {
	return fmt.Sprintf("component id %d exceeds max component id %d", e.ComponentID, MaxComponentTypeID)
}

// TooManyArchetypesError reports an attempt to exceed 2^20-1 archetypes.
type TooManyArchetypesError struct{}

func (e TooManyArchetypesError) Error() string {
	return fmt.Sprintf("archetype registry exhausted its %d-archetype budget", maxArchetypeID)
}

// OutOfMemoryError reports a backing allocator failure.
type OutOfMemoryError struct {
	Cause error
}

func (e OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of memory: %v", e.Cause)
}

func (e OutOfMemoryError) Unwrap() error { return e.Cause }

// CapacityExceededError reports an entity id that would exceed the
// configured EntityIDByteWidth range.
type CapacityExceededError struct {
	ByteWidth int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("entity id would exceed %d-byte id range", e.ByteWidth)
}

// DeadEntityError reports EntityAt resolving a raw id whose slot is
// currently dead (destroyed, not yet recycled): there is no caller
// generation to compare against, so this can't be reported as a
// StaleEntityError the way every generation-mismatch case is.
type DeadEntityError struct {
	Entity Entity
}

func (e DeadEntityError) Error() string {
	return fmt.Sprintf("entity %v is dead", e.Entity)
}

// ChunkCapacityExceededError reports that a Layout could not fit even a
// single entity's components in one chunk. ComputeLayout returns it when
// the entity-id cell plus every aligned component column of one entity
// exceeds the chunk size, which happens for registered components when
// the chunk is small relative to them.
type ChunkCapacityExceededError struct {
	Mask ComponentMask
}

func (e ChunkCapacityExceededError) Error() string {
	return fmt.Sprintf("archetype %v does not fit in one chunk", e.Mask)
}

// StorageLockedError reports a structural-change attempt while a
// Cursor holds the World's iteration lock. World's operations do not
// return it: while the lock is held they queue the change (runOrDefer)
// and replay it once the last lock is released.
type StorageLockedError struct{}

func (e StorageLockedError) Error() string {
	return "world is locked by an active cursor"
}
