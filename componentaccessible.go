package paradiseecs

import (
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// RegisterComponent assigns T a ComponentID (auto-assigned unless
// WithPinnedID is given) and returns a typed accessor bound to the
// process-wide ComponentRegistry (spec.md §6).
func RegisterComponent[T any](opts ...ComponentOption) AccessibleComponent[T] {
	info := registerComponentType[T](Config.registry, opts...)
	return AccessibleComponent[T]{id: info.ID}
}

// AccessibleComponent[T] is the typed handle returned by
// RegisterComponent[T]: it carries no state beyond the assigned id and
// converts a chunk's raw bytes to a *T via direct pointer arithmetic
// into the column Layout computed, replacing the teacher's
// reflect-driven table.Accessor[T].
type AccessibleComponent[T any] struct {
	id ComponentID
}

// ComponentID returns the id this accessor was assigned at registration.
func (c AccessibleComponent[T]) ComponentID() ComponentID { return c.id }

// Check reports whether mask contains this component.
func (c AccessibleComponent[T]) Check(mask ComponentMask) bool { return maskHas(mask, c.id) }

// GetFromEntity returns a pointer to e's T value, usable to both read
// and write in place. Panics (a traced programmer error, not a
// returned error) if e is not alive or does not carry this component;
// use GetFromEntitySafe to check first.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e Entity) *T {
	ptr, err := c.getFromEntitySafe(w, e)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return ptr
}

// GetFromEntitySafe is GetFromEntity without the panic.
func (c AccessibleComponent[T]) GetFromEntitySafe(w *World, e Entity) (*T, error) {
	return c.getFromEntitySafe(w, e)
}

func (c AccessibleComponent[T]) getFromEntitySafe(w *World, e Entity) (*T, error) {
	loc, err := w.entities.GetLocation(e)
	if err != nil {
		return nil, err
	}
	store := w.registry.ArchetypeByID(loc.Archetype)
	chunkIdx, slot := store.slotOf(loc.GlobalIndex)
	return componentPointer[T](w.chunks, store, chunkIdx, slot, c.id)
}

// GetFromCursor returns a pointer to the current iteration slot's T
// value. Only valid while the Cursor is positioned on a live entity.
func (c AccessibleComponent[T]) GetFromCursor(cur *Cursor) *T {
	ptr, err := componentPointer[T](cur.chunkManager(), cur.store(), cur.chunkIndex(), cur.slot(), c.id)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return ptr
}

// Has reports whether e currently carries this component.
func (c AccessibleComponent[T]) Has(w *World, e Entity) (bool, error) {
	loc, err := w.entities.GetLocation(e)
	if err != nil {
		return false, err
	}
	store := w.registry.ArchetypeByID(loc.Archetype)
	return maskHas(store.Mask(), c.id), nil
}

// Set overwrites e's T value, returning StaleEntityError or
// UnregisteredComponentError rather than panicking if e is invalid or
// does not carry this component.
func (c AccessibleComponent[T]) Set(w *World, e Entity, value T) error {
	ptr, err := c.getFromEntitySafe(w, e)
	if err != nil {
		return err
	}
	*ptr = value
	return nil
}

// Add attaches this component to e with the given initial value,
// transitioning e to the archetype that also has this component
// (spec.md §4.4). A no-op (value still written in place) if e already
// carries it.
func (c AccessibleComponent[T]) Add(w *World, e Entity, value T) error {
	return w.addComponent(e, c.id, func(store *ArchetypeStore, globalIndex int) {
		off, size, ok := store.columnOffset(c.id)
		if !ok {
			// Zero-size tag component: it's in the mask but has no
			// column, so there is nothing to write.
			return
		}
		block, slot := store.blockAndSlot(globalIndex)
		*(*T)(unsafe.Pointer(&block[off+slot*size])) = value
	})
}

// Remove detaches this component from e, transitioning it to the
// archetype without this component (spec.md §4.4). A no-op if e does
// not carry it.
func (c AccessibleComponent[T]) Remove(w *World, e Entity) error {
	return w.removeComponent(e, c.id)
}

func componentPointer[T any](chunkManager *ChunkManager, store *ArchetypeStore, chunkIndex, slot int, cid ComponentID) (*T, error) {
	off, size, ok := store.columnOffset(cid)
	if !ok {
		if !maskHas(store.Mask(), cid) {
			return nil, UnregisteredComponentError{ComponentID: cid}
		}
		// Zero-size tag component: present in the mask but with no
		// backing column. Any *T is safe to hand back since nothing is
		// ever read or written through it.
		var zero T
		return &zero, nil
	}
	block := chunkManager.MustGet(store.Chunk(chunkIndex))
	byteOff := off + slot*size
	return (*T)(unsafe.Pointer(&block[byteOff])), nil
}
