package paradiseecs

import (
	"sync"

	"github.com/TheBitDrifter/mask"
)

// World is the façade tying together the EntityManager, the
// ArchetypeRegistry, and the ChunkManager (spec.md §6): Spawn/Despawn
// and the AccessibleComponent[T] Add/Remove/Set/Get/Has operations all
// go through it.
type World struct {
	config   WorldConfig
	entities *EntityManager
	registry *ArchetypeRegistry
	chunks   *ChunkManager

	mu      sync.Mutex
	locks   mask.Mask256
	depth   uint32
	opQueue []EntityOperation
}

// NewWorld constructs a World from cfg (use DefaultWorldConfig() for
// the documented defaults).
func NewWorld(cfg WorldConfig) *World {
	cfg.normalize()
	chunks := NewChunkManager(cfg.ChunkSize, cfg.Allocator)
	registry, err := NewArchetypeRegistry(Config.registry, chunks, cfg)
	if err != nil {
		// Only fails if the empty-mask archetype can't be created,
		// which would require a maxArchetypeID budget below one
		// archetype — unreachable with the package's fixed budget.
		panic(err)
	}
	return &World{
		config:   cfg,
		entities: NewEntityManager(),
		registry: registry,
		chunks:   chunks,
	}
}

// Spawn creates a new entity already carrying the given components
// (zero-valued until set), placing it directly in the archetype for
// that exact component set (spec.md §4.3/§4.6). Spawn is never
// deferred: it must hand back a live Entity synchronously, and a pure
// append cannot corrupt a Cursor's already-captured per-chunk bounds.
func (w *World) Spawn(components ...ComponentHandle) (Entity, error) {
	var mask ComponentMask
	for _, c := range components {
		mask = maskWith(mask, c.ComponentID())
	}
	store, err := w.registry.GetOrCreate(mask)
	if err != nil {
		return Entity{}, err
	}
	handle, slot, globalIndex, err := store.AllocateEntity()
	if err != nil {
		return Entity{}, err
	}
	e := w.entities.Create(store.ID(), globalIndex)
	if uint64(e.ID) > w.config.maxEntityID() {
		_, _, _ = store.RemoveEntity(globalIndex)
		_ = w.entities.Destroy(e)
		return Entity{}, CapacityExceededError{ByteWidth: w.config.EntityIDByteWidth}
	}
	store.WriteEntityID(handle, slot, uint64(e.ID))
	return e, nil
}

// Despawn removes e from its archetype and recycles its id.
func (w *World) Despawn(e Entity) error {
	return w.runOrDefer("despawn", func(w *World) error { return w.despawnNow(e) })
}

func (w *World) despawnNow(e Entity) error {
	loc, err := w.entities.GetLocation(e)
	if err != nil {
		return err
	}
	store := w.registry.ArchetypeByID(loc.Archetype)
	_, moved, err := store.RemoveEntity(loc.GlobalIndex)
	if err != nil {
		return err
	}
	if err := w.entities.Destroy(e); err != nil {
		return err
	}
	if moved {
		if err := w.fixUpMovedEntity(store, loc.GlobalIndex); err != nil {
			return err
		}
	}
	return nil
}

// fixUpMovedEntity re-points the EntityManager location of whichever
// entity a swap-remove just moved into globalIndex.
func (w *World) fixUpMovedEntity(store *ArchetypeStore, globalIndex int) error {
	movedID := uint32(store.EntityIDAtGlobalIndex(globalIndex))
	movedEntity, err := w.entities.EntityAt(movedID)
	if err != nil {
		return err
	}
	return w.entities.SetGlobalIndex(movedEntity, globalIndex)
}

// addComponent adds cid to e's archetype if not already present,
// moving its data to the transitioned archetype, then runs initialize
// (if non-nil) against the entity's new slot to write the component's value.
func (w *World) addComponent(e Entity, cid ComponentID, initialize func(store *ArchetypeStore, globalIndex int)) error {
	return w.runOrDefer("add-component", func(w *World) error {
		loc, err := w.entities.GetLocation(e)
		if err != nil {
			return err
		}
		oldStore := w.registry.ArchetypeByID(loc.Archetype)
		if maskHas(oldStore.Mask(), cid) {
			if initialize != nil {
				initialize(oldStore, loc.GlobalIndex)
			}
			return nil
		}
		newMask := maskWith(oldStore.Mask(), cid)
		newStore, err := w.registry.Transition(oldStore.ID(), cid, transitionAdd, newMask)
		if err != nil {
			return err
		}
		if err := w.moveEntity(e, loc, oldStore, newStore); err != nil {
			return err
		}
		if initialize != nil {
			newLoc, err := w.entities.GetLocation(e)
			if err != nil {
				return err
			}
			initialize(newStore, newLoc.GlobalIndex)
		}
		return nil
	})
}

// removeComponent drops cid from e's archetype if present, moving its
// remaining data to the transitioned archetype.
func (w *World) removeComponent(e Entity, cid ComponentID) error {
	return w.runOrDefer("remove-component", func(w *World) error {
		loc, err := w.entities.GetLocation(e)
		if err != nil {
			return err
		}
		oldStore := w.registry.ArchetypeByID(loc.Archetype)
		if !maskHas(oldStore.Mask(), cid) {
			return nil
		}
		newMask := maskWithout(oldStore.Mask(), cid)
		newStore, err := w.registry.Transition(oldStore.ID(), cid, transitionRemove, newMask)
		if err != nil {
			return err
		}
		return w.moveEntity(e, loc, oldStore, newStore)
	})
}

// moveEntity relocates e from oldStore to newStore: allocates a slot
// in newStore, copies every component column the two archetypes share,
// swap-removes e from oldStore (fixing up whichever entity that move
// displaces), and updates e's EntityLocation.
func (w *World) moveEntity(e Entity, loc EntityLocation, oldStore, newStore *ArchetypeStore) error {
	handle, slot, globalIndex, err := newStore.AllocateEntity()
	if err != nil {
		return err
	}
	newStore.WriteEntityID(handle, slot, uint64(e.ID))
	copySharedComponents(oldStore, newStore, loc.GlobalIndex, globalIndex)

	_, moved, err := oldStore.RemoveEntity(loc.GlobalIndex)
	if err != nil {
		return err
	}
	if moved {
		if err := w.fixUpMovedEntity(oldStore, loc.GlobalIndex); err != nil {
			return err
		}
	}
	return w.entities.SetLocation(e, newStore.ID(), globalIndex)
}

// copySharedComponents copies every column newStore has that oldStore
// also has from (oldStore, oldGlobalIndex) to (newStore, newGlobalIndex).
func copySharedComponents(oldStore, newStore *ArchetypeStore, oldGlobalIndex, newGlobalIndex int) {
	oldBlock, oldSlot := oldStore.blockAndSlot(oldGlobalIndex)
	newBlock, newSlot := newStore.blockAndSlot(newGlobalIndex)
	for _, col := range newStore.columns {
		if oldOff, size, ok := oldStore.columnOffset(col.ID); ok {
			srcOff := oldOff + oldSlot*size
			dstOff := col.Offset + newSlot*size
			copy(newBlock[dstOff:dstOff+size], oldBlock[srcOff:srcOff+size])
		}
	}
}

// Query returns a Cursor over the live match-list cache for q,
// creating that cache the first time q is seen (spec.md §4.7).
func (w *World) Query(q Query) *Cursor {
	cache := w.registry.GetOrCreateQueryCache(q)
	return &Cursor{world: w, cache: cache, matchPos: -1, slotIdx: -1}
}

// isLocked reports whether any nesting level currently holds the
// iteration lock, mirroring the teacher's storage.Locked()
// (!locks.IsEmpty()) rather than a plain depth counter.
func (w *World) isLocked() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.locks.IsEmpty()
}

// lockIteration marks the bit for the current nesting depth, teacher's
// AddLock(bit) style, then increments depth for the next nested caller.
func (w *World) lockIteration() {
	w.mu.Lock()
	w.locks.Mark(w.depth)
	w.depth++
	w.mu.Unlock()
}

// unlockIteration unmarks the bit for the level being released and, only
// once every level has unlocked (locks.IsEmpty()), flushes the deferred
// operation queue — teacher's RemoveLock(bit) + ProcessAll on full unlock.
func (w *World) unlockIteration() {
	w.mu.Lock()
	w.depth--
	w.locks.Unmark(w.depth)
	var ops []EntityOperation
	if w.locks.IsEmpty() && len(w.opQueue) > 0 {
		ops = w.opQueue
		w.opQueue = nil
	}
	w.mu.Unlock()
	if ops != nil {
		w.flushOperations(ops)
	}
}

// IsAlive reports whether e names a currently-live entity.
func (w *World) IsAlive(e Entity) bool { return w.entities.IsAlive(e) }

// DebugString renders e for troubleshooting and tests.
func (w *World) DebugString(e Entity) string { return w.entities.DebugString(e) }

// ArchetypeCount returns the number of interned archetypes, for tests
// asserting on structural-change fan-out.
func (w *World) ArchetypeCount() int { return w.registry.ArchetypeCount() }
