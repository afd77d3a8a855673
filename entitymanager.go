package paradiseecs

import (
	"fmt"
	"sync"
)

// Entity is a stable, generation-checked handle to one logical entity
// (spec.md §3): ID indexes EntityManager's location table, Generation
// detects use of a handle whose slot has since been recycled.
type Entity struct {
	ID         uint32
	Generation uint32
}

// EntityLocation is where one entity currently lives: which archetype
// owns it and its slot within that archetype's packed storage
// (spec.md §4.5).
type EntityLocation struct {
	Generation  uint32
	Archetype   archetypeID
	GlobalIndex int
	Alive       bool
}

// EntityManager maps entity ids to their current archetype/slot,
// recycling destroyed ids LIFO and bumping their generation on destroy
// so stale handles are detected rather than silently aliasing a new
// entity (spec.md §4.5). The location table itself is the shared
// append-only chunked list (chunklist.go): slots never move once
// published, so At's pointer can be mutated in place under the
// manager's mutex without a reader ever observing a torn value.
type EntityManager struct {
	mu        sync.Mutex
	locations *appendOnlyList[EntityLocation]
	freeList  []uint32
}

// NewEntityManager returns an empty manager.
func NewEntityManager() *EntityManager {
	return &EntityManager{locations: newAppendOnlyList[EntityLocation]()}
}

// Create allocates a new entity already located at (archetype, globalIndex),
// reusing the most recently destroyed id when one is available.
func (m *EntityManager) Create(archetype archetypeID, globalIndex int) Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.freeList); n > 0 {
		id := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		loc := m.locations.At(int(id))
		loc.Archetype = archetype
		loc.GlobalIndex = globalIndex
		loc.Alive = true
		return Entity{ID: id, Generation: loc.Generation}
	}

	idx := m.locations.Push(EntityLocation{Archetype: archetype, GlobalIndex: globalIndex, Alive: true})
	return Entity{ID: uint32(idx)}
}

// Destroy verifies e's generation, bumps it, marks the slot dead, and
// returns its id to the free-list for recycling (spec.md §4.5's literal
// destroy algorithm). Bumping immediately means a second Destroy (or
// any other access) against the same handle reports StaleEntityError,
// not DeadEntityError — the latter is reserved for EntityAt resolving a
// raw id that is currently dead, where no generation mismatch exists to
// report.
func (m *EntityManager) Destroy(e Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, err := m.validateLocked(e)
	if err != nil {
		return err
	}
	loc.Alive = false
	loc.Generation++
	m.freeList = append(m.freeList, e.ID)
	return nil
}

// IsAlive reports whether e names a currently-live entity.
func (m *EntityManager) IsAlive(e Entity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.validateLocked(e)
	return err == nil
}

// GetLocation returns e's current archetype and slot.
func (m *EntityManager) GetLocation(e Entity) (EntityLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, err := m.validateLocked(e)
	if err != nil {
		return EntityLocation{}, err
	}
	return *loc, nil
}

// SetLocation updates e's archetype and slot, e.g. after a structural
// change has moved it, or after a swap-remove moved a different entity
// into a new global index.
func (m *EntityManager) SetLocation(e Entity, archetype archetypeID, globalIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, err := m.validateLocked(e)
	if err != nil {
		return err
	}
	loc.Archetype = archetype
	loc.GlobalIndex = globalIndex
	return nil
}

// SetGlobalIndex updates only e's slot within its current archetype,
// used by the swap-remove path to re-point the entity that got moved.
func (m *EntityManager) SetGlobalIndex(e Entity, globalIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, err := m.validateLocked(e)
	if err != nil {
		return err
	}
	loc.GlobalIndex = globalIndex
	return nil
}

// EntityAt reconstructs the Entity handle for id at its current generation.
func (m *EntityManager) EntityAt(id uint32) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc := m.locations.At(int(id))
	if loc == nil || !loc.Alive {
		return Entity{}, DeadEntityError{Entity: Entity{ID: id}}
	}
	return Entity{ID: id, Generation: loc.Generation}, nil
}

func (m *EntityManager) validateLocked(e Entity) (*EntityLocation, error) {
	loc := m.locations.At(int(e.ID))
	if loc == nil {
		return nil, StaleEntityError{Entity: e}
	}
	if loc.Generation != e.Generation {
		return nil, StaleEntityError{Entity: e}
	}
	if !loc.Alive {
		return nil, DeadEntityError{Entity: e}
	}
	return loc, nil
}

// DebugString renders e's id/generation/liveness for tests and
// troubleshooting, in the spirit of the teacher's ComponentsAsString helper.
func (m *EntityManager) DebugString(e Entity) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc := m.locations.At(int(e.ID))
	if loc == nil {
		return fmt.Sprintf("Entity{id=%d, generation=%d, <unknown>}", e.ID, e.Generation)
	}
	return fmt.Sprintf("Entity{id=%d, generation=%d, alive=%t, archetype=%d, index=%d}",
		e.ID, e.Generation, loc.Alive, loc.Archetype, loc.GlobalIndex)
}
