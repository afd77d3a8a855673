package paradiseecs

import "github.com/TheBitDrifter/bark"

// Cursor enumerates the entities matching one Query: archetype by
// archetype, chunk by chunk, entity by entity, in archetype-creation
// order (spec.md §4.7). It holds World's iteration lock from the first
// call to Next until iteration ends (or Close is called early), so
// structural changes made mid-iteration are deferred rather than
// corrupting already-visited slots (SPEC_FULL.md §12).
type Cursor struct {
	world    *World
	cache    *QueryCache
	matchPos int

	archetypeStore *ArchetypeStore
	chunkIdx       int
	liveInChunk    int
	slotIdx        int

	started bool
	closed  bool
}

// Next advances the cursor to the next matching entity, returning
// false once exhausted. Calling Next after it has returned false is
// safe and keeps returning false.
func (cur *Cursor) Next() bool {
	if cur.closed {
		return false
	}
	if !cur.started {
		cur.started = true
		cur.world.lockIteration()
	}
	for {
		if cur.archetypeStore != nil {
			cur.slotIdx++
			if cur.slotIdx < cur.liveInChunk {
				return true
			}
			cur.chunkIdx++
			if cur.chunkIdx < cur.archetypeStore.ChunkCount() {
				cur.liveInChunk = cur.archetypeStore.LiveCountInChunk(cur.chunkIdx)
				cur.slotIdx = -1
				continue
			}
		}
		cur.matchPos++
		matches := cur.cache.Matches()
		if cur.matchPos >= len(matches) {
			cur.Close()
			return false
		}
		cur.archetypeStore = cur.world.registry.ArchetypeByID(matches[cur.matchPos])
		cur.chunkIdx = 0
		cur.liveInChunk = 0
		if cur.archetypeStore.ChunkCount() > 0 {
			cur.liveInChunk = cur.archetypeStore.LiveCountInChunk(0)
		}
		cur.slotIdx = -1
	}
}

// Close releases the cursor's hold on World's iteration lock. Safe to
// call more than once, and automatically called when Next exhausts the
// match list; callers that break out of a Next loop early should defer
// Close explicitly.
func (cur *Cursor) Close() {
	if cur.started && !cur.closed {
		cur.closed = true
		cur.world.unlockIteration()
	}
}

// Entity returns the handle for the entity the cursor currently sits on.
func (cur *Cursor) Entity() Entity {
	id := uint32(cur.archetypeStore.EntityIDAt(cur.chunkIdx, cur.slotIdx))
	e, err := cur.world.entities.EntityAt(id)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return e
}

// Archetype returns the archetype mask of the current entity.
func (cur *Cursor) Archetype() ComponentMask { return cur.archetypeStore.Mask() }

func (cur *Cursor) store() *ArchetypeStore      { return cur.archetypeStore }
func (cur *Cursor) chunkManager() *ChunkManager { return cur.world.chunks }
func (cur *Cursor) chunkIndex() int             { return cur.chunkIdx }
func (cur *Cursor) slot() int                   { return cur.slotIdx }
