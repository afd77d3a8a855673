package paradiseecs

import (
	"encoding/binary"
	"fmt"
)

// archetypeID is a 20-bit archetype identifier (spec.md §3).
type archetypeID uint32

// Column describes one component's SoA column within an archetype's
// chunks: a byte offset (from Layout) plus the component's size, cached
// at archetype-creation time so structural changes never need to
// re-consult the ComponentRegistry on their hot path.
type Column struct {
	ID     ComponentID
	Offset int
	Size   int
}

// ArchetypeStore owns the chunks for one archetype: an ordered chunk
// list, the entity count, and swap-remove/allocate slot management
// (spec.md §4.3).
type ArchetypeStore struct {
	id      archetypeID
	mask    ComponentMask
	layout  Layout
	columns []Column // ascending by ID, zero-size (tag) components excluded

	chunkManager *ChunkManager
	chunks       []ChunkHandle
	entityCount  int
}

func newArchetypeStore(id archetypeID, mask ComponentMask, layout Layout, registry *ComponentRegistry, chunkManager *ChunkManager, initialChunkCapacity int) (*ArchetypeStore, error) {
	var columns []Column
	var rangeErr error
	forEachSetBit(mask, func(cid ComponentID) {
		if rangeErr != nil {
			return
		}
		info, err := registry.Lookup(cid)
		if err != nil {
			rangeErr = err
			return
		}
		if info.Size == 0 {
			return // tag component: in the mask, not in any column
		}
		off, ok := layout.BaseOffset(cid)
		if !ok {
			rangeErr = fmt.Errorf("layout missing offset for component %d", cid)
			return
		}
		columns = append(columns, Column{ID: cid, Offset: off, Size: int(info.Size)})
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return &ArchetypeStore{
		id:           id,
		mask:         mask,
		layout:       layout,
		columns:      columns,
		chunkManager: chunkManager,
		chunks:       make([]ChunkHandle, 0, initialChunkCapacity),
	}, nil
}

// ID returns the archetype's 20-bit id.
func (a *ArchetypeStore) ID() archetypeID { return a.id }

// Mask returns the archetype's component mask.
func (a *ArchetypeStore) Mask() ComponentMask { return a.mask }

// Layout returns the archetype's chunk layout.
func (a *ArchetypeStore) Layout() Layout { return a.layout }

// EntityCount returns the number of live entities in this archetype.
func (a *ArchetypeStore) EntityCount() int { return a.entityCount }

// ChunkCount returns the number of chunks currently owned.
func (a *ArchetypeStore) ChunkCount() int { return len(a.chunks) }

// Chunk returns the handle for the chunk at chunkIndex.
func (a *ArchetypeStore) Chunk(chunkIndex int) ChunkHandle { return a.chunks[chunkIndex] }

// LiveCountInChunk returns how many of entities_per_chunk slots in
// chunkIndex are live (spec.md §4.7 chunk enumerator).
func (a *ArchetypeStore) LiveCountInChunk(chunkIndex int) int {
	epc := a.layout.EntitiesPerChunk
	remaining := a.entityCount - chunkIndex*epc
	if remaining > epc {
		return epc
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (a *ArchetypeStore) slotOf(globalIndex int) (chunkIndex, slot int) {
	epc := a.layout.EntitiesPerChunk
	return globalIndex / epc, globalIndex % epc
}

// AllocateEntity appends a new slot, growing the chunk list by one when
// the current last chunk is full, and returns its location (spec.md §4.3).
func (a *ArchetypeStore) AllocateEntity() (handle ChunkHandle, indexInChunk int, globalIndex int, err error) {
	epc := a.layout.EntitiesPerChunk
	if a.entityCount == len(a.chunks)*epc {
		h, allocErr := a.chunkManager.Allocate()
		if allocErr != nil {
			return ChunkHandle{}, 0, 0, allocErr
		}
		a.chunks = append(a.chunks, h)
	}
	globalIndex = a.entityCount
	a.entityCount++
	chunkIndex, slot := a.slotOf(globalIndex)
	return a.chunks[chunkIndex], slot, globalIndex, nil
}

// RemoveEntity removes the entity at globalIndex via swap-remove
// (spec.md §4.3): if it is the last live entity, the slot is simply
// dropped (and trailing empty chunks are trimmed); otherwise the last
// entity's bytes are copied into the vacated slot and its (now-moved)
// global index is returned so the caller can fix EntityLocation.
func (a *ArchetypeStore) RemoveEntity(globalIndex int) (movedGlobalIndex int, moved bool, err error) {
	if globalIndex < 0 || globalIndex >= a.entityCount {
		return 0, false, fmt.Errorf("global index %d out of range [0, %d)", globalIndex, a.entityCount)
	}
	lastIndex := a.entityCount - 1
	if globalIndex == lastIndex {
		a.entityCount--
		a.trim()
		return 0, false, nil
	}

	lastChunkIdx, lastSlot := a.slotOf(lastIndex)
	targetChunkIdx, targetSlot := a.slotOf(globalIndex)

	srcBlock := a.chunkManager.MustGet(a.chunks[lastChunkIdx])
	var dstBlock []byte
	if targetChunkIdx == lastChunkIdx {
		dstBlock = srcBlock
	} else {
		dstBlock = a.chunkManager.MustGet(a.chunks[targetChunkIdx])
	}

	writeEntityID(dstBlock, targetSlot, a.layout.EntityIDByteWidth, readEntityID(srcBlock, lastSlot, a.layout.EntityIDByteWidth))
	for _, col := range a.columns {
		srcOff := col.Offset + lastSlot*col.Size
		dstOff := col.Offset + targetSlot*col.Size
		copy(dstBlock[dstOff:dstOff+col.Size], srcBlock[srcOff:srcOff+col.Size])
	}

	a.entityCount--
	a.trim()
	return lastIndex, true, nil
}

// trim frees trailing chunks that hold no live entities. The head chunk
// of a non-empty archetype is never freed (spec.md §4.3).
func (a *ArchetypeStore) trim() {
	epc := a.layout.EntitiesPerChunk
	needed := 0
	if a.entityCount > 0 {
		needed = (a.entityCount + epc - 1) / epc
	}
	for len(a.chunks) > needed {
		last := len(a.chunks) - 1
		_ = a.chunkManager.Free(a.chunks[last])
		a.chunks = a.chunks[:last]
	}
}

// EntityIDAt reads the entity-id column at the given chunk/slot.
func (a *ArchetypeStore) EntityIDAt(chunkIndex, slot int) uint64 {
	block := a.chunkManager.MustGet(a.chunks[chunkIndex])
	return readEntityID(block, slot, a.layout.EntityIDByteWidth)
}

// EntityIDAtGlobalIndex is EntityIDAt addressed by global index instead
// of (chunkIndex, slot).
func (a *ArchetypeStore) EntityIDAtGlobalIndex(globalIndex int) uint64 {
	chunkIndex, slot := a.slotOf(globalIndex)
	return a.EntityIDAt(chunkIndex, slot)
}

// WriteEntityID writes the entity-id column for the slot named by
// handle directly, for callers (World.Spawn/moveEntity) that already
// hold the freshly-allocated ChunkHandle and so don't need to look it
// up again by chunk index.
func (a *ArchetypeStore) WriteEntityID(handle ChunkHandle, slot int, id uint64) {
	block := a.chunkManager.MustGet(handle)
	writeEntityID(block, slot, a.layout.EntityIDByteWidth, id)
}

// blockAndSlot returns the chunk bytes and in-chunk slot for a global index.
func (a *ArchetypeStore) blockAndSlot(globalIndex int) ([]byte, int) {
	chunkIndex, slot := a.slotOf(globalIndex)
	return a.chunkManager.MustGet(a.chunks[chunkIndex]), slot
}

// columnOffset returns the byte offset of cid's column, if present.
func (a *ArchetypeStore) columnOffset(cid ComponentID) (int, int, bool) {
	for _, col := range a.columns {
		if col.ID == cid {
			return col.Offset, col.Size, true
		}
	}
	return 0, 0, false
}

func writeEntityID(block []byte, slot, width int, id uint64) {
	off := slot * width
	switch width {
	case 1:
		block[off] = byte(id)
	case 2:
		binary.LittleEndian.PutUint16(block[off:], uint16(id))
	default:
		binary.LittleEndian.PutUint32(block[off:], uint32(id))
	}
}

func readEntityID(block []byte, slot, width int) uint64 {
	off := slot * width
	switch width {
	case 1:
		return uint64(block[off])
	case 2:
		return uint64(binary.LittleEndian.Uint16(block[off:]))
	default:
		return uint64(binary.LittleEndian.Uint32(block[off:]))
	}
}
