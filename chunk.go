package paradiseecs

import (
	"fmt"
	"sync/atomic"

	"github.com/TheBitDrifter/bark"
)

// ChunkHandle is an opaque, generation-validated reference to one
// memory block (spec.md §3). It is valid only while Generation matches
// the manager's current generation for ID.
type ChunkHandle struct {
	ID         uint32
	Generation uint64
}

// chunkMeta is the ChunkManager's per-id bookkeeping record. Its
// generation field is only ever touched through atomic ops once
// published into the metadata list, so the struct itself stays a plain
// copyable value (no embedded atomic.Uint64) until then.
type chunkMeta struct {
	generation uint64
	block      []byte
}

// freeNode is one entry of the ChunkManager's lock-free (Treiber stack)
// free-list, protected by a single CAS loop on the head pointer
// (spec.md §4.1 algorithm).
type freeNode struct {
	id   uint32
	next *freeNode
}

// ChunkManager hands out and reclaims fixed-size memory blocks and
// validates handles (spec.md §4.1). The allocation fast path is
// lock-free: a CAS loop on a free-list head, with metadata held in the
// append-only chunked list so it never relocates once published.
type ChunkManager struct {
	chunkSize int
	allocator Allocator
	meta      *appendOnlyList[chunkMeta]
	freeHead  atomic.Pointer[freeNode]
}

// NewChunkManager constructs a manager for blocks of exactly chunkSize
// bytes. allocator defaults to the Go heap allocator if nil.
func NewChunkManager(chunkSize int, allocator Allocator) *ChunkManager {
	if allocator == nil {
		allocator = heapAllocator{}
	}
	return &ChunkManager{
		chunkSize: chunkSize,
		allocator: allocator,
		meta:      newAppendOnlyList[chunkMeta](),
	}
}

// ChunkSize returns the fixed size in bytes of every block this manager hands out.
func (m *ChunkManager) ChunkSize() int { return m.chunkSize }

// Allocate returns a zero-initialized block of exactly ChunkSize bytes,
// reusing a freed id (and bumping no generation further) when the
// free-list is non-empty, or appending a fresh one otherwise.
func (m *ChunkManager) Allocate() (ChunkHandle, error) {
	if id, ok := m.popFree(); ok {
		meta := m.meta.At(int(id))
		gen := atomic.LoadUint64(&meta.generation)
		clear(meta.block)
		return ChunkHandle{ID: id, Generation: gen}, nil
	}

	block := m.allocator.Alloc(m.chunkSize)
	if block == nil {
		return ChunkHandle{}, OutOfMemoryError{Cause: fmt.Errorf("allocator returned nil for %d bytes", m.chunkSize)}
	}
	idx := m.meta.Push(chunkMeta{block: block})
	return ChunkHandle{ID: uint32(idx), Generation: 0}, nil
}

// Get returns a borrow of the block named by h, or StaleChunkError if
// h's generation no longer matches.
func (m *ChunkManager) Get(h ChunkHandle) ([]byte, error) {
	meta := m.meta.At(int(h.ID))
	if meta == nil {
		return nil, StaleChunkError{Handle: h}
	}
	if atomic.LoadUint64(&meta.generation) != h.Generation {
		return nil, StaleChunkError{Handle: h}
	}
	return meta.block, nil
}

// MustGet is Get for call sites where a stale handle is an internal
// invariant violation rather than caller error: it panics with a traced
// error instead of returning one, per spec.md §4.1's "programming
// error, signal clearly" failure mode.
func (m *ChunkManager) MustGet(h ChunkHandle) []byte {
	block, err := m.Get(h)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return block
}

// Free bumps h's generation and returns its block to the free-list.
// Subsequent Get calls against the old handle report StaleChunkError.
func (m *ChunkManager) Free(h ChunkHandle) error {
	meta := m.meta.At(int(h.ID))
	if meta == nil {
		return StaleChunkError{Handle: h}
	}
	if atomic.LoadUint64(&meta.generation) != h.Generation {
		return StaleChunkError{Handle: h}
	}
	next := h.Generation + 1
	if next == 0 {
		// Generation wraparound is a fatal programming error, per
		// spec.md §9 open question (a): "Source treats it as fatal;
		// preserve that policy."
		panic(bark.AddTrace(fmt.Errorf("chunk %d generation wrapped past 2^64-1", h.ID)))
	}
	atomic.StoreUint64(&meta.generation, next)
	m.pushFree(h.ID)
	return nil
}

func (m *ChunkManager) popFree() (uint32, bool) {
	for {
		head := m.freeHead.Load()
		if head == nil {
			return 0, false
		}
		if m.freeHead.CompareAndSwap(head, head.next) {
			return head.id, true
		}
	}
}

func (m *ChunkManager) pushFree(id uint32) {
	node := &freeNode{id: id}
	for {
		head := m.freeHead.Load()
		node.next = head
		if m.freeHead.CompareAndSwap(head, node) {
			return
		}
	}
}
