package paradiseecs

import (
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"
)

// listChunkBits sizes each inner chunk at 64 elements, so one uint64
// ready-bitmap word covers exactly one chunk (spec.md §5's "readiness
// bitmap" detail).
const listChunkBits = 6
const listChunkSize = 1 << listChunkBits
const listChunkMask = listChunkSize - 1

// listSlot is one inner chunk: a fixed-size element array plus the
// ready-bitmap word for it. Slots are allocated once and never moved;
// only the outer chunk-pointer slice is ever replaced wholesale on
// growth (copy-on-grow), so existing data never relocates.
type listSlot[T any] struct {
	ready atomic.Uint64
	data  [listChunkSize]T
}

type listHeader[T any] struct {
	chunks []*listSlot[T]
}

// appendOnlyList is the lock-free, append-only chunked list of spec.md
// §2/§5: a shared primitive used by ChunkManager's metadata table and
// EntityManager's location table. ArchetypeRegistry's archetype list and
// per-query match lists do not use it; they are plain slices guarded by
// the registry's mutex, as is each ArchetypeStore's chunk list. Readers never observe a
// value above Count(), and growth never relocates already-published
// data.
type appendOnlyList[T any] struct {
	header    atomic.Pointer[listHeader[T]]
	growMu    sync.Mutex
	reserved  atomic.Uint64
	committed atomic.Uint64
}

func newAppendOnlyList[T any]() *appendOnlyList[T] {
	l := &appendOnlyList[T]{}
	l.header.Store(&listHeader[T]{})
	return l
}

// ensureChunk makes sure chunkIdx exists, growing the outer chunk-array
// under a short lock with double-checked re-reading, per spec.md §5
// step 2.
func (l *appendOnlyList[T]) ensureChunk(chunkIdx int) *listSlot[T] {
	if h := l.header.Load(); chunkIdx < len(h.chunks) {
		return h.chunks[chunkIdx]
	}
	l.growMu.Lock()
	defer l.growMu.Unlock()
	h := l.header.Load()
	if chunkIdx < len(h.chunks) {
		return h.chunks[chunkIdx]
	}
	grown := make([]*listSlot[T], chunkIdx+1)
	copy(grown, h.chunks)
	for i := len(h.chunks); i <= chunkIdx; i++ {
		grown[i] = &listSlot[T]{}
	}
	l.header.Store(&listHeader[T]{chunks: grown})
	return grown[chunkIdx]
}

// Push reserves the next index, writes v, publishes readiness, then
// advances the committed watermark (spec.md §5 steps 1-6) before
// returning the reserved index to the caller.
func (l *appendOnlyList[T]) Push(v T) int {
	i := l.reserved.Add(1) - 1
	chunkIdx := int(i) >> listChunkBits
	slotIdx := uint(i) & listChunkMask

	slot := l.ensureChunk(chunkIdx)
	slot.data[slotIdx] = v

	bit := uint64(1) << slotIdx
	for {
		old := slot.ready.Load()
		if old&bit != 0 {
			break
		}
		if slot.ready.CompareAndSwap(old, old|bit) {
			break
		}
	}

	l.advanceCommitted()
	for l.committed.Load() <= i {
		runtime.Gosched()
	}
	return int(i)
}

// advanceCommitted scans consecutive ready bits starting at the current
// committed watermark, word (chunk) at a time, and publishes the new
// watermark via CAS (spec.md §5 step 5).
func (l *appendOnlyList[T]) advanceCommitted() {
	for {
		cur := l.committed.Load()
		chunkIdx := int(cur) >> listChunkBits
		slotIdx := uint(cur) & listChunkMask

		h := l.header.Load()
		if chunkIdx >= len(h.chunks) {
			return
		}
		ready := h.chunks[chunkIdx].ready.Load()
		inv := ^ready >> slotIdx

		var run uint64
		if inv == 0 {
			run = listChunkSize - uint64(slotIdx)
		} else {
			run = uint64(bits.TrailingZeros64(inv))
		}
		if run == 0 {
			return
		}
		next := cur + run
		if !l.committed.CompareAndSwap(cur, next) {
			continue
		}
		if run < listChunkSize-uint64(slotIdx) {
			return
		}
		// Drained this chunk's tail; loop to try extending into the next one.
	}
}

// Count returns the number of committed (readable) elements.
func (l *appendOnlyList[T]) Count() int { return int(l.committed.Load()) }

// At returns a pointer to the element at i, or nil if i is not yet
// committed. The returned pointer stays valid for the list's lifetime.
func (l *appendOnlyList[T]) At(i int) *T {
	if i < 0 || i >= l.Count() {
		return nil
	}
	chunkIdx := i >> listChunkBits
	slotIdx := i & listChunkMask
	h := l.header.Load()
	return &h.chunks[chunkIdx].data[slotIdx]
}

// Range calls fn for every committed element in index order, stopping
// early if fn returns false.
func (l *appendOnlyList[T]) Range(fn func(i int, v *T) bool) {
	n := l.Count()
	for i := 0; i < n; i++ {
		if !fn(i, l.At(i)) {
			return
		}
	}
}
