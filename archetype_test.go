package paradiseecs

import (
	"testing"
	"unsafe"
)

func newTestArchetypeStore(t *testing.T, mask ComponentMask, chunkSize int) *ArchetypeStore {
	t.Helper()
	layout, err := ComputeLayout(mask, Config.registry, chunkSize, 4)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	store, err := newArchetypeStore(0, mask, layout, Config.registry, NewChunkManager(chunkSize, nil), 2)
	if err != nil {
		t.Fatalf("newArchetypeStore: %v", err)
	}
	return store
}

func TestArchetypeStoreAllocateGrowsChunks(t *testing.T) {
	mask := maskWith(ComponentMask{}, position.ComponentID())
	store := newTestArchetypeStore(t, mask, 64)
	epc := store.Layout().EntitiesPerChunk

	for i := 0; i < epc+1; i++ {
		if _, _, _, err := store.AllocateEntity(); err != nil {
			t.Fatalf("AllocateEntity(%d): %v", i, err)
		}
	}
	if store.ChunkCount() != 2 {
		t.Fatalf("ChunkCount = %d, want 2 after exceeding one chunk's capacity", store.ChunkCount())
	}
}

func TestArchetypeStoreSwapRemove(t *testing.T) {
	mask := maskWith(ComponentMask{}, position.ComponentID())
	store := newTestArchetypeStore(t, mask, 4096)

	for i := 0; i < 5; i++ {
		h, slot, _, err := store.AllocateEntity()
		if err != nil {
			t.Fatalf("AllocateEntity: %v", err)
		}
		store.WriteEntityID(h, slot, uint64(i))
	}

	off, size, ok := store.columnOffset(position.ComponentID())
	if !ok {
		t.Fatal("expected a column for Position")
	}
	for i := 0; i < 5; i++ {
		block, slot := store.blockAndSlot(i)
		p := (*Position)(unsafe.Pointer(&block[off+slot*size]))
		p.X, p.Y = float64(i), float64(i)*10
	}

	movedGlobalIndex, moved, err := store.RemoveEntity(1)
	if err != nil {
		t.Fatalf("RemoveEntity: %v", err)
	}
	if !moved {
		t.Fatal("expected RemoveEntity to report a moved entity")
	}
	if movedGlobalIndex != 4 {
		t.Fatalf("movedGlobalIndex = %d, want 4 (old index of the last entity)", movedGlobalIndex)
	}
	if store.EntityCount() != 4 {
		t.Fatalf("EntityCount = %d, want 4", store.EntityCount())
	}
	if id := store.EntityIDAtGlobalIndex(1); id != 4 {
		t.Fatalf("entity id at slot 1 = %d, want 4 (the moved entity)", id)
	}
}
