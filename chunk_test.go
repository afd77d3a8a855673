package paradiseecs

import "testing"

func TestChunkManagerAllocateGet(t *testing.T) {
	m := NewChunkManager(64, nil)
	h, err := m.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	block, err := m.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(block) != 64 {
		t.Errorf("block len = %d, want 64", len(block))
	}
}

func TestChunkManagerStaleHandleAfterFree(t *testing.T) {
	m := NewChunkManager(64, nil)
	h, err := m.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := m.Free(h); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if _, err := m.Get(h); err == nil {
		t.Fatal("expected StaleChunkError for a freed handle")
	}
}

func TestChunkManagerReusesFreedSlot(t *testing.T) {
	m := NewChunkManager(64, nil)
	h1, _ := m.Allocate()
	if err := m.Free(h1); err != nil {
		t.Fatalf("Free: %v", err)
	}
	h2, err := m.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if h2.ID != h1.ID {
		t.Errorf("expected reused id %d, got %d", h1.ID, h2.ID)
	}
	if h2.Generation != h1.Generation+1 {
		t.Errorf("expected generation %d, got %d", h1.Generation+1, h2.Generation)
	}
}

func TestChunkManagerAllocateZeroesReusedBlock(t *testing.T) {
	m := NewChunkManager(8, nil)
	h1, _ := m.Allocate()
	block, _ := m.Get(h1)
	for i := range block {
		block[i] = 0xFF
	}
	_ = m.Free(h1)
	h2, _ := m.Allocate()
	block2, _ := m.Get(h2)
	for i, b := range block2 {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0 after reuse", i, b)
		}
	}
}
