package paradiseecs

import "testing"

func TestEntityManagerCreateDestroyRecycle(t *testing.T) {
	m := NewEntityManager()
	e1 := m.Create(0, 0)
	if !m.IsAlive(e1) {
		t.Fatal("freshly created entity should be alive")
	}

	if err := m.Destroy(e1); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if m.IsAlive(e1) {
		t.Fatal("destroyed entity should not be alive")
	}

	e2 := m.Create(1, 0)
	if e2.ID != e1.ID {
		t.Fatalf("expected the destroyed id %d to be recycled, got %d", e1.ID, e2.ID)
	}
	if e2.Generation == e1.Generation {
		t.Fatalf("expected a bumped generation on reuse, got %d for both", e2.Generation)
	}
	if m.IsAlive(e1) {
		t.Fatal("old handle should not be alive after its slot was recycled")
	}
	if !m.IsAlive(e2) {
		t.Fatal("new handle should be alive")
	}
}

func TestEntityManagerDestroyBumpsGenerationImmediately(t *testing.T) {
	m := NewEntityManager()
	e1 := m.Create(0, 0)
	if err := m.Destroy(e1); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// Destroy bumps the generation on the spot, so the handle used to
	// destroy it is already stale for any further access — no separate
	// "dead but same generation" state exists via this path.
	if _, err := m.GetLocation(e1); err == nil {
		t.Fatal("expected an error reading a destroyed entity's location")
	} else if _, ok := err.(StaleEntityError); !ok {
		t.Fatalf("expected StaleEntityError, got %T", err)
	}

	e2 := m.Create(1, 0) // recycles e1.ID
	if e2.Generation != e1.Generation+1 {
		t.Fatalf("expected generation %d after one destroy+recycle, got %d", e1.Generation+1, e2.Generation)
	}

	// Same id, stale (pre-recycle) generation: still StaleEntityError.
	if _, err := m.GetLocation(e1); err == nil {
		t.Fatal("expected an error reading a stale handle's location")
	} else if _, ok := err.(StaleEntityError); !ok {
		t.Fatalf("expected StaleEntityError, got %T", err)
	}
}

func TestEntityManagerEntityAtReportsDeadForUnrecycledID(t *testing.T) {
	m := NewEntityManager()
	e := m.Create(0, 0)
	if err := m.Destroy(e); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// EntityAt resolves a raw id, not a generation-checked handle: a
	// destroyed-but-not-yet-recycled id has no generation to mismatch
	// against, so it reports DeadEntityError instead.
	if _, err := m.EntityAt(e.ID); err == nil {
		t.Fatal("expected an error resolving a dead id")
	} else if _, ok := err.(DeadEntityError); !ok {
		t.Fatalf("expected DeadEntityError, got %T", err)
	}
}

func TestEntityManagerDoubleDestroyIsRejected(t *testing.T) {
	m := NewEntityManager()
	e := m.Create(0, 0)
	if err := m.Destroy(e); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := m.Destroy(e); err == nil {
		t.Fatal("expected destroying an already-dead entity to fail")
	}
}
