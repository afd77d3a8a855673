package paradiseecs

import "testing"

func newTestRegistry(t *testing.T, chunkSize int) *ArchetypeRegistry {
	t.Helper()
	cfg := DefaultWorldConfig()
	cfg.ChunkSize = chunkSize
	chunks := NewChunkManager(chunkSize, nil)
	r, err := NewArchetypeRegistry(Config.registry, chunks, cfg)
	if err != nil {
		t.Fatalf("NewArchetypeRegistry: %v", err)
	}
	return r
}

func TestArchetypeRegistryInternsByMask(t *testing.T) {
	r := newTestRegistry(t, 4096)
	mask := maskWith(ComponentMask{}, position.ComponentID())

	a, err := r.GetOrCreate(mask)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	b, err := r.GetOrCreate(mask)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if a != b {
		t.Fatal("same mask should return the same ArchetypeStore")
	}
}

func TestArchetypeRegistryTransitionIsPathIndependent(t *testing.T) {
	r := newTestRegistry(t, 4096)
	empty, err := r.GetOrCreate(ComponentMask{})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	// path 1: add Position, then Velocity.
	withPos, err := r.Transition(empty.ID(), position.ComponentID(), transitionAdd, maskWith(ComponentMask{}, position.ComponentID()))
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	bothFromPos, err := r.Transition(withPos.ID(), velocity.ComponentID(), transitionAdd,
		maskWith(maskWith(ComponentMask{}, position.ComponentID()), velocity.ComponentID()))
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	// path 2: add Velocity, then Position.
	withVel, err := r.Transition(empty.ID(), velocity.ComponentID(), transitionAdd, maskWith(ComponentMask{}, velocity.ComponentID()))
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	bothFromVel, err := r.Transition(withVel.ID(), position.ComponentID(), transitionAdd,
		maskWith(maskWith(ComponentMask{}, position.ComponentID()), velocity.ComponentID()))
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if bothFromPos.ID() != bothFromVel.ID() {
		t.Fatalf("expected both transition paths to converge on one archetype, got %d and %d",
			bothFromPos.ID(), bothFromVel.ID())
	}
}

func TestArchetypeRegistryTransitionMemoizes(t *testing.T) {
	r := newTestRegistry(t, 4096)
	empty, err := r.GetOrCreate(ComponentMask{})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	newMask := maskWith(ComponentMask{}, health.ComponentID())

	first, err := r.Transition(empty.ID(), health.ComponentID(), transitionAdd, newMask)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	countAfterFirst := r.ArchetypeCount()

	second, err := r.Transition(empty.ID(), health.ComponentID(), transitionAdd, newMask)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if second.ID() != first.ID() {
		t.Fatal("expected the memoized edge to return the same archetype")
	}
	if r.ArchetypeCount() != countAfterFirst {
		t.Fatalf("ArchetypeCount grew on a memoized transition: %d != %d", r.ArchetypeCount(), countAfterFirst)
	}
}

func TestQueryCacheGrowsWithNewArchetypes(t *testing.T) {
	r := newTestRegistry(t, 4096)
	q := NewQuery().With(position)
	cache := r.GetOrCreateQueryCache(q)
	if len(cache.Matches()) != 0 {
		t.Fatalf("expected no matches before any Position archetype exists, got %d", len(cache.Matches()))
	}

	mask := maskWith(ComponentMask{}, position.ComponentID())
	if _, err := r.GetOrCreate(mask); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if len(cache.Matches()) != 1 {
		t.Fatalf("expected the cache to pick up the new matching archetype, got %d matches", len(cache.Matches()))
	}
}
