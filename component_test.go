package paradiseecs

import "testing"

type pinnedProbe struct{ V int32 }

func TestRegisterComponentPinnedIDIsRespected(t *testing.T) {
	const pin ComponentID = 1500
	c := RegisterComponent[pinnedProbe](WithPinnedID(pin))
	if c.ComponentID() != pin {
		t.Fatalf("ComponentID() = %d, want %d", c.ComponentID(), pin)
	}
	info, err := Config.registry.Lookup(pin)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.Size != 4 {
		t.Errorf("Size = %d, want 4", info.Size)
	}
}

type autoProbeA struct{ V int64 }
type autoProbeB struct{ V int64 }

func TestRegisterComponentAutoAssignSkipsPinned(t *testing.T) {
	const pin ComponentID = 1600
	a := RegisterComponent[autoProbeA](WithPinnedID(pin))
	b := RegisterComponent[autoProbeB]()
	if b.ComponentID() == a.ComponentID() {
		t.Fatal("auto-assignment should never collide with a pinned id")
	}
}

func TestComponentTypeInfoIsTag(t *testing.T) {
	info, err := Config.registry.Lookup(frozen.ComponentID())
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !info.IsTag() {
		t.Fatal("Frozen should be reported as a zero-size tag component")
	}
}
