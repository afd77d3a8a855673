package paradiseecs

import "testing"

func TestMaskWithWithoutHas(t *testing.T) {
	var m ComponentMask
	if maskHas(m, position.ComponentID()) {
		t.Fatal("empty mask should not contain Position")
	}
	m = maskWith(m, position.ComponentID())
	if !maskHas(m, position.ComponentID()) {
		t.Fatal("mask should contain Position after maskWith")
	}
	m = maskWithout(m, position.ComponentID())
	if maskHas(m, position.ComponentID()) {
		t.Fatal("mask should not contain Position after maskWithout")
	}
}

func TestMaskPopCountAndMinMax(t *testing.T) {
	m := maskWith(maskWith(ComponentMask{}, position.ComponentID()), health.ComponentID())
	if got := maskPopCount(m); got != 2 {
		t.Fatalf("maskPopCount = %d, want 2", got)
	}
	min, max, ok := maskMinMax(m)
	if !ok {
		t.Fatal("expected maskMinMax to report ok for a non-empty mask")
	}
	if min > max {
		t.Fatalf("min %d > max %d", min, max)
	}
}

func TestQueryMatches(t *testing.T) {
	withPos := maskWith(ComponentMask{}, position.ComponentID())
	withPosVel := maskWith(withPos, velocity.ComponentID())

	q := NewQuery().With(position).Without(health)
	if !q.Matches(withPos) {
		t.Error("query should match an archetype with Position and no Health")
	}
	if !q.Matches(withPosVel) {
		t.Error("query should match an archetype with Position, Velocity, and no Health")
	}
	if q.Matches(ComponentMask{}) {
		t.Error("query requiring Position should not match the empty archetype")
	}

	withPosHealth := maskWith(withPos, health.ComponentID())
	if q.Matches(withPosHealth) {
		t.Error("query excluding Health should not match an archetype carrying it")
	}
}
