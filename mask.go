package paradiseecs

import "github.com/TheBitDrifter/mask"

// ComponentMask is a fixed-size, heap-free bitset of length
// MaxComponentTypeID+1, one bit per component id (spec.md §3). It backs
// archetype identity, transition-graph masks, and query predicates, and
// is a comparable value usable directly as a map key — exactly the role
// it plays in the teacher's storage.go (idsGroupedByMask) and query.go
// (ContainsAll/ContainsAny/ContainsNone).
type ComponentMask = mask.Mask

// maskWithBit returns a mask with only the given bit set. Used to probe
// single-bit membership through mask.Mask's set-based API, which has no
// direct single-bit test method.
func maskWithBit(bit ComponentID) ComponentMask {
	var m ComponentMask
	m.Mark(uint32(bit))
	return m
}

// maskHas reports whether m contains the given component id.
func maskHas(m ComponentMask, id ComponentID) bool {
	return m.ContainsAll(maskWithBit(id))
}

// maskWith returns a copy of m with id set.
func maskWith(m ComponentMask, id ComponentID) ComponentMask {
	m.Mark(uint32(id))
	return m
}

// maskWithout returns a copy of m with id cleared.
func maskWithout(m ComponentMask, id ComponentID) ComponentMask {
	m.Unmark(uint32(id))
	return m
}

// forEachSetBit calls fn for every set component id in m, in ascending
// order, as Layout's determinism contract requires (spec.md §4.2).
func forEachSetBit(m ComponentMask, fn func(id ComponentID)) {
	for id := ComponentID(0); id <= MaxComponentTypeID; id++ {
		if maskHas(m, id) {
			fn(id)
		}
	}
}

// maskMinMax returns the smallest and largest set component id in m,
// and ok=false if m is empty.
func maskMinMax(m ComponentMask) (min, max ComponentID, ok bool) {
	first := true
	forEachSetBit(m, func(id ComponentID) {
		if first {
			min = id
			first = false
		}
		max = id
	})
	return min, max, !first
}

// maskPopCount returns the number of set bits in m.
func maskPopCount(m ComponentMask) int {
	n := 0
	forEachSetBit(m, func(ComponentID) { n++ })
	return n
}
