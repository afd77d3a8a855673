package paradiseecs

// Layout is the precomputed Struct-of-Arrays placement for one
// component-set mask within a fixed-size chunk (spec.md §4.2): the
// entity-id column occupies chunk offset 0, and every present
// component gets a byte offset aligned to its own alignment
// requirement, packed in ascending component-id order for determinism.
type Layout struct {
	Mask              ComponentMask
	EntitiesPerChunk  int
	ChunkSize         int
	EntityIDByteWidth int

	minCid     ComponentID
	maxCid     ComponentID
	hasColumns bool
	baseOffset []int32 // indexed by cid - minCid; -1 if absent
}

// BaseOffset returns the byte offset of component cid's column within a
// chunk using this layout, or ok=false if cid is not present in the mask.
func (l Layout) BaseOffset(cid ComponentID) (offset int, ok bool) {
	if !l.hasColumns || cid < l.minCid || cid > l.maxCid {
		return -1, false
	}
	off := l.baseOffset[cid-l.minCid]
	if off < 0 {
		return -1, false
	}
	return int(off), true
}

func alignUp(offset, alignment int) int {
	if alignment <= 1 {
		return offset
	}
	return (offset + alignment - 1) &^ (alignment - 1)
}

// ComputeLayout implements spec.md §4.2's algorithm. registry resolves
// each set component id's {size, alignment}; chunkSize and
// entityIDByteWidth come from the owning World's WorldConfig.
func ComputeLayout(m ComponentMask, registry *ComponentRegistry, chunkSize, entityIDByteWidth int) (Layout, error) {
	minCid, maxCid, ok := maskMinMax(m)
	if !ok {
		// Step 2: an empty mask packs nothing but the entity-id column,
		// which then gets the whole chunk to itself.
		return Layout{
			Mask:              m,
			EntitiesPerChunk:  chunkSize,
			ChunkSize:         chunkSize,
			EntityIDByteWidth: entityIDByteWidth,
		}, nil
	}

	type member struct {
		id   ComponentID
		info ComponentTypeInfo
	}
	var ids []ComponentID
	forEachSetBit(m, func(id ComponentID) { ids = append(ids, id) })

	members := make([]member, 0, len(ids))
	totalSize := 0
	for _, id := range ids {
		info, err := registry.Lookup(id)
		if err != nil {
			return Layout{}, err
		}
		members = append(members, member{id: id, info: info})
		totalSize += int(info.Size)
	}

	// perEntity includes the entity-id column itself: an archetype made
	// only of zero-size tag components still needs to fit the id column,
	// so its per-entity footprint is never zero (SPEC_FULL.md open
	// question (d) resolves the otherwise-ambiguous interaction between
	// step 2's empty-mask shortcut and an all-tag, non-empty mask).
	perEntity := entityIDByteWidth + totalSize
	if perEntity <= 0 {
		perEntity = 1
	}
	epc := chunkSize / perEntity
	if epc < 1 {
		epc = 1
	}

	baseOffset := make([]int32, int(maxCid-minCid)+1)

	for {
		for i := range baseOffset {
			baseOffset[i] = -1
		}
		offset := entityIDByteWidth * epc
		fits := true
		for _, mm := range members {
			if mm.info.Size == 0 {
				baseOffset[mm.id-minCid] = 0
				continue
			}
			align := int(mm.info.Alignment)
			offset = alignUp(offset, align)
			baseOffset[mm.id-minCid] = int32(offset)
			offset += int(mm.info.Size) * epc
			if offset > chunkSize {
				fits = false
				break
			}
		}
		if fits {
			return Layout{
				Mask:              m,
				EntitiesPerChunk:  epc,
				ChunkSize:         chunkSize,
				EntityIDByteWidth: entityIDByteWidth,
				minCid:            minCid,
				maxCid:            maxCid,
				hasColumns:        true,
				baseOffset:        baseOffset,
			}, nil
		}
		if epc <= 1 {
			return Layout{}, ChunkCapacityExceededError{Mask: m}
		}
		epc--
	}
}
