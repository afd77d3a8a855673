package paradiseecs

import "sync"

// transitionDirection distinguishes an add-component edge from a
// remove-component edge in the packed transition graph (spec.md §4.4).
type transitionDirection uint8

const (
	transitionAdd transitionDirection = iota
	transitionRemove
)

// transitionKey packs (archetype, component, direction) the way
// spec.md §3 describes (20-bit archetype id / 11-bit component id /
// 1-bit direction): it is kept as a plain struct rather than a single
// bit-packed integer since Go map keys don't need the packing to be
// O(1). The field widths are still bounded: GetOrCreate refuses to
// create more than maxArchetypeID+1 archetypes, and component ids above
// MaxComponentTypeID are rejected when the component is registered.
type transitionKey struct {
	from      archetypeID
	component ComponentID
	dir       transitionDirection
}

// QueryCache holds the live, incrementally-maintained list of
// archetype ids matching one Query description (spec.md §4.7): new
// archetypes are tested against every live cache as they're created,
// so a Cursor never has to rescan the whole registry.
type QueryCache struct {
	query   Query
	matches []archetypeID
}

// Matches returns the archetype ids currently known to satisfy the
// cache's query, in archetype-creation order.
func (c *QueryCache) Matches() []archetypeID { return c.matches }

// ArchetypeRegistry interns archetypes by component mask, assigns
// archetype ids, maintains the add/remove transition graph, and keeps
// per-query match-list caches up to date (spec.md §4.4).
type ArchetypeRegistry struct {
	mu sync.Mutex

	componentRegistry *ComponentRegistry
	chunkManager      *ChunkManager
	config            WorldConfig

	byMask      map[ComponentMask]archetypeID
	archetypes  []*ArchetypeStore
	transitions map[transitionKey]archetypeID
	queryCaches map[Query]*QueryCache
}

// NewArchetypeRegistry constructs an empty registry. The empty-mask
// archetype (every entity starts here) is created eagerly so archetype
// id 0 is always valid.
func NewArchetypeRegistry(componentRegistry *ComponentRegistry, chunkManager *ChunkManager, config WorldConfig) (*ArchetypeRegistry, error) {
	r := &ArchetypeRegistry{
		componentRegistry: componentRegistry,
		chunkManager:      chunkManager,
		config:            config,
		byMask:            make(map[ComponentMask]archetypeID),
		transitions:       make(map[transitionKey]archetypeID),
		queryCaches:       make(map[Query]*QueryCache),
	}
	if _, err := r.GetOrCreate(ComponentMask{}); err != nil {
		return nil, err
	}
	return r, nil
}

// GetOrCreate interns mask, computing its Layout and allocating a new
// ArchetypeStore the first time mask is seen.
func (r *ArchetypeRegistry) GetOrCreate(mask ComponentMask) (*ArchetypeStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(mask)
}

func (r *ArchetypeRegistry) getOrCreateLocked(mask ComponentMask) (*ArchetypeStore, error) {
	if id, ok := r.byMask[mask]; ok {
		return r.archetypes[id], nil
	}
	if len(r.archetypes) > maxArchetypeID {
		return nil, TooManyArchetypesError{}
	}
	layout, err := ComputeLayout(mask, r.componentRegistry, r.config.ChunkSize, r.config.EntityIDByteWidth)
	if err != nil {
		return nil, err
	}
	id := archetypeID(len(r.archetypes))
	store, err := newArchetypeStore(id, mask, layout, r.componentRegistry, r.chunkManager, r.config.DefaultChunkCapacity)
	if err != nil {
		return nil, err
	}
	r.archetypes = append(r.archetypes, store)
	r.byMask[mask] = id
	for _, cache := range r.queryCaches {
		if cache.query.Matches(mask) {
			cache.matches = append(cache.matches, id)
		}
	}
	return store, nil
}

// Transition returns the archetype reached from 'from' by adding (or
// removing) component, memoizing the edge so repeated structural
// changes along the same path never recompute a Layout (spec.md §4.4).
func (r *ArchetypeRegistry) Transition(from archetypeID, component ComponentID, dir transitionDirection, newMask ComponentMask) (*ArchetypeStore, error) {
	key := transitionKey{from: from, component: component, dir: dir}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.transitions[key]; ok {
		return r.archetypes[id], nil
	}
	store, err := r.getOrCreateLocked(newMask)
	if err != nil {
		return nil, err
	}
	r.transitions[key] = store.ID()
	return store, nil
}

// ArchetypeByID returns the store for id. Callers are expected to only
// ever hold ids handed out by this registry, so an out-of-range id is a
// programmer error rather than a recoverable one.
func (r *ArchetypeRegistry) ArchetypeByID(id archetypeID) *ArchetypeStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.archetypes[id]
}

// ArchetypeCount returns the number of interned archetypes.
func (r *ArchetypeRegistry) ArchetypeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.archetypes)
}

// GetOrCreateQueryCache returns the live match-list cache for q,
// building it from the currently-known archetypes the first time q is
// seen (spec.md §4.7).
func (r *ArchetypeRegistry) GetOrCreateQueryCache(q Query) *QueryCache {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.queryCaches[q]; ok {
		return c
	}
	c := &QueryCache{query: q}
	for _, a := range r.archetypes {
		if q.Matches(a.Mask()) {
			c.matches = append(c.matches, a.ID())
		}
	}
	r.queryCaches[q] = c
	return c
}
