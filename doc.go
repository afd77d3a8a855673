/*
Package paradiseecs is an archetype-based Entity-Component-System data
engine: chunked Struct-of-Arrays storage, a structural-change transition
graph, and a mask-based query/matching layer.

Core Concepts:

  - Entity: a versioned identifier ({id, generation}) naming a bag of components.
  - Component: a fixed-size, trivially-copyable value record.
  - Archetype: the unique set of component types a group of entities shares;
    determines the SoA layout those entities are stored with.
  - Chunk: a fixed-size (default 16 KiB) memory block holding a contiguous
    slice of one archetype's entities, one column per component.
  - Query: an immutable (All, None, Any) triple of component masks.

Basic usage:

	position := paradiseecs.RegisterComponent[Position]()
	velocity := paradiseecs.RegisterComponent[Velocity]()

	world := paradiseecs.NewWorld(paradiseecs.DefaultWorldConfig())

	e, _ := world.Spawn(position, velocity)
	pos := position.GetFromEntity(world, e)
	pos.X, pos.Y = 1, 2

	q := paradiseecs.Factory.NewQuery().With(position, velocity)
	cur := world.Query(q)
	for cur.Next() {
		p := position.GetFromCursor(cur)
		v := velocity.GetFromCursor(cur)
		p.X += v.X
		p.Y += v.Y
	}

Out of scope (external collaborators, see spec.md §1): compile-time
component id/GUID assignment beyond the deterministic rule documented on
ComponentRegistry, entity-builder convenience APIs, tag bitmask
side-tables, the system scheduler, serialization, and logging.
*/
package paradiseecs
