package paradiseecs

import "fmt"

func Example() {
	world := NewWorld(DefaultWorldConfig())

	e, _ := world.Spawn(position, velocity)
	p := position.GetFromEntity(world, e)
	p.X, p.Y = 1, 2
	v := velocity.GetFromEntity(world, e)
	v.X, v.Y = 0.5, 0.5

	q := Factory.NewQuery().With(position, velocity)
	cur := world.Query(q)
	for cur.Next() {
		pos := position.GetFromCursor(cur)
		vel := velocity.GetFromCursor(cur)
		pos.X += vel.X
		pos.Y += vel.Y
	}

	fmt.Println(position.GetFromEntity(world, e).X, position.GetFromEntity(world, e).Y)
	// Output: 1.5 2.5
}
