package paradiseecs

// factory groups the package's top-level constructors behind a single
// package-level value, the way the teacher's own Factory does for
// warehouse.NewWorld/NewQuery/NewCache: a familiar entry point for
// callers who'd rather discover the API through one identifier than
// remember a dozen free functions.
type factory struct{}

// Factory is the package's single factory instance.
var Factory = factory{}

// NewWorld constructs a World from cfg.
func (factory) NewWorld(cfg WorldConfig) *World { return NewWorld(cfg) }

// NewQuery returns the empty Query, matching every archetype until
// narrowed with With/Without/WithAny.
func (factory) NewQuery() Query { return NewQuery() }
