package paradiseecs

// MaxComponentTypeID is the largest component id a build may assign
// (spec.md §3). ComponentMask is sized to cover exactly
// [0, MaxComponentTypeID].
const MaxComponentTypeID = 2047

// maxArchetypeID is the largest archetype id the 20-bit transition-edge
// key can address (spec.md §4.4).
const maxArchetypeID = 1<<20 - 1

// maxComponentIDBits is the width reserved for a component id inside a
// packed transition-edge key (spec.md §4.4).
const maxComponentIDBits = 11

// Allocator supplies the raw backing memory for chunk blocks; World
// hands it to its ChunkManager. Layouts and metadata tables are
// allocated on the Go heap and do not go through it. The default wraps
// the Go heap allocator.
type Allocator interface {
	// Alloc returns a zero-initialized byte slice of exactly n bytes.
	Alloc(n int) []byte
}

type heapAllocator struct{}

func (heapAllocator) Alloc(n int) []byte { return make([]byte, n) }

// WorldConfig carries the configuration knobs of spec.md §6. Every
// Chunk in a World uses the same ChunkSize; constructing a World copies
// and validates this struct once.
type WorldConfig struct {
	// ChunkSize is the size in bytes of every memory block. Must be >= 256.
	ChunkSize int
	// EntityIDByteWidth is the width of the entity-id column within a
	// chunk, and bounds the maximum live entity count. One of 1, 2, 4.
	EntityIDByteWidth int
	// DefaultEntityCapacity is normalized and stored with the World's
	// config, but nothing reads it: the EntityManager's location table
	// starts empty and grows in fixed 64-entry chunks.
	DefaultEntityCapacity int
	// DefaultChunkCapacity sizes an ArchetypeStore's initial chunk-list capacity.
	DefaultChunkCapacity int
	// Allocator backs chunk memory (layouts and metadata use the Go
	// heap). Defaults to the Go heap allocator when nil.
	Allocator Allocator
}

// DefaultWorldConfig returns the spec.md §6 defaults: a 16 KiB chunk
// size, a 4-byte entity id column (covering up to 2^32-1 live entities),
// and modest initial capacities.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		ChunkSize:             16384,
		EntityIDByteWidth:     4,
		DefaultEntityCapacity: 1024,
		DefaultChunkCapacity:  8,
		Allocator:             heapAllocator{},
	}
}

func (c *WorldConfig) normalize() {
	if c.ChunkSize < 256 {
		c.ChunkSize = 256
	}
	switch c.EntityIDByteWidth {
	case 1, 2, 4:
	default:
		c.EntityIDByteWidth = 4
	}
	if c.DefaultEntityCapacity <= 0 {
		c.DefaultEntityCapacity = 1024
	}
	if c.DefaultChunkCapacity <= 0 {
		c.DefaultChunkCapacity = 8
	}
	if c.Allocator == nil {
		c.Allocator = heapAllocator{}
	}
}

// maxEntityID returns the largest entity id representable in
// EntityIDByteWidth bytes.
func (c WorldConfig) maxEntityID() uint64 {
	return 1<<(8*uint(c.EntityIDByteWidth)) - 1
}

// Config is the process-wide, set-once-at-startup singleton mirrored
// after the teacher's package-level Config (config.go): a single hook
// point the host application configures before any World is created,
// per spec.md §9 ("Global state ... initialization order MUST be
// guaranteed by the host").
//
// The registry is created in Config's own initializer rather than in an
// init function, so it already exists when package-level variables
// (including ones in this package) call RegisterComponent.
var Config = config{registry: newComponentRegistry()}

type config struct {
	// registry is the process-wide ComponentRegistry. Populated by
	// RegisterComponent calls made at package-init time by generated
	// code, per spec.md §6's component metadata contract.
	registry *ComponentRegistry
}
