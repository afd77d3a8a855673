package paradiseecs

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// ComponentID is a small integer in [0, MaxComponentTypeID] assigned at
// build time (spec.md §3). InvalidComponentID is the sentinel.
type ComponentID uint16

// InvalidComponentID is the sentinel ComponentID.
const InvalidComponentID ComponentID = 0xFFFF

// componentGUIDNamespace is the fixed namespace used to derive stable,
// deterministic component GUIDs (uuid.NewSHA1) from a type's name, so
// that a GUID is reproducible across builds without being checked in by
// hand. Components that need a hand-pinned, externally-assigned GUID can
// still supply one via WithGUID.
var componentGUIDNamespace = uuid.MustParse("8f14e45f-ceea-467e-bd36-7a9d1c6b8f4a")

// ComponentTypeInfo is the immutable-after-registration metadata for one
// component type (spec.md §3).
type ComponentTypeInfo struct {
	ID        ComponentID
	Size      uint16
	Alignment uint8
	GUID      uuid.UUID
	Name      string
}

// ComponentRegistry is the process-wide, immutable-after-init table
// mapping component id -> ComponentTypeInfo (spec.md §4.2's "given a
// mask M and the component type table" consumer). Assignment of ids
// themselves (spec.md §6's external metadata contract) is out of scope
// for the core per spec.md §1; the registry here provides the minimal
// in-process default generator described in SPEC_FULL.md §13(b):
// sequential auto-assignment that skips any id the caller has pinned.
type ComponentRegistry struct {
	mu       sync.RWMutex
	byID     []*ComponentTypeInfo // dense, indexed by ComponentID
	byName   *SimpleCache[ComponentTypeInfo]
	nextAuto ComponentID
	pinned   map[ComponentID]bool
}

func newComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byID:   make([]*ComponentTypeInfo, 0, 256),
		byName: NewSimpleCache[ComponentTypeInfo](MaxComponentTypeID + 1),
		pinned: make(map[ComponentID]bool),
	}
}

// registerOptions configures a single RegisterComponent call.
type registerOptions struct {
	pin  ComponentID
	guid *uuid.UUID
}

// ComponentOption customizes RegisterComponent.
type ComponentOption func(*registerOptions)

// WithPinnedID pins a component to an externally-assigned id instead of
// letting the registry auto-assign one (spec.md §6: "manually pinned
// ids are respected; auto-assigned ids skip over pinned values").
func WithPinnedID(id ComponentID) ComponentOption {
	return func(o *registerOptions) { o.pin = id }
}

// WithGUID overrides the derived stable GUID with an externally-assigned one.
func WithGUID(g uuid.UUID) ComponentOption {
	return func(o *registerOptions) { o.guid = &g }
}

func (r *ComponentRegistry) allocateID(pin ComponentID) (ComponentID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pin != InvalidComponentID {
		if pin > MaxComponentTypeID {
			return InvalidComponentID, InvalidComponentIDError{ComponentID: pin}
		}
		r.pinned[pin] = true
		return pin, nil
	}
	for r.pinned[r.nextAuto] {
		r.nextAuto++
	}
	if r.nextAuto > MaxComponentTypeID {
		return InvalidComponentID, InvalidComponentIDError{ComponentID: r.nextAuto}
	}
	id := r.nextAuto
	r.nextAuto++
	return id, nil
}

func (r *ComponentRegistry) register(info ComponentTypeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.byID) <= int(info.ID) {
		r.byID = append(r.byID, nil)
	}
	cp := info
	r.byID[info.ID] = &cp
	_, _ = r.byName.Register(info.Name, info)
}

// Lookup returns the metadata for a registered component id.
func (r *ComponentRegistry) Lookup(id ComponentID) (ComponentTypeInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.byID) || r.byID[id] == nil {
		return ComponentTypeInfo{}, UnregisteredComponentError{ComponentID: id}
	}
	return *r.byID[id], nil
}

// registerComponentType is the generic implementation behind
// RegisterComponent[T]; it computes T's size/alignment via reflection
// once, at registration time, and derives a stable GUID from T's name
// unless one was supplied.
func registerComponentType[T any](registry *ComponentRegistry, opts ...ComponentOption) ComponentTypeInfo {
	var zero T
	t := reflect.TypeOf(zero)
	name := typeName(t)

	opt := registerOptions{pin: InvalidComponentID}
	for _, o := range opts {
		o(&opt)
	}

	id, err := registry.allocateID(opt.pin)
	if err != nil {
		panic(err)
	}

	size := 0
	align := 1
	if t != nil {
		size = int(t.Size())
		align = int(t.Align())
		if align < 1 {
			align = 1
		}
	}
	if size > 32767 {
		panic(fmt.Errorf("component %s size %d exceeds the 32767 byte limit", name, size))
	}

	guid := opt.guid
	if guid == nil {
		g := uuid.NewSHA1(componentGUIDNamespace, []byte(name))
		guid = &g
	}

	info := ComponentTypeInfo{
		ID:        id,
		Size:      uint16(size),
		Alignment: uint8(align),
		GUID:      *guid,
		Name:      name,
	}
	registry.register(info)
	return info
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.PkgPath() + "." + t.Name()
}

// IsTag reports whether info describes a zero-size "tag" component
// (spec.md §3/§9): present in the mask but occupying no chunk bytes.
func (info ComponentTypeInfo) IsTag() bool { return info.Size == 0 }
