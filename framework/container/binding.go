package container

import (
	"slices"
	"sync"
	"sync/atomic"
)

// ── Payloads ──────────────────────────────────────────────────────────────────

// Constructor builds an instance from its resolved dependencies. args holds
// one entry per declared dependency, in declaration order.
type Constructor func(args []any) (any, error)

// Payload is what a name is bound to: either a Value or a Factory.
type Payload interface {
	isPayload()
}

type valuePayload struct {
	v any
}

func (valuePayload) isPayload() {}

// Value wraps an already-built object. Resolving it returns v unchanged.
func Value(v any) Payload {
	return valuePayload{v: v}
}

// Factory describes a constructible binding.
//
// Deps lists the names of the bindings New needs, in the order New receives
// them. The names are registry keys: a Factory declaring "logger" is handed
// whatever "logger" resolves to.
type Factory struct {
	Deps []string
	New  Constructor

	// Shared caches the first successfully built instance for the lifetime
	// of the container.
	Shared bool
}

func (Factory) isPayload() {}

// ── binding ───────────────────────────────────────────────────────────────────

// binding is the registry entry for a single name.
type binding struct {
	value   any
	factory *Factory
	slot    *sharedSlot // non-nil for shared factories
}

// sharedSlot is the instance cache of a shared factory. building is non-nil
// while a goroutine constructs the instance and is closed when it finishes;
// built is set only after instance.
type sharedSlot struct {
	mu       sync.Mutex
	building chan struct{}
	built    atomic.Bool
	instance any
}

func (s *sharedSlot) isBuilt() bool {
	return s.built.Load()
}

func newBinding(p Payload) *binding {
	switch p := p.(type) {
	case valuePayload:
		return &binding{value: p.v}
	case Factory:
		if p.New == nil {
			panic("container: factory has no constructor")
		}
		f := &Factory{Deps: slices.Clone(p.Deps), New: p.New, Shared: p.Shared}
		b := &binding{factory: f}
		if f.Shared {
			b.slot = &sharedSlot{}
		}
		return b
	case *Factory:
		if p == nil {
			panic("container: nil factory")
		}
		return newBinding(*p)
	default:
		panic("container: unsupported payload")
	}
}

func (b *binding) kind() string {
	if b.factory == nil {
		return "value"
	}
	return "factory"
}

func (b *binding) deps() []string {
	if b.factory == nil {
		return nil
	}
	return b.factory.Deps
}
