package container

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-inject/framework/errors"
)

// Extender decorates an instance built by a factory binding.
type Extender func(instance any) (any, error)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container.
//
// It supports:
//   - Register / Bind / Singleton / Instance / Alias
//   - Make / Resolve (generic)
//   - Tags (group multiple bindings under one tag)
//   - Extend (decorate factory-built instances)
//   - Contextual binding (when A needs B, give it C)
//   - Deferred loading (bindings registered on first use)
//   - Rebound, resolved and error callbacks
//
// Registration is meant to finish before resolution starts. After that, Make
// may be called from any number of goroutines.
type Container struct {
	mu sync.RWMutex

	// name → binding
	bindings map[string]*binding

	// alias → name (canonical key)
	aliases map[string]string

	// name → extender funcs
	extenders map[string][]Extender

	// tag → []name
	tags map[string][]string

	// contextual: overrides[consumer][dependency] = binding
	contextual map[string]map[string]*binding

	// name → loader that registers it on first use
	deferred map[string]*deferredLoader

	reboundCallbacks map[string][]func(any)
	afterResolving   []func(string, any)
	onError          []func(string, error)

	// per-goroutine constructions and callbacks in progress
	active activity

	logger zerolog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and build tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// New creates a container holding only itself, bound as "container".
func New(opts ...Option) *Container {
	c := &Container{
		bindings:         make(map[string]*binding),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]Extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]*binding),
		deferred:         make(map[string]*deferredLoader),
		reboundCallbacks: make(map[string][]func(any)),
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Instance("container", c)
	return c
}

// Logger returns the container's logger.
func (c *Container) Logger() zerolog.Logger {
	return c.logger
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds name to payload, replacing any previous binding for name.
//
//	c.Register("logger", container.Factory{New: newLogger})
//	c.Register("repo", container.Factory{Deps: []string{"logger"}, New: newRepo})
//	c.Register("dsn", container.Value("postgres://localhost/app"))
func (c *Container) Register(name string, payload Payload) {
	if name == "" {
		panic("container: binding name cannot be empty")
	}
	if payload == nil {
		panic(fmt.Sprintf("container: nil payload for [%s]", name))
	}
	b := newBinding(payload)

	c.mu.Lock()
	key := c.canonical(name)
	_, existed := c.bindings[key]
	c.bindings[key] = b
	delete(c.deferred, key)
	cbs := c.reboundCallbacks[key]
	c.mu.Unlock()

	c.logger.Debug().
		Str("binding", key).
		Str("kind", b.kind()).
		Strs("deps", b.deps()).
		Bool("overwrite", existed).
		Msg("Registered binding")

	if existed && len(cbs) > 0 {
		c.fireRebound(key, cbs)
	}
}

// Bind registers a transient factory: every Make builds a new instance.
//
//	c.Bind("userRepository", []string{"logger"}, container.Ctor1(users.NewRepository))
func (c *Container) Bind(name string, deps []string, ctor Constructor) {
	c.Register(name, Factory{Deps: deps, New: ctor})
}

// Singleton registers a factory whose first successful result is cached.
// Concurrent first resolutions wait for a single construction. A constructor
// that resolves its own name fails with *CyclicDependencyError.
//
//	c.Singleton("router", []string{"config"}, container.Ctor1(routing.FromConfig))
func (c *Container) Singleton(name string, deps []string, ctor Constructor) {
	c.Register(name, Factory{Deps: deps, New: ctor, Shared: true})
}

// Instance registers a pre-built value.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(name string, instance any) {
	c.Register(name, Value(instance))
}

// Alias registers an alternative name for a binding.
//
//	c.Alias("config", "configuration")
func (c *Container) Alias(name, alias string) {
	if name == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", name))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = c.canonical(name)
}

// Defer registers load to run the first time any of names is resolved while
// still unbound. load is expected to register those names.
func (c *Container) Defer(names []string, load func() error) {
	l := &deferredLoader{load: load}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range names {
		key := c.canonical(name)
		if _, bound := c.bindings[key]; bound {
			continue
		}
		c.deferred[key] = l
	}
}

type deferredLoader struct {
	once sync.Once
	load func() error
	err  error
}

func (l *deferredLoader) run() error {
	l.once.Do(func() { l.err = l.load() })
	return l.err
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates instances built for name from now on. Extenders run in
// registration order. Value bindings are never extended.
//
//	c.Extend("logger", func(instance any) (any, error) {
//	    return &TimestampLogger{Inner: instance.(*Logger)}, nil
//	})
func (c *Container) Extend(name string, fn Extender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(name)
	c.extenders[key] = append(c.extenders[key], fn)
}

func (c *Container) applyExtenders(key string, instance any) (any, error) {
	c.mu.RLock()
	exts := slices.Clone(c.extenders[key])
	c.mu.RUnlock()

	for _, ext := range exts {
		var err error
		instance, err = ext(instance)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFactoryFailed, "extending [%s]", key).
				WithDetail("name", key)
		}
	}
	return instance, nil
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple bindings under a named group.
//
//	c.Tag([]string{"cpuReport", "memoryReport"}, "reports")
func (c *Container) Tag(names []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], names...)
}

// Tagged resolves all bindings registered under a tag, in tagging order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	names := slices.Clone(c.tags[tag])
	c.mu.RUnlock()

	result := make([]any, 0, len(names))
	for _, name := range names {
		instance, err := c.Make(name)
		if err != nil {
			return nil, err
		}
		result = append(result, instance)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves name into an instance.
//
// The whole dependency tree is planned before anything is built, so an
// unknown name or a cycle anywhere in the tree fails without running a
// single constructor.
//
//	svc, err := c.Make("userService")
func (c *Container) Make(name string) (any, error) {
	s, err := c.plan(name, "", nil, false)
	if err == nil {
		var instance any
		instance, err = c.build(s)
		if err == nil {
			return instance, nil
		}
	}

	c.logger.Debug().Err(err).Str("binding", name).Msg("Resolution failed")
	c.fireError(name, err)
	return nil, err
}

// step is one node of a resolution plan.
type step struct {
	name string
	b    *binding
	deps []*step
}

// plan walks the dependency tree of name. path holds the names currently
// being planned, outermost first. With lazy set, deferred names are accepted
// without being loaded.
func (c *Container) plan(name, consumer string, path []string, lazy bool) (*step, error) {
	c.mu.RLock()
	key := c.canonical(name)
	c.mu.RUnlock()

	if i := slices.Index(path, key); i >= 0 {
		cycle := append(slices.Clone(path[i:]), key)
		return nil, &CyclicDependencyError{Path: cycle}
	}

	b, loader := c.lookup(key, consumer)
	if b == nil && loader != nil {
		if lazy {
			return &step{name: key}, nil
		}
		if err := loader.run(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrBootFailed, "loading deferred binding [%s]", key).
				WithDetail("name", key)
		}
		b, _ = c.lookup(key, consumer)
	}
	if b == nil {
		return nil, &UnknownDependencyError{Name: key, Path: slices.Clone(path)}
	}

	s := &step{name: key, b: b}
	if b.factory == nil || (b.slot != nil && b.slot.isBuilt()) {
		return s, nil
	}

	path = append(path, key)
	for _, dep := range b.factory.Deps {
		child, err := c.plan(dep, key, path, lazy)
		if err != nil {
			return nil, err
		}
		s.deps = append(s.deps, child)
	}
	return s, nil
}

// lookup returns the binding key resolves to when requested by consumer, or
// the deferred loader able to provide it.
func (c *Container) lookup(key, consumer string) (*binding, *deferredLoader) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if consumer != "" {
		if b, ok := c.contextual[consumer][key]; ok {
			return b, nil
		}
	}
	if b, ok := c.bindings[key]; ok {
		return b, nil
	}
	return nil, c.deferred[key]
}

// build executes a plan, post-order.
func (c *Container) build(s *step) (any, error) {
	b := s.b
	if b.factory == nil {
		c.fireAfterResolving(s.name, b.value)
		return b.value, nil
	}
	if b.slot != nil && b.slot.isBuilt() {
		c.fireAfterResolving(s.name, b.slot.instance)
		return b.slot.instance, nil
	}

	// A constructor resolving its own binding, directly or through other
	// names, fails here instead of recursing or waiting on itself.
	gid := goroutineID()
	if err := c.active.enter(gid, s.name); err != nil {
		return nil, err
	}
	instance, err := func() (any, error) {
		defer c.active.leave(gid)
		if b.slot != nil {
			return c.buildShared(s)
		}
		return c.construct(s)
	}()
	if err != nil {
		return nil, err
	}

	c.fireAfterResolving(s.name, instance)
	return instance, nil
}

// buildShared constructs a shared instance at most once. Concurrent callers
// wait for the goroutine building it; after a failed build the next one
// retries.
func (c *Container) buildShared(s *step) (any, error) {
	slot := s.b.slot
	for {
		slot.mu.Lock()
		if slot.built.Load() {
			instance := slot.instance
			slot.mu.Unlock()
			return instance, nil
		}
		if wait := slot.building; wait != nil {
			slot.mu.Unlock()
			<-wait
			continue
		}
		done := make(chan struct{})
		slot.building = done
		slot.mu.Unlock()

		return c.fillSlot(s, done)
	}
}

// fillSlot runs a shared constructor and publishes its result. Waiters are
// released even if the constructor panics.
func (c *Container) fillSlot(s *step, done chan struct{}) (instance any, err error) {
	slot := s.b.slot
	ok := false
	defer func() {
		slot.mu.Lock()
		if ok {
			slot.instance = instance
			slot.built.Store(true)
		}
		slot.building = nil
		slot.mu.Unlock()
		close(done)
	}()

	instance, err = c.construct(s)
	ok = err == nil
	return instance, err
}

// construct builds the dependencies of s, calls its constructor and applies
// the extenders.
func (c *Container) construct(s *step) (any, error) {
	args := make([]any, 0, len(s.deps))
	for _, dep := range s.deps {
		arg, err := c.build(dep)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	instance, err := s.b.factory.New(args)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFactoryFailed, "building [%s]", s.name).
			WithDetail("name", s.name)
	}
	if instance, err = c.applyExtenders(s.name, instance); err != nil {
		return nil, err
	}

	c.logger.Trace().
		Str("binding", s.name).
		Int("deps", len(args)).
		Bool("shared", s.b.slot != nil).
		Msg("Constructed instance")
	return instance, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether name has a binding or a deferred loader.
func (c *Container) Bound(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(name)
	_, hasBinding := c.bindings[key]
	_, hasLoader := c.deferred[key]
	return hasBinding || hasLoader
}

// Resolved reports whether the shared instance for name has been built.
// It is always false for transient and value bindings.
func (c *Container) Resolved(name string) bool {
	c.mu.RLock()
	b, ok := c.bindings[c.canonical(name)]
	c.mu.RUnlock()
	return ok && b.slot != nil && b.slot.isBuilt()
}

// Bindings returns all registered names, sorted.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings))
	for k := range c.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// canonical resolves an alias to its canonical key (must hold mu).
func (c *Container) canonical(name string) string {
	if target, ok := c.aliases[name]; ok {
		return target
	}
	return name
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback fired with a freshly resolved instance
// whenever name is registered again.
func (c *Container) Rebinding(name string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(name)
	c.reboundCallbacks[key] = append(c.reboundCallbacks[key], cb)
}

// AfterResolving registers a callback fired every time a name is resolved,
// nested dependencies included, in construction order. Resolutions made by
// a callback do not fire callbacks again.
func (c *Container) AfterResolving(cb func(name string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// OnResolveError registers a callback fired when Make fails, with the name
// that was requested.
func (c *Container) OnResolveError(cb func(name string, err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = append(c.onError, cb)
}

func (c *Container) fireRebound(key string, cbs []func(any)) {
	instance, err := c.Make(key)
	if err != nil {
		c.logger.Warn().Err(err).Str("binding", key).Msg("Skipping rebound callbacks")
		return
	}
	for _, cb := range cbs {
		cb(instance)
	}
}

// fireAfterResolving and fireError skip resolutions made from inside a
// callback on the same goroutine.
func (c *Container) fireAfterResolving(name string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	if len(cbs) == 0 {
		return
	}

	gid := goroutineID()
	if !c.active.startFiring(gid) {
		return
	}
	defer c.active.stopFiring(gid)
	for _, cb := range cbs {
		cb(name, instance)
	}
}

func (c *Container) fireError(name string, err error) {
	c.mu.RLock()
	cbs := c.onError
	c.mu.RUnlock()
	if len(cbs) == 0 {
		return
	}

	gid := goroutineID()
	if !c.active.startFiring(gid) {
		return
	}
	defer c.active.stopFiring(gid)
	for _, cb := range cbs {
		cb(name, err)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	svc, err := container.Resolve[*users.Service](c, "userService")
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	instance, err := c.Make(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, errors.Newf(errors.ErrTypeMismatch, "container: [%s] resolved to %T, want %s",
			name, instance, reflect.TypeOf((*T)(nil)).Elem()).WithDetail("name", name)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Use it where a missing
// binding is a programming error, such as provider Boot methods.
func MustResolve[T any](c *Container, name string) T {
	typed, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return typed
}
