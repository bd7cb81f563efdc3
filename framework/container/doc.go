// Package container provides a name-keyed IoC (Inversion of Control)
// container and a Service Provider system.
//
// # Overview
//
// Every binding maps a name to either a Value, returned as-is, or a Factory,
// which declares the names of the bindings it needs and a Constructor that
// receives them in that order. A dependency's name is its registry key: a
// factory declaring "logger" gets whatever "logger" resolves to.
//
// Go has no runtime access to parameter names, so factories always list
// their dependencies explicitly.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot(), after which everything can be resolved
//  4. Serve requests
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("logger", nil, container.Ctor0(NewLogger))
//	c.Bind("userRepository", []string{"logger"}, container.Ctor1(NewUserRepository))
//
//	// Singleton: created once, reused
//	c.Singleton("cache", []string{"config"}, container.CtorE1(cache.FromConfig))
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("config", "configuration")
//
// Registering a name again replaces its binding.
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Make("userRepository")
//
//	// Generic
//	repo, err := container.Resolve[*UserRepository](c, "userRepository")
//
// Make plans the whole dependency tree before running any constructor. A name
// without a binding fails with *UnknownDependencyError; a name reached again
// while it is still being resolved fails with *CyclicDependencyError:
//
//	_, err := c.Make("x") // x needs y, y needs x
//	var cycle *container.CyclicDependencyError
//	errors.As(err, &cycle) // cycle.Path == []string{"x", "y", "x"}
//
// Transient dependencies are never shared: a name needed twice in one tree is
// built twice.
//
// Constructors, extenders and callbacks may call Make. A constructor that
// resolves its own name again, directly or through other bindings, gets a
// *CyclicDependencyError instead of recursing.
//
// # Contextual Binding
//
//	c.When("photoController").
//	    Needs("filesystem").
//	    Give(container.Factory{New: container.Ctor0(NewS3Filesystem)})
//
// Cycles are detected by name. An override that depends on the name it
// replaces is therefore a cycle: giving "repo" a factory that needs "repo"
// fails with the path [repo repo], not with the plain "repo" binding.
//
// # Tags
//
//	c.Tag([]string{"cpuReport", "memReport"}, "reports")
//	reports, err := c.Tagged("reports")
//
// # Extend / Decorate
//
//	c.Extend("logger", func(instance any) (any, error) {
//	    return &TimestampLogger{Inner: instance.(*Logger)}, nil
//	})
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", []string{"config"}, container.Ctor1(mail.NewSMTP))
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	err := registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", nil, container.CtorE0(heavySetup)) // only on first Make("heavy")
//	}
package container
