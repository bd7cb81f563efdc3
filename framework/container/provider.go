package container

import (
	"sync"

	"github.com/km-arc/go-inject/framework/errors"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registration of related bindings.
//
// Register() is called first for every provider. Boot() runs after ALL
// providers have registered, making it safe to resolve other bindings there.
//
//	type UsersProvider struct{ container.BaseProvider }
//
//	func (p *UsersProvider) Register(app *container.Container) {
//	    app.Bind("userRepository", []string{"logger"}, container.Ctor1(users.NewRepository))
//	}
//
//	func (p *UsersProvider) Boot(app *container.Container) error {
//	    ctrl, err := container.Resolve[*users.Controller](app, "userController")
//	    if err != nil {
//	        return err
//	    }
//	    ctrl.Routes(container.MustResolve[*routing.Router](app, "router"))
//	    return nil
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here; use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides returns the names this provider registers. Only consulted for
	// deferred providers.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() names is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot(), Provides() and
// IsDeferred(). Embed it and only override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method, unless it is
// deferred. Registering the same provider twice is a no-op. A provider
// registered after Boot() is booted immediately, and its Boot error returned.
// A deferred provider must name at least one binding.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if provider.IsDeferred() && len(provider.Provides()) == 0 {
		return errors.Newf(errors.ErrInvalidInput, "deferred provider %T provides nothing", provider)
	}

	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true
	r.mu.Unlock()

	if provider.IsDeferred() {
		r.app.Defer(provider.Provides(), func() error {
			return r.load(provider)
		})
		r.app.logger.Debug().Strs("provides", provider.Provides()).Msg("Deferred provider")
		return nil
	}
	return r.load(provider)
}

// load registers provider and boots it when the registry already booted.
func (r *ProviderRegistry) load(provider ServiceProvider) error {
	provider.Register(r.app)

	r.mu.Lock()
	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	if booted {
		return boot(r.app, provider)
	}
	return nil
}

// Boot calls Boot() on every loaded provider, in registration order, and
// stops at the first error. Calling Boot again is a no-op.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := boot(r.app, provider); err != nil {
			return err
		}
	}
	return nil
}

func boot(app *Container, provider ServiceProvider) error {
	if err := provider.Boot(app); err != nil {
		return errors.Wrapf(err, errors.ErrBootFailed, "booting %T", provider)
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the providers loaded so far. Deferred providers appear
// once they have been loaded.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
