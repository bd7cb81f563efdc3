package app

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/errors"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
)

// Version is the application version reported by the CLI.
const Version = "0.1.0"

// Application embeds the Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton() and app.Make() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// Options configures New.
type Options struct {
	// Config is used as-is when set; otherwise it is loaded from EnvFiles.
	Config   *config.Config
	EnvFiles []string

	// Providers are registered after the framework providers, in order.
	Providers []container.ServiceProvider
}

// New creates the application with the config, logging, routing and metrics
// providers registered, followed by opts.Providers.
func New(opts Options) (*Application, error) {
	c := container.New(container.WithLogger(logging.GetLogger("container")))
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	framework := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: opts.Config, EnvFiles: opts.EnvFiles},
		&providers.LoggingServiceProvider{},
		&providers.RoutingServiceProvider{},
		&providers.MetricsServiceProvider{},
	}
	for _, p := range append(framework, opts.Providers...) {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers, then checks that every
// binding's dependency graph is complete and acyclic.
func (a *Application) Boot() error {
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	return a.Validate()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() (*config.Config, error) {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Run boots the application if needed and serves HTTP on APP_PORT until ctx
// is cancelled, then shuts down within HTTP_SHUTDOWN_TIMEOUT.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}

	cfg, err := a.Config()
	if err != nil {
		return err
	}
	router, err := a.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger := a.Logger()
	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("app", cfg.App.Name).
			Str("addr", cfg.Addr()).
			Str("url", cfg.App.URL).
			Str("env", cfg.App.Env).
			Msg("Starting server")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, errors.ErrInternal, "serving HTTP")
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "shutting down HTTP server")
	}
	logger.Info().Msg("Server stopped")
	return nil
}

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}

func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
