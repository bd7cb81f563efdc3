package providers

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/metrics"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration as "config".
// When Config is nil it is loaded from EnvFiles on first use.
//
// Bound names:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	if p.Config != nil {
		app.Instance("config", p.Config)
	} else {
		envFiles := p.EnvFiles
		app.Singleton("config", nil, container.Ctor0(func() *config.Config {
			return config.Load(envFiles...)
		}))
	}
	app.Alias("config", "configuration")
}

// Boot rejects unusable settings before anything is served.
func (p *ConfigServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger.
//
// Bound names:
//   - "log" → zerolog.Logger tagged with the application name
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Singleton("log", []string{"config"}, container.Ctor1(func(cfg *config.Config) zerolog.Logger {
		return logging.GetLogger(cfg.App.Name)
	}))
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound names:
//   - "router" → *routing.Router, built from "config" and "log"
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", []string{"config", "log"}, container.Ctor2(routing.FromConfig))
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider counts container resolutions and serves them on
// /metrics.
//
// Bound names:
//   - "metrics" → *metrics.Collector
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	app.Singleton("metrics", []string{"config"}, container.Ctor1(func(cfg *config.Config) *metrics.Collector {
		return metrics.NewCollector(Namespace(cfg.App.Name))
	}))
}

func (p *MetricsServiceProvider) Boot(app *container.Container) error {
	collector, err := container.Resolve[*metrics.Collector](app, "metrics")
	if err != nil {
		return err
	}
	collector.Attach(app)

	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		return err
	}
	router.Handle("/metrics", collector.Handler())
	return nil
}

// Namespace turns an application name into a Prometheus metric namespace.
//
//	Namespace("go-inject") // "go_inject"
func Namespace(appName string) string {
	var b strings.Builder
	for i, r := range appName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
