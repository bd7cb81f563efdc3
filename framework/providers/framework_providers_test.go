package providers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/errors"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
)

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "demo-app", Env: "testing", Port: "8080"},
		HTTP: config.HTTPConfig{ShutdownTimeout: 1},
	}
}

func registerAll(t *testing.T, cfg *config.Config) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	c := container.New()
	registry := container.NewProviderRegistry(c)
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{},
		&providers.RoutingServiceProvider{},
		&providers.MetricsServiceProvider{},
	} {
		require.NoError(t, registry.Register(p))
	}
	return c, registry
}

func TestConfigProvider_BindsInstanceAndAlias(t *testing.T) {
	cfg := testConfig()
	c, _ := registerAll(t, cfg)

	got, err := container.Resolve[*config.Config](c, "configuration")
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestConfigProvider_LoadsWhenNoInstance(t *testing.T) {
	t.Setenv("APP_NAME", "from-env")
	c := container.New()
	require.NoError(t, container.NewProviderRegistry(c).Register(&providers.ConfigServiceProvider{EnvFiles: []string{"does-not-exist.env"}}))

	cfg, err := container.Resolve[*config.Config](c, "config")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.App.Name)
	assert.True(t, c.Resolved("config"))
}

func TestConfigProvider_BootRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.App.Env = "staging-ish"
	_, registry := registerAll(t, cfg)

	err := registry.Boot()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBootFailed))
	assert.Equal(t, errors.ErrBootFailed, errors.GetErrorCode(err))
}

func TestLoggingProvider_BindsLogger(t *testing.T) {
	c, _ := registerAll(t, testConfig())

	_, err := container.Resolve[zerolog.Logger](c, "log")
	require.NoError(t, err)
}

func TestRoutingProvider_RouterIsShared(t *testing.T) {
	c, _ := registerAll(t, testConfig())

	a, err := container.Resolve[*routing.Router](c, "router")
	require.NoError(t, err)
	b, err := container.Resolve[*routing.Router](c, "router")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestMetricsProvider_ServesMetricsAfterBoot(t *testing.T) {
	c, registry := registerAll(t, testConfig())
	require.NoError(t, registry.Boot())

	router := container.MustResolve[*routing.Router](c, "router")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "demo_app_container_bindings"), body)
	assert.Contains(t, body, `demo_app_container_resolutions_total{name="router"}`)
}

func TestNamespace(t *testing.T) {
	tests := map[string]string{
		"go-inject": "go_inject",
		"app":       "app",
		"my app 2":  "my_app_2",
		"9lives":    "_lives",
		"Svc_Name":  "Svc_Name",
		"café":      "caf_",
	}
	for in, want := range tests {
		assert.Equal(t, want, providers.Namespace(in), in)
	}
}
