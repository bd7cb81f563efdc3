package app_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/app"
	"github.com/km-arc/go-inject/app/users"
	framework "github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
)

func newApplication(t *testing.T) *framework.Application {
	t.Helper()
	application, err := framework.New(framework.Options{
		Config: &config.Config{
			App:  config.AppConfig{Name: "users-test", Env: "testing", Port: "8000"},
			HTTP: config.HTTPConfig{ShutdownTimeout: time.Second},
		},
		Providers: app.Providers(),
	})
	require.NoError(t, err)
	require.NoError(t, application.Boot())
	return application
}

func TestUsersServiceProvider_ResolutionOrder(t *testing.T) {
	application := newApplication(t)

	var order []string
	application.AfterResolving(func(name string, _ any) {
		order = append(order, name)
	})

	// Fresh transient chain on top of cached singletons.
	_, err := application.Make("userController")
	require.NoError(t, err)
	assert.Equal(t, []string{"userRepository", "userService", "logger", "userController"}, order)
}

func TestUsersServiceProvider_SharesRepository(t *testing.T) {
	application := newApplication(t)

	a := container.MustResolve[*users.Service](application.Container, "userService")
	b := container.MustResolve[*users.Service](application.Container, "userService")
	assert.NotSame(t, a, b, "userService is transient")

	_, err := a.RegisterUser(users.Registration{Name: "Andy", Email: "andy@example.com"})
	require.NoError(t, err)
	assert.Len(t, b.ListUsers(), 1, "both services see the shared repository")
}

func TestUsersServiceProvider_MountsRoutes(t *testing.T) {
	application := newApplication(t)
	router, err := application.Router()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Andy","email":"andy@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), `users_test_container_resolutions_total{name="userController"}`)
}
