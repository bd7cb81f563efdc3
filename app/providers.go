// Package app wires the application's own services into the container.
package app

import (
	"github.com/rs/zerolog"

	"github.com/km-arc/go-inject/app/users"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/routing"
)

// UsersServiceProvider registers the users components by name:
//
//	logger → userRepository → userService → userController
//
// and mounts the controller's routes on "router" at boot.
type UsersServiceProvider struct {
	container.BaseProvider
}

func (p *UsersServiceProvider) Register(c *container.Container) {
	c.Singleton("logger", []string{"log"}, container.Ctor1(func(base zerolog.Logger) users.Logger {
		return users.NewLogger(base)
	}))
	c.Singleton("userRepository", []string{"logger"}, container.Ctor1(users.NewRepository))
	c.Bind("userService", []string{"userRepository"}, container.Ctor1(users.NewService))
	c.Bind("userController", []string{"userService", "logger"}, container.Ctor2(users.NewController))
}

func (p *UsersServiceProvider) Boot(c *container.Container) error {
	controller, err := container.Resolve[*users.Controller](c, "userController")
	if err != nil {
		return err
	}
	router, err := container.Resolve[*routing.Router](c, "router")
	if err != nil {
		return err
	}
	controller.Routes(router)
	return nil
}

// Providers lists the application providers registered by the CLI.
func Providers() []container.ServiceProvider {
	return []container.ServiceProvider{
		&UsersServiceProvider{},
	}
}
