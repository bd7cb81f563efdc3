package users

import (
	"net/http"

	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/routing"
)

// Controller exposes the user use cases over HTTP.
type Controller struct {
	app.Controller
	service *Service
	logger  Logger
}

func NewController(service *Service, logger Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

// Routes mounts the controller as the /users resource.
func (c *Controller) Routes(r *routing.Router) {
	r.Resource("/users", c)
}

// Store handles POST /users.
func (c *Controller) Store(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)

	var in Registration
	if err := c.Request(r).Bind(&in); err != nil {
		res.Fail(err)
		return
	}
	user, err := c.service.RegisterUser(in)
	if err != nil {
		res.Fail(err)
		return
	}
	c.logger.Log("Registered user " + user.ID)
	res.Created(user)
}

// Index handles GET /users.
func (c *Controller) Index(w http.ResponseWriter, r *http.Request) {
	c.Response(w).Success(c.service.ListUsers())
}

// Show handles GET /users/{id}.
func (c *Controller) Show(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)
	user, err := c.service.FindUser(c.Request(r).RouteParam("id"))
	if err != nil {
		res.Fail(err)
		return
	}
	res.Success(user)
}

// Update handles PUT and PATCH /users/{id}.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)
	req := c.Request(r)

	var in Registration
	if err := req.Bind(&in); err != nil {
		res.Fail(err)
		return
	}
	user, err := c.service.UpdateUser(req.RouteParam("id"), in)
	if err != nil {
		res.Fail(err)
		return
	}
	res.Success(user)
}

// Destroy handles DELETE /users/{id}.
func (c *Controller) Destroy(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)
	id := c.Request(r).RouteParam("id")
	if err := c.service.RemoveUser(id); err != nil {
		res.Fail(err)
		return
	}
	c.logger.Log("Removed user " + id)
	res.NoContent()
}
