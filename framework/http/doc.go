// Package http provides request binding and JSON response helpers for
// handlers resolved from the container.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	var in struct {
//	    Name  string `json:"name" validate:"required"`
//	}
//	if err := req.BindValid(&in); err != nil { ... }
//
//	page := req.Query("page", "1")
//	id   := req.RouteParam("id")
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.Success(user)             // 200 {"data": user}
//	res.Created(user)             // 201 {"data": user}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ValidationError(bag)      // 422 {"errors": {...}}
//	res.Fail(err)                 // status picked from the error code
package http
