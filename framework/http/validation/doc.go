// Package validation validates request payloads and collects failures into
// a per-field error bag.
//
// Rules are go-playground/validator struct tags; fields are reported by their
// JSON names.
//
//	type registerUser struct {
//	    Name  string `json:"name" validate:"required,min=2,max=100"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//
//	err := validation.Struct(registerUser{Name: "A"})
//	var bag *validation.Errors
//	if errors.As(err, &bag) {
//	    bag.First("name")  // "The name must be at least 2 characters."
//	    bag.First("email") // "The email field is required."
//	}
//
// The bag marshals as {"errors": {"field": ["message", ...]}} and is what
// Response.ValidationError sends with status 422.
package validation
