package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/km-arc/go-inject/framework/errors"
	"github.com/km-arc/go-inject/framework/http/validation"
)

// Response wraps http.ResponseWriter with JSON helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Created sends 201 JSON: {"data": v}
func (res *Response) Created(v any) {
	res.JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// Error sends a JSON error response.
//
//	res.Error(http.StatusNotFound, "Resource not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ValidationError sends 422 with the error bag.
func (res *Response) ValidationError(bag *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, bag)
}

// Fail maps err onto a status by its error code: a validation bag is 422,
// INVALID_INPUT 400, NOT_FOUND 404, ALREADY_EXISTS 409, anything else 500.
func (res *Response) Fail(err error) {
	var bag *validation.Errors
	if stderrors.As(err, &bag) {
		res.ValidationError(bag)
		return
	}

	switch errors.GetErrorCode(err) {
	case errors.ErrInvalidInput:
		res.Error(http.StatusBadRequest, err.Error())
	case errors.ErrNotFound:
		res.NotFound(err.Error())
	case errors.ErrAlreadyExists:
		res.Error(http.StatusConflict, err.Error())
	default:
		res.ServerError()
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
