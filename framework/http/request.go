package http

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/km-arc/go-inject/framework/errors"
	"github.com/km-arc/go-inject/framework/http/validation"
)

const maxBody = 1 << 20 // 1 MB

// Request wraps *http.Request with binding and input helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes the request body into v. JSON bodies map via `json` tags;
// url-encoded forms are mapped onto the same tags.
// Malformed input yields an INVALID_INPUT error.
func (req *Request) Bind(v any) error {
	if strings.Contains(req.ContentType(), "application/json") {
		return req.bindJSON(v)
	}
	if err := req.raw.ParseForm(); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "parsing form body")
	}
	return bindForm(req.raw.PostForm, v)
}

// BindValid binds the body into v and runs its `validate` rules.
// Rule failures come back as *validation.Errors.
func (req *Request) BindValid(v any) error {
	if err := req.Bind(v); err != nil {
		return err
	}
	return validation.Struct(v)
}

func (req *Request) bindJSON(v any) error {
	defer req.raw.Body.Close()
	dec := json.NewDecoder(io.LimitReader(req.raw.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.New(errors.ErrInvalidInput, "empty request body")
		}
		return errors.Wrap(err, errors.ErrInvalidInput, "decoding JSON body")
	}
	return nil
}

// bindForm maps single-valued form fields by key onto v's json tags.
func bindForm(values map[string][]string, v any) error {
	m := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "encoding form body")
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "mapping form body")
	}
	return nil
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}
