package users_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/app/users"
	"github.com/km-arc/go-inject/framework/routing"
)

func newRouter(t *testing.T) *routing.Router {
	t.Helper()
	logger := &memoryLogger{}
	controller := users.NewController(users.NewService(users.NewRepository(logger)), logger)
	r := routing.New(routing.Options{Logger: zerolog.Nop()})
	controller.Routes(r)
	return r
}

func send(r *routing.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type userEnvelope struct {
	Data users.User `json:"data"`
}

func TestController_StoreShowIndex(t *testing.T) {
	r := newRouter(t)

	rr := send(r, http.MethodPost, "/users", `{"name":"Andy","email":"andy@example.com"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created userEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Andy", created.Data.Name)
	require.NotEmpty(t, created.Data.ID)

	rr = send(r, http.MethodGet, "/users/"+created.Data.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var shown userEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &shown))
	assert.Equal(t, created.Data.ID, shown.Data.ID)

	rr = send(r, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Data []users.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
}

func TestController_UpdateDestroy(t *testing.T) {
	r := newRouter(t)

	rr := send(r, http.MethodPost, "/users", `{"name":"Andy","email":"andy@example.com"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created userEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	path := "/users/" + created.Data.ID

	rr = send(r, http.MethodPut, path, `{"name":"Andrew","email":"andrew@example.com"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated userEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "Andrew", updated.Data.Name)
	assert.Equal(t, created.Data.ID, updated.Data.ID)

	rr = send(r, http.MethodPatch, path, `{"name":"Andy","email":"andrew@example.com"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = send(r, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodDelete, path, "").Code)

	// The freed email can be registered again.
	rr = send(r, http.MethodPost, "/users", `{"name":"Andy","email":"andrew@example.com"}`)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestController_Errors(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/users", `{"name":"Andy","email":"andy@example.com"}`).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed body", http.MethodPost, "/users", `{"name":`, http.StatusBadRequest},
		{"failed rules", http.MethodPost, "/users", `{"name":"A","email":"x"}`, http.StatusUnprocessableEntity},
		{"duplicate email", http.MethodPost, "/users", `{"name":"Andy","email":"andy@example.com"}`, http.StatusConflict},
		{"unknown id", http.MethodGet, "/users/missing", "", http.StatusNotFound},
		{"update unknown id", http.MethodPut, "/users/missing", `{"name":"Bob","email":"bob@example.com"}`, http.StatusNotFound},
		{"update failed rules", http.MethodPatch, "/users/missing", `{"name":"B","email":"x"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := send(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}
