package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointLabel(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/users/42", "GET /users/{id}"},
		{http.MethodPost, "/items/7/comment", "POST /items/{id}/comment"},
		{http.MethodGet, "/bookings/owner", "GET /bookings/owner"},
		{http.MethodGet, "/items/search", "GET /items/search"},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		assert.Equal(t, tc.want, endpointLabel(r))
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))

	// Without a caller-supplied id, one is generated.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}
