package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(
	t *testing.T, origins []string, r *http.Request,
) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	w := httptest.NewRecorder()
	Middleware(
		origins, []string{"GET", "POST"}, []string{"X-Trace-ID"},
	)(next).ServeHTTP(w, r)
	return w, called
}

func TestMiddleware_AllowedOrigin(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://app.example.com")

	w, called := serve(t, []string{"https://app.example.com"}, r)

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get(headerAllowOrigin))
	assert.Equal(t, "true", w.Header().Get(headerAllowCredentials))
	assert.Equal(t, "Origin", w.Header().Get(headerVary))
	assert.Equal(t, "GET,POST", w.Header().Get(headerAllowMethods))
	assert.Equal(t, "Content-Type,X-Trace-ID", w.Header().Get(headerAllowHeaders))
}

func TestMiddleware_DisallowedOrigin(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://evil.example.com")

	w, called := serve(t, []string{"https://app.example.com"}, r)

	assert.True(t, called)
	assert.Empty(t, w.Header().Get(headerAllowOrigin))
	assert.Empty(t, w.Header().Get(headerAllowCredentials))
}

func TestMiddleware_Wildcard(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://any.example.com")

	w, _ := serve(t, []string{"*"}, r)

	assert.Equal(t, "*", w.Header().Get(headerAllowOrigin))
	assert.Empty(t, w.Header().Get(headerAllowCredentials))
}

func TestMiddleware_Preflight(t *testing.T) {
	r := httptest.NewRequest(http.MethodOptions, "/v1/encode", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")

	w, called := serve(t, []string{"https://app.example.com"}, r)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get(headerAllowOrigin))
}
