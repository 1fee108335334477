package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fixedGuard bool

func (g fixedGuard) Authenticated(context.Context) bool { return bool(g) }

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, header http.Header) *httptest.ResponseRecorder {
	return serveURL(r, "/x", header)
}

func serveURL(r *gin.Engine, url string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func router(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRequireAuth(t *testing.T) {
	w := serve(router(RequireAuth(fixedGuard(false))), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/signup"`)

	w = serve(router(RequireAuth(fixedGuard(true))), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRedirectIfAuthenticated(t *testing.T) {
	w := serve(router(RedirectIfAuthenticated(fixedGuard(true))), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/dashboard"`)

	w = serve(router(RedirectIfAuthenticated(fixedGuard(false))), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientKey(t *testing.T) {
	r := router(ClientKey("s3cret", zap.NewNop()))
	assert.Equal(t, http.StatusForbidden, serve(r, nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.Header{ClientKeyHeader: {"nope"}}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.Header{ClientKeyHeader: {"s3cret"}}).Code)
	assert.Equal(t, http.StatusOK, serveURL(r, "/x?client_key=s3cret", nil).Code)

	open := router(ClientKey("", zap.NewNop()))
	assert.Equal(t, http.StatusOK, serve(open, nil).Code)
}

func TestRateLimit(t *testing.T) {
	r := router(RateLimit(0.001, 2))
	assert.Equal(t, http.StatusOK, serve(r, nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, nil).Code)

	// a different client key has its own bucket
	assert.Equal(t, http.StatusOK, serve(r, http.Header{ClientKeyHeader: {"other"}}).Code)
}
