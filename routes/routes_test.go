package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/phillip/lifedrop-go/config"
)

func TestProtectedRoutesRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{Env: config.Env{JWTSecret: "routes-secret"}, Logger: logger}

	r := gin.New()
	require.NotPanics(t, func() { SetupRoutes(r, cfg) })

	protected := []struct{ method, path string }{
		{http.MethodGet, "/users/me"},
		{http.MethodGet, "/users/role"},
		{http.MethodGet, "/all-users"},
		{http.MethodPatch, "/users/asha@example.com/role"},
		{http.MethodPost, "/create-request"},
		{http.MethodGet, "/my-donation-requests/recent"},
		{http.MethodPatch, "/donation-requests/64f0c0ffee0000000000abcd/donate"},
		{http.MethodPost, "/blogs"},
		{http.MethodGet, "/manage-blogs"},
		{http.MethodPost, "/funding"},
		{http.MethodGet, "/admin-stats"},
		{http.MethodGet, "/notifications"},
		{http.MethodPost, "/upload"},
	}
	for _, rt := range protected {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}
