package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	utils "github.com/phillip/lifedrop-go/utils"
)

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := testConfig()
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString(EmailKey), "role": c.GetString(RoleKey)})
	})
	return r
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := utils.GenerateToken([]byte("middleware-secret"), "asha@example.com", "volunteer", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := perform(authRouter(t), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"asha@example.com","role":"volunteer"}`, w.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	expired, err := utils.GenerateToken([]byte("middleware-secret"), "asha@example.com", "donor", -time.Hour)
	require.NoError(t, err)
	forged, err := utils.GenerateToken([]byte("someone-else"), "asha@example.com", "admin", time.Hour)
	require.NoError(t, err)

	tests := map[string]string{
		"no header":    "",
		"wrong scheme": "Basic abc",
		"empty bearer": "Bearer ",
		"expired":      "Bearer " + expired,
		"forged":       "Bearer " + forged,
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := perform(authRouter(t), req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = bearerToken("abc.def")
	assert.False(t, ok)
}
