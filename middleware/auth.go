package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	config "github.com/phillip/lifedrop-go/config"
	utils "github.com/phillip/lifedrop-go/utils"
)

// Context keys set by the auth chain.
const (
	EmailKey = "email"
	RoleKey  = "role"
	UserKey  = "user"
)

// AuthMiddleware validates the bearer service token and stores the caller's
// email and token role in the gin context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(EmailKey, claims.Email)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
