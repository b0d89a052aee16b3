package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	config "github.com/phillip/lifedrop-go/config"
	models "github.com/phillip/lifedrop-go/models"
)

var (
	ErrBlocked   = errors.New("account is blocked")
	ErrWrongRole = errors.New("access denied")
)

// Authorize decides whether user may pass a gate restricted to roles.
// An empty roles list admits every active user.
func Authorize(user models.User, roles ...string) error {
	if !user.IsActive() {
		return ErrBlocked
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return ErrWrongRole
}

// RequireRole loads the caller's current record, since the role in the token
// may be stale after an admin change, and admits only active users holding
// one of roles. Must run after AuthMiddleware.
func RequireRole(cfg *config.Config, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(EmailKey)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := cfg.Collection(config.UsersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user not registered"})
			return
		}
		if err != nil {
			cfg.Logger.WithError(err).WithField("email", email).Error("role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not verify role"})
			return
		}

		if err := Authorize(user, roles...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		c.Set(UserKey, user)
		c.Set(RoleKey, user.Role)
		c.Next()
	}
}

// CurrentUser returns the record loaded by RequireRole.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
