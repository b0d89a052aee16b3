package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	config "github.com/phillip/lifedrop-go/config"
	models "github.com/phillip/lifedrop-go/models"
	utils "github.com/phillip/lifedrop-go/utils"
)

// ExchangeToken trades an identity provider ID token for a service JWT.
// Unregistered callers get a donor token so they can complete registration.
func ExchangeToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			IDToken string `json:"id_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if cfg.Identity == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity provider not configured"})
			return
		}

		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		identity, err := cfg.Identity.VerifyIDToken(ctx, input.IDToken)
		if err != nil {
			cfg.Logger.WithError(err).Info("id token rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id token"})
			return
		}

		role := models.RoleDonor
		registered := true
		var user models.User
		err = cfg.Collection(config.UsersCollection).FindOne(ctx, bson.M{"email": identity.Email}).Decode(&user)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			registered = false
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
			return
		default:
			role = user.Role
		}

		token, err := utils.GenerateToken([]byte(cfg.JWTSecret), identity.Email, role, cfg.JWTTTL)
		if err != nil {
			cfg.Logger.WithError(err).Error("token signing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"email":      identity.Email,
			"role":       role,
			"registered": registered,
		})
	}
}
