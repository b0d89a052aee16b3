package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	config "github.com/phillip/lifedrop-go/config"
	models "github.com/phillip/lifedrop-go/models"
)

// AdminStats feeds the admin and volunteer dashboard cards.
func AdminStats(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		var stats models.AdminStats
		var err error

		if stats.TotalDonors, err = cfg.Collection(config.UsersCollection).
			CountDocuments(ctx, bson.M{"role": models.RoleDonor}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count donors"})
			return
		}

		requests := cfg.Collection(config.RequestsCollection)
		if stats.TotalRequests, err = requests.CountDocuments(ctx, bson.M{}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count requests"})
			return
		}
		if stats.PendingRequests, err = requests.CountDocuments(ctx, bson.M{"status": models.RequestPending}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count requests"})
			return
		}

		if stats.TotalFunding, err = totalFunding(ctx, cfg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute funding total"})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
