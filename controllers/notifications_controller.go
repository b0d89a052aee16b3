package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/phillip/lifedrop-go/config"
	middleware "github.com/phillip/lifedrop-go/middleware"
	models "github.com/phillip/lifedrop-go/models"
)

const notificationLimit = 50

func ListNotifications(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{"email": c.GetString(middleware.EmailKey)}
		if c.Query("unread") == "true" {
			filter["is_read"] = false
		}

		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(notificationLimit)
		cursor, err := cfg.Collection(config.NotificationsCollection).Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch notifications"})
			return
		}

		notifications := []models.Notification{}
		if err := cursor.All(ctx, &notifications); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode notifications"})
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

func MarkNotificationRead(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, ok := parseObjectID(c, "notification")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := cfg.Collection(config.NotificationsCollection).UpdateOne(ctx,
			bson.M{"_id": oid, "email": c.GetString(middleware.EmailKey)},
			bson.M{"$set": bson.M{"is_read": true, "read_at": now}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notification"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "notification marked as read", "id": oid.Hex()})
	}
}
