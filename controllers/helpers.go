package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	config "github.com/phillip/lifedrop-go/config"
	middleware "github.com/phillip/lifedrop-go/middleware"
	models "github.com/phillip/lifedrop-go/models"
	utils "github.com/phillip/lifedrop-go/utils"
)

var errImagesDisabled = errors.New("image uploads are not configured")

func requestContext(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

// findPage counts the filter and returns the requested slice of it.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.M, p utils.Pagination, sort bson.D) (models.Page[T], error) {
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return models.Page[T]{}, fmt.Errorf("count: %w", err)
	}

	cursor, err := col.Find(ctx, filter, p.FindOptions(sort))
	if err != nil {
		return models.Page[T]{}, fmt.Errorf("find: %w", err)
	}

	var items []T
	if err := cursor.All(ctx, &items); err != nil {
		return models.Page[T]{}, fmt.Errorf("decode: %w", err)
	}

	return models.NewPage(items, total, p.Page, p.Limit), nil
}

// applyStatusFilter copies ?status= into filter after validating it.
func applyStatusFilter(c *gin.Context, filter bson.M, valid func(string) bool) bool {
	status := c.Query("status")
	if status == "" {
		return true
	}
	if !valid(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return false
	}
	filter["status"] = status
	return true
}

// notModified sets the ETag and reports whether the client copy is current.
func notModified(c *gin.Context, id primitive.ObjectID, updatedAt time.Time) bool {
	etag := utils.GenerateETag(id, updatedAt)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	c.Header("ETag", etag)
	c.Header("Last-Modified", updatedAt.UTC().Format(http.TimeFormat))
	return false
}

// uploadFormImage uploads the multipart file under field, if any.
func uploadFormImage(c *gin.Context, cfg *config.Config, field, folder string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if cfg.Images == nil {
		return "", errImagesDisabled
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	return cfg.Images.Upload(c.Request.Context(), file, folder)
}

// discardUpload removes an image uploaded for a write that then failed.
func discardUpload(ctx context.Context, cfg *config.Config, url string) {
	if url == "" || cfg.Images == nil {
		return
	}
	if err := cfg.Images.Delete(ctx, url); err != nil {
		cfg.Logger.WithError(err).WithField("url", url).Warn("could not discard upload")
	}
}

func isHostedImage(url string) bool {
	return strings.Contains(url, "res.cloudinary.com")
}

// notify stores an in-app notification. Failures are logged, never surfaced.
func notify(ctx context.Context, cfg *config.Config, n models.Notification) {
	if n.Email == "" {
		return
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	if _, err := cfg.Collection(config.NotificationsCollection).InsertOne(ctx, n); err != nil {
		cfg.Logger.WithError(err).WithField("email", n.Email).Warn("could not store notification")
	}
}

// sendEmail delivers mail without failing the triggering action.
func sendEmail(ctx context.Context, cfg *config.Config, to, subject, body string) {
	if cfg.Mailer == nil || to == "" {
		return
	}
	if err := cfg.Mailer.Send(ctx, to, subject, body); err != nil {
		cfg.Logger.WithError(err).WithField("to", to).Warn("email delivery failed")
	}
}

func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return user, ok
}

func parseObjectID(c *gin.Context, what string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return primitive.NilObjectID, false
	}
	return oid, true
}
