package controllers

import (
	"context"
	"errors"
	"net/http"
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

func loadBlog(ctx context.Context, c *gin.Context, cfg *config.Config, filter bson.M) (models.Blog, bool) {
	var blog models.Blog

	oid, ok := parseObjectID(c, "blog")
	if !ok {
		return blog, false
	}
	filter["_id"] = oid

	err := cfg.Collection(config.BlogsCollection).FindOne(ctx, filter).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "blog not found"})
		return blog, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load blog"})
		return blog, false
	}
	return blog, true
}

// ---------------- CREATE ----------------
func CreateBlog(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input struct {
			Title        string `form:"title" json:"title" binding:"required"`
			Content      string `form:"content" json:"content" binding:"required"`
			ThumbnailURL string `form:"thumbnail_url" json:"thumbnail_url"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		thumbnail := input.ThumbnailURL
		uploaded, err := uploadFormImage(c, cfg, "thumbnail", utils.FolderThumbnails)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed", "details": err.Error()})
			return
		}
		if uploaded != "" {
			thumbnail = uploaded
		}

		now := time.Now()
		blog := models.Blog{
			ID:          primitive.NewObjectID(),
			Title:       input.Title,
			Thumbnail:   thumbnail,
			Content:     input.Content,
			AuthorName:  user.Name,
			AuthorEmail: user.Email,
			Status:      models.BlogDraft,
			Likes:       []string{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		if _, err := cfg.Collection(config.BlogsCollection).InsertOne(ctx, blog); err != nil {
			discardUpload(ctx, cfg, uploaded)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create blog"})
			return
		}

		c.JSON(http.StatusCreated, blog)
	}
}

// ---------------- LIST ----------------
func ListPublishedBlogs(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.Blog](ctx, cfg.Collection(config.BlogsCollection),
			bson.M{"status": models.BlogPublished}, utils.ParsePagination(c),
			bson.D{{Key: "created_at", Value: -1}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch blogs"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func ListManagedBlogs(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if !applyStatusFilter(c, filter, models.IsValidBlogStatus) {
			return
		}

		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.Blog](ctx, cfg.Collection(config.BlogsCollection),
			filter, utils.ParsePagination(c), bson.D{{Key: "created_at", Value: -1}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch blogs"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// ---------------- GET ----------------
func GetBlog(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		blog, ok := loadBlog(ctx, c, cfg, bson.M{"status": models.BlogPublished})
		if !ok {
			return
		}
		if notModified(c, blog.ID, blog.UpdatedAt) {
			return
		}
		c.JSON(http.StatusOK, blog)
	}
}

// ---------------- UPDATE ----------------
func UpdateBlogStatus(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, ok := parseObjectID(c, "blog")
		if !ok {
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,blogstatus"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		res, err := cfg.Collection(config.BlogsCollection).UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"status": input.Status, "updated_at": time.Now()}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update blog"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "blog not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "blog status updated", "id": oid.Hex(), "status": input.Status})
	}
}

// ToggleLike adds the caller to the like set, or removes them if present.
func ToggleLike(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(middleware.EmailKey)

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		blog, ok := loadBlog(ctx, c, cfg, bson.M{"status": models.BlogPublished})
		if !ok {
			return
		}

		liked := !blog.LikedBy(email)
		op := "$addToSet"
		count := len(blog.Likes) + 1
		if !liked {
			op = "$pull"
			count = len(blog.Likes) - 1
		}

		if _, err := cfg.Collection(config.BlogsCollection).UpdateOne(ctx,
			bson.M{"_id": blog.ID}, bson.M{op: bson.M{"likes": email}}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update like"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": blog.ID.Hex(), "liked": liked, "likes": count})
	}
}

// ---------------- DELETE ----------------
func DeleteBlog(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		existing, ok := loadBlog(ctx, c, cfg, bson.M{})
		if !ok {
			return
		}

		res, err := cfg.Collection(config.BlogsCollection).DeleteOne(ctx, bson.M{"_id": existing.ID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete blog"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "blog not found"})
			return
		}

		if cfg.Images != nil && isHostedImage(existing.Thumbnail) {
			if err := cfg.Images.Delete(ctx, existing.Thumbnail); err != nil {
				cfg.Logger.WithError(err).WithField("blog", existing.ID.Hex()).Warn("could not delete thumbnail")
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "blog deleted successfully",
			"id":      existing.ID.Hex(),
		})
	}
}
