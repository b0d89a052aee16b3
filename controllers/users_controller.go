package controllers

import (
	"errors"
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

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(middleware.EmailKey)
		if email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var input struct {
			Name       string `form:"name" json:"name" binding:"required"`
			BloodGroup string `form:"blood_group" json:"blood_group" binding:"required,bloodgroup"`
			Division   string `form:"division" json:"division"`
			District   string `form:"district" json:"district" binding:"required"`
			Upazila    string `form:"upazila" json:"upazila" binding:"required"`
			Avatar     string `form:"avatar_url" json:"avatar_url"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		avatar := input.Avatar
		uploaded, err := uploadFormImage(c, cfg, "avatar", utils.FolderAvatars)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed", "details": err.Error()})
			return
		}
		if uploaded != "" {
			avatar = uploaded
		}

		now := time.Now()
		user := models.User{
			ID:         primitive.NewObjectID(),
			Email:      email,
			Name:       input.Name,
			Avatar:     avatar,
			BloodGroup: input.BloodGroup,
			Location: models.Location{
				Division: input.Division,
				District: input.District,
				Upazila:  input.Upazila,
			},
			Role:      models.RoleDonor,
			Status:    models.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		if _, err := cfg.Collection(config.UsersCollection).InsertOne(ctx, user); err != nil {
			discardUpload(ctx, cfg, uploaded)
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "user already registered"})
				return
			}
			cfg.Logger.WithError(err).WithField("email", email).Error("register user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

func findUserByEmail(c *gin.Context, cfg *config.Config, email string) (models.User, bool) {
	ctx, cancel := requestContext(c, 5*time.Second)
	defer cancel()

	var user models.User
	err := cfg.Collection(config.UsersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return user, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return user, false
	}
	return user, true
}

// ---------------- ME ----------------
func GetMe(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := findUserByEmail(c, cfg, c.GetString(middleware.EmailKey))
		if !ok {
			return
		}
		if notModified(c, user.ID, user.UpdatedAt) {
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GetRole answers the dashboard guard: the caller's current role and status.
func GetRole(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := findUserByEmail(c, cfg, c.GetString(middleware.EmailKey))
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": user.Role, "status": user.Status})
	}
}

func UpdateMe(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input struct {
			Name       string `form:"name" json:"name"`
			BloodGroup string `form:"blood_group" json:"blood_group" binding:"omitempty,bloodgroup"`
			Division   string `form:"division" json:"division"`
			District   string `form:"district" json:"district"`
			Upazila    string `form:"upazila" json:"upazila"`
			Avatar     string `form:"avatar_url" json:"avatar_url"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Name != "" {
			update["name"] = input.Name
		}
		if input.BloodGroup != "" {
			update["blood_group"] = input.BloodGroup
		}
		if input.Division != "" {
			update["location.division"] = input.Division
		}
		if input.District != "" {
			update["location.district"] = input.District
		}
		if input.Upazila != "" {
			update["location.upazila"] = input.Upazila
		}
		if input.Avatar != "" {
			update["avatar"] = input.Avatar
		}

		uploaded, err := uploadFormImage(c, cfg, "avatar", utils.FolderAvatars)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed", "details": err.Error()})
			return
		}
		if uploaded != "" {
			update["avatar"] = uploaded
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		col := cfg.Collection(config.UsersCollection)
		if _, err := col.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": update}); err != nil {
			discardUpload(ctx, cfg, uploaded)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
			return
		}

		var updated models.User
		if err := col.FindOne(ctx, bson.M{"_id": user.ID}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated profile"})
			return
		}

		if uploaded != "" && user.Avatar != "" && isHostedImage(user.Avatar) {
			if err := cfg.Images.Delete(ctx, user.Avatar); err != nil {
				cfg.Logger.WithError(err).Warn("could not delete old avatar")
			}
		}

		c.JSON(http.StatusOK, updated)
	}
}

// ---------------- ADMIN ----------------
func ListUsers(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if !applyStatusFilter(c, filter, models.IsValidUserStatus) {
			return
		}
		if role := c.Query("role"); role != "" {
			if !models.IsValidRole(role) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role filter"})
				return
			}
			filter["role"] = role
		}

		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.User](ctx, cfg.Collection(config.UsersCollection), filter,
			utils.ParsePagination(c), bson.D{{Key: "created_at", Value: -1}})
		if err != nil {
			cfg.Logger.WithError(err).Error("list users")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch users"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// updateUserField sets one admin-controlled field on the user at :email.
func updateUserField(cfg *config.Config, field string, valid func(string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Param("email")
		if target == c.GetString(middleware.EmailKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot change your own " + field})
			return
		}

		var input map[string]string
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		value := input[field]
		if !valid(value) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field})
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		res, err := cfg.Collection(config.UsersCollection).UpdateOne(ctx,
			bson.M{"email": target},
			bson.M{"$set": bson.M{field: value, "updated_at": time.Now()}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		cfg.Logger.WithField("target", target).WithField(field, value).
			WithField("admin", c.GetString(middleware.EmailKey)).Info("user updated by admin")
		c.JSON(http.StatusOK, gin.H{"message": "user " + field + " updated", "email": target, field: value})
	}
}

func UpdateUserRole(cfg *config.Config) gin.HandlerFunc {
	return updateUserField(cfg, "role", models.IsValidRole)
}

func UpdateUserStatus(cfg *config.Config) gin.HandlerFunc {
	return updateUserField(cfg, "status", models.IsValidUserStatus)
}

func DeleteUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Param("email")
		if target == c.GetString(middleware.EmailKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete yourself"})
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		res, err := cfg.Collection(config.UsersCollection).DeleteOne(ctx, bson.M{"email": target})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user deleted", "email": target})
	}
}

// ---------------- SEARCH ----------------
func SearchDonors(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{"role": models.RoleDonor, "status": models.StatusActive}

		// "+" arrives as a space when the client does not escape it.
		if group := strings.TrimSpace(strings.ReplaceAll(c.Query("blood_group"), " ", "+")); group != "" {
			if !models.IsValidBloodGroup(group) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blood group"})
				return
			}
			filter["blood_group"] = group
		}
		if district := c.Query("district"); district != "" {
			filter["location.district"] = district
		}
		if upazila := c.Query("upazila"); upazila != "" {
			filter["location.upazila"] = upazila
		}

		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.User](ctx, cfg.Collection(config.UsersCollection), filter,
			utils.ParsePagination(c), bson.D{{Key: "name", Value: 1}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search donors"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
