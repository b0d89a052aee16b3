package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	config "github.com/phillip/lifedrop-go/config"
	models "github.com/phillip/lifedrop-go/models"
	utils "github.com/phillip/lifedrop-go/utils"
)

func ApplyVolunteer(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input struct {
			Phone      string `json:"phone"`
			Motivation string `json:"motivation" binding:"max=2000"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		col := cfg.Collection(config.VolunteersCollection)
		pending, err := col.CountDocuments(ctx, bson.M{"email": user.Email, "status": models.ApplicationPending})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check existing applications"})
			return
		}
		if pending > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "you already have a pending application"})
			return
		}

		now := time.Now()
		app := models.VolunteerApplication{
			ID:         primitive.NewObjectID(),
			Email:      user.Email,
			Name:       user.Name,
			Avatar:     user.Avatar,
			BloodGroup: user.BloodGroup,
			Location:   user.Location,
			Phone:      input.Phone,
			Motivation: input.Motivation,
			Status:     models.ApplicationPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if _, err := col.InsertOne(ctx, app); err != nil {
			// A concurrent submission lost the race on the pending-email index.
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "you already have a pending application"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit application"})
			return
		}

		c.JSON(http.StatusCreated, app)
	}
}

var errAlreadyReviewed = errors.New("application already reviewed")

func isValidApplicationStatus(s string) bool {
	return s == models.ApplicationPending || s == models.ApplicationAccepted || s == models.ApplicationRejected
}

func ListVolunteerApplications(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if !applyStatusFilter(c, filter, isValidApplicationStatus) {
			return
		}

		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.VolunteerApplication](ctx, cfg.Collection(config.VolunteersCollection),
			filter, utils.ParsePagination(c), bson.D{{Key: "created_at", Value: -1}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch applications"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// ReviewVolunteerApplication accepts or rejects a pending application.
// Accepting promotes a donor to volunteer; admins are never demoted.
func ReviewVolunteerApplication(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, ok := parseObjectID(c, "application")
		if !ok {
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=accepted rejected"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		col := cfg.Collection(config.VolunteersCollection)
		var app models.VolunteerApplication
		err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&app)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load application"})
			return
		}

		if app.Status != models.ApplicationPending {
			c.JSON(http.StatusConflict, gin.H{"error": "application already reviewed"})
			return
		}

		// The role changes before the application so a failed promotion
		// leaves the application pending and the review can be retried.
		promoted := false
		users := cfg.Collection(config.UsersCollection)
		if input.Status == models.ApplicationAccepted {
			res, err := users.UpdateOne(ctx,
				bson.M{"email": app.Email, "role": models.RoleDonor},
				bson.M{"$set": bson.M{"role": models.RoleVolunteer, "updated_at": time.Now()}})
			if err != nil {
				cfg.Logger.WithError(err).WithField("email", app.Email).Error("promote volunteer")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not promote user"})
				return
			}
			promoted = res.ModifiedCount > 0
		}

		res, err := col.UpdateOne(ctx,
			bson.M{"_id": oid, "status": models.ApplicationPending},
			bson.M{"$set": bson.M{"status": input.Status, "updated_at": time.Now()}})
		if err == nil && res.MatchedCount == 0 {
			err = errAlreadyReviewed
		}
		if err != nil {
			if promoted {
				if _, rerr := users.UpdateOne(ctx,
					bson.M{"email": app.Email, "role": models.RoleVolunteer},
					bson.M{"$set": bson.M{"role": models.RoleDonor, "updated_at": time.Now()}}); rerr != nil {
					cfg.Logger.WithError(rerr).WithField("email", app.Email).Error("revert volunteer promotion")
				}
			}
			if errors.Is(err, errAlreadyReviewed) {
				c.JSON(http.StatusConflict, gin.H{"error": "application already reviewed"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update application"})
			return
		}

		title := fmt.Sprintf("Your volunteer application was %s", input.Status)
		notify(ctx, cfg, models.Notification{
			Email:     app.Email,
			Type:      models.NotificationVolunteerResult,
			Title:     title,
			Message:   "Thank you for offering your time to LifeDrop.",
			RelatedID: app.ID.Hex(),
		})
		sendEmail(ctx, cfg, app.Email, title,
			fmt.Sprintf("<p>Hi %s,</p><p>%s.</p><p>LifeDrop team</p>", app.Name, title))

		c.JSON(http.StatusOK, gin.H{"message": "application " + input.Status, "id": oid.Hex(), "status": input.Status})
	}
}
