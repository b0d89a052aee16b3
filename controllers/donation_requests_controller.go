package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
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

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type requestInput struct {
	RecipientName string `json:"recipient_name"`
	Division      string `json:"division"`
	District      string `json:"district"`
	Upazila       string `json:"upazila"`
	HospitalName  string `json:"hospital_name"`
	Address       string `json:"address"`
	BloodGroup    string `json:"blood_group" binding:"omitempty,bloodgroup"`
	DonationDate  string `json:"donation_date"`
	DonationTime  string `json:"donation_time"`
	Message       string `json:"message"`
}

func (in requestInput) validateSchedule() error {
	if in.DonationDate != "" {
		if _, err := time.Parse(dateLayout, in.DonationDate); err != nil {
			return errors.New("invalid donation_date, use YYYY-MM-DD")
		}
	}
	if in.DonationTime != "" {
		if _, err := time.Parse(timeLayout, in.DonationTime); err != nil {
			return errors.New("invalid donation_time, use HH:MM")
		}
	}
	return nil
}

func (in requestInput) missing() []string {
	var fields []string
	for name, v := range map[string]string{
		"recipient_name": in.RecipientName,
		"district":       in.District,
		"upazila":        in.Upazila,
		"hospital_name":  in.HospitalName,
		"address":        in.Address,
		"blood_group":    in.BloodGroup,
		"donation_date":  in.DonationDate,
		"donation_time":  in.DonationTime,
	} {
		if v == "" {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}

func loadRequest(ctx context.Context, c *gin.Context, cfg *config.Config) (models.DonationRequest, bool) {
	var req models.DonationRequest

	oid, ok := parseObjectID(c, "request")
	if !ok {
		return req, false
	}

	err := cfg.Collection(config.RequestsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "donation request not found"})
		return req, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load donation request"})
		return req, false
	}
	return req, true
}

// ---------------- CREATE ----------------
func CreateRequest(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input requestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if missing := input.missing(); len(missing) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "fields": missing})
			return
		}
		if err := input.validateSchedule(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		req := models.DonationRequest{
			ID:             primitive.NewObjectID(),
			RequesterName:  user.Name,
			RequesterEmail: user.Email,
			RecipientName:  input.RecipientName,
			Location: models.Location{
				Division: input.Division,
				District: input.District,
				Upazila:  input.Upazila,
			},
			HospitalName: input.HospitalName,
			Address:      input.Address,
			BloodGroup:   input.BloodGroup,
			DonationDate: input.DonationDate,
			DonationTime: input.DonationTime,
			Message:      input.Message,
			Status:       models.RequestPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		if _, err := cfg.Collection(config.RequestsCollection).InsertOne(ctx, req); err != nil {
			cfg.Logger.WithError(err).Error("create donation request")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create donation request"})
			return
		}

		c.JSON(http.StatusCreated, req)
	}
}

// ---------------- LIST ----------------

// ListPendingRequests is the public board: pending requests, emergencies first.
func ListPendingRequests(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.DonationRequest](ctx, cfg.Collection(config.RequestsCollection),
			bson.M{"status": models.RequestPending}, utils.ParsePagination(c),
			bson.D{{Key: "emergency", Value: -1}, {Key: "donation_date", Value: 1}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch donation requests"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func ListMyRequests(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{"requester_email": c.GetString(middleware.EmailKey)}
		if !applyStatusFilter(c, filter, models.IsValidRequestStatus) {
			return
		}

		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.DonationRequest](ctx, cfg.Collection(config.RequestsCollection),
			filter, utils.ParsePagination(c), bson.D{{Key: "created_at", Value: -1}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch donation requests"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// RecentMyRequests backs the donor dashboard home: the three latest requests.
func RecentMyRequests(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		p := utils.Pagination{Page: 1, Limit: 3}
		cursor, err := cfg.Collection(config.RequestsCollection).Find(ctx,
			bson.M{"requester_email": c.GetString(middleware.EmailKey)},
			p.FindOptions(bson.D{{Key: "created_at", Value: -1}}))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch donation requests"})
			return
		}

		requests := []models.DonationRequest{}
		if err := cursor.All(ctx, &requests); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode donation requests"})
			return
		}
		c.JSON(http.StatusOK, requests)
	}
}

func ListAllRequests(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if !applyStatusFilter(c, filter, models.IsValidRequestStatus) {
			return
		}
		if c.Query("emergency") == "true" {
			filter["emergency"] = true
		}

		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.DonationRequest](ctx, cfg.Collection(config.RequestsCollection),
			filter, utils.ParsePagination(c), bson.D{{Key: "created_at", Value: -1}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch donation requests"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// ---------------- GET ----------------
func GetRequest(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		req, ok := loadRequest(ctx, c, cfg)
		if !ok {
			return
		}
		if notModified(c, req.ID, req.UpdatedAt) {
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// ---------------- UPDATE ----------------
func UpdateRequest(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		existing, ok := loadRequest(ctx, c, cfg)
		if !ok {
			return
		}

		if user.Role != models.RoleAdmin {
			if existing.RequesterEmail != user.Email {
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
				return
			}
			if existing.Status != models.RequestPending {
				c.JSON(http.StatusConflict, gin.H{"error": "only pending requests can be edited"})
				return
			}
		}

		var input requestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := input.validateSchedule(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		for field, v := range map[string]string{
			"recipient_name":    input.RecipientName,
			"location.division": input.Division,
			"location.district": input.District,
			"location.upazila":  input.Upazila,
			"hospital_name":     input.HospitalName,
			"address":           input.Address,
			"blood_group":       input.BloodGroup,
			"donation_date":     input.DonationDate,
			"donation_time":     input.DonationTime,
			"message":           input.Message,
		} {
			if v != "" {
				update[field] = v
			}
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		col := cfg.Collection(config.RequestsCollection)
		if _, err := col.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": update}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update donation request"})
			return
		}

		var updated models.DonationRequest
		if err := col.FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated donation request"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "donation request updated",
			"request": updated,
		})
	}
}

// ClaimRequest lets an active user volunteer as the donor. The status
// condition in the update filter makes concurrent claims race-safe.
func ClaimRequest(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		req, ok := loadRequest(ctx, c, cfg)
		if !ok {
			return
		}

		if err := models.CanClaim(req, user.Email); err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				c.JSON(http.StatusConflict, gin.H{"error": "request is no longer pending"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		res, err := cfg.Collection(config.RequestsCollection).UpdateOne(ctx,
			bson.M{"_id": req.ID, "status": models.RequestPending},
			bson.M{"$set": bson.M{
				"status":      models.RequestInProgress,
				"donor_name":  user.Name,
				"donor_email": user.Email,
				"updated_at":  now,
			}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not claim donation request"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "request is no longer pending"})
			return
		}

		notify(ctx, cfg, models.Notification{
			Email:     req.RequesterEmail,
			Type:      models.NotificationRequestClaimed,
			Title:     "A donor is on the way",
			Message:   fmt.Sprintf("%s will donate %s blood for %s.", user.Name, req.BloodGroup, req.RecipientName),
			RelatedID: req.ID.Hex(),
		})

		c.JSON(http.StatusOK, gin.H{
			"message":     "donation confirmed",
			"id":          req.ID.Hex(),
			"status":      models.RequestInProgress,
			"donor_email": user.Email,
		})
	}
}

func UpdateRequestStatus(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,requeststatus"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		req, ok := loadRequest(ctx, c, cfg)
		if !ok {
			return
		}

		isRequester := req.RequesterEmail == user.Email
		if err := models.CanTransition(req.Status, input.Status, user.Role, isRequester); err != nil {
			if !isRequester && user.Role == models.RoleDonor {
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("cannot move request from %s to %s", req.Status, input.Status)})
			return
		}

		update := bson.M{"$set": bson.M{"status": input.Status, "updated_at": time.Now()}}
		if input.Status == models.RequestPending {
			update["$unset"] = bson.M{"donor_name": "", "donor_email": ""}
		}

		res, err := cfg.Collection(config.RequestsCollection).UpdateOne(ctx,
			bson.M{"_id": req.ID, "status": req.Status}, update)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "request changed concurrently, reload and retry"})
			return
		}

		message := fmt.Sprintf("Request for %s is now %s.", req.RecipientName, input.Status)
		for _, email := range []string{req.RequesterEmail, req.DonorEmail} {
			if email == user.Email {
				continue
			}
			notify(ctx, cfg, models.Notification{
				Email:     email,
				Type:      models.NotificationRequestStatus,
				Title:     "Donation request updated",
				Message:   message,
				RelatedID: req.ID.Hex(),
			})
		}

		c.JSON(http.StatusOK, gin.H{"message": "status updated", "id": req.ID.Hex(), "status": input.Status})
	}
}

// SetEmergency lets an admin escalate (or de-escalate) a pending request.
func SetEmergency(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Emergency *bool `json:"emergency" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		req, ok := loadRequest(ctx, c, cfg)
		if !ok {
			return
		}
		if *input.Emergency && req.Status != models.RequestPending {
			c.JSON(http.StatusConflict, gin.H{"error": "only pending requests can be escalated"})
			return
		}

		if _, err := cfg.Collection(config.RequestsCollection).UpdateOne(ctx,
			bson.M{"_id": req.ID},
			bson.M{"$set": bson.M{"emergency": *input.Emergency, "updated_at": time.Now()}}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update request"})
			return
		}

		if *input.Emergency {
			notify(ctx, cfg, models.Notification{
				Email:     req.RequesterEmail,
				Type:      models.NotificationEmergency,
				Title:     "Request marked as emergency",
				Message:   fmt.Sprintf("Your request for %s is now prioritised.", req.RecipientName),
				RelatedID: req.ID.Hex(),
			})
		}

		c.JSON(http.StatusOK, gin.H{"message": "emergency flag updated", "id": req.ID.Hex(), "emergency": *input.Emergency})
	}
}

// ---------------- DELETE ----------------
func DeleteRequest(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		existing, ok := loadRequest(ctx, c, cfg)
		if !ok {
			return
		}

		if user.Role != models.RoleAdmin && existing.RequesterEmail != user.Email {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		res, err := cfg.Collection(config.RequestsCollection).DeleteOne(ctx, bson.M{"_id": existing.ID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete donation request"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "donation request not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "donation request deleted",
			"id":      existing.ID.Hex(),
		})
	}
}
