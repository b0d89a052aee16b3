package controllers

import (
	"context"
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

// ---------------- PAYMENT INTENT ----------------
func CreatePaymentIntent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Amount   int64  `json:"amount" binding:"required,gt=0"` // minor units
			Currency string `json:"currency"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if cfg.Payments == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
			return
		}

		currency := strings.ToLower(input.Currency)
		if currency == "" {
			currency = cfg.Currency
		}
		if currency != cfg.Currency {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("only %s payments are accepted", cfg.Currency)})
			return
		}

		ctx, cancel := requestContext(c, 15*time.Second)
		defer cancel()

		intent, err := cfg.Payments.CreateIntent(ctx, input.Amount, currency, c.GetString(middleware.EmailKey))
		if err != nil {
			cfg.Logger.WithError(err).Error("create payment intent")
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment processor error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"client_secret": intent.ClientSecret, "id": intent.ID})
	}
}

// ---------------- CONFIRM ----------------

// ConfirmFunding records a payment once the processor reports it succeeded.
// Confirming the same intent twice returns the stored record.
func ConfirmFunding(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var input struct {
			PaymentIntentID string `json:"payment_intent_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if cfg.Payments == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
			return
		}

		ctx, cancel := requestContext(c, 15*time.Second)
		defer cancel()

		intent, err := cfg.Payments.GetIntent(ctx, input.PaymentIntentID)
		if err != nil {
			cfg.Logger.WithError(err).WithField("intent", input.PaymentIntentID).Warn("payment intent lookup failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment intent"})
			return
		}
		if intent.Status != utils.PaymentSucceeded {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment not completed", "status": intent.Status})
			return
		}
		payer := intent.DonorEmail
		if payer == "" {
			payer = intent.ReceiptEmail
		}
		if !strings.EqualFold(payer, user.Email) {
			c.JSON(http.StatusForbidden, gin.H{"error": "payment belongs to another donor"})
			return
		}
		if !strings.EqualFold(intent.Currency, cfg.Currency) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("only %s payments are accepted", cfg.Currency)})
			return
		}

		payment := models.FundingPayment{
			ID:              primitive.NewObjectID(),
			DonorEmail:      user.Email,
			DonorName:       user.Name,
			Amount:          intent.Amount,
			Currency:        strings.ToLower(intent.Currency),
			PaymentIntentID: intent.ID,
			CreatedAt:       time.Now(),
		}

		col := cfg.Collection(config.FundingsCollection)
		if _, err := col.InsertOne(ctx, payment); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				var existing models.FundingPayment
				if err := col.FindOne(ctx, bson.M{"payment_intent_id": intent.ID}).Decode(&existing); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load funding"})
					return
				}
				c.JSON(http.StatusOK, existing)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record funding"})
			return
		}

		c.JSON(http.StatusCreated, payment)
	}
}

// ---------------- LIST ----------------
func ListFunding(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		page, err := findPage[models.FundingPayment](ctx, cfg.Collection(config.FundingsCollection),
			bson.M{}, utils.ParsePagination(c), bson.D{{Key: "created_at", Value: -1}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch funding"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// totalFunding sums the recorded payments in the platform currency, in minor units.
func totalFunding(ctx context.Context, cfg *config.Config) (int64, error) {
	cursor, err := cfg.Collection(config.FundingsCollection).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "currency", Value: cfg.Currency}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err := cursor.Decode(&result); err != nil {
		return 0, fmt.Errorf("decode funding total: %w", err)
	}
	return result.Total, nil
}

func FundingTotal(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()

		total, err := totalFunding(ctx, cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute funding total"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": total, "currency": cfg.Currency})
	}
}
