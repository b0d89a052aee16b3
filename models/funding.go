package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FundingPayment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonorEmail      string             `bson:"donor_email" json:"donor_email"`
	DonorName       string             `bson:"donor_name,omitempty" json:"donor_name,omitempty"`
	Amount          int64              `bson:"amount" json:"amount"` // minor units
	Currency        string             `bson:"currency" json:"currency"`
	PaymentIntentID string             `bson:"payment_intent_id" json:"payment_intent_id"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}
