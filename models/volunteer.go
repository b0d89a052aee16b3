package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

type VolunteerApplication struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`
	Name       string             `bson:"name" json:"name"`
	Avatar     string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	BloodGroup string             `bson:"blood_group" json:"blood_group"`
	Location   Location           `bson:"location" json:"location"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Motivation string             `bson:"motivation,omitempty" json:"motivation,omitempty"`
	Status     string             `bson:"status" json:"status"` // pending, accepted, rejected
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
