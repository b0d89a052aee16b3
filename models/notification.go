package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationRequestClaimed  = "request_claimed"
	NotificationRequestStatus   = "request_status"
	NotificationEmergency       = "emergency"
	NotificationVolunteerResult = "volunteer_result"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	RelatedID string             `bson:"related_id,omitempty" json:"related_id,omitempty"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
