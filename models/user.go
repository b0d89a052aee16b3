package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleDonor     = "donor"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"

	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// BloodGroups lists the accepted ABO/Rh groups.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

type Location struct {
	Division string `bson:"division,omitempty" json:"division,omitempty"`
	District string `bson:"district" json:"district"`
	Upazila  string `bson:"upazila" json:"upazila"`
}

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`
	Name       string             `bson:"name" json:"name"`
	Avatar     string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	BloodGroup string             `bson:"blood_group" json:"blood_group"`
	Location   Location           `bson:"location" json:"location"`
	Role       string             `bson:"role" json:"role"`     // donor, volunteer, admin
	Status     string             `bson:"status" json:"status"` // active, blocked
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u User) IsActive() bool {
	return u.Status != StatusBlocked
}

func IsValidRole(role string) bool {
	switch role {
	case RoleDonor, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

func IsValidUserStatus(status string) bool {
	return status == StatusActive || status == StatusBlocked
}

func IsValidBloodGroup(group string) bool {
	for _, g := range BloodGroups {
		if g == group {
			return true
		}
	}
	return false
}
