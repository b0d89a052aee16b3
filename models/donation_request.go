package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RequestPending    = "pending"
	RequestInProgress = "in_progress"
	RequestDone       = "done"
	RequestCanceled   = "canceled"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type DonationRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequesterName  string             `bson:"requester_name" json:"requester_name"`
	RequesterEmail string             `bson:"requester_email" json:"requester_email"`
	RecipientName  string             `bson:"recipient_name" json:"recipient_name"`
	Location       Location           `bson:"location" json:"location"`
	HospitalName   string             `bson:"hospital_name" json:"hospital_name"`
	Address        string             `bson:"address" json:"address"`
	BloodGroup     string             `bson:"blood_group" json:"blood_group"`
	DonationDate   string             `bson:"donation_date" json:"donation_date"` // YYYY-MM-DD
	DonationTime   string             `bson:"donation_time" json:"donation_time"` // HH:MM
	Message        string             `bson:"message,omitempty" json:"message,omitempty"`
	Status         string             `bson:"status" json:"status"`
	DonorName      string             `bson:"donor_name,omitempty" json:"donor_name,omitempty"`
	DonorEmail     string             `bson:"donor_email,omitempty" json:"donor_email,omitempty"`
	Emergency      bool               `bson:"emergency" json:"emergency"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

func IsValidRequestStatus(status string) bool {
	switch status {
	case RequestPending, RequestInProgress, RequestDone, RequestCanceled:
		return true
	}
	return false
}

// CanTransition reports whether actor may move a request from one status to
// another. Admins may set any valid status. Claiming (pending to in_progress)
// is done through the donate operation and is rejected here for everyone but
// admins.
func CanTransition(from, to, role string, isRequester bool) error {
	if !IsValidRequestStatus(to) || from == to {
		return ErrInvalidTransition
	}
	if role == RoleAdmin {
		return nil
	}
	if !isRequester && role != RoleVolunteer {
		return ErrInvalidTransition
	}

	switch to {
	case RequestDone:
		if from == RequestInProgress {
			return nil
		}
	case RequestCanceled:
		if from == RequestPending || from == RequestInProgress {
			return nil
		}
	}
	return ErrInvalidTransition
}

// CanClaim reports whether a donor may take on the request.
func CanClaim(req DonationRequest, donorEmail string) error {
	if req.Status != RequestPending {
		return ErrInvalidTransition
	}
	if req.RequesterEmail == donorEmail {
		return errors.New("cannot donate to your own request")
	}
	return nil
}
