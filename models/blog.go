package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BlogDraft     = "draft"
	BlogPublished = "published"
)

type Blog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Thumbnail   string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Content     string             `bson:"content" json:"content"` // HTML
	AuthorName  string             `bson:"author_name" json:"author_name"`
	AuthorEmail string             `bson:"author_email" json:"author_email"`
	Status      string             `bson:"status" json:"status"` // draft, published
	Likes       []string           `bson:"likes" json:"likes"`   // emails
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func IsValidBlogStatus(status string) bool {
	return status == BlogDraft || status == BlogPublished
}

// LikedBy reports whether email is in the like list.
func (b Blog) LikedBy(email string) bool {
	for _, e := range b.Likes {
		if e == email {
			return true
		}
	}
	return false
}
