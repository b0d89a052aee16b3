package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag derives a weak validator from a record id and its last update.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d", id.Hex(), updatedAt.UnixNano())))
	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}
