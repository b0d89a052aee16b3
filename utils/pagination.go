package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = 100000
)

type Pagination struct {
	Page  int64
	Limit int64
}

// ParsePagination reads ?page= and ?limit=, falling back to defaults on
// missing or malformed values.
func ParsePagination(c *gin.Context) Pagination {
	p := Pagination{Page: 1, Limit: DefaultPageSize}

	if v, err := strconv.ParseInt(c.Query("page"), 10, 64); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

// Skip never goes negative, even for hand-built values.
func (p Pagination) Skip() int64 {
	if p.Page < 1 || p.Limit < 1 || p.Page > MaxPage {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// FindOptions applies skip/limit and the given sort to a Find call.
func (p Pagination) FindOptions(sort bson.D) *options.FindOptions {
	return options.Find().SetSkip(p.Skip()).SetLimit(p.Limit).SetSort(sort)
}
