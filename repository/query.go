package repository

import (
	"regexp"
	"strings"

	"EstateHub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SortFields lists the listing fields clients may sort by.
var SortFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"price":     true,
	"size":      true,
	"title":     true,
}

const DefaultSortField = "createdAt"

// ListingQuery describes a listing lookup: filters, sort and page window.
type ListingQuery struct {
	AvailableOnly bool
	Search        string
	MinPrice      *float64
	MaxPrice      *float64
	Location      string
	Size          string
	IDs           []primitive.ObjectID
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

// SortField returns the whitelisted sort field, defaulting to createdAt.
func (q ListingQuery) SortField() string {
	if SortFields[q.SortBy] {
		return q.SortBy
	}
	return DefaultSortField
}

// Ascending is true only for an explicit "asc" order; everything else sorts newest/highest first.
func (q ListingQuery) Ascending() bool {
	return strings.EqualFold(q.SortOrder, "asc")
}

func (q ListingQuery) Skip() int64 {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	return int64((q.Page - 1) * q.Limit)
}

func containsPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// Filter translates the query into a MongoDB filter document.
func (q ListingQuery) Filter() bson.M {
	filter := bson.M{}
	if q.AvailableOnly {
		filter["status"] = models.StatusAvailable
	}
	if q.IDs != nil {
		filter["_id"] = bson.M{"$in": q.IDs}
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := containsPattern(term)
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"location": pattern},
			bson.M{"description": pattern},
		}
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		filter["location"] = containsPattern(loc)
	}
	if size := strings.TrimSpace(q.Size); size != "" {
		filter["size"] = containsPattern(size)
	}
	return filter
}

// Sort returns the sort document with _id as a stable tie-break.
func (q ListingQuery) Sort() bson.D {
	dir := -1
	if q.Ascending() {
		dir = 1
	}
	return bson.D{{Key: q.SortField(), Value: dir}, {Key: "_id", Value: dir}}
}
