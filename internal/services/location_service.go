package services

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// locationFields are the listing fields every part of a location search is matched against.
var locationFields = []string{"city", "zip", "address1"}

// LocationQuery is a parsed "city, zip, street" search string.
// Parts are trimmed; an empty part is ignored by Filter.
type LocationQuery struct {
	City   string
	Zip    string
	Street string
}

// ParseLocationQuery splits a free-text location into at most three comma separated parts.
// Fewer commas leave the trailing parts empty, and anything after the second comma
// (commas included) belongs to Street. Blank input yields an empty query.
func ParseLocationQuery(location string) LocationQuery {
	if strings.TrimSpace(location) == "" {
		return LocationQuery{}
	}

	parts := strings.SplitN(location, ",", 3)
	var q LocationQuery
	switch len(parts) {
	case 3:
		q.Street = strings.TrimSpace(parts[2])
		fallthrough
	case 2:
		q.Zip = strings.TrimSpace(parts[1])
		fallthrough
	default:
		q.City = strings.TrimSpace(parts[0])
	}
	return q
}

// Parts returns the non-empty parts in city, zip, street order.
func (q LocationQuery) Parts() []string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.City, q.Zip, q.Street} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// IsEmpty reports whether the query has no usable part.
func (q LocationQuery) IsEmpty() bool {
	return len(q.Parts()) == 0
}

// Filter builds the Mongo predicate for the query: each part must match, case-insensitively
// and as a literal substring, at least one of city, zip or address1.
func (q LocationQuery) Filter() bson.M {
	parts := q.Parts()
	if len(parts) == 0 {
		return bson.M{}
	}

	and := make(bson.A, 0, len(parts))
	for _, part := range parts {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(part), Options: "i"}
		or := make(bson.A, 0, len(locationFields))
		for _, field := range locationFields {
			or = append(or, bson.M{field: rx})
		}
		and = append(and, bson.M{"$or": or})
	}
	return bson.M{"$and": and}
}
