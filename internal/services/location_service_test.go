package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseLocationQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LocationQuery
	}{
		{"blank", "   ", LocationQuery{}},
		{"empty", "", LocationQuery{}},
		{"city only", " Austin ", LocationQuery{City: "Austin"}},
		{"city and zip", "Austin, 78701", LocationQuery{City: "Austin", Zip: "78701"}},
		{"all three", "Austin, 78701, Congress Ave", LocationQuery{City: "Austin", Zip: "78701", Street: "Congress Ave"}},
		{"extra commas stay in street", "Austin,78701,Suite 4, Congress Ave", LocationQuery{City: "Austin", Zip: "78701", Street: "Suite 4, Congress Ave"}},
		{"empty middle part", "Austin,,Congress", LocationQuery{City: "Austin", Street: "Congress"}},
		{"leading comma", ",78701", LocationQuery{Zip: "78701"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocationQuery(tt.input))
		})
	}
}

func TestLocationQuery_EmptyFilter(t *testing.T) {
	q := ParseLocationQuery(" , ,")
	assert.True(t, q.IsEmpty())
	assert.Equal(t, bson.M{}, q.Filter())
}

func TestLocationQuery_FilterAndOfOrs(t *testing.T) {
	q := LocationQuery{City: "Austin", Street: "5th St."}

	f := q.Filter()
	and, ok := f["$and"].(bson.A)
	require.True(t, ok)
	require.Len(t, and, 2)

	first := and[0].(bson.M)["$or"].(bson.A)
	require.Len(t, first, 3)
	assert.Equal(t, bson.M{"city": primitive.Regex{Pattern: "Austin", Options: "i"}}, first[0])
	assert.Equal(t, bson.M{"zip": primitive.Regex{Pattern: "Austin", Options: "i"}}, first[1])
	assert.Equal(t, bson.M{"address1": primitive.Regex{Pattern: "Austin", Options: "i"}}, first[2])

	// Regex metacharacters from user input are matched literally.
	second := and[1].(bson.M)["$or"].(bson.A)
	assert.Equal(t, bson.M{"city": primitive.Regex{Pattern: `5th St\.`, Options: "i"}}, second[0])
}

func TestLocationQuery_Parts(t *testing.T) {
	assert.Equal(t, []string{"Austin", "Congress"}, LocationQuery{City: "Austin", Street: "Congress"}.Parts())
	assert.Empty(t, LocationQuery{}.Parts())
}
