package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/db"
	"github.com/pythonegrove/codesamples/internal/models"
	"github.com/pythonegrove/codesamples/internal/utils"
)

func TestEnquiryService_Integration(t *testing.T) {
	database := utils.SetupTestDB(t, "test_enquiry_service", db.InformationRequestsCollection)
	svc := NewEnquiryService(database)
	ctx := context.Background()

	_, err := svc.CreateInformationRequest(ctx, &models.InformationRequest{ListingID: "r1", Email: "a@b.c"})
	assert.Error(t, err)

	in := &models.InformationRequest{Base: "austin", ListingID: "r1", Name: "Ann", Email: "ann@example.com", Message: "Is it available?", Sent: true}
	created, err := svc.CreateInformationRequest(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Sent)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Empty(t, in.ID, "input must not be mutated")

	found, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", found.Name)

	require.NoError(t, svc.MarkSent(ctx, created.ID))
	found, err = svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, found.Sent)

	assert.ErrorIs(t, svc.MarkSent(ctx, "missing"), mongo.ErrNoDocuments)
	_, err = svc.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}
