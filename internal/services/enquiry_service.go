package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/db"
	"github.com/pythonegrove/codesamples/internal/models"
)

// IEnquiryService stores "request information" submissions and tracks their delivery.
type IEnquiryService interface {
	CreateInformationRequest(ctx context.Context, req *models.InformationRequest) (*models.InformationRequest, error)
	FindByID(ctx context.Context, id string) (*models.InformationRequest, error)
	MarkSent(ctx context.Context, id string) error
}

// enquiryService implements IEnquiryService.
type enquiryService struct {
	db *mongo.Database
}

// NewEnquiryService creates a new EnquiryService.
func NewEnquiryService(database *mongo.Database) IEnquiryService {
	return &enquiryService{db: database}
}

// CreateInformationRequest assigns an id and creation time to req and inserts it unsent.
func (s *enquiryService) CreateInformationRequest(ctx context.Context, req *models.InformationRequest) (*models.InformationRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("information request is nil")
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("information request must have an email and a message")
	}

	doc := *req
	doc.ID = uuid.NewString()
	doc.CreatedAt = time.Now().UTC()
	doc.Sent = false

	if _, err := s.db.Collection(db.InformationRequestsCollection).InsertOne(ctx, &doc); err != nil {
		return nil, fmt.Errorf("failed to insert information request: %w", err)
	}
	return &doc, nil
}

// FindByID returns mongo.ErrNoDocuments when the request does not exist.
func (s *enquiryService) FindByID(ctx context.Context, id string) (*models.InformationRequest, error) {
	var req models.InformationRequest
	err := s.db.Collection(db.InformationRequestsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding information request %s: %w", id, err)
	}
	return &req, nil
}

// MarkSent flags the request as delivered.
func (s *enquiryService) MarkSent(ctx context.Context, id string) error {
	res, err := s.db.Collection(db.InformationRequestsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"sent": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark information request %s sent: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
