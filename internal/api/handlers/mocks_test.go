package handlers_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/pythonegrove/codesamples/internal/models"
	"github.com/pythonegrove/codesamples/internal/services"
	"github.com/pythonegrove/codesamples/internal/tasks"
)

// --- Mocks ---

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) FindByListingID(ctx context.Context, listingID string) (*models.PropertyListing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyListing), args.Error(1)
}

func (m *MockListingService) ListRentals(ctx context.Context, markets []string, location services.LocationQuery) ([]models.PropertyListing, error) {
	args := m.Called(ctx, markets, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PropertyListing), args.Error(1)
}

func (m *MockListingService) PageRentals(ctx context.Context, markets []string, location services.LocationQuery, pageNumber, pageSize int) ([]models.PropertyListing, services.Pagination, error) {
	args := m.Called(ctx, markets, location, pageNumber, pageSize)
	if args.Get(0) == nil {
		return nil, services.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]models.PropertyListing), args.Get(1).(services.Pagination), args.Error(2)
}

func (m *MockListingService) FindRentalsByListingIDs(ctx context.Context, listingIDs []string) ([]models.PropertyListing, error) {
	args := m.Called(ctx, listingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PropertyListing), args.Error(1)
}

// MockBookmarkService
type MockBookmarkService struct {
	mock.Mock
}

func (m *MockBookmarkService) ListingIDsForUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockMenuService
type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) TopMenu(ctx context.Context, baseSlug string) (*models.Menu, error) {
	args := m.Called(ctx, baseSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Menu), args.Error(1)
}

func (m *MockMenuService) Invalidate(ctx context.Context, baseSlug string) error {
	return m.Called(ctx, baseSlug).Error(0)
}

// MockEnquiryService
type MockEnquiryService struct {
	mock.Mock
}

func (m *MockEnquiryService) CreateInformationRequest(ctx context.Context, req *models.InformationRequest) (*models.InformationRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InformationRequest), args.Error(1)
}

func (m *MockEnquiryService) FindByID(ctx context.Context, id string) (*models.InformationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InformationRequest), args.Error(1)
}

func (m *MockEnquiryService) MarkSent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockEmailDispatcher
type MockEmailDispatcher struct {
	mock.Mock
}

func (m *MockEmailDispatcher) DispatchEmail(ctx context.Context, payload tasks.EmailTaskPayload) error {
	return m.Called(ctx, payload).Error(0)
}

// MockPhotoStorage
type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) PhotoURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockPhotoStorage) PhotoURLs(ctx context.Context, keys []string) []string {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

// MockRenderer records the page and data instead of executing templates.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(w io.Writer, page string, data map[string]interface{}) error {
	args := m.Called(page, data)
	if err := args.Error(0); err != nil {
		return err
	}
	_, err := io.WriteString(w, "<html>"+page+"</html>")
	return err
}
