package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/api/middleware"
	"github.com/pythonegrove/codesamples/internal/models"
	"github.com/pythonegrove/codesamples/internal/services"
	"github.com/pythonegrove/codesamples/internal/storage"
	"github.com/pythonegrove/codesamples/internal/views"
)

// Gallery view identifiers exposed to the gallery template.
const (
	GalleryPageName = "rents_gallery"
	MapPageName     = "rents_map"
)

// RestRentalHandler serves the rental listing pages.
type RestRentalHandler struct {
	listingService   services.IListingService
	bookmarkService  services.IBookmarkService
	photoStorage     storage.IPhotoStorage
	renderer         views.IRenderer
	galleryPageSize  int
	turnstileSiteKey string
}

// NewRestRentalHandler creates a new RestRentalHandler.
func NewRestRentalHandler(
	listingService services.IListingService,
	bookmarkService services.IBookmarkService,
	photoStorage storage.IPhotoStorage,
	renderer views.IRenderer,
	galleryPageSize int,
	turnstileSiteKey string,
) *RestRentalHandler {
	return &RestRentalHandler{
		listingService:   listingService,
		bookmarkService:  bookmarkService,
		photoStorage:     photoStorage,
		renderer:         renderer,
		galleryPageSize:  galleryPageSize,
		turnstileSiteKey: turnstileSiteKey,
	}
}

// baseMarkets returns the markets of the request's base. No base means no markets.
func baseMarkets(c *gin.Context) []string {
	if base := middleware.CurrentBase(c); base != nil && base.Markets != nil {
		return base.Markets
	}
	return []string{}
}

// GetRentalDetail handles GET /rentals/:listing_id
func (h *RestRentalHandler) GetRentalDetail(c *gin.Context) {
	ctx := c.Request.Context()
	listingID := c.Param("listing_id")

	listing, err := h.listingService.FindByListingID(ctx, listingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			renderNotFound(c, h.renderer, "Listing not found")
		} else {
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, "Failed to retrieve listing")
		}
		return
	}

	properties := []models.PropertyListing{}
	if userID, ok := middleware.UserID(c); ok {
		properties = h.bookmarkedRentals(c, userID)
	}

	renderPage(c, h.renderer, http.StatusOK, views.RentalDetailPage, gin.H{
		"property":           listing,
		"form":               RequestInformationForm{ListingID: listing.ListingID},
		"properties":         properties,
		"base":               middleware.CurrentBase(c),
		"photos":             h.photoStorage.PhotoURLs(ctx, listing.Photos),
		"turnstile_site_key": h.turnstileSiteKey,
	})
}

// bookmarkedRentals loads the user's bookmarked rentals. Failures are logged and
// leave the list empty so the listing itself still renders.
func (h *RestRentalHandler) bookmarkedRentals(c *gin.Context, userID string) []models.PropertyListing {
	ctx := c.Request.Context()
	ids, err := h.bookmarkService.ListingIDsForUser(ctx, userID)
	if err != nil {
		log.Printf("Error loading bookmarks for user %s: %v", userID, err)
		return []models.PropertyListing{}
	}
	listings, err := h.listingService.FindRentalsByListingIDs(ctx, ids)
	if err != nil {
		log.Printf("Error loading bookmarked rentals for user %s: %v", userID, err)
		return []models.PropertyListing{}
	}
	return listings
}

// searchLocation returns the submitted location and its parsed query. GET requests never filter.
func searchLocation(c *gin.Context) (string, services.LocationQuery, bool) {
	if c.Request.Method != http.MethodPost {
		return "", services.LocationQuery{}, false
	}
	location := c.PostForm("location")
	return location, services.ParseLocationQuery(location), true
}

// ListRentals handles GET and POST /rentals
func (h *RestRentalHandler) ListRentals(c *gin.Context) {
	location, query, submitted := searchLocation(c)

	listings, err := h.listingService.ListRentals(c.Request.Context(), baseMarkets(c), query)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Failed to list rentals")
		return
	}

	data := gin.H{
		"properties": listings,
		"base":       middleware.CurrentBase(c),
	}
	if submitted {
		data["location"] = location
	}
	renderPage(c, h.renderer, http.StatusOK, views.RentalListPage, data)
}

// parsePage reads ?page=N. Anything but a positive integer is page 1.
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// RentalGallery handles GET and POST /rentals/gallery
func (h *RestRentalHandler) RentalGallery(c *gin.Context) {
	location, query, submitted := searchLocation(c)

	listings, page, err := h.listingService.PageRentals(c.Request.Context(), baseMarkets(c), query, parsePage(c), h.galleryPageSize)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Failed to list rentals")
		return
	}

	data := gin.H{
		"properties":   listings,
		"base":         middleware.CurrentBase(c),
		"gallery_page": GalleryPageName,
		"map_page":     MapPageName,
		"page":         page,
	}
	if submitted {
		data["location"] = location
	}
	renderPage(c, h.renderer, http.StatusOK, views.RentalGalleryPage, data)
}
