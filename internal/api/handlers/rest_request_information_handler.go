package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/api/middleware"
	"github.com/pythonegrove/codesamples/internal/models"
	"github.com/pythonegrove/codesamples/internal/services"
	"github.com/pythonegrove/codesamples/internal/tasks"
)

// Response messages of the request information endpoint.
const (
	MsgInvalidForm = "Please enter the required fields."
	MsgSent        = "Message sent Successfully!"
	MsgSendFailed  = "Message could not be sent. Please try again later."
)

// RequestInformationForm is the "contact the owner" form of a listing.
type RequestInformationForm struct {
	ListingID string `form:"listing_id" binding:"required"`
	Name      string `form:"name" binding:"required"`
	Email     string `form:"email" binding:"required,email"`
	Phone     string `form:"phone"`
	Message   string `form:"message" binding:"required"`
}

// bindRequestInformationForm reads the posted fields, trims them and only then validates,
// so surrounding whitespace never fails the email check.
func bindRequestInformationForm(c *gin.Context) (RequestInformationForm, error) {
	form := RequestInformationForm{
		ListingID: strings.TrimSpace(c.PostForm("listing_id")),
		Name:      strings.TrimSpace(c.PostForm("name")),
		Email:     strings.TrimSpace(c.PostForm("email")),
		Phone:     strings.TrimSpace(c.PostForm("phone")),
		Message:   strings.TrimSpace(c.PostForm("message")),
	}
	if err := binding.Validator.ValidateStruct(&form); err != nil {
		return form, err
	}
	return form, nil
}

// RestRequestInformationHandler accepts contact form submissions and hands them to the email worker.
type RestRequestInformationHandler struct {
	listingService services.IListingService
	enquiryService services.IEnquiryService
	dispatcher     tasks.IEmailDispatcher
	adminEmail     string
	locale         string
}

// NewRestRequestInformationHandler creates a new RestRequestInformationHandler.
// adminEmail receives requests for bases without a contact address.
func NewRestRequestInformationHandler(
	listingService services.IListingService,
	enquiryService services.IEnquiryService,
	dispatcher tasks.IEmailDispatcher,
	adminEmail, locale string,
) *RestRequestInformationHandler {
	return &RestRequestInformationHandler{
		listingService: listingService,
		enquiryService: enquiryService,
		dispatcher:     dispatcher,
		adminEmail:     adminEmail,
		locale:         locale,
	}
}

func respond(c *gin.Context, success bool, message string) {
	c.JSON(http.StatusOK, gin.H{"success": success, "message": message})
}

// recipient picks the address information requests of base are sent to.
func (h *RestRequestInformationHandler) recipient(base *models.Base) (string, error) {
	if base != nil && base.ContactEmail != "" {
		return base.ContactEmail, nil
	}
	if h.adminEmail != "" {
		return h.adminEmail, nil
	}
	return "", services.ErrNoRecipient
}

// RequestInformation handles POST /rentals/request-information
func (h *RestRequestInformationHandler) RequestInformation(c *gin.Context) {
	ctx := c.Request.Context()

	form, err := bindRequestInformationForm(c)
	if err != nil {
		respond(c, false, MsgInvalidForm)
		return
	}
	if !c.GetBool(middleware.ContextKeyIsHumanVerified) {
		respond(c, false, MsgInvalidForm)
		return
	}

	listing, err := h.listingService.FindByListingID(ctx, form.ListingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond(c, false, MsgInvalidForm)
		} else {
			_ = c.Error(err)
			respond(c, false, MsgSendFailed)
		}
		return
	}

	base := middleware.CurrentBase(c)
	to, err := h.recipient(base)
	if err != nil {
		log.Printf("Cannot deliver information request for listing %s: %v", listing.ListingID, err)
		respond(c, false, MsgSendFailed)
		return
	}

	req := &models.InformationRequest{
		ListingID: listing.ListingID,
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
		Message:   form.Message,
	}
	if base != nil {
		req.Base = base.Slug
	}
	if userID, ok := middleware.UserID(c); ok {
		req.UserID = userID
	}

	saved, err := h.enquiryService.CreateInformationRequest(ctx, req)
	if err != nil {
		_ = c.Error(err)
		respond(c, false, MsgSendFailed)
		return
	}

	err = h.dispatcher.DispatchEmail(ctx, tasks.EmailTaskPayload{
		To:         to,
		ReplyTo:    saved.Email,
		TemplateID: services.RequestInformationTemplate,
		Locale:     h.locale,
		RequestID:  saved.ID,
		Data: map[string]string{
			"listing_id":      listing.ListingID,
			"listing_title":   listing.Title,
			"listing_address": listing.FullAddress(),
			"name":            saved.Name,
			"email":           saved.Email,
			"phone":           saved.Phone,
			"message":         saved.Message,
		},
	})
	if err != nil {
		_ = c.Error(err)
		respond(c, false, MsgSendFailed)
		return
	}

	respond(c, true, MsgSent)
}
