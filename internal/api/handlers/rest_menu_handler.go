package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pythonegrove/codesamples/internal/api/middleware"
	"github.com/pythonegrove/codesamples/internal/services"
)

// RestMenuHandler serves the navigation menu.
type RestMenuHandler struct {
	menuService services.IMenuService
}

// NewRestMenuHandler creates a new RestMenuHandler.
func NewRestMenuHandler(menuService services.IMenuService) *RestMenuHandler {
	return &RestMenuHandler{menuService: menuService}
}

// GetTopMenu handles GET /menu/top
func (h *RestMenuHandler) GetTopMenu(c *gin.Context) {
	base := middleware.CurrentBase(c)
	if base == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	menu, err := h.menuService.TopMenu(c.Request.Context(), base.Slug)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
		return
	}
	c.JSON(http.StatusOK, menu)
}
