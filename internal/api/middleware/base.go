package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pythonegrove/codesamples/internal/models"
	"github.com/pythonegrove/codesamples/internal/services"
)

// ContextKeyBase holds the resolved *models.Base in Gin context.
const ContextKeyBase = "base"

// BaseMiddleware resolves the base (site instance) serving the request host.
func BaseMiddleware(baseService services.IBaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		base, err := baseService.Resolve(c.Request.Context(), c.Request.Host)
		if err != nil {
			if errors.Is(err, services.ErrBaseNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Site not found"})
				return
			}
			log.Printf("Error resolving base for host %s: %v", c.Request.Host, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve site"})
			return
		}
		c.Set(ContextKeyBase, base)
		c.Next()
	}
}

// CurrentBase returns the base set by BaseMiddleware, or nil.
func CurrentBase(c *gin.Context) *models.Base {
	v, ok := c.Get(ContextKeyBase)
	if !ok {
		return nil
	}
	base, _ := v.(*models.Base)
	return base
}
