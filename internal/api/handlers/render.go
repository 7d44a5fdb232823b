package handlers

import (
	"bytes"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pythonegrove/codesamples/internal/views"
)

// renderPage renders page into a buffer and writes it with status, so a failing
// template turns into a clean 500.
func renderPage(c *gin.Context, renderer views.IRenderer, status int, page string, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, page, data); err != nil {
		log.Printf("Error rendering %s: %v", page, err)
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// renderNotFound renders the 404 page.
func renderNotFound(c *gin.Context, renderer views.IRenderer, message string) {
	renderPage(c, renderer, http.StatusNotFound, views.NotFoundPage, gin.H{"message": message})
}
