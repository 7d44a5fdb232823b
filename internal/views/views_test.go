package views

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythonegrove/codesamples/internal/models"
	"github.com/pythonegrove/codesamples/internal/services"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestFuncs(t *testing.T) {
	f := Funcs()
	assert.Equal(t, "Main Street", f["title"].(func(string) string)("main street"))
	assert.Equal(t, "$1,250", f["price"].(func(float64) string)(1250))
	assert.Equal(t, "12,000", f["number"].(func(interface{}) string)(12000))
}

func TestRender_UnknownPage(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, newTestRenderer(t).Render(&buf, "nope.html", nil))
	assert.Zero(t, buf.Len())
}

func TestRender_RentalList(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(t).Render(&buf, RentalListPage, map[string]interface{}{
		"base":     &models.Base{Name: "Austin Rentals"},
		"location": `<script>alert(1)</script>`,
		"properties": []models.PropertyListing{
			{ListingID: "r1", Address1: "1 congress ave", City: "Austin", State: "TX", Zip: "78701", Price: 2100, Featured: true},
		},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<title>Rentals | Austin Rentals</title>")
	assert.Contains(t, html, `href="/rentals/r1"`)
	assert.Contains(t, html, "1 Congress Ave")
	assert.Contains(t, html, "1 congress ave, Austin, TX 78701")
	assert.Contains(t, html, "$2,100/mo")
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestRender_RentalListEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(t).Render(&buf, RentalListPage, map[string]interface{}{
		"properties": []models.PropertyListing{},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No rentals found.")
}

func TestRender_Gallery(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(t).Render(&buf, RentalGalleryPage, map[string]interface{}{
		"properties":   []models.PropertyListing{{ListingID: "r1"}, {ListingID: "r2"}},
		"gallery_page": "rents_gallery",
		"map_page":     "rents_map",
		"page":         services.NewPagination(2, 2, 5),
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `data-page="rents_gallery"`)
	assert.Contains(t, html, `data-page="rents_map"`)
	assert.Contains(t, html, "Page 2 of 3")
	assert.Contains(t, html, `href="?page=1"`)
	assert.Contains(t, html, `href="?page=3"`)
}

func TestRender_GalleryPagingKeepsLocation(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(t).Render(&buf, RentalGalleryPage, map[string]interface{}{
		"properties": []models.PropertyListing{{ListingID: "r1"}},
		"location":   "Austin, 78701",
		"page":       services.NewPagination(2, 1, 3),
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `action="?page=1"`)
	assert.Contains(t, html, `action="?page=3"`)
	assert.Contains(t, html, `<input type="hidden" name="location" value="Austin, 78701">`)
	assert.NotContains(t, html, `href="?page=3"`)
	assert.NotContains(t, html, `href="?page=1"`)
}

func TestRender_Detail(t *testing.T) {
	type form struct {
		ListingID, Name, Email, Phone, Message string
	}
	var buf bytes.Buffer
	err := newTestRenderer(t).Render(&buf, RentalDetailPage, map[string]interface{}{
		"property":   &models.PropertyListing{ListingID: "r1", Title: "Sunny loft", Price: 1800},
		"form":       form{ListingID: "r1"},
		"photos":     []string{"https://img.example.com/r1/a.jpg"},
		"properties": []models.PropertyListing{{ListingID: "r9", Title: "Saved one"}},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<h1>Sunny loft</h1>")
	assert.Contains(t, html, `name="listing_id" value="r1"`)
	assert.Contains(t, html, `src="https://img.example.com/r1/a.jpg"`)
	assert.Contains(t, html, "Your saved rentals")
	assert.Contains(t, html, "Saved one")
	assert.NotContains(t, html, "cf-turnstile")
}

func TestRender_NotFound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestRenderer(t).Render(&buf, NotFoundPage, map[string]interface{}{"message": "Listing not found"}))
	assert.Contains(t, buf.String(), "Listing not found")
}

func TestStaticFS_ServesSiteScript(t *testing.T) {
	f, err := StaticFS().Open("/site.js")
	require.NoError(t, err)
	defer f.Close()

	js, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(js), "top-menu")
	assert.Contains(t, string(js), "request-information")
}

func TestRender_LayoutLoadsSiteScript(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestRenderer(t).Render(&buf, NotFoundPage, map[string]interface{}{"message": "x"}))
	assert.Contains(t, buf.String(), `<script src="/static/site.js" defer></script>`)
}
