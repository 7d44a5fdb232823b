package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pythonegrove/codesamples/internal/api/handlers"
	"github.com/pythonegrove/codesamples/internal/models"
	"github.com/pythonegrove/codesamples/internal/services"
)

func setupMenuRouter(base *models.Base) (*gin.Engine, *MockMenuService) {
	gin.SetMode(gin.TestMode)
	svc := new(MockMenuService)
	h := handlers.NewRestMenuHandler(svc)

	r := gin.New()
	r.Use(withContext(base, "", true))
	r.GET("/menu/top", h.GetTopMenu)
	return r, svc
}

func TestRestMenuHandler_GetTopMenu(t *testing.T) {
	r, svc := setupMenuRouter(austin)

	menu := services.GroupMenu([]models.MenuRow{
		{CategoryName: "Rent", ItemName: "Houses", URL: "/rentals/houses"},
		{CategoryName: "About", ItemName: "Contact", URL: "/contact"},
	})
	svc.On("TopMenu", mock.Anything, "austin").Return(menu, nil)

	w := doRequest(r, http.MethodGet, "/menu/top", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		`{"Rent":[{"category_name":"Rent","item_name":"Houses","url":"/rentals/houses"}],"About":[{"category_name":"About","item_name":"Contact","url":"/contact"}]}`,
		w.Body.String())
	svc.AssertExpectations(t)
}

func TestRestMenuHandler_GetTopMenu_Empty(t *testing.T) {
	r, svc := setupMenuRouter(austin)
	svc.On("TopMenu", mock.Anything, "austin").Return(models.NewMenu(), nil)

	w := doRequest(r, http.MethodGet, "/menu/top", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{}", w.Body.String())
}

func TestRestMenuHandler_GetTopMenu_Errors(t *testing.T) {
	r, _ := setupMenuRouter(nil)
	w := doRequest(r, http.MethodGet, "/menu/top", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	r, svc := setupMenuRouter(austin)
	svc.On("TopMenu", mock.Anything, "austin").Return(nil, errors.New("mongo down"))
	w = doRequest(r, http.MethodGet, "/menu/top", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
