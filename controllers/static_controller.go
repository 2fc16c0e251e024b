package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/store"
)

// StaticController serves the read-mostly reference data behind the city and
// service landing pages.
type StaticController struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewStaticController creates a StaticController.
func NewStaticController(st *store.Store, logger zerolog.Logger) *StaticController {
	return &StaticController{store: st, logger: logger}
}

// ListCities handles GET /api/cities.
func (sc *StaticController) ListCities(c *gin.Context) {
	cities, err := sc.store.ListCities(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// GetCity handles GET /api/cities/:slug - the city row joined with its
// landing page content and SEO metadata.
func (sc *StaticController) GetCity(c *gin.Context) {
	city, err := sc.store.GetCityData(c.Request.Context(), c.Param("slug"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city})
}

// ListServices handles GET /api/services.
func (sc *StaticController) ListServices(c *gin.Context) {
	services, err := sc.store.ListServices(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// GetService handles GET /api/services/:slug.
func (sc *StaticController) GetService(c *gin.Context) {
	service, err := sc.store.GetServiceData(c.Request.Context(), c.Param("slug"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service})
}
