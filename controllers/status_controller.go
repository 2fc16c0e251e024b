package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sparklean/sparklean-api/store"
)

// StatusController serves the health and database-status routes.
type StatusController struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewStatusController creates a StatusController.
func NewStatusController(st *store.Store, logger zerolog.Logger) *StatusController {
	return &StatusController{store: st, logger: logger}
}

// Health handles GET /api/health.
func (sc *StatusController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sparklean API is running",
	})
}

// DBStatus handles GET /api/db-status - pings the database with retry.
func (sc *StatusController) DBStatus(c *gin.Context) {
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if err := sc.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"message":   err.Error(),
			"timestamp": timestamp,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "connected",
		"timestamp": timestamp,
	})
}
