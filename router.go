package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sparklean/sparklean-api/config"
	"github.com/sparklean/sparklean-api/controllers"
	"github.com/sparklean/sparklean-api/middleware"
	"github.com/sparklean/sparklean-api/services"
	"github.com/sparklean/sparklean-api/store"
)

// routerDeps carries everything the router needs. The session gates are
// injectable so tests can substitute a mock authenticator.
type routerDeps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	store    *store.Store
	identity *services.IdentityService
	images   services.ImageService

	sessionGate gin.HandlerFunc
	adminGate   gin.HandlerFunc
	rateLimiter *middleware.RateLimiter
}

// newRouter wires the HTTP surface.
func newRouter(deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.logger))
	router.Use(cors.Default())

	bookings := controllers.NewBookingController(deps.store, deps.images, deps.logger)
	users := controllers.NewUserController(deps.store, deps.logger)
	profiles := controllers.NewProfileController(deps.store, deps.logger)
	static := controllers.NewStaticController(deps.store, deps.logger)
	status := controllers.NewStatusController(deps.store, deps.logger)
	auth := controllers.NewAuthController(deps.cfg, deps.store, deps.identity, deps.logger)

	api := router.Group("/api")
	if deps.rateLimiter != nil {
		api.Use(middleware.RateLimit(deps.rateLimiter))
	}

	// Public routes
	api.GET("/health", status.Health)
	api.GET("/cities", static.ListCities)
	api.GET("/cities/:slug", static.GetCity)
	api.GET("/services", static.ListServices)
	api.GET("/services/:slug", static.GetService)
	api.GET("/auth/callback", auth.Callback)

	// Session-gated routes
	protected := api.Group("")
	protected.Use(deps.sessionGate)
	{
		protected.POST("/bookings", bookings.Create)
		protected.GET("/bookings", bookings.List)
		protected.GET("/bookings/:id", bookings.Get)
		protected.PATCH("/bookings/:id", bookings.Update)
		protected.PATCH("/bookings/:id/status", bookings.UpdateStatus)
		protected.POST("/bookings/:id/photo", bookings.UploadPhoto)

		protected.GET("/users", users.GetByEmail)
		protected.GET("/users/:id", users.Get)
		protected.PATCH("/users/:id", users.Update)

		protected.GET("/profiles/:id", profiles.Get)
		protected.PATCH("/profiles/:id", profiles.Update)
	}

	// Admin-only routes
	admin := protected.Group("")
	admin.Use(deps.adminGate)
	{
		admin.GET("/db-status", status.DBStatus)
	}

	return router
}
