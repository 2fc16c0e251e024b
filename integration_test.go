package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sparklean/sparklean-api/config"
	"github.com/sparklean/sparklean-api/middleware"
	"github.com/sparklean/sparklean-api/models"
	"github.com/sparklean/sparklean-api/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router *gin.Engine
	store  *store.Store
}

// newTestApp wires the full router against an in-memory database, with the
// session gates stubbed to a fixed identity.
func newTestApp(t *testing.T, identity middleware.Identity) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Booking{},
		&models.City{},
		&models.Service{},
		&models.Content{},
	), "Failed to migrate test database")

	st := store.New(db, nil, zerolog.Nop())

	router := newRouter(routerDeps{
		cfg:    &config.Config{GoEnv: "test", SessionCookieName: "sparklean-session"},
		logger: zerolog.Nop(),
		store:  st,
		sessionGate: func(c *gin.Context) {
			c.Set("user_id", identity.Subject)
			c.Set("identity", identity)
			c.Next()
		},
		adminGate: middleware.RequireRole(models.RoleAdmin),
	})

	return &testApp{router: router, store: st}
}

func (app *testApp) seedCatalog(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, city := range []models.City{
		{Name: "Sydney", Slug: "sydney", IsActive: true},
		{Name: "Melbourne", Slug: "melbourne", IsActive: true},
	} {
		require.NoError(t, app.store.DB().WithContext(ctx).Create(&city).Error)
	}
	for _, svc := range []models.Service{
		{Name: "Regular Cleaning", Slug: "regular-cleaning", BasePrice: 120, IsActive: true},
		{Name: "Deep Cleaning", Slug: "deep-cleaning", BasePrice: 180, IsActive: true},
	} {
		require.NoError(t, app.store.DB().WithContext(ctx).Create(&svc).Error)
	}
}

func (app *testApp) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t, middleware.Identity{Subject: "auth0|123"})

	w := app.do(t, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "message": "Sparklean API is running"}`, w.Body.String())
}

// TestBookingLifecycle walks a booking from submission through confirmation
// and completion against the full router.
func TestBookingLifecycle(t *testing.T) {
	app := newTestApp(t, middleware.Identity{Subject: "auth0|123", Email: "jane@example.com", Role: models.RoleCustomer})
	app.seedCatalog(t)

	customer := &models.User{Subject: "auth0|123", Email: "jane@example.com", Role: models.RoleCustomer}
	require.NoError(t, app.store.CreateUser(context.Background(), customer))

	w := app.do(t, http.MethodPost, "/api/bookings", map[string]any{
		"service":  "deep-cleaning",
		"city":     "sydney",
		"date":     time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
		"time":     "09:00",
		"duration": 4,
		"address": map[string]any{
			"street":   "1 Main St",
			"suburb":   "Bondi",
			"postcode": "2026",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		Booking models.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Booking.Status)
	assert.Equal(t, 180, created.Booking.Price)

	w = app.do(t, http.MethodGet, "/api/bookings?customerId="+customer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Bookings []models.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Bookings, 1)

	w = app.do(t, http.MethodPatch, "/api/bookings/"+created.Booking.ID+"/status", map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPatch, "/api/bookings/"+created.Booking.ID+"/status", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPatch, "/api/bookings/"+created.Booking.ID+"/status", map[string]any{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "completed bookings cannot move back")
}

func TestAdminGate(t *testing.T) {
	customerApp := newTestApp(t, middleware.Identity{Subject: "auth0|123", Role: models.RoleCustomer})
	w := customerApp.do(t, http.MethodGet, "/api/db-status", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminApp := newTestApp(t, middleware.Identity{Subject: "auth0|admin", Role: models.RoleAdmin})
	w = adminApp.do(t, http.MethodGet, "/api/db-status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnonymousRequestsRejected(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Profile{}))

	cfg := &config.Config{
		GoEnv:             "test",
		AuthDomain:        "test-tenant.au.auth0.com",
		AuthAudience:      "https://api.sparklean.com.au",
		SessionCookieName: "sparklean-session",
	}
	router := newRouter(routerDeps{
		cfg:         cfg,
		logger:      zerolog.Nop(),
		store:       store.New(db, nil, zerolog.Nop()),
		sessionGate: middleware.EnsureSession(cfg),
		adminGate:   middleware.RequireRole(models.RoleAdmin),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/bookings?customerId=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Unauthorized"}`, w.Body.String())
}

func TestRateLimitAppliesToAPIGroup(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	rl := middleware.NewRateLimiter(1, 2)
	defer rl.Stop()

	router := newRouter(routerDeps{
		cfg:         &config.Config{GoEnv: "test"},
		logger:      zerolog.Nop(),
		store:       store.New(db, nil, zerolog.Nop()),
		sessionGate: func(c *gin.Context) { c.Next() },
		adminGate:   middleware.RequireRole(models.RoleAdmin),
		rateLimiter: rl,
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
