package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sparklean/sparklean-api/middleware"
	"github.com/sparklean/sparklean-api/models"
	"github.com/sparklean/sparklean-api/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestStore(t *testing.T) *store.Store {
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

	return store.New(db, nil, zerolog.Nop())
}

// mockSession stands in for the session gate, storing a fixed identity the way
// the real middleware would.
func mockSession(identity middleware.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", identity.Subject)
		c.Set("identity", identity)
		c.Next()
	}
}

func seedTestUser(t *testing.T, s *store.Store, subject, email, role string) *models.User {
	t.Helper()
	user := &models.User{Subject: subject, Email: email, Role: role}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedTestCatalog(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	cities := []models.City{
		{Name: "Sydney", Slug: "sydney", IsActive: true},
		{Name: "Melbourne", Slug: "melbourne", IsActive: true},
	}
	for i := range cities {
		require.NoError(t, s.DB().WithContext(ctx).Create(&cities[i]).Error)
	}
	services := []models.Service{
		{Name: "Regular Cleaning", Slug: "regular-cleaning", BasePrice: 120, IsActive: true},
		{Name: "Deep Cleaning", Slug: "deep-cleaning", BasePrice: 180, IsActive: true},
	}
	for i := range services {
		require.NoError(t, s.DB().WithContext(ctx).Create(&services[i]).Error)
	}
}

func seedTestBooking(t *testing.T, s *store.Store, customerID string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		CustomerID:  customerID,
		ServiceType: "deep-cleaning",
		Date:        time.Now().AddDate(0, 0, 7),
		Duration:    3,
		Price:       180,
		Address:     "1 Main St, Bondi 2026",
	}
	require.NoError(t, s.CreateBooking(context.Background(), booking))
	return booking
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// multipartPhoto builds a multipart body with a single "photo" file part.
func multipartPhoto(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
