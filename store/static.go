package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/models"
)

// Cache kinds for reference data.
const (
	kindCity    = "city"
	kindService = "service"
	kindContent = "content"
)

const allSlug = "_all"

// ListCities returns the active cities, name-ordered, via the cache.
func (s *Store) ListCities(ctx context.Context) ([]models.City, error) {
	cities := []models.City{}
	if s.cache.Get(ctx, kindCity, allSlug, &cities) {
		return cities, nil
	}
	err := s.execute(ctx, "list-cities", readRetries, func(tx *gorm.DB) error {
		return tx.Where("is_active = ?", true).Order("name").Find(&cities).Error
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, kindCity, allSlug, cities)
	return cities, nil
}

// ListServices returns the active services, name-ordered, via the cache.
func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	services := []models.Service{}
	if s.cache.Get(ctx, kindService, allSlug, &services) {
		return services, nil
	}
	err := s.execute(ctx, "list-services", readRetries, func(tx *gorm.DB) error {
		return tx.Where("is_active = ?", true).Order("name").Find(&services).Error
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, kindService, allSlug, services)
	return services, nil
}

// CitySlugs returns the active city slugs for validation and routing.
func (s *Store) CitySlugs(ctx context.Context) ([]string, error) {
	cities, err := s.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(cities))
	for i, c := range cities {
		slugs[i] = c.Slug
	}
	return slugs, nil
}

// ServiceSlugs returns the active service slugs for validation and routing.
func (s *Store) ServiceSlugs(ctx context.Context) ([]string, error) {
	services, err := s.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(services))
	for i, svc := range services {
		slugs[i] = svc.Slug
	}
	return slugs, nil
}

// GetCityBySlug fetches an active city by its slug, via the cache.
func (s *Store) GetCityBySlug(ctx context.Context, slug string) (*models.City, error) {
	var city models.City
	if s.cache.Get(ctx, kindCity, slug, &city) {
		return &city, nil
	}
	err := s.execute(ctx, "get-city-by-slug", readRetries, func(tx *gorm.DB) error {
		if err := tx.First(&city, "slug = ? AND is_active = ?", slug, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("City not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, kindCity, slug, city)
	return &city, nil
}

// GetServiceBySlug fetches an active service by its slug, via the cache.
func (s *Store) GetServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	var service models.Service
	if s.cache.Get(ctx, kindService, slug, &service) {
		return &service, nil
	}
	err := s.execute(ctx, "get-service-by-slug", readRetries, func(tx *gorm.DB) error {
		if err := tx.First(&service, "slug = ? AND is_active = ?", slug, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Service not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, kindService, slug, service)
	return &service, nil
}

// GetContentBySlug fetches page content by (type, slug). A missing row is
// reported as nil, nil: landing pages render without optional content.
func (s *Store) GetContentBySlug(ctx context.Context, contentType, slug string) (*models.Content, error) {
	var content models.Content
	cacheSlug := contentType + ":" + slug
	if s.cache.Get(ctx, kindContent, cacheSlug, &content) {
		return &content, nil
	}
	found := true
	err := s.execute(ctx, "get-content-by-slug", readRetries, func(tx *gorm.DB) error {
		if err := tx.First(&content, "type = ? AND slug = ?", contentType, slug).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	s.cache.Set(ctx, kindContent, cacheSlug, content)
	return &content, nil
}

// UpsertContent writes a content row and invalidates the content cache so the
// next read observes the new data.
func (s *Store) UpsertContent(ctx context.Context, content *models.Content) error {
	err := s.execute(ctx, "upsert-content", writeRetries, func(tx *gorm.DB) error {
		return tx.Save(content).Error
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, kindContent)
	return nil
}

// CityData is a city landing page payload: the city row joined with its
// optional content and SEO metadata.
type CityData struct {
	models.City
	Content map[string]any `json:"content,omitempty"`
	SEO     map[string]any `json:"seo,omitempty"`
}

// GetCityData fetches a city with its landing page content.
func (s *Store) GetCityData(ctx context.Context, slug string) (*CityData, error) {
	city, err := s.GetCityBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	data := &CityData{City: *city}
	content, err := s.GetContentBySlug(ctx, kindCity, slug)
	if err != nil {
		return nil, err
	}
	if content != nil {
		data.Content = content.Data
		data.SEO = content.Metadata
	}
	return data, nil
}

// ServiceData is a service landing page payload.
type ServiceData struct {
	models.Service
	Content map[string]any `json:"content,omitempty"`
	SEO     map[string]any `json:"seo,omitempty"`
}

// GetServiceData fetches a service with its landing page content.
func (s *Store) GetServiceData(ctx context.Context, slug string) (*ServiceData, error) {
	service, err := s.GetServiceBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	data := &ServiceData{Service: *service}
	content, err := s.GetContentBySlug(ctx, kindService, slug)
	if err != nil {
		return nil, err
	}
	if content != nil {
		data.Content = content.Data
		data.SEO = content.Metadata
	}
	return data, nil
}
