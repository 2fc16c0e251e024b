package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// City is a serviced city. The slug is the immutable URL identifier.
type City struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *City) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (City) TableName() string {
	return "cities"
}

// Service is an offered cleaning service (regular, deep, end of lease).
type Service struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `json:"description"`
	BasePrice   int            `gorm:"not null" json:"base_price"` // whole dollars per job
	Features    []string       `gorm:"serializer:json" json:"features,omitempty"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	Metadata    map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (Service) TableName() string {
	return "services"
}

// Content holds free-form page content plus SEO metadata for a city or
// service landing page, keyed by (type, slug).
type Content struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Type      string         `gorm:"not null;index:idx_content_type_slug" json:"type"` // "city" or "service"
	Slug      string         `gorm:"not null;index:idx_content_type_slug" json:"slug"`
	Data      map[string]any `gorm:"serializer:json" json:"data"`
	Metadata  map[string]any `gorm:"serializer:json" json:"metadata,omitempty"` // SEO metadata
	Status    string         `gorm:"not null;default:'draft'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (Content) TableName() string {
	return "content"
}
