package models

import (
	"time"
)

// Profile is the optional one-to-one extension of a User. Its primary key is
// the owning user's ID.
type Profile struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	City      string         `json:"city"`
	State     string         `json:"state"`
	Postcode  string         `json:"postcode"`
	Metadata  map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}
