package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking statuses. Status is forward-movable only; valid transitions are
// encoded in bookingTransitions and checked by CanTransition.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var bookingTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking represents a scheduled cleaning job.
type Booking struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID  string         `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer    User           `gorm:"foreignKey:CustomerID" json:"-"`
	CleanerID   *string        `gorm:"type:uuid;index" json:"cleaner_id,omitempty"` // nullable, assigned when a cleaner accepts
	Cleaner     *User          `gorm:"foreignKey:CleanerID" json:"-"`
	Status      string         `gorm:"not null;default:'pending'" json:"status"`
	ServiceType string         `gorm:"not null" json:"service_type"`
	Date        time.Time      `gorm:"not null" json:"date"`
	Duration    int            `gorm:"not null" json:"duration"` // hours
	Price       int            `gorm:"not null" json:"price"`    // whole dollars
	Address     string         `gorm:"not null" json:"address"`
	Notes       string         `json:"notes"`
	PhotoKey    *string        `json:"photo_key,omitempty"`          // S3 key for the property photo
	PhotoURL    *string        `gorm:"-" json:"photo_url,omitempty"` // computed, presigned URL
	Metadata    map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}
