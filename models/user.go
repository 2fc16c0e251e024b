package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Role gates authorization on dashboard and admin routes.
const (
	RoleCustomer = "customer"
	RoleCleaner  = "cleaner"
	RoleAdmin    = "admin"
)

// User represents an account in the system (customer, cleaner or admin).
// Authentication is delegated to the identity provider; this row carries the
// provider subject and the fields the API needs for authorization.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Subject   string    `gorm:"uniqueIndex;not null" json:"-"` // identity provider user ID ('sub' claim)
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"not null;default:'customer'" json:"role"`
	Profile   *Profile  `gorm:"foreignKey:ID;references:ID" json:"profile,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
