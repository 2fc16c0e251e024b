package store

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/models"
)

// GetUserByID fetches a user with its profile joined. Missing rows map to
// NOT_FOUND.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.execute(ctx, "get-user-by-id", readRetries, func(tx *gorm.DB) error {
		if err := tx.Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("User not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail fetches a user by its unique email, profile joined.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.execute(ctx, "get-user-by-email", readRetries, func(tx *gorm.DB) error {
		if err := tx.Preload("Profile").First(&user, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("User not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserBySubject fetches a user by its identity-provider subject.
func (s *Store) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	err := s.execute(ctx, "get-user-by-subject", readRetries, func(tx *gorm.DB) error {
		if err := tx.Preload("Profile").First(&user, "subject = ?", subject).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("User not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a user and its empty profile row.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.execute(ctx, "create-user", writeRetries, func(tx *gorm.DB) error {
		err := tx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			return tx.Create(&models.Profile{ID: user.ID}).Error
		})
		if err != nil && isDuplicate(err) {
			return apperrors.New("A user with this email already exists", apperrors.CodeDatabase, http.StatusConflict)
		}
		return err
	})
}

// UpdateUser merges the provided fields into a user row and returns the
// post-update row. Unknown or immutable columns are dropped.
func (s *Store) UpdateUser(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	updates := filterColumns(fields, "email", "role")
	var user models.User
	err := s.execute(ctx, "update-user", writeRetries, func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("User not found")
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.New("A user with this email already exists", apperrors.CodeDatabase, http.StatusConflict)
			}
			return err
		}
		return tx.Preload("Profile").First(&user, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// filterColumns keeps only the allowed column keys of a partial-update map.
func filterColumns(fields map[string]any, allowed ...string) map[string]any {
	updates := make(map[string]any, len(fields))
	for _, col := range allowed {
		if v, ok := fields[col]; ok {
			updates[col] = v
		}
	}
	return updates
}
