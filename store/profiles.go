package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/models"
)

// profileColumns are the columns a partial profile update may touch.
var profileColumns = []string{
	"first_name", "last_name", "phone", "address", "city", "state", "postcode", "metadata",
}

// GetProfileByID fetches a profile. Missing rows map to NOT_FOUND.
func (s *Store) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := s.execute(ctx, "get-profile-by-id", readRetries, func(tx *gorm.DB) error {
		if err := tx.First(&profile, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Profile not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile merges the provided fields into a profile row and returns the
// post-update row. Only provided keys change.
func (s *Store) UpdateProfile(ctx context.Context, id string, fields map[string]any) (*models.Profile, error) {
	updates := filterColumns(fields, profileColumns...)
	var profile models.Profile
	err := s.execute(ctx, "update-profile", writeRetries, func(tx *gorm.DB) error {
		if err := tx.First(&profile, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Profile not found")
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&profile).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&profile, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
