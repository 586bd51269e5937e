package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/belovebe/taskmatch/internal/db"
)

// ProfileUpdate is a partial profile patch. Nil fields are untouched.
type ProfileUpdate struct {
	DisplayName       *string
	Birthdate         *time.Time
	Gender            *string
	GenderPreferences []string
	Bio               *string
	Country           *string
	City              *string
	Lat               *float64
	Lng               *float64
	PreferredCountry  *string
	PreferredCity     *string
}

// ProfileRepository provides data access for discovery profiles.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetByUserID loads a profile with approved photos.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uint64) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).
		Preload("Photos", "moderated_status = ?", db.PhotoApproved).
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert applies a partial patch, creating the profile row when it is
// missing. The row normally exists already (created with the user), so
// the create path only matters for legacy rows.
func (r *ProfileRepository) Upsert(ctx context.Context, userID uint64, patch ProfileUpdate) (*db.Profile, error) {
	updates := map[string]any{}
	if patch.DisplayName != nil {
		updates["display_name"] = *patch.DisplayName
	}
	if patch.Birthdate != nil {
		updates["birthdate"] = *patch.Birthdate
	}
	if patch.Gender != nil {
		updates["gender"] = *patch.Gender
	}
	if patch.GenderPreferences != nil {
		updates["gender_preferences"] = datatypes.NewJSONSlice(patch.GenderPreferences)
	}
	if patch.Bio != nil {
		updates["bio"] = *patch.Bio
	}
	if patch.Country != nil {
		updates["country"] = *patch.Country
	}
	if patch.City != nil {
		updates["city"] = *patch.City
	}
	if patch.Lat != nil {
		updates["lat"] = *patch.Lat
	}
	if patch.Lng != nil {
		updates["lng"] = *patch.Lng
	}
	if patch.PreferredCountry != nil {
		updates["preferred_country"] = *patch.PreferredCountry
	}
	if patch.PreferredCity != nil {
		updates["preferred_city"] = *patch.PreferredCity
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := db.Profile{UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&db.Profile{}).Where("user_id = ?", userID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetByUserID(ctx, userID)
}
