package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/belovebe/taskmatch/internal/db"
)

// FiltersRepository provides data access for saved feed preferences.
type FiltersRepository struct {
	db *gorm.DB
}

func NewFiltersRepository(database *gorm.DB) *FiltersRepository {
	return &FiltersRepository{db: database}
}

// GetOrCreate returns the user's saved filters, lazily creating the
// default row on first read.
func (r *FiltersRepository) GetOrCreate(ctx context.Context, userID uint64) (*db.UserFilters, error) {
	row := db.UserFilters{UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, err
	}

	var filters db.UserFilters
	if err := r.db.WithContext(ctx).First(&filters, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &filters, nil
}

// Upsert replaces the user's saved filters wholesale.
func (r *FiltersRepository) Upsert(ctx context.Context, filters *db.UserFilters) error {
	if filters.SelectedCategories == nil {
		filters.SelectedCategories = datatypes.NewJSONSlice([]uint64{})
	}
	if filters.SelectedCountries == nil {
		filters.SelectedCountries = datatypes.NewJSONSlice([]string{})
	}
	if filters.SelectedCities == nil {
		filters.SelectedCities = datatypes.NewJSONSlice([]string{})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_categories", "selected_countries", "selected_cities", "worldwide_mode", "updated_at",
			}),
		}).
		Create(filters).Error
}
