// Package profile covers the caller's own data: account with profile,
// profile patches, and saved feed filters.
package profile

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/repository"
)

type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	filters  *repository.FiltersRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		profiles: repository.NewProfileRepository(appCtx.DB),
		filters:  repository.NewFiltersRepository(appCtx.DB),
	}
}

// Me returns the caller's account with profile and photos.
func (s *Service) Me(ctx context.Context, userID uint64) (*db.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// Update applies a partial profile patch and returns the fresh profile.
func (s *Service) Update(ctx context.Context, userID uint64, patch repository.ProfileUpdate) (*db.Profile, error) {
	profile, err := s.profiles.Upsert(ctx, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// Filters returns the caller's saved feed preferences, creating the
// default row on first read.
func (s *Service) Filters(ctx context.Context, userID uint64) (*db.UserFilters, error) {
	filters, err := s.filters.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load filters: %w", err)
	}
	return filters, nil
}

// SaveFilters replaces the caller's saved feed preferences.
func (s *Service) SaveFilters(ctx context.Context, userID uint64, categories []uint64, countries, cities []string, worldwide bool) (*db.UserFilters, error) {
	row := &db.UserFilters{
		UserID:             userID,
		SelectedCategories: datatypes.NewJSONSlice(categories),
		SelectedCountries:  datatypes.NewJSONSlice(countries),
		SelectedCities:     datatypes.NewJSONSlice(cities),
		WorldwideMode:      worldwide,
	}
	if err := s.filters.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("save filters: %w", err)
	}
	return s.filters.GetOrCreate(ctx, userID)
}
