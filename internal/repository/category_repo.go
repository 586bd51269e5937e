package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/belovebe/taskmatch/internal/db"
)

// CategoryRepository reads the fixed category reference data.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(database *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: database}
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]db.Category, error) {
	var categories []db.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// Exists reports whether a category id resolves.
func (r *CategoryRepository) Exists(ctx context.Context, categoryID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Category{}).
		Where("id = ?", categoryID).
		Count(&count).Error
	return count > 0, err
}
