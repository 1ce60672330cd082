package repository

import (
	"context"

	"bulletin/internal/models"
	"bulletin/internal/observability"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for the category set.
type CategoryRepository interface {
	ListActive(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}

// StatusOptionRepository serves the administered status vocabulary.
type StatusOptionRepository interface {
	ListActive(ctx context.Context, requestType models.RequestType) ([]models.StatusOption, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	defer observability.TrackQuery("list", "categories")()

	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name asc").
		Find(&categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	defer observability.TrackQuery("create", "categories")()

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

type statusOptionRepository struct {
	db *gorm.DB
}

// NewStatusOptionRepository returns a new StatusOptionRepository implementation.
func NewStatusOptionRepository(db *gorm.DB) StatusOptionRepository {
	return &statusOptionRepository{db: db}
}

func (r *statusOptionRepository) ListActive(ctx context.Context, requestType models.RequestType) ([]models.StatusOption, error) {
	defer observability.TrackQuery("list", "status_options")()

	var options []models.StatusOption
	err := r.db.WithContext(ctx).
		Where("type = ? AND active = ?", requestType, true).
		Order("position asc").
		Find(&options).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return options, nil
}
