package service

import (
	"context"

	"bulletin/internal/models"
	"bulletin/internal/repository"
)

// TaxonomyService serves the pick-list vocabularies: categories and the
// per-type status options.
type TaxonomyService struct {
	categoryRepo repository.CategoryRepository
	statusRepo   repository.StatusOptionRepository
}

// NewTaxonomyService creates a new TaxonomyService.
func NewTaxonomyService(categoryRepo repository.CategoryRepository, statusRepo repository.StatusOptionRepository) *TaxonomyService {
	return &TaxonomyService{categoryRepo: categoryRepo, statusRepo: statusRepo}
}

// ActiveCategories returns the active categories, name ascending.
func (s *TaxonomyService) ActiveCategories(ctx context.Context) ([]models.CategoryOption, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return models.OptionsFromCategories(categories), nil
}

// ActiveCategoryNames returns just the active category names, name
// ascending.
func (s *TaxonomyService) ActiveCategoryNames(ctx context.Context) ([]string, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}
	return names, nil
}

// ActiveStatuses returns the ordered status vocabulary for a record type.
func (s *TaxonomyService) ActiveStatuses(ctx context.Context, requestType models.RequestType) ([]string, error) {
	if !requestType.Valid() {
		return nil, models.NewValidationError("Type must be Suggestion or Support Request")
	}
	options, err := s.statusRepo.ListActive(ctx, requestType)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(options))
	for _, opt := range options {
		names = append(names, opt.Name)
	}
	return names, nil
}
