package service

import (
	"context"

	"bulletin/internal/models"
	"bulletin/internal/repository"
)

// ContextService resolves the per-user board context: role flag plus the
// owner and submitter rosters the filter panel needs.
type ContextService struct {
	userRepo repository.UserRepository
}

// NewContextService creates a new ContextService.
func NewContextService(userRepo repository.UserRepository) *ContextService {
	return &ContextService{userRepo: userRepo}
}

// GetContext returns the calling user's board context in one round trip.
func (s *ContextService) GetContext(ctx context.Context, userID uint) (*models.BulletinContext, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	return &models.BulletinContext{
		IsAdmin:       user.IsAdmin,
		AdminUsers:    models.OptionsFromUsers(admins),
		BulletinUsers: models.OptionsFromUsers(active),
	}, nil
}

// SupportOwnerOptions returns the assignable-owner roster, admins only.
func (s *ContextService) SupportOwnerOptions(ctx context.Context) ([]models.UserOption, error) {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	return models.OptionsFromUsers(admins), nil
}

// IsAdmin reports whether a user holds the admin role. It is the capability
// check injected into the other services.
func (s *ContextService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
