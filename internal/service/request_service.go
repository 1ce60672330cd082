// Package service contains the business logic for the bulletin board:
// validation, role gating and workflow rules sit here, between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"strconv"
	"strings"

	"bulletin/internal/models"
	"bulletin/internal/observability"
	"bulletin/internal/repository"
	"bulletin/internal/richtext"
)

// Owner scope values accepted in list filter payloads. A specific user is
// addressed as "USER:<id>".
const (
	ScopeAny        = "ANY"
	ScopeMe         = "ME"
	ScopeUnassigned = "UNASSIGNED"
	scopeUserPrefix = "USER:"
)

// DefaultPageSize is the fixed page size for list queries; client-supplied
// values are ignored.
const DefaultPageSize = 50

// ListInput is the filter payload accepted by the list operations.
type ListInput struct {
	Search       string `json:"search"`
	Status       string `json:"status"`
	CategoryName string `json:"category_name"`
	OwnerScope   string `json:"owner_scope"`
	PageSize     int    `json:"page_size"`
}

// CreateRequestInput carries a new record submission.
type CreateRequestInput struct {
	UserID      uint
	Type        models.RequestType
	Title       string
	BodyHTML    string
	CategoryIDs []uint
}

// RequestService implements record listing, creation and triage edits.
type RequestService struct {
	requestRepo repository.RequestRepository
	statusRepo  repository.StatusOptionRepository
	userRepo    repository.UserRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requestRepo repository.RequestRepository,
	statusRepo repository.StatusOptionRepository,
	userRepo repository.UserRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		statusRepo:  statusRepo,
		userRepo:    userRepo,
		isAdmin:     isAdmin,
	}
}

// ListSuggestions returns suggestion records matching the filters. Owner
// scope selects by submitter and is honored for every caller.
func (s *RequestService) ListSuggestions(ctx context.Context, userID uint, in ListInput) ([]models.Request, error) {
	filter := repository.RequestFilter{
		Type:         models.TypeSuggestion,
		Search:       in.Search,
		Status:       in.Status,
		CategoryName: in.CategoryName,
		Limit:        normalizePageSize(in.PageSize),
	}

	switch scope, scopedID := parseOwnerScope(in.OwnerScope); scope {
	case ScopeMe:
		filter.CreatedByID = &userID
	case scopeUserPrefix:
		filter.CreatedByID = scopedID
	}

	return s.requestRepo.List(ctx, filter)
}

// ListSupportTickets returns support records matching the filters. Owner
// scope selects by assignee and is only honored for admins; for everyone
// else it is forced to ANY server-side.
func (s *RequestService) ListSupportTickets(ctx context.Context, userID uint, in ListInput) ([]models.Request, error) {
	filter := repository.RequestFilter{
		Type:         models.TypeSupport,
		Search:       in.Search,
		Status:       in.Status,
		CategoryName: in.CategoryName,
		Limit:        normalizePageSize(in.PageSize),
	}

	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if admin {
		switch scope, scopedID := parseOwnerScope(in.OwnerScope); scope {
		case ScopeMe:
			filter.OwnerID = &userID
		case ScopeUnassigned:
			filter.Unassigned = true
		case scopeUserPrefix:
			filter.OwnerID = scopedID
		}
	}

	return s.requestRepo.List(ctx, filter)
}

// Get returns a single record with its categories, owner and submitter.
func (s *RequestService) Get(ctx context.Context, id uint) (*models.Request, error) {
	return s.requestRepo.GetByID(ctx, id)
}

// Create validates and persists a new record. A blank title is derived from
// the body; the initial status is the first entry of the type's vocabulary.
func (s *RequestService) Create(ctx context.Context, in CreateRequestInput) (*models.Request, error) {
	if !in.Type.Valid() {
		return nil, models.NewValidationError("Type must be Suggestion or Support Request")
	}
	if len(in.CategoryIDs) == 0 {
		return nil, models.NewValidationError("Select at least one category")
	}
	if richtext.Blank(in.BodyHTML) {
		return nil, models.NewValidationError("Description is required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = richtext.DeriveTitle(in.BodyHTML)
	}

	status, err := s.initialStatus(ctx, in.Type)
	if err != nil {
		return nil, err
	}

	request := &models.Request{
		Type:            in.Type,
		Title:           title,
		DescriptionHTML: in.BodyHTML,
		Status:          status,
		CreatedByID:     in.UserID,
	}
	if err := s.requestRepo.Create(ctx, request, in.CategoryIDs); err != nil {
		return nil, err
	}

	observability.RequestsCreated.WithLabelValues(string(in.Type)).Inc()
	return s.requestRepo.GetByID(ctx, request.ID)
}

// UpdateStatus moves a record through its workflow. Admin only; the new
// status must belong to the active vocabulary for the record's type.
func (s *RequestService) UpdateStatus(ctx context.Context, userID, id uint, status string) (*models.Request, error) {
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewUnauthorizedError("Only admins can change the status")
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	known, err := s.statusKnown(ctx, request.Type, status)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, models.NewValidationError("Unknown status for this record type")
	}

	request.Status = status
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	return s.requestRepo.GetByID(ctx, id)
}

// UpdateDescription replaces the rich-text body. Admins and the original
// submitter may edit.
func (s *RequestService) UpdateDescription(ctx context.Context, userID, id uint, bodyHTML string) (*models.Request, error) {
	if richtext.Blank(bodyHTML) {
		return nil, models.NewValidationError("Description is required")
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !admin && request.CreatedByID != userID {
		return nil, models.NewUnauthorizedError("Only admins or the submitter can edit the description")
	}

	request.DescriptionHTML = bodyHTML
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	return s.requestRepo.GetByID(ctx, id)
}

// UpdateOwner assigns or clears the assignee of a Support Request. Admin
// only; the new owner must be on the admin roster.
func (s *RequestService) UpdateOwner(ctx context.Context, userID, id uint, ownerID *uint) (*models.Request, error) {
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewUnauthorizedError("Only admins can assign an owner")
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Type != models.TypeSupport {
		return nil, models.NewValidationError("Only Support Requests have an owner")
	}

	if ownerID != nil {
		owner, err := s.userRepo.GetByID(ctx, *ownerID)
		if err != nil {
			return nil, err
		}
		if !owner.IsAdmin {
			return nil, models.NewValidationError("Owner must be on the admin roster")
		}
	}

	request.OwnerID = ownerID
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	return s.requestRepo.GetByID(ctx, id)
}

func (s *RequestService) initialStatus(ctx context.Context, requestType models.RequestType) (string, error) {
	options, err := s.statusRepo.ListActive(ctx, requestType)
	if err != nil {
		return "", err
	}
	if len(options) == 0 {
		return "", models.NewInternalError(nil)
	}
	return options[0].Name, nil
}

func (s *RequestService) statusKnown(ctx context.Context, requestType models.RequestType, status string) (bool, error) {
	options, err := s.statusRepo.ListActive(ctx, requestType)
	if err != nil {
		return false, err
	}
	for _, opt := range options {
		if opt.Name == status {
			return true, nil
		}
	}
	return false, nil
}

func normalizePageSize(size int) int {
	if size <= 0 || size > 200 {
		return DefaultPageSize
	}
	return size
}

// parseOwnerScope splits a scope value into its kind and, for USER:<id>,
// the referenced user. Unknown values mean ANY.
func parseOwnerScope(scope string) (string, *uint) {
	switch scope {
	case ScopeMe:
		return ScopeMe, nil
	case ScopeUnassigned:
		return ScopeUnassigned, nil
	}
	if rest, ok := strings.CutPrefix(scope, scopeUserPrefix); ok {
		if parsed, err := strconv.ParseUint(rest, 10, 32); err == nil && parsed > 0 {
			id := uint(parsed)
			return scopeUserPrefix, &id
		}
	}
	return ScopeAny, nil
}
