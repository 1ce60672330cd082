// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"bulletin/internal/models"
	"bulletin/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter is the storage-level projection of a board filter payload.
// The service layer resolves owner scopes into the concrete fields here, so
// the repository never has to know about roles.
type RequestFilter struct {
	Type         models.RequestType
	Search       string
	Status       string
	CategoryName string
	OwnerID      *uint // support: match assignee
	Unassigned   bool  // support: assignee IS NULL
	CreatedByID  *uint // suggestions: match submitter
	Limit        int
}

// RequestRepository defines persistence operations for bulletin requests.
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request, categoryIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]models.Request, error)
	Update(ctx context.Context, request *models.Request) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository returns a new RequestRepository implementation.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create persists the request, attaches its categories and assigns the
// sequential display number in one transaction.
func (r *requestRepository) Create(ctx context.Context, request *models.Request, categoryIDs []uint) error {
	defer observability.TrackQuery("create", "requests")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories").Create(request).Error; err != nil {
			return models.NewInternalError(err)
		}

		request.RecordNumber = models.FormatRecordNumber(request.ID)
		if err := tx.Model(request).Update("record_number", request.RecordNumber).Error; err != nil {
			return models.NewInternalError(err)
		}

		if len(categoryIDs) > 0 {
			var categories []models.Category
			if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
				return models.NewInternalError(err)
			}
			if len(categories) != len(categoryIDs) {
				return models.NewValidationError("One or more categories do not exist")
			}
			if err := tx.Model(request).Association("Categories").Replace(categories); err != nil {
				return models.NewInternalError(err)
			}
			request.Categories = categories
		}
		return nil
	})
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.Request, error) {
	defer observability.TrackQuery("get", "requests")()

	var request models.Request
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("CreatedBy").
		Preload("Categories").
		First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Request", id)
		}
		return nil, models.NewInternalError(err)
	}

	if err := r.attachCommentCounts(ctx, []*models.Request{&request}); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]models.Request, error) {
	defer observability.TrackQuery("list", "requests")()

	q := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Preload("Owner").
		Preload("CreatedBy").
		Preload("Categories").
		Where("requests.type = ?", filter.Type)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(requests.title) LIKE ? OR LOWER(requests.description_html) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		q = q.Where("requests.status = ?", filter.Status)
	}
	if filter.CategoryName != "" {
		q = q.Joins("JOIN request_categories rc ON rc.request_id = requests.id").
			Joins("JOIN categories cat ON cat.id = rc.category_id").
			Where("cat.name = ?", filter.CategoryName).
			Distinct("requests.*")
	}
	switch {
	case filter.Unassigned:
		q = q.Where("requests.owner_id IS NULL")
	case filter.OwnerID != nil:
		q = q.Where("requests.owner_id = ?", *filter.OwnerID)
	}
	if filter.CreatedByID != nil {
		q = q.Where("requests.created_by_id = ?", *filter.CreatedByID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var requests []models.Request
	if err := q.Order("requests.updated_at DESC").Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	refs := make([]*models.Request, len(requests))
	for i := range requests {
		refs[i] = &requests[i]
	}
	if err := r.attachCommentCounts(ctx, refs); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Update(ctx context.Context, request *models.Request) error {
	defer observability.TrackQuery("update", "requests")()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(request).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// attachCommentCounts fills the computed CommentCount field with one grouped
// query instead of a count per row.
func (r *requestRepository) attachCommentCounts(ctx context.Context, requests []*models.Request) error {
	if len(requests) == 0 {
		return nil
	}

	ids := make([]uint, len(requests))
	for i, req := range requests {
		ids[i] = req.ID
	}

	type row struct {
		RequestID uint
		Count     int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("request_id, COUNT(*) as count").
		Where("request_id IN ?", ids).
		Group("request_id").
		Scan(&rows).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	counts := make(map[uint]int, len(rows))
	for _, rw := range rows {
		counts[rw.RequestID] = rw.Count
	}
	for _, req := range requests {
		req.CommentCount = counts[req.ID]
	}
	return nil
}
