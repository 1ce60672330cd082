// Package board implements the client-side state machine of the bulletin
// board: tab and filter state, list refresh, the detail panel and the
// submission modal. It talks to the record service only through the Service
// interface, so it can be driven against the in-process services or any
// remote transport.
package board

import (
	"context"

	"bulletin/internal/models"
	"bulletin/internal/service"
)

// Service is the board's view of the record service. Identity is implicit:
// an implementation acts on behalf of one user.
type Service interface {
	GetContext(ctx context.Context) (*models.BulletinContext, error)
	ActiveCategories(ctx context.Context) ([]models.CategoryOption, error)
	ActiveStatuses(ctx context.Context, requestType models.RequestType) ([]string, error)
	ListRequests(ctx context.Context, requestType models.RequestType, filters Filters) ([]models.Request, error)
	GetRequest(ctx context.Context, id uint) (*models.Request, error)
	CreateRequest(ctx context.Context, requestType models.RequestType, title, bodyHTML string, categoryIDs []uint) (*models.Request, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Request, error)
	UpdateDescription(ctx context.Context, id uint, bodyHTML string) (*models.Request, error)
	UpdateOwner(ctx context.Context, id uint, ownerID *uint) (*models.Request, error)
	ListComments(ctx context.Context, requestID uint) ([]models.Comment, error)
	CreateComment(ctx context.Context, requestID uint, body string) (*models.Comment, error)
	SupportOwnerOptions(ctx context.Context) ([]models.UserOption, error)
}

// Adapter satisfies Service against the in-process service layer on behalf
// of a fixed user.
type Adapter struct {
	userID   uint
	requests *service.RequestService
	comments *service.CommentService
	taxonomy *service.TaxonomyService
	contexts *service.ContextService
}

// NewAdapter creates a Service bound to the given user.
func NewAdapter(
	userID uint,
	requests *service.RequestService,
	comments *service.CommentService,
	taxonomy *service.TaxonomyService,
	contexts *service.ContextService,
) *Adapter {
	return &Adapter{
		userID:   userID,
		requests: requests,
		comments: comments,
		taxonomy: taxonomy,
		contexts: contexts,
	}
}

func (a *Adapter) GetContext(ctx context.Context) (*models.BulletinContext, error) {
	return a.contexts.GetContext(ctx, a.userID)
}

func (a *Adapter) ActiveCategories(ctx context.Context) ([]models.CategoryOption, error) {
	return a.taxonomy.ActiveCategories(ctx)
}

func (a *Adapter) ActiveStatuses(ctx context.Context, requestType models.RequestType) ([]string, error) {
	return a.taxonomy.ActiveStatuses(ctx, requestType)
}

func (a *Adapter) ListRequests(ctx context.Context, requestType models.RequestType, filters Filters) ([]models.Request, error) {
	in := service.ListInput{
		Search:       filters.Search,
		Status:       filters.Status,
		CategoryName: filters.CategoryName,
		OwnerScope:   filters.OwnerScope,
		PageSize:     filters.PageSize,
	}
	if requestType == models.TypeSupport {
		return a.requests.ListSupportTickets(ctx, a.userID, in)
	}
	return a.requests.ListSuggestions(ctx, a.userID, in)
}

func (a *Adapter) GetRequest(ctx context.Context, id uint) (*models.Request, error) {
	return a.requests.Get(ctx, id)
}

func (a *Adapter) CreateRequest(ctx context.Context, requestType models.RequestType, title, bodyHTML string, categoryIDs []uint) (*models.Request, error) {
	return a.requests.Create(ctx, service.CreateRequestInput{
		UserID:      a.userID,
		Type:        requestType,
		Title:       title,
		BodyHTML:    bodyHTML,
		CategoryIDs: categoryIDs,
	})
}

func (a *Adapter) UpdateStatus(ctx context.Context, id uint, status string) (*models.Request, error) {
	return a.requests.UpdateStatus(ctx, a.userID, id, status)
}

func (a *Adapter) UpdateDescription(ctx context.Context, id uint, bodyHTML string) (*models.Request, error) {
	return a.requests.UpdateDescription(ctx, a.userID, id, bodyHTML)
}

func (a *Adapter) UpdateOwner(ctx context.Context, id uint, ownerID *uint) (*models.Request, error) {
	return a.requests.UpdateOwner(ctx, a.userID, id, ownerID)
}

func (a *Adapter) ListComments(ctx context.Context, requestID uint) ([]models.Comment, error) {
	return a.comments.ListByRequest(ctx, requestID)
}

func (a *Adapter) CreateComment(ctx context.Context, requestID uint, body string) (*models.Comment, error) {
	return a.comments.Create(ctx, service.CreateCommentInput{
		UserID:    a.userID,
		RequestID: requestID,
		Body:      body,
	})
}

func (a *Adapter) SupportOwnerOptions(ctx context.Context) ([]models.UserOption, error) {
	return a.contexts.SupportOwnerOptions(ctx)
}
