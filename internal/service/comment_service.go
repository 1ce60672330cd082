package service

import (
	"context"
	"strings"

	"bulletin/internal/models"
	"bulletin/internal/observability"
	"bulletin/internal/repository"
)

const maxCommentLength = 10000

// CreateCommentInput carries a new comment submission.
type CreateCommentInput struct {
	UserID    uint
	RequestID uint
	Body      string
}

// CommentService implements the append-only comment thread on a record.
type CommentService struct {
	commentRepo repository.CommentRepository
	requestRepo repository.RequestRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, requestRepo repository.RequestRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, requestRepo: requestRepo}
}

// Create appends a comment to a record's thread. Any authenticated user may
// comment on any record.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Comment body is required")
	}
	if len(body) > maxCommentLength {
		return nil, models.NewValidationError("Comment is too long")
	}

	if _, err := s.requestRepo.GetByID(ctx, in.RequestID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		RequestID: in.RequestID,
		AuthorID:  in.UserID,
		Body:      body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	observability.CommentsPosted.Inc()
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListByRequest returns a record's comments oldest first.
func (s *CommentService) ListByRequest(ctx context.Context, requestID uint) ([]models.Comment, error) {
	if _, err := s.requestRepo.GetByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByRequest(ctx, requestID)
}
