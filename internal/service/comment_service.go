package service

import (
	"context"
	"strings"

	"weave/internal/models"
	"weave/internal/repository"
	"weave/internal/thread"
)

// CommentService provides comment creation and thread reconstruction.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	builder     *thread.Builder
}

// NewCommentService returns a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, builder *thread.Builder) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		builder:     builder,
	}
}

// CreateComment adds a comment, optionally as a reply. Replies must target
// a comment on the same post; the repository enforces that edge.
func (s *CommentService) CreateComment(ctx context.Context, authorID, postID uint, parentID *uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewConstraintViolationError("Comment content is required")
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:          postID,
		AuthorID:        authorID,
		ParentCommentID: parentID,
		Content:         content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment owned by userID.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// GetThread reconstructs the full nested comment tree of a post.
func (s *CommentService) GetThread(ctx context.Context, postID uint) ([]thread.Node, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.builder.Thread(ctx, postID)
}

// GetAncestors returns the parent chain of a comment, root first.
func (s *CommentService) GetAncestors(ctx context.Context, commentID uint) ([]thread.Ancestor, error) {
	return s.builder.Ancestors(ctx, commentID)
}
