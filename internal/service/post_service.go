package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"weave/internal/cache"
	"weave/internal/models"
	"weave/internal/notifications"
	"weave/internal/repository"
	"weave/internal/search"
	"weave/internal/txn"

	"gorm.io/gorm"
)

// PostInput is the payload for creating a post.
type PostInput struct {
	Content     string `json:"content"`
	MediaURL    string `json:"media_url"`
	CommunityID *uint  `json:"community_id"`
}

// PostService provides post lifecycle with search indexing and follower
// notification fan-out.
type PostService struct {
	postRepo    repository.PostRepository
	followRepo  repository.FollowRepository
	notifRepo   repository.NotificationRepository
	coordinator *txn.Coordinator
	index       *search.Index
	notifier    *notifications.Notifier
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	notifRepo repository.NotificationRepository,
	coordinator *txn.Coordinator,
	index *search.Index,
	notifier *notifications.Notifier,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		followRepo:  followRepo,
		notifRepo:   notifRepo,
		coordinator: coordinator,
		index:       index,
		notifier:    notifier,
	}
}

func buildPost(authorID uint, input PostInput) (*models.Post, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" && input.MediaURL == "" {
		return nil, models.NewConstraintViolationError("Post requires content or media")
	}
	return &models.Post{
		AuthorID:    authorID,
		CommunityID: input.CommunityID,
		Content:     content,
		MediaURL:    input.MediaURL,
	}, nil
}

// GetPost returns a post with live engagement counts.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// CreatePost persists a post and indexes it for search.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, input PostInput) (*models.Post, error) {
	post, err := buildPost(authorID, input)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.index.IndexPost(post)
	return post, nil
}

// DeletePost removes a post owned by userID and drops it from the index.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	s.index.RemovePost(postID)
	return nil
}

// ShareReport summarizes a committed post fan-out.
type ShareReport struct {
	Post              *models.Post `json:"post"`
	NotificationsSent int          `json:"notifications_sent"`
}

// ShareAndNotify creates a post and its follower notifications as one
// atomic unit, then delivers real-time events after commit. forceFail
// aborts mid-operation so rollback behavior can be verified.
func (s *PostService) ShareAndNotify(ctx context.Context, authorID uint, input PostInput, forceFail bool) (*ShareReport, error) {
	post, err := buildPost(authorID, input)
	if err != nil {
		return nil, err
	}

	followerIDs, err := s.followRepo.AcceptedFollowerIDs(ctx, authorID)
	if err != nil {
		return nil, err
	}

	err = s.coordinator.Atomic(ctx, func(tx *gorm.DB) error {
		if err := repository.NewPostRepository(tx).Create(ctx, post); err != nil {
			return err
		}
		rows := make([]*models.Notification, 0, len(followerIDs))
		for _, id := range followerIDs {
			postID := post.ID
			rows = append(rows, &models.Notification{
				RecipientID: id,
				ActorID:     authorID,
				Kind:        models.NotificationKindNewPost,
				PostID:      &postID,
			})
		}
		if err := repository.NewNotificationRepository(tx).CreateBatch(ctx, rows); err != nil {
			return err
		}
		if forceFail {
			return errForcedFailure
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewInternalError(err)
	}

	s.index.IndexPost(post)
	_ = s.notifier.FanOut(ctx, followerIDs, notifications.Event{
		Kind:    notifications.EventNewPost,
		ActorID: authorID,
		PostID:  post.ID,
	})
	return &ShareReport{Post: post, NotificationsSent: len(followerIDs)}, nil
}

// BatchResult pairs a batch report with the post it created, if any.
type BatchResult struct {
	txn.BatchReport
	PostID uint `json:"post_id,omitempty"`
}

// BatchCreate persists a list of posts with per-item isolation: invalid
// items are reported with their error and leave no partial state. With
// continueOnError the rest of the batch still commits; otherwise items
// after the first failure are skipped.
func (s *PostService) BatchCreate(ctx context.Context, authorID uint, inputs []PostInput, continueOnError bool) ([]BatchResult, error) {
	posts := make([]*models.Post, len(inputs))
	items := make([]txn.BatchItem, len(inputs))
	for i, input := range inputs {
		i, input := i, input
		items[i] = txn.BatchItem{
			Name: fmt.Sprintf("post[%d]", i),
			Run: func(tx *gorm.DB) error {
				post, err := buildPost(authorID, input)
				if err != nil {
					return err
				}
				if err := repository.NewPostRepository(tx).Create(ctx, post); err != nil {
					return err
				}
				posts[i] = post
				return nil
			},
		}
	}

	reports, err := s.coordinator.Batch(ctx, items, continueOnError)
	if err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(reports))
	for i, report := range reports {
		results[i] = BatchResult{BatchReport: report}
		if report.Succeeded && posts[i] != nil {
			results[i].PostID = posts[i].ID
			s.index.IndexPost(posts[i])
		}
	}
	return results, nil
}

// LikePost records a like; duplicates are rejected.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return err
	}
	cache.InvalidateRecommendations(ctx, userID)
	return nil
}

// UnlikePost removes a like.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unlike(ctx, userID, postID)
}
