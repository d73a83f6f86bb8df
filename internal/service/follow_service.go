// Package service contains the business logic layered between handlers
// and repositories.
package service

import (
	"context"

	"weave/internal/graph"
	"weave/internal/models"
	"weave/internal/notifications"
	"weave/internal/repository"
)

// FollowService provides follow-edge lifecycle and social-graph queries.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifRepo  repository.NotificationRepository
	walker     *graph.Walker
	notifier   *notifications.Notifier
}

// NewFollowService returns a new FollowService.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	walker *graph.Walker,
	notifier *notifications.Notifier,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifRepo:  notifRepo,
		walker:     walker,
		notifier:   notifier,
	}
}

// SendFollowRequest creates a follow edge toward the target user. Public
// accounts are followed immediately; private accounts get a pending
// request. A previously rejected request stays rejected.
func (s *FollowService) SendFollowRequest(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	if followerID == followingID {
		return nil, models.NewInvalidEdgeError("Cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, followingID)
	if err != nil {
		return nil, err
	}

	existing, err := s.followRepo.GetByPair(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FollowStatusAccepted:
			return nil, models.NewValidationError("You are already following this user")
		case models.FollowStatusPending:
			return nil, models.NewValidationError("Follow request already sent")
		default:
			return nil, models.NewValidationError("Follow request was declined")
		}
	}

	status := models.FollowStatusAccepted
	if target.IsPrivate {
		status = models.FollowStatusPending
	}
	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      status,
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		return nil, err
	}

	if status == models.FollowStatusPending {
		_ = s.notifRepo.Create(ctx, &models.Notification{
			RecipientID: followingID,
			ActorID:     followerID,
			Kind:        models.NotificationKindFollowRequest,
		})
		_ = s.notifier.PublishUser(ctx, followingID, notifications.Event{
			Kind:    notifications.EventFollowRequest,
			ActorID: followerID,
		})
	}
	return follow, nil
}

// AcceptFollowRequest accepts a pending request addressed to userID.
func (s *FollowService) AcceptFollowRequest(ctx context.Context, userID, followerID uint) (*models.Follow, error) {
	follow, err := s.pendingRequestFor(ctx, userID, followerID)
	if err != nil {
		return nil, err
	}

	if err := s.followRepo.UpdateStatus(ctx, followerID, userID, models.FollowStatusAccepted); err != nil {
		return nil, err
	}
	follow.Status = models.FollowStatusAccepted

	_ = s.notifier.PublishUser(ctx, followerID, notifications.Event{
		Kind:    notifications.EventFollowAccept,
		ActorID: userID,
	})
	return follow, nil
}

// RejectFollowRequest declines a pending request. The rejection is
// terminal: the same follower cannot re-request.
func (s *FollowService) RejectFollowRequest(ctx context.Context, userID, followerID uint) (*models.Follow, error) {
	follow, err := s.pendingRequestFor(ctx, userID, followerID)
	if err != nil {
		return nil, err
	}

	if err := s.followRepo.UpdateStatus(ctx, followerID, userID, models.FollowStatusRejected); err != nil {
		return nil, err
	}
	follow.Status = models.FollowStatusRejected
	return follow, nil
}

func (s *FollowService) pendingRequestFor(ctx context.Context, userID, followerID uint) (*models.Follow, error) {
	follow, err := s.followRepo.GetByPair(ctx, followerID, userID)
	if err != nil {
		return nil, err
	}
	if follow == nil {
		return nil, models.NewNotFoundError("Follow request", followerID)
	}
	if follow.Status != models.FollowStatusPending {
		return nil, models.NewValidationError("Follow request is not pending")
	}
	return follow, nil
}

// Unfollow removes an accepted or pending edge from userID to targetID.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uint) error {
	follow, err := s.followRepo.GetByPair(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if follow == nil {
		return models.NewNotFoundError("Follow", targetID)
	}
	return s.followRepo.Delete(ctx, userID, targetID)
}

// GetSocialDistance returns the shortest accepted-follow path length from
// fromID to toID; found is false when no path exists within the bound.
func (s *FollowService) GetSocialDistance(ctx context.Context, fromID, toID uint) (int, bool, error) {
	if _, err := s.userRepo.GetByID(ctx, fromID); err != nil {
		return 0, false, err
	}
	if fromID != toID {
		if _, err := s.userRepo.GetByID(ctx, toID); err != nil {
			return 0, false, err
		}
	}
	return s.walker.Distance(ctx, fromID, toID)
}

// GetFollowers lists accepted followers of a user.
func (s *FollowService) GetFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followRepo.ListFollowers(ctx, userID, limit, offset)
}

// GetFollowing lists users a user accept-follows.
func (s *FollowService) GetFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followRepo.ListFollowing(ctx, userID, limit, offset)
}

// GetPendingRequests lists follow requests awaiting the user's decision.
func (s *FollowService) GetPendingRequests(ctx context.Context, userID uint, limit, offset int) ([]models.Follow, error) {
	return s.followRepo.ListPendingRequests(ctx, userID, limit, offset)
}
