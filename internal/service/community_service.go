package service

import (
	"context"
	"errors"
	"strings"

	"weave/internal/cache"
	"weave/internal/models"
	"weave/internal/notifications"
	"weave/internal/repository"
	"weave/internal/txn"

	"gorm.io/gorm"
)

// errForcedFailure supports tests that verify composite writes roll back
// cleanly when a later step fails.
var errForcedFailure = errors.New("forced mid-operation failure")

// CommunityService provides community lifecycle and membership management.
type CommunityService struct {
	communityRepo repository.CommunityRepository
	userRepo      repository.UserRepository
	coordinator   *txn.Coordinator
	notifier      *notifications.Notifier
}

// NewCommunityService returns a new CommunityService.
func NewCommunityService(
	communityRepo repository.CommunityRepository,
	userRepo repository.UserRepository,
	coordinator *txn.Coordinator,
	notifier *notifications.Notifier,
) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		userRepo:      userRepo,
		coordinator:   coordinator,
		notifier:      notifier,
	}
}

// CreateWithAdmin creates a community and its creator's admin membership
// as one atomic unit: either both rows persist or neither does. forceFail
// aborts after both writes, for rollback verification.
func (s *CommunityService) CreateWithAdmin(ctx context.Context, creatorID uint, name, description string, isPrivate, forceFail bool) (*models.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Community name is required")
	}
	if _, err := s.userRepo.GetByID(ctx, creatorID); err != nil {
		return nil, err
	}

	community := &models.Community{
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
		IsPrivate:   isPrivate,
		MemberCount: 1,
	}
	err := s.coordinator.Atomic(ctx, func(tx *gorm.DB) error {
		txCommunities := repository.NewCommunityRepository(tx)
		if err := txCommunities.Create(ctx, community); err != nil {
			return err
		}
		if err := txCommunities.AddMember(ctx, &models.Membership{
			CommunityID: community.ID,
			UserID:      creatorID,
			Role:        models.MembershipRoleAdmin,
		}); err != nil {
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

	// Announce new public communities to everyone, best-effort after commit.
	if !community.IsPrivate {
		_ = s.notifier.PublishBroadcast(ctx, notifications.Event{
			Kind:        notifications.EventCommunityCreated,
			ActorID:     creatorID,
			CommunityID: community.ID,
		})
	}
	return community, nil
}

// Join adds userID to a community. The membership row and the denormalized
// member count move together under serializable isolation.
func (s *CommunityService) Join(ctx context.Context, communityID, userID uint) (*models.Membership, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	membership := &models.Membership{
		CommunityID: communityID,
		UserID:      userID,
		Role:        models.MembershipRoleMember,
	}
	err := s.coordinator.Serialized(ctx, "community_join", func(tx *gorm.DB) error {
		txCommunities := repository.NewCommunityRepository(tx)
		if err := txCommunities.AddMember(ctx, membership); err != nil {
			return err
		}
		return s.communityRepo.AdjustMemberCount(ctx, tx, communityID, 1)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateCommunityStats(ctx, communityID)
	return membership, nil
}

// Leave removes userID from a community. The last admin cannot leave.
func (s *CommunityService) Leave(ctx context.Context, communityID, userID uint) error {
	membership, err := s.communityRepo.GetMembership(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return models.NewNotFoundError("Membership", userID)
	}
	if membership.Role == models.MembershipRoleAdmin {
		admins, err := s.communityRepo.CountAdmins(ctx, communityID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return models.NewValidationError("The last admin cannot leave the community")
		}
	}

	err = s.coordinator.Serialized(ctx, "community_leave", func(tx *gorm.DB) error {
		txCommunities := repository.NewCommunityRepository(tx)
		if err := txCommunities.RemoveMember(ctx, communityID, userID); err != nil {
			return err
		}
		return s.communityRepo.AdjustMemberCount(ctx, tx, communityID, -1)
	})
	if err != nil {
		return err
	}
	cache.InvalidateCommunityStats(ctx, communityID)
	return nil
}

// SetMemberRole changes a member's role. Only admins may do this, and an
// admin cannot demote themselves if they are the last one.
func (s *CommunityService) SetMemberRole(ctx context.Context, communityID, actorID, targetID uint, roleName string) error {
	role, err := models.ParseMembershipRole(roleName)
	if err != nil {
		return err
	}

	actor, err := s.communityRepo.GetMembership(ctx, communityID, actorID)
	if err != nil {
		return err
	}
	if actor == nil || actor.Role != models.MembershipRoleAdmin {
		return models.NewUnauthorizedError("Only community admins can change roles")
	}
	if actorID == targetID && role != models.MembershipRoleAdmin {
		admins, err := s.communityRepo.CountAdmins(ctx, communityID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return models.NewValidationError("The last admin cannot give up the admin role")
		}
	}
	return s.communityRepo.UpdateMemberRole(ctx, communityID, targetID, role)
}

// GetCommunity returns a single community.
func (s *CommunityService) GetCommunity(ctx context.Context, communityID uint) (*models.Community, error) {
	return s.communityRepo.GetByID(ctx, communityID)
}

// ListCommunities pages through communities, largest first.
func (s *CommunityService) ListCommunities(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	return s.communityRepo.List(ctx, limit, offset)
}

// ListMembers pages through a community's memberships.
func (s *CommunityService) ListMembers(ctx context.Context, communityID uint, limit, offset int) ([]*models.Membership, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.communityRepo.ListMembers(ctx, communityID, limit, offset)
}
