package repository

import (
	"context"
	"errors"

	"weave/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow-edge data operations.
// Graph traversal and recommendation primitives live here so the analytical
// components never materialize the whole graph.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	GetByPair(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	UpdateStatus(ctx context.Context, followerID, followingID uint, status models.FollowStatus) error
	Delete(ctx context.Context, followerID, followingID uint) error
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	ListPendingRequests(ctx context.Context, userID uint, limit, offset int) ([]models.Follow, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)

	// AcceptedFollowingIDs returns the union of accepted out-neighbors for
	// the given users: one frontier hop in a single query.
	AcceptedFollowingIDs(ctx context.Context, userIDs []uint) ([]uint, error)
	// AcceptedFollowerIDs returns everyone accept-following userID,
	// the fan-out audience for that user's new posts.
	AcceptedFollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	// AcceptedNeighborIDs returns the accepted 1-hop friend set of a user,
	// treating edges as undirected.
	AcceptedNeighborIDs(ctx context.Context, userID uint) ([]uint, error)
	// CountAcceptedFollowers returns accepted follower counts keyed by user id.
	CountAcceptedFollowers(ctx context.Context, userIDs []uint) (map[uint]int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewInvalidEdgeError("Follow relationship already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) GetByPair(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No edge exists
		}
		return nil, models.NewInternalError(err)
	}
	return &follow, nil
}

func (r *followRepository) UpdateStatus(ctx context.Context, followerID, followingID uint, status models.FollowStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", followerID)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows f ON users.id = f.follower_id").
		Where("f.following_id = ? AND f.status = ?", userID, models.FollowStatusAccepted).
		Order("f.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows f ON users.id = f.following_id").
		Where("f.follower_id = ? AND f.status = ?", userID, models.FollowStatusAccepted).
		Order("f.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) ListPendingRequests(ctx context.Context, userID uint, limit, offset int) ([]models.Follow, error) {
	var follows []models.Follow
	if err := r.db.WithContext(ctx).
		Where("following_id = ? AND status = ?", userID, models.FollowStatusPending).
		Preload("Follower").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&follows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) AcceptedFollowingIDs(ctx context.Context, userIDs []uint) ([]uint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Distinct("following_id").
		Where("follower_id IN ? AND status = ?", userIDs, models.FollowStatusAccepted).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) AcceptedFollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) AcceptedNeighborIDs(ctx context.Context, userID uint) ([]uint, error) {
	var edges []models.Follow
	if err := r.db.WithContext(ctx).
		Where("(follower_id = ? OR following_id = ?) AND status = ?",
			userID, userID, models.FollowStatusAccepted).
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	seen := make(map[uint]struct{}, len(edges))
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		other := e.FollowerID
		if other == userID {
			other = e.FollowingID
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}

func (r *followRepository) CountAcceptedFollowers(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	type row struct {
		FollowingID uint
		Total       int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Select("following_id, COUNT(*) AS total").
		Where("following_id IN ? AND status = ?", userIDs, models.FollowStatusAccepted).
		Group("following_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, r := range rows {
		counts[r.FollowingID] = r.Total
	}
	return counts, nil
}
