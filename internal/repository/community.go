package repository

import (
	"context"
	"errors"

	"weave/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommunityRepository defines the interface for community data operations.
// Member lifecycle methods take the *gorm.DB they should run against so
// services can hand them a transaction handle.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	GetByName(ctx context.Context, name string) (*models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]*models.Community, error)

	GetMembership(ctx context.Context, communityID, userID uint) (*models.Membership, error)
	AddMember(ctx context.Context, membership *models.Membership) error
	RemoveMember(ctx context.Context, communityID, userID uint) error
	UpdateMemberRole(ctx context.Context, communityID, userID uint, role models.MembershipRole) error
	ListMembers(ctx context.Context, communityID uint, limit, offset int) ([]*models.Membership, error)
	CountAdmins(ctx context.Context, communityID uint) (int64, error)

	// AdjustMemberCount locks the community row and applies delta to the
	// denormalized member_count. Callers run it inside a transaction.
	AdjustMemberCount(ctx context.Context, tx *gorm.DB, communityID uint, delta int) error
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Create(community).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConstraintViolationError("Community name already taken")
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).First(&community, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &community, nil
}

func (r *communityRepository) GetByName(ctx context.Context, name string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &community, nil
}

func (r *communityRepository) Update(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Save(community).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConstraintViolationError("Community name already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Community{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Community", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityRepository) List(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	var communities []*models.Community
	if err := r.db.WithContext(ctx).
		Order("member_count DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

func (r *communityRepository) GetMembership(ctx context.Context, communityID, userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &membership, nil
}

func (r *communityRepository) AddMember(ctx context.Context, membership *models.Membership) error {
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewInvalidEdgeError("Already a member of this community")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityRepository) RemoveMember(ctx context.Context, communityID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Membership", userID)
	}
	return nil
}

func (r *communityRepository) UpdateMemberRole(ctx context.Context, communityID, userID uint, role models.MembershipRole) error {
	res := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Update("role", role)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Membership", userID)
	}
	return nil
}

func (r *communityRepository) ListMembers(ctx context.Context, communityID uint, limit, offset int) ([]*models.Membership, error) {
	var memberships []*models.Membership
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("community_id = ?", communityID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&memberships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return memberships, nil
}

func (r *communityRepository) CountAdmins(ctx context.Context, communityID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("community_id = ? AND role = ?", communityID, models.MembershipRoleAdmin).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *communityRepository) AdjustMemberCount(ctx context.Context, tx *gorm.DB, communityID uint, delta int) error {
	var community models.Community
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&community, communityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Community", communityID)
		}
		return err
	}
	newCount := community.MemberCount + delta
	if newCount < 0 {
		newCount = 0
	}
	return tx.WithContext(ctx).
		Model(&models.Community{}).
		Where("id = ?", communityID).
		Update("member_count", newCount).Error
}
