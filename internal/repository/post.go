package repository

import (
	"context"
	"errors"
	"time"

	"weave/internal/cache"
	"weave/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)

	// FeedForUser returns posts authored by users the viewer accept-follows,
	// newest first, decorated with live like/comment counts.
	FeedForUser(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error)
	// ListWithEngagement returns posts with live counts, optionally restricted
	// to posts created after since. Ordering is left to the ranking layer.
	ListWithEngagement(ctx context.Context, since *time.Time, limit int) ([]*models.Post, error)
	ListByCommunity(ctx context.Context, communityID uint, limit, offset int) ([]*models.Post, error)

	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
	CountByAuthorSince(ctx context.Context, authorID uint, since time.Time) (int64, error)
	CountByCommunitySince(ctx context.Context, communityID uint, since time.Time) (int64, error)

	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	CountLikesByUserSince(ctx context.Context, userID uint, since time.Time) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withEngagement selects posts plus live like/comment counts into the
// non-persisted LikesCount/CommentsCount fields.
func (r *postRepository) withEngagement(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select(`posts.*,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count`)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateFeeds(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withEngagement(r.db.WithContext(ctx)).
		Preload("Author").
		First(&post, "posts.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidateFeeds(ctx)
	return nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withEngagement(r.db.WithContext(ctx)).
		Where("posts.author_id = ?", authorID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) FeedForUser(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withEngagement(r.db.WithContext(ctx)).
		Preload("Author").
		Joins("JOIN follows f ON f.following_id = posts.author_id").
		Where("f.follower_id = ? AND f.status = ?", viewerID, models.FollowStatusAccepted).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListWithEngagement(ctx context.Context, since *time.Time, limit int) ([]*models.Post, error) {
	q := r.withEngagement(r.db.WithContext(ctx)).Preload("Author")
	if since != nil {
		q = q.Where("posts.created_at >= ?", *since)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var posts []*models.Post
	if err := q.Order("posts.created_at DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByCommunity(ctx context.Context, communityID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withEngagement(r.db.WithContext(ctx)).
		Where("posts.community_id = ?", communityID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	type row struct {
		AuthorID uint
		Total    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, r := range rows {
		counts[r.AuthorID] = r.Total
	}
	return counts, nil
}

func (r *postRepository) CountByAuthorSince(ctx context.Context, authorID uint, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ? AND created_at >= ?", authorID, since).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountByCommunitySince(ctx context.Context, communityID uint, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("community_id = ? AND created_at >= ?", communityID, since).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	var existing models.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&existing).Error
	if err == nil {
		return models.NewInvalidEdgeError("Post already liked")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewInternalError(err)
	}

	if err := r.db.WithContext(ctx).Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewInvalidEdgeError("Post already liked")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateFeeds(ctx)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Like", postID)
	}
	cache.InvalidateFeeds(ctx)
	return nil
}

func (r *postRepository) CountLikesByUserSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
