// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"weave/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
	// bounds the backdating spread applied to generated content
	maxDays int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, maxDays int) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		db:      db,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		maxDays: maxDays,
	}
}

// backdate returns a timestamp spread over the factory's day window so
// recency-sensitive features (feeds, popularity windows) have realistic input.
func (f *Factory) backdate() time.Time {
	daysBack := f.rand.Intn(f.maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Bio:       gofakeit.Sentence(10),
		IsPrivate: f.rand.Intn(5) == 0, // roughly one in five accounts is private
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post without persisting it. Useful for batching.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		AuthorID:  author.ID,
		Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
		CreatedAt: f.backdate(),
	}
	if f.rand.Intn(4) == 0 {
		post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment persists a comment, optionally nested under a parent.
func (f *Factory) CreateComment(author *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  gofakeit.Sentence(gofakeit.Number(5, 15)),
	}
	if parent != nil {
		comment.ParentCommentID = &parent.ID
		comment.CreatedAt = parent.CreatedAt.Add(time.Duration(f.rand.Intn(120)+1) * time.Minute)
	} else {
		comment.CreatedAt = post.CreatedAt.Add(time.Duration(f.rand.Intn(600)+1) * time.Minute)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow persists a follow edge with the given status.
func (f *Factory) CreateFollow(follower, following *models.User, status models.FollowStatus) (*models.Follow, error) {
	follow := &models.Follow{
		FollowerID:  follower.ID,
		FollowingID: following.ID,
		Status:      status,
	}
	if err := f.db.Create(follow).Error; err != nil {
		return nil, err
	}
	return follow, nil
}

// CreateLike persists a like edge.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	return f.db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error
}

// CreateCommunity persists a community with its creator's admin membership,
// mirroring the production creation path.
func (f *Factory) CreateCommunity(creator *models.User, overrides ...func(*models.Community)) (*models.Community, error) {
	community := &models.Community{
		Name:        fmt.Sprintf("%s-%s", gofakeit.Adjective(), gofakeit.NounAbstract()),
		Description: gofakeit.Sentence(12),
		CreatorID:   creator.ID,
		MemberCount: 1,
	}

	for _, override := range overrides {
		override(community)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		return tx.Create(&models.Membership{
			CommunityID: community.ID,
			UserID:      creator.ID,
			Role:        models.MembershipRoleAdmin,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return community, nil
}

// AddMember persists a membership and bumps the denormalized member count.
func (f *Factory) AddMember(community *models.Community, user *models.User, role models.MembershipRole) error {
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Membership{
			CommunityID: community.ID,
			UserID:      user.ID,
			Role:        role,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Community{}).Where("id = ?", community.ID).
			Update("member_count", gorm.Expr("member_count + 1")).Error
	})
}
