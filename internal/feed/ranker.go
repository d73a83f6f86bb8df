// Package feed composes timelines and popularity rankings over posts.
package feed

import (
	"context"
	"sort"
	"time"

	"weave/internal/models"
)

// PostSource is the slice of post storage the ranker reads.
type PostSource interface {
	FeedForUser(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error)
	ListWithEngagement(ctx context.Context, since *time.Time, limit int) ([]*models.Post, error)
	CountByAuthorSince(ctx context.Context, authorID uint, since time.Time) (int64, error)
	CountByCommunitySince(ctx context.Context, communityID uint, since time.Time) (int64, error)
	CountLikesByUserSince(ctx context.Context, userID uint, since time.Time) (int64, error)
}

// CommentCounter reports comment activity per author.
type CommentCounter interface {
	CountByAuthorSince(ctx context.Context, authorID uint, since time.Time) (int64, error)
}

// CommunitySource provides community rows for stats reports.
type CommunitySource interface {
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	List(ctx context.Context, limit, offset int) ([]*models.Community, error)
}

// ActivityLevel is the three-step classification of rolling activity.
type ActivityLevel string

const (
	ActivityActive   ActivityLevel = "active"
	ActivityModerate ActivityLevel = "moderate"
	ActivityInactive ActivityLevel = "inactive"
)

// FeedItem is one post in a user's timeline.
type FeedItem struct {
	PostID       uint      `json:"post_id"`
	AuthorID     uint      `json:"author_id"`
	Content      string    `json:"content"`
	MediaURL     string    `json:"media_url,omitempty"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// PopularItem is one post in the engagement ranking.
type PopularItem struct {
	PostID          uint      `json:"post_id"`
	AuthorID        uint      `json:"author_id"`
	Content         string    `json:"content"`
	LikeCount       int64     `json:"like_count"`
	CommentCount    int64     `json:"comment_count"`
	EngagementScore int64     `json:"engagement_score"`
	IsRecent        bool      `json:"is_recent"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserActivity is the rolling 7/30-day activity report for a user.
type UserActivity struct {
	UserID        uint          `json:"user_id"`
	Posts7d       int64         `json:"posts_7d"`
	Posts30d      int64         `json:"posts_30d"`
	Comments7d    int64         `json:"comments_7d"`
	Comments30d   int64         `json:"comments_30d"`
	Likes7d       int64         `json:"likes_7d"`
	Likes30d      int64         `json:"likes_30d"`
	ActivityLevel ActivityLevel `json:"activity_level"`
}

// CommunityStats is the rolling activity report for a community.
type CommunityStats struct {
	CommunityID   uint          `json:"community_id"`
	Name          string        `json:"name"`
	MemberCount   int           `json:"member_count"`
	Posts7d       int64         `json:"posts_7d"`
	Posts30d      int64         `json:"posts_30d"`
	ActivityLevel ActivityLevel `json:"activity_level"`
}

// EngagementScore is the popularity weight of a post.
func EngagementScore(likes, comments int64) int64 {
	return likes + 2*comments
}

// Ranker builds feeds and popularity rankings. now is injectable so window
// arithmetic is deterministic under test.
type Ranker struct {
	posts        PostSource
	comments     CommentCounter
	communities  CommunitySource
	recentWindow time.Duration
	now          func() time.Time
}

// NewRanker creates a ranker; recentDays bounds the "recent" popularity
// window (default 7).
func NewRanker(posts PostSource, comments CommentCounter, communities CommunitySource, recentDays int) *Ranker {
	if recentDays <= 0 {
		recentDays = 7
	}
	return &Ranker{
		posts:        posts,
		comments:     comments,
		communities:  communities,
		recentWindow: time.Duration(recentDays) * 24 * time.Hour,
		now:          time.Now,
	}
}

// Feed returns the reverse-chronological timeline for a viewer: posts by
// users they accept-follow, decorated with live counts.
func (r *Ranker) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]FeedItem, error) {
	posts, err := r.posts.FeedForUser(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, FeedItem{
			PostID:       p.ID,
			AuthorID:     p.AuthorID,
			Content:      p.Content,
			MediaURL:     p.MediaURL,
			LikeCount:    p.LikesCount,
			CommentCount: p.CommentsCount,
			CreatedAt:    p.CreatedAt,
		})
	}
	return items, nil
}

// Popular ranks posts by engagement score descending, newer first on ties.
// With recentOnly set, only posts inside the recent window are considered.
func (r *Ranker) Popular(ctx context.Context, limit int, recentOnly bool) ([]PopularItem, error) {
	cutoff := r.now().Add(-r.recentWindow)
	var since *time.Time
	if recentOnly {
		since = &cutoff
	}

	// Over-fetch so the engagement re-sort has enough candidates beyond
	// the chronological cut.
	fetch := limit * 10
	if fetch < 100 {
		fetch = 100
	}
	posts, err := r.posts.ListWithEngagement(ctx, since, fetch)
	if err != nil {
		return nil, err
	}

	items := make([]PopularItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, PopularItem{
			PostID:          p.ID,
			AuthorID:        p.AuthorID,
			Content:         p.Content,
			LikeCount:       p.LikesCount,
			CommentCount:    p.CommentsCount,
			EngagementScore: EngagementScore(p.LikesCount, p.CommentsCount),
			IsRecent:        !p.CreatedAt.Before(cutoff),
			CreatedAt:       p.CreatedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].EngagementScore != items[j].EngagementScore {
			return items[i].EngagementScore > items[j].EngagementScore
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// UserActivity aggregates a user's posting, commenting, and liking over
// the 7- and 30-day windows and classifies the result.
func (r *Ranker) UserActivity(ctx context.Context, userID uint) (*UserActivity, error) {
	now := r.now()
	week := now.Add(-7 * 24 * time.Hour)
	month := now.Add(-30 * 24 * time.Hour)

	report := &UserActivity{UserID: userID}
	var err error
	if report.Posts7d, err = r.posts.CountByAuthorSince(ctx, userID, week); err != nil {
		return nil, err
	}
	if report.Posts30d, err = r.posts.CountByAuthorSince(ctx, userID, month); err != nil {
		return nil, err
	}
	if report.Comments7d, err = r.comments.CountByAuthorSince(ctx, userID, week); err != nil {
		return nil, err
	}
	if report.Comments30d, err = r.comments.CountByAuthorSince(ctx, userID, month); err != nil {
		return nil, err
	}
	if report.Likes7d, err = r.posts.CountLikesByUserSince(ctx, userID, week); err != nil {
		return nil, err
	}
	if report.Likes30d, err = r.posts.CountLikesByUserSince(ctx, userID, month); err != nil {
		return nil, err
	}

	report.ActivityLevel = classify(
		report.Posts7d+report.Comments7d+report.Likes7d,
		report.Posts30d+report.Comments30d+report.Likes30d,
	)
	return report, nil
}

// CommunityStats aggregates posting activity inside a community.
func (r *Ranker) CommunityStats(ctx context.Context, communityID uint) (*CommunityStats, error) {
	community, err := r.communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	stats := &CommunityStats{
		CommunityID: community.ID,
		Name:        community.Name,
		MemberCount: community.MemberCount,
	}
	if stats.Posts7d, err = r.posts.CountByCommunitySince(ctx, communityID, now.Add(-7*24*time.Hour)); err != nil {
		return nil, err
	}
	if stats.Posts30d, err = r.posts.CountByCommunitySince(ctx, communityID, now.Add(-30*24*time.Hour)); err != nil {
		return nil, err
	}
	stats.ActivityLevel = classify(stats.Posts7d, stats.Posts30d)
	return stats, nil
}

// AllCommunityStats reports every community, most active first.
func (r *Ranker) AllCommunityStats(ctx context.Context, limit, offset int) ([]CommunityStats, error) {
	communities, err := r.communities.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	now := r.now()
	week := now.Add(-7 * 24 * time.Hour)
	month := now.Add(-30 * 24 * time.Hour)

	stats := make([]CommunityStats, 0, len(communities))
	for _, community := range communities {
		st := CommunityStats{
			CommunityID: community.ID,
			Name:        community.Name,
			MemberCount: community.MemberCount,
		}
		if st.Posts7d, err = r.posts.CountByCommunitySince(ctx, community.ID, week); err != nil {
			return nil, err
		}
		if st.Posts30d, err = r.posts.CountByCommunitySince(ctx, community.ID, month); err != nil {
			return nil, err
		}
		st.ActivityLevel = classify(st.Posts7d, st.Posts30d)
		stats = append(stats, st)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Posts7d != stats[j].Posts7d {
			return stats[i].Posts7d > stats[j].Posts7d
		}
		return stats[i].MemberCount > stats[j].MemberCount
	})
	return stats, nil
}

func classify(week, month int64) ActivityLevel {
	switch {
	case week > 0:
		return ActivityActive
	case month > 0:
		return ActivityModerate
	default:
		return ActivityInactive
	}
}
