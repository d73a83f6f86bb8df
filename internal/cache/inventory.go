package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	FeedKeyPrefix       = "feed:user:%d:%d:%d"
	PopularKeyPrefix    = "popular:%d:%t"
	RecommendKeyPrefix  = "recommend:user:%d"
	CommunityStatPrefix = "community:%d:stats"
	UserActivityPrefix  = "activity:user:%d"
)

const (
	FeedTTL          = 1 * time.Minute
	PopularTTL       = 5 * time.Minute
	RecommendTTL     = 15 * time.Minute
	CommunityStatTTL = 5 * time.Minute
	UserActivityTTL  = 5 * time.Minute
)

func FeedKey(userID uint, limit, offset int) string {
	return fmt.Sprintf(FeedKeyPrefix, userID, limit, offset)
}

func PopularKey(limit int, recentOnly bool) string {
	return fmt.Sprintf(PopularKeyPrefix, limit, recentOnly)
}

func RecommendKey(userID uint) string {
	return fmt.Sprintf(RecommendKeyPrefix, userID)
}

func CommunityStatsKey(communityID uint) string {
	return fmt.Sprintf(CommunityStatPrefix, communityID)
}

func UserActivityKey(userID uint) string {
	return fmt.Sprintf(UserActivityPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateFeeds drops every cached feed page. Feed keys embed pagination, so
// the write path clears by pattern rather than tracking individual pages.
func InvalidateFeeds(ctx context.Context) {
	invalidatePattern(ctx, "feed:user:*")
	invalidatePattern(ctx, "popular:*")
}

func InvalidateRecommendations(ctx context.Context, userID uint) {
	Invalidate(ctx, RecommendKey(userID))
}

func InvalidateCommunityStats(ctx context.Context, communityID uint) {
	Invalidate(ctx, CommunityStatsKey(communityID))
}

func invalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
