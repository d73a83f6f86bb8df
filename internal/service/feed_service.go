package service

import (
	"context"

	"weave/internal/cache"
	"weave/internal/feed"
	"weave/internal/repository"
)

// FeedService provides timelines, popularity rankings, and activity stats,
// all cached read-side since they are recomputed aggregates.
type FeedService struct {
	ranker   *feed.Ranker
	userRepo repository.UserRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(ranker *feed.Ranker, userRepo repository.UserRepository) *FeedService {
	return &FeedService{ranker: ranker, userRepo: userRepo}
}

// GetFeed returns the viewer's reverse-chronological timeline.
func (s *FeedService) GetFeed(ctx context.Context, userID uint, limit, offset int) ([]feed.FeedItem, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var items []feed.FeedItem
	err := cache.Aside(ctx, cache.FeedKey(userID, limit, offset), &items, cache.FeedTTL, func() error {
		var err error
		items, err = s.ranker.Feed(ctx, userID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetPopular returns posts ranked by engagement score.
func (s *FeedService) GetPopular(ctx context.Context, limit int, recentOnly bool) ([]feed.PopularItem, error) {
	var items []feed.PopularItem
	err := cache.Aside(ctx, cache.PopularKey(limit, recentOnly), &items, cache.PopularTTL, func() error {
		var err error
		items, err = s.ranker.Popular(ctx, limit, recentOnly)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetUserActivity returns the rolling 7/30-day activity report for a user.
func (s *FeedService) GetUserActivity(ctx context.Context, userID uint) (*feed.UserActivity, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var report feed.UserActivity
	err := cache.Aside(ctx, cache.UserActivityKey(userID), &report, cache.UserActivityTTL, func() error {
		r, err := s.ranker.UserActivity(ctx, userID)
		if err != nil {
			return err
		}
		report = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetAllCommunityStats returns activity reports for every community,
// most active first. Not cached: the offset-paged variants would need a
// key per page and the underlying counts are already cheap aggregates.
func (s *FeedService) GetAllCommunityStats(ctx context.Context, limit, offset int) ([]feed.CommunityStats, error) {
	return s.ranker.AllCommunityStats(ctx, limit, offset)
}

// GetCommunityStats returns the rolling activity report for a community.
func (s *FeedService) GetCommunityStats(ctx context.Context, communityID uint) (*feed.CommunityStats, error) {
	var stats feed.CommunityStats
	err := cache.Aside(ctx, cache.CommunityStatsKey(communityID), &stats, cache.CommunityStatTTL, func() error {
		st, err := s.ranker.CommunityStats(ctx, communityID)
		if err != nil {
			return err
		}
		stats = *st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
