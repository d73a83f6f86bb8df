package service

import (
	"context"

	"weave/internal/cache"
	"weave/internal/models"
	"weave/internal/recommend"
	"weave/internal/repository"
	"weave/internal/search"
)

// Recommendation is a suggestion hydrated with the candidate's username.
type Recommendation struct {
	UserID        uint    `json:"user_id"`
	Username      string  `json:"username"`
	MutualFriends int     `json:"mutual_friends"`
	Score         float64 `json:"score"`
}

// DiscoveryService provides friend recommendations and full-text search.
type DiscoveryService struct {
	engine   *recommend.Engine
	index    *search.Index
	userRepo repository.UserRepository
}

// NewDiscoveryService returns a new DiscoveryService.
func NewDiscoveryService(engine *recommend.Engine, index *search.Index, userRepo repository.UserRepository) *DiscoveryService {
	return &DiscoveryService{
		engine:   engine,
		index:    index,
		userRepo: userRepo,
	}
}

// GetRecommendations returns scored "people you may know" candidates for a
// user, cached briefly since the underlying graph changes slowly.
func (s *DiscoveryService) GetRecommendations(ctx context.Context, userID uint) ([]Recommendation, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var result []Recommendation
	err := cache.Aside(ctx, cache.RecommendKey(userID), &result, cache.RecommendTTL, func() error {
		suggestions, err := s.engine.Recommend(ctx, userID)
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(suggestions))
		for _, sg := range suggestions {
			ids = append(ids, sg.UserID)
		}
		users, err := s.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		names := make(map[uint]string, len(users))
		for _, u := range users {
			names[u.ID] = u.Username
		}

		result = make([]Recommendation, 0, len(suggestions))
		for _, sg := range suggestions {
			username, ok := names[sg.UserID]
			if !ok {
				// Candidate deleted since the graph snapshot; skip it.
				continue
			}
			result = append(result, Recommendation{
				UserID:        sg.UserID,
				Username:      username,
				MutualFriends: sg.MutualFriends,
				Score:         sg.Score,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SearchPosts ranks posts matching the query under the given profile.
func (s *DiscoveryService) SearchPosts(ctx context.Context, query, profile string, limit int) ([]search.Result, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.index.SearchPosts(query, search.ParseProfile(profile), limit), nil
}

// SearchUsers ranks users matching the query under the given profile.
func (s *DiscoveryService) SearchUsers(ctx context.Context, query, profile string, limit int) ([]search.Result, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.index.SearchUsers(query, search.ParseProfile(profile), limit), nil
}

// SearchAll merges post and user results into one relevance-ranked stream.
func (s *DiscoveryService) SearchAll(ctx context.Context, query, profile string, limit int) ([]search.Result, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.index.SearchAll(query, search.ParseProfile(profile), limit), nil
}

// SearchPostsBoolean evaluates an explicit AND/OR/NOT query with optional
// quoted phrases against post content.
func (s *DiscoveryService) SearchPostsBoolean(ctx context.Context, query, profile string, limit int) ([]search.Result, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.index.SearchBoolean(query, search.ParseProfile(profile), search.KindPost, limit), nil
}
