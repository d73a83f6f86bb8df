// Package recommend scores friend-of-friend candidates for a user.
package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"weave/internal/config"
	"weave/internal/observability"
)

// NeighborSource yields the undirected friend set of a user: everyone
// connected to them by an accepted follow in either direction.
type NeighborSource interface {
	AcceptedNeighborIDs(ctx context.Context, userID uint) ([]uint, error)
	CountAcceptedFollowers(ctx context.Context, userIDs []uint) (map[uint]int64, error)
}

// PostCounter reports total post counts per author.
type PostCounter interface {
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

// Suggestion is one scored recommendation candidate.
type Suggestion struct {
	UserID        uint    `json:"user_id"`
	MutualFriends int     `json:"mutual_friends"`
	PostCount     int64   `json:"post_count"`
	FollowerCount int64   `json:"follower_count"`
	Score         float64 `json:"score"`
}

// Engine computes friend-of-friend suggestions with a weighted score.
type Engine struct {
	neighbors NeighborSource
	posts     PostCounter

	mutualWeight   float64
	postWeight     float64
	followerWeight float64
	limit          int
}

// NewEngine creates an engine with scoring weights taken from config.
func NewEngine(neighbors NeighborSource, posts PostCounter, cfg *config.Config) *Engine {
	e := &Engine{
		neighbors:      neighbors,
		posts:          posts,
		mutualWeight:   cfg.RecommendMutualW,
		postWeight:     cfg.RecommendPostW,
		followerWeight: cfg.RecommendFollowerW,
		limit:          cfg.RecommendLimit,
	}
	if e.limit <= 0 {
		e.limit = 50
	}
	return e
}

// Recommend returns scored friend-of-friend candidates for userID, best
// first. Existing friends and the user themselves never appear; a user
// whose friends have no further connections gets an empty list.
func (e *Engine) Recommend(ctx context.Context, userID uint) ([]Suggestion, error) {
	start := time.Now()
	defer func() {
		observability.RecommendationLatency.Observe(time.Since(start).Seconds())
	}()

	friends, err := e.neighbors.AcceptedNeighborIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return []Suggestion{}, nil
	}

	friendSet := make(map[uint]struct{}, len(friends))
	for _, f := range friends {
		friendSet[f] = struct{}{}
	}

	// mutual[c] counts how many of the user's friends are also friends
	// with candidate c.
	mutual := make(map[uint]int)
	for _, friend := range friends {
		theirs, err := e.neighbors.AcceptedNeighborIDs(ctx, friend)
		if err != nil {
			return nil, err
		}
		for _, candidate := range theirs {
			if candidate == userID {
				continue
			}
			if _, isFriend := friendSet[candidate]; isFriend {
				continue
			}
			mutual[candidate]++
		}
	}
	if len(mutual) == 0 {
		return []Suggestion{}, nil
	}

	candidateIDs := make([]uint, 0, len(mutual))
	for id := range mutual {
		candidateIDs = append(candidateIDs, id)
	}

	postCounts, err := e.posts.CountByAuthors(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}
	followerCounts, err := e.neighbors.CountAcceptedFollowers(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		s := Suggestion{
			UserID:        id,
			MutualFriends: mutual[id],
			PostCount:     postCounts[id],
			FollowerCount: followerCounts[id],
		}
		raw := float64(s.MutualFriends)*e.mutualWeight +
			float64(s.PostCount)*e.postWeight +
			float64(s.FollowerCount)*e.followerWeight
		s.Score = math.Round(raw*100) / 100
		suggestions = append(suggestions, s)
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		if suggestions[i].MutualFriends != suggestions[j].MutualFriends {
			return suggestions[i].MutualFriends > suggestions[j].MutualFriends
		}
		return suggestions[i].UserID < suggestions[j].UserID
	})

	if len(suggestions) > e.limit {
		suggestions = suggestions[:e.limit]
	}
	return suggestions, nil
}
