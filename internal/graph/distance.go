// Package graph computes reachability over the accepted-follow graph.
package graph

import (
	"context"

	"weave/internal/models"
	"weave/internal/observability"
)

// FrontierSource yields the next hop of the follow graph for a batch of
// users: the ids they accept-follow.
type FrontierSource interface {
	AcceptedFollowingIDs(ctx context.Context, userIDs []uint) ([]uint, error)
}

// Walker runs breadth-first traversals over follow edges. Edges are
// directed follower -> followee; a follow back is a separate edge.
type Walker struct {
	source   FrontierSource
	maxDepth int
}

// NewWalker creates a walker bounded to maxDepth hops per query.
func NewWalker(source FrontierSource, maxDepth int) *Walker {
	if maxDepth <= 0 {
		maxDepth = 6
	}
	return &Walker{source: source, maxDepth: maxDepth}
}

// Distance returns the minimum number of accepted-follow hops from fromID
// to toID. found is false when toID is unreachable within the depth bound.
// Asking for the distance from a user to themselves is rejected.
func (w *Walker) Distance(ctx context.Context, fromID, toID uint) (int, bool, error) {
	if fromID == toID {
		return 0, false, models.NewValidationError("Cannot compute distance from a user to themselves")
	}

	visited := map[uint]struct{}{fromID: {}}
	frontier := []uint{fromID}

	for depth := 1; depth <= w.maxDepth; depth++ {
		next, err := w.source.AcceptedFollowingIDs(ctx, frontier)
		if err != nil {
			observability.GraphFrontierExpansions.WithLabelValues("aborted").Inc()
			return 0, false, err
		}

		frontier = frontier[:0]
		for _, id := range next {
			if _, seen := visited[id]; seen {
				continue
			}
			if id == toID {
				observability.GraphFrontierExpansions.WithLabelValues("found").Inc()
				return depth, true, nil
			}
			visited[id] = struct{}{}
			frontier = append(frontier, id)
		}
		if len(frontier) == 0 {
			break
		}
	}
	observability.GraphFrontierExpansions.WithLabelValues("absent").Inc()
	return 0, false, nil
}
