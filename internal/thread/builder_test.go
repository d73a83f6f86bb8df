package thread

import (
	"context"
	"sort"
	"testing"
	"time"

	"weave/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubComments struct {
	comments []*models.Comment
}

func (s *stubComments) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *stubComments) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	for _, c := range s.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, models.NewNotFoundError("Comment", id)
}

func ptr(v uint) *uint { return &v }

func at(sec int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC)
}

func TestThreadDepthPathPosition(t *testing.T) {
	// post 1:
	//   c1 (root)
	//     c3 (reply to c1)
	//       c5 (reply to c3)
	//     c4 (reply to c1)
	//   c2 (root)
	src := &stubComments{comments: []*models.Comment{
		{ID: 1, PostID: 1, AuthorID: 10, Content: "a", CreatedAt: at(1)},
		{ID: 2, PostID: 1, AuthorID: 11, Content: "b", CreatedAt: at(2)},
		{ID: 3, PostID: 1, AuthorID: 12, Content: "c", ParentCommentID: ptr(1), CreatedAt: at(3)},
		{ID: 4, PostID: 1, AuthorID: 13, Content: "d", ParentCommentID: ptr(1), CreatedAt: at(4)},
		{ID: 5, PostID: 1, AuthorID: 14, Content: "e", ParentCommentID: ptr(3), CreatedAt: at(5)},
	}}
	b := NewBuilder(src, 10)

	nodes, err := b.Thread(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, nodes, 5)

	byID := make(map[uint]Node, len(nodes))
	for _, n := range nodes {
		byID[n.CommentID] = n
	}

	assert.Equal(t, 0, byID[1].Depth)
	assert.Equal(t, "1", byID[1].Position)
	assert.Equal(t, []uint{1}, byID[1].Path)

	assert.Equal(t, 0, byID[2].Depth)
	assert.Equal(t, "2", byID[2].Position)

	assert.Equal(t, 1, byID[3].Depth)
	assert.Equal(t, "1.1", byID[3].Position)
	assert.Equal(t, []uint{1, 3}, byID[3].Path)

	assert.Equal(t, 1, byID[4].Depth)
	assert.Equal(t, "1.2", byID[4].Position)

	assert.Equal(t, 2, byID[5].Depth)
	assert.Equal(t, "1.1.1", byID[5].Position)
	assert.Equal(t, []uint{1, 3, 5}, byID[5].Path)

	// Path length tracks depth.
	for _, n := range nodes {
		assert.Equal(t, n.Depth+1, len(n.Path))
	}
}

func TestThreadSiblingOrderFollowsCreationTime(t *testing.T) {
	src := &stubComments{comments: []*models.Comment{
		{ID: 9, PostID: 1, AuthorID: 1, Content: "root", CreatedAt: at(0)},
		{ID: 30, PostID: 1, AuthorID: 1, Content: "late", ParentCommentID: ptr(9), CreatedAt: at(9)},
		{ID: 20, PostID: 1, AuthorID: 1, Content: "early", ParentCommentID: ptr(9), CreatedAt: at(2)},
	}}
	b := NewBuilder(src, 10)

	nodes, err := b.Thread(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	// Depth-first order: root, earliest child, latest child.
	assert.Equal(t, uint(9), nodes[0].CommentID)
	assert.Equal(t, uint(20), nodes[1].CommentID)
	assert.Equal(t, "1.1", nodes[1].Position)
	assert.Equal(t, uint(30), nodes[2].CommentID)
	assert.Equal(t, "1.2", nodes[2].Position)
}

func TestThreadOutputIsPositionOrdered(t *testing.T) {
	// Two roots with interleaved replies; the flat output must walk each
	// branch to its leaves before the next sibling.
	src := &stubComments{comments: []*models.Comment{
		{ID: 1, PostID: 1, AuthorID: 1, Content: "r1", CreatedAt: at(1)},
		{ID: 2, PostID: 1, AuthorID: 1, Content: "r2", CreatedAt: at(2)},
		{ID: 3, PostID: 1, AuthorID: 1, Content: "r1-a", ParentCommentID: ptr(1), CreatedAt: at(3)},
		{ID: 4, PostID: 1, AuthorID: 1, Content: "r2-a", ParentCommentID: ptr(2), CreatedAt: at(4)},
		{ID: 5, PostID: 1, AuthorID: 1, Content: "r1-b", ParentCommentID: ptr(1), CreatedAt: at(5)},
		{ID: 6, PostID: 1, AuthorID: 1, Content: "r1-a-i", ParentCommentID: ptr(3), CreatedAt: at(6)},
	}}
	b := NewBuilder(src, 10)

	nodes, err := b.Thread(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, nodes, 6)

	var positions []string
	for _, n := range nodes {
		positions = append(positions, n.Position)
	}
	assert.Equal(t, []string{"1", "1.1", "1.1.1", "1.2", "2", "2.1"}, positions)
	for i := 1; i < len(positions); i++ {
		assert.True(t, positionLess(positions[i-1], positions[i]),
			"%s should sort before %s", positions[i-1], positions[i])
	}
}

func TestThreadDepthBoundDropsDeepDescendants(t *testing.T) {
	comments := []*models.Comment{
		{ID: 1, PostID: 1, AuthorID: 1, Content: "c", CreatedAt: at(0)},
	}
	for i := uint(2); i <= 14; i++ {
		parent := i - 1
		comments = append(comments, &models.Comment{
			ID: i, PostID: 1, AuthorID: 1, Content: "c",
			ParentCommentID: ptr(parent), CreatedAt: at(int(i)),
		})
	}
	b := NewBuilder(&stubComments{comments: comments}, 10)

	nodes, err := b.Thread(context.Background(), 1)
	require.NoError(t, err)
	// Depths 0..10, everything deeper dropped.
	require.Len(t, nodes, 11)
	assert.Equal(t, 10, nodes[len(nodes)-1].Depth)
}

func TestThreadCycleDoesNotLoop(t *testing.T) {
	src := &stubComments{comments: []*models.Comment{
		{ID: 1, PostID: 1, AuthorID: 1, Content: "a", ParentCommentID: ptr(2), CreatedAt: at(1)},
		{ID: 2, PostID: 1, AuthorID: 1, Content: "b", ParentCommentID: ptr(1), CreatedAt: at(2)},
	}}
	b := NewBuilder(src, 10)

	nodes, err := b.Thread(context.Background(), 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(nodes), 2)
}

func TestThreadOrphanRendersAsRoot(t *testing.T) {
	src := &stubComments{comments: []*models.Comment{
		{ID: 1, PostID: 1, AuthorID: 1, Content: "a", CreatedAt: at(1)},
		{ID: 2, PostID: 1, AuthorID: 1, Content: "b", ParentCommentID: ptr(999), CreatedAt: at(2)},
	}}
	b := NewBuilder(src, 10)

	nodes, err := b.Thread(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, 0, nodes[1].Depth)
	assert.Equal(t, "2", nodes[1].Position)
}

func TestAncestorsRootToTarget(t *testing.T) {
	src := &stubComments{comments: []*models.Comment{
		{ID: 1, PostID: 1, AuthorID: 1, Content: "root", CreatedAt: at(1)},
		{ID: 2, PostID: 1, AuthorID: 1, Content: "mid", ParentCommentID: ptr(1), CreatedAt: at(2)},
		{ID: 3, PostID: 1, AuthorID: 1, Content: "leaf", ParentCommentID: ptr(2), CreatedAt: at(3)},
	}}
	b := NewBuilder(src, 10)

	chain, err := b.Ancestors(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, uint(1), chain[0].CommentID)
	assert.Equal(t, 0, chain[0].Depth)
	assert.Equal(t, uint(2), chain[1].CommentID)
	assert.Equal(t, 1, chain[1].Depth)
	assert.Equal(t, uint(3), chain[2].CommentID)
	assert.Equal(t, 2, chain[2].Depth)
}

func TestAncestorsUnknownComment(t *testing.T) {
	b := NewBuilder(&stubComments{}, 10)

	_, err := b.Ancestors(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestAncestorsCycleGuard(t *testing.T) {
	src := &stubComments{comments: []*models.Comment{
		{ID: 1, PostID: 1, AuthorID: 1, Content: "a", ParentCommentID: ptr(2), CreatedAt: at(1)},
		{ID: 2, PostID: 1, AuthorID: 1, Content: "b", ParentCommentID: ptr(1), CreatedAt: at(2)},
	}}
	b := NewBuilder(src, 10)

	chain, err := b.Ancestors(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}

func TestPositionLessNumericSegments(t *testing.T) {
	assert.True(t, positionLess("1.2", "1.10"))
	assert.True(t, positionLess("1", "1.1"))
	assert.False(t, positionLess("2", "1.9"))
}
