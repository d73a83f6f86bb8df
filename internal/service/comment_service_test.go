package service

import (
	"context"
	"testing"

	"weave/internal/models"
	"weave/internal/thread"
)

func newCommentService(commentRepo *commentRepoStub, postRepo *postRepoStub) *CommentService {
	return NewCommentService(commentRepo, postRepo, thread.NewBuilder(commentRepo, 10))
}

func TestCommentServiceCreateEmptyContent(t *testing.T) {
	svc := newCommentService(noopCommentRepo(), noopPostRepo())

	_, err := svc.CreateComment(context.Background(), 1, 1, nil, "   ")
	assertAppErrorCode(t, err, "CONSTRAINT_VIOLATION")
}

func TestCommentServiceCreateOnMissingPost(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}

	svc := newCommentService(noopCommentRepo(), posts)
	_, err := svc.CreateComment(context.Background(), 1, 99, nil, "hello")
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestCommentServiceGetThreadBuildsTree(t *testing.T) {
	parent := uint(1)
	comments := noopCommentRepo()
	comments.listByPostFn = func(context.Context, uint) ([]*models.Comment, error) {
		return []*models.Comment{
			{ID: 1, PostID: 7, AuthorID: 1, Content: "root"},
			{ID: 2, PostID: 7, AuthorID: 2, Content: "reply", ParentCommentID: &parent},
		}, nil
	}

	svc := newCommentService(comments, noopPostRepo())
	nodes, err := svc.GetThread(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[1].Depth != 1 || nodes[1].Position != "1.1" {
		t.Fatalf("reply placed wrong: depth=%d position=%s", nodes[1].Depth, nodes[1].Position)
	}
}

func TestCommentServiceGetAncestorsUnknown(t *testing.T) {
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return nil, models.NewNotFoundError("Comment", id)
	}

	svc := newCommentService(comments, noopPostRepo())
	_, err := svc.GetAncestors(context.Background(), 42)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestCommentServiceDeleteOthersComment(t *testing.T) {
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, AuthorID: 1}, nil
	}

	svc := newCommentService(comments, noopPostRepo())
	err := svc.DeleteComment(context.Background(), 2, 5)
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}
