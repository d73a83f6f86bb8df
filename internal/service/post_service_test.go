package service

import (
	"context"
	"testing"
	"time"

	"weave/internal/models"
	"weave/internal/notifications"
	"weave/internal/repository"
	"weave/internal/search"
	"weave/internal/txn"

	"gorm.io/gorm"
)

func newPostService(db *gorm.DB, index *search.Index) *PostService {
	return NewPostService(
		repository.NewPostRepository(db),
		repository.NewFollowRepository(db),
		repository.NewNotificationRepository(db),
		txn.NewCoordinator(db, 3, time.Millisecond),
		index,
		notifications.NewNotifier(nil),
	)
}

func acceptFollow(t *testing.T, db *gorm.DB, followerID, followingID uint) {
	t.Helper()
	if err := db.Create(&models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      models.FollowStatusAccepted,
	}).Error; err != nil {
		t.Fatalf("seed follow: %v", err)
	}
}

func TestPostServiceShareAndNotifyFansOut(t *testing.T) {
	db := setupServiceDB(t)
	seedUser(t, db, 1, "author")
	seedUser(t, db, 2, "fan_one")
	seedUser(t, db, 3, "fan_two")
	acceptFollow(t, db, 2, 1)
	acceptFollow(t, db, 3, 1)

	index := search.NewIndex()
	svc := newPostService(db, index)

	report, err := svc.ShareAndNotify(context.Background(), 1, PostInput{Content: "hello weave"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.NotificationsSent != 2 {
		t.Fatalf("expected 2 notifications sent, got %d", report.NotificationsSent)
	}

	var notifs []models.Notification
	db.Where("kind = ?", models.NotificationKindNewPost).Find(&notifs)
	if len(notifs) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifs))
	}
	for _, n := range notifs {
		if n.PostID == nil || *n.PostID != report.Post.ID || n.ActorID != 1 {
			t.Fatalf("notification not linked to post: %#v", n)
		}
	}

	if got := index.SearchPosts("weave", search.ProfileEnglish, 10); len(got) != 1 {
		t.Fatalf("post not indexed, got %d results", len(got))
	}
}

func TestPostServiceShareAndNotifyForcedFailureRollsBack(t *testing.T) {
	db := setupServiceDB(t)
	seedUser(t, db, 1, "author")
	seedUser(t, db, 2, "fan")
	acceptFollow(t, db, 2, 1)

	index := search.NewIndex()
	svc := newPostService(db, index)

	_, err := svc.ShareAndNotify(context.Background(), 1, PostInput{Content: "doomed"}, true)
	if err == nil {
		t.Fatal("expected forced failure")
	}

	var posts, notifs int64
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.Notification{}).Count(&notifs)
	if posts != 0 || notifs != 0 {
		t.Fatalf("expected zero residual rows, got %d posts and %d notifications", posts, notifs)
	}
	if index.Size(search.KindPost) != 0 {
		t.Fatal("rolled-back post must not be indexed")
	}
}

func TestPostServiceBatchCreatePartialFailure(t *testing.T) {
	db := setupServiceDB(t)
	seedUser(t, db, 1, "author")
	svc := newPostService(db, search.NewIndex())

	inputs := []PostInput{
		{Content: "first"},
		{}, // invalid: no content, no media
		{Content: "third"},
		{}, // invalid
		{Content: "fifth"},
	}
	results, err := svc.BatchCreate(context.Background(), 1, inputs, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 reports, got %d", len(results))
	}

	succeeded := 0
	for i, r := range results {
		if r.Succeeded {
			succeeded++
			if r.PostID == 0 {
				t.Fatalf("successful item %d missing post id", i)
			}
		} else if r.Error == "" {
			t.Fatalf("failed item %d missing error", i)
		}
	}
	if succeeded != 3 {
		t.Fatalf("expected 3 successes out of 5, got %d", succeeded)
	}

	var persisted int64
	db.Model(&models.Post{}).Count(&persisted)
	if persisted != 3 {
		t.Fatalf("expected 3 persisted posts, got %d", persisted)
	}
}

func TestPostServiceLikeDuplicate(t *testing.T) {
	db := setupServiceDB(t)
	seedUser(t, db, 1, "author")
	seedUser(t, db, 2, "liker")
	svc := newPostService(db, search.NewIndex())

	post, err := svc.CreatePost(context.Background(), 1, PostInput{Content: "likeable"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.LikePost(context.Background(), 2, post.ID); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	err = svc.LikePost(context.Background(), 2, post.ID)
	assertAppErrorCode(t, err, "INVALID_EDGE")
}

func TestPostServiceDeleteOthersPost(t *testing.T) {
	db := setupServiceDB(t)
	seedUser(t, db, 1, "author")
	seedUser(t, db, 2, "stranger")
	svc := newPostService(db, search.NewIndex())

	post, _ := svc.CreatePost(context.Background(), 1, PostInput{Content: "mine"})
	err := svc.DeletePost(context.Background(), 2, post.ID)
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}

func TestPostServiceContentRequired(t *testing.T) {
	db := setupServiceDB(t)
	seedUser(t, db, 1, "author")
	svc := newPostService(db, search.NewIndex())

	_, err := svc.CreatePost(context.Background(), 1, PostInput{Content: "   "})
	assertAppErrorCode(t, err, "CONSTRAINT_VIOLATION")
}
