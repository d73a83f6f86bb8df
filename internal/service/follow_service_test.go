package service

import (
	"context"
	"errors"
	"testing"

	"weave/internal/graph"
	"weave/internal/models"
	"weave/internal/notifications"
)

func newFollowService(followRepo *followRepoStub, userRepo *userRepoStub) *FollowService {
	return NewFollowService(
		followRepo,
		userRepo,
		noopNotifRepo(),
		graph.NewWalker(followRepo, 6),
		notifications.NewNotifier(nil),
	)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}

func TestFollowServiceSendRequestSelf(t *testing.T) {
	svc := newFollowService(noopFollowRepo(), noopUserRepo())

	_, err := svc.SendFollowRequest(context.Background(), 3, 3)
	assertAppErrorCode(t, err, "INVALID_EDGE")
}

func TestFollowServiceSendRequestPublicAcceptsImmediately(t *testing.T) {
	repo := noopFollowRepo()
	var created *models.Follow
	repo.createFn = func(_ context.Context, f *models.Follow) error {
		created = f
		return nil
	}
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, IsPrivate: false}, nil
	}

	svc := newFollowService(repo, users)
	follow, err := svc.SendFollowRequest(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if follow.Status != models.FollowStatusAccepted {
		t.Fatalf("expected accepted edge toward a public account, got %s", follow.Status)
	}
	if created == nil || created.FollowerID != 1 || created.FollowingID != 2 {
		t.Fatalf("edge not persisted correctly: %#v", created)
	}
}

func TestFollowServiceSendRequestPrivateStaysPending(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, IsPrivate: true}, nil
	}

	svc := newFollowService(noopFollowRepo(), users)
	follow, err := svc.SendFollowRequest(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if follow.Status != models.FollowStatusPending {
		t.Fatalf("expected pending request toward a private account, got %s", follow.Status)
	}
}

func TestFollowServiceSendRequestRejectedIsTerminal(t *testing.T) {
	repo := noopFollowRepo()
	repo.getByPairFn = func(context.Context, uint, uint) (*models.Follow, error) {
		return &models.Follow{Status: models.FollowStatusRejected}, nil
	}

	svc := newFollowService(repo, noopUserRepo())
	_, err := svc.SendFollowRequest(context.Background(), 1, 2)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestFollowServiceSendRequestDuplicate(t *testing.T) {
	repo := noopFollowRepo()
	repo.getByPairFn = func(context.Context, uint, uint) (*models.Follow, error) {
		return &models.Follow{Status: models.FollowStatusPending}, nil
	}

	svc := newFollowService(repo, noopUserRepo())
	_, err := svc.SendFollowRequest(context.Background(), 1, 2)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestFollowServiceAcceptRequest(t *testing.T) {
	repo := noopFollowRepo()
	repo.getByPairFn = func(_ context.Context, followerID, followingID uint) (*models.Follow, error) {
		return &models.Follow{
			FollowerID:  followerID,
			FollowingID: followingID,
			Status:      models.FollowStatusPending,
		}, nil
	}
	var updatedTo models.FollowStatus
	repo.updateStatusFn = func(_ context.Context, _, _ uint, status models.FollowStatus) error {
		updatedTo = status
		return nil
	}

	svc := newFollowService(repo, noopUserRepo())
	follow, err := svc.AcceptFollowRequest(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if follow.Status != models.FollowStatusAccepted || updatedTo != models.FollowStatusAccepted {
		t.Fatalf("expected accepted, got %s (persisted %s)", follow.Status, updatedTo)
	}
}

func TestFollowServiceAcceptMissingRequest(t *testing.T) {
	svc := newFollowService(noopFollowRepo(), noopUserRepo())

	_, err := svc.AcceptFollowRequest(context.Background(), 2, 1)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestFollowServiceRejectNonPending(t *testing.T) {
	repo := noopFollowRepo()
	repo.getByPairFn = func(context.Context, uint, uint) (*models.Follow, error) {
		return &models.Follow{Status: models.FollowStatusAccepted}, nil
	}

	svc := newFollowService(repo, noopUserRepo())
	_, err := svc.RejectFollowRequest(context.Background(), 2, 1)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestFollowServiceSocialDistanceTriangle(t *testing.T) {
	// A(1) -> B(2) -> C(3) -> A(1), all accepted. Distance A..C is 2.
	edges := map[uint][]uint{1: {2}, 2: {3}, 3: {1}}
	repo := noopFollowRepo()
	repo.acceptedFollowingIDsFn = func(_ context.Context, userIDs []uint) ([]uint, error) {
		var out []uint
		for _, id := range userIDs {
			out = append(out, edges[id]...)
		}
		return out, nil
	}

	svc := newFollowService(repo, noopUserRepo())
	dist, found, err := svc.GetSocialDistance(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || dist != 2 {
		t.Fatalf("expected distance 2, got %d (found=%v)", dist, found)
	}
}

func TestFollowServiceSocialDistanceSameUser(t *testing.T) {
	svc := newFollowService(noopFollowRepo(), noopUserRepo())

	_, _, err := svc.GetSocialDistance(context.Background(), 4, 4)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestFollowServiceSocialDistanceUnknownUser(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}

	svc := newFollowService(noopFollowRepo(), users)
	_, _, err := svc.GetSocialDistance(context.Background(), 1, 2)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestFollowServiceUnfollowMissingEdge(t *testing.T) {
	svc := newFollowService(noopFollowRepo(), noopUserRepo())

	err := svc.Unfollow(context.Background(), 1, 2)
	assertAppErrorCode(t, err, "NOT_FOUND")
}
