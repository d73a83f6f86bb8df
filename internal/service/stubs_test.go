package service

import (
	"context"
	"time"

	"weave/internal/models"
)

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByIDsFn      func(context.Context, []uint) ([]models.User, error)
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, actorID, id uint) error {
	return s.deleteFn(ctx, actorID, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:  func(context.Context, *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) {
			return &models.User{}, nil
		},
		getByIDsFn: func(_ context.Context, ids []uint) ([]models.User, error) {
			users := make([]models.User, 0, len(ids))
			for _, id := range ids {
				users = append(users, models.User{ID: id, Username: "user"})
			}
			return users, nil
		},
		updateFn: func(context.Context, *models.User) error { return nil },
		deleteFn: func(context.Context, uint, uint) error { return nil },
		listFn:   func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type followRepoStub struct {
	createFn                 func(context.Context, *models.Follow) error
	getByPairFn              func(context.Context, uint, uint) (*models.Follow, error)
	updateStatusFn           func(context.Context, uint, uint, models.FollowStatus) error
	deleteFn                 func(context.Context, uint, uint) error
	listFollowersFn          func(context.Context, uint, int, int) ([]models.User, error)
	listFollowingFn          func(context.Context, uint, int, int) ([]models.User, error)
	listPendingRequestsFn    func(context.Context, uint, int, int) ([]models.Follow, error)
	countFollowersFn         func(context.Context, uint) (int64, error)
	countFollowingFn         func(context.Context, uint) (int64, error)
	acceptedFollowingIDsFn   func(context.Context, []uint) ([]uint, error)
	acceptedFollowerIDsFn    func(context.Context, uint) ([]uint, error)
	acceptedNeighborIDsFn    func(context.Context, uint) ([]uint, error)
	countAcceptedFollowersFn func(context.Context, []uint) (map[uint]int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, follow *models.Follow) error {
	return s.createFn(ctx, follow)
}
func (s *followRepoStub) GetByPair(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	return s.getByPairFn(ctx, followerID, followingID)
}
func (s *followRepoStub) UpdateStatus(ctx context.Context, followerID, followingID uint, status models.FollowStatus) error {
	return s.updateStatusFn(ctx, followerID, followingID, status)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID uint) error {
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowingFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListPendingRequests(ctx context.Context, userID uint, limit, offset int) ([]models.Follow, error) {
	return s.listPendingRequestsFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}
func (s *followRepoStub) AcceptedFollowingIDs(ctx context.Context, userIDs []uint) ([]uint, error) {
	return s.acceptedFollowingIDsFn(ctx, userIDs)
}
func (s *followRepoStub) AcceptedFollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.acceptedFollowerIDsFn(ctx, userID)
}
func (s *followRepoStub) AcceptedNeighborIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.acceptedNeighborIDsFn(ctx, userID)
}
func (s *followRepoStub) CountAcceptedFollowers(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	return s.countAcceptedFollowersFn(ctx, userIDs)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:       func(context.Context, *models.Follow) error { return nil },
		getByPairFn:    func(context.Context, uint, uint) (*models.Follow, error) { return nil, nil },
		updateStatusFn: func(context.Context, uint, uint, models.FollowStatus) error { return nil },
		deleteFn:       func(context.Context, uint, uint) error { return nil },
		listFollowersFn: func(context.Context, uint, int, int) ([]models.User, error) {
			return nil, nil
		},
		listFollowingFn: func(context.Context, uint, int, int) ([]models.User, error) {
			return nil, nil
		},
		listPendingRequestsFn: func(context.Context, uint, int, int) ([]models.Follow, error) {
			return nil, nil
		},
		countFollowersFn:         func(context.Context, uint) (int64, error) { return 0, nil },
		countFollowingFn:         func(context.Context, uint) (int64, error) { return 0, nil },
		acceptedFollowingIDsFn:   func(context.Context, []uint) ([]uint, error) { return nil, nil },
		acceptedFollowerIDsFn:    func(context.Context, uint) ([]uint, error) { return nil, nil },
		acceptedNeighborIDsFn:    func(context.Context, uint) ([]uint, error) { return nil, nil },
		countAcceptedFollowersFn: func(context.Context, []uint) (map[uint]int64, error) { return map[uint]int64{}, nil },
	}
}

type notifRepoStub struct {
	createFn           func(context.Context, *models.Notification) error
	createBatchFn      func(context.Context, []*models.Notification) error
	listForRecipientFn func(context.Context, uint, bool, int, int) ([]*models.Notification, error)
	markReadFn         func(context.Context, uint, uint) error
	countUnreadFn      func(context.Context, uint) (int64, error)
}

func (s *notifRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notifRepoStub) CreateBatch(ctx context.Context, ns []*models.Notification) error {
	return s.createBatchFn(ctx, ns)
}
func (s *notifRepoStub) ListForRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	return s.listForRecipientFn(ctx, recipientID, unreadOnly, limit, offset)
}
func (s *notifRepoStub) MarkRead(ctx context.Context, recipientID, notificationID uint) error {
	return s.markReadFn(ctx, recipientID, notificationID)
}
func (s *notifRepoStub) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.countUnreadFn(ctx, recipientID)
}

func noopNotifRepo() *notifRepoStub {
	return &notifRepoStub{
		createFn:      func(context.Context, *models.Notification) error { return nil },
		createBatchFn: func(context.Context, []*models.Notification) error { return nil },
		listForRecipientFn: func(context.Context, uint, bool, int, int) ([]*models.Notification, error) {
			return nil, nil
		},
		markReadFn:    func(context.Context, uint, uint) error { return nil },
		countUnreadFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type postRepoStub struct {
	createFn                func(context.Context, *models.Post) error
	getByIDFn               func(context.Context, uint) (*models.Post, error)
	deleteFn                func(context.Context, uint) error
	listByAuthorFn          func(context.Context, uint, int, int) ([]*models.Post, error)
	feedForUserFn           func(context.Context, uint, int, int) ([]*models.Post, error)
	listWithEngagementFn    func(context.Context, *time.Time, int) ([]*models.Post, error)
	listByCommunityFn       func(context.Context, uint, int, int) ([]*models.Post, error)
	countByAuthorsFn        func(context.Context, []uint) (map[uint]int64, error)
	countByAuthorSinceFn    func(context.Context, uint, time.Time) (int64, error)
	countByCommunitySinceFn func(context.Context, uint, time.Time) (int64, error)
	likeFn                  func(context.Context, uint, uint) error
	unlikeFn                func(context.Context, uint, uint) error
	countLikesByUserSinceFn func(context.Context, uint, time.Time) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *postRepoStub) FeedForUser(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.feedForUserFn(ctx, viewerID, limit, offset)
}
func (s *postRepoStub) ListWithEngagement(ctx context.Context, since *time.Time, limit int) ([]*models.Post, error) {
	return s.listWithEngagementFn(ctx, since, limit)
}
func (s *postRepoStub) ListByCommunity(ctx context.Context, communityID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByCommunityFn(ctx, communityID, limit, offset)
}
func (s *postRepoStub) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	return s.countByAuthorsFn(ctx, authorIDs)
}
func (s *postRepoStub) CountByAuthorSince(ctx context.Context, authorID uint, since time.Time) (int64, error) {
	return s.countByAuthorSinceFn(ctx, authorID, since)
}
func (s *postRepoStub) CountByCommunitySince(ctx context.Context, communityID uint, since time.Time) (int64, error) {
	return s.countByCommunitySinceFn(ctx, communityID, since)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) CountLikesByUserSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	return s.countLikesByUserSinceFn(ctx, userID, since)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		deleteFn:  func(context.Context, uint) error { return nil },
		listByAuthorFn: func(context.Context, uint, int, int) ([]*models.Post, error) {
			return nil, nil
		},
		feedForUserFn: func(context.Context, uint, int, int) ([]*models.Post, error) {
			return nil, nil
		},
		listWithEngagementFn: func(context.Context, *time.Time, int) ([]*models.Post, error) {
			return nil, nil
		},
		listByCommunityFn: func(context.Context, uint, int, int) ([]*models.Post, error) {
			return nil, nil
		},
		countByAuthorsFn:        func(context.Context, []uint) (map[uint]int64, error) { return map[uint]int64{}, nil },
		countByAuthorSinceFn:    func(context.Context, uint, time.Time) (int64, error) { return 0, nil },
		countByCommunitySinceFn: func(context.Context, uint, time.Time) (int64, error) { return 0, nil },
		likeFn:                  func(context.Context, uint, uint) error { return nil },
		unlikeFn:                func(context.Context, uint, uint) error { return nil },
		countLikesByUserSinceFn: func(context.Context, uint, time.Time) (int64, error) { return 0, nil },
	}
}

type commentRepoStub struct {
	createFn             func(context.Context, *models.Comment) error
	getByIDFn            func(context.Context, uint) (*models.Comment, error)
	deleteFn             func(context.Context, uint) error
	listByPostFn         func(context.Context, uint) ([]*models.Comment, error)
	countByAuthorSinceFn func(context.Context, uint, time.Time) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) CountByAuthorSince(ctx context.Context, authorID uint, since time.Time) (int64, error) {
	return s.countByAuthorSinceFn(ctx, authorID, since)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(context.Context, *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		deleteFn:             func(context.Context, uint) error { return nil },
		listByPostFn:         func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
		countByAuthorSinceFn: func(context.Context, uint, time.Time) (int64, error) { return 0, nil },
	}
}
