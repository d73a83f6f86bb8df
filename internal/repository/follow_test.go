package repository

import (
	"context"
	"fmt"
	"testing"

	"weave/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGraphDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Follow{}))

	for i := 1; i <= 5; i++ {
		require.NoError(t, db.Create(&models.User{
			ID:       uint(i),
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
		}).Error)
	}
	return db
}

func edge(t *testing.T, db *gorm.DB, from, to uint, status models.FollowStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{
		FollowerID:  from,
		FollowingID: to,
		Status:      status,
	}).Error)
}

func TestAcceptedFollowingIDsIsDirected(t *testing.T) {
	db := setupGraphDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	edge(t, db, 1, 2, models.FollowStatusAccepted)
	edge(t, db, 3, 1, models.FollowStatusAccepted) // inbound, must not appear
	edge(t, db, 1, 4, models.FollowStatusPending)  // pending, must not appear

	ids, err := repo.AcceptedFollowingIDs(ctx, []uint{1})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2}, ids)
}

func TestAcceptedFollowingIDsBatchFrontier(t *testing.T) {
	db := setupGraphDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	edge(t, db, 1, 3, models.FollowStatusAccepted)
	edge(t, db, 2, 3, models.FollowStatusAccepted)
	edge(t, db, 2, 4, models.FollowStatusAccepted)

	// One query expands the whole frontier, deduplicated.
	ids, err := repo.AcceptedFollowingIDs(ctx, []uint{1, 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{3, 4}, ids)

	ids, err = repo.AcceptedFollowingIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAcceptedFollowerIDsIsFanOutAudience(t *testing.T) {
	db := setupGraphDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	edge(t, db, 2, 1, models.FollowStatusAccepted)
	edge(t, db, 3, 1, models.FollowStatusAccepted)
	edge(t, db, 4, 1, models.FollowStatusPending)
	edge(t, db, 1, 5, models.FollowStatusAccepted) // outbound, not an audience member

	ids, err := repo.AcceptedFollowerIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3}, ids)
}

func TestAcceptedNeighborIDsIsUndirected(t *testing.T) {
	db := setupGraphDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	edge(t, db, 1, 2, models.FollowStatusAccepted)
	edge(t, db, 3, 1, models.FollowStatusAccepted)
	edge(t, db, 1, 4, models.FollowStatusRejected)

	ids, err := repo.AcceptedNeighborIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3}, ids)
}

func TestCountAcceptedFollowers(t *testing.T) {
	db := setupGraphDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	edge(t, db, 2, 1, models.FollowStatusAccepted)
	edge(t, db, 3, 1, models.FollowStatusAccepted)
	edge(t, db, 3, 2, models.FollowStatusAccepted)
	edge(t, db, 4, 2, models.FollowStatusPending)

	counts, err := repo.CountAcceptedFollowers(ctx, []uint{1, 2, 5})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[1])
	assert.EqualValues(t, 1, counts[2])
	assert.EqualValues(t, 0, counts[5])
}

func TestFollowCreateDuplicatePair(t *testing.T) {
	db := setupGraphDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	edge(t, db, 1, 2, models.FollowStatusAccepted)

	err := repo.Create(ctx, &models.Follow{
		FollowerID:  1,
		FollowingID: 2,
		Status:      models.FollowStatusPending,
	})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeInvalidEdge))
}
