package txn

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"weave/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Community{}))
	return db
}

func TestAtomicCommitsAllWrites(t *testing.T) {
	db := setupTestDB(t)
	c := NewCoordinator(db, 3, time.Millisecond)

	err := c.Atomic(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Community{Name: "one", CreatorID: 1}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Community{Name: "two", CreatorID: 1}).Error
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.Community{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestAtomicRollsBackAllWrites(t *testing.T) {
	db := setupTestDB(t)
	c := NewCoordinator(db, 3, time.Millisecond)

	err := c.Atomic(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Community{Name: "doomed", CreatorID: 1}).Error; err != nil {
			return err
		}
		return errors.New("forced failure")
	})
	require.Error(t, err)

	var count int64
	db.Model(&models.Community{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSerializedRetriesConflictsThenSucceeds(t *testing.T) {
	db := setupTestDB(t)
	c := NewCoordinator(db, 3, time.Millisecond)

	attempts := 0
	err := c.Serialized(context.Background(), "test_op", func(tx *gorm.DB) error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return tx.Create(&models.Community{Name: "eventually", CreatorID: 1}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	var count int64
	db.Model(&models.Community{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSerializedExhaustsRetryBound(t *testing.T) {
	db := setupTestDB(t)
	c := NewCoordinator(db, 3, time.Millisecond)

	attempts := 0
	err := c.Serialized(context.Background(), "test_op", func(tx *gorm.DB) error {
		attempts++
		return &pgconn.PgError{Code: "40001"}
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, models.IsConflict(err))
}

func TestSerializedDoesNotRetryOtherErrors(t *testing.T) {
	db := setupTestDB(t)
	c := NewCoordinator(db, 3, time.Millisecond)

	attempts := 0
	err := c.Serialized(context.Background(), "test_op", func(tx *gorm.DB) error {
		attempts++
		return errors.New("business rule violated")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.False(t, models.IsConflict(err))
}

func TestIsSerializationConflict(t *testing.T) {
	assert.True(t, IsSerializationConflict(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsSerializationConflict(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, IsSerializationConflict(errors.New("database is locked")))
	assert.False(t, IsSerializationConflict(errors.New("syntax error")))
	assert.False(t, IsSerializationConflict(&pgconn.PgError{Code: "23505"}))
}

func TestBatchPartialIsolation(t *testing.T) {
	db := setupTestDB(t)
	c := NewCoordinator(db, 3, time.Millisecond)

	items := make([]BatchItem, 5)
	for i := range items {
		i := i
		items[i] = BatchItem{
			Name: fmt.Sprintf("item-%d", i),
			Run: func(tx *gorm.DB) error {
				if err := tx.Create(&models.Community{
					Name:      fmt.Sprintf("community-%d", i),
					CreatorID: 1,
				}).Error; err != nil {
					return err
				}
				// Items 1 and 3 fail after writing, proving their own
				// writes unwind while the rest persist.
				if i == 1 || i == 3 {
					return errors.New("invalid item")
				}
				return nil
			},
		}
	}

	reports, err := c.Batch(context.Background(), items, true)
	require.NoError(t, err)
	require.Len(t, reports, 5)

	succeeded := 0
	for _, r := range reports {
		if r.Succeeded {
			succeeded++
		} else {
			assert.Contains(t, r.Error, "invalid item")
		}
	}
	assert.Equal(t, 3, succeeded)

	var count int64
	db.Model(&models.Community{}).Count(&count)
	assert.Equal(t, int64(3), count)

	var names []string
	db.Model(&models.Community{}).Order("name").Pluck("name", &names)
	assert.Equal(t, []string{"community-0", "community-2", "community-4"}, names)
}

func TestBatchStopsOnFirstFailure(t *testing.T) {
	db := setupTestDB(t)
	c := NewCoordinator(db, 3, time.Millisecond)

	items := make([]BatchItem, 4)
	for i := range items {
		i := i
		items[i] = BatchItem{
			Name: fmt.Sprintf("item-%d", i),
			Run: func(tx *gorm.DB) error {
				if i == 1 {
					return errors.New("invalid item")
				}
				return tx.Create(&models.Community{
					Name:      fmt.Sprintf("community-%d", i),
					CreatorID: 1,
				}).Error
			},
		}
	}

	reports, err := c.Batch(context.Background(), items, false)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.True(t, reports[0].Succeeded)
	assert.Contains(t, reports[1].Error, "invalid item")
	assert.Contains(t, reports[2].Error, "skipped")
	assert.Contains(t, reports[3].Error, "skipped")

	// The item before the failure still commits.
	var count int64
	db.Model(&models.Community{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestBatchEmpty(t *testing.T) {
	db := setupTestDB(t)
	c := NewCoordinator(db, 3, time.Millisecond)

	reports, err := c.Batch(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
