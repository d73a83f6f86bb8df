// Package txn wraps composite writes in atomic, serialized, and
// batch-with-per-item-isolation transaction patterns.
package txn

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"weave/internal/middleware"
	"weave/internal/models"
	"weave/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// Coordinator runs composite database operations with explicit
// atomicity and conflict-retry policies.
type Coordinator struct {
	db         *gorm.DB
	maxRetries int
	backoff    time.Duration
}

// NewCoordinator creates a coordinator. maxRetries bounds the serialized
// retry loop; backoff is the base delay between attempts.
func NewCoordinator(db *gorm.DB, maxRetries int, backoff time.Duration) *Coordinator {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if backoff <= 0 {
		backoff = 25 * time.Millisecond
	}
	return &Coordinator{db: db, maxRetries: maxRetries, backoff: backoff}
}

// Atomic runs fn in one transaction: every write persists or none does.
func (c *Coordinator) Atomic(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.db.WithContext(ctx).Transaction(fn)
}

// Serialized runs fn at serializable isolation, retrying up to the bound
// when the database reports a serialization conflict. operation labels the
// retry metrics. Exhausting the bound surfaces a conflict failure.
func (c *Coordinator) Serialized(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := c.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{
			Isolation: sql.LevelSerializable,
		})
		if err == nil {
			return nil
		}
		if !IsSerializationConflict(err) {
			return err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		observability.TxnRetries.WithLabelValues(operation).Inc()
		middleware.Logger.WarnContext(ctx, "Retrying after serialization conflict",
			"operation", operation,
			"attempt", attempt,
			"error", err)

		select {
		case <-time.After(c.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	observability.TxnConflictFailures.WithLabelValues(operation).Inc()
	return models.NewConflictError("Operation failed after repeated serialization conflicts", lastErr)
}

// IsSerializationConflict reports whether err is a concurrent-write
// collision worth retrying.
func IsSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	// sqlite reports lock contention as a busy/locked error string.
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// BatchItem is one sub-operation of a batch write.
type BatchItem struct {
	Name string
	Run  func(tx *gorm.DB) error
}

// BatchReport is the outcome of one batch item.
type BatchReport struct {
	Index     int    `json:"index"`
	Name      string `json:"name,omitempty"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// Batch runs each item in its own savepoint inside one outer transaction.
// A failing item rolls back only its own writes and is reported
// individually; with continueOnError the rest of the batch still runs,
// otherwise the remaining items are skipped and reported unattempted.
// Earlier successes commit either way. The returned error covers only
// outer-transaction failures.
func (c *Coordinator) Batch(ctx context.Context, items []BatchItem, continueOnError bool) ([]BatchReport, error) {
	reports := make([]BatchReport, len(items))
	err := c.db.WithContext(ctx).Transaction(func(outer *gorm.DB) error {
		for i, item := range items {
			reports[i] = BatchReport{Index: i, Name: item.Name}
			// Nested Transaction on an open tx creates a savepoint, so a
			// failure here unwinds just this item.
			itemErr := outer.Transaction(item.Run)
			if itemErr != nil {
				reports[i].Error = itemErr.Error()
				observability.BatchItemResults.WithLabelValues("failed").Inc()
				if !continueOnError {
					for j := i + 1; j < len(items); j++ {
						reports[j] = BatchReport{Index: j, Name: items[j].Name, Error: "skipped: earlier item failed"}
					}
					return nil
				}
				continue
			}
			reports[i].Succeeded = true
			observability.BatchItemResults.WithLabelValues("ok").Inc()
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}
