// Package bootstrap wires the runtime dependencies shared by the server
// and the operational commands.
package bootstrap

import (
	"fmt"

	"weave/internal/cache"
	"weave/internal/config"
	"weave/internal/database"
	"weave/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates an empty development database with a demo
	// social mesh. Never applied in production.
	SeedDemoData bool
}

// InitRuntime connects to DB and Redis and optionally runs demo seeding.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	// Connect DB
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData && cfg.Env != "production" {
		empty, err := databaseIsEmpty(db)
		if err != nil {
			return nil, nil, fmt.Errorf("checking database state: %w", err)
		}
		if empty {
			if err := seed.Seed(db, seed.Options{}); err != nil {
				return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
			}
		}
	}

	return db, r, nil
}

func databaseIsEmpty(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Table("users").Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
