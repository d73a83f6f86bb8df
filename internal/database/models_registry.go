package database

import "weave/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Community{},
		&models.Membership{},
		&models.Notification{},
		&models.AuditEntry{},
	}
}
